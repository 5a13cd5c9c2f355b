package refine

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/fetch"
	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/models"
	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/prompts"
	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/providers/llm"
	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/textutil"
)

// defaultMaxExcerpt caps the characters of page text folded into one pass.
const defaultMaxExcerpt = 10000

// Researcher drives repeated research passes over a set of source URLs,
// merging extracted material into a running synthesis for a topic.
type Researcher struct {
	Client  llm.Client
	Fetcher fetch.PageFetcher

	// Retries and Backoff follow Expander semantics.
	Retries      int
	Backoff      time.Duration
	ContextLimit int
	MaxExcerpt   int
	Logger       *slog.Logger
}

// ResearchResult carries the synthesis, the full per-source status map, and
// why the run stopped. Sources covers every input URL exactly once, in input
// order, regardless of outcome.
type ResearchResult struct {
	Synthesis *models.Document
	Sources   []*models.ResearchSource
	Outcome   models.Outcome
	Passes    int
	Err       error
}

// Research aggregates source material about topic until every source has
// been consumed, the loop budget runs out, or progress stalls. The loop
// budget bounds passes, not sources: a budget smaller than the source count
// leaves sources in not-yet-fetched status, reported in Sources.
func (r *Researcher) Research(ctx context.Context, topic string, urls []string, loopBudget int, sink Sink) (*ResearchResult, error) {
	if topic == "" {
		return nil, invalidInput("topic must not be empty")
	}
	if len(urls) == 0 {
		return nil, invalidInput("at least one source URL is required")
	}
	if loopBudget < 1 {
		return nil, invalidInput("loop budget must be at least 1, got %d", loopBudget)
	}

	log := r.logger()
	prog := newProgress(sink)
	res := &ResearchResult{
		Synthesis: models.NewDocument(""),
		Sources:   newSources(urls),
	}

	pol := &ResearchPolicy{LoopBudget: loopBudget}
	for pass := 1; ; pass++ {
		if ctx.Err() != nil {
			log.Info("research cancelled", "pass", pass, "topic", topic)
			prog.emit(prog.last, fmt.Sprintf("cancelled before pass %d", pass))
			res.Outcome = models.OutcomeCancelled
			return res, nil
		}

		src := nextUnfetched(res.Sources)
		if src == nil {
			// All sources consumed before this pass started.
			res.Outcome = models.OutcomeReachedTarget
			prog.emit(100, "all sources consumed")
			return res, nil
		}

		contributed := false
		pr := models.PassResult{}
		pageText, err := r.Fetcher.Fetch(ctx, src.URL)
		if err != nil {
			if ctx.Err() != nil {
				res.Outcome = models.OutcomeCancelled
				return res, nil
			}
			src.Status = models.SourceFetchFailed
			src.Error = err.Error()
			pr.Diagnostic = fmt.Sprintf("fetch failed: %s", sourceDomain(src.URL))
			log.Warn("source fetch failed", "url", src.URL, "error", err)
		} else {
			src.Status = models.SourceFetched
			src.Excerpt = truncate(pageText, r.maxExcerpt())

			instruction := prompts.ResearchExtract(topic, sourceDomain(src.URL)) +
				"\n\nPage content:\n" + src.Excerpt
			contextText := textutil.ContextWindow(res.Synthesis.Text(), r.contextLimit())

			text, gerr := generateWithRetry(ctx, r.Client, r.retries(), r.Backoff, log, contextText, instruction)
			if gerr != nil {
				if ctx.Err() != nil {
					res.Outcome = models.OutcomeCancelled
					return res, nil
				}
				res.Outcome = models.OutcomeFailed
				res.Err = gerr
				if llm.IsRejected(gerr) {
					log.Error("synthesis rejected", "url", src.URL, "reason", llm.Reason(gerr))
				} else {
					log.Error("synthesis failed after retries", "url", src.URL, "error", gerr)
				}
				prog.emit(prog.last, fmt.Sprintf("pass %d failed: %s", pass, llm.Reason(gerr)))
				return res, nil
			}
			if text != "" && !containsSentinel(text) {
				res.Synthesis.Append(fmt.Sprintf("Source: %s\n\n%s", src.URL, text))
				contributed = true
				pr.Text = text
				pr.WordDelta = textutil.WordCount(text)
				pr.Diagnostic = fmt.Sprintf("folded %s", sourceDomain(src.URL))
			} else {
				pr.Diagnostic = fmt.Sprintf("no relevant info on %s", sourceDomain(src.URL))
			}
		}

		res.Passes = pass
		remaining := countUnfetched(res.Sources)
		decision := pol.Decide(pass, remaining, contributed)

		prog.emit(min(100, 100*pass/loopBudget),
			fmt.Sprintf("pass %d/%d: %s, %d sources remaining", pass, loopBudget, pr.Diagnostic, remaining))
		log.Info("research pass complete", "pass", pass, "remaining", remaining, "decision", decision.String())

		switch decision {
		case StopReached:
			prog.emit(100, "all sources consumed")
			res.Outcome = models.OutcomeReachedTarget
			return res, nil
		case StopBudgetExhausted:
			res.Outcome = models.OutcomeBudgetExhausted
			return res, nil
		case StopNoProgress:
			res.Outcome = models.OutcomeNoProgress
			return res, nil
		}
	}
}

// Status maps the outcome onto a task status, distinguishing complete from
// partial success so the caller can retry failed sources.
func (r *ResearchResult) Status() models.Status {
	switch r.Outcome {
	case models.OutcomeReachedTarget:
		for _, s := range r.Sources {
			if s.Status != models.SourceFetched {
				return models.StatusSucceededPartial
			}
		}
		return models.StatusSucceeded
	case models.OutcomeBudgetExhausted, models.OutcomeNoProgress:
		return models.StatusSucceededPartial
	case models.OutcomeCancelled:
		return models.StatusCancelled
	case models.OutcomeFailed:
		if !llm.IsRejected(r.Err) && r.Synthesis != nil && r.Synthesis.Len() > 0 {
			return models.StatusSucceededPartial
		}
		return models.StatusFailed
	default:
		return models.StatusFailed
	}
}

func newSources(urls []string) []*models.ResearchSource {
	seen := make(map[string]struct{}, len(urls))
	out := make([]*models.ResearchSource, 0, len(urls))
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, &models.ResearchSource{URL: u, Status: models.SourceNotFetched})
	}
	return out
}

func nextUnfetched(sources []*models.ResearchSource) *models.ResearchSource {
	for _, s := range sources {
		if s.Status == models.SourceNotFetched {
			return s
		}
	}
	return nil
}

func countUnfetched(sources []*models.ResearchSource) int {
	n := 0
	for _, s := range sources {
		if s.Status == models.SourceNotFetched {
			n++
		}
	}
	return n
}

func containsSentinel(text string) bool {
	return strings.Contains(text, prompts.NoRelevantInfo)
}

func sourceDomain(raw string) string {
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		return u.Host
	}
	return raw
}

func truncate(s string, limit int) string {
	if limit > 0 && len(s) > limit {
		return s[:limit] + "... [content truncated]"
	}
	return s
}

func (r *Researcher) retries() int {
	if r.Retries == 0 {
		return defaultRetries
	}
	if r.Retries < 0 {
		return 0
	}
	return r.Retries
}

func (r *Researcher) contextLimit() int {
	if r.ContextLimit > 0 {
		return r.ContextLimit
	}
	return defaultContextLimit
}

func (r *Researcher) maxExcerpt() int {
	if r.MaxExcerpt > 0 {
		return r.MaxExcerpt
	}
	return defaultMaxExcerpt
}

func (r *Researcher) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
