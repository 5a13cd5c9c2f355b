package refine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/models"
	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/prompts"
	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/providers/llm"
	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/textutil"
)

// defaultContextLimit caps the characters of accumulated transcript sent as
// context per pass. Older paragraphs beyond the cap are condensed to their
// leading sentences, not dropped.
const defaultContextLimit = 24000

// Expander drives repeated expansion passes over a single document toward a
// target word count. Passes run strictly sequentially; the zero value plus a
// Client is ready to use.
type Expander struct {
	Client llm.Client

	// Research is optional background material folded into every prompt.
	Research string

	// Retries is the number of extra attempts per pass after a transient
	// generation failure. Zero means the default of 2; negative disables.
	Retries      int
	Backoff      time.Duration
	ContextLimit int
	Logger       *slog.Logger
}

// ExpandResult carries the final document and why the run stopped. The
// document always reflects every successful pass, even when Outcome is
// failed or cancelled.
type ExpandResult struct {
	Document *models.Document
	Outcome  models.Outcome
	Passes   int

	// Err holds the terminal generation failure when Outcome is failed.
	Err error
}

// Expand grows doc until the target word count is met, the loop budget runs
// out, or progress stalls. It returns an error only for invalid input; all
// runtime failures are reported through the result so accumulated work is
// never discarded.
func (e *Expander) Expand(ctx context.Context, doc *models.Document, loopBudget, targetWords int, sink Sink) (*ExpandResult, error) {
	if loopBudget < 1 {
		return nil, invalidInput("loop budget must be at least 1, got %d", loopBudget)
	}
	if targetWords < 0 {
		return nil, invalidInput("target word count must be non-negative, got %d", targetWords)
	}
	if doc == nil {
		doc = models.NewDocument("")
	}
	log := e.logger()
	prog := newProgress(sink)
	res := &ExpandResult{Document: doc}

	if targetWords > 0 && doc.WordCount() >= targetWords {
		prog.emit(100, fmt.Sprintf("target already met: %d of %d words", doc.WordCount(), targetWords))
		res.Outcome = models.OutcomeReachedTarget
		return res, nil
	}

	pol := &Policy{LoopBudget: loopBudget, TargetWords: targetWords}
	for pass := 1; ; pass++ {
		if ctx.Err() != nil {
			log.Info("expansion cancelled", "pass", pass, "words", doc.WordCount())
			prog.emit(prog.last, fmt.Sprintf("cancelled before pass %d", pass))
			res.Outcome = models.OutcomeCancelled
			return res, nil
		}

		prior := doc.WordCount()
		instruction := prompts.ExpandTranscript(wordGap(prior, targetWords), e.Research)
		contextText := textutil.ContextWindow(doc.Text(), e.contextLimit())

		text, err := generateWithRetry(ctx, e.Client, e.retries(), e.Backoff, log, contextText, instruction)
		if err != nil {
			if ctx.Err() != nil {
				res.Outcome = models.OutcomeCancelled
				return res, nil
			}
			res.Outcome = models.OutcomeFailed
			res.Err = err
			if llm.IsRejected(err) {
				log.Error("generation rejected", "pass", pass, "reason", llm.Reason(err))
			} else {
				log.Error("generation failed after retries", "pass", pass, "error", err)
			}
			prog.emit(prog.last, fmt.Sprintf("pass %d failed: %s", pass, llm.Reason(err)))
			return res, nil
		}

		doc.Append(text)
		res.Passes = pass
		newCount := doc.WordCount()
		pr := models.PassResult{Text: text, WordDelta: newCount - prior}
		if pr.WordDelta <= 0 {
			pr.Diagnostic = "no new content"
		}
		decision := pol.Decide(pass, prior, newCount)

		msg := fmt.Sprintf("pass %d/%d: %d words", pass, loopBudget, newCount)
		if targetWords > 0 {
			msg = fmt.Sprintf("pass %d/%d: %d of %d words", pass, loopBudget, newCount, targetWords)
		}
		if pr.Diagnostic != "" {
			msg += " (" + pr.Diagnostic + ")"
		}
		prog.emit(min(100, 100*pass/loopBudget), msg)
		log.Info("expansion pass complete", "pass", pass, "words", newCount, "delta", pr.WordDelta, "decision", decision.String())

		switch decision {
		case StopReached:
			prog.emit(100, fmt.Sprintf("target reached: %d words in %d passes", newCount, pass))
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

// Status maps the outcome onto a task status. A run that kept some passes
// before failing transiently is partial success, not total failure.
func (r *ExpandResult) Status() models.Status {
	switch r.Outcome {
	case models.OutcomeReachedTarget:
		return models.StatusSucceeded
	case models.OutcomeBudgetExhausted, models.OutcomeNoProgress:
		return models.StatusSucceededPartial
	case models.OutcomeCancelled:
		return models.StatusCancelled
	case models.OutcomeFailed:
		if !llm.IsRejected(r.Err) && r.Passes > 0 {
			return models.StatusSucceededPartial
		}
		return models.StatusFailed
	default:
		return models.StatusFailed
	}
}

// wordGap estimates how many words the next pass should add.
func wordGap(current, target int) int {
	if target <= 0 || target-current < 200 {
		return 200
	}
	return target - current
}

func (e *Expander) retries() int {
	if e.Retries == 0 {
		return defaultRetries
	}
	if e.Retries < 0 {
		return 0
	}
	return e.Retries
}

func (e *Expander) contextLimit() int {
	if e.ContextLimit > 0 {
		return e.ContextLimit
	}
	return defaultContextLimit
}

func (e *Expander) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}
