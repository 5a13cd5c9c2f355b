// Package refine implements the iterative content-refinement engines:
// transcript expansion toward a target word count and topic research over a
// set of source URLs. Both repeatedly transform a growing body of text
// through a generation client under a loop budget and a convergence policy,
// reporting progress after every pass and surviving mid-run failures with
// partial results.
package refine

import (
	"context"

	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/fetch"
	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/models"
	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/providers/llm"
)

// ProgressFunc is the narrow callback the entry points accept. percent is
// 0..100 and non-decreasing within one run.
type ProgressFunc func(percent int, message string)

func (f ProgressFunc) sink() Sink {
	return SinkFunc(func(ev models.ProgressEvent) {
		if f != nil {
			f(ev.Percent, ev.Message)
		}
	})
}

// ExpandTranscript grows document text toward targetWordCount over at most
// loopCount passes. It returns the best text produced, even on failure or
// cancellation, alongside the outcome.
func ExpandTranscript(ctx context.Context, client llm.Client, document string, loopCount, targetWordCount int, progress ProgressFunc) (string, models.Outcome, error) {
	e := &Expander{Client: client}
	res, err := e.Expand(ctx, models.NewDocument(document), loopCount, targetWordCount, progress.sink())
	if err != nil {
		return document, models.OutcomeFailed, err
	}
	return res.Document.Text(), res.Outcome, res.Err
}

// ResearchTopic aggregates material about topic from sourceURLs over at most
// loopCount passes. The returned source list accounts for every input URL
// exactly once so the caller can retry just the failed ones.
func ResearchTopic(ctx context.Context, client llm.Client, fetcher fetch.PageFetcher, topic string, sourceURLs []string, loopCount int, progress ProgressFunc) (string, []*models.ResearchSource, models.Outcome, error) {
	r := &Researcher{Client: client, Fetcher: fetcher}
	res, err := r.Research(ctx, topic, sourceURLs, loopCount, progress.sink())
	if err != nil {
		return "", nil, models.OutcomeFailed, err
	}
	return res.Synthesis.Text(), res.Sources, res.Outcome, res.Err
}
