package refine

import (
	"context"
	"strings"
	"testing"

	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/fetch"
	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/models"
	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/prompts"
	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/providers/llm"
)

// stubFetcher serves canned page text per URL and fails the URLs in fails.
type stubFetcher struct {
	pages   map[string]string
	fails   map[string]bool
	fetched []string
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.fetched = append(f.fetched, url)
	if f.fails[url] {
		return "", &fetch.Error{URL: url, StatusCode: 503}
	}
	if page, ok := f.pages[url]; ok {
		return page, nil
	}
	return "generic page text about the topic", nil
}

func echoExtract() func(int, string, string) (string, error) {
	return func(call int, _, instruction string) (string, error) {
		// Prove the page content reached the model by echoing a marker.
		if i := strings.Index(instruction, "MARKER:"); i >= 0 {
			return instruction[i : i+len("MARKER:")+1], nil
		}
		return "extracted facts", nil
	}
}

func newResearcher(c llm.Client, f fetch.PageFetcher) *Researcher {
	return &Researcher{Client: c, Fetcher: f, Retries: -1}
}

func TestResearchInvalidInput(t *testing.T) {
	r := newResearcher(&stubClient{}, &stubFetcher{})
	cases := []struct {
		topic  string
		urls   []string
		budget int
	}{
		{"", []string{"https://a.example"}, 1},
		{"topic", nil, 1},
		{"topic", []string{"https://a.example"}, 0},
	}
	for i, c := range cases {
		if _, err := r.Research(context.Background(), c.topic, c.urls, c.budget, nil); !IsInvalidInput(err) {
			t.Fatalf("case %d: expected invalid input, got %v", i, err)
		}
	}
}

func TestResearchConsumesAllSources(t *testing.T) {
	urls := []string{"https://a.example/1", "https://b.example/2", "https://c.example/3"}
	f := &stubFetcher{pages: map[string]string{
		urls[0]: "page one MARKER:A",
		urls[1]: "page two MARKER:B",
		urls[2]: "page three MARKER:C",
	}}
	c := &stubClient{fn: echoExtract()}
	r := newResearcher(c, f)
	rec := &eventRecorder{}

	res, err := r.Research(context.Background(), "solar panels", urls, 5, rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != models.OutcomeReachedTarget {
		t.Fatalf("outcome = %s, want reached-target", res.Outcome)
	}
	if res.Passes != 3 || c.calls != 3 {
		t.Fatalf("passes/calls = %d/%d, want 3/3", res.Passes, c.calls)
	}
	if res.Status() != models.StatusSucceeded {
		t.Fatalf("status = %s, want succeeded", res.Status())
	}
	for i, want := range []string{"MARKER:A", "MARKER:B", "MARKER:C"} {
		if !strings.Contains(res.Synthesis.Text(), want) {
			t.Fatalf("synthesis missing material from source %d: %q", i, res.Synthesis.Text())
		}
	}
	// Sources are consumed in input order.
	for i, u := range urls {
		if f.fetched[i] != u {
			t.Fatalf("fetch order = %v, want %v", f.fetched, urls)
		}
		if res.Sources[i].URL != u || res.Sources[i].Status != models.SourceFetched {
			t.Fatalf("source %d = %+v", i, res.Sources[i])
		}
	}
	rec.assertMonotonic(t)
	if rec.events[len(rec.events)-1].Percent != 100 {
		t.Fatalf("final event percent = %d", rec.events[len(rec.events)-1].Percent)
	}
}

func TestResearchBudgetBoundsPassesNotSources(t *testing.T) {
	urls := []string{
		"https://a.example", "https://b.example",
		"https://c.example", "https://d.example",
	}
	f := &stubFetcher{}
	c := &stubClient{fn: echoExtract()}
	r := newResearcher(c, f)

	res, err := r.Research(context.Background(), "topic", urls, 2, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != models.OutcomeBudgetExhausted {
		t.Fatalf("outcome = %s, want budget-exhausted", res.Outcome)
	}
	if res.Passes != 2 || c.calls != 2 {
		t.Fatalf("passes/calls = %d/%d, want 2/2", res.Passes, c.calls)
	}
	if res.Status() != models.StatusSucceededPartial {
		t.Fatalf("status = %s, want partial", res.Status())
	}
	// Every input URL is accounted for exactly once, with the unvisited
	// ones still marked not-yet-fetched.
	if len(res.Sources) != 4 {
		t.Fatalf("sources = %d, want 4", len(res.Sources))
	}
	unfetched := 0
	for _, s := range res.Sources {
		if s.Status == models.SourceNotFetched {
			unfetched++
		}
	}
	if unfetched != 2 {
		t.Fatalf("not-yet-fetched sources = %d, want 2", unfetched)
	}
}

func TestResearchFetchFailureIsPartialSuccess(t *testing.T) {
	urls := []string{"https://dead.example", "https://live.example"}
	f := &stubFetcher{
		pages: map[string]string{urls[1]: "working page MARKER:L"},
		fails: map[string]bool{urls[0]: true},
	}
	c := &stubClient{fn: echoExtract()}
	r := newResearcher(c, f)

	res, err := r.Research(context.Background(), "topic", urls, 5, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != models.OutcomeReachedTarget {
		t.Fatalf("outcome = %s: a failed source is consumed, not retried forever", res.Outcome)
	}
	if res.Status() != models.StatusSucceededPartial {
		t.Fatalf("status = %s, want partial when a source failed", res.Status())
	}
	if res.Sources[0].Status != models.SourceFetchFailed || res.Sources[0].Error == "" {
		t.Fatalf("failed source not recorded: %+v", res.Sources[0])
	}
	if res.Sources[1].Status != models.SourceFetched {
		t.Fatalf("good source = %+v", res.Sources[1])
	}
	if !strings.Contains(res.Synthesis.Text(), "MARKER:L") {
		t.Fatalf("good source missing from synthesis: %q", res.Synthesis.Text())
	}
	if c.calls != 1 {
		t.Fatalf("calls = %d: failed fetches must not burn generation calls", c.calls)
	}
}

func TestResearchSentinelResponsesStall(t *testing.T) {
	urls := []string{"https://a.example", "https://b.example", "https://c.example"}
	c := &stubClient{fn: func(int, string, string) (string, error) {
		return prompts.NoRelevantInfo, nil
	}}
	r := newResearcher(c, &stubFetcher{})

	res, err := r.Research(context.Background(), "topic", urls, 10, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != models.OutcomeNoProgress {
		t.Fatalf("outcome = %s, want no-progress after two empty passes", res.Outcome)
	}
	if res.Passes != 2 {
		t.Fatalf("passes = %d, want 2", res.Passes)
	}
	if res.Synthesis.Len() != 0 {
		t.Fatalf("sentinel responses must not enter the synthesis: %q", res.Synthesis.Text())
	}
}

func TestResearchDeduplicatesURLs(t *testing.T) {
	urls := []string{"https://a.example", "https://a.example", "https://b.example"}
	f := &stubFetcher{}
	c := &stubClient{fn: echoExtract()}
	r := newResearcher(c, f)

	res, err := r.Research(context.Background(), "topic", urls, 5, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Sources) != 2 {
		t.Fatalf("sources = %d, want duplicates collapsed to 2", len(res.Sources))
	}
	if len(f.fetched) != 2 {
		t.Fatalf("fetches = %v, want each URL fetched once", f.fetched)
	}
}

func TestResearchExcerptTruncation(t *testing.T) {
	huge := strings.Repeat("x", 500)
	f := &stubFetcher{pages: map[string]string{"https://a.example": huge}}
	var gotInstruction string
	c := &stubClient{fn: func(_ int, _, instruction string) (string, error) {
		gotInstruction = instruction
		return "extracted", nil
	}}
	r := newResearcher(c, f)
	r.MaxExcerpt = 100

	if _, err := r.Research(context.Background(), "topic", []string{"https://a.example"}, 1, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gotInstruction, strings.Repeat("x", 100)+"...") {
		t.Fatalf("excerpt not capped at 100 chars")
	}
	if strings.Contains(gotInstruction, strings.Repeat("x", 101)) {
		t.Fatalf("excerpt exceeds the cap")
	}
	if !strings.Contains(gotInstruction, "[content truncated]") {
		t.Fatalf("truncation not marked in instruction")
	}
}

func TestResearchRejectedFails(t *testing.T) {
	c := &stubClient{fn: func(int, string, string) (string, error) {
		return "", &llm.GenerationError{Kind: llm.ErrRejected, Provider: "stub", Reason: "refused"}
	}}
	r := newResearcher(c, &stubFetcher{})

	res, err := r.Research(context.Background(), "topic", []string{"https://a.example"}, 3, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != models.OutcomeFailed || res.Status() != models.StatusFailed {
		t.Fatalf("outcome/status = %s/%s", res.Outcome, res.Status())
	}
	if !llm.IsRejected(res.Err) {
		t.Fatalf("expected rejection, got %v", res.Err)
	}
}

func TestResearchTransientFailureKeepsSynthesis(t *testing.T) {
	urls := []string{"https://a.example", "https://b.example"}
	f := &stubFetcher{pages: map[string]string{urls[0]: "first page MARKER:F"}}
	c := &stubClient{fn: func(call int, _, instruction string) (string, error) {
		if call == 1 {
			return echoExtract()(call, "", instruction)
		}
		return "", &llm.GenerationError{Kind: llm.ErrTransient, Provider: "stub", Reason: "down"}
	}}
	r := newResearcher(c, f)

	res, err := r.Research(context.Background(), "topic", urls, 5, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != models.OutcomeFailed {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	if res.Status() != models.StatusSucceededPartial {
		t.Fatalf("status = %s: the first source's material must survive", res.Status())
	}
	if !strings.Contains(res.Synthesis.Text(), "MARKER:F") {
		t.Fatalf("synthesis lost: %q", res.Synthesis.Text())
	}
}

func TestResearchCancelledKeepsSynthesis(t *testing.T) {
	urls := []string{"https://a.example", "https://b.example", "https://c.example"}
	ctx, cancel := context.WithCancel(context.Background())
	c := &stubClient{}
	c.fn = func(call int, _, instruction string) (string, error) {
		if call == 2 {
			cancel()
		}
		return "material from pass", nil
	}
	r := newResearcher(c, &stubFetcher{})

	res, err := r.Research(ctx, "topic", urls, 5, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != models.OutcomeCancelled || res.Status() != models.StatusCancelled {
		t.Fatalf("outcome/status = %s/%s", res.Outcome, res.Status())
	}
	if res.Passes != 2 || res.Synthesis.Len() != 2 {
		t.Fatalf("passes/segments = %d/%d, want work from 2 passes kept", res.Passes, res.Synthesis.Len())
	}
	if res.Sources[2].Status != models.SourceNotFetched {
		t.Fatalf("third source = %+v, want untouched", res.Sources[2])
	}
}

func TestResearchTopicEntryPoint(t *testing.T) {
	f := &stubFetcher{pages: map[string]string{"https://a.example": "page MARKER:E"}}
	c := &stubClient{fn: echoExtract()}

	text, sources, outcome, err := ResearchTopic(context.Background(), c, f, "wind turbines",
		[]string{"https://a.example"}, 1, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != models.OutcomeReachedTarget {
		t.Fatalf("outcome = %s", outcome)
	}
	if len(sources) != 1 || sources[0].Status != models.SourceFetched {
		t.Fatalf("sources = %+v", sources)
	}
	if !strings.Contains(text, "Source: https://a.example") {
		t.Fatalf("synthesis missing source attribution: %q", text)
	}
}
