package models

import (
	"strings"
	"time"

	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/textutil"
)

type TaskKind string

const (
	KindExpansion TaskKind = "expansion"
	KindResearch  TaskKind = "research"
)

type Status string

const (
	StatusPending          Status = "PENDING"
	StatusRunning          Status = "RUNNING"
	StatusSucceeded        Status = "SUCCEEDED"
	StatusSucceededPartial Status = "SUCCEEDED_PARTIAL"
	StatusFailed           Status = "FAILED"
	StatusCancelled        Status = "CANCELLED"
)

// Outcome names why a refinement run stopped. It is reported alongside the
// status so a partial result is never mistaken for a complete one.
type Outcome string

const (
	OutcomeReachedTarget   Outcome = "reached-target"
	OutcomeBudgetExhausted Outcome = "budget-exhausted"
	OutcomeNoProgress      Outcome = "no-progress"
	OutcomeFailed          Outcome = "failed"
	OutcomeCancelled       Outcome = "cancelled"
)

// RefinementTask is one run of the expansion or research engine. The engine
// executing it is its sole writer until the run reaches a terminal status.
type RefinementTask struct {
	ID          string            `json:"id"`
	Kind        TaskKind          `json:"kind"`
	Status      Status            `json:"status"`
	Outcome     Outcome           `json:"outcome,omitempty"`
	LoopBudget  int               `json:"loop_budget"`
	TargetWords int               `json:"target_words,omitempty"`
	Topic       string            `json:"topic,omitempty"`
	Input       string            `json:"-"`
	Result      string            `json:"result,omitempty"`
	Error       string            `json:"error,omitempty"`
	Passes      int               `json:"passes"`
	Sources     []*ResearchSource `json:"sources,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type FetchStatus string

const (
	SourceNotFetched  FetchStatus = "not-yet-fetched"
	SourceFetched     FetchStatus = "fetched"
	SourceFetchFailed FetchStatus = "fetch-failed"
)

// ResearchSource is one URL a research task draws from. Sources keep their
// input order and are unique by URL within a task.
type ResearchSource struct {
	URL     string      `json:"url"`
	Status  FetchStatus `json:"status"`
	Excerpt string      `json:"-"`
	Error   string      `json:"error,omitempty"`
}

// ProgressEvent reports pass-by-pass progress. Percent is monotonically
// non-decreasing within one task and ends at 100 on success.
type ProgressEvent struct {
	Percent int    `json:"percent"`
	Message string `json:"message"`
}

// PassResult is the transient output of a single refinement pass.
type PassResult struct {
	Text       string
	WordDelta  int
	Diagnostic string
}

// Document is an append-only sequence of text segments. Concatenation yields
// the current working text; the word count is always derived from it fresh.
type Document struct {
	segments []string
}

// NewDocument creates a document seeded with initial text, if any.
func NewDocument(initial string) *Document {
	d := &Document{}
	if s := strings.TrimSpace(initial); s != "" {
		d.segments = append(d.segments, s)
	}
	return d
}

// Append adds a segment at the end. Empty segments are dropped.
func (d *Document) Append(segment string) {
	if s := strings.TrimSpace(segment); s != "" {
		d.segments = append(d.segments, s)
	}
}

// Text returns the full current text, segments joined in production order.
func (d *Document) Text() string {
	return strings.Join(d.segments, "\n\n")
}

// WordCount counts words over the concatenated text.
func (d *Document) WordCount() int {
	return textutil.WordCount(d.Text())
}

// Segments returns a copy of the segment list.
func (d *Document) Segments() []string {
	out := make([]string, len(d.segments))
	copy(out, d.segments)
	return out
}

// Len reports the number of segments.
func (d *Document) Len() int { return len(d.segments) }
