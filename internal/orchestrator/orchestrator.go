// Package orchestrator owns the task registry: it creates refinement tasks,
// runs the engines against them, bridges engine progress to SSE subscribers,
// and supports cooperative cancellation.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/fetch"
	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/models"
	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/providers/llm"
	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/refine"
)

type Orchestrator struct {
	Client  llm.Client
	Fetcher fetch.PageFetcher
	Logger  *slog.Logger

	tasksMu sync.RWMutex
	tasks   map[string]*models.RefinementTask

	cancelMu sync.Mutex
	cancels  map[string]context.CancelFunc

	hub *Hub
}

func New(client llm.Client, fetcher fetch.PageFetcher) *Orchestrator {
	return &Orchestrator{
		Client:  client,
		Fetcher: fetcher,
		tasks:   map[string]*models.RefinementTask{},
		cancels: map[string]context.CancelFunc{},
		hub:     NewHub(),
	}
}

// CreateExpansion registers a pending transcript-expansion task.
func (o *Orchestrator) CreateExpansion(text string, loopBudget, targetWords int) *models.RefinementTask {
	t := o.newTask(models.KindExpansion, loopBudget)
	t.Input = text
	t.TargetWords = targetWords
	o.store(t)
	return t
}

// CreateResearch registers a pending research task. The source list is
// pre-filled in input order so subscribers can watch per-source status.
func (o *Orchestrator) CreateResearch(topic string, urls []string, loopBudget int) *models.RefinementTask {
	t := o.newTask(models.KindResearch, loopBudget)
	t.Topic = topic
	for _, u := range urls {
		t.Sources = append(t.Sources, &models.ResearchSource{URL: u, Status: models.SourceNotFetched})
	}
	o.store(t)
	return t
}

func (o *Orchestrator) newTask(kind models.TaskKind, loopBudget int) *models.RefinementTask {
	now := time.Now()
	return &models.RefinementTask{
		ID:         uuid.NewString(),
		Kind:       kind,
		Status:     models.StatusPending,
		LoopBudget: loopBudget,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (o *Orchestrator) store(t *models.RefinementTask) {
	o.tasksMu.Lock()
	o.tasks[t.ID] = t
	o.tasksMu.Unlock()
	o.hub.Publish(t.ID, Event{Event: "task_status", TaskID: t.ID, Payload: map[string]any{"status": t.Status}})
}

func (o *Orchestrator) GetTask(id string) (*models.RefinementTask, bool) {
	o.tasksMu.RLock()
	t, ok := o.tasks[id]
	o.tasksMu.RUnlock()
	return t, ok
}

func (o *Orchestrator) ListTasks() []*models.RefinementTask {
	o.tasksMu.RLock()
	out := make([]*models.RefinementTask, 0, len(o.tasks))
	for _, t := range o.tasks {
		out = append(out, t)
	}
	o.tasksMu.RUnlock()
	return out
}

// Start runs a pending task to completion on the calling goroutine. Progress
// and status changes stream to subscribers; the task record carries the
// final document, outcome, and per-source statuses when done.
func (o *Orchestrator) Start(ctx context.Context, id string) error {
	t, ok := o.GetTask(id)
	if !ok {
		return errors.New("task not found")
	}
	if t.Status != models.StatusPending {
		return fmt.Errorf("task %s already started (status %s)", id, t.Status)
	}

	runCtx, cancel := context.WithCancel(ctx)
	o.cancelMu.Lock()
	o.cancels[id] = cancel
	o.cancelMu.Unlock()
	defer func() {
		cancel()
		o.cancelMu.Lock()
		delete(o.cancels, id)
		o.cancelMu.Unlock()
	}()

	t.Status = models.StatusRunning
	t.UpdatedAt = time.Now()
	o.hub.Publish(id, Event{Event: "task_status", TaskID: id, Payload: map[string]any{"status": t.Status}})

	sink := refine.SinkFunc(func(ev models.ProgressEvent) {
		o.hub.Publish(id, Event{Event: "progress", TaskID: id, Payload: ev})
	})
	log := o.logger().With("task", id, "kind", t.Kind)

	var runErr error
	switch t.Kind {
	case models.KindExpansion:
		runErr = o.runExpansion(runCtx, t, sink, log)
	case models.KindResearch:
		runErr = o.runResearch(runCtx, t, sink, log)
	default:
		runErr = fmt.Errorf("unknown task kind %q", t.Kind)
	}
	if runErr != nil {
		t.Status = models.StatusFailed
		t.Outcome = models.OutcomeFailed
		t.Error = runErr.Error()
	}
	t.UpdatedAt = time.Now()
	o.hub.Publish(id, Event{Event: "task_status", TaskID: id, Payload: map[string]any{
		"status": t.Status, "outcome": t.Outcome, "error": t.Error,
	}})
	return runErr
}

func (o *Orchestrator) runExpansion(ctx context.Context, t *models.RefinementTask, sink refine.Sink, log *slog.Logger) error {
	e := &refine.Expander{Client: o.Client, Logger: log}
	res, err := e.Expand(ctx, models.NewDocument(t.Input), t.LoopBudget, t.TargetWords, sink)
	if err != nil {
		return err
	}
	t.Result = res.Document.Text()
	t.Outcome = res.Outcome
	t.Passes = res.Passes
	t.Status = res.Status()
	if res.Err != nil {
		t.Error = llm.Reason(res.Err)
	}
	return nil
}

func (o *Orchestrator) runResearch(ctx context.Context, t *models.RefinementTask, sink refine.Sink, log *slog.Logger) error {
	urls := make([]string, 0, len(t.Sources))
	for _, s := range t.Sources {
		urls = append(urls, s.URL)
	}
	r := &refine.Researcher{Client: o.Client, Fetcher: o.fetcher(), Logger: log}
	res, err := r.Research(ctx, t.Topic, urls, t.LoopBudget, sink)
	if err != nil {
		return err
	}
	t.Result = res.Synthesis.Text()
	t.Sources = res.Sources
	t.Outcome = res.Outcome
	t.Passes = res.Passes
	t.Status = res.Status()
	if res.Err != nil {
		t.Error = llm.Reason(res.Err)
	}
	return nil
}

// Cancel requests cooperative cancellation of a running task. The engine
// stops before its next pass and keeps the work accumulated so far.
func (o *Orchestrator) Cancel(id string) error {
	o.cancelMu.Lock()
	cancel, ok := o.cancels[id]
	o.cancelMu.Unlock()
	if !ok {
		return fmt.Errorf("task %s is not running", id)
	}
	cancel()
	return nil
}

// Subscribe returns a channel carrying JSON-encoded Event payloads for a
// specific task. The caller must call the returned unsubscribe func when done.
func (o *Orchestrator) Subscribe(taskID string) (<-chan []byte, func()) {
	ch, unsub := o.hub.Subscribe(taskID)
	return ch, unsub
}

func (o *Orchestrator) fetcher() fetch.PageFetcher {
	if o.Fetcher != nil {
		return o.Fetcher
	}
	return fetch.NewHTTPFetcher()
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}
