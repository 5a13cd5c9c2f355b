// Package api exposes the task registry over HTTP: task creation, start,
// cancel, and a per-task SSE event stream for progress display.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/config"
	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/orchestrator"
)

type Server struct {
	Orch     *orchestrator.Orchestrator
	Defaults config.Defaults
	Logger   *slog.Logger
}

func NewServer(orch *orchestrator.Orchestrator, defaults config.Defaults) *Server {
	return &Server{Orch: orch, Defaults: defaults}
}

func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/tasks", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		respondJSON(w, s.Orch.ListTasks())
	})

	mux.HandleFunc("/tasks/expand", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Text        string `json:"text"`
			Loops       int    `json:"loops"`
			TargetWords int    `json:"target_words"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Loops < 1 {
			req.Loops = s.Defaults.Loops
		}
		if req.TargetWords <= 0 {
			req.TargetWords = s.Defaults.TargetWords
		}
		respondJSON(w, s.Orch.CreateExpansion(req.Text, req.Loops, req.TargetWords))
	})

	mux.HandleFunc("/tasks/research", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Topic string   `json:"topic"`
			URLs  []string `json:"urls"`
			Loops int      `json:"loops"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Topic == "" || len(req.URLs) == 0 {
			http.Error(w, "topic and urls are required", http.StatusBadRequest)
			return
		}
		if req.Loops < 1 {
			req.Loops = max(s.Defaults.Loops, len(req.URLs))
		}
		respondJSON(w, s.Orch.CreateResearch(req.Topic, req.URLs, req.Loops))
	})

	mux.HandleFunc("/tasks/start/", func(w http.ResponseWriter, r *http.Request) {
		// path: /tasks/start/{id}
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		id := r.URL.Path[len("/tasks/start/"):]
		if _, ok := s.Orch.GetTask(id); !ok {
			http.NotFound(w, r)
			return
		}
		go func() {
			if err := s.Orch.Start(context.Background(), id); err != nil {
				s.logger().Error("task start failed", "task", id, "error", err)
			}
		}()
		w.WriteHeader(http.StatusAccepted)
	})

	mux.HandleFunc("/tasks/cancel/", func(w http.ResponseWriter, r *http.Request) {
		// path: /tasks/cancel/{id}
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		id := r.URL.Path[len("/tasks/cancel/"):]
		if err := s.Orch.Cancel(id); err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	})

	mux.HandleFunc("/tasks/", func(w http.ResponseWriter, r *http.Request) {
		// path: /tasks/{id}
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		id := r.URL.Path[len("/tasks/"):]
		t, ok := s.Orch.GetTask(id)
		if !ok {
			http.NotFound(w, r)
			return
		}
		respondJSON(w, t)
	})

	mux.HandleFunc("/events/", s.handleEvents)
}

// handleEvents streams a task's events as server-sent events until the
// client disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Path[len("/events/"):]
	if _, ok := s.Orch.GetTask(id); !ok {
		http.NotFound(w, r)
		return
	}
	fl, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, unsub := s.Orch.Subscribe(id)
	defer unsub()
	for {
		select {
		case <-r.Context().Done():
			return
		case b, open := <-ch:
			if !open {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", b)
			fl.Flush()
		}
	}
}

func respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
