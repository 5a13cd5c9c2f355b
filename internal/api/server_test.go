package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/config"
	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/models"
	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/orchestrator"
	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/providers/llm"
)

func newTestServer(t *testing.T) (*httptest.Server, *orchestrator.Orchestrator) {
	t.Helper()
	orch := orchestrator.New(&llm.MockClient{WordsPerCall: 50}, nil)
	srv := NewServer(orch, config.Default().Defaults)
	mux := http.NewServeMux()
	srv.Register(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts, orch
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeTask(t *testing.T, resp *http.Response) models.RefinementTask {
	t.Helper()
	defer resp.Body.Close()
	var task models.RefinementTask
	if err := json.NewDecoder(resp.Body).Decode(&task); err != nil {
		t.Fatalf("decode task: %v", err)
	}
	return task
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestCreateExpansionAppliesDefaults(t *testing.T) {
	ts, orch := newTestServer(t)
	resp := postJSON(t, ts.URL+"/tasks/expand", `{"text":"Hello."}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	task := decodeTask(t, resp)
	if task.ID == "" || task.Kind != models.KindExpansion || task.Status != models.StatusPending {
		t.Fatalf("task = %+v", task)
	}
	if task.LoopBudget != 1 || task.TargetWords != 1000 {
		t.Fatalf("defaults not applied: %+v", task)
	}
	if _, ok := orch.GetTask(task.ID); !ok {
		t.Fatal("task not registered")
	}
}

func TestCreateResearchValidatesInput(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := postJSON(t, ts.URL+"/tasks/research", `{"topic":"","urls":[]}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestCreateResearchDefaultsLoopsToSourceCount(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := postJSON(t, ts.URL+"/tasks/research",
		`{"topic":"volcanoes","urls":["https://a.example","https://b.example","https://c.example"]}`)
	task := decodeTask(t, resp)
	if task.LoopBudget != 3 {
		t.Fatalf("loop budget = %d, want one pass per source", task.LoopBudget)
	}
	if len(task.Sources) != 3 || task.Sources[0].Status != models.SourceNotFetched {
		t.Fatalf("sources = %+v", task.Sources)
	}
}

func TestStartAndPollTask(t *testing.T) {
	ts, orch := newTestServer(t)
	created := decodeTask(t, postJSON(t, ts.URL+"/tasks/expand", `{"text":"Hello.","loops":2,"target_words":40}`))

	resp := postJSON(t, ts.URL+"/tasks/start/"+created.ID, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("start status = %d", resp.StatusCode)
	}

	// The run happens on a background goroutine; poll until terminal.
	deadline := time.Now().Add(5 * time.Second)
	for {
		task, _ := orch.GetTask(created.ID)
		if task.Status != models.StatusPending && task.Status != models.StatusRunning {
			if task.Status != models.StatusSucceeded {
				t.Fatalf("terminal status = %s", task.Status)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("task did not finish in time")
		}
		time.Sleep(10 * time.Millisecond)
	}

	getResp, err := http.Get(ts.URL + "/tasks/" + created.ID)
	if err != nil {
		t.Fatal(err)
	}
	task := decodeTask(t, getResp)
	if task.Outcome != models.OutcomeReachedTarget || task.Result == "" {
		t.Fatalf("task = %+v", task)
	}
}

func TestStartUnknownTaskIs404(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := postJSON(t, ts.URL+"/tasks/start/nope", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestCancelPendingTaskIsConflict(t *testing.T) {
	ts, _ := newTestServer(t)
	created := decodeTask(t, postJSON(t, ts.URL+"/tasks/expand", `{"text":"Hello."}`))
	resp := postJSON(t, ts.URL+"/tasks/cancel/"+created.ID, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
}

func TestEventsStreamUnknownTask(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/events/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}
