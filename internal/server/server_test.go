package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nguyentantai21042004/media-digest/internal/archive"
	"github.com/nguyentantai21042004/media-digest/internal/batch"
	"github.com/nguyentantai21042004/media-digest/internal/config"
	"github.com/nguyentantai21042004/media-digest/internal/domain"
	"github.com/nguyentantai21042004/media-digest/internal/fetcher"
	"github.com/nguyentantai21042004/media-digest/internal/logger"
	"github.com/nguyentantai21042004/media-digest/internal/pipeline"
)

type stubFetcher struct{}

func (stubFetcher) Fetch(ctx context.Context, task domain.SourceTask, destDir string, onProgress fetcher.ProgressFunc, onStatus fetcher.StatusFunc) domain.FetchResult {
	taskDir := filepath.Join(destDir, fmt.Sprintf("task_%d", task.Index))
	if err := os.MkdirAll(taskDir, 0o755); err != nil {
		return domain.FetchResult{Index: task.Index, Err: err}
	}
	path := filepath.Join(taskDir, "clip.mp4")
	if err := os.WriteFile(path, []byte("media"), 0o644); err != nil {
		return domain.FetchResult{Index: task.Index, Err: err}
	}
	if onStatus != nil {
		onStatus("Completed")
	}
	return domain.FetchResult{Index: task.Index, Path: path}
}

type stubExtractor struct{}

func (stubExtractor) Extract(ctx context.Context, inputPath, outputPath string) error {
	return os.WriteFile(outputPath, []byte("wav"), 0o644)
}

type stubTranscriber struct{}

func (stubTranscriber) Transcribe(ctx context.Context, audioPath string) (domain.Transcript, error) {
	return domain.Transcript{
		Text:     "hello world",
		Segments: []domain.Segment{{Start: 0, End: 2, Text: "hello world"}},
	}, nil
}

type stubRefiner struct{}

func (stubRefiner) Refine(ctx context.Context, text string) string { return "Refined: " + text }

func (stubRefiner) Summarize(ctx context.Context, text, customPrompt string) string {
	return "Summary"
}

func newTestServer(t *testing.T) (*httptest.Server, *pipeline.Orchestrator) {
	t.Helper()
	cfg := &config.Config{
		Paths: config.PathsConfig{
			Batch:    t.TempDir(),
			Analysis: t.TempDir(),
			Archives: t.TempDir(),
		},
		Server: config.ServerConfig{Addr: ":0", TimeoutSeconds: 5},
	}
	log := logger.New("error")
	acq := batch.New(stubFetcher{}, log, 3)
	orch := pipeline.NewOrchestrator(cfg, acq, stubExtractor{}, stubTranscriber{},
		func(apiKey string) (pipeline.Refiner, error) { return stubRefiner{}, nil }, log)
	packager := archive.NewPackager(cfg.Paths.Archives, log)

	ts := httptest.NewServer(New(cfg, orch, packager, log).Routes())
	t.Cleanup(ts.Close)
	return ts, orch
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeTasks(t *testing.T, resp *http.Response) []domain.TaskProgress {
	t.Helper()
	defer resp.Body.Close()
	var payload struct {
		Tasks []domain.TaskProgress `json:"tasks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatal(err)
	}
	return payload.Tasks
}

func waitCompleted(t *testing.T, ts *httptest.Server, listPath string, want int) []domain.TaskProgress {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(ts.URL + listPath)
		if err != nil {
			t.Fatal(err)
		}
		tasks := decodeTasks(t, resp)
		if len(tasks) == want {
			done := true
			for _, task := range tasks {
				if !task.Status.Terminal() {
					done = false
					break
				}
			}
			if done {
				return tasks
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("tasks did not finish in time")
	return nil
}

func TestBatchDownloadEndToEnd(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/batch-download", map[string]interface{}{
		"urls": []string{"https://example.com/v/1", "https://example.com/v/2"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := decodeTasks(t, resp); len(got) != 2 {
		t.Fatalf("tasks = %d, want 2", len(got))
	}

	tasks := waitCompleted(t, ts, "/api/download-tasks", 2)
	for _, task := range tasks {
		if task.Status != domain.StatusCompleted {
			t.Errorf("task %d status = %s", task.Index, task.Status)
		}
	}

	fileResp, err := http.Get(ts.URL + "/api/download-result/" + tasks[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	defer fileResp.Body.Close()
	if fileResp.StatusCode != http.StatusOK {
		t.Fatalf("download-result status = %d", fileResp.StatusCode)
	}
	if cd := fileResp.Header.Get("Content-Disposition"); !strings.Contains(cd, "clip.mp4") {
		t.Errorf("Content-Disposition = %q", cd)
	}
}

func TestBatchDownloadFallsBackToRawLines(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/batch-download", map[string]interface{}{
		"urls": []string{"lecture_recording.mp4", "ftp://host/clip.mov"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := decodeTasks(t, resp); len(got) != 2 {
		t.Fatalf("tasks = %d, want 2", len(got))
	}
	waitCompleted(t, ts, "/api/download-tasks", 2)
}

func TestBatchDownloadRejectsEmptyInput(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/batch-download", map[string]interface{}{
		"urls": []string{"", "   "},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestAnalyzeEndToEnd(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/analyze", map[string]interface{}{
		"urls": []string{"https://example.com/v/1"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	decodeTasks(t, resp)

	tasks := waitCompleted(t, ts, "/api/analysis-tasks", 1)
	id := tasks[0].ID

	resultResp, err := http.Get(ts.URL + "/api/analysis-result/" + id)
	if err != nil {
		t.Fatal(err)
	}
	defer resultResp.Body.Close()
	var task domain.TaskProgress
	if err := json.NewDecoder(resultResp.Body).Decode(&task); err != nil {
		t.Fatal(err)
	}
	if task.Result == nil || task.Result.Summary != "Summary" {
		t.Fatalf("result = %+v", task.Result)
	}
	if task.Result.FullTranscript != "Refined: hello world" {
		t.Errorf("FullTranscript = %q", task.Result.FullTranscript)
	}

	txtResp, err := http.Get(ts.URL + "/api/analysis-transcript/" + id)
	if err != nil {
		t.Fatal(err)
	}
	defer txtResp.Body.Close()
	if ct := txtResp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q", ct)
	}

	docxResp, err := http.Get(ts.URL + "/api/analysis-transcript/" + id + "?format=docx")
	if err != nil {
		t.Fatal(err)
	}
	defer docxResp.Body.Close()
	if docxResp.StatusCode != http.StatusOK {
		t.Fatalf("docx status = %d", docxResp.StatusCode)
	}
	if ct := docxResp.Header.Get("Content-Type"); !strings.Contains(ct, "wordprocessingml") {
		t.Errorf("docx Content-Type = %q", ct)
	}
}

func TestAnalysisResultUnknownTask(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/analysis-result/no-such-task")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestCreateAndDownloadZip(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/batch-download", map[string]interface{}{
		"urls": []string{"https://example.com/v/1"},
	})
	decodeTasks(t, resp)
	tasks := waitCompleted(t, ts, "/api/download-tasks", 1)

	zipResp := postJSON(t, ts.URL+"/api/create-zip", map[string]interface{}{
		"task_ids": []string{tasks[0].ID},
	})
	defer zipResp.Body.Close()
	if zipResp.StatusCode != http.StatusOK {
		t.Fatalf("create-zip status = %d", zipResp.StatusCode)
	}
	var payload struct {
		Filename string `json:"filename"`
	}
	if err := json.NewDecoder(zipResp.Body).Decode(&payload); err != nil {
		t.Fatal(err)
	}
	if payload.Filename == "" {
		t.Fatal("no archive filename returned")
	}

	dlResp, err := http.Get(ts.URL + "/api/download-zip/" + payload.Filename)
	if err != nil {
		t.Fatal(err)
	}
	defer dlResp.Body.Close()
	if dlResp.StatusCode != http.StatusOK {
		t.Errorf("download-zip status = %d", dlResp.StatusCode)
	}
}

func TestCreateZipWithNoCompletedTasks(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/create-zip", map[string]interface{}{
		"task_ids": []string{"unknown"},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestDownloadZipRejectsUnknownArchive(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/download-zip/absent.zip")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestStopEndpoint(t *testing.T) {
	ts, orch := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/stop", struct{}{})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if !orch.Stopped() {
		t.Error("orchestrator not stopped after /api/stop")
	}
}
