package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/media-digest/internal/archive"
	"github.com/nguyentantai21042004/media-digest/internal/domain"
	"github.com/nguyentantai21042004/media-digest/internal/pipeline"
	"github.com/nguyentantai21042004/media-digest/internal/report"
)

type batchRequest struct {
	URLs         []string `json:"urls"`
	APIKey       string   `json:"api_key"`
	CustomPrompt string   `json:"custom_prompt"`
}

type zipRequest struct {
	TaskIDs []string `json:"task_ids"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func decodeBatch(r *http.Request) (batchRequest, error) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, fmt.Errorf("invalid request body: %w", err)
	}
	return req, nil
}

func (s *Server) handleBatchDownload(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBatch(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tasks, err := s.orchestrator.SubmitDownloadBatch(strings.Join(req.URLs, "\n"))
	if errors.Is(err, pipeline.ErrNoURLs) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tasks": tasks})
}

func (s *Server) handleDownloadTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"tasks": s.orchestrator.DownloadTasks()})
}

func (s *Server) handleDownloadResult(w http.ResponseWriter, r *http.Request) {
	path, ok := s.orchestrator.DownloadFilePath(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "task not found or not completed")
		return
	}
	serveAttachment(w, r, path)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBatch(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tasks, err := s.orchestrator.SubmitAnalysisBatch(strings.Join(req.URLs, "\n"), req.APIKey, req.CustomPrompt)
	if errors.Is(err, pipeline.ErrNoURLs) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tasks": tasks})
}

func (s *Server) handleAnalysisTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"tasks": s.orchestrator.AnalysisTasks()})
}

func (s *Server) handleAnalysisResult(w http.ResponseWriter, r *http.Request) {
	task, ok := s.orchestrator.AnalysisTask(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleAnalysisTranscript(w http.ResponseWriter, r *http.Request) {
	task, ok := s.orchestrator.AnalysisTask(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	if task.Status != domain.StatusCompleted || task.Result == nil {
		writeError(w, http.StatusConflict, "task has no transcript yet")
		return
	}

	title := task.Filename
	if title == "" {
		title = task.URL
	}

	if r.URL.Query().Get("format") == "docx" {
		s.serveTranscriptDocx(w, r, title, task)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="transcript.txt"`)
	fmt.Fprintln(w, task.Result.FullTranscript)
}

func (s *Server) serveTranscriptDocx(w http.ResponseWriter, r *http.Request, title string, task domain.TaskProgress) {
	tmp, err := os.CreateTemp("", "digest-*.docx")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	tmp.Close()
	defer os.Remove(tmp.Name())

	if err := report.WriteDigest(title, task.Result, tmp.Name()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	w.Header().Set("Content-Disposition", `attachment; filename="transcript.docx"`)
	http.ServeFile(w, r, tmp.Name())
}

func (s *Server) handleCreateZip(w http.ResponseWriter, r *http.Request) {
	var req zipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	paths := s.orchestrator.CompletedFiles(req.TaskIDs)
	name, err := s.packager.Pack(paths)
	if errors.Is(err, archive.ErrNoFiles) {
		writeError(w, http.StatusBadRequest, "no completed files in selection")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"filename": name})
}

func (s *Server) handleDownloadZip(w http.ResponseWriter, r *http.Request) {
	path, err := s.packager.Path(r.PathValue("filename"))
	if err != nil {
		writeError(w, http.StatusNotFound, "archive not found")
		return
	}
	serveAttachment(w, r, path)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.orchestrator.Stop()
	writeJSON(w, http.StatusOK, map[string]string{"status": "stopping"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func serveAttachment(w http.ResponseWriter, r *http.Request, path string) {
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	http.ServeFile(w, r, path)
}
