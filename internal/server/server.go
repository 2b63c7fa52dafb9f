package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/nguyentantai21042004/media-digest/internal/archive"
	"github.com/nguyentantai21042004/media-digest/internal/config"
	"github.com/nguyentantai21042004/media-digest/internal/logger"
	"github.com/nguyentantai21042004/media-digest/internal/pipeline"
)

// Server exposes the batch and analysis pipeline over HTTP. All state
// lives in the orchestrator; handlers only translate between JSON and
// orchestrator calls.
type Server struct {
	orchestrator *pipeline.Orchestrator
	packager     *archive.Packager
	logger       logger.Logger
	addr         string
	timeout      time.Duration
}

// New wires the API surface.
func New(cfg *config.Config, orch *pipeline.Orchestrator, packager *archive.Packager, log logger.Logger) *Server {
	return &Server{
		orchestrator: orch,
		packager:     packager,
		logger:       log,
		addr:         cfg.Server.Addr,
		timeout:      time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}
}

// Routes builds the request mux. Kept separate from Run so tests can
// drive the handlers without a listening socket.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/batch-download", s.handleBatchDownload)
	mux.HandleFunc("GET /api/download-tasks", s.handleDownloadTasks)
	mux.HandleFunc("GET /api/download-result/{id}", s.handleDownloadResult)

	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("GET /api/analysis-tasks", s.handleAnalysisTasks)
	mux.HandleFunc("GET /api/analysis-result/{id}", s.handleAnalysisResult)
	mux.HandleFunc("GET /api/analysis-transcript/{id}", s.handleAnalysisTranscript)

	mux.HandleFunc("POST /api/create-zip", s.handleCreateZip)
	mux.HandleFunc("GET /api/download-zip/{filename}", s.handleDownloadZip)

	mux.HandleFunc("POST /api/stop", s.handleStop)
	mux.HandleFunc("GET /api/health", s.handleHealth)

	return s.logRequests(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "HTTP server listening on %s", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug(r.Context(), "%s %s (%s)", r.Method, r.URL.Path, time.Since(start))
	})
}
