package transcribe

import (
	"context"
	"sync"

	"github.com/nguyentantai21042004/media-digest/internal/domain"
	"github.com/nguyentantai21042004/media-digest/internal/logger"
)

// Service owns the shared engine handle. The engine is loaded lazily
// on first use and every call is serialized behind the mutex: the
// underlying model is not assumed safe for concurrent inference, and
// reloading it per task would dominate latency.
type Service struct {
	mu     sync.Mutex
	engine Engine
	loaded bool
	logger logger.Logger
}

// NewService wraps an engine in a lazily-initialized shared handle.
func NewService(engine Engine, log logger.Logger) *Service {
	return &Service{engine: engine, logger: log}
}

// Transcribe runs the engine on one waveform file. The first call
// pays the model load cost; later calls reuse the loaded instance.
func (s *Service) Transcribe(ctx context.Context, audioPath string) (domain.Transcript, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		s.logger.Info(ctx, "Loading transcription model, this may take a while...")
		if err := s.engine.Load(ctx); err != nil {
			return domain.Transcript{}, err
		}
		s.loaded = true
		s.logger.Info(ctx, "Transcription model loaded")
	}

	return s.engine.Transcribe(ctx, audioPath)
}
