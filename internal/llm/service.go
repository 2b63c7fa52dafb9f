package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/media-digest/internal/logger"
)

const refinePrompt = `You are a professional transcript editor. The user provides a raw
speech-to-text transcript that may lack punctuation and paragraph
structure. Rewrite it as a well-formatted verbatim transcript:
1. Add correct punctuation based on context.
2. Split the text into clear, readable paragraphs.
3. Fix obvious transcription typos and casing mistakes.
4. Keep the content verbatim: do not summarize, delete or reorder anything.
5. Return only the formatted transcript.`

const summaryPrompt = `You are a professional video content analyst. Write a structured
summary of the following transcript:
1. Start with a one-line thesis capturing the core idea.
2. List 3-5 key points as bullets.
3. End with a short concluding paragraph.
Keep the output clear and easy to scan.`

// Service applies the degradation policy around a completion backend:
// losing a transcript entirely is worse than serving an unrefined one,
// so Refine and Summarize never return an error to the caller.
type Service struct {
	backend Backend
	logger  logger.Logger
}

// NewService wraps a backend.
func NewService(backend Backend, log logger.Logger) *Service {
	return &Service{backend: backend, logger: log}
}

// Refine reformats a raw transcript. On any remote failure the
// original text comes back unchanged. Empty input short-circuits
// without a remote call.
func (s *Service) Refine(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	refined, err := s.backend.Complete(ctx, refinePrompt, text)
	if err != nil {
		s.logger.Warn(ctx, "Refine failed, serving unrefined transcript: %v", err)
		return text
	}
	return refined
}

// Summarize produces a structured abstract. On remote failure it
// returns a message describing the failure rather than an error.
// Empty input short-circuits without a remote call.
func (s *Service) Summarize(ctx context.Context, text, customPrompt string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	system := summaryPrompt
	if customPrompt != "" {
		system = customPrompt
	}

	summary, err := s.backend.Complete(ctx, system, text)
	if err != nil {
		s.logger.Error(ctx, "Summarization failed: %v", err)
		return fmt.Sprintf("Summarization Error: %v", err)
	}
	return summary
}
