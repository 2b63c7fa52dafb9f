package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/media-digest/internal/config"
	"github.com/nguyentantai21042004/media-digest/internal/logger"
)

type stubBackend struct {
	reply string
	err   error
	calls int

	lastSystem string
	lastUser   string
}

func (s *stubBackend) Complete(ctx context.Context, system, user string) (string, error) {
	s.calls++
	s.lastSystem = system
	s.lastUser = user
	return s.reply, s.err
}

func TestRefineEmptyInputSkipsRemoteCall(t *testing.T) {
	backend := &stubBackend{}
	svc := NewService(backend, logger.New("error"))

	if got := svc.Refine(context.Background(), ""); got != "" {
		t.Errorf("Refine(\"\") = %q, want empty", got)
	}
	if got := svc.Refine(context.Background(), "   \n"); got != "" {
		t.Errorf("Refine(whitespace) = %q, want empty", got)
	}
	if backend.calls != 0 {
		t.Errorf("remote calls = %d, want 0", backend.calls)
	}
}

func TestSummarizeEmptyInputSkipsRemoteCall(t *testing.T) {
	backend := &stubBackend{}
	svc := NewService(backend, logger.New("error"))

	if got := svc.Summarize(context.Background(), "", ""); got != "" {
		t.Errorf("Summarize(\"\") = %q, want empty", got)
	}
	if backend.calls != 0 {
		t.Errorf("remote calls = %d, want 0", backend.calls)
	}
}

func TestRefineDegradesToOriginalOnFailure(t *testing.T) {
	backend := &stubBackend{err: errors.New("service unavailable")}
	svc := NewService(backend, logger.New("error"))

	original := "raw transcript without punctuation"
	if got := svc.Refine(context.Background(), original); got != original {
		t.Errorf("Refine() = %q, want the original text back", got)
	}
}

func TestRefineReturnsBackendOutput(t *testing.T) {
	backend := &stubBackend{reply: "Refined. Transcript."}
	svc := NewService(backend, logger.New("error"))

	if got := svc.Refine(context.Background(), "raw"); got != "Refined. Transcript." {
		t.Errorf("Refine() = %q", got)
	}
	if backend.lastUser != "raw" {
		t.Errorf("backend received %q, want the raw text", backend.lastUser)
	}
}

func TestSummarizeReturnsMessageOnFailure(t *testing.T) {
	backend := &stubBackend{err: errors.New("quota exceeded")}
	svc := NewService(backend, logger.New("error"))

	got := svc.Summarize(context.Background(), "some transcript", "")
	if !strings.Contains(got, "Summarization Error") {
		t.Errorf("Summarize() = %q, want a failure message", got)
	}
}

func TestSummarizeCustomPrompt(t *testing.T) {
	backend := &stubBackend{reply: "ok"}
	svc := NewService(backend, logger.New("error"))

	svc.Summarize(context.Background(), "text", "Summarize as haiku.")
	if backend.lastSystem != "Summarize as haiku." {
		t.Errorf("system prompt = %q, want the custom prompt", backend.lastSystem)
	}

	svc.Summarize(context.Background(), "text", "")
	if backend.lastSystem == "Summarize as haiku." {
		t.Error("default prompt not restored when custom prompt is empty")
	}
}

func TestNewBackend(t *testing.T) {
	log := logger.New("error")

	t.Run("openai with key", func(t *testing.T) {
		b, err := NewBackend(config.LLMConfig{Provider: "openai", APIKey: "k", Model: "deepseek-chat"}, "", log)
		if err != nil || b == nil {
			t.Fatalf("NewBackend() = %v, %v", b, err)
		}
	})

	t.Run("per-batch key overrides config", func(t *testing.T) {
		b, err := NewBackend(config.LLMConfig{Provider: "openai", Model: "deepseek-chat"}, "override", log)
		if err != nil || b == nil {
			t.Fatalf("NewBackend() = %v, %v", b, err)
		}
	})

	t.Run("openai without key fails", func(t *testing.T) {
		if _, err := NewBackend(config.LLMConfig{Provider: "openai"}, "", log); err == nil {
			t.Error("expected error without API key")
		}
	})

	t.Run("gemini with key list", func(t *testing.T) {
		b, err := NewBackend(config.LLMConfig{Provider: "gemini", APIKeys: []string{"a", "b"}, Model: "gemini-2.5-flash"}, "", log)
		if err != nil || b == nil {
			t.Fatalf("NewBackend() = %v, %v", b, err)
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		if _, err := NewBackend(config.LLMConfig{Provider: "other", APIKey: "k"}, "", log); err == nil {
			t.Error("expected error for unknown provider")
		}
	})
}
