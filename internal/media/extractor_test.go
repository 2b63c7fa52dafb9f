package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/nguyentantai21042004/media-digest/internal/domain"
	"github.com/nguyentantai21042004/media-digest/internal/logger"
)

type fakeExecutor struct {
	err      error
	lastName string
	lastArgs []string
	calls    int
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	f.calls++
	f.lastName = name
	f.lastArgs = args
	return "", f.err
}

func TestExtractBuildsCorrectCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "video.mp4")
	output := filepath.Join(dir, "audio.wav")
	if err := os.WriteFile(input, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	exec := &fakeExecutor{}
	e := New("", exec, logger.New("error"))

	if err := e.Extract(context.Background(), input, output); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if exec.lastName != "ffmpeg" {
		t.Errorf("binary = %q, want ffmpeg", exec.lastName)
	}
	want := []string{"-y", "-i", input, "-vn", "-acodec", "pcm_s16le", "-ac", "1", "-ar", "16000", output}
	if !reflect.DeepEqual(exec.lastArgs, want) {
		t.Errorf("args = %v, want %v", exec.lastArgs, want)
	}
}

func TestExtractMissingInput(t *testing.T) {
	exec := &fakeExecutor{}
	e := New("ffmpeg", exec, logger.New("error"))

	err := e.Extract(context.Background(), "/nonexistent/video.mp4", "/tmp/out.wav")
	if domain.KindOf(err) != domain.KindFileNotFound {
		t.Errorf("error kind = %v, want file_not_found", domain.KindOf(err))
	}
	if exec.calls != 0 {
		t.Error("executor invoked despite missing input")
	}
}

func TestExtractProcessFailure(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "video.mp4")
	if err := os.WriteFile(input, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	exec := &fakeExecutor{err: errors.New("command 'ffmpeg' failed: exit status 1\nstderr: invalid data")}
	e := New("ffmpeg", exec, logger.New("error"))

	err := e.Extract(context.Background(), input, filepath.Join(dir, "out.wav"))
	if domain.KindOf(err) != domain.KindProcess {
		t.Errorf("error kind = %v, want process", domain.KindOf(err))
	}
}

func TestExtractIdempotentArgs(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "video.mp4")
	output := filepath.Join(dir, "audio.wav")
	if err := os.WriteFile(input, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	exec := &fakeExecutor{}
	e := New("ffmpeg", exec, logger.New("error"))

	if err := e.Extract(context.Background(), input, output); err != nil {
		t.Fatal(err)
	}
	first := append([]string(nil), exec.lastArgs...)
	if err := e.Extract(context.Background(), input, output); err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first, exec.lastArgs) {
		t.Error("repeated extraction changed the transcode parameters")
	}
}
