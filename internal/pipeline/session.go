package pipeline

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/media-digest/internal/domain"
)

// taskState is the mutable record for one task. Only the stage
// currently owning the task writes to it, always through the store's
// lock; pollers read snapshots concurrently.
type taskState struct {
	id      string
	index   int
	url     string
	status  domain.Status
	percent int
	errText string
	path    string
	result  *domain.PipelineResult
}

// store is the concurrency-safe task table for one task category
// (downloads or analyses). It survives across sessions so pollers see
// every task ever submitted in this process.
type store struct {
	mu    sync.RWMutex
	order []*taskState
	byID  map[string]*taskState
}

func newStore() *store {
	return &store{byID: make(map[string]*taskState)}
}

// Session groups the tasks of one submission and binds progress
// callbacks to their indices.
type Session struct {
	ID    string
	Dir   string
	store *store
	tasks []*taskState
}

// newSession registers one taskState per URL in the store. The
// session gets its own subdirectory under baseDir so artifacts from
// different submissions never collide.
func newSession(st *store, urls []string, baseDir string) *Session {
	id := uuid.New().String()
	sess := &Session{
		ID:    id,
		Dir:   filepath.Join(baseDir, id),
		store: st,
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	for i, url := range urls {
		task := &taskState{
			id:     uuid.New().String(),
			index:  i,
			url:    url,
			status: domain.StatusPending,
		}
		sess.tasks = append(sess.tasks, task)
		st.order = append(st.order, task)
		st.byID[task.id] = task
	}
	return sess
}

// snapshots returns the current progress of this session's tasks only.
func (s *Session) snapshots() []domain.TaskProgress {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	out := make([]domain.TaskProgress, len(s.tasks))
	for i, task := range s.tasks {
		out[i] = snapshot(task)
	}
	return out
}

// SourceTasks returns the immutable acquisition inputs.
func (s *Session) SourceTasks() []domain.SourceTask {
	out := make([]domain.SourceTask, len(s.tasks))
	for i, task := range s.tasks {
		out[i] = domain.SourceTask{Index: task.index, URL: task.url}
	}
	return out
}

func (s *Session) setStatus(index int, to domain.Status) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	task := s.tasks[index]
	if domain.CanTransition(task.status, to) {
		task.status = to
	}
}

// setPercent only ever raises the value: progress is monotonically
// non-decreasing within a task's lifetime.
func (s *Session) setPercent(index, percent int) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	task := s.tasks[index]
	if percent > task.percent {
		task.percent = percent
	}
}

func (s *Session) fail(index int, err error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	task := s.tasks[index]
	to := domain.StatusFailed
	if domain.KindOf(err) == domain.KindStopped {
		to = domain.StatusStopped
	}
	if domain.CanTransition(task.status, to) {
		task.status = to
		task.errText = err.Error()
	}
}

func (s *Session) setPath(index int, path string) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.tasks[index].path = path
}

func (s *Session) complete(index int, result *domain.PipelineResult) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	task := s.tasks[index]
	if domain.CanTransition(task.status, domain.StatusCompleted) {
		task.status = domain.StatusCompleted
		task.percent = 100
		task.result = result
	}
}

// applyStatusText maps fetcher status strings onto the state machine.
func (s *Session) applyStatusText(index int, text string) {
	switch {
	case text == "Analyzing...":
		s.setStatus(index, domain.StatusResolving)
	case text == "Downloading..." || strings.HasPrefix(text, "Retrying"):
		s.setStatus(index, domain.StatusDownloading)
	case text == "Completed":
		s.setStatus(index, domain.StatusDownloaded)
	case text == "Stopped":
		s.fail(index, domain.NewTaskError(domain.KindStopped, "stopped"))
	case strings.HasPrefix(text, "Error: "):
		s.failText(index, strings.TrimPrefix(text, "Error: "))
	case strings.HasPrefix(text, "Failed: "):
		s.failText(index, strings.TrimPrefix(text, "Failed: "))
	}
}

func (s *Session) failText(index int, message string) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	task := s.tasks[index]
	if domain.CanTransition(task.status, domain.StatusFailed) {
		task.status = domain.StatusFailed
		task.errText = message
	}
}

func snapshot(task *taskState) domain.TaskProgress {
	p := domain.TaskProgress{
		ID:      task.id,
		Index:   task.index,
		URL:     task.url,
		Status:  task.status,
		Percent: task.percent,
		Error:   task.errText,
		Result:  task.result,
	}
	if task.path != "" {
		p.Filename = filepath.Base(task.path)
	}
	return p
}

func (st *store) snapshots() []domain.TaskProgress {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]domain.TaskProgress, len(st.order))
	for i, task := range st.order {
		out[i] = snapshot(task)
	}
	return out
}

func (st *store) task(id string) (domain.TaskProgress, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	task, ok := st.byID[id]
	if !ok {
		return domain.TaskProgress{}, false
	}
	return snapshot(task), true
}

// path returns the local file for a completed task.
func (st *store) path(id string) (string, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	task, ok := st.byID[id]
	if !ok || task.status != domain.StatusCompleted || task.path == "" {
		return "", false
	}
	return task.path, true
}
