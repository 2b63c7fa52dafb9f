package domain

// Status is the lifecycle state of one task. Transitions only move
// forward through the stage sequence, or to Failed/Stopped which are
// terminal.
type Status string

const (
	StatusPending         Status = "pending"
	StatusResolving       Status = "resolving"
	StatusDownloading     Status = "downloading"
	StatusDownloaded      Status = "downloaded"
	StatusExtractingAudio Status = "extracting_audio"
	StatusTranscribing    Status = "transcribing"
	StatusRefining        Status = "refining"
	StatusSummarizing     Status = "summarizing"
	StatusCompleted       Status = "completed"
	StatusFailed          Status = "failed"
	StatusStopped         Status = "stopped"
)

// stageOrder positions each forward state in the pipeline sequence.
var stageOrder = map[Status]int{
	StatusPending:         0,
	StatusResolving:       1,
	StatusDownloading:     2,
	StatusDownloaded:      3,
	StatusExtractingAudio: 4,
	StatusTranscribing:    5,
	StatusRefining:        6,
	StatusSummarizing:     7,
	StatusCompleted:       8,
}

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusStopped:
		return true
	default:
		return false
	}
}

// Active reports whether the task is currently inside a stage.
func (s Status) Active() bool {
	return !s.Terminal() && s != StatusPending
}

// CanTransition enforces the forward-only state machine: any
// non-terminal state may fail or stop, otherwise the target must be
// strictly later in the stage sequence. Resolving and Downloading are
// interchangeable faces of acquisition, so either may follow Pending.
func CanTransition(from, to Status) bool {
	if from.Terminal() {
		return false
	}
	if to == StatusFailed || to == StatusStopped {
		return true
	}
	fromPos, ok := stageOrder[from]
	if !ok {
		return false
	}
	toPos, ok := stageOrder[to]
	if !ok {
		return false
	}
	if from == StatusResolving && to == StatusDownloading {
		return true
	}
	return toPos > fromPos
}
