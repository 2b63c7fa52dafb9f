package domain

import (
	"errors"
	"fmt"
)

// ErrKind categorizes failures that cross a component boundary.
// Raw errors never reach the orchestrator: each stage converts what it
// catches into a TaskError carrying one of these kinds.
type ErrKind string

const (
	KindGeneric       ErrKind = "generic"
	KindNetwork       ErrKind = "network"
	KindHTTPStatus    ErrKind = "http_status"
	KindAccessDenied  ErrKind = "access_denied"
	KindRateLimited   ErrKind = "rate_limited"
	KindNotFound      ErrKind = "not_found"
	KindAgeRestricted ErrKind = "age_restricted"
	KindProcess       ErrKind = "process"
	KindFileNotFound  ErrKind = "file_not_found"
	KindRemoteService ErrKind = "remote_service"
	KindStopped       ErrKind = "stopped"
)

// ErrStopped is returned from cooperative cancellation checkpoints.
var ErrStopped = errors.New("stopped by caller")

// TaskError is a typed failure outcome for one task.
type TaskError struct {
	Kind       ErrKind
	StatusCode int
	Message    string
}

func (e *TaskError) Error() string {
	switch e.Kind {
	case KindAccessDenied:
		return "Access Denied (403)"
	case KindNotFound:
		return "Not Found"
	case KindRateLimited:
		return "Rate Limited (429)"
	case KindAgeRestricted:
		return "Age Restricted"
	case KindHTTPStatus:
		return fmt.Sprintf("HTTP Error %d", e.StatusCode)
	case KindStopped:
		return "Stopped"
	default:
		return e.Message
	}
}

// NewTaskError builds a TaskError with a plain message.
func NewTaskError(kind ErrKind, message string) *TaskError {
	return &TaskError{Kind: kind, Message: message}
}

// NewHTTPStatusError builds the kind carrying a status code.
func NewHTTPStatusError(code int) *TaskError {
	return &TaskError{Kind: KindHTTPStatus, StatusCode: code, Message: fmt.Sprintf("HTTP Error %d", code)}
}

// KindOf extracts the taxonomy kind from any error, defaulting to
// generic for untyped errors.
func KindOf(err error) ErrKind {
	if err == nil {
		return ""
	}
	var te *TaskError
	if errors.As(err, &te) {
		return te.Kind
	}
	if errors.Is(err, ErrStopped) {
		return KindStopped
	}
	return KindGeneric
}
