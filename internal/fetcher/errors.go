package fetcher

import (
	"context"
	"errors"
	"strings"

	"github.com/nguyentantai21042004/media-digest/internal/domain"
	"github.com/nguyentantai21042004/media-digest/internal/textutil"
)

// Classify converts a raw resolver or transport error into the typed
// taxonomy surfaced to users. Resolver output is colorized, so the
// text is ANSI-stripped before matching.
func Classify(err error) *domain.TaskError {
	if err == nil {
		return nil
	}

	var te *domain.TaskError
	if errors.As(err, &te) {
		return te
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, domain.ErrStopped) {
		return domain.NewTaskError(domain.KindStopped, "stopped")
	}

	msg := textutil.StripANSI(err.Error())
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "sign in to confirm your age"),
		strings.Contains(lower, "age-restricted"),
		strings.Contains(lower, "confirm your age"):
		return domain.NewTaskError(domain.KindAgeRestricted, msg)
	case strings.Contains(lower, "http error 403"), strings.Contains(lower, "403 forbidden"):
		return domain.NewTaskError(domain.KindAccessDenied, msg)
	case strings.Contains(lower, "http error 429"), strings.Contains(lower, "too many requests"):
		return domain.NewTaskError(domain.KindRateLimited, msg)
	case strings.Contains(lower, "http error 404"),
		strings.Contains(lower, "video unavailable"),
		strings.Contains(lower, "private video"),
		strings.Contains(lower, "not found"):
		return domain.NewTaskError(domain.KindNotFound, msg)
	case strings.Contains(lower, "timed out"),
		strings.Contains(lower, "timeout"),
		strings.Contains(lower, "connection refused"),
		strings.Contains(lower, "connection reset"),
		strings.Contains(lower, "no such host"),
		strings.Contains(lower, "network is unreachable"):
		return domain.NewTaskError(domain.KindNetwork, msg)
	default:
		return domain.NewTaskError(domain.KindGeneric, msg)
	}
}

// isUnsupportedURL detects the resolver refusing an identifier
// outright, which is the only case where the direct path takes over.
func isUnsupportedURL(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "unsupported url")
}
