package sources

import (
	"context"
	"errors"
	"fmt"

	"careerintel/pkg/models"
)

// Adapter fetches raw listings from one external job board.
//
// Search issues exactly one network fetch per call, bounded by the caller's
// context, and parses entries best-effort: a malformed listing is skipped,
// never aborts the batch. A transport-level failure (network error, non-2xx,
// timeout) is reported as an *UnavailableError so the aggregator can treat
// the source as degraded instead of failing the whole call.
type Adapter interface {
	Name() string
	Search(ctx context.Context, query, location string, limit int) ([]models.RawJob, error)
}

// UnavailableError marks a single source's fetch failure. The aggregator
// absorbs it: the source contributes zero results and the condition is
// logged, never surfaced to the caller.
type UnavailableError struct {
	Source     string
	StatusCode int
	Err        error
}

func (e *UnavailableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("source %s unavailable: status %d", e.Source, e.StatusCode)
	}
	return fmt.Sprintf("source %s unavailable: %v", e.Source, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// IsUnavailable reports whether err is a source-unavailable condition.
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}

func unavailable(source string, status int, err error) *UnavailableError {
	return &UnavailableError{Source: source, StatusCode: status, Err: err}
}
