package engine

import (
	"fmt"

	"kyc-intake/pkg/platform/sentinel"
)

// Category is the normalized failure taxonomy for engine calls.
type Category string

const (
	// CategoryUnreachable: the engine could not be reached at all.
	CategoryUnreachable Category = "unreachable"
	// CategoryTimeout: the engine did not answer within the client timeout.
	CategoryTimeout Category = "timeout"
	// CategoryRejected: the engine answered with a non-2xx status.
	CategoryRejected Category = "rejected"
)

// EngineError wraps a failed task completion. StatusCode and Body are only
// set for rejected calls; Body carries the engine's response verbatim.
type EngineError struct {
	Category   Category
	StatusCode int
	Body       string
	Underlying error
}

func (e *EngineError) Error() string {
	switch {
	case e.Category == CategoryRejected:
		return fmt.Sprintf("engine error: %d - %s", e.StatusCode, e.Body)
	case e.Underlying != nil:
		return fmt.Sprintf("engine %s: %v", e.Category, e.Underlying)
	default:
		return fmt.Sprintf("engine %s", e.Category)
	}
}

// Unwrap exposes both the matching sentinel and the transport error.
func (e *EngineError) Unwrap() []error {
	errs := []error{e.sentinel()}
	if e.Underlying != nil {
		errs = append(errs, e.Underlying)
	}
	return errs
}

func (e *EngineError) sentinel() error {
	switch e.Category {
	case CategoryTimeout:
		return sentinel.ErrTimeout
	case CategoryRejected:
		return sentinel.ErrRejected
	default:
		return sentinel.ErrUnavailable
	}
}
