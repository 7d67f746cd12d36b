package pdf

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// ErrCancelled is returned when the caller cancels an export. The returned
// error also matches context.Canceled.
var ErrCancelled = errors.New("pdf export cancelled")

type cancelledError struct {
	cause error
}

func (e *cancelledError) Error() string { return ErrCancelled.Error() + ": " + e.cause.Error() }

func (e *cancelledError) Is(target error) bool { return target == ErrCancelled }

func (e *cancelledError) Unwrap() error { return e.cause }

func (e *cancelledError) ErrorType() string { return "cancelled" }

func cancelled(ctx context.Context) error {
	cause := ctx.Err()
	if cause == nil {
		cause = context.Canceled
	}
	return &cancelledError{cause: cause}
}

// RenderBackendTimeoutError is returned when the backend does not finish in time.
type RenderBackendTimeoutError struct {
	Timeout time.Duration
}

func (e *RenderBackendTimeoutError) Error() string {
	return fmt.Sprintf("pdf backend did not finish within %s", e.Timeout)
}

func (e *RenderBackendTimeoutError) ErrorType() string { return "render_backend_timeout" }

func (e *RenderBackendTimeoutError) Unwrap() error { return context.DeadlineExceeded }

// RenderBackendError is returned when the backend fails. Diagnostic holds
// the backend's own output, unmodified.
type RenderBackendError struct {
	Backend    string
	Diagnostic string
	Err        error
}

func (e *RenderBackendError) Error() string {
	msg := "pdf backend failed"
	if e.Backend != "" {
		msg = e.Backend + " failed"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RenderBackendError) ErrorType() string { return "render_backend_error" }

func (e *RenderBackendError) Unwrap() error { return e.Err }
