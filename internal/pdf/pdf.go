// Package pdf converts a rendered HTML bundle into a PDF through an external backend.
package pdf

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Input is what a backend converts.
type Input struct {
	// HTML is the main page.
	HTML []byte
	// Cover is an optional cover page placed before the table of contents.
	Cover []byte
	// BaseHref, when set, is injected as <base href> so relative links and
	// images resolve against it.
	BaseHref string
}

// Backend turns HTML into PDF bytes. Implementations must stop when ctx is done.
type Backend interface {
	Convert(ctx context.Context, in Input) ([]byte, error)
}

// Export runs backend once with a bounded timeout. A timeout of zero or less
// means no limit beyond ctx. There are no retries and no partial output: on
// any error the returned bytes are nil.
func Export(ctx context.Context, backend Backend, in Input, timeout time.Duration) ([]byte, error) {
	if backend == nil {
		return nil, &RenderBackendError{Diagnostic: "no pdf backend configured"}
	}
	if ctx.Err() != nil {
		return nil, cancelled(ctx)
	}
	run := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		run, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	out, err := backend.Convert(run, in)
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return nil, cancelled(ctx)
	case ctx.Err() != nil || errors.Is(run.Err(), context.DeadlineExceeded):
		return nil, &RenderBackendTimeoutError{Timeout: timeout}
	case err != nil:
		var be *RenderBackendError
		if errors.As(err, &be) {
			return nil, be
		}
		return nil, &RenderBackendError{Diagnostic: err.Error(), Err: err}
	case len(out) == 0:
		return nil, &RenderBackendError{Diagnostic: "backend produced no output"}
	}
	return out, nil
}
