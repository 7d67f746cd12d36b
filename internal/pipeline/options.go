package pipeline

import (
	"io/fs"
	"log/slog"
	"time"

	"github.com/apib-renderer/renderer/internal/metrics"
	"github.com/apib-renderer/renderer/internal/pdf"
)

// Options configures the pipeline behavior.
type Options struct {
	// StrictJSON turns invalid JSON bodies from warnings into errors.
	StrictJSON bool
	// Cover adds a cover page to the bundle and to the PDF.
	Cover bool
	// PDF, when its Backend is set, adds <name>.pdf to every successful result.
	PDF PDFOptions
	// Templates overrides built-in templates by file name.
	Templates fs.FS
	// MaxParallel is the max number of documents rendered at once by RenderAll (0 = default).
	MaxParallel int
	// Name is the base name of the output files; "index" when empty.
	Name string
	// Logger receives stage logs; logger.Default when nil.
	Logger *slog.Logger
	// Metrics records render counts and stage timings; nil records nothing.
	Metrics *metrics.Metrics
}

// PDFOptions configures the optional PDF export.
type PDFOptions struct {
	Backend  pdf.Backend
	Timeout  time.Duration
	BaseHref string
}

// DefaultPDFTimeout bounds a PDF export when no timeout is configured.
const DefaultPDFTimeout = 2 * time.Minute

// DefaultOptions returns default pipeline options.
func DefaultOptions() Options {
	return Options{
		Name:        "index",
		MaxParallel: 0, // use runtime.NumCPU in pipeline
		PDF:         PDFOptions{Timeout: DefaultPDFTimeout},
	}
}
