package pipeline

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/apib-renderer/renderer/internal/blueprint"
	"github.com/apib-renderer/renderer/internal/builder"
	_ "github.com/apib-renderer/renderer/internal/handler"
	"github.com/apib-renderer/renderer/internal/logger"
	"github.com/apib-renderer/renderer/internal/metrics"
	"github.com/apib-renderer/renderer/internal/pdf"
	"github.com/apib-renderer/renderer/internal/registry"
	"github.com/apib-renderer/renderer/internal/render"
	"github.com/apib-renderer/renderer/internal/resolver"
	"github.com/apib-renderer/renderer/internal/result"
)

var suggestions = map[string]string{
	"malformed_structure":    "Check the indentation and the keyword of the reported line",
	"unknown_section_kind":   "Move the section under a resource, action or payload that accepts it",
	"unresolved_reference":   "Declare the type under # Data Structures or fix its name",
	"cyclic_reference":       "Break the inheritance or Include cycle",
	"render_backend_timeout": "Raise the pdf timeout or simplify the document",
	"render_backend_error":   "Check that the PDF backend is installed and read its diagnostic output",
}

// Source is one document to render.
type Source struct {
	Name string
	Text string
}

// Pipeline renders API description documents into HTML bundles.
// It is safe for concurrent use; every run owns its document tree.
type Pipeline struct {
	opts     Options
	reg      *registry.Registry
	renderer *render.Renderer
	log      *slog.Logger
}

// New returns a new pipeline with the given options.
func New(opts Options) (*Pipeline, error) {
	if opts.MaxParallel <= 0 {
		opts.MaxParallel = runtime.NumCPU()
	}
	if opts.MaxParallel > 32 {
		opts.MaxParallel = 32
	}
	if opts.Name == "" {
		opts.Name = "index"
	}
	if opts.PDF.Timeout <= 0 {
		opts.PDF.Timeout = DefaultPDFTimeout
	}
	log := opts.Logger
	if log == nil {
		log = logger.Default
	}
	r, err := render.New(render.Options{
		Name:      opts.Name,
		Cover:     opts.Cover,
		Templates: opts.Templates,
		Registry:  registry.Default,
	})
	if err != nil {
		return nil, errors.Wrap(err, "preparing templates")
	}
	return &Pipeline{opts: opts, reg: registry.Default, renderer: r, log: log}, nil
}

// Options returns the effective options.
func (p *Pipeline) Options() Options {
	return p.opts
}

// Render runs the whole pipeline on one document named after Options.Name.
// Problems in the document are reported in the result; the returned error is
// reserved for cancellation.
func (p *Pipeline) Render(ctx context.Context, text string) (*result.RenderResult, error) {
	return p.run(ctx, p.opts.Name, text)
}

// RenderSource is Render for a named document; output files are named after src.Name.
func (p *Pipeline) RenderSource(ctx context.Context, src Source) (*result.RenderResult, error) {
	return p.run(ctx, src.Name, src.Text)
}

// RenderAll renders independent documents concurrently, at most
// MaxParallel at a time. Results are in source order.
func (p *Pipeline) RenderAll(ctx context.Context, sources []Source) ([]*result.RenderResult, error) {
	results := make([]*result.RenderResult, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.MaxParallel)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			res, err := p.run(gctx, src.Name, src.Text)
			if err != nil {
				return errors.Wrapf(err, "rendering %s", src.Name)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (p *Pipeline) run(ctx context.Context, name, text string) (*result.RenderResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name == "" {
		name = p.opts.Name
	}
	out := &result.RenderResult{Name: name, Success: true}
	defer p.record(out)

	// 1. Lex and build the document tree
	var doc *blueprint.Document
	err := p.timed(metrics.StageParse, name, func() (err error) {
		doc, err = builder.Parse(text)
		return err
	})
	if err != nil {
		p.fail(out, err)
		return out, nil
	}

	// 2. Structural validation
	start := time.Now()
	for _, e := range blueprint.Validate(doc, blueprint.ValidateOptions{StrictJSON: p.opts.StrictJSON}) {
		if e.Severity == "warning" {
			out.Warnings = append(out.Warnings, result.Warning(e))
			continue
		}
		out.Fail(result.Error(e))
	}
	p.observe(metrics.StageValidate, name, time.Since(start), out.Success)
	if !out.Success {
		return out, nil
	}

	// 3. Resolve type references, then check samples against their types
	var res *resolver.Resolved
	err = p.timed(metrics.StageResolve, name, func() (err error) {
		res, err = resolver.Resolve(doc, p.reg.Has)
		return err
	})
	if err != nil {
		p.fail(out, err)
		return out, nil
	}
	p.checkTypes(doc, out)
	if !out.Success {
		return out, nil
	}

	// 4. Render the HTML bundle
	var bundle *render.Bundle
	err = p.timed(metrics.StageRender, name, func() (err error) {
		bundle, err = p.renderer.RenderNamed(res, name)
		return err
	})
	if err != nil {
		out.Fail(result.Error{Type: "render_error", Severity: "error", Message: err.Error(),
			Suggestion: "Check the custom templates"})
		return out, nil
	}
	out.Files = bundle.Files

	// 5. Optional PDF export
	if p.opts.PDF.Backend == nil {
		return out, nil
	}
	if err := p.ExportPDF(ctx, out, p.opts.PDF.Backend, p.opts.PDF.Timeout); err != nil {
		if errors.Is(err, pdf.ErrCancelled) {
			return nil, err
		}
		p.fail(out, err)
	}
	return out, nil
}

// ExportPDF converts the HTML of a successful result into <name>.pdf and adds
// it to the result's files.
func (p *Pipeline) ExportPDF(ctx context.Context, out *result.RenderResult, backend pdf.Backend, timeout time.Duration) error {
	if !out.Success {
		return errors.New("cannot export a failed render")
	}
	name := out.Name
	page, ok := out.Files[name+".html"]
	if !ok {
		return errors.Errorf("result has no %s.html", name)
	}
	var b []byte
	err := p.timed(metrics.StagePDF, name, func() (err error) {
		b, err = pdf.Export(ctx, backend, pdf.Input{
			HTML:     page,
			Cover:    out.Files[render.CoverFile],
			BaseHref: p.opts.PDF.BaseHref,
		}, timeout)
		return err
	})
	if err != nil {
		return err
	}
	out.Files[name+".pdf"] = b
	return nil
}

func (p *Pipeline) timed(stage, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	p.observe(stage, name, time.Since(start), err == nil)
	return err
}

func (p *Pipeline) observe(stage, name string, d time.Duration, ok bool) {
	p.opts.Metrics.ObserveStage(stage, d)
	p.log.Debug("stage finished", "stage", stage, "document", name, "duration", d, "ok", ok)
}

func (p *Pipeline) fail(out *result.RenderResult, err error) {
	e := result.FromError(err, "")
	e.Suggestion = suggestions[e.Type]
	out.Fail(e)
}

func (p *Pipeline) record(out *result.RenderResult) {
	p.opts.Metrics.Rendered(out.Success)
	for _, e := range out.Errors {
		p.opts.Metrics.Error(e.Type)
	}
	if !out.Success {
		p.log.Info("render failed", "document", out.Name, "errors", len(out.Errors), "warnings", len(out.Warnings))
		return
	}
	p.log.Debug("render finished", "document", out.Name, "files", out.FileNames(), "warnings", len(out.Warnings))
}
