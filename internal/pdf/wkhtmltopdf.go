package pdf

import (
	"bytes"
	"context"
	"html"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/pkg/errors"
)

const (
	DefaultBinary   = "wkhtmltopdf"
	DefaultPageSize = "A4"
	DefaultDPI      = 125
)

// readyScript marks the page as done once the document has loaded.
const readyScript = "setInterval(function(){if(document.readyState=='complete') window.status='done';},100)"

var headOpenRe = regexp.MustCompile(`(?i)<head[^>]*>`)

// Wkhtmltopdf converts HTML by running the wkhtmltopdf binary. Inputs are
// written to a private temporary directory that is removed afterwards.
type Wkhtmltopdf struct {
	Binary    string
	PageSize  string
	DPI       int
	ExtraArgs []string
}

var _ Backend = (*Wkhtmltopdf)(nil)

// Args returns the command line for converting page (and cover, when not
// empty) into out.
func (w *Wkhtmltopdf) Args(page, cover, out string) []string {
	pageSize, dpi := w.PageSize, w.DPI
	if pageSize == "" {
		pageSize = DefaultPageSize
	}
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	args := []string{"-d", strconv.Itoa(dpi), "--page-size", pageSize}
	if cover != "" {
		args = append(args, "cover", cover)
	}
	args = append(args,
		"toc",
		"page", page,
		"--footer-center", "Page [page]",
		"--footer-font-size", "8",
		"--footer-spacing", "3",
		"--run-script", readyScript,
		"--window-status", "done",
	)
	args = append(args, w.ExtraArgs...)
	return append(args, out)
}

func (w *Wkhtmltopdf) Convert(ctx context.Context, in Input) ([]byte, error) {
	bin := w.Binary
	if bin == "" {
		bin = DefaultBinary
	}
	dir, err := os.MkdirTemp("", "apirender-")
	if err != nil {
		return nil, errors.Wrap(err, "creating pdf work dir")
	}
	defer os.RemoveAll(dir)

	page := filepath.Join(dir, "index.html")
	if err := os.WriteFile(page, withBase(in.HTML, in.BaseHref), 0o600); err != nil {
		return nil, errors.Wrap(err, "writing pdf input")
	}
	var cover string
	if len(in.Cover) > 0 {
		cover = filepath.Join(dir, "cover.html")
		if err := os.WriteFile(cover, withBase(in.Cover, in.BaseHref), 0o600); err != nil {
			return nil, errors.Wrap(err, "writing pdf cover")
		}
	}
	out := filepath.Join(dir, "out.pdf")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, w.Args(page, cover, out)...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &RenderBackendError{Backend: bin, Diagnostic: stderr.String(), Err: err}
	}
	b, err := os.ReadFile(out)
	if err != nil {
		return nil, &RenderBackendError{Backend: bin, Diagnostic: stderr.String(), Err: err}
	}
	return b, nil
}

// withBase injects <base href> right after the opening head tag.
func withBase(doc []byte, href string) []byte {
	if href == "" {
		return doc
	}
	tag := []byte(`<base href="` + html.EscapeString(href) + `">`)
	loc := headOpenRe.FindIndex(doc)
	if loc == nil {
		return append(tag, doc...)
	}
	out := make([]byte, 0, len(doc)+len(tag))
	out = append(out, doc[:loc[1]]...)
	out = append(out, tag...)
	return append(out, doc[loc[1]:]...)
}
