package pdf

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backendFunc func(ctx context.Context, in Input) ([]byte, error)

func (f backendFunc) Convert(ctx context.Context, in Input) ([]byte, error) { return f(ctx, in) }

func blocking() Backend {
	return backendFunc(func(ctx context.Context, in Input) ([]byte, error) {
		<-ctx.Done()
		return []byte("%PDF-partial"), ctx.Err()
	})
}

func TestExport(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var got Input
		out, err := Export(context.Background(), backendFunc(func(ctx context.Context, in Input) ([]byte, error) {
			got = in
			return []byte("%PDF-1.4"), nil
		}), Input{HTML: []byte("<html></html>"), BaseHref: "file:///docs/"}, time.Second)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4", string(out))
		assert.Equal(t, "file:///docs/", got.BaseHref)
	})

	t.Run("timeout", func(t *testing.T) {
		out, err := Export(context.Background(), blocking(), Input{}, 10*time.Millisecond)
		assert.Nil(t, out)
		var te *RenderBackendTimeoutError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, 10*time.Millisecond, te.Timeout)
		assert.Equal(t, "render_backend_timeout", te.ErrorType())
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()
		out, err := Export(ctx, blocking(), Input{}, time.Minute)
		assert.Nil(t, out)
		assert.ErrorIs(t, err, ErrCancelled)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("already cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		called := false
		_, err := Export(ctx, backendFunc(func(ctx context.Context, in Input) ([]byte, error) {
			called = true
			return nil, nil
		}), Input{}, 0)
		assert.ErrorIs(t, err, ErrCancelled)
		assert.False(t, called)
	})

	t.Run("backend failure keeps diagnostic", func(t *testing.T) {
		diag := "Error: Failed to load file:///x.html, with network status code 203\n"
		out, err := Export(context.Background(), backendFunc(func(ctx context.Context, in Input) ([]byte, error) {
			return []byte("partial"), &RenderBackendError{Backend: "wkhtmltopdf", Diagnostic: diag, Err: errors.New("exit status 1")}
		}), Input{}, time.Second)
		assert.Nil(t, out)
		var be *RenderBackendError
		require.ErrorAs(t, err, &be)
		assert.Equal(t, diag, be.Diagnostic)
		assert.Equal(t, "render_backend_error", be.ErrorType())
	})

	t.Run("plain error is wrapped", func(t *testing.T) {
		_, err := Export(context.Background(), backendFunc(func(ctx context.Context, in Input) ([]byte, error) {
			return nil, errors.New("boom")
		}), Input{}, 0)
		var be *RenderBackendError
		require.ErrorAs(t, err, &be)
		assert.Equal(t, "boom", be.Diagnostic)
	})

	t.Run("empty output", func(t *testing.T) {
		_, err := Export(context.Background(), backendFunc(func(ctx context.Context, in Input) ([]byte, error) {
			return nil, nil
		}), Input{}, 0)
		var be *RenderBackendError
		assert.ErrorAs(t, err, &be)
	})

	t.Run("no backend", func(t *testing.T) {
		_, err := Export(context.Background(), nil, Input{}, 0)
		var be *RenderBackendError
		assert.ErrorAs(t, err, &be)
	})
}

func TestWkhtmltopdf_Args(t *testing.T) {
	w := &Wkhtmltopdf{}
	args := w.Args("/tmp/x/index.html", "/tmp/x/cover.html", "/tmp/x/out.pdf")
	assert.Equal(t, []string{
		"-d", "125", "--page-size", "A4",
		"cover", "/tmp/x/cover.html",
		"toc",
		"page", "/tmp/x/index.html",
		"--footer-center", "Page [page]",
		"--footer-font-size", "8",
		"--footer-spacing", "3",
		"--run-script", readyScript,
		"--window-status", "done",
		"/tmp/x/out.pdf",
	}, args)

	w = &Wkhtmltopdf{PageSize: "Letter", DPI: 96, ExtraArgs: []string{"--grayscale"}}
	args = w.Args("p.html", "", "o.pdf")
	assert.Equal(t, []string{"-d", "96", "--page-size", "Letter"}, args[:4])
	assert.NotContains(t, args, "cover")
	assert.Equal(t, []string{"--grayscale", "o.pdf"}, args[len(args)-2:])
}

func TestWkhtmltopdf_MissingBinary(t *testing.T) {
	w := &Wkhtmltopdf{Binary: "/nonexistent/wkhtmltopdf"}
	_, err := Export(context.Background(), w, Input{HTML: []byte("<html></html>")}, time.Second)
	var be *RenderBackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "/nonexistent/wkhtmltopdf", be.Backend)
}

func TestWithBase(t *testing.T) {
	doc := []byte(`<html><head lang="en"><title>x</title></head></html>`)
	assert.Equal(t,
		`<html><head lang="en"><base href="file:///a/b/"><title>x</title></head></html>`,
		string(withBase(doc, "file:///a/b/")))
	assert.Equal(t, string(doc), string(withBase(doc, "")))
	assert.Equal(t, `<base href="x/">body`, string(withBase([]byte("body"), "x/")))
}
