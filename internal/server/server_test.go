package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apib-renderer/renderer/internal/fixtures"
	"github.com/apib-renderer/renderer/internal/logger"
	"github.com/apib-renderer/renderer/internal/metrics"
	"github.com/apib-renderer/renderer/internal/pdf"
	"github.com/apib-renderer/renderer/internal/pipeline"
	"github.com/apib-renderer/renderer/internal/result"
)

type mapSource map[string]string

func (m mapSource) Read(name string) (string, error) {
	text, ok := m[name]
	if !ok {
		return "", errors.Wrap(os.ErrNotExist, name)
	}
	return text, nil
}

type backendFunc func(ctx context.Context, in pdf.Input) ([]byte, error)

func (f backendFunc) Convert(ctx context.Context, in pdf.Input) ([]byte, error) { return f(ctx, in) }

func newServer(t *testing.T, opts Options) (*httptest.Server, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	p, err := pipeline.New(pipeline.Options{Logger: logger.Discard, Metrics: metrics.New(reg)})
	require.NoError(t, err)
	opts.Gatherer = reg
	opts.Logger = logger.Discard
	src := mapSource{
		"polls":  fixtures.Polls,
		"broken": "# Group X\n+ Body\n",
	}
	ts := httptest.NewServer(New(p, src, opts).Handler())
	t.Cleanup(ts.Close)
	return ts, reg
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestServer_HTML(t *testing.T) {
	ts, _ := newServer(t, Options{})

	resp, body := get(t, ts.URL+"/docs/polls")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, string(body), "<title>Polls API</title>")

	resp, body = get(t, ts.URL+"/docs/broken")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var res result.RenderResult
	require.NoError(t, json.Unmarshal(body, &res))
	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "unknown_section_kind", res.Errors[0].Type)

	resp, _ = get(t, ts.URL+"/docs/missing")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = get(t, ts.URL+"/docs/..%2Fetc")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_PDF(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		ts, _ := newServer(t, Options{})
		resp, _ := get(t, ts.URL+"/docs/polls.pdf")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("exported", func(t *testing.T) {
		ts, _ := newServer(t, Options{Backend: backendFunc(func(ctx context.Context, in pdf.Input) ([]byte, error) {
			return []byte("%PDF-1.4"), nil
		})})
		resp, body := get(t, ts.URL+"/docs/polls.pdf")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
		assert.Equal(t, "%PDF-1.4", string(body))
	})

	t.Run("backend failure", func(t *testing.T) {
		ts, _ := newServer(t, Options{Backend: backendFunc(func(ctx context.Context, in pdf.Input) ([]byte, error) {
			return nil, &pdf.RenderBackendError{Backend: "wkhtmltopdf", Diagnostic: "QXcbConnection: Could not connect to display"}
		})})
		resp, body := get(t, ts.URL+"/docs/polls.pdf")
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		var payload map[string]any
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.Equal(t, "QXcbConnection: Could not connect to display", payload["diagnostic"])
	})

	t.Run("timeout", func(t *testing.T) {
		ts, _ := newServer(t, Options{Timeout: 10 * time.Millisecond, Backend: backendFunc(func(ctx context.Context, in pdf.Input) ([]byte, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})})
		resp, _ := get(t, ts.URL+"/docs/polls.pdf")
		assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
	})
}

func TestServer_HealthAndMetrics(t *testing.T) {
	ts, _ := newServer(t, Options{})

	resp, body := get(t, ts.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	get(t, ts.URL+"/docs/polls")
	resp, body = get(t, ts.URL+"/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `apirender_renders_total{outcome="success"} 1`)
	assert.Contains(t, string(body), "apirender_stage_duration_seconds_bucket")
}

func TestDirSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "polls.md"), []byte("FORMAT: 1A\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "both.apib"), []byte("apib"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "both.md"), []byte("md"), 0o600))
	src := DirSource(dir)

	text, err := src.Read("polls")
	require.NoError(t, err)
	assert.Equal(t, "FORMAT: 1A\n", text)

	text, err = src.Read("both")
	require.NoError(t, err)
	assert.Equal(t, "apib", text)

	for _, name := range []string{"missing", "../polls", "", ".."} {
		_, err = src.Read(name)
		assert.ErrorIs(t, err, os.ErrNotExist, name)
	}
}
