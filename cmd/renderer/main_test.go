package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apib-renderer/renderer/internal/fixtures"
	"github.com/apib-renderer/renderer/internal/result"
)

func TestRun_Stdin(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-input", "-", "-o", dir, "-log-level", "error"},
		strings.NewReader(fixtures.Polls), &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	page, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "Polls API")
	assert.Contains(t, stdout.String(), "wrote "+filepath.Join(dir, "index.html"))
}

func TestRun_MultipleInputsJSON(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(in, "polls.apib"), []byte(fixtures.Polls), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(in, "broken.md"), []byte("# Group X\n+ Body\n"), 0o600))

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{
		"-input", filepath.Join(in, "polls.apib"),
		"-input", filepath.Join(in, "broken.md"),
		"-o", out, "-json", "-log-level", "error",
	}, nil, &stdout, &stderr)
	assert.Equal(t, 1, code)

	var results []result.RenderResult
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &results))
	require.Len(t, results, 2)
	assert.Equal(t, "polls", results[0].Name)
	assert.True(t, results[0].Success)
	assert.Equal(t, "broken", results[1].Name)
	assert.False(t, results[1].Success)

	assert.FileExists(t, filepath.Join(out, "polls.html"))
	assert.NoFileExists(t, filepath.Join(out, "broken.html"))
}

func TestRun_InitConfig(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-init-config", "-"}, nil, &stdout, &stderr)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "output {")

	path := filepath.Join(t.TempDir(), "renderer.hcl")
	require.Equal(t, 0, run(context.Background(), []string{"-init-config", path}, nil, &stdout, &stderr))
	require.Equal(t, 0, run(context.Background(), []string{"-config", path, "-input", "-", "-o", t.TempDir()},
		strings.NewReader(fixtures.Polls), &stdout, &stderr), stderr.String())
}

func TestRun_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, run(context.Background(), nil, nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "usage: renderer")

	assert.Equal(t, 1, run(context.Background(), []string{"-log-format", "xml", "-input", "x"}, nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "log.format")
}
