package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/apib-renderer/renderer/internal/config"
	"github.com/apib-renderer/renderer/internal/metrics"
	"github.com/apib-renderer/renderer/internal/pipeline"
	"github.com/apib-renderer/renderer/internal/result"
	"github.com/apib-renderer/renderer/internal/server"
)

// inputs collects repeated -input flags.
type inputs []string

func (i *inputs) String() string { return strings.Join(*i, ",") }

func (i *inputs) Set(v string) error {
	*i = append(*i, v)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("renderer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var in inputs
	fs.Var(&in, "input", "Path to an API description (repeatable, - for stdin)")
	output := fs.String("o", "", "Output directory (default from config: build)")
	withPDF := fs.Bool("pdf", false, "Also export <name>.pdf with wkhtmltopdf")
	cfgPath := fs.String("config", "", "Path to an HCL or YAML config file")
	jsonOut := fs.Bool("json", false, "Output results as JSON")
	initConfig := fs.String("init-config", "", "Write a starter HCL config to this path (- for stdout) and exit")
	serve := fs.Bool("serve", false, "Serve documents from server.docs_dir over HTTP")
	logLevel := fs.String("log-level", "", "Log level: debug, info, warn, error")
	logFormat := fs.String("log-format", "", "Log format: text or json")
	parallel := fs.Int("parallel", -1, "Max documents rendered at once (0 = auto)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *initConfig != "" {
		return writeStarter(*initConfig, stdout, stderr)
	}

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			fmt.Fprintf(stderr, "config: %v\n", err)
			return 1
		}
	}
	if *output != "" {
		cfg.Output.Dir = *output
	}
	if *withPDF {
		cfg.PDF.Enabled = true
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *parallel >= 0 {
		cfg.Render.MaxParallel = *parallel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}

	reg := prometheus.NewRegistry()
	opts := cfg.PipelineOptions(metrics.New(reg))

	if *serve {
		return serveDocs(ctx, cfg, opts, reg, stderr)
	}

	if len(in) == 0 {
		fmt.Fprintln(stderr, "usage: renderer -input <file|-> [-input ...] [-o dir] [-pdf] [-config file] [-json]")
		fs.PrintDefaults()
		return 1
	}

	sources, err := readSources(in, cfg.Output.Name, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "read input: %v\n", err)
		return 1
	}

	p, err := pipeline.New(opts)
	if err != nil {
		fmt.Fprintf(stderr, "renderer: %v\n", err)
		return 1
	}
	results, err := p.RenderAll(ctx, sources)
	if err != nil {
		fmt.Fprintf(stderr, "render: %v\n", err)
		return 1
	}

	if *jsonOut {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(results)
	} else {
		for _, res := range results {
			report(res, stderr)
		}
	}

	code := 0
	for _, res := range results {
		if !res.Success {
			code = 1
			continue
		}
		if err := writeFiles(cfg.Output.Dir, res, stdout, *jsonOut); err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return 1
		}
	}
	return code
}

func writeStarter(path string, stdout, stderr io.Writer) int {
	src := config.DefaultHCL()
	if path == "-" {
		stdout.Write(src)
		return 0
	}
	if err := os.WriteFile(path, src, 0644); err != nil {
		fmt.Fprintf(stderr, "write %s: %v\n", path, err)
		return 1
	}
	fmt.Fprintln(stdout, "wrote", path)
	return 0
}

// readSources loads every input. A single input is named after the output
// name; several inputs are named after their files.
func readSources(paths []string, name string, stdin io.Reader) ([]pipeline.Source, error) {
	sources := make([]pipeline.Source, 0, len(paths))
	for _, path := range paths {
		var data []byte
		var err error
		if path == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(path)
		}
		if err != nil {
			return nil, err
		}
		src := pipeline.Source{Name: name, Text: string(data)}
		if len(paths) > 1 && path != "-" {
			src.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		sources = append(sources, src)
	}
	return sources, nil
}

func report(res *result.RenderResult, w io.Writer) {
	for _, e := range res.Errors {
		fmt.Fprintf(w, "ERROR %s:%d [%s] %s\n", res.Name, e.Line, e.Section, e.Message)
		if e.Suggestion != "" {
			fmt.Fprintf(w, "  suggestion: %s\n", e.Suggestion)
		}
	}
	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "WARN %s:%d [%s] %s\n", res.Name, warn.Line, warn.Section, warn.Message)
	}
}

func writeFiles(dir string, res *result.RenderResult, stdout io.Writer, quiet bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	for _, name := range res.FileNames() {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, res.Files[name], 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		if !quiet {
			fmt.Fprintln(stdout, "wrote", path)
		}
	}
	return nil
}

func serveDocs(ctx context.Context, cfg *config.Config, opts pipeline.Options, reg *prometheus.Registry, stderr io.Writer) int {
	backend := opts.PDF.Backend
	opts.PDF.Backend = nil
	p, err := pipeline.New(opts)
	if err != nil {
		fmt.Fprintf(stderr, "renderer: %v\n", err)
		return 1
	}
	srv := server.New(p, server.DirSource(cfg.Server.DocsDir), server.Options{
		Backend:  backend,
		Timeout:  opts.PDF.Timeout,
		Gatherer: reg,
		Logger:   opts.Logger,
	})
	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- httpSrv.ListenAndServe() }()
	opts.Logger.Info("serving documents", "addr", cfg.Server.Addr, "dir", cfg.Server.DocsDir)

	select {
	case err := <-errc:
		fmt.Fprintf(stderr, "serve: %v\n", err)
		return 1
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(stderr, "shutdown: %v\n", err)
		return 1
	}
	return 0
}
