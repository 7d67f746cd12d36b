// Package config loads renderer settings from an HCL or YAML file.
package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"

	"github.com/apib-renderer/renderer/internal/logger"
	"github.com/apib-renderer/renderer/internal/metrics"
	"github.com/apib-renderer/renderer/internal/pdf"
	"github.com/apib-renderer/renderer/internal/pipeline"
)

// Config is the full renderer configuration.
type Config struct {
	Output OutputConfig `yaml:"output"`
	Render RenderConfig `yaml:"render"`
	PDF    PDFConfig    `yaml:"pdf"`
	Log    LogConfig    `yaml:"log"`
	Server ServerConfig `yaml:"server"`
}

type OutputConfig struct {
	Dir  string `hcl:"dir,optional" yaml:"dir"`
	Name string `hcl:"name,optional" yaml:"name"`
}

type RenderConfig struct {
	TemplateDir string `hcl:"template_dir,optional" yaml:"template_dir"`
	StrictJSON  bool   `hcl:"strict_json,optional" yaml:"strict_json"`
	MaxParallel int    `hcl:"max_parallel,optional" yaml:"max_parallel"`
}

type PDFConfig struct {
	Enabled   bool     `hcl:"enabled,optional" yaml:"enabled"`
	Binary    string   `hcl:"binary,optional" yaml:"binary"`
	Timeout   string   `hcl:"timeout,optional" yaml:"timeout"`
	PageSize  string   `hcl:"page_size,optional" yaml:"page_size"`
	DPI       int      `hcl:"dpi,optional" yaml:"dpi"`
	Cover     bool     `hcl:"cover,optional" yaml:"cover"`
	BaseHref  string   `hcl:"base_href,optional" yaml:"base_href"`
	ExtraArgs []string `hcl:"extra_args,optional" yaml:"extra_args"`
}

type LogConfig struct {
	Level  string `hcl:"level,optional" yaml:"level"`
	Format string `hcl:"format,optional" yaml:"format"`
}

type ServerConfig struct {
	Addr    string `hcl:"addr,optional" yaml:"addr"`
	DocsDir string `hcl:"docs_dir,optional" yaml:"docs_dir"`
}

// file mirrors Config for HCL decoding, where every block is optional.
type file struct {
	Output *OutputConfig `hcl:"output,block"`
	Render *RenderConfig `hcl:"render,block"`
	PDF    *PDFConfig    `hcl:"pdf,block"`
	Log    *LogConfig    `hcl:"log,block"`
	Server *ServerConfig `hcl:"server,block"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Output: OutputConfig{Dir: "build", Name: "index"},
		PDF: PDFConfig{
			Binary:   pdf.DefaultBinary,
			Timeout:  pipeline.DefaultPDFTimeout.String(),
			PageSize: pdf.DefaultPageSize,
			DPI:      pdf.DefaultDPI,
		},
		Log:    LogConfig{Level: "info", Format: "text"},
		Server: ServerConfig{Addr: ":8080", DocsDir: "."},
	}
}

// Load reads the configuration file at path. Files ending in .yaml or .yml
// are YAML; anything else is HCL, where env.NAME refers to environment
// variables.
func Load(path string) (*Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	return Parse(path, src, environ())
}

// Parse decodes src. filename selects the syntax and is used in diagnostics.
func Parse(filename string, src []byte, env map[string]string) (*Config, error) {
	cfg := Default()
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(src, cfg); err != nil {
			return nil, errors.Wrapf(err, "decoding %s", filename)
		}
	default:
		if filepath.Ext(filename) != ".json" {
			filename = strings.TrimSuffix(filename, filepath.Ext(filename)) + ".hcl"
		}
		var f file
		if err := hclsimple.Decode(filename, src, evalContext(env), &f); err != nil {
			return nil, errors.Wrapf(err, "decoding %s", filename)
		}
		f.apply(cfg)
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (f *file) apply(cfg *Config) {
	if f.Output != nil {
		cfg.Output = *f.Output
	}
	if f.Render != nil {
		cfg.Render = *f.Render
	}
	if f.PDF != nil {
		cfg.PDF = *f.PDF
	}
	if f.Log != nil {
		cfg.Log = *f.Log
	}
	if f.Server != nil {
		cfg.Server = *f.Server
	}
}

// fillDefaults restores defaults for settings a block left empty.
func (c *Config) fillDefaults() {
	def := Default()
	setString := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	setString(&c.Output.Dir, def.Output.Dir)
	setString(&c.Output.Name, def.Output.Name)
	setString(&c.PDF.Binary, def.PDF.Binary)
	setString(&c.PDF.Timeout, def.PDF.Timeout)
	setString(&c.PDF.PageSize, def.PDF.PageSize)
	setString(&c.Log.Level, def.Log.Level)
	setString(&c.Log.Format, def.Log.Format)
	setString(&c.Server.Addr, def.Server.Addr)
	setString(&c.Server.DocsDir, def.Server.DocsDir)
	if c.PDF.DPI == 0 {
		c.PDF.DPI = def.PDF.DPI
	}
	if len(c.PDF.ExtraArgs) == 0 {
		c.PDF.ExtraArgs = nil
	}
}

func evalContext(env map[string]string) *hcl.EvalContext {
	vars := make(map[string]cty.Value, len(env))
	for k, v := range env {
		vars[k] = cty.StringVal(v)
	}
	envVal := cty.EmptyObjectVal
	if len(vars) > 0 {
		envVal = cty.ObjectVal(vars)
	}
	return &hcl.EvalContext{Variables: map[string]cty.Value{"env": envVal}}
}

func environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			env[k] = v
		}
	}
	return env
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if c.Output.Name == "" || strings.ContainsAny(c.Output.Name, `/\`) {
		return errors.Errorf("output.name %q must be a plain file name", c.Output.Name)
	}
	if c.Render.MaxParallel < 0 {
		return errors.Errorf("render.max_parallel must not be negative, got %d", c.Render.MaxParallel)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return errors.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return errors.Errorf("log.format %q is not one of text, json", c.Log.Format)
	}
	if _, err := c.PDFTimeout(); err != nil {
		return err
	}
	if c.PDF.DPI < 0 {
		return errors.Errorf("pdf.dpi must not be negative, got %d", c.PDF.DPI)
	}
	return nil
}

// PDFTimeout returns the parsed pdf.timeout.
func (c *Config) PDFTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.PDF.Timeout)
	if err != nil {
		return 0, errors.Wrapf(err, "pdf.timeout %q", c.PDF.Timeout)
	}
	if d <= 0 {
		return 0, errors.Errorf("pdf.timeout must be positive, got %s", c.PDF.Timeout)
	}
	return d, nil
}

// Templates returns the template override directory, or nil when none is set.
func (c *Config) Templates() fs.FS {
	if c.Render.TemplateDir == "" {
		return nil
	}
	return os.DirFS(c.Render.TemplateDir)
}

// Backend returns the configured PDF backend, or nil when PDF export is off.
func (c *Config) Backend() pdf.Backend {
	if !c.PDF.Enabled {
		return nil
	}
	return &pdf.Wkhtmltopdf{
		Binary:    c.PDF.Binary,
		PageSize:  c.PDF.PageSize,
		DPI:       c.PDF.DPI,
		ExtraArgs: c.PDF.ExtraArgs,
	}
}

// PipelineOptions translates the configuration into pipeline options.
func (c *Config) PipelineOptions(m *metrics.Metrics) pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.StrictJSON = c.Render.StrictJSON
	opts.MaxParallel = c.Render.MaxParallel
	opts.Name = c.Output.Name
	opts.Cover = c.PDF.Cover
	opts.Templates = c.Templates()
	opts.Logger = logger.New(c.Log.Level, c.Log.Format, os.Stderr)
	opts.Metrics = m
	if timeout, err := c.PDFTimeout(); err == nil {
		opts.PDF.Timeout = timeout
	}
	opts.PDF.Backend = c.Backend()
	opts.PDF.BaseHref = c.PDF.BaseHref
	return opts
}
