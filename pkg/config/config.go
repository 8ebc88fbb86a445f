// Package config loads typediagram settings from TOML or YAML files.
//
// Every section has a default, so a config file only lists what it changes:
//
//	# typediagram.toml
//	[layout]
//	premise_margin = 40
//
//	[cache]
//	backend = "redis"
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[engine]
//	url = "http://localhost:8080"
//	timeout = "10s"
//
// The same file in YAML uses identical keys.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/typediagram/pkg/cache"
	errs "github.com/matzehuels/typediagram/pkg/errors"
	"github.com/matzehuels/typediagram/pkg/layout"
	"github.com/matzehuels/typediagram/pkg/measure"
	"github.com/matzehuels/typediagram/pkg/pipeline"
)

// Measurer names.
const (
	MeasurerFace   = pipeline.MeasurerFace
	MeasurerApprox = pipeline.MeasurerApprox
)

// Config is the complete settings tree.
type Config struct {
	Layout     layout.Metrics     `json:"layout" toml:"layout" yaml:"layout"`
	Typography measure.Typography `json:"typography" toml:"typography" yaml:"typography"`

	// Measurer is "face" (embedded Go fonts) or "approx" (rune counts).
	Measurer string `json:"measurer" toml:"measurer" yaml:"measurer"`

	Render RenderConfig `json:"render" toml:"render" yaml:"render"`
	Cache  cache.Config `json:"cache" toml:"cache" yaml:"cache"`
	Engine EngineConfig `json:"engine" toml:"engine" yaml:"engine"`
	Server ServerConfig `json:"server" toml:"server" yaml:"server"`
}

// RenderConfig holds artifact defaults.
type RenderConfig struct {
	Formats    []string `json:"formats" toml:"formats" yaml:"formats"`
	Scale      float64  `json:"scale" toml:"scale" yaml:"scale"`
	EmbedFonts bool     `json:"embed_fonts" toml:"embed_fonts" yaml:"embed_fonts"`
	Background string   `json:"background" toml:"background" yaml:"background"`
	Stroke     string   `json:"stroke" toml:"stroke" yaml:"stroke"`
	RSVG       bool     `json:"rsvg" toml:"rsvg" yaml:"rsvg"`
}

// EngineConfig locates the type inference engine.
type EngineConfig struct {
	URL     string        `json:"url" toml:"url" yaml:"url"`
	Timeout time.Duration `json:"timeout" toml:"timeout" yaml:"timeout"`
	Retries int           `json:"retries" toml:"retries" yaml:"retries"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string        `json:"addr" toml:"addr" yaml:"addr"`
	RequestTimeout time.Duration `json:"request_timeout" toml:"request_timeout" yaml:"request_timeout"`
	MaxBodyBytes   int64         `json:"max_body_bytes" toml:"max_body_bytes" yaml:"max_body_bytes"`
}

// Defaults for values that have no natural zero.
const (
	DefaultEngineURL      = "http://localhost:8080"
	DefaultEngineTimeout  = 10 * time.Second
	DefaultEngineRetries  = 3
	DefaultServerAddr     = ":8000"
	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxBodyBytes   = 1 << 20
	DefaultScale          = 2.0
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Layout:     layout.DefaultMetrics(),
		Typography: measure.DefaultTypography(),
		Measurer:   MeasurerFace,
		Render: RenderConfig{
			Formats: []string{"svg"},
			Scale:   DefaultScale,
			Stroke:  "black",
		},
		Cache: cache.DefaultConfig(),
		Engine: EngineConfig{
			URL:     DefaultEngineURL,
			Timeout: DefaultEngineTimeout,
			Retries: DefaultEngineRetries,
		},
		Server: ServerConfig{
			Addr:           DefaultServerAddr,
			RequestTimeout: DefaultRequestTimeout,
			MaxBodyBytes:   DefaultMaxBodyBytes,
		},
	}
}

// Load reads path over [Default]. The format is chosen by extension:
// .toml, or .yaml/.yml. The result is validated.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes data in the format named by ext (".toml", ".yaml", ".yml")
// over [Default] and validates the result.
func Parse(data []byte, ext string) (Config, error) {
	cfg := Default()
	switch strings.ToLower(ext) {
	case ".toml":
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg)
		if err != nil {
			return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse toml config")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, errs.New(errs.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse yaml config")
		}
	default:
		return Config{}, errs.New(errs.ErrCodeInvalidConfig, "unsupported config format %q (use .toml, .yaml or .yml)", ext)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "layout")
	}
	if err := c.Typography.Validate(); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "typography")
	}
	switch c.Measurer {
	case MeasurerFace, MeasurerApprox:
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "measurer must be %q or %q, got %q", MeasurerFace, MeasurerApprox, c.Measurer)
	}
	if c.Render.Scale <= 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "render.scale must be positive, got %v", c.Render.Scale)
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if c.Engine.URL == "" {
		return errs.New(errs.ErrCodeInvalidConfig, "engine.url is required")
	}
	if c.Engine.Timeout <= 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "engine.timeout must be positive, got %v", c.Engine.Timeout)
	}
	if c.Engine.Retries < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "engine.retries must not be negative")
	}
	if c.Server.RequestTimeout <= 0 || c.Server.MaxBodyBytes <= 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "server.request_timeout and server.max_body_bytes must be positive")
	}
	return nil
}

// RunnerOption selects the configured measurer for a pipeline runner.
func (c Config) RunnerOption() (pipeline.RunnerOption, error) {
	f, err := pipeline.MeasurerFor(c.Measurer)
	if err != nil {
		return nil, err
	}
	return pipeline.WithMeasurer(c.Measurer, f), nil
}

// PipelineOptions returns the pipeline defaults described by c.
func (c Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Metrics:    c.Layout,
		Typography: c.Typography,
		Formats:    append([]string(nil), c.Render.Formats...),
		Scale:      c.Render.Scale,
		EmbedFonts: c.Render.EmbedFonts,
		Background: c.Render.Background,
		Stroke:     c.Render.Stroke,
		RSVG:       c.Render.RSVG,
	}
}
