package pipeline

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/typediagram/pkg/cache"
	"github.com/matzehuels/typediagram/pkg/diagram"
	errs "github.com/matzehuels/typediagram/pkg/errors"
	"github.com/matzehuels/typediagram/pkg/layout"
	"github.com/matzehuels/typediagram/pkg/measure"
)

// Measurer names, part of every layout cache key.
const (
	MeasurerFace   = "face"
	MeasurerApprox = "approx"
)

// MeasurerFactory builds a measurer for one typography.
type MeasurerFactory func(measure.Typography) (measure.Measurer, error)

// ApproximateMeasurer builds rune-count measurers.
func ApproximateMeasurer(t measure.Typography) (measure.Measurer, error) {
	return measure.Approximate{Typography: t}, nil
}

// FaceMeasurer builds measurers backed by the embedded Go fonts.
func FaceMeasurer(t measure.Typography) (measure.Measurer, error) {
	m, err := measure.NewFaceMeasurer(t)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeMeasureFailed, err, "load fonts")
	}
	return m, nil
}

// MeasurerFor returns the factory registered under name.
func MeasurerFor(name string) (MeasurerFactory, error) {
	switch name {
	case MeasurerFace:
		return FaceMeasurer, nil
	case MeasurerApprox:
		return ApproximateMeasurer, nil
	}
	return nil, errs.New(errs.ErrCodeInvalidConfig, "unknown measurer %q (must be %q or %q)", name, MeasurerFace, MeasurerApprox)
}

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner doesn't store pipeline results. Measurers are built lazily per
// typography and shared, so multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// MeasurerName identifies NewMeasurer in layout cache keys.
	MeasurerName string
	NewMeasurer  MeasurerFactory

	mu        sync.Mutex
	measurers map[measure.Typography]measure.Measurer
	closers   []io.Closer
}

// RunnerOption configures a [Runner].
type RunnerOption func(*Runner)

// WithMeasurer selects how text is measured. name must change whenever the
// factory's results would.
func WithMeasurer(name string, f MeasurerFactory) RunnerOption {
	return func(r *Runner) { r.MeasurerName, r.NewMeasurer = name, f }
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// Without [WithMeasurer] text is measured approximately.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger, opts ...RunnerOption) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	r := &Runner{
		Cache:        c,
		Keyer:        keyer,
		Logger:       logger,
		MeasurerName: MeasurerApprox,
		NewMeasurer:  ApproximateMeasurer,
		measurers:    make(map[measure.Typography]measure.Measurer),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// engine returns a layout engine for the options' metrics and typography.
func (r *Runner) engine(opts Options) (*layout.Engine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.measurers[opts.Typography]
	if !ok {
		raw, err := r.NewMeasurer(opts.Typography)
		if err != nil {
			return nil, err
		}
		if c, ok := raw.(io.Closer); ok {
			r.closers = append(r.closers, c)
		}
		m = measure.Memo(raw)
		r.measurers[opts.Typography] = m
	}
	return layout.New(m, layout.WithMetrics(opts.Metrics)), nil
}

// Execute runs the complete layout → render pipeline for doc with caching.
// AST documents go through Graphviz instead when opts.Nodelink is set.
func (r *Runner) Execute(ctx context.Context, doc diagram.Document, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, formatErr("invalid options", err)
	}

	if opts.Nodelink {
		return r.executeNodelink(ctx, doc, opts)
	}

	result := &Result{
		Kind:      doc.Kind,
		Artifacts: make(map[string][]byte),
	}
	result.Stats.NodeCount = nodeCount(doc)

	// Stage 1: Layout
	layoutStart := time.Now()
	d, layoutHit, err := r.LayoutWithCacheInfo(ctx, doc, opts)
	if err != nil {
		return nil, formatErr("layout", err)
	}
	result.Drawing = d
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Width, result.Stats.Height = d.Width, d.Height
	result.CacheInfo.LayoutHit = layoutHit

	if data, err := layout.MarshalDrawing(d); err == nil {
		result.DrawingHash = cache.Hash(data)
	}

	opts.Logger.Info("computed layout",
		"kind", doc.Kind,
		"texts", len(d.Texts),
		"lines", len(d.Lines),
		"duration", result.Stats.LayoutTime)

	// Stage 2: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, d, opts)
	if err != nil {
		return nil, formatErr("render", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

func (r *Runner) executeNodelink(ctx context.Context, doc diagram.Document, opts Options) (*Result, error) {
	if doc.Kind != diagram.KindAST || doc.Tree == nil {
		return nil, errs.New(errs.ErrCodeUnsupported, "nodelink rendering needs an ast document, got %q", doc.Kind)
	}
	start := time.Now()
	artifacts, err := r.RenderNodelink(ctx, doc.Tree, opts)
	if err != nil {
		return nil, formatErr("render", err)
	}
	return &Result{
		Kind:      doc.Kind,
		Artifacts: artifacts,
		Stats:     Stats{NodeCount: doc.Tree.Count(), RenderTime: time.Since(start)},
	}, nil
}

// LayoutWithCacheInfo computes the drawing for doc with caching and returns cache hit info.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, doc diagram.Document, opts Options) (*layout.Drawing, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}

	docData, err := diagram.Encode(doc)
	if err != nil {
		return nil, false, err
	}
	cacheKey := r.Keyer.LayoutKey(cache.Hash(docData), opts.LayoutKeyOpts(doc.Kind, r.MeasurerName))

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cached, err := layout.UnmarshalDrawing(data); err == nil {
				return cached, true, nil // Cache hit
			}
			// If deserialization fails, fall through to recompute
		}
	}

	d, err := r.layout(ctx, doc, opts)
	if err != nil {
		return nil, false, err
	}

	if data, err := layout.MarshalDrawing(d); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
	}

	return d, false, nil // Cache miss
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, doc diagram.Document, opts Options) (*layout.Drawing, error) {
	d, _, err := r.LayoutWithCacheInfo(ctx, doc, opts)
	return d, err
}

// RenderWithCacheInfo renders artifacts with caching and returns cache hit info.
// The hit flag is only set when every requested format came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, d *layout.Drawing, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	if opts.Nodelink {
		return nil, false, errs.New(errs.ErrCodeUnsupported, "nodelink options cannot render a drawing")
	}

	drawingData, err := layout.MarshalDrawing(d)
	if err != nil {
		return nil, false, formatErr("serialize drawing for cache key", err)
	}
	drawingHash := cache.Hash(drawingData)

	artifacts := make(map[string][]byte)
	if !opts.Refresh {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(drawingHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, cacheKey)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil // All artifacts from cache
		}
	}

	rendered, err := Render(ctx, d, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(drawingHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, d *layout.Drawing, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, d, opts)
	return artifacts, err
}

// Close releases resources held by the runner: font faces and the cache.
func (r *Runner) Close() error {
	r.mu.Lock()
	closers := r.closers
	r.closers = nil
	r.measurers = make(map[measure.Typography]measure.Measurer)
	r.mu.Unlock()

	var firstErr error
	for _, c := range closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if r.Cache != nil {
		if err := r.Cache.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
