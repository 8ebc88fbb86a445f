// Package pipeline provides the layout and rendering pipeline for typediagram.
//
// This package implements the complete decode → layout → render pipeline
// used by the CLI and the HTTP API. By centralizing this logic, both entry
// points produce byte-identical artifacts and share one caching scheme.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Decode: Read a document (or an already computed drawing) from JSON
//  2. Layout: Measure every rich-text run and compute a [layout.Drawing]
//  3. Render: Turn the drawing into SVG, PNG, PDF or JSON
//
// Typing requests add a stage in front: the expression is sent to the
// inference engine and each panel of the answer runs through the pipeline.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, measurer, logger)
//	result, err := runner.Execute(ctx, doc, pipeline.Options{
//	    Formats: []string{"svg", "png"},
//	})
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	d, err := runner.Layout(ctx, doc, opts)
//	artifacts, err := runner.Render(ctx, d, opts)
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/typediagram/pkg/cache"
	"github.com/matzehuels/typediagram/pkg/diagram"
	errs "github.com/matzehuels/typediagram/pkg/errors"
	"github.com/matzehuels/typediagram/pkg/layout"
	"github.com/matzehuels/typediagram/pkg/measure"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// DefaultScale is the PNG scale factor.
const DefaultScale = 2.0

// MaxScale bounds the PNG scale factor.
const MaxScale = 16.0

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats is the set of formats a drawing renders to.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// NodelinkFormats is the set of formats of the Graphviz AST view.
var NodelinkFormats = map[string]bool{
	FormatSVG: true,
	FormatPNG: true,
	FormatPDF: true,
	FormatDOT: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Metrics    layout.Metrics     `json:"metrics"`
	Typography measure.Typography `json:"typography"`

	// Render options
	Formats    []string `json:"formats,omitempty"`
	Scale      float64  `json:"scale,omitempty"`
	EmbedFonts bool     `json:"embed_fonts,omitempty"`
	Background string   `json:"background,omitempty"`
	Stroke     string   `json:"stroke,omitempty"`
	RSVG       bool     `json:"rsvg,omitempty"` // rasterize PNG with rsvg-convert

	// Nodelink renders AST documents with Graphviz instead of the tidy tree.
	Nodelink bool `json:"nodelink,omitempty"`

	// Panels selects which panels of a typing result are produced.
	Panels []string `json:"panels,omitempty"`

	// Refresh bypasses cache reads (results are still written).
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run for one document.
type Result struct {
	// Kind is the document kind.
	Kind diagram.Kind

	// Drawing is the computed layout. Nil for nodelink renders.
	Drawing *layout.Drawing

	// DrawingHash is the content hash of the serialized drawing.
	DrawingHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	Width      float64
	Height     float64
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	TypingHit bool // Whether the engine answer came from cache
	LayoutHit bool // Whether the drawing came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid for drawings.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateNodelinkFormats checks formats for the Graphviz view.
func ValidateNodelinkFormats(formats []string) error {
	for _, f := range formats {
		if !NodelinkFormats[f] {
			return errs.New(errs.ErrCodeInvalidFormat, "invalid nodelink format: %q (must be one of: svg, png, pdf, dot)", f)
		}
	}
	return nil
}

// ValidatePanels checks typing panel names.
func ValidatePanels(panels []string) error {
	for _, p := range panels {
		if !slices.Contains(diagram.PanelNames, p) {
			return errs.New(errs.ErrCodeInvalidInput, "invalid panel: %q (must be one of: expr, type, ast, inference)", p)
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every field and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	if len(o.Panels) == 0 {
		o.Panels = slices.Clone(diagram.PanelNames)
	}
	if err := ValidatePanels(o.Panels); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults fills zero metrics and typography with the defaults.
func (o *Options) SetLayoutDefaults() {
	if o.Metrics == (layout.Metrics{}) {
		o.Metrics = layout.DefaultMetrics()
	}
	if o.Typography == (measure.Typography{}) {
		o.Typography = measure.DefaultTypography()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout sets defaults and validates layout settings.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := o.Metrics.Validate(); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid metrics")
	}
	if err := o.Typography.Validate(); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid typography")
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Stroke == "" {
		o.Stroke = "black"
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if !(o.Scale > 0 && o.Scale <= MaxScale) {
		return errs.New(errs.ErrCodeInvalidInput, "scale must be in (0, %v], got %v", MaxScale, o.Scale)
	}
	if o.Nodelink {
		return ValidateNodelinkFormats(o.Formats)
	}
	return ValidateFormats(o.Formats)
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts(kind diagram.Kind, measurer string) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Kind:       string(kind),
		Measurer:   measurer,
		Metrics:    o.Metrics,
		Typography: o.Typography,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:     format,
		Typography: o.Typography,
		LineWidth:  o.Metrics.LineThickness,
		Scale:      o.Scale,
		EmbedFonts: o.EmbedFonts,
		Background: o.Background,
		Stroke:     o.Stroke,
		RSVG:       o.RSVG,
	}
}

// nodeCount is the size reported in stats and hooks.
func nodeCount(doc diagram.Document) int {
	switch doc.Kind {
	case diagram.KindAST:
		if doc.Tree != nil {
			return doc.Tree.Count()
		}
	case diagram.KindProof, diagram.KindInference:
		n := len(doc.Equations)
		if doc.Proof != nil {
			n += doc.Proof.Count()
		}
		return n
	case diagram.KindUnification:
		return len(doc.Equations)
	case diagram.KindText:
		return 1
	}
	return 0
}

func formatErr(stage string, err error) error { return fmt.Errorf("%s: %w", stage, err) }
