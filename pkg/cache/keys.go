package cache

import (
	"github.com/matzehuels/typediagram/pkg/layout"
	"github.com/matzehuels/typediagram/pkg/measure"
)

// Key prefixes, also used as the keyType reported to cache hooks.
const (
	PrefixLayout   = "layout"
	PrefixArtifact = "artifact"
	PrefixTyping   = "typing"
)

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey identifies the drawing computed for a document.
	LayoutKey(docHash string, opts LayoutKeyOpts) string

	// ArtifactKey identifies one rendered format of a drawing.
	ArtifactKey(drawingHash string, opts ArtifactKeyOpts) string

	// TypingKey identifies the laid-out panels for an expression.
	TypingKey(expression string, opts LayoutKeyOpts) string
}

// LayoutKeyOpts holds everything besides the document that affects a layout.
type LayoutKeyOpts struct {
	Kind       string
	Measurer   string
	Metrics    layout.Metrics
	Typography measure.Typography
}

// ArtifactKeyOpts holds everything besides the drawing that affects an
// artifact's bytes.
type ArtifactKeyOpts struct {
	Format     string
	Typography measure.Typography
	LineWidth  float64
	Scale      float64
	EmbedFonts bool
	Background string
	Stroke     string
	RSVG       bool
}

// DefaultKeyer produces "prefix:sha256" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements [Keyer].
func (DefaultKeyer) LayoutKey(docHash string, opts LayoutKeyOpts) string {
	return hashKey(PrefixLayout, docHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(drawingHash string, opts ArtifactKeyOpts) string {
	return hashKey(PrefixArtifact, drawingHash, opts)
}

// TypingKey implements [Keyer].
func (DefaultKeyer) TypingKey(expression string, opts LayoutKeyOpts) string {
	return hashKey(PrefixTyping, expression, opts)
}

var _ Keyer = DefaultKeyer{}
