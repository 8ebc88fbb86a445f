package layout

import (
	"fmt"

	"github.com/matzehuels/typediagram/pkg/diagram"
	"github.com/matzehuels/typediagram/pkg/measure"
	"github.com/matzehuels/typediagram/pkg/richtext"
)

// Engine lays out documents using one measurer and one set of metrics.
// An Engine holds no per-call state and is safe for concurrent use when
// its measurer is.
type Engine struct {
	measurer measure.Measurer
	metrics  Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics replaces the default spacing.
func WithMetrics(m Metrics) Option { return func(e *Engine) { e.metrics = m } }

// New returns an engine that sizes text with m.
func New(m measure.Measurer, opts ...Option) *Engine {
	e := &Engine{measurer: m, metrics: DefaultMetrics()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Metrics returns the spacing the engine lays out with.
func (e *Engine) Metrics() Metrics { return e.metrics }

// measure wraps measurer failures with the offending text; the original
// error stays reachable through errors.Is and errors.As.
func (e *Engine) measure(run richtext.Run) (measure.Size, error) {
	s, err := e.measurer.Measure(run)
	if err != nil {
		return measure.Size{}, fmt.Errorf("measure %q: %w", run.String(), err)
	}
	return s, nil
}

// LayoutDocument lays out doc according to its kind.
func (e *Engine) LayoutDocument(doc diagram.Document) (*Drawing, error) {
	var (
		d   *Drawing
		err error
	)
	switch doc.Kind {
	case diagram.KindText:
		d, err = e.Text(doc.Text)
	case diagram.KindAST:
		if doc.Tree == nil {
			return nil, fmt.Errorf("layout ast: no tree")
		}
		d, err = e.LayoutTree(doc.Tree)
	case diagram.KindProof:
		if doc.Proof == nil {
			return nil, fmt.Errorf("layout proof: no proof")
		}
		d, err = e.LayoutProof(doc.Proof)
	case diagram.KindUnification:
		d, err = e.LayoutEquations(doc.Equations)
	case diagram.KindInference:
		if doc.Proof == nil {
			return nil, fmt.Errorf("layout inference: no proof")
		}
		d, err = e.Scene(doc.Proof, doc.Equations)
	default:
		return nil, fmt.Errorf("layout: unknown document kind %q", doc.Kind)
	}
	if err != nil {
		return nil, err
	}
	d.Kind = doc.Kind
	return d, nil
}

// Text lays out a single run on its own canvas, top-left aligned inside the
// margin.
func (e *Engine) Text(run richtext.Run) (*Drawing, error) {
	s, err := e.measure(run)
	if err != nil {
		return nil, err
	}
	m := e.metrics.CanvasMargin
	d := &Drawing{
		Kind:   diagram.KindText,
		Width:  s.Width + 2*m,
		Height: s.Height + 2*m,
	}
	d.addText(run, AnchorStart, m, m, s)
	return d, nil
}
