package layout

import (
	"unicode/utf8"

	"github.com/matzehuels/typediagram/pkg/measure"
	"github.com/matzehuels/typediagram/pkg/richtext"
)

// fakeMeasurer sizes runs from a table keyed by plain text, falling back to
// 10 units per rune and a height of 20.
type fakeMeasurer struct {
	sizes map[string]measure.Size
	calls int
}

func (f *fakeMeasurer) Measure(run richtext.Run) (measure.Size, error) {
	f.calls++
	if s, ok := f.sizes[run.String()]; ok {
		return s, nil
	}
	return measure.Size{Width: 10 * float64(utf8.RuneCountInString(run.String())), Height: 20}, nil
}

func newFake(sizes map[string]measure.Size) *fakeMeasurer {
	if sizes == nil {
		sizes = map[string]measure.Size{}
	}
	return &fakeMeasurer{sizes: sizes}
}

func w(width float64) measure.Size { return measure.Size{Width: width, Height: 20} }

func txt(s string) richtext.Run { return richtext.Plain(s) }

const eps = 1e-9

func near(a, b float64) bool {
	d := a - b
	return d < eps && d > -eps
}
