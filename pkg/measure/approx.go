package measure

import (
	"math"
	"unicode/utf8"

	"github.com/matzehuels/typediagram/pkg/richtext"
)

const (
	charWidthRatio  = 0.55 // average advance as a fraction of font size
	lineHeightRatio = 1.15 // line box as a fraction of font size
)

// Approximate estimates sizes from rune counts without loading any font.
// Results are deterministic, which makes it the measurer of choice for tests
// and for clients that render with their own fonts.
type Approximate struct {
	Typography Typography
}

// Measure returns the estimated size of run.
func (a Approximate) Measure(run richtext.Run) (Size, error) {
	if run.IsEmpty() {
		return Size{}, nil
	}
	t := a.Typography
	top, bottom := math.Inf(1), math.Inf(-1)
	var width float64
	for _, seg := range run {
		if seg.Text == "" {
			continue
		}
		size := t.FontSize(seg.Style)
		line := size * lineHeightRatio
		asc, desc := line*0.8, line*0.2
		base := t.Baseline(seg.Style, asc, desc)
		top = min(top, base-asc)
		bottom = max(bottom, base+desc)
		width += float64(utf8.RuneCountInString(seg.Text)) * size * charWidthRatio
	}
	return Size{Width: width, Height: bottom - top}, nil
}
