package measure

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/matzehuels/typediagram/pkg/richtext"
)

// Size is the rendered extent of a run.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Measurer returns the rendered size of a styled run.
type Measurer interface {
	Measure(run richtext.Run) (Size, error)
}

// Func adapts a function to the Measurer interface.
type Func func(run richtext.Run) (Size, error)

// Measure calls f(run).
func (f Func) Measure(run richtext.Run) (Size, error) { return f(run) }

// Typography fixes the font sizes and vertical offsets used for every run.
type Typography struct {
	Size           float64 `json:"size" toml:"size" yaml:"size"`
	BaselineOffset float64 `json:"baseline_offset" toml:"baseline_offset" yaml:"baseline_offset"`
	SubscriptSize  float64 `json:"subscript_size" toml:"subscript_size" yaml:"subscript_size"`
	SubscriptDrop  float64 `json:"subscript_drop" toml:"subscript_drop" yaml:"subscript_drop"`
	MiddleSize     float64 `json:"middle_size" toml:"middle_size" yaml:"middle_size"`
}

// DefaultTypography returns a 30px face with 15px subscripts and 20px middle text.
func DefaultTypography() Typography {
	return Typography{
		Size:           30,
		BaselineOffset: 23,
		SubscriptSize:  15,
		SubscriptDrop:  5,
		MiddleSize:     20,
	}
}

// Validate checks that all sizes are positive.
func (t Typography) Validate() error {
	if t.Size <= 0 || t.SubscriptSize <= 0 || t.MiddleSize <= 0 {
		return fmt.Errorf("typography: font sizes must be positive (size=%v subscript=%v middle=%v)",
			t.Size, t.SubscriptSize, t.MiddleSize)
	}
	if t.BaselineOffset < 0 || t.SubscriptDrop < 0 {
		return fmt.Errorf("typography: offsets must not be negative")
	}
	return nil
}

// FontSize returns the pixel size a segment of the given style is drawn at.
func (t Typography) FontSize(s richtext.Style) float64 {
	switch s {
	case richtext.StyleSubscript:
		return t.SubscriptSize
	case richtext.StyleMiddle:
		return t.MiddleSize
	default:
		return t.Size
	}
}

// Baseline returns the y of a segment's baseline below the run's top anchor.
// ascent and descent are the line metrics of the segment's face; they only
// matter for middle segments, whose line box is centered on the anchor.
func (t Typography) Baseline(s richtext.Style, ascent, descent float64) float64 {
	switch s {
	case richtext.StyleSubscript:
		return t.BaselineOffset + t.SubscriptDrop
	case richtext.StyleMiddle:
		return (ascent - descent) / 2
	default:
		return t.BaselineOffset
	}
}

// DefaultMemoSize bounds the runs a [Memo] remembers.
const DefaultMemoSize = 4096

// Memo wraps m with a goroutine-safe cache keyed by [richtext.Run.Key] that
// keeps the [DefaultMemoSize] most recently used sizes. Failed measurements
// are not cached.
func Memo(m Measurer) Measurer {
	return MemoSize(m, DefaultMemoSize)
}

// MemoSize is [Memo] with room for n runs. A memo passed in is returned
// unchanged.
func MemoSize(m Measurer, n int) Measurer {
	if _, ok := m.(*memo); ok {
		return m
	}
	if n <= 0 {
		n = DefaultMemoSize
	}
	sizes, _ := lru.New[string, Size](n) // only fails for n <= 0
	return &memo{inner: m, sizes: sizes}
}

type memo struct {
	inner Measurer
	sizes *lru.Cache[string, Size]
}

func (c *memo) Measure(run richtext.Run) (Size, error) {
	key := run.Key()
	if s, ok := c.sizes.Get(key); ok {
		return s, nil
	}
	s, err := c.inner.Measure(run)
	if err != nil {
		return Size{}, err
	}
	c.sizes.Add(key, s)
	return s, nil
}
