package measure

import (
	"math"
	"sync"

	"github.com/matzehuels/typediagram/pkg/fonts"
	"github.com/matzehuels/typediagram/pkg/richtext"
)

// FaceMeasurer measures runs with the embedded Go faces.
// It is safe for concurrent use.
type FaceMeasurer struct {
	mu   sync.Mutex
	bank *fonts.Bank
	typo Typography
}

// NewFaceMeasurer returns a measurer for the given typography.
func NewFaceMeasurer(typo Typography) (*FaceMeasurer, error) {
	if err := typo.Validate(); err != nil {
		return nil, err
	}
	bank, err := fonts.NewBank()
	if err != nil {
		return nil, err
	}
	return &FaceMeasurer{bank: bank, typo: typo}, nil
}

// Typography returns the configuration the measurer was built with.
func (m *FaceMeasurer) Typography() Typography { return m.typo }

// Measure returns the advance width and line-box height of run.
// A run without characters measures zero in both dimensions.
func (m *FaceMeasurer) Measure(run richtext.Run) (Size, error) {
	if run.IsEmpty() {
		return Size{}, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	top, bottom := math.Inf(1), math.Inf(-1)
	var width float64
	for _, seg := range run {
		if seg.Text == "" {
			continue
		}
		face, err := m.bank.Face(m.typo.FontSize(seg.Style), seg.Style == richtext.StyleItalic)
		if err != nil {
			return Size{}, err
		}
		asc, desc := fonts.Ascent(face), fonts.Descent(face)
		base := m.typo.Baseline(seg.Style, asc, desc)
		top = min(top, base-asc)
		bottom = max(bottom, base+desc)
		width += fonts.Advance(face, seg.Text)
	}
	return Size{Width: width, Height: bottom - top}, nil
}

// Close releases the cached faces.
func (m *FaceMeasurer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bank.Close()
}
