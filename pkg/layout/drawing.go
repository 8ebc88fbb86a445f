package layout

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/matzehuels/typediagram/pkg/diagram"
	errs "github.com/matzehuels/typediagram/pkg/errors"
	"github.com/matzehuels/typediagram/pkg/measure"
	"github.com/matzehuels/typediagram/pkg/richtext"
)

// =============================================================================
// Drawing - Display List
// =============================================================================

// Anchor is the horizontal alignment of a text command relative to its x.
type Anchor string

const (
	AnchorStart  Anchor = "start"
	AnchorMiddle Anchor = "middle"
	AnchorEnd    Anchor = "end"
)

// TextItem draws a run. X is interpreted according to Anchor; Y is the top
// of the run's line box. Width and Height are the measured size of the run.
type TextItem struct {
	Run    richtext.Run `json:"run" bson:"run"`
	Anchor Anchor       `json:"anchor" bson:"anchor"`
	X      float64      `json:"x" bson:"x"`
	Y      float64      `json:"y" bson:"y"`
	Width  float64      `json:"width" bson:"width"`
	Height float64      `json:"height" bson:"height"`
}

// Left returns the x of the run's left edge.
func (t TextItem) Left() float64 {
	switch t.Anchor {
	case AnchorMiddle:
		return t.X - t.Width/2
	case AnchorEnd:
		return t.X - t.Width
	default:
		return t.X
	}
}

// Right returns the x of the run's right edge.
func (t TextItem) Right() float64 { return t.Left() + t.Width }

// Line is a straight segment from (X1, Y1) to (X2, Y2).
type Line struct {
	X1 float64 `json:"x1" bson:"x1"`
	Y1 float64 `json:"y1" bson:"y1"`
	X2 float64 `json:"x2" bson:"x2"`
	Y2 float64 `json:"y2" bson:"y2"`
}

// Drawing is the renderer-agnostic output of a layout: text and line
// commands on a Width by Height canvas with the origin at the top left.
type Drawing struct {
	Kind   diagram.Kind `json:"kind,omitempty" bson:"kind,omitempty"`
	Width  float64      `json:"width" bson:"width"`
	Height float64      `json:"height" bson:"height"`
	Texts  []TextItem   `json:"texts" bson:"texts"`
	Lines  []Line       `json:"lines" bson:"lines"`
}

func (d *Drawing) addText(run richtext.Run, anchor Anchor, x, y float64, s measure.Size) {
	d.Texts = append(d.Texts, TextItem{Run: run, Anchor: anchor, X: x, Y: y, Width: s.Width, Height: s.Height})
}

func (d *Drawing) addLine(l Line) { d.Lines = append(d.Lines, l) }

// Rect is an axis-aligned box.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Bounds returns the box covering every command's nominal extent: each text
// item's measured box below its top y and each line's endpoints. An empty
// drawing has zero bounds.
func (d *Drawing) Bounds() Rect {
	if len(d.Texts) == 0 && len(d.Lines) == 0 {
		return Rect{}
	}
	r := Rect{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	grow := func(x, y float64) {
		r.MinX = math.Min(r.MinX, x)
		r.MinY = math.Min(r.MinY, y)
		r.MaxX = math.Max(r.MaxX, x)
		r.MaxY = math.Max(r.MaxY, y)
	}
	for _, t := range d.Texts {
		grow(t.Left(), t.Y)
		grow(t.Right(), t.Y+t.Height)
	}
	for _, l := range d.Lines {
		grow(l.X1, l.Y1)
		grow(l.X2, l.Y2)
	}
	return r
}

// Validate checks that the drawing can be rendered.
func (d *Drawing) Validate() error {
	if !finite(d.Width) || !finite(d.Height) || d.Width < 0 || d.Height < 0 {
		return fmt.Errorf("invalid canvas size %vx%v", d.Width, d.Height)
	}
	if d.Kind != "" {
		if _, err := diagram.ParseKind(string(d.Kind)); err != nil {
			return err
		}
	}
	for i, t := range d.Texts {
		switch t.Anchor {
		case AnchorStart, AnchorMiddle, AnchorEnd:
		default:
			return fmt.Errorf("texts[%d]: unknown anchor %q", i, t.Anchor)
		}
		if !finite(t.X) || !finite(t.Y) || !finite(t.Width) || !finite(t.Height) {
			return fmt.Errorf("texts[%d]: non-finite geometry", i)
		}
		if t.Run == nil {
			return fmt.Errorf("texts[%d]: null run", i)
		}
		if err := t.Run.Validate(); err != nil {
			return fmt.Errorf("texts[%d]: %w", i, err)
		}
	}
	for i, l := range d.Lines {
		if !finite(l.X1) || !finite(l.Y1) || !finite(l.X2) || !finite(l.Y2) {
			return fmt.Errorf("lines[%d]: non-finite geometry", i)
		}
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// =============================================================================
// Drawing Serialization API
// =============================================================================

// MarshalDrawing serializes a Drawing to pretty-printed JSON bytes.
func MarshalDrawing(d *Drawing) ([]byte, error) {
	out := *d
	if out.Texts == nil {
		out.Texts = []TextItem{}
	}
	if out.Lines == nil {
		out.Lines = []Line{}
	}
	return json.MarshalIndent(out, "", "  ")
}

// UnmarshalDrawing deserializes and validates a Drawing.
func UnmarshalDrawing(data []byte) (*Drawing, error) {
	var d Drawing
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidDocument, err, "unmarshal drawing")
	}
	if err := d.Validate(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidDocument, err, "invalid drawing")
	}
	return &d, nil
}

// WriteDrawingFile writes a Drawing to a JSON file.
func WriteDrawingFile(d *Drawing, path string) error {
	data, err := MarshalDrawing(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadDrawingFile reads a Drawing from a JSON file.
func ReadDrawingFile(path string) (*Drawing, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "layout %s not found", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalDrawing(data)
}
