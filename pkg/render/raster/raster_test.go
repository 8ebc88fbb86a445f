package raster

import (
	"bytes"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/matzehuels/typediagram/pkg/layout"
	"github.com/matzehuels/typediagram/pkg/richtext"
)

func dark(c color.Color) bool {
	r, g, b, a := c.RGBA()
	return a > 0x8000 && r < 0x4000 && g < 0x4000 && b < 0x4000
}

func TestRasterizeLine(t *testing.T) {
	d := &layout.Drawing{
		Width:  40,
		Height: 20,
		Lines:  []layout.Line{{X1: 5, Y1: 10, X2: 35, Y2: 10}},
	}
	img, err := Rasterize(d, DefaultOptions())
	if err != nil {
		t.Fatalf("Rasterize() error: %v", err)
	}
	if got := img.Bounds().Size(); got.X != 80 || got.Y != 40 {
		t.Fatalf("size = %v, want 80x40", got)
	}
	if !dark(img.At(40, 20)) {
		t.Errorf("pixel on the line is %v, want ink", img.At(40, 20))
	}
	if dark(img.At(40, 4)) {
		t.Errorf("pixel off the line is %v, want background", img.At(40, 4))
	}
	// round cap reaches past the end point
	if !dark(img.At(71, 20)) {
		t.Errorf("pixel inside the cap is %v, want ink", img.At(71, 20))
	}
}

func TestRasterizeText(t *testing.T) {
	d := &layout.Drawing{
		Width:  120,
		Height: 50,
		Texts: []layout.TextItem{{
			Run:    richtext.Concat(richtext.Plain("HH"), richtext.Sub("1")),
			Anchor: layout.AnchorStart, X: 10, Y: 10, Width: 60, Height: 30,
		}},
	}
	opts := DefaultOptions()
	opts.Scale = 1
	img, err := Rasterize(d, opts)
	if err != nil {
		t.Fatalf("Rasterize() error: %v", err)
	}

	var inked int
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if dark(img.At(x, y)) {
				inked++
				if x < 9 || y < 9 {
					t.Fatalf("ink at (%d, %d) outside the text box", x, y)
				}
			}
		}
	}
	if inked == 0 {
		t.Error("no glyph pixels were drawn")
	}
}

func TestRasterizeRejects(t *testing.T) {
	tests := []struct {
		name string
		d    *layout.Drawing
		opts func(*Options)
	}{
		{"zero scale", &layout.Drawing{Width: 10, Height: 10}, func(o *Options) { o.Scale = 0 }},
		{"empty canvas", &layout.Drawing{}, func(*Options) {}},
		{"huge canvas", &layout.Drawing{Width: 1e6, Height: 1e6}, func(*Options) {}},
		{"scale overflowing int", &layout.Drawing{Width: 1, Height: 1}, func(o *Options) { o.Scale = 1 << 32 }},
		{"one huge side", &layout.Drawing{Width: 1e12, Height: 1}, func(*Options) {}},
		{"infinite scale", &layout.Drawing{Width: 1, Height: 1}, func(o *Options) { o.Scale = math.Inf(1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.opts(&opts)
			if _, err := Rasterize(tt.d, opts); err == nil {
				t.Error("Rasterize() succeeded, want error")
			}
		})
	}
}

func TestEncodePNG(t *testing.T) {
	d := &layout.Drawing{Width: 10, Height: 10, Lines: []layout.Line{{X1: 1, Y1: 1, X2: 9, Y2: 9}}}
	var buf bytes.Buffer
	if err := EncodePNG(&buf, d, DefaultOptions()); err != nil {
		t.Fatalf("EncodePNG() error: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode() error: %v", err)
	}
	if img.Bounds().Dx() != 20 {
		t.Errorf("width = %d, want 20", img.Bounds().Dx())
	}
}
