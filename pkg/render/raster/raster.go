// Package raster draws a [layout.Drawing] into an image without any external
// tools.
//
// Text is drawn with the embedded Go faces from pkg/fonts, the same faces
// [measure.FaceMeasurer] sizes runs with, so glyphs land where layout
// expects them. Lines are filled as anti-aliased capsules with
// golang.org/x/image/vector.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/matzehuels/typediagram/pkg/fonts"
	"github.com/matzehuels/typediagram/pkg/layout"
	"github.com/matzehuels/typediagram/pkg/measure"
	"github.com/matzehuels/typediagram/pkg/richtext"
)

// maxPixels bounds the output image so a hostile drawing cannot exhaust memory.
const maxPixels = 64 << 20

// Options configures rasterization.
type Options struct {
	Scale      float64 // output pixels per layout unit
	LineWidth  float64 // in layout units
	Typography measure.Typography
	Foreground color.Color
	Background color.Color // nil leaves the image transparent
}

// DefaultOptions renders at 2x with black ink on white.
func DefaultOptions() Options {
	return Options{
		Scale:      2,
		LineWidth:  2,
		Typography: measure.DefaultTypography(),
		Foreground: color.Black,
		Background: color.White,
	}
}

// Rasterize draws d into a new image.
func Rasterize(d *layout.Drawing, opts Options) (*image.RGBA, error) {
	if opts.Scale <= 0 {
		return nil, fmt.Errorf("raster: scale must be positive, got %v", opts.Scale)
	}
	if err := opts.Typography.Validate(); err != nil {
		return nil, err
	}
	if opts.Foreground == nil {
		opts.Foreground = color.Black
	}

	fw := math.Ceil(d.Width * opts.Scale)
	fh := math.Ceil(d.Height * opts.Scale)
	if !(fw > 0 && fh > 0) {
		return nil, fmt.Errorf("raster: empty canvas %vx%v", d.Width, d.Height)
	}
	// sides are checked before converting so the pixel count cannot overflow int
	if fw > maxPixels || fh > maxPixels || fw > maxPixels/fh {
		return nil, fmt.Errorf("raster: canvas %vx%v exceeds %d pixels", fw, fh, maxPixels)
	}
	w, h := int(fw), int(fh)

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if opts.Background != nil {
		draw.Draw(img, img.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)
	}

	bank, err := fonts.NewBank()
	if err != nil {
		return nil, err
	}
	defer bank.Close()

	ink := image.NewUniform(opts.Foreground)
	for _, t := range d.Texts {
		if err := drawText(img, ink, bank, t, opts); err != nil {
			return nil, err
		}
	}
	for _, l := range d.Lines {
		drawLine(img, ink, l, opts)
	}
	return img, nil
}

// EncodePNG rasterizes d and writes it to w as PNG.
func EncodePNG(w io.Writer, d *layout.Drawing, opts Options) error {
	img, err := Rasterize(d, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

func drawText(dst draw.Image, ink image.Image, bank *fonts.Bank, t layout.TextItem, opts Options) error {
	s := opts.Scale
	x := t.Left() * s
	for _, seg := range t.Run {
		if seg.Text == "" {
			continue
		}
		face, err := bank.Face(opts.Typography.FontSize(seg.Style)*s, seg.Style == richtext.StyleItalic)
		if err != nil {
			return err
		}
		asc, desc := fonts.Ascent(face)/s, fonts.Descent(face)/s
		baseline := (t.Y + opts.Typography.Baseline(seg.Style, asc, desc)) * s

		dr := &font.Drawer{
			Dst:  dst,
			Src:  ink,
			Face: face,
			Dot:  fixed.Point26_6{X: toFixed(x), Y: toFixed(baseline)},
		}
		dr.DrawString(seg.Text)
		x += fonts.Advance(face, seg.Text)
	}
	return nil
}

func toFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(math.Round(v * 64)) }

// capSegments is the number of polygon edges approximating each round cap.
const capSegments = 8

// drawLine fills the capsule around the segment, which is what a stroke with
// round caps covers.
func drawLine(dst draw.Image, ink image.Image, l layout.Line, opts Options) {
	s := opts.Scale
	half := opts.LineWidth * s / 2
	if half <= 0 {
		return
	}
	x1, y1, x2, y2 := l.X1*s, l.Y1*s, l.X2*s, l.Y2*s
	angle := math.Atan2(y2-y1, x2-x1)

	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	first := true
	point := func(x, y float64) {
		if first {
			z.MoveTo(float32(x), float32(y))
			first = false
			return
		}
		z.LineTo(float32(x), float32(y))
	}
	// End cap around (x2, y2), then start cap around (x1, y1).
	for i := 0; i <= capSegments; i++ {
		a := angle - math.Pi/2 + math.Pi*float64(i)/capSegments
		point(x2+half*math.Cos(a), y2+half*math.Sin(a))
	}
	for i := 0; i <= capSegments; i++ {
		a := angle + math.Pi/2 + math.Pi*float64(i)/capSegments
		point(x1+half*math.Cos(a), y1+half*math.Sin(a))
	}
	z.ClosePath()
	z.Draw(dst, b, ink, image.Point{})
}
