// Package fonts provides the embedded typefaces used to measure and draw labels.
//
// The Go Regular and Go Italic faces from golang.org/x/image/font/gofont are
// compiled into the binary, so text measurement never depends on fonts being
// installed on the host. The same TTF data can be embedded into SVG output
// through an @font-face rule, keeping rendered glyphs consistent with the
// measured geometry.
package fonts

import (
	"encoding/base64"
	"fmt"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// FontFamily is the CSS font-family name of the embedded faces.
const FontFamily = "Go"

// FallbackFontFamily lists families tried when the embedded font is not inlined.
const FallbackFontFamily = `'Go', 'XITS', 'STIX Two Text', 'Times New Roman', serif`

var (
	parseOnce sync.Once
	regular   *opentype.Font
	italic    *opentype.Font
	parseErr  error
)

func parsed() (*opentype.Font, *opentype.Font, error) {
	parseOnce.Do(func() {
		regular, parseErr = opentype.Parse(goregular.TTF)
		if parseErr != nil {
			parseErr = fmt.Errorf("parse regular face: %w", parseErr)
			return
		}
		italic, parseErr = opentype.Parse(goitalic.TTF)
		if parseErr != nil {
			parseErr = fmt.Errorf("parse italic face: %w", parseErr)
		}
	})
	return regular, italic, parseErr
}

type faceKey struct {
	size   float64
	italic bool
}

// Bank hands out sized faces and caches them.
//
// A Bank is not safe for concurrent use: font.Face values keep internal
// buffers. Give each goroutine its own Bank or serialize access.
type Bank struct {
	regular *opentype.Font
	italic  *opentype.Font
	faces   map[faceKey]font.Face
}

// NewBank returns a Bank backed by the embedded Go faces.
func NewBank() (*Bank, error) {
	reg, ita, err := parsed()
	if err != nil {
		return nil, err
	}
	return &Bank{regular: reg, italic: ita, faces: map[faceKey]font.Face{}}, nil
}

// Face returns the face for size (in pixels at 72 DPI), creating it on first use.
func (b *Bank) Face(size float64, italic bool) (font.Face, error) {
	key := faceKey{size: size, italic: italic}
	if f, ok := b.faces[key]; ok {
		return f, nil
	}
	base := b.regular
	if italic {
		base = b.italic
	}
	f, err := opentype.NewFace(base, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		return nil, fmt.Errorf("create face (size %.1f): %w", size, err)
	}
	b.faces[key] = f
	return f, nil
}

// Close releases every cached face.
func (b *Bank) Close() error {
	for k, f := range b.faces {
		_ = f.Close()
		delete(b.faces, k)
	}
	return nil
}

// Advance returns the horizontal advance of s in pixels.
func Advance(f font.Face, s string) float64 {
	return toFloat(font.MeasureString(f, s))
}

// Ascent returns the distance from the baseline to the top of the line box.
func Ascent(f font.Face) float64 { return toFloat(f.Metrics().Ascent) }

// Descent returns the distance from the baseline to the bottom of the line box.
func Descent(f font.Face) float64 { return toFloat(f.Metrics().Descent) }

func toFloat(v fixed.Int26_6) float64 {
	return math.Round(float64(v)/64*100) / 100
}

var (
	regularBase64 string
	italicBase64  string
	base64Once    sync.Once
)

// RegularTTFBase64 returns the regular face as a base64 string for data URIs.
// The result is cached after first computation.
func RegularTTFBase64() string {
	encodeOnce()
	return regularBase64
}

// ItalicTTFBase64 returns the italic face as a base64 string for data URIs.
func ItalicTTFBase64() string {
	encodeOnce()
	return italicBase64
}

func encodeOnce() {
	base64Once.Do(func() {
		regularBase64 = base64.StdEncoding.EncodeToString(goregular.TTF)
		italicBase64 = base64.StdEncoding.EncodeToString(goitalic.TTF)
	})
}
