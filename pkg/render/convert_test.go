package render

import (
	"context"
	"testing"

	errs "github.com/matzehuels/typediagram/pkg/errors"
)

func TestMissingConverter(t *testing.T) {
	orig := rsvgBinary
	rsvgBinary = "rsvg-convert-does-not-exist"
	t.Cleanup(func() { rsvgBinary = orig })

	if Available() {
		t.Fatal("Available() = true for a missing binary")
	}
	_, err := ToPDF(context.Background(), []byte("<svg/>"))
	if !errs.Is(err, errs.ErrCodeUnsupported) {
		t.Errorf("ToPDF() error = %v, want UNSUPPORTED", err)
	}
}

func TestToPNGScale(t *testing.T) {
	_, err := ToPNG(context.Background(), []byte("<svg/>"), 0)
	if !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("ToPNG(scale 0) error = %v, want INVALID_INPUT", err)
	}
}

func TestToPDF(t *testing.T) {
	if !Available() {
		t.Skip("rsvg-convert not installed")
	}
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"><line x1="0" y1="0" x2="10" y2="10" stroke="black"/></svg>`)
	pdf, err := ToPDF(context.Background(), svg)
	if err != nil {
		t.Fatalf("ToPDF() error: %v", err)
	}
	if len(pdf) < 4 || string(pdf[:4]) != "%PDF" {
		t.Errorf("output does not start with %%PDF")
	}
}
