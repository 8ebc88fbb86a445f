package layout

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/typediagram/pkg/diagram"
	errs "github.com/matzehuels/typediagram/pkg/errors"
	"github.com/matzehuels/typediagram/pkg/richtext"
)

func TestTextItemEdges(t *testing.T) {
	tests := []struct {
		anchor      Anchor
		left, right float64
	}{
		{AnchorStart, 100, 140},
		{AnchorMiddle, 80, 120},
		{AnchorEnd, 60, 100},
	}
	for _, tt := range tests {
		t.Run(string(tt.anchor), func(t *testing.T) {
			item := TextItem{Anchor: tt.anchor, X: 100, Width: 40}
			if item.Left() != tt.left || item.Right() != tt.right {
				t.Errorf("span = [%v, %v], want [%v, %v]", item.Left(), item.Right(), tt.left, tt.right)
			}
		})
	}
}

func TestBounds(t *testing.T) {
	d := &Drawing{
		Texts: []TextItem{{Run: txt("a"), Anchor: AnchorMiddle, X: 50, Y: 10, Width: 20, Height: 30}},
		Lines: []Line{{X1: 5, Y1: 60, X2: 45, Y2: 35}},
	}
	want := Rect{MinX: 5, MinY: 10, MaxX: 60, MaxY: 60}
	if got := d.Bounds(); got != want {
		t.Errorf("Bounds() = %+v, want %+v", got, want)
	}
	if got := (&Drawing{}).Bounds(); got != (Rect{}) {
		t.Errorf("empty Bounds() = %+v", got)
	}
}

func TestDrawingRoundTrip(t *testing.T) {
	eng := New(newFake(nil))
	d, err := eng.Scene(
		diagram.Infer(txt("⊢ f 1"), richtext.Mid("App"), diagram.Axiom(txt("⊢ f"), richtext.Mid("Var"))),
		[]diagram.Equation{{LHS: richtext.Italic("α"), Relation: txt("="), RHS: richtext.Concat(txt("t"), richtext.Sub("1"))}},
	)
	if err != nil {
		t.Fatalf("Scene() error: %v", err)
	}

	data, err := MarshalDrawing(d)
	if err != nil {
		t.Fatalf("MarshalDrawing() error: %v", err)
	}
	got, err := UnmarshalDrawing(data)
	if err != nil {
		t.Fatalf("UnmarshalDrawing() error: %v", err)
	}
	if diff := cmp.Diff(d, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	path := filepath.Join(t.TempDir(), "scene.layout.json")
	if err := WriteDrawingFile(d, path); err != nil {
		t.Fatalf("WriteDrawingFile() error: %v", err)
	}
	fromFile, err := ReadDrawingFile(path)
	if err != nil {
		t.Fatalf("ReadDrawingFile() error: %v", err)
	}
	if diff := cmp.Diff(d, fromFile); diff != "" {
		t.Errorf("file round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestUnmarshalDrawingInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", `{`},
		{"negative size", `{"width":-1,"height":10,"texts":[],"lines":[]}`},
		{"bad anchor", `{"width":1,"height":1,"texts":[{"run":[],"anchor":"left","x":0,"y":0}],"lines":[]}`},
		{"null run", `{"width":1,"height":1,"texts":[{"run":null,"anchor":"start","x":0,"y":0}],"lines":[]}`},
		{"bad style", `{"width":1,"height":1,"texts":[{"run":[{"text":"a","style":"bold"}],"anchor":"start"}]}`},
		{"bad kind", `{"kind":"graph","width":1,"height":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalDrawing([]byte(tt.input))
			if !errs.Is(err, errs.ErrCodeInvalidDocument) {
				t.Errorf("UnmarshalDrawing() error = %v, want INVALID_DOCUMENT", err)
			}
		})
	}
}

func TestValidateNonFinite(t *testing.T) {
	d := &Drawing{Width: 10, Height: 10, Lines: []Line{{X1: math.NaN()}}}
	if err := d.Validate(); err == nil {
		t.Error("Validate() accepted a NaN coordinate")
	}
}

func TestReadDrawingFileMissing(t *testing.T) {
	_, err := ReadDrawingFile(filepath.Join(t.TempDir(), "nope.json"))
	if !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("ReadDrawingFile() error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestMetricsValidate(t *testing.T) {
	if err := DefaultMetrics().Validate(); err != nil {
		t.Errorf("DefaultMetrics().Validate() error: %v", err)
	}
	m := DefaultMetrics()
	m.RuleGap = -1
	if err := m.Validate(); err == nil {
		t.Error("Validate() accepted a negative rule gap")
	}
	m = DefaultMetrics()
	m.EdgeGap = math.Inf(1)
	if err := m.Validate(); err == nil {
		t.Error("Validate() accepted an infinite edge gap")
	}
}
