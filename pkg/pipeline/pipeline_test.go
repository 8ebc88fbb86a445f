package pipeline

import (
	"bytes"
	"context"
	"image/png"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/typediagram/pkg/cache"
	"github.com/matzehuels/typediagram/pkg/diagram"
	errs "github.com/matzehuels/typediagram/pkg/errors"
	"github.com/matzehuels/typediagram/pkg/infer"
	"github.com/matzehuels/typediagram/pkg/infer/infertest"
	"github.com/matzehuels/typediagram/pkg/layout"
	"github.com/matzehuels/typediagram/pkg/measure"
	"github.com/matzehuels/typediagram/pkg/richtext"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"dot", true}, // nodelink only
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	err := ValidateFormats([]string{"svg", "invalid"})
	if got := errs.GetCode(err); got != errs.ErrCodeInvalidFormat {
		t.Errorf("code = %q, want %q", got, errs.ErrCodeInvalidFormat)
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}

	if err := ValidateNodelinkFormats([]string{"dot", "svg"}); err != nil {
		t.Errorf("nodelink formats should pass: %v", err)
	}
	if err := ValidateNodelinkFormats([]string{"json"}); err == nil {
		t.Error("json is not a nodelink format")
	}
}

func TestValidatePanels(t *testing.T) {
	if err := ValidatePanels(diagram.PanelNames); err != nil {
		t.Errorf("all panels should pass: %v", err)
	}
	if err := ValidatePanels([]string{"ast", "proof"}); err == nil {
		t.Error("unknown panel should fail")
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"svg"}, opts.Formats); diff != "" {
		t.Errorf("Formats mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(diagram.PanelNames, opts.Panels); diff != "" {
		t.Errorf("Panels mismatch (-want +got):\n%s", diff)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("Scale = %v, want %v", opts.Scale, DefaultScale)
	}
	if opts.Metrics != layout.DefaultMetrics() {
		t.Errorf("Metrics = %+v", opts.Metrics)
	}
	if opts.Typography != measure.DefaultTypography() {
		t.Errorf("Typography = %+v", opts.Typography)
	}

	for _, scale := range []float64{-1, MaxScale + 1, 1 << 32} {
		bad := Options{Scale: scale}
		if err := bad.ValidateAndSetDefaults(); !errs.Is(err, errs.ErrCodeInvalidInput) {
			t.Errorf("scale %v: error = %v, want %s", scale, err, errs.ErrCodeInvalidInput)
		}
	}
	badMetrics := Options{Metrics: layout.DefaultMetrics()}
	badMetrics.Metrics.EdgeGap = -3
	if err := badMetrics.ValidateForLayout(); err == nil {
		t.Error("negative metric should fail")
	}
}

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func astDoc() diagram.Document {
	p := richtext.Plain
	return diagram.ASTDocument(diagram.Tree(p("App"),
		diagram.Tree(p("Lam"), diagram.Leaf(richtext.Italic("x"))),
		diagram.Leaf(p("y")),
	))
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)

	docs := map[string]diagram.Document{
		"text":        diagram.TextDocument(richtext.Concat(richtext.Italic("t"), richtext.Sub("1"))),
		"ast":         astDoc(),
		"proof":       diagram.ProofDocument(infertest.FstResult().Proof),
		"unification": diagram.UnificationDocument(infertest.FstResult().Unification),
		"inference":   diagram.InferenceDocument(infertest.FstResult().Proof, infertest.FstResult().Unification),
	}

	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			res, err := r.Execute(ctx, doc, Options{Formats: []string{"svg", "json", "png"}})
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if res.Drawing.Kind != doc.Kind {
				t.Errorf("Kind = %q, want %q", res.Drawing.Kind, doc.Kind)
			}
			if res.DrawingHash == "" {
				t.Error("DrawingHash is empty")
			}
			if !bytes.HasPrefix(res.Artifacts["svg"], []byte("<svg")) {
				t.Errorf("svg artifact = %.40q", res.Artifacts["svg"])
			}

			got, err := layout.UnmarshalDrawing(res.Artifacts["json"])
			if err != nil {
				t.Fatalf("json artifact: %v", err)
			}
			if diff := cmp.Diff(res.Drawing, got, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("json artifact mismatch (-want +got):\n%s", diff)
			}

			img, err := png.Decode(bytes.NewReader(res.Artifacts["png"]))
			if err != nil {
				t.Fatalf("png artifact: %v", err)
			}
			if w := img.Bounds().Dx(); w < int(res.Drawing.Width) {
				t.Errorf("png width %d smaller than drawing width %v", w, res.Drawing.Width)
			}
		})
	}
}

func TestExecuteCaching(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)
	opts := Options{Formats: []string{"svg", "json"}}

	first, err := r.Execute(ctx, astDoc(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("first run CacheInfo = %+v, want misses", first.CacheInfo)
	}

	second, err := r.Execute(ctx, astDoc(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run CacheInfo = %+v, want hits", second.CacheInfo)
	}
	if diff := cmp.Diff(first.Artifacts, second.Artifacts); diff != "" {
		t.Errorf("cached artifacts differ (-first +second):\n%s", diff)
	}

	// A new format is a render miss on a cached layout.
	third, err := r.Execute(ctx, astDoc(), Options{Formats: []string{"svg", "png"}})
	if err != nil {
		t.Fatal(err)
	}
	if !third.CacheInfo.LayoutHit || third.CacheInfo.RenderHit {
		t.Errorf("third run CacheInfo = %+v, want layout hit only", third.CacheInfo)
	}

	opts.Refresh = true
	refreshed, err := r.Execute(ctx, astDoc(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.CacheInfo.LayoutHit || refreshed.CacheInfo.RenderHit {
		t.Errorf("refresh CacheInfo = %+v, want misses", refreshed.CacheInfo)
	}
}

func TestExecuteErrors(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)

	tests := []struct {
		name string
		doc  diagram.Document
		opts Options
		want errs.Code
	}{
		{"missing tree", diagram.Document{Kind: diagram.KindAST}, Options{}, errs.ErrCodeInvalidDocument},
		{"unknown kind", diagram.Document{Kind: "graph"}, Options{}, errs.ErrCodeInvalidDocument},
		{"bad format", astDoc(), Options{Formats: []string{"gif"}}, errs.ErrCodeInvalidFormat},
		{"bad background", astDoc(), Options{Formats: []string{"png"}, Background: "chartreuse"}, errs.ErrCodeInvalidInput},
		{"nodelink proof", diagram.ProofDocument(infertest.FstResult().Proof), Options{Nodelink: true, Formats: []string{"dot"}}, errs.ErrCodeUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Execute(ctx, tt.doc, tt.opts)
			if got := errs.GetCode(err); got != tt.want {
				t.Errorf("code = %q, want %q (err = %v)", got, tt.want, err)
			}
		})
	}
}

func TestExecuteNodelink(t *testing.T) {
	r := newTestRunner(t)
	res, err := r.Execute(context.Background(), astDoc(), Options{Nodelink: true, Formats: []string{"dot"}})
	if err != nil {
		t.Fatal(err)
	}
	dot := string(res.Artifacts["dot"])
	for _, want := range []string{"digraph", "n0 [label=<App>];", "n2 [label=<<I>x</I>>];", "n0 -> n3;"} {
		if !strings.Contains(dot, want) {
			t.Errorf("dot output missing %q:\n%s", want, dot)
		}
	}
	if res.Drawing != nil {
		t.Error("nodelink result should carry no drawing")
	}
	if res.Stats.NodeCount != 4 {
		t.Errorf("NodeCount = %d, want 4", res.Stats.NodeCount)
	}
}

func TestTyping(t *testing.T) {
	ctx := context.Background()
	engine := infertest.NewEngine(t)
	client, err := infer.NewClient(engine.URL)
	if err != nil {
		t.Fatal(err)
	}
	r := newTestRunner(t)

	res, err := r.Typing(ctx, client, `\x.y.x`, Options{Formats: []string{"json"}})
	if err != nil {
		t.Fatalf("Typing: %v", err)
	}
	if res.Expression != infertest.FstExpression {
		t.Errorf("Expression = %q, want %q", res.Expression, infertest.FstExpression)
	}

	var names []string
	for _, p := range res.Panels {
		names = append(names, p.Name)
		if _, ok := p.Result.Artifacts["json"]; !ok {
			t.Errorf("panel %s has no json artifact", p.Name)
		}
	}
	if diff := cmp.Diff(diagram.PanelNames, names); diff != "" {
		t.Errorf("panel order mismatch (-want +got):\n%s", diff)
	}
	if got := res.Panel(diagram.PanelInference).Drawing.Kind; got != diagram.KindInference {
		t.Errorf("inference panel kind = %q", got)
	}
	if res.Panel("proof") != nil {
		t.Error("Panel(proof) should be nil")
	}

	again, err := r.Typing(ctx, client, infertest.FstExpression, Options{Formats: []string{"json"}, Panels: []string{"type"}})
	if err != nil {
		t.Fatal(err)
	}
	if !again.CacheInfo.TypingHit {
		t.Error("second typing should hit the cache")
	}
	if len(again.Panels) != 1 || again.Panels[0].Name != "type" {
		t.Errorf("Panels = %+v, want only type", again.Panels)
	}
	if n := len(engine.Requests()); n != 1 {
		t.Errorf("engine saw %d requests, want 1", n)
	}
}

func TestTypingNodelinkAST(t *testing.T) {
	typer := infer.TyperFunc(func(context.Context, string) (*diagram.TypingResult, error) {
		return infertest.FstResult(), nil
	})
	r := newTestRunner(t)
	res, err := r.Typing(context.Background(), typer, infertest.FstExpression,
		Options{Nodelink: true, Formats: []string{"dot"}, Panels: []string{"ast", "type"}})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := res.Panel("ast").Artifacts["dot"]; !ok {
		t.Error("ast panel should be rendered as dot")
	}
	if _, ok := res.Panel("type").Artifacts["svg"]; !ok {
		t.Error("type panel should fall back to svg")
	}
}

func TestTypingRejected(t *testing.T) {
	ctx := context.Background()
	engine := infertest.NewEngine(t)
	client, err := infer.NewClient(engine.URL)
	if err != nil {
		t.Fatal(err)
	}
	r := newTestRunner(t)

	for range 2 {
		_, err := r.Typing(ctx, client, "λx.", Options{})
		if got := errs.GetCode(err); got != errs.ErrCodeExpressionRejected {
			t.Fatalf("code = %q, want %q (err = %v)", got, errs.ErrCodeExpressionRejected, err)
		}
	}
	if n := len(engine.Requests()); n != 2 {
		t.Errorf("engine saw %d requests, want 2 (rejections are not cached)", n)
	}

	unparsed := infer.TyperFunc(func(context.Context, string) (*diagram.TypingResult, error) {
		return &diagram.TypingResult{Error: "nope"}, nil
	})
	_, err = r.Typing(ctx, unparsed, "x", Options{})
	if got := errs.GetCode(err); got != errs.ErrCodeExpressionRejected {
		t.Errorf("code = %q, want %q", got, errs.ErrCodeExpressionRejected)
	}
}

func TestParseInput(t *testing.T) {
	d, err := NewRunner(nil, nil, nil).Layout(context.Background(), astDoc(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	drawingJSON, err := layout.MarshalDrawing(d)
	if err != nil {
		t.Fatal(err)
	}

	in, err := ParseInput(drawingJSON)
	if err != nil {
		t.Fatalf("drawing: %v", err)
	}
	if in.Document != nil || in.Drawing == nil {
		t.Fatalf("drawing input = %+v", in)
	}
	if diff := cmp.Diff(d, in.Drawing, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("drawing mismatch (-want +got):\n%s", diff)
	}

	docJSON, err := diagram.Encode(astDoc())
	if err != nil {
		t.Fatal(err)
	}
	in, err = ParseInput(docJSON)
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	if in.Drawing != nil || in.Document == nil || in.Document.Kind != diagram.KindAST {
		t.Fatalf("document input = %+v", in)
	}

	for _, bad := range []string{`[1,2]`, `{"kind": "forest"}`, `not json`} {
		if _, err := ParseInput([]byte(bad)); errs.GetCode(err) != errs.ErrCodeInvalidDocument {
			t.Errorf("ParseInput(%s) error = %v, want INVALID_DOCUMENT", bad, err)
		}
	}
}

func TestReadInputMissing(t *testing.T) {
	_, err := ReadInput(t.TempDir() + "/missing.json")
	if got := errs.GetCode(err); got != errs.ErrCodeFileNotFound {
		t.Errorf("code = %q, want %q", got, errs.ErrCodeFileNotFound)
	}
}

func TestMeasurerFor(t *testing.T) {
	for _, name := range []string{MeasurerFace, MeasurerApprox} {
		f, err := MeasurerFor(name)
		if err != nil {
			t.Fatalf("MeasurerFor(%q): %v", name, err)
		}
		m, err := f(measure.DefaultTypography())
		if err != nil {
			t.Fatalf("%s factory: %v", name, err)
		}
		s, err := m.Measure(richtext.Plain("x"))
		if err != nil || s.Width <= 0 {
			t.Errorf("%s: Measure = %+v, %v", name, s, err)
		}
	}
	if _, err := MeasurerFor("ruler"); errs.GetCode(err) != errs.ErrCodeInvalidConfig {
		t.Errorf("unknown measurer error = %v", err)
	}
}

func TestRunnerFaceMeasurer(t *testing.T) {
	r := NewRunner(nil, nil, nil, WithMeasurer(MeasurerFace, FaceMeasurer))
	d, err := r.Layout(context.Background(), astDoc(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if d.Width <= 0 || d.Height <= 0 {
		t.Errorf("drawing size = %vx%v", d.Width, d.Height)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
