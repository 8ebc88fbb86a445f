package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/typediagram/pkg/cache"
	"github.com/matzehuels/typediagram/pkg/diagram"
	errs "github.com/matzehuels/typediagram/pkg/errors"
	"github.com/matzehuels/typediagram/pkg/infer"
)

// Panel is one rendered panel of a typing result.
type Panel struct {
	Name   string
	Result *Result
}

// TypingResult is the output of [Runner.Typing].
type TypingResult struct {
	Expression string
	Typing     *diagram.TypingResult
	Panels     []Panel // in display order
	TypingTime time.Duration
	CacheInfo  CacheInfo
}

// Panel returns the named panel, or nil.
func (t *TypingResult) Panel(name string) *Result {
	for _, p := range t.Panels {
		if p.Name == name {
			return p.Result
		}
	}
	return nil
}

// Typing asks typer for the typing of expression and runs every selected
// panel through [Runner.Execute]. The engine's answer is cached.
// Rejected expressions are returned as errors by the typer and never cached.
func (r *Runner) Typing(ctx context.Context, typer infer.Typer, expression string, opts Options) (*TypingResult, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, formatErr("invalid options", err)
	}
	expression = infer.NormalizeExpression(expression)

	start := time.Now()
	tr, hit, err := r.typingWithCacheInfo(ctx, typer, expression, opts)
	if err != nil {
		return nil, err
	}
	out := &TypingResult{
		Expression: expression,
		Typing:     tr,
		TypingTime: time.Since(start),
	}
	out.CacheInfo.TypingHit = hit
	opts.Logger.Info("typed expression", "expression", expression, "cached", hit, "duration", out.TypingTime)

	panels := tr.Panels()
	layoutHit, renderHit := true, true
	for _, name := range opts.Panels {
		panelOpts := opts
		panelOpts.Nodelink = opts.Nodelink && name == diagram.PanelAST
		if !panelOpts.Nodelink {
			panelOpts.Formats = drawingFormats(opts.Formats)
		}
		res, err := r.Execute(ctx, panels[name], panelOpts)
		if err != nil {
			return nil, formatErr(name, err)
		}
		layoutHit = layoutHit && res.CacheInfo.LayoutHit
		renderHit = renderHit && res.CacheInfo.RenderHit
		out.Panels = append(out.Panels, Panel{Name: name, Result: res})
	}
	out.CacheInfo.LayoutHit = layoutHit && len(out.Panels) > 0
	out.CacheInfo.RenderHit = renderHit && len(out.Panels) > 0
	return out, nil
}

func (r *Runner) typingWithCacheInfo(ctx context.Context, typer infer.Typer, expression string, opts Options) (*diagram.TypingResult, bool, error) {
	cacheKey := r.Keyer.TypingKey(expression, cache.LayoutKeyOpts{Kind: "typing"})

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cached, err := diagram.DecodeTypingResult(data); err == nil && cached.Parsed {
				return cached, true, nil
			}
		}
	}

	tr, err := typer.Type(ctx, expression)
	if err != nil {
		return nil, false, err
	}
	if !tr.Parsed {
		return nil, false, errs.New(errs.ErrCodeExpressionRejected, "%s", tr.Error)
	}

	if data, err := diagram.EncodeTypingResult(tr); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLTyping)
	}
	return tr, false, nil
}

// drawingFormats drops the Graphviz-only dot format for panels that are
// drawn natively, falling back to svg.
func drawingFormats(formats []string) []string {
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		if f != FormatDOT {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		out = append(out, FormatSVG)
	}
	return out
}
