package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/typediagram/pkg/diagram"
	errs "github.com/matzehuels/typediagram/pkg/errors"
	"github.com/matzehuels/typediagram/pkg/layout"
	"github.com/matzehuels/typediagram/pkg/observability"
)

// layout computes the drawing for doc without consulting the cache.
func (r *Runner) layout(ctx context.Context, doc diagram.Document, opts Options) (d *layout.Drawing, err error) {
	kind := string(doc.Kind)
	observability.Pipeline().OnLayoutStart(ctx, kind, nodeCount(doc))
	start := time.Now()
	defer func() {
		observability.Pipeline().OnLayoutComplete(ctx, kind, time.Since(start), err)
	}()

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, err := r.engine(opts)
	if err != nil {
		return nil, err
	}
	d, err = e.LayoutDocument(doc)
	if err != nil {
		if errs.GetCode(err) == "" {
			err = errs.Wrap(errs.ErrCodeMeasureFailed, err, "layout %s", kind)
		}
		return nil, err
	}
	opts.Logger.Debug("laid out document", "kind", kind, "width", d.Width, "height", d.Height)
	return d, nil
}
