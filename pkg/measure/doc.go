// Package measure sizes styled text runs.
//
// The layout engine never computes glyph metrics itself. It asks a [Measurer]
// for the rendered width and height of each [richtext.Run] and treats the
// answer as authoritative. Two implementations are provided:
//
//   - [FaceMeasurer]: real glyph advances and line boxes from the embedded
//     Go faces (see package fonts)
//   - [Approximate]: a font-free estimate from character counts, useful when
//     output is rendered by a client with its own fonts
//
// Neither implementation caches. Wrap any Measurer with [Memo] to reuse sizes
// of identical runs across a layout pass or across requests:
//
//	m, err := measure.NewFaceMeasurer(measure.DefaultTypography())
//	if err != nil {
//	    return err
//	}
//	engine := layout.New(measure.Memo(m))
//
// # Vertical Model
//
// All positions are relative to the run's top anchor line (y = 0). Normal and
// italic segments sit on a baseline [Typography.BaselineOffset] below it,
// subscripts drop a further [Typography.SubscriptDrop], and middle segments are
// centered on the anchor line itself. A run's height is the vertical union of
// its segments' line boxes.
package measure
