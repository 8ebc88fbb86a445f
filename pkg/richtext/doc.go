// Package richtext models the styled text runs attached to every diagram label.
//
// A [Run] is an ordered sequence of [Segment] values, rendered left to right.
// Each segment carries exactly one [Style] from a closed set:
//
//   - [StyleNormal]: upright text on the baseline
//   - [StyleItalic]: slanted text on the baseline (type variables, metavariables)
//   - [StyleSubscript]: reduced size, dropped below the baseline (indices such as t₁)
//   - [StyleMiddle]: reduced size, vertically centered on the run's top anchor line
//     (rule names sitting on an inference bar)
//
// Styles are a pass-through attribute: the layout engine only asks for the
// measured size of a run and never interprets the styles itself.
//
// # Wire Format
//
// Runs are JSON arrays of segments. An omitted style means normal; any style
// outside the closed set is rejected when decoding:
//
//	[{"text": "λx", "style": "normal"}, {"text": "t", "style": "italic"}, {"text": "1", "style": "subscript"}]
package richtext
