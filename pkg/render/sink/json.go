package sink

import "github.com/matzehuels/typediagram/pkg/layout"

// RenderJSON exports the drawing as pretty-printed JSON. The output can be
// read back with [layout.UnmarshalDrawing] and rendered again unchanged.
func RenderJSON(d *layout.Drawing) ([]byte, error) {
	return layout.MarshalDrawing(d)
}
