package pipeline

import (
	"encoding/json"
	"os"

	"github.com/matzehuels/typediagram/pkg/diagram"
	errs "github.com/matzehuels/typediagram/pkg/errors"
	"github.com/matzehuels/typediagram/pkg/layout"
)

// Input is a decoded pipeline input: either a document still to be laid
// out or a drawing produced by an earlier layout run.
type Input struct {
	Document *diagram.Document
	Drawing  *layout.Drawing
}

// ParseInput decodes data as a drawing when it carries the drawing fields
// (width, height and texts) and as a document otherwise.
func ParseInput(data []byte) (Input, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Input{}, errs.Wrap(errs.ErrCodeInvalidDocument, err, "$: not a JSON object")
	}
	if isDrawing(fields) {
		d, err := layout.UnmarshalDrawing(data)
		if err != nil {
			return Input{}, err
		}
		return Input{Drawing: d}, nil
	}
	doc, err := diagram.Decode(data)
	if err != nil {
		return Input{}, err
	}
	return Input{Document: &doc}, nil
}

// ReadInput reads and decodes a pipeline input file.
func ReadInput(path string) (Input, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Input{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "input %s not found", path)
	}
	if err != nil {
		return Input{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "read %s", path)
	}
	return ParseInput(data)
}

func isDrawing(o map[string]json.RawMessage) bool {
	for _, k := range []string{"width", "height", "texts"} {
		if _, ok := o[k]; !ok {
			return false
		}
	}
	return true
}
