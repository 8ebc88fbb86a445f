// Package cli implements the typediagram command-line interface.
//
// The commands lay out diagram documents, render drawings, query a type
// inference engine and serve the HTTP API. The CLI is built using cobra and
// supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - layout: Compute a drawing (layout.json) from a document
//   - visualize: Render a drawing to SVG, PNG, PDF or JSON
//   - render: Layout and render in one step (-t nodelink for Graphviz ASTs)
//   - type: Ask the inference engine and draw every panel of the answer
//   - serve: Run the HTTP API
//   - cache: Manage the layout and artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// logs pipeline, cache and engine events and the duration of each stage.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger with "HH:MM:SS.ms" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one pipeline stage of a command.
type progress struct {
	logger *log.Logger
	stage  string
	start  time.Time
}

func newProgress(l *log.Logger, stage string) *progress {
	return &progress{logger: l, stage: stage, start: time.Now()}
}

// done logs the stage with its elapsed time at debug level, so only
// --verbose runs show it. keyvals are appended to the entry.
func (p *progress) done(keyvals ...any) {
	kv := append([]any{"took", time.Since(p.start).Round(time.Millisecond)}, keyvals...)
	p.logger.Debug(p.stage, kv...)
}
