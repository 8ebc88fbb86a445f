package richtext

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Style is the typographic treatment of a single segment.
type Style string

// The closed set of segment styles.
const (
	StyleNormal    Style = "normal"
	StyleItalic    Style = "italic"
	StyleSubscript Style = "subscript"
	StyleMiddle    Style = "middle"
)

// Styles lists every valid style in declaration order.
var Styles = []Style{StyleNormal, StyleItalic, StyleSubscript, StyleMiddle}

// ParseStyle converts a wire value into a Style. The empty string is normal.
func ParseStyle(s string) (Style, error) {
	switch Style(s) {
	case "", StyleNormal:
		return StyleNormal, nil
	case StyleItalic, StyleSubscript, StyleMiddle:
		return Style(s), nil
	}
	return "", fmt.Errorf("unknown style %q (must be one of: normal, italic, subscript, middle)", s)
}

// IsReduced reports whether the style is drawn at a smaller font size.
func (s Style) IsReduced() bool { return s == StyleSubscript || s == StyleMiddle }

// UnmarshalJSON rejects styles outside the closed set.
func (s *Style) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("style: %w", err)
	}
	parsed, err := ParseStyle(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Segment is a piece of text with one style applied.
type Segment struct {
	Text  string `json:"text"`
	Style Style  `json:"style,omitempty"`
}

// UnmarshalJSON requires the text field and normalizes an omitted style.
func (s *Segment) UnmarshalJSON(data []byte) error {
	var raw struct {
		Text  *string `json:"text"`
		Style Style   `json:"style"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Text == nil {
		return fmt.Errorf("segment missing text")
	}
	s.Text = *raw.Text
	s.Style = raw.Style
	if s.Style == "" {
		s.Style = StyleNormal
	}
	return nil
}

// Run is an ordered sequence of styled segments.
type Run []Segment

// Plain returns a single normal segment.
func Plain(text string) Run { return Run{{Text: text, Style: StyleNormal}} }

// Italic returns a single italic segment.
func Italic(text string) Run { return Run{{Text: text, Style: StyleItalic}} }

// Sub returns a single subscript segment.
func Sub(text string) Run { return Run{{Text: text, Style: StyleSubscript}} }

// Mid returns a single middle segment.
func Mid(text string) Run { return Run{{Text: text, Style: StyleMiddle}} }

// Concat joins runs in order into a new run.
func Concat(runs ...Run) Run {
	var n int
	for _, r := range runs {
		n += len(r)
	}
	out := make(Run, 0, n)
	for _, r := range runs {
		out = append(out, r...)
	}
	return out
}

// String returns the unstyled text of the run.
func (r Run) String() string {
	var b strings.Builder
	for _, s := range r {
		b.WriteString(s.Text)
	}
	return b.String()
}

// IsEmpty reports whether the run renders no characters.
func (r Run) IsEmpty() bool {
	for _, s := range r {
		if s.Text != "" {
			return false
		}
	}
	return true
}

// Key returns a string that identifies the run's text and styles exactly.
// Two runs with the same key measure identically under any font configuration.
func (r Run) Key() string {
	var b strings.Builder
	for _, s := range r {
		style := s.Style
		if style == "" {
			style = StyleNormal
		}
		b.WriteString(string(style))
		b.WriteByte(':')
		b.WriteString(strconv.Quote(s.Text))
		b.WriteByte(';')
	}
	return b.String()
}

// Validate checks that every segment uses a known style.
func (r Run) Validate() error {
	for i, s := range r {
		if _, err := ParseStyle(string(s.Style)); err != nil {
			return fmt.Errorf("segment %d: %w", i, err)
		}
	}
	return nil
}
