package errors

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxExpressionLength bounds the expressions forwarded to the inference engine.
const MaxExpressionLength = 2000

// ValidateExpression checks a lambda expression before it is sent to the
// inference engine. Syntax is the engine's concern; this only rejects input
// that can never be a valid expression.
//
// The validation rules are intentionally conservative:
//   - No empty or whitespace-only expressions
//   - Valid UTF-8 only
//   - No control characters other than tab
//   - Maximum length of MaxExpressionLength runes
func ValidateExpression(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return New(ErrCodeInvalidExpression, "expression cannot be empty")
	}
	if !utf8.ValidString(expr) {
		return New(ErrCodeInvalidExpression, "expression is not valid UTF-8")
	}
	if n := utf8.RuneCountInString(expr); n > MaxExpressionLength {
		return New(ErrCodeInvalidExpression, "expression too long (%d runes, max %d)", n, MaxExpressionLength)
	}
	for _, r := range expr {
		if r != '\t' && unicode.IsControl(r) {
			return New(ErrCodeInvalidExpression, "expression contains invalid control characters")
		}
	}
	return nil
}

// ValidateOutputName validates a panel or artifact base name used to build
// output file names. It must be a simple name without path components.
func ValidateOutputName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "output name cannot be empty")
	}
	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return New(ErrCodeInvalidInput, "output name cannot contain path components: %q", name)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "output name contains invalid control characters")
		}
	}
	return nil
}
