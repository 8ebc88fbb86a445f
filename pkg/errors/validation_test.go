package errors

import (
	"strings"
	"testing"
)

func TestValidateExpression(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"identity", "λx.x", false},
		{"application", "(λx.x) 1", false},
		{"arithmetic", "1+2*3-4", false},
		{"tab allowed", "λx.\tx", false},

		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"newline", "λx.\nx", true},
		{"null byte", "x\x00", true},
		{"invalid utf8", "\xff\xfe", true},
		{"too long", strings.Repeat("x", MaxExpressionLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateExpression(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateExpression(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidExpression) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidExpression)
			}
		})
	}
}

func TestValidateOutputName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"panel", "inference", false},
		{"with dash", "expr-1", false},

		{"empty", "", true},
		{"slash", "a/b", true},
		{"backslash", "a\\b", true},
		{"traversal", "..", true},
		{"control", "a\x01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOutputName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
