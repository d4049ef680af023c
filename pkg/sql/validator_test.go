package sql

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple select without semicolon",
			input:    "SELECT 1",
			expected: "SELECT 1",
		},
		{
			name:     "simple select with trailing semicolon",
			input:    "SELECT 1;",
			expected: "SELECT 1",
		},
		{
			name:     "trailing semicolon and whitespace",
			input:    "SELECT 1;  ",
			expected: "SELECT 1",
		},
		{
			name:     "leading and trailing whitespace",
			input:    "  SELECT * FROM vehicle  ",
			expected: "SELECT * FROM vehicle",
		},
		{
			name:     "only first trailing semicolon stripped",
			input:    "SELECT 1;;",
			expected: "SELECT 1;",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFirstStatement(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "no semicolon returns whole input",
			input:    "SELECT * FROM vehicle",
			expected: "SELECT * FROM vehicle",
		},
		{
			name:     "cut at first statement boundary",
			input:    "SELECT 1; DROP TABLE vehicle",
			expected: "SELECT 1",
		},
		{
			name:     "semicolon inside single quoted string kept",
			input:    "SELECT * FROM vehicle WHERE vin = 'a;b'",
			expected: "SELECT * FROM vehicle WHERE vin = 'a;b'",
		},
		{
			name:     "semicolon inside double quoted identifier kept",
			input:    `SELECT * FROM "odd;name"`,
			expected: `SELECT * FROM "odd;name"`,
		},
		{
			name:     "SQL standard escaped quote",
			input:    "SELECT * FROM model WHERE make = 'O''Brien'; SELECT 2",
			expected: "SELECT * FROM model WHERE make = 'O''Brien'",
		},
		{
			name:     "literal ending in backslash does not hide the boundary",
			input:    `SELECT * FROM model WHERE make = 'a\'; DROP TABLE vehicle`,
			expected: `SELECT * FROM model WHERE make = 'a\'`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FirstStatement(tt.input); got != tt.expected {
				t.Errorf("FirstStatement(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
