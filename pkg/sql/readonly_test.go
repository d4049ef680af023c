package sql

import (
	"testing"
)

func TestIsReadOnly(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{
			name:     "plain select",
			input:    "SELECT * FROM vehicle",
			expected: true,
		},
		{
			name:     "lowercase select with whitespace",
			input:    "  select vin from vehicle",
			expected: true,
		},
		{
			name:     "with query",
			input:    "WITH counts AS (SELECT make, COUNT(*) c FROM vehicle GROUP BY make) SELECT * FROM counts",
			expected: true,
		},
		{
			name:     "delete",
			input:    "DELETE FROM vehicle",
			expected: false,
		},
		{
			name:     "update",
			input:    "UPDATE vehicle SET model_year = 2024",
			expected: false,
		},
		{
			name:     "insert",
			input:    "INSERT INTO vehicle VALUES ('x')",
			expected: false,
		},
		{
			name:     "drop",
			input:    "DROP TABLE vehicle",
			expected: false,
		},
		{
			name:     "delete hidden in CTE",
			input:    "WITH gone AS (DELETE FROM vehicle RETURNING vin) SELECT * FROM gone",
			expected: false,
		},
		{
			name:     "update hidden in CTE",
			input:    "WITH changed AS (UPDATE vehicle SET model_year = 0 RETURNING vin) SELECT * FROM changed",
			expected: false,
		},
		{
			name:     "empty input",
			input:    "",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsReadOnly(tt.input); got != tt.expected {
				t.Errorf("IsReadOnly(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
