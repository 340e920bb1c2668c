package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "nil slice",
			input:    nil,
			expected: nil,
		},
		{
			name:     "empty slice",
			input:    []string{},
			expected: []string{},
		},
		{
			name:     "single element",
			input:    []string{"foo"},
			expected: []string{"foo"},
		},
		{
			name:     "trims whitespace",
			input:    []string{"  foo  ", "bar  ", "  baz"},
			expected: []string{"foo", "bar", "baz"},
		},
		{
			name:     "removes duplicates preserving order",
			input:    []string{"foo", "bar", "foo", "baz", "bar"},
			expected: []string{"foo", "bar", "baz"},
		},
		{
			name:     "removes empty strings",
			input:    []string{"foo", "", "  ", "bar"},
			expected: []string{"foo", "bar"},
		},
		{
			name:     "combined: trim, dedupe, remove empty",
			input:    []string{"  foo ", "bar", "foo", "", "  ", "bar"},
			expected: []string{"foo", "bar"},
		},
		{
			name:     "preserves case",
			input:    []string{"Foo", "foo", "FOO"},
			expected: []string{"Foo", "foo", "FOO"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DedupeAndTrim(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "nil input",
			input:    nil,
			expected: nil,
		},
		{
			name:     "comma list",
			input:    []string{"F, M"},
			expected: []string{"F", "M"},
		},
		{
			name:     "repeated values merge",
			input:    []string{"F,M", "F", " M "},
			expected: []string{"F", "M"},
		},
		{
			name:     "empty parts dropped",
			input:    []string{",,F,", ""},
			expected: []string{"F"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitList(tt.input))
		})
	}
}
