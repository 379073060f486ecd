package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "removes duplicates preserving first occurrence order",
			input: []string{"alice", "bob", "alice", "carol", "bob"},
			want:  []string{"alice", "bob", "carol"},
		},
		{
			name:  "trims whitespace before comparing",
			input: []string{"  alice ", "alice", "\tbob"},
			want:  []string{"alice", "bob"},
		},
		{
			name:  "drops empty and whitespace-only entries",
			input: []string{"", "   ", "alice", ""},
			want:  []string{"alice"},
		},
		{
			name:  "nil stays nil",
			input: nil,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupeAndTrim(tt.input))
		})
	}
}
