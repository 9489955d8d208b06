package moderation

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

const replacementChar = '*'

// The dictionary uses specific words to avoid partial collisions
// (e.g., "he" inside "The").
func TestModerator_Censor(t *testing.T) {
	req := require.New(t)
	dictionary := []string{"badger", "snake", "mushroom"}
	mod, err := NewModerator(dictionary, replacementChar, slog.Default())
	req.NoError(err)

	tests := []struct {
		name     string
		input    string
		expected string
		words    []string
	}{
		{
			name:     "Simple word and space preservation",
			input:    "The badger is here",
			expected: "The ****** is here",
			words:    []string{"badger"},
		},
		{
			name:     "Multiple occurrences",
			input:    "badger badger badger",
			expected: "****** ****** ******",
			words:    []string{"badger", "badger", "badger"},
		},
		{
			name:     "Internal punctuation",
			input:    "Look at B.a.d.g.e.r !",
			expected: "Look at *********** !",
			words:    []string{"badger"},
		},
		{
			name:     "Uppercase",
			input:    "SNAKE is not a BADGER",
			expected: "***** is not a ******",
			words:    []string{"snake", "badger"},
		},
		{
			name:     "Word adjacent to trailing punctuation",
			input:    "I love badger!",
			expected: "I love ******!",
			words:    []string{"badger"},
		},
		{
			name:     "Nothing to censor",
			input:    "slack-chat is amazing",
			expected: "slack-chat is amazing",
			words:    nil,
		},
		{
			name:     "Empty string",
			input:    "",
			expected: "",
			words:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := require.New(t)
			censored, words := mod.Censor(tt.input)
			r.Equal(tt.expected, censored)
			r.Equal(tt.words, words)
		})
	}
}

func TestModerator_EmptyDictionary(t *testing.T) {
	req := require.New(t)
	mod, err := NewModerator(nil, replacementChar, slog.Default())
	req.NoError(err)

	censored, words := mod.Censor("anything goes")
	req.Equal("anything goes", censored)
	req.Empty(words)
}
