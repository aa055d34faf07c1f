package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const replacementChar = '*'

func TestModerator_Censor(t *testing.T) {
	req := require.New(t)
	dictionary := []string{"badger", "snake", "mushroom"}
	mod, err := NewModerator(dictionary, replacementChar)
	req.NoError(err)
	req.NotNil(mod)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Simple word and space preservation",
			input:    "The badger is here",
			expected: "The ****** is here",
		},
		{
			name:     "Multiple occurrences and preserved spacing",
			input:    "badger badger badger",
			expected: "****** ****** ******",
		},
		{
			name:     "Case insensitive match",
			input:    "A BADGER and a Snake",
			expected: "A ****** and a *****",
		},
		{
			name:     "Word inside surrounding text",
			input:    "mushroomsoup",
			expected: "********soup",
		},
		{
			name:     "Accented text around a match (UTF-8)",
			input:    "Un été avec un badger",
			expected: "Un été avec un ******",
		},
		{
			name:     "No match leaves content untouched",
			input:    "nothing to see here",
			expected: "nothing to see here",
		},
		{
			name:     "Empty content",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, mod.Censor(tt.input))
		})
	}
}

func TestModerator_EmptyDictionaryDisablesModeration(t *testing.T) {
	req := require.New(t)

	mod, err := NewModerator(nil, replacementChar)

	req.NoError(err)
	req.Nil(mod)
	// A nil moderator passes content through
	req.Equal("anything goes", mod.Censor("anything goes"))
}
