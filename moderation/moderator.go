package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Moderator masks configured words in user messages before they reach a
// room log. A nil *Moderator is valid and leaves content untouched.
type Moderator struct {
	matcher *goahocorasick.Machine
	mask    rune
}

// NewModerator builds the Aho-Corasick automaton over the lowercased
// word list. An empty list returns nil: moderation disabled.
func NewModerator(words []string, mask rune) (*Moderator, error) {
	if len(words) == 0 {
		return nil, nil
	}
	patterns := make([][]rune, len(words))
	for i, word := range words {
		patterns[i] = lower([]rune(word))
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: m, mask: mask}, nil
}

// Censor replaces every matched word with the mask character.
// Matching is case-insensitive; rune positions are preserved so the
// surrounding text is untouched.
func (m *Moderator) Censor(content string) string {
	if m == nil || content == "" {
		return content
	}

	runes := []rune(content)
	spans := m.matcher.MultiPatternSearch(lower(runes), false)
	if len(spans) == 0 {
		return content
	}

	for _, span := range spans {
		end := span.Pos + len(span.Word)
		if span.Pos < 0 || end > len(runes) {
			continue
		}
		for i := span.Pos; i < end; i++ {
			runes[i] = m.mask
		}
	}
	return string(runes)
}

func lower(in []rune) []rune {
	out := make([]rune, len(in))
	for i, r := range in {
		out[i] = unicode.ToLower(r)
	}
	return out
}
