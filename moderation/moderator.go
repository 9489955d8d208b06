// Package moderation censors configured words in message content before it
// is persisted. Matching is case-insensitive and ignores punctuation noise,
// so "B.a.d word" still matches "badword".
package moderation

import (
	"log/slog"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

type Moderator struct {
	matcher     *goahocorasick.Machine
	replacement rune
	log         *slog.Logger
}

// textMapping links the normalized searchable runes back to their positions
// in the original string, so censoring preserves spacing and punctuation.
type textMapping struct {
	normalized []rune
	origIdx    []int
}

// NewModerator builds the Aho-Corasick automaton over the normalized word
// list. An empty list yields a moderator that censors nothing.
func NewModerator(words []string, replacement rune, log *slog.Logger) (Moderator, error) {
	if len(words) == 0 {
		return Moderator{replacement: replacement, log: log}, nil
	}

	patterns := make([][]rune, 0, len(words))
	for _, word := range words {
		if normalized := normalize(word).normalized; len(normalized) > 0 {
			patterns = append(patterns, normalized)
		}
	}

	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return Moderator{}, err
	}
	return Moderator{matcher: machine, replacement: replacement, log: log}, nil
}

// Censor replaces every matched span with the replacement rune and returns
// the censored text together with the matched words.
func (m Moderator) Censor(original string) (string, []string) {
	if m.matcher == nil || original == "" {
		return original, nil
	}

	mapping := normalize(original)
	if len(mapping.normalized) == 0 {
		return original, nil
	}

	spans := m.matcher.MultiPatternSearch(mapping.normalized, false)
	if len(spans) == 0 {
		return original, nil
	}

	origRunes := []rune(original)
	var matched []string
	for _, span := range spans {
		start := span.Pos
		end := start + len(span.Word)
		if start < 0 || end > len(mapping.origIdx) {
			continue
		}
		matched = append(matched, string(span.Word))

		// Censor the original span, punctuation included, from the first to
		// the last matched rune.
		for i := mapping.origIdx[start]; i <= mapping.origIdx[end-1]; i++ {
			origRunes[i] = m.replacement
		}
	}

	m.log.Debug("Content censored", "matches", len(matched))
	return string(origRunes), matched
}

// normalize lowercases the input and drops punctuation, spaces and symbols,
// tracking original rune positions.
func normalize(input string) textMapping {
	origRunes := []rune(input)
	mapping := textMapping{
		normalized: make([]rune, 0, len(origRunes)),
		origIdx:    make([]int, 0, len(origRunes)),
	}
	for i, r := range origRunes {
		if unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r) {
			continue
		}
		mapping.normalized = append(mapping.normalized, unicode.ToLower(r))
		mapping.origIdx = append(mapping.origIdx, i)
	}
	return mapping
}
