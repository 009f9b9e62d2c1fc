// Package moderation masks forbidden words in private messages before they
// reach the state actor.
package moderation

import (
	"log/slog"
	"private-chat/errors"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/samber/lo"
)

// Moderator is immutable once built and safe for concurrent use by every
// connection goroutine.
type Moderator struct {
	machine  *goahocorasick.Machine
	maskChar rune
	log      *slog.Logger
}

// folded keeps, for every rune of the searchable text, its index in the
// original message so that matches can be masked in place.
type folded struct {
	runes   []rune
	indexes []int
}

// NewModerator builds the automaton from the words that survive folding.
// Words made only of punctuation or spaces are ignored.
func NewModerator(words []string, maskChar rune, log *slog.Logger) (*Moderator, error) {
	patterns := lo.FilterMap(words, func(word string, _ int) ([]rune, bool) {
		runes := fold(word).runes
		return runes, len(runes) > 0
	})
	if len(patterns) == 0 {
		return nil, errors.ErrEmptyWords
	}

	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return nil, err
	}
	log.Debug("Moderation automaton built", "patterns", len(patterns))
	return &Moderator{machine: machine, maskChar: maskChar, log: log}, nil
}

// Censor returns the content with every match masked, spacing preserved,
// and the list of matched words in order of appearance.
func (m *Moderator) Censor(content string) (string, []string) {
	text := fold(content)
	if len(text.runes) == 0 {
		return content, nil
	}
	terms := m.machine.MultiPatternSearch(text.runes, false)
	if len(terms) == 0 {
		return content, nil
	}

	masked := []rune(content)
	var matched []string
	for _, term := range terms {
		start, end := term.Pos, term.Pos+len(term.Word)
		if start < 0 || end > len(text.indexes) {
			continue
		}
		for i := text.indexes[start]; i <= text.indexes[end-1]; i++ {
			masked[i] = m.maskChar
		}
		matched = append(matched, string(term.Word))
	}
	if len(matched) > 0 {
		m.log.Debug("Content censored", "words", len(matched))
	}
	return string(masked), matched
}

func fold(input string) folded {
	original := []rune(input)
	out := folded{
		runes:   make([]rune, 0, len(original)),
		indexes: make([]int, 0, len(original)),
	}
	for i, r := range original {
		r = unleet(r)
		if unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r) {
			continue
		}
		out.runes = append(out.runes, unicode.ToLower(r))
		out.indexes = append(out.indexes, i)
	}
	return out
}

// unleet maps common substitutions back to the letter they stand for.
func unleet(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}
