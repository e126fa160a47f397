package engine

import (
	"fmt"

	"github.com/tariktz/urlcleaner/internal/normurl"
)

// StringLocation resolves to a single byte offset within a string (in
// [0, len(s)]), used by StringMatcher.CharAt and StringModification.InsertAt
// to address a position without the caller having to compute rune offsets
// by hand, per spec.md §4.5.
type StringLocation struct {
	Kind string `json:"kind"`

	Index   int          `json:"index,omitempty"`   // Start/End-relative signed offset, via NegIndex semantics
	Matcher *CharMatcher `json:"matcher,omitempty"` // First/Last: first/last rune satisfying Matcher
}

// Resolve returns the byte offset StringLocation names within s, and false
// if it does not resolve (e.g. Index out of range, or no rune satisfies
// First/Last's Matcher).
func (l *StringLocation) Resolve(s string) (int, bool, error) {
	runes := []rune(s)
	n := len(runes)
	op := "StringLocation." + l.Kind
	switch l.Kind {
	case "Start":
		return 0, true, nil
	case "End":
		return len(s), true, nil
	case "Index":
		i, ok := normurl.NegIndex(l.Index, n)
		if !ok {
			return 0, false, nil
		}
		return runeOffsetToByteOffset(runes, i), true, nil
	case "First":
		for i, r := range runes {
			ok, err := l.Matcher.Matches(r)
			if err != nil {
				return 0, false, err
			}
			if ok {
				return runeOffsetToByteOffset(runes, i), true, nil
			}
		}
		return 0, false, nil
	case "Last":
		for i := n - 1; i >= 0; i-- {
			ok, err := l.Matcher.Matches(runes[i])
			if err != nil {
				return 0, false, err
			}
			if ok {
				return runeOffsetToByteOffset(runes, i), true, nil
			}
		}
		return 0, false, nil
	default:
		return 0, false, newErr(KindConfiguration, op, fmt.Errorf("unknown StringLocation kind %q", l.Kind))
	}
}

func runeOffsetToByteOffset(runes []rune, i int) int {
	n := 0
	for _, r := range runes[:i] {
		n += len(string(r))
	}
	return n
}
