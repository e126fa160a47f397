package engine

import (
	"fmt"
	"strings"
	"unicode"
)

// CharMatcher is a predicate over a single rune, used by StringMatcher and
// StringModification leaves that need to classify individual characters
// (trim cutsets, keep/remove-while-matching, digit-radix checks), per
// spec.md §4.5.
type CharMatcher struct {
	Kind string `json:"kind"`

	Not *CharMatcher  `json:"not,omitempty"`
	All []CharMatcher `json:"all,omitempty"`
	Any []CharMatcher `json:"any,omitempty"`

	Radix int    `json:"radix,omitempty"` // IsDigitRadix's base, 2..36
	Char  rune   `json:"char,omitempty"`  // Is
	Chars string `json:"chars,omitempty"` // OneOf
}

// Matches reports whether r satisfies the matcher. IsDigitRadix with a
// radix above 36 (the largest base Go's strconv/unicode digit tables
// support) is a configuration error, not a false result.
func (m *CharMatcher) Matches(r rune) (bool, error) {
	op := "CharMatcher." + m.Kind
	switch m.Kind {
	case "Always":
		return true, nil
	case "Never":
		return false, nil
	case "Not":
		ok, err := m.Not.Matches(r)
		if err != nil {
			return false, err
		}
		return !ok, nil
	case "All":
		for i := range m.All {
			ok, err := m.All[i].Matches(r)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	case "Any":
		for i := range m.Any {
			ok, err := m.Any[i].Matches(r)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case "IsAlpha":
		return unicode.IsLetter(r), nil
	case "IsDigit":
		return unicode.IsDigit(r), nil
	case "IsDigitRadix":
		if m.Radix < 2 || m.Radix > 36 {
			return false, newErr(KindConfiguration, op, fmt.Errorf("radix %d out of range [2,36]", m.Radix))
		}
		return digitValue(r) < m.Radix, nil
	case "IsAlphanumeric":
		return unicode.IsLetter(r) || unicode.IsDigit(r), nil
	case "IsWhitespace":
		return unicode.IsSpace(r), nil
	case "IsUpper":
		return unicode.IsUpper(r), nil
	case "IsLower":
		return unicode.IsLower(r), nil
	case "Is":
		return r == m.Char, nil
	case "OneOf":
		return strings.ContainsRune(m.Chars, r), nil
	default:
		return false, newErr(KindConfiguration, op, fmt.Errorf("unknown CharMatcher kind %q", m.Kind))
	}
}

// digitValue returns r's value as a base-36 digit, or 36 if r is not one
// (so callers comparing against a radix in [2,36] always get a clean
// less-than test).
func digitValue(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'a' && r <= 'z':
		return int(r-'a') + 10
	case r >= 'A' && r <= 'Z':
		return int(r-'A') + 10
	default:
		return 36
	}
}
