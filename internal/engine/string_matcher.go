package engine

import (
	"fmt"
	"regexp"
	"strings"
)

// StringMatcher is a predicate over a whole string, per spec.md §4.5. Like
// StringSource it is one tagged-union struct rather than many interface
// implementations, for the same reasons (see DESIGN.md and
// string_source.go's doc comment).
type StringMatcher struct {
	Kind string `json:"kind"`

	Not     *StringMatcher        `json:"not,omitempty"` // also the wrapped matcher for ErrorToSatisfied/ErrorToUnsatisfied
	All     []StringMatcher       `json:"all,omitempty"`
	Any     []StringMatcher       `json:"any,omitempty"`
	If      *StringMatcherIf      `json:"if,omitempty"`
	TryElse *StringMatcherTryElse `json:"try_else,omitempty"`

	FirstNotError []StringMatcher `json:"first_not_error,omitempty"`

	Equals        string `json:"equals,omitempty"`
	CaseSensitive bool   `json:"case_sensitive,omitempty"` // used by Equals/Contains/StartsWith/EndsWith
	Regex         string `json:"regex,omitempty"`
	compiled      *regexp.Regexp
	Contains      string `json:"contains,omitempty"`
	StartsWith    string `json:"starts_with,omitempty"`
	EndsWith      string `json:"ends_with,omitempty"`

	CharAt *CharAtArgs `json:"char_at,omitempty"`
}

type StringMatcherIf struct {
	Cond *StringMatcher `json:"cond"`
	Then *StringMatcher `json:"then"`
	Else *StringMatcher `json:"else"`
}

type StringMatcherTryElse struct {
	Try  *StringMatcher `json:"try"`
	Else *StringMatcher `json:"else"`
}

// CharAtArgs is StringMatcher.CharAt's payload: true iff the rune at
// Location satisfies Matcher (false, not an error, if Location does not
// resolve within the string).
type CharAtArgs struct {
	Location *StringLocation `json:"location"`
	Matcher  *CharMatcher    `json:"matcher"`
}

// Matches evaluates the matcher against s.
func (m *StringMatcher) Matches(ts *TaskState, s string) (bool, error) {
	op := "StringMatcher." + m.Kind
	switch m.Kind {
	case "Always":
		return true, nil
	case "Never":
		return false, nil
	case "Not":
		ok, err := m.Not.Matches(ts, s)
		if err != nil {
			return false, err
		}
		return !ok, nil
	case "All":
		for i := range m.All {
			ok, err := m.All[i].Matches(ts, s)
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
			ok, err := m.Any[i].Matches(ts, s)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case "If":
		ok, err := m.If.Cond.Matches(ts, s)
		if err != nil {
			return false, err
		}
		if ok {
			return m.If.Then.Matches(ts, s)
		}
		return m.If.Else.Matches(ts, s)
	case "TryElse":
		ok, err1 := m.TryElse.Try.Matches(ts, s)
		if err1 == nil {
			return ok, nil
		}
		ok, err2 := m.TryElse.Else.Matches(ts, s)
		if err2 != nil {
			return false, &TryElseError{First: err1, Second: err2}
		}
		return ok, nil
	case "FirstNotError":
		var errs []error
		for i := range m.FirstNotError {
			ok, err := m.FirstNotError[i].Matches(ts, s)
			if err == nil {
				return ok, nil
			}
			errs = append(errs, err)
		}
		return false, &FirstNotErrorError{Errs: errs}
	case "ErrorToSatisfied":
		ok, err := m.Not.Matches(ts, s)
		if err != nil {
			return true, nil
		}
		return ok, nil
	case "ErrorToUnsatisfied":
		ok, err := m.Not.Matches(ts, s)
		if err != nil {
			return false, nil
		}
		return ok, nil
	case "Equals":
		if m.CaseSensitive {
			return s == m.Equals, nil
		}
		return strings.EqualFold(s, m.Equals), nil
	case "Regex":
		re, err := m.compiledRegex()
		if err != nil {
			return false, newErr(KindConfiguration, op, err)
		}
		return re.MatchString(s), nil
	case "Contains":
		if m.CaseSensitive {
			return strings.Contains(s, m.Contains), nil
		}
		return strings.Contains(strings.ToLower(s), strings.ToLower(m.Contains)), nil
	case "StartsWith":
		if m.CaseSensitive {
			return strings.HasPrefix(s, m.StartsWith), nil
		}
		return strings.HasPrefix(strings.ToLower(s), strings.ToLower(m.StartsWith)), nil
	case "EndsWith":
		if m.CaseSensitive {
			return strings.HasSuffix(s, m.EndsWith), nil
		}
		return strings.HasSuffix(strings.ToLower(s), strings.ToLower(m.EndsWith)), nil
	case "CharAt":
		off, ok, err := m.CharAt.Location.Resolve(s)
		if err != nil {
			return false, err
		}
		if !ok || off >= len(s) {
			return false, nil
		}
		r := []rune(s[off:])[0]
		return m.CharAt.Matcher.Matches(r)
	default:
		return false, newErr(KindConfiguration, op, fmt.Errorf("unknown StringMatcher kind %q", m.Kind))
	}
}

// compiledRegex lazily compiles and caches Regex. StringMatcher values are
// built once from a parsed Cleaner document and then evaluated many times
// (once per task that reaches this matcher), so caching here avoids
// recompiling the same pattern on every task.
func (m *StringMatcher) compiledRegex() (*regexp.Regexp, error) {
	if m.compiled != nil {
		return m.compiled, nil
	}
	re, err := regexp.Compile(m.Regex)
	if err != nil {
		return nil, err
	}
	m.compiled = re
	return re, nil
}
