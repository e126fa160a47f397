// Package normurl provides NormUrl, a URL value type that augments the
// standard library's net/url parsing with Public Suffix List-aware host
// decomposition and segment-level path/query/domain manipulation.
package normurl

import (
	"errors"
	"strings"
)

// ErrSegmentNotFound is returned when a signed segment index does not
// resolve to a valid position in a delimited string.
var ErrSegmentNotFound = errors.New("segment index not found")

// NegIndex resolves a signed index against a collection of length n.
//
// Non-negative indices map directly when i < n. Negative indices count
// from the end: -1 is the last element. Out-of-bounds indices resolve to
// (-1, false).
func NegIndex(i, n int) (int, bool) {
	if i >= 0 {
		if i < n {
			return i, true
		}
		return -1, false
	}
	resolved := n + i
	if resolved >= 0 {
		return resolved, true
	}
	return -1, false
}

// NegIndexInsert is like NegIndex but also accepts the boundary index n
// itself (append position), since inserting at the end of a sequence of
// length n is always valid.
func NegIndexInsert(i, n int) (int, bool) {
	if i >= 0 {
		if i <= n {
			return i, true
		}
		return -1, false
	}
	resolved := n + i + 1
	if resolved >= 0 && resolved <= n {
		return resolved, true
	}
	return -1, false
}

// SetSegment sets the segment at the signed index i of part (split by
// sep) to value, or removes that segment entirely when value is nil.
// Returns the rejoined string, or ("", false) if the whole string would
// become empty (all segments removed).
func SetSegment(part string, i int, value *string, sep byte) (string, bool, error) {
	segs := strings.Split(part, string(sep))
	idx, ok := NegIndex(i, len(segs))
	if !ok {
		return "", false, ErrSegmentNotFound
	}
	if value != nil {
		segs[idx] = *value
	} else {
		segs = append(segs[:idx], segs[idx+1:]...)
	}
	if len(segs) == 0 {
		return "", false, nil
	}
	return strings.Join(segs, string(sep)), true, nil
}

// InsertSegmentAt inserts value as a new segment of part (split by sep) at
// the signed index i. The boundary index len(segments) is valid and
// appends.
func InsertSegmentAt(part string, i int, value string, sep byte) (string, error) {
	segs := strings.Split(part, string(sep))
	idx, ok := NegIndexInsert(i, len(segs))
	if !ok {
		return "", ErrSegmentNotFound
	}
	out := make([]string, 0, len(segs)+1)
	out = append(out, segs[:idx]...)
	out = append(out, value)
	out = append(out, segs[idx:]...)
	return strings.Join(out, string(sep)), nil
}

// InsertSegmentAfter inserts value immediately after the segment at the
// signed index i; equivalent to InsertSegmentAt(part, i+1, value, sep)
// with identical bounds semantics.
func InsertSegmentAfter(part string, i int, value string, sep byte) (string, error) {
	return InsertSegmentAt(part, i+1, value, sep)
}

// CharRemoveFirstN returns part with its first n segments (split by sep)
// removed. Returns ("", false) if there are fewer than n segments total
// (n == segment count is allowed and yields "").
func CharRemoveFirstN(part string, sep byte, n int) (string, bool) {
	segs := strings.Split(part, string(sep))
	if n > len(segs) {
		return "", false
	}
	return strings.Join(segs[n:], string(sep)), true
}

// CharKeepFirstN returns part with only its first n segments (split by
// sep) kept. n == 0 is rejected (a path must always have at least one
// segment after a keep/remove operation).
func CharKeepFirstN(part string, sep byte, n int) (string, bool) {
	if n == 0 {
		return "", false
	}
	segs := strings.Split(part, string(sep))
	if n > len(segs) {
		return "", false
	}
	return strings.Join(segs[:n], string(sep)), true
}

// CharRemoveLastN returns part with its last n segments (split by sep)
// removed.
func CharRemoveLastN(part string, sep byte, n int) (string, bool) {
	segs := strings.Split(part, string(sep))
	if n > len(segs) {
		return "", false
	}
	return strings.Join(segs[:len(segs)-n], string(sep)), true
}

// CharKeepLastN returns part with only its last n segments (split by sep)
// kept. n == 0 is rejected.
func CharKeepLastN(part string, sep byte, n int) (string, bool) {
	if n == 0 {
		return "", false
	}
	segs := strings.Split(part, string(sep))
	if n > len(segs) {
		return "", false
	}
	return strings.Join(segs[len(segs)-n:], string(sep)), true
}
