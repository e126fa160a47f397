package normurl

import "strings"

// Path operations treat the URL path as a "/"-delimited sequence of
// segments, per spec.md §4.1. The leading "/" of an absolute path is not
// itself a segment: "/a/b/c" has segments ["a", "b", "c"]; a trailing "/"
// produces a trailing empty segment, matching how browsers and the URL
// spec treat paths.

func pathSegments(path string) []string {
	return strings.Split(strings.TrimPrefix(path, "/"), "/")
}

func joinPathSegments(segs []string) string {
	return "/" + strings.Join(segs, "/")
}

func containsSlash(s string) bool { return strings.Contains(s, "/") }

// PathSegment returns the segment at signed index i, or ("", false) if out
// of bounds.
func (n *NormUrl) PathSegment(i int) (string, bool) {
	segs := pathSegments(n.u.EscapedPath())
	idx, ok := NegIndex(i, len(segs))
	if !ok {
		return "", false
	}
	return segs[idx], true
}

func (n *NormUrl) setPath(newPath string) {
	n.u.Path = newPath
	n.u.RawPath = ""
}

// SetPathSegment sets the segment at index i to value (or removes it, if
// value is nil). Rejects a value containing "/"; use SetPathSegmentRaw to
// bypass that check.
func (n *NormUrl) SetPathSegment(i int, value *string) error {
	if value != nil && containsSlash(*value) {
		return ErrPathSegmentCannotContainSlash
	}
	return n.SetPathSegmentRaw(i, value)
}

// SetPathSegmentRaw is SetPathSegment without the slash-containment check.
func (n *NormUrl) SetPathSegmentRaw(i int, value *string) error {
	segs := pathSegments(n.u.EscapedPath())
	out, ok, err := SetSegment(strings.Join(segs, "/"), i, value, '/')
	if err != nil {
		return err
	}
	if !ok {
		return ErrEmptyPath
	}
	n.setPath("/" + out)
	return nil
}

// InsertPathSegmentAt inserts value as a new segment at index i.
func (n *NormUrl) InsertPathSegmentAt(i int, value string) error {
	if containsSlash(value) {
		return ErrPathSegmentCannotContainSlash
	}
	return n.InsertPathSegmentAtRaw(i, value)
}

// InsertPathSegmentAtRaw is InsertPathSegmentAt without the slash check.
func (n *NormUrl) InsertPathSegmentAtRaw(i int, value string) error {
	segs := pathSegments(n.u.EscapedPath())
	out, err := InsertSegmentAt(strings.Join(segs, "/"), i, value, '/')
	if err != nil {
		return err
	}
	n.setPath("/" + out)
	return nil
}

// InsertPathSegmentAfter inserts value immediately after segment i, a
// signed index per NegIndex (-1 is the last segment).
func (n *NormUrl) InsertPathSegmentAfter(i int, value string) error {
	idx, ok := NegIndex(i, len(pathSegments(n.u.EscapedPath())))
	if !ok {
		return ErrSegmentNotFound
	}
	return n.InsertPathSegmentAt(idx+1, value)
}

// InsertPathSegmentAfterRaw is InsertPathSegmentAfter without the slash
// check.
func (n *NormUrl) InsertPathSegmentAfterRaw(i int, value string) error {
	idx, ok := NegIndex(i, len(pathSegments(n.u.EscapedPath())))
	if !ok {
		return ErrSegmentNotFound
	}
	return n.InsertPathSegmentAtRaw(idx+1, value)
}

// RemoveFirstNPathSegments removes the first n path segments.
func (n *NormUrl) RemoveFirstNPathSegments(nseg int) error {
	segs := pathSegments(n.u.EscapedPath())
	out, ok := CharRemoveFirstN(strings.Join(segs, "/"), '/', nseg)
	if !ok {
		return ErrEmptyPath
	}
	n.setPath("/" + out)
	return nil
}

// KeepFirstNPathSegments keeps only the first n path segments.
func (n *NormUrl) KeepFirstNPathSegments(nseg int) error {
	segs := pathSegments(n.u.EscapedPath())
	out, ok := CharKeepFirstN(strings.Join(segs, "/"), '/', nseg)
	if !ok {
		return ErrEmptyPath
	}
	n.setPath("/" + out)
	return nil
}

// RemoveLastNPathSegments removes the last n path segments.
func (n *NormUrl) RemoveLastNPathSegments(nseg int) error {
	segs := pathSegments(n.u.EscapedPath())
	out, ok := CharRemoveLastN(strings.Join(segs, "/"), '/', nseg)
	if !ok {
		return ErrEmptyPath
	}
	n.setPath("/" + out)
	return nil
}

// KeepLastNPathSegments keeps only the last n path segments.
func (n *NormUrl) KeepLastNPathSegments(nseg int) error {
	segs := pathSegments(n.u.EscapedPath())
	out, ok := CharKeepLastN(strings.Join(segs, "/"), '/', nseg)
	if !ok {
		return ErrEmptyPath
	}
	n.setPath("/" + out)
	return nil
}

// SetFirstNPathSegments replaces the first n segments with to.
func (n *NormUrl) SetFirstNPathSegments(nseg int, to []string) error {
	segs := pathSegments(n.u.EscapedPath())
	if nseg > len(segs) {
		return ErrEmptyPath
	}
	out := append(append([]string{}, to...), segs[nseg:]...)
	if len(out) == 0 {
		return ErrEmptyPath
	}
	n.setPath(joinPathSegments(out))
	return nil
}

// SetPathSegmentsAfterFirstN replaces everything after the first n segments
// with to.
func (n *NormUrl) SetPathSegmentsAfterFirstN(nseg int, to []string) error {
	segs := pathSegments(n.u.EscapedPath())
	if nseg > len(segs) {
		return ErrEmptyPath
	}
	out := append(append([]string{}, segs[:nseg]...), to...)
	if len(out) == 0 {
		return ErrEmptyPath
	}
	n.setPath(joinPathSegments(out))
	return nil
}

// SetLastNPathSegments replaces the last n segments with to.
func (n *NormUrl) SetLastNPathSegments(nseg int, to []string) error {
	segs := pathSegments(n.u.EscapedPath())
	if nseg > len(segs) {
		return ErrEmptyPath
	}
	out := append(append([]string{}, segs[:len(segs)-nseg]...), to...)
	if len(out) == 0 {
		return ErrEmptyPath
	}
	n.setPath(joinPathSegments(out))
	return nil
}

// SetPathSegmentsBeforeLastN replaces everything before the last n
// segments with to.
func (n *NormUrl) SetPathSegmentsBeforeLastN(nseg int, to []string) error {
	segs := pathSegments(n.u.EscapedPath())
	if nseg > len(segs) {
		return ErrEmptyPath
	}
	out := append(append([]string{}, to...), segs[len(segs)-nseg:]...)
	if len(out) == 0 {
		return ErrEmptyPath
	}
	n.setPath(joinPathSegments(out))
	return nil
}

// Path returns the URL's escaped path.
func (n *NormUrl) Path() string { return n.u.EscapedPath() }

// SetPath replaces the whole path.
func (n *NormUrl) SetPath(p string) error {
	n.setPath(p)
	return nil
}

// RemoveEmptyLastPathSegment removes a trailing "/" (an empty final
// segment), if present. It is a no-op otherwise.
func (n *NormUrl) RemoveEmptyLastPathSegment() error {
	p := n.u.EscapedPath()
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		n.setPath(strings.TrimSuffix(p, "/"))
	}
	return nil
}
