package normurl

import (
	"errors"
	"net/url"
	"strings"
)

// ErrQueryParamNotFound is returned when a (name, index) pair does not
// resolve to an existing query parameter occurrence.
var ErrQueryParamNotFound = errors.New("query parameter index not found")

// queryParam is one "name" or "name=value" piece of a query string, kept
// in its original (percent-encoded) form. Per spec.md §4.6, only the name
// half is percent-decoded, and only for comparison purposes; values are
// carried through unmodified unless explicitly rewritten.
type queryParam struct {
	rawName  string
	rawValue string
	hasEq    bool
}

func (p queryParam) decodedName() string {
	s, err := url.QueryUnescape(p.rawName)
	if err != nil {
		return p.rawName
	}
	return s
}

func (p queryParam) decodedValue() string {
	if !p.hasEq {
		return ""
	}
	s, err := url.QueryUnescape(p.rawValue)
	if err != nil {
		return p.rawValue
	}
	return s
}

func (p queryParam) render() string {
	if !p.hasEq {
		return p.rawName
	}
	return p.rawName + "=" + p.rawValue
}

func parseQueryParams(raw string) []queryParam {
	if raw == "" {
		return nil
	}
	pieces := strings.Split(raw, "&")
	params := make([]queryParam, 0, len(pieces))
	for _, piece := range pieces {
		if idx := strings.IndexByte(piece, '='); idx >= 0 {
			params = append(params, queryParam{rawName: piece[:idx], rawValue: piece[idx+1:], hasEq: true})
		} else {
			params = append(params, queryParam{rawName: piece})
		}
	}
	return params
}

func renderQueryParams(params []queryParam) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.render()
	}
	return strings.Join(parts, "&")
}

func (n *NormUrl) queryParams() []queryParam { return parseQueryParams(n.u.RawQuery) }

// commitQuery rebuilds RawQuery from params, per spec.md §4.6: an empty
// result clears the query entirely (None), not "?" with an empty string.
func (n *NormUrl) commitQuery(params []queryParam) {
	if len(params) == 0 {
		n.u.RawQuery = ""
		n.u.ForceQuery = false
		return
	}
	n.u.RawQuery = renderQueryParams(params)
}

// Query returns the raw (still percent-encoded) query string.
func (n *NormUrl) Query() string { return n.u.RawQuery }

// SetQuery replaces the whole query string. x == nil removes the query.
func (n *NormUrl) SetQuery(x *string) error {
	if x == nil {
		return n.RemoveQuery()
	}
	n.u.RawQuery = *x
	n.u.ForceQuery = *x != ""
	return nil
}

// RemoveQuery removes the query entirely, including a bare "?".
func (n *NormUrl) RemoveQuery() error {
	n.u.RawQuery = ""
	n.u.ForceQuery = false
	return nil
}

// RemoveEmptyQuery clears a present-but-empty query (a bare trailing "?").
func (n *NormUrl) RemoveEmptyQuery() error {
	if n.u.RawQuery == "" {
		n.u.ForceQuery = false
	}
	return nil
}

// QueryHasParam reports whether any parameter decodes to name.
func (n *NormUrl) QueryHasParam(name string) bool {
	for _, p := range n.queryParams() {
		if p.decodedName() == name {
			return true
		}
	}
	return false
}

// matchingIndices returns the positions within params whose decoded name
// equals name, in order.
func matchingIndices(params []queryParam, name string) []int {
	var out []int
	for i, p := range params {
		if p.decodedName() == name {
			out = append(out, i)
		}
	}
	return out
}

// QueryParam returns the percent-decoded value of the index'th occurrence of name (a
// signed index per NegIndex semantics), and whether it was found.
func (n *NormUrl) QueryParam(name string, index int) (string, bool) {
	params := n.queryParams()
	matches := matchingIndices(params, name)
	idx, ok := NegIndex(index, len(matches))
	if !ok {
		return "", false
	}
	return params[matches[idx]].decodedValue(), true
}

// SetQueryParam sets the value of the index'th occurrence of name. A nil
// value removes that occurrence.
func (n *NormUrl) SetQueryParam(name string, index int, value *string) error {
	params := n.queryParams()
	matches := matchingIndices(params, name)
	idx, ok := NegIndex(index, len(matches))
	if !ok {
		return ErrQueryParamNotFound
	}
	pos := matches[idx]
	if value == nil {
		params = append(params[:pos], params[pos+1:]...)
	} else {
		params[pos] = queryParam{rawName: params[pos].rawName, rawValue: url.QueryEscape(*value), hasEq: true}
	}
	n.commitQuery(params)
	return nil
}

// RenameQueryParam renames every occurrence of from to to.
func (n *NormUrl) RenameQueryParam(from, to string) error {
	params := n.queryParams()
	encodedTo := url.QueryEscape(to)
	changed := false
	for i, p := range params {
		if p.decodedName() == from {
			params[i].rawName = encodedTo
			changed = true
		}
	}
	if changed {
		n.commitQuery(params)
	}
	return nil
}

// RemoveQueryParam removes every occurrence of name.
func (n *NormUrl) RemoveQueryParam(name string) error {
	return n.RemoveQueryParamsMatching(func(s string) bool { return s == name })
}

// AllowQueryParam keeps only occurrences of name, removing every other
// parameter.
func (n *NormUrl) AllowQueryParam(name string) error {
	return n.AllowQueryParamsMatching(func(s string) bool { return s == name })
}

// RemoveQueryParams removes every parameter whose decoded name is in names.
func (n *NormUrl) RemoveQueryParams(names map[string]struct{}) error {
	return n.RemoveQueryParamsMatching(func(s string) bool { _, ok := names[s]; return ok })
}

// AllowQueryParams keeps only parameters whose decoded name is in names.
func (n *NormUrl) AllowQueryParams(names map[string]struct{}) error {
	return n.AllowQueryParamsMatching(func(s string) bool { _, ok := names[s]; return ok })
}

// RemoveQueryParamsMatching removes every parameter whose decoded name
// satisfies match.
func (n *NormUrl) RemoveQueryParamsMatching(match func(decodedName string) bool) error {
	params := n.queryParams()
	kept := params[:0:0]
	for _, p := range params {
		if !match(p.decodedName()) {
			kept = append(kept, p)
		}
	}
	n.commitQuery(kept)
	return nil
}

// AllowQueryParamsMatching keeps only parameters whose decoded name
// satisfies match.
func (n *NormUrl) AllowQueryParamsMatching(match func(decodedName string) bool) error {
	params := n.queryParams()
	kept := params[:0:0]
	for _, p := range params {
		if match(p.decodedName()) {
			kept = append(kept, p)
		}
	}
	n.commitQuery(kept)
	return nil
}

// GetUrlFromQueryParam parses the (0th occurrence's) value of name as a
// URL in its own right, e.g. for unwrapping redirect/tracking links.
func (n *NormUrl) GetUrlFromQueryParam(name string) (*NormUrl, error) {
	v, ok := n.QueryParam(name, 0)
	if !ok {
		return nil, ErrQueryParamNotFound
	}
	return Parse(v)
}
