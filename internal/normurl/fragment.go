package normurl

import "net/url"

// Fragment operations mirror the query operations above: spec.md §4.6
// notes that RemoveUTPs filters both query and fragment parameters using
// the same name=value, "&"-joined parsing, so fragments reuse queryParam.

func (n *NormUrl) fragmentParams() []queryParam { return parseQueryParams(n.u.EscapedFragment()) }

func (n *NormUrl) commitFragment(params []queryParam) {
	n.setFragmentRaw(renderQueryParams(params))
}

func (n *NormUrl) setFragmentRaw(s string) {
	n.u.RawFragment = s
	if decoded, err := url.QueryUnescape(s); err == nil {
		n.u.Fragment = decoded
	} else {
		n.u.Fragment = s
	}
}

// Fragment returns the raw (percent-encoded) fragment.
func (n *NormUrl) Fragment() string { return n.u.EscapedFragment() }

// SetFragment replaces the whole fragment. x == nil removes it.
func (n *NormUrl) SetFragment(x *string) error {
	if x == nil {
		return n.RemoveFragment()
	}
	n.setFragmentRaw(*x)
	return nil
}

// RemoveFragment removes the fragment entirely.
func (n *NormUrl) RemoveFragment() error {
	n.u.Fragment = ""
	n.u.RawFragment = ""
	return nil
}

// RemoveEmptyFragment clears a present-but-empty fragment.
func (n *NormUrl) RemoveEmptyFragment() error {
	if n.u.EscapedFragment() == "" {
		return n.RemoveFragment()
	}
	return nil
}

// FragmentHasParam reports whether any fragment parameter decodes to name.
func (n *NormUrl) FragmentHasParam(name string) bool {
	for _, p := range n.fragmentParams() {
		if p.decodedName() == name {
			return true
		}
	}
	return false
}

// FragmentParam returns the index'th occurrence of name within the
// fragment's params.
func (n *NormUrl) FragmentParam(name string, index int) (string, bool) {
	params := n.fragmentParams()
	matches := matchingIndices(params, name)
	idx, ok := NegIndex(index, len(matches))
	if !ok {
		return "", false
	}
	return params[matches[idx]].decodedValue(), true
}

// RemoveFragmentParamsMatching removes every fragment parameter whose
// decoded name satisfies match.
func (n *NormUrl) RemoveFragmentParamsMatching(match func(decodedName string) bool) error {
	params := n.fragmentParams()
	kept := params[:0:0]
	for _, p := range params {
		if !match(p.decodedName()) {
			kept = append(kept, p)
		}
	}
	n.commitFragment(kept)
	return nil
}

// AllowFragmentParamsMatching keeps only fragment parameters whose decoded
// name satisfies match.
func (n *NormUrl) AllowFragmentParamsMatching(match func(decodedName string) bool) error {
	params := n.fragmentParams()
	kept := params[:0:0]
	for _, p := range params {
		if match(p.decodedName()) {
			kept = append(kept, p)
		}
	}
	n.commitFragment(kept)
	return nil
}
