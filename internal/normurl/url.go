package normurl

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Errors returned by NormUrl's domain-structure-aware setters. They are
// typed so callers (in particular internal/engine's Action/Condition
// evaluators) can distinguish "lacks required substructure" from generic
// parse failure, per spec.md §7's "structural" error kind.
var (
	ErrHostNotDomain    = errors.New("host is not a domain")
	ErrNoHost           = errors.New("url has no host")
	ErrMissingRegDomain = errors.New("domain has no registerable domain")
)

// NormUrl is a URL plus cached host-detail spans (domain/subdomain/suffix
// byte offsets, or an IP classification). It wraps net/url.URL and keeps
// its host-detail cache transactionally consistent: either a setter fully
// commits a valid new state (URL and cache together), or it returns an
// error and leaves the receiver unchanged, per spec.md §4.1.
type NormUrl struct {
	u    *url.URL
	kind HostKind
	dd   domainDetails
}

// Parse parses s as a standard URL and derives its host details.
func Parse(s string) (*NormUrl, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	n := &NormUrl{u: u}
	if err := n.refreshHostDetails(); err != nil {
		return nil, err
	}
	return n, nil
}

// Clone returns a deep copy suitable for Action::RevertOnError's
// clone-before-apply / restore-on-error pattern.
func (n *NormUrl) Clone() *NormUrl {
	u2 := *n.u
	return &NormUrl{u: &u2, kind: n.kind, dd: n.dd}
}

// String returns the canonical string form of the URL.
func (n *NormUrl) String() string { return n.u.String() }

// URL exposes the underlying net/url.URL for read-only inspection by
// collaborators (e.g. an HTTP client) that need the standard type.
func (n *NormUrl) URL() *url.URL { return n.u }

// HostKind reports whether the host is a domain, an IP, or absent.
func (n *NormUrl) HostKind() HostKind { return n.kind }

func (n *NormUrl) refreshHostDetails() error {
	hd, dd, err := deriveHostDetails(n.u.Host)
	if err != nil {
		return err
	}
	n.kind = hd.Kind
	n.dd = dd
	return nil
}

// hostnameAndPort splits net/url.URL's combined Host field.
func (n *NormUrl) hostnameAndPort() (string, string) {
	return n.u.Hostname(), n.u.Port()
}

func joinHostPort(host, port string) string {
	if strings.Contains(host, ":") && !strings.HasPrefix(host, "[") {
		host = "[" + host + "]"
	}
	if port == "" {
		return host
	}
	return host + ":" + port
}

// setHostname replaces just the hostname portion of the authority,
// preserving any port, and recomputes host details from scratch. On
// failure the receiver is left unchanged.
func (n *NormUrl) setHostname(newHost string) error {
	_, port := n.hostnameAndPort()
	oldHost := n.u.Host
	n.u.Host = joinHostPort(newHost, port)
	if err := n.refreshHostDetails(); err != nil {
		n.u.Host = oldHost
		_ = n.refreshHostDetails()
		return err
	}
	return nil
}

// SetHost sets the entire authority host (no port change) to raw.
func (n *NormUrl) SetHost(raw string) error { return n.setHostname(raw) }

// SetWhole replaces the entire URL with a freshly parsed s.
func (n *NormUrl) SetWhole(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	old := n.u
	n.u = u
	if err := n.refreshHostDetails(); err != nil {
		n.u = old
		_ = n.refreshHostDetails()
		return err
	}
	return nil
}

// Join resolves rel against the current URL, RFC 3986-style, and replaces
// the current URL with the result.
func (n *NormUrl) Join(rel string) error {
	ru, err := url.Parse(rel)
	if err != nil {
		return fmt.Errorf("parse relative url: %w", err)
	}
	joined := n.u.ResolveReference(ru)
	old := n.u
	n.u = joined
	if err := n.refreshHostDetails(); err != nil {
		n.u = old
		_ = n.refreshHostDetails()
		return err
	}
	return nil
}

// EnsureFqdnPeriod guarantees the host ends in a trailing ".".
func (n *NormUrl) EnsureFqdnPeriod() error { return n.SetFqdn(true) }

// RemoveFqdnPeriod guarantees the host has no trailing ".".
func (n *NormUrl) RemoveFqdnPeriod() error { return n.SetFqdn(false) }

// Scheme returns the URL scheme.
func (n *NormUrl) Scheme() string { return n.u.Scheme }

// SetScheme sets the URL scheme.
func (n *NormUrl) SetScheme(s string) error {
	n.u.Scheme = s
	return nil
}

// domain returns the domain substring (without any FQDN period) when the
// host is a domain.
func (n *NormUrl) domain() (string, bool) {
	if n.kind != HostDomain {
		return "", false
	}
	return n.dd.domainString(n.u.Hostname()), true
}

// Domain returns the full domain, excluding any trailing FQDN period.
func (n *NormUrl) Domain() (string, bool) { return n.domain() }

// Subdomain returns the subdomain label sequence, or ("", false) if the
// host is not a domain or has no subdomain.
func (n *NormUrl) Subdomain() (string, bool) {
	d, ok := n.domain()
	if !ok {
		return "", false
	}
	lo, hi, has := n.dd.subdomainBounds()
	if !has {
		return "", false
	}
	return d[lo:hi], true
}

// RegDomain returns the registerable domain (middle + "." + suffix).
func (n *NormUrl) RegDomain() (string, bool) {
	d, ok := n.domain()
	if !ok {
		return "", false
	}
	lo, hi, has := n.dd.regDomainBounds(len(d))
	if !has {
		return "", false
	}
	return d[lo:hi], true
}

// DomainSuffix returns the public-suffix portion of the domain.
func (n *NormUrl) DomainSuffix() (string, bool) {
	d, ok := n.domain()
	if !ok {
		return "", false
	}
	lo, hi, has := n.dd.suffixBounds(len(d))
	if !has {
		return "", false
	}
	return d[lo:hi], true
}

// DomainMiddle returns the registerable domain's label minus its suffix
// (e.g. "example" in "www.example.co.uk").
func (n *NormUrl) DomainMiddle() (string, bool) {
	d, ok := n.domain()
	if !ok {
		return "", false
	}
	lo, hi := n.dd.middleBounds()
	return d[lo:hi], true
}

// NotDomainSuffix returns subdomain+middle (everything but the suffix).
func (n *NormUrl) NotDomainSuffix() (string, bool) {
	d, ok := n.domain()
	if !ok {
		return "", false
	}
	lo, hi, has := n.dd.notSuffixBounds()
	if !has {
		return "", false
	}
	return d[lo:hi], true
}

// Fqdn reports whether the host ends in a fully-qualified-domain period.
func (n *NormUrl) Fqdn() bool { return n.kind == HostDomain && n.dd.fqdn }

// SetFqdn adds or removes the trailing FQDN period; like the other host
// setters it recomputes the host details from the resulting host string.
func (n *NormUrl) SetFqdn(want bool) error {
	if n.u.Host == "" {
		return ErrNoHost
	}
	if n.kind != HostDomain {
		return ErrHostNotDomain
	}
	host := n.u.Hostname()
	has := strings.HasSuffix(host, ".")
	switch {
	case want && !has:
		return n.setHostname(host + ".")
	case !want && has:
		return n.setHostname(strings.TrimSuffix(host, "."))
	default:
		return nil
	}
}

func withFqdn(s string, fqdn bool) string {
	if fqdn && !strings.HasSuffix(s, ".") {
		return s + "."
	}
	return s
}

// SetDomain replaces the whole domain, preserving the current FQDN
// period (if any).
func (n *NormUrl) SetDomain(x string) error {
	fqdn := n.kind == HostDomain && n.dd.fqdn
	return n.setHostname(withFqdn(x, fqdn))
}

// SetSubdomain replaces the subdomain. A nil x removes it. Requires the
// host to already be a domain with a registerable domain.
func (n *NormUrl) SetSubdomain(x *string) error {
	if n.kind != HostDomain {
		return ErrHostNotDomain
	}
	reg, ok := n.RegDomain()
	if !ok {
		return ErrMissingRegDomain
	}
	var prefix string
	if x != nil && *x != "" {
		prefix = *x + "."
	}
	return n.setHostname(withFqdn(prefix+reg, n.dd.fqdn))
}

// SetRegDomain replaces the registerable domain, keeping any subdomain.
func (n *NormUrl) SetRegDomain(x string) error {
	if n.kind != HostDomain {
		return ErrHostNotDomain
	}
	sub, hasSub := n.Subdomain()
	prefix := ""
	if hasSub {
		prefix = sub + "."
	}
	return n.setHostname(withFqdn(prefix+x, n.dd.fqdn))
}

// SetDomainSuffix replaces the public-suffix portion, keeping
// subdomain+middle.
func (n *NormUrl) SetDomainSuffix(x string) error {
	if n.kind != HostDomain {
		return ErrHostNotDomain
	}
	prefix, ok := n.NotDomainSuffix()
	if !ok {
		d, _ := n.domain()
		prefix = d
	}
	sep := "."
	if prefix == "" {
		sep = ""
	}
	return n.setHostname(withFqdn(prefix+sep+x, n.dd.fqdn))
}

// SetDomainMiddle replaces the domain-middle label, keeping subdomain and
// suffix.
func (n *NormUrl) SetDomainMiddle(x string) error {
	if n.kind != HostDomain {
		return ErrHostNotDomain
	}
	sub, hasSub := n.Subdomain()
	suffix, hasSuffix := n.DomainSuffix()
	var b strings.Builder
	if hasSub && sub != "" {
		b.WriteString(sub)
		b.WriteByte('.')
	}
	b.WriteString(x)
	if hasSuffix && suffix != "" {
		b.WriteByte('.')
		b.WriteString(suffix)
	}
	return n.setHostname(withFqdn(b.String(), n.dd.fqdn))
}

// SetNotDomainSuffix replaces subdomain+middle, keeping the suffix.
func (n *NormUrl) SetNotDomainSuffix(x string) error {
	if n.kind != HostDomain {
		return ErrHostNotDomain
	}
	suffix, hasSuffix := n.DomainSuffix()
	sep := "."
	if x == "" || !hasSuffix || suffix == "" {
		sep = ""
	}
	return n.setHostname(withFqdn(x+sep+suffix, n.dd.fqdn))
}

// domainSegmentOp applies a segment-level transform to one of the three
// addressable domain spans (whole domain, subdomain-only, suffix-only)
// and commits the result as the new host.
func (n *NormUrl) domainSegmentOp(span func() (string, bool), rebuild func(newSpan string) error, op func(string) (string, error)) error {
	if n.kind != HostDomain {
		return ErrHostNotDomain
	}
	cur, ok := span()
	if !ok {
		cur = ""
	}
	next, err := op(cur)
	if err != nil {
		return err
	}
	return rebuild(next)
}

// SetDomainSegment sets the i'th '.'-delimited label of the whole domain.
func (n *NormUrl) SetDomainSegment(i int, value *string) error {
	return n.domainSegmentOp(n.domain, func(s string) error { return n.setHostname(withFqdn(s, n.dd.fqdn)) },
		func(cur string) (string, error) {
			out, ok, err := SetSegment(cur, i, value, '.')
			if err != nil {
				return "", err
			}
			if !ok {
				return "", ErrSegmentNotFound
			}
			return out, nil
		})
}

// InsertDomainSegment inserts value as a new label at index i of the
// whole domain.
func (n *NormUrl) InsertDomainSegment(i int, value string) error {
	return n.domainSegmentOp(n.domain, func(s string) error { return n.setHostname(withFqdn(s, n.dd.fqdn)) },
		func(cur string) (string, error) { return InsertSegmentAt(cur, i, value, '.') })
}

// SetSubdomainSegment sets the i'th label of the subdomain only.
func (n *NormUrl) SetSubdomainSegment(i int, value *string) error {
	return n.domainSegmentOp(n.Subdomain, func(s string) error { return n.SetSubdomain(&s) },
		func(cur string) (string, error) {
			out, ok, err := SetSegment(cur, i, value, '.')
			if err != nil {
				return "", err
			}
			if !ok {
				return "", nil
			}
			return out, nil
		})
}

// InsertSubdomainSegment inserts value as a new label at index i of the
// subdomain only.
func (n *NormUrl) InsertSubdomainSegment(i int, value string) error {
	return n.domainSegmentOp(n.Subdomain, func(s string) error { return n.SetSubdomain(&s) },
		func(cur string) (string, error) { return InsertSegmentAt(cur, i, value, '.') })
}

// SetDomainSuffixSegment sets the i'th label of the domain suffix only.
func (n *NormUrl) SetDomainSuffixSegment(i int, value *string) error {
	return n.domainSegmentOp(n.DomainSuffix, n.SetDomainSuffix,
		func(cur string) (string, error) {
			out, ok, err := SetSegment(cur, i, value, '.')
			if err != nil {
				return "", err
			}
			if !ok {
				return "", ErrSegmentNotFound
			}
			return out, nil
		})
}

// InsertDomainSuffixSegment inserts value as a new label at index i of
// the domain suffix only.
func (n *NormUrl) InsertDomainSuffixSegment(i int, value string) error {
	return n.domainSegmentOp(n.DomainSuffix, n.SetDomainSuffix,
		func(cur string) (string, error) { return InsertSegmentAt(cur, i, value, '.') })
}
