package normurl

import (
	"net"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// HostKind discriminates the three shapes a host can take.
type HostKind int

const (
	// HostNone means the URL has no host (e.g. "mailto:a@b.com").
	HostNone HostKind = iota
	// HostDomain means the host parses as a domain name.
	HostDomain
	// HostIPv4 means the host is a dotted-quad IPv4 address.
	HostIPv4
	// HostIPv6 means the host is a bracketed IPv6 address.
	HostIPv6
)

// domainDetails holds the byte offsets that decompose a domain host string
// (without any trailing FQDN period) into subdomain | "." | middle | "." |
// suffix spans, per spec.md §3.
//
// Invariant: 0 <= middleStart <= suffixStart <= len(domain).
type domainDetails struct {
	middleStart int
	suffixStart int
	fqdn        bool // host string ends with a "."
}

// HostDetails reports the discriminated shape of a NormUrl's host and, for
// IP hosts, the normalized address text; it carries no domain spans.
type HostDetails struct {
	Kind HostKind
	IP   string // HostIPv4 / HostIPv6: the normalized address text
}

// deriveHostDetails classifies host (as it would appear verbatim in a
// URL's authority, e.g. "www.example.co.uk." or "[::1]" or "203.0.113.9")
// and, for domains, computes its domainDetails.
func deriveHostDetails(host string) (HostDetails, domainDetails, error) {
	if host == "" {
		return HostDetails{Kind: HostNone}, domainDetails{}, nil
	}

	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		addr := host[1 : len(host)-1]
		if ip := net.ParseIP(addr); ip != nil && ip.To4() == nil {
			return HostDetails{Kind: HostIPv6, IP: addr}, domainDetails{}, nil
		}
	}
	if ip := net.ParseIP(host); ip != nil {
		if v4 := ip.To4(); v4 != nil {
			return HostDetails{Kind: HostIPv4, IP: host}, domainDetails{}, nil
		}
		return HostDetails{Kind: HostIPv6, IP: host}, domainDetails{}, nil
	}

	dd, err := computeDomainDetails(host)
	if err != nil {
		return HostDetails{}, domainDetails{}, err
	}
	return HostDetails{Kind: HostDomain}, dd, nil
}

// computeDomainDetails derives middleStart/suffixStart/fqdn for a domain
// host string using golang.org/x/net/publicsuffix as the PSL oracle (the
// concrete stand-in for spec.md's assumed psl_suffix function).
func computeDomainDetails(host string) (domainDetails, error) {
	fqdn := strings.HasSuffix(host, ".")
	domain := host
	if fqdn {
		domain = host[:len(host)-1]
	}
	if domain == "" {
		return domainDetails{fqdn: fqdn}, nil
	}

	lower := strings.ToLower(domain)
	suffix, _ := publicsuffix.PublicSuffix(lower)
	suffixStart := len(domain) - len(suffix)
	if suffixStart < 0 {
		suffixStart = 0
	}

	middleStart := 0
	if suffixStart > 0 {
		if dot := strings.LastIndexByte(domain[:suffixStart-1], '.'); dot >= 0 {
			middleStart = dot + 1
		}
	} else {
		middleStart = 0
	}

	return domainDetails{middleStart: middleStart, suffixStart: suffixStart, fqdn: fqdn}, nil
}

// domainString returns the domain-without-FQDN-period substring of host.
func (d domainDetails) domainString(host string) string {
	if d.fqdn {
		return host[:len(host)-1]
	}
	return host
}

func (d domainDetails) subdomainBounds() (int, int, bool) {
	if d.middleStart == 0 {
		return 0, 0, false
	}
	return 0, d.middleStart - 1, true
}

func (d domainDetails) middleBounds() (int, int) {
	if d.suffixStart > d.middleStart {
		return d.middleStart, d.suffixStart - 1
	}
	return d.middleStart, d.middleStart
}

// suffixBounds returns the span of the public suffix. publicsuffix never
// reports an empty suffix for a non-empty domain, so suffixStart < domainLen
// always holds here; the span is always present for a domain host.
func (d domainDetails) suffixBounds(domainLen int) (int, int, bool) {
	return d.suffixStart, domainLen, true
}

// regDomainBounds returns the span of middle+"."+suffix (the registerable
// domain). Always present for a domain host, by the same reasoning as
// suffixBounds.
func (d domainDetails) regDomainBounds(domainLen int) (int, int, bool) {
	return d.middleStart, domainLen, true
}

func (d domainDetails) notSuffixBounds() (int, int, bool) {
	if d.suffixStart == 0 {
		return 0, 0, false
	}
	return 0, d.suffixStart - 1, true
}
