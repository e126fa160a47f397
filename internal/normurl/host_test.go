package normurl

import "testing"

func TestDeriveHostDetailsKinds(t *testing.T) {
	tests := []struct {
		host string
		kind HostKind
	}{
		{"", HostNone},
		{"example.com", HostDomain},
		{"203.0.113.9", HostIPv4},
		{"[::1]", HostIPv6},
		{"localhost", HostDomain},
	}
	for _, tt := range tests {
		hd, _, err := deriveHostDetails(tt.host)
		if err != nil {
			t.Fatalf("deriveHostDetails(%q): %v", tt.host, err)
		}
		if hd.Kind != tt.kind {
			t.Errorf("deriveHostDetails(%q).Kind = %v, want %v", tt.host, hd.Kind, tt.kind)
		}
	}
}

func TestComputeDomainDetailsSpans(t *testing.T) {
	tests := []struct {
		host            string
		subdomain       string
		middle          string
		suffix          string
		regDomain       string
		notDomainSuffix string
		fqdn            bool
	}{
		{"example.com", "", "example", "com", "example.com", "example", false},
		{"www.example.co.uk", "www", "example", "co.uk", "example.co.uk", "www.example", false},
		{"www.example.co.uk.", "www", "example", "co.uk", "example.co.uk", "www.example", true},
		{"localhost", "", "", "localhost", "localhost", "", false},
		{"a.b.example.com", "a.b", "example", "com", "example.com", "a.b.example", false},
	}
	for _, tt := range tests {
		dd, err := computeDomainDetails(tt.host)
		if err != nil {
			t.Fatalf("computeDomainDetails(%q): %v", tt.host, err)
		}
		domain := dd.domainString(tt.host)
		domainLen := len(domain)

		if dd.fqdn != tt.fqdn {
			t.Errorf("%q: fqdn = %v, want %v", tt.host, dd.fqdn, tt.fqdn)
		}

		sub := ""
		if lo, hi, ok := dd.subdomainBounds(); ok {
			sub = domain[lo:hi]
		}
		if sub != tt.subdomain {
			t.Errorf("%q: subdomain = %q, want %q", tt.host, sub, tt.subdomain)
		}

		lo, hi := dd.middleBounds()
		if domain[lo:hi] != tt.middle {
			t.Errorf("%q: middle = %q, want %q", tt.host, domain[lo:hi], tt.middle)
		}

		lo, hi, ok := dd.suffixBounds(domainLen)
		if !ok || domain[lo:hi] != tt.suffix {
			t.Errorf("%q: suffix = %q, want %q", tt.host, domain[lo:hi], tt.suffix)
		}

		lo, hi, ok = dd.regDomainBounds(domainLen)
		if !ok || domain[lo:hi] != tt.regDomain {
			t.Errorf("%q: regDomain = %q, want %q", tt.host, domain[lo:hi], tt.regDomain)
		}

		nds := ""
		if lo, hi, ok := dd.notSuffixBounds(); ok {
			nds = domain[lo:hi]
		}
		if nds != tt.notDomainSuffix {
			t.Errorf("%q: notDomainSuffix = %q, want %q", tt.host, nds, tt.notDomainSuffix)
		}
	}
}
