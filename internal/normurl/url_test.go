package normurl

import "testing"

func TestParseRoundTrip(t *testing.T) {
	const s = "https://www.example.co.uk./a/b?x=1#frag"
	n, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := n.String(); got != s {
		t.Errorf("String() = %q, want %q", got, s)
	}
}

func TestDomainGettersOnRealHost(t *testing.T) {
	n, err := Parse("https://www.example.co.uk./a")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if d, ok := n.Domain(); !ok || d != "www.example.co.uk" {
		t.Errorf("Domain() = %q, %v", d, ok)
	}
	if s, ok := n.Subdomain(); !ok || s != "www" {
		t.Errorf("Subdomain() = %q, %v", s, ok)
	}
	if m, ok := n.DomainMiddle(); !ok || m != "example" {
		t.Errorf("DomainMiddle() = %q, %v", m, ok)
	}
	if sfx, ok := n.DomainSuffix(); !ok || sfx != "co.uk" {
		t.Errorf("DomainSuffix() = %q, %v", sfx, ok)
	}
	if rd, ok := n.RegDomain(); !ok || rd != "example.co.uk" {
		t.Errorf("RegDomain() = %q, %v", rd, ok)
	}
	if !n.Fqdn() {
		t.Error("Fqdn() = false, want true")
	}
}

func TestSetDomainGettersRoundTrip(t *testing.T) {
	n, err := Parse("https://www.example.co.uk/a")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if sub, _ := n.Subdomain(); sub != "www" {
		t.Fatalf("precondition: Subdomain() = %q", sub)
	}
	if err := n.SetSubdomain(strp("blog")); err != nil {
		t.Fatalf("SetSubdomain: %v", err)
	}
	if sub, ok := n.Subdomain(); !ok || sub != "blog" {
		t.Errorf("after SetSubdomain: Subdomain() = %q, %v", sub, ok)
	}
	if d, _ := n.Domain(); d != "blog.example.co.uk" {
		t.Errorf("after SetSubdomain: Domain() = %q", d)
	}

	if err := n.SetDomainSuffix("com"); err != nil {
		t.Fatalf("SetDomainSuffix: %v", err)
	}
	if sfx, ok := n.DomainSuffix(); !ok || sfx != "com" {
		t.Errorf("after SetDomainSuffix: DomainSuffix() = %q, %v", sfx, ok)
	}

	if err := n.SetDomainMiddle("other"); err != nil {
		t.Fatalf("SetDomainMiddle: %v", err)
	}
	if m, ok := n.DomainMiddle(); !ok || m != "other" {
		t.Errorf("after SetDomainMiddle: DomainMiddle() = %q, %v", m, ok)
	}
	if d, _ := n.Domain(); d != "blog.other.com" {
		t.Errorf("final Domain() = %q, want blog.other.com", d)
	}
}

func TestSetSubdomainRemove(t *testing.T) {
	n, err := Parse("https://www.example.com/a")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := n.SetSubdomain(nil); err != nil {
		t.Fatalf("SetSubdomain(nil): %v", err)
	}
	if sub, ok := n.Subdomain(); ok {
		t.Errorf("Subdomain() after removal = %q, %v, want false", sub, ok)
	}
	if d, _ := n.Domain(); d != "example.com" {
		t.Errorf("Domain() after subdomain removal = %q", d)
	}
}

func TestSetDomainSegmentAndInsert(t *testing.T) {
	n, err := Parse("https://a.b.example.com/")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := n.SetDomainSegment(0, strp("x")); err != nil {
		t.Fatalf("SetDomainSegment: %v", err)
	}
	if d, _ := n.Domain(); d != "x.b.example.com" {
		t.Errorf("Domain() = %q, want x.b.example.com", d)
	}
	if err := n.InsertDomainSegment(0, "new"); err != nil {
		t.Fatalf("InsertDomainSegment: %v", err)
	}
	if d, _ := n.Domain(); d != "new.x.b.example.com" {
		t.Errorf("Domain() = %q, want new.x.b.example.com", d)
	}
}

func TestHostNotDomainErrors(t *testing.T) {
	n, err := Parse("https://203.0.113.9/a")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, ok := n.Domain(); ok {
		t.Error("Domain() on IP host should report ok=false")
	}
	if err := n.SetSubdomain(strp("x")); err != ErrHostNotDomain {
		t.Errorf("SetSubdomain on IP host = %v, want ErrHostNotDomain", err)
	}
}

func TestJoinResolvesRelative(t *testing.T) {
	n, err := Parse("https://example.com/a/b?x=1")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := n.Join("../c"); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if got := n.String(); got != "https://example.com/c" {
		t.Errorf("String() after Join = %q", got)
	}
}

func TestSetFqdn(t *testing.T) {
	n, err := Parse("https://example.com/")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := n.EnsureFqdnPeriod(); err != nil {
		t.Fatalf("EnsureFqdnPeriod: %v", err)
	}
	if !n.Fqdn() {
		t.Error("Fqdn() = false after EnsureFqdnPeriod")
	}
	if err := n.RemoveFqdnPeriod(); err != nil {
		t.Fatalf("RemoveFqdnPeriod: %v", err)
	}
	if n.Fqdn() {
		t.Error("Fqdn() = true after RemoveFqdnPeriod")
	}
}
