package normurl

import "testing"

func TestQueryParamGetSet(t *testing.T) {
	n, err := Parse("https://example.com/?a=1&b=2&a=3")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if v, ok := n.QueryParam("a", 0); !ok || v != "1" {
		t.Errorf("QueryParam(a,0) = %q, %v", v, ok)
	}
	if v, ok := n.QueryParam("a", -1); !ok || v != "3" {
		t.Errorf("QueryParam(a,-1) = %q, %v", v, ok)
	}
	if err := n.SetQueryParam("a", 1, strp("9")); err != nil {
		t.Fatalf("SetQueryParam: %v", err)
	}
	if v, ok := n.QueryParam("a", 1); !ok || v != "9" {
		t.Errorf("QueryParam(a,1) after set = %q, %v", v, ok)
	}
}

func TestRemoveQueryParam(t *testing.T) {
	n, err := Parse("https://example.com/?utm_source=x&a=1")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := n.RemoveQueryParam("utm_source"); err != nil {
		t.Fatalf("RemoveQueryParam: %v", err)
	}
	if got, want := n.String(), "https://example.com/?a=1"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestRemoveQuery(t *testing.T) {
	n, err := Parse("https://example.com/?a=1")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := n.RemoveQuery(); err != nil {
		t.Fatalf("RemoveQuery: %v", err)
	}
	if got, want := n.String(), "https://example.com/"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestRemoveQueryParamEmptiesToNoQuery(t *testing.T) {
	n, err := Parse("https://example.com/?a=1")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := n.RemoveQueryParam("a"); err != nil {
		t.Fatalf("RemoveQueryParam: %v", err)
	}
	if got, want := n.String(), "https://example.com/"; got != want {
		t.Errorf("String() = %q, want %q (query must become None, not empty string)", got, want)
	}
}

func TestRenameQueryParam(t *testing.T) {
	n, err := Parse("https://example.com/?old=1")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := n.RenameQueryParam("old", "new"); err != nil {
		t.Fatalf("RenameQueryParam: %v", err)
	}
	if got, want := n.String(), "https://example.com/?new=1"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestGetUrlFromQueryParam(t *testing.T) {
	n, err := Parse("https://redirect.example/?u=https%3A%2F%2Fdest.example%2Fp")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	dest, err := n.GetUrlFromQueryParam("u")
	if err != nil {
		t.Fatalf("GetUrlFromQueryParam: %v", err)
	}
	if got, want := dest.String(), "https://dest.example/p"; got != want {
		t.Errorf("dest.String() = %q, want %q", got, want)
	}
}

func TestAllowQueryParams(t *testing.T) {
	n, err := Parse("https://example.com/?a=1&b=2&c=3")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := n.AllowQueryParams(map[string]struct{}{"b": {}}); err != nil {
		t.Fatalf("AllowQueryParams: %v", err)
	}
	if got, want := n.String(), "https://example.com/?b=2"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestQueryHasParam(t *testing.T) {
	n, err := Parse("https://example.com/?a=1")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !n.QueryHasParam("a") {
		t.Error("QueryHasParam(a) = false, want true")
	}
	if n.QueryHasParam("z") {
		t.Error("QueryHasParam(z) = true, want false")
	}
}
