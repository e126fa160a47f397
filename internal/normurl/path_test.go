package normurl

import "testing"

func TestPathSegmentGet(t *testing.T) {
	n, err := Parse("https://example.com/a/b/c")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if s, ok := n.PathSegment(0); !ok || s != "a" {
		t.Errorf("PathSegment(0) = %q, %v", s, ok)
	}
	if s, ok := n.PathSegment(-1); !ok || s != "c" {
		t.Errorf("PathSegment(-1) = %q, %v", s, ok)
	}
	if _, ok := n.PathSegment(3); ok {
		t.Error("PathSegment(3) should be out of bounds")
	}
}

func TestSetPathSegment(t *testing.T) {
	n, err := Parse("https://example.com/a/b/c")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := n.SetPathSegment(1, strp("x")); err != nil {
		t.Fatalf("SetPathSegment: %v", err)
	}
	if n.Path() != "/a/x/c" {
		t.Errorf("Path() = %q, want /a/x/c", n.Path())
	}
	if err := n.SetPathSegment(0, strp("has/slash")); err != ErrPathSegmentCannotContainSlash {
		t.Errorf("SetPathSegment with slash = %v, want ErrPathSegmentCannotContainSlash", err)
	}
}

func TestInsertPathSegment(t *testing.T) {
	n, err := Parse("https://example.com/a/b")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := n.InsertPathSegmentAt(0, "z"); err != nil {
		t.Fatalf("InsertPathSegmentAt: %v", err)
	}
	if n.Path() != "/z/a/b" {
		t.Errorf("Path() = %q, want /z/a/b", n.Path())
	}
	if err := n.InsertPathSegmentAfter(-1, "end"); err != nil {
		t.Fatalf("InsertPathSegmentAfter: %v", err)
	}
	if n.Path() != "/z/a/b/end" {
		t.Errorf("Path() = %q, want /z/a/b/end", n.Path())
	}
}

func TestFirstLastNPathSegments(t *testing.T) {
	n, err := Parse("https://example.com/a/b/c/d")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := n.RemoveFirstNPathSegments(2); err != nil {
		t.Fatalf("RemoveFirstNPathSegments: %v", err)
	}
	if n.Path() != "/c/d" {
		t.Errorf("Path() = %q, want /c/d", n.Path())
	}

	n, _ = Parse("https://example.com/a/b/c/d")
	if err := n.KeepLastNPathSegments(2); err != nil {
		t.Fatalf("KeepLastNPathSegments: %v", err)
	}
	if n.Path() != "/c/d" {
		t.Errorf("Path() = %q, want /c/d", n.Path())
	}

	n, _ = Parse("https://example.com/a/b/c/d")
	if err := n.KeepFirstNPathSegments(0); err != ErrEmptyPath {
		t.Errorf("KeepFirstNPathSegments(0) = %v, want ErrEmptyPath", err)
	}
}

func TestSetFirstNAndAfterFirstN(t *testing.T) {
	n, err := Parse("https://example.com/a/b/c/d")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := n.SetFirstNPathSegments(2, []string{"x", "y", "z"}); err != nil {
		t.Fatalf("SetFirstNPathSegments: %v", err)
	}
	if n.Path() != "/x/y/z/c/d" {
		t.Errorf("Path() = %q, want /x/y/z/c/d", n.Path())
	}

	n, _ = Parse("https://example.com/a/b/c/d")
	if err := n.SetPathSegmentsAfterFirstN(1, []string{"q"}); err != nil {
		t.Fatalf("SetPathSegmentsAfterFirstN: %v", err)
	}
	if n.Path() != "/a/q" {
		t.Errorf("Path() = %q, want /a/q", n.Path())
	}
}

func TestRemoveEmptyLastPathSegment(t *testing.T) {
	n, err := Parse("https://example.com/a/b/")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := n.RemoveEmptyLastPathSegment(); err != nil {
		t.Fatalf("RemoveEmptyLastPathSegment: %v", err)
	}
	if n.Path() != "/a/b" {
		t.Errorf("Path() = %q, want /a/b", n.Path())
	}
}
