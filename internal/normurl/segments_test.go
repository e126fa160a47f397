package normurl

import "testing"

func strp(s string) *string { return &s }

func TestInsertSegmentAt(t *testing.T) {
	const test = "aa-bb-cc-dd-ee"

	tests := []struct {
		i       int
		want    string
		wantErr bool
	}{
		{-7, "", true},
		{-6, "..-aa-bb-cc-dd-ee", false},
		{-5, "aa-..-bb-cc-dd-ee", false},
		{-4, "aa-bb-..-cc-dd-ee", false},
		{-3, "aa-bb-cc-..-dd-ee", false},
		{-2, "aa-bb-cc-dd-..-ee", false},
		{-1, "aa-bb-cc-dd-ee-..", false},
		{0, "..-aa-bb-cc-dd-ee", false},
		{1, "aa-..-bb-cc-dd-ee", false},
		{2, "aa-bb-..-cc-dd-ee", false},
		{3, "aa-bb-cc-..-dd-ee", false},
		{4, "aa-bb-cc-dd-..-ee", false},
		{5, "aa-bb-cc-dd-ee-..", false},
		{6, "", true},
	}

	for _, tt := range tests {
		got, err := InsertSegmentAt(test, tt.i, "..", '-')
		if tt.wantErr {
			if err == nil {
				t.Errorf("InsertSegmentAt(%d) expected error, got %q", tt.i, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("InsertSegmentAt(%d) unexpected error: %v", tt.i, err)
			continue
		}
		if got != tt.want {
			t.Errorf("InsertSegmentAt(%d) = %q, want %q", tt.i, got, tt.want)
		}
	}
}

func TestInsertSegmentAtEmptyAndSingle(t *testing.T) {
	tests := []struct {
		part    string
		i       int
		want    string
		wantErr bool
	}{
		{"", -3, "", true},
		{"", -2, "..-", false},
		{"", -1, "-..", false},
		{"", 0, "..-", false},
		{"", 1, "-..", false},
		{"", 2, "", true},
		{"aa", -3, "", true},
		{"aa", -2, "..-aa", false},
		{"aa", -1, "aa-..", false},
		{"aa", 0, "..-aa", false},
		{"aa", 1, "aa-..", false},
		{"aa", 2, "", true},
	}

	for _, tt := range tests {
		got, err := InsertSegmentAt(tt.part, tt.i, "..", '-')
		if tt.wantErr {
			if err == nil {
				t.Errorf("InsertSegmentAt(%q, %d) expected error, got %q", tt.part, tt.i, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("InsertSegmentAt(%q, %d) = %q, %v, want %q", tt.part, tt.i, got, err, tt.want)
		}
	}
}

func TestCharRemoveFirstN(t *testing.T) {
	const test = "aa-bb-cc-dd-ee"
	tests := []struct {
		n    int
		want string
		ok   bool
	}{
		{0, "aa-bb-cc-dd-ee", true},
		{1, "bb-cc-dd-ee", true},
		{2, "cc-dd-ee", true},
		{3, "dd-ee", true},
		{4, "ee", true},
		{5, "", true},
		{6, "", false},
	}
	for _, tt := range tests {
		got, ok := CharRemoveFirstN(test, '-', tt.n)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("CharRemoveFirstN(n=%d) = (%q, %v), want (%q, %v)", tt.n, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCharKeepFirstN(t *testing.T) {
	const test = "aa-bb-cc-dd-ee"
	tests := []struct {
		n    int
		want string
		ok   bool
	}{
		{0, "", false},
		{1, "aa", true},
		{2, "aa-bb", true},
		{3, "aa-bb-cc", true},
		{4, "aa-bb-cc-dd", true},
		{5, "aa-bb-cc-dd-ee", true},
		{6, "", false},
	}
	for _, tt := range tests {
		got, ok := CharKeepFirstN(test, '-', tt.n)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("CharKeepFirstN(n=%d) = (%q, %v), want (%q, %v)", tt.n, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCharRemoveLastN(t *testing.T) {
	const test = "aa-bb-cc-dd-ee"
	tests := []struct {
		n    int
		want string
		ok   bool
	}{
		{0, "aa-bb-cc-dd-ee", true},
		{1, "aa-bb-cc-dd", true},
		{2, "aa-bb-cc", true},
		{3, "aa-bb", true},
		{4, "aa", true},
		{5, "", true},
		{6, "", false},
	}
	for _, tt := range tests {
		got, ok := CharRemoveLastN(test, '-', tt.n)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("CharRemoveLastN(n=%d) = (%q, %v), want (%q, %v)", tt.n, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCharKeepLastN(t *testing.T) {
	const test = "aa-bb-cc-dd-ee"
	tests := []struct {
		n    int
		want string
		ok   bool
	}{
		{0, "", false},
		{1, "ee", true},
		{2, "dd-ee", true},
		{3, "cc-dd-ee", true},
		{4, "bb-cc-dd-ee", true},
		{5, "aa-bb-cc-dd-ee", true},
		{6, "", false},
	}
	for _, tt := range tests {
		got, ok := CharKeepLastN(test, '-', tt.n)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("CharKeepLastN(n=%d) = (%q, %v), want (%q, %v)", tt.n, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSetSegment(t *testing.T) {
	got, ok, err := SetSegment("aa-bb-cc", 1, strp("xx"), '-')
	if err != nil || !ok || got != "aa-xx-cc" {
		t.Fatalf("SetSegment set = (%q, %v, %v)", got, ok, err)
	}

	got, ok, err = SetSegment("aa-bb-cc", -1, nil, '-')
	if err != nil || !ok || got != "aa-bb" {
		t.Fatalf("SetSegment remove = (%q, %v, %v)", got, ok, err)
	}

	got, ok, err = SetSegment("aa", 0, nil, '-')
	if err != nil || ok {
		t.Fatalf("SetSegment remove-last = (%q, %v, %v), want empty/false", got, ok, err)
	}

	if _, _, err := SetSegment("aa-bb", 5, strp("x"), '-'); err == nil {
		t.Fatal("expected ErrSegmentNotFound")
	}
}
