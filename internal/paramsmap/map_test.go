package paramsmap

import "testing"

func strp(s string) *string { return &s }

func TestMapGet(t *testing.T) {
	m := &Map[string, string]{
		Entries: map[string]string{"a": "A"},
		IfNone:  strp("none"),
		Else:    strp("else"),
	}
	if v := m.Get(strp("a")); v == nil || *v != "A" {
		t.Errorf("Get(a) = %v, want A", v)
	}
	if v := m.Get(strp("missing")); v == nil || *v != "else" {
		t.Errorf("Get(missing) = %v, want else", v)
	}
	if v := m.Get(nil); v == nil || *v != "none" {
		t.Errorf("Get(nil) = %v, want none", v)
	}
}

func TestMapGetNoElseFallsThroughToNil(t *testing.T) {
	m := &Map[string, string]{Entries: map[string]string{}}
	if v := m.Get(strp("x")); v != nil {
		t.Errorf("Get(x) = %v, want nil", v)
	}
	if v := m.Get(nil); v != nil {
		t.Errorf("Get(nil) = %v, want nil", v)
	}
}
