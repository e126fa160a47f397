package paramsmap

import "testing"

func TestPartitioningGet(t *testing.T) {
	a, b := "a", "b"
	p, err := TryFromIter([]struct {
		Name     string
		Elements []*string
	}{
		{Name: "fruits", Elements: []*string{&a, &b}},
		{Name: "veggies", Elements: []*string{strp("carrot")}},
	})
	if err != nil {
		t.Fatalf("TryFromIter: %v", err)
	}
	if name, ok := p.Get("a"); !ok || name != "fruits" {
		t.Errorf("Get(a) = %q, %v", name, ok)
	}
	if name, ok := p.Get("carrot"); !ok || name != "veggies" {
		t.Errorf("Get(carrot) = %q, %v", name, ok)
	}
	if _, ok := p.Get("unknown"); ok {
		t.Error("Get(unknown) should be false")
	}
}

func TestPartitioningRejectsDuplicates(t *testing.T) {
	dup := "dup"
	_, err := TryFromIter([]struct {
		Name     string
		Elements []*string
	}{
		{Name: "first", Elements: []*string{&dup}},
		{Name: "second", Elements: []*string{&dup}},
	})
	if err == nil {
		t.Fatal("expected duplicate-element error")
	}
}
