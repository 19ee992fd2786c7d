package values

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFromToInterface(t *testing.T) {
	x := map[string]interface{}{
		"name":  "queso",
		"tags":  []interface{}{"warm", "cheesy"},
		"price": 4.5,
		"spicy": false,
		"notes": nil,
	}
	v, err := FromInterface(x)
	if err != nil {
		t.Fatal(err)
	}
	y, err := ToInterface(v)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(x, y); diff != "" {
		t.Fatal(diff)
	}
}

func TestFromInterfaceUnrepresentable(t *testing.T) {
	type opaque struct{}
	var unrep *Unrepresentable
	if _, err := FromInterface(opaque{}); !errors.As(err, &unrep) {
		t.Fatalf("got %v", err)
	}
	if _, err := FromInterface([]interface{}{opaque{}}); !errors.As(err, &unrep) {
		t.Fatalf("got %v", err)
	}
}

func TestToInterfaceRecord(t *testing.T) {
	reg := NewRegistry()
	point, _ := reg.Define("point", "x", "y")
	rec, err := NewRecord(point, Number(1), Number(2))
	if err != nil {
		t.Fatal(err)
	}

	x, err := ToInterface(rec)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]interface{}{
		TypeKey: "point",
		"x":     1.0,
		"y":     2.0,
	}
	if diff := cmp.Diff(want, x); diff != "" {
		t.Fatal(diff)
	}
}

func TestDecodeRecord(t *testing.T) {
	reg := NewRegistry()
	point, _ := reg.Define("point", "x", "y")

	v, err := Decode(map[string]interface{}{
		TypeKey: "point",
		"x":     1.0,
		"y":     2.0,
	}, reg)
	if err != nil {
		t.Fatal(err)
	}
	rec, is := v.(*Record)
	if !is || rec.Type != point {
		t.Fatalf("got %#v", v)
	}
	x, err := rec.Field("x")
	if err != nil {
		t.Fatal(err)
	}
	if !Number(1).Equal(x) {
		t.Fatalf("got %#v", x)
	}

	// Missing and extra fields are errors.
	if _, err := Decode(map[string]interface{}{TypeKey: "point", "x": 1.0}, reg); err == nil {
		t.Fatal("missing y")
	}
	if _, err := Decode(map[string]interface{}{
		TypeKey: "point", "x": 1.0, "y": 2.0, "z": 3.0,
	}, reg); err == nil {
		t.Fatal("stray z")
	}
	if _, err := Decode(map[string]interface{}{TypeKey: "nope"}, reg); err == nil {
		t.Fatal("unknown type")
	}

	// Without a registry the tag is just another key.
	v, err = Decode(map[string]interface{}{TypeKey: "point", "x": 1.0, "y": 2.0}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, is := v.(Mapping); !is {
		t.Fatalf("got %#v", v)
	}
}

func TestCheck(t *testing.T) {
	v, err := FromInterface(map[string]interface{}{
		"a": []interface{}{1.0, 2.0},
		"b": map[string]interface{}{"c": nil},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := Check(v); err != nil {
		t.Fatal(err)
	}
}

func TestCheckCyclicSequence(t *testing.T) {
	seq := make(Sequence, 1)
	seq[0] = seq

	var cyc *Cyclic
	if err := Check(seq); !errors.As(err, &cyc) {
		t.Fatalf("got %v", err)
	}
}

func TestCheckCyclicMapping(t *testing.T) {
	m := Mapping{}
	m["self"] = m

	var cyc *Cyclic
	if err := Check(m); !errors.As(err, &cyc) {
		t.Fatalf("got %v", err)
	}
}

func TestCheckSharedIsNotCyclic(t *testing.T) {
	shared := Sequence{Number(1)}
	v := Mapping{"a": shared, "b": shared}
	if err := Check(v); err != nil {
		t.Fatal(err)
	}
}
