package match

import (
	"errors"
	"testing"

	"github.com/Comcast/casematch/values"

	"github.com/google/go-cmp/cmp"
)

func TestBindingsMerge(t *testing.T) {
	bs, err := Bindings{"x": values.Number(1)}.
		Merge(Bindings{"y": values.Number(2)})
	if err != nil {
		t.Fatal(err)
	}
	if got := bs.Names(); !cmp.Equal([]string{"x", "y"}, got) {
		t.Fatalf("got %v", got)
	}

	// A name bound on both sides is rejected even when the values
	// agree.
	_, err = Bindings{"x": values.Number(1)}.
		Merge(Bindings{"x": values.Number(1)})
	var conflict *ConflictingBinding
	if !errors.As(err, &conflict) || conflict.Name != "x" {
		t.Fatalf("got %v", err)
	}
}

func TestBindingsRemove(t *testing.T) {
	bs := Bindings{
		"x": values.Number(1),
		"y": values.Number(2),
		"z": values.Number(3),
	}
	bs = bs.Remove("x", "z", "nope")
	if got := bs.Names(); !cmp.Equal([]string{"y"}, got) {
		t.Fatalf("got %v", got)
	}
}

func TestBindingsDeleteExcept(t *testing.T) {
	bs := Bindings{
		"x": values.Number(1),
		"y": values.Number(2),
		"z": values.Number(3),
	}
	bs = bs.DeleteExcept("y", "nope")
	if got := bs.Names(); !cmp.Equal([]string{"y"}, got) {
		t.Fatalf("got %v", got)
	}
}

func TestBindingsCopy(t *testing.T) {
	bs := Bindings{"x": values.Number(1)}
	acc := bs.Copy()
	acc.Extend("y", values.Number(2))
	if _, have := bs["y"]; have {
		t.Fatal("copy shares storage")
	}
}
