package util

import "testing"

func TestGensym(t *testing.T) {
	s := Gensym(16)
	if len(s) != 16 {
		t.Fatalf("got %q", s)
	}
	if s == Gensym(16) {
		t.Fatal("two syms shouldn't collide")
	}
}
