package match

import (
	"errors"
	"testing"

	"github.com/Comcast/casematch/pattern"
	"github.com/Comcast/casematch/values"
)

func testRegistry(t *testing.T) (*values.Registry, *values.RecordType, *values.RecordType) {
	t.Helper()
	reg := values.NewRegistry()
	point, err := reg.Define("point", "x", "y")
	if err != nil {
		t.Fatal(err)
	}
	circle, err := reg.Define("circle", "center", "radius")
	if err != nil {
		t.Fatal(err)
	}
	return reg, point, circle
}

func mustVar(t *testing.T, name string) *pattern.Capture {
	t.Helper()
	p, err := pattern.Var(name)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestMatchObjectPositional(t *testing.T) {
	_, point, _ := testRegistry(t)

	rec, err := values.NewRecord(point, values.Number(1), values.Number(2))
	if err != nil {
		t.Fatal(err)
	}

	p, err := pattern.Obj(point, []pattern.Pattern{mustVar(t, "x"), pattern.Any}, nil)
	if err != nil {
		t.Fatal(err)
	}

	bs, ok, err := Match(p, rec)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected a match")
	}
	if got := bs["x"]; !values.Number(1).Equal(got) {
		t.Fatalf("got %#v", got)
	}
}

func TestMatchObjectNamed(t *testing.T) {
	_, point, _ := testRegistry(t)

	rec, err := values.NewRecord(point, values.Number(1), values.Number(2))
	if err != nil {
		t.Fatal(err)
	}

	p, err := pattern.Obj(point, nil, []pattern.Field{{Name: "y", Pattern: mustVar(t, "it")}})
	if err != nil {
		t.Fatal(err)
	}

	bs, ok, err := Match(p, rec)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected a match")
	}
	if got := bs["it"]; !values.Number(2).Equal(got) {
		t.Fatalf("got %#v", got)
	}
}

func TestMatchObjectWrongType(t *testing.T) {
	_, point, circle := testRegistry(t)

	rec, err := values.NewRecord(point, values.Number(1), values.Number(2))
	if err != nil {
		t.Fatal(err)
	}

	p, err := pattern.Obj(circle, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	_, ok, err := Match(p, rec)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("a point is not a circle")
	}
}

func TestMatchObjectSubtype(t *testing.T) {
	reg := values.NewRegistry()
	shape, err := reg.Define("shape")
	if err != nil {
		t.Fatal(err)
	}
	square, err := reg.DefineUnder(shape, "square", "side")
	if err != nil {
		t.Fatal(err)
	}

	rec, err := values.NewRecord(square, values.Number(3))
	if err != nil {
		t.Fatal(err)
	}

	p, err := pattern.Obj(shape, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	_, ok, err := Match(p, rec)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("a square should match a shape pattern")
	}
}

func TestMatchLazyFieldReadOnce(t *testing.T) {
	_, point, _ := testRegistry(t)

	reads := 0
	rec, err := values.NewLazyRecord(point,
		map[string]values.Value{"y": values.Number(2)},
		map[string]values.FieldFunc{
			"x": func() (values.Value, error) {
				reads++
				return values.Number(1), nil
			},
		})
	if err != nil {
		t.Fatal(err)
	}

	// The first alternative reads x and fails; the second reads x and
	// succeeds. One attempt, so one read.
	miss, err := pattern.Obj(point, []pattern.Pattern{pattern.Lit(values.Number(99)), pattern.Any}, nil)
	if err != nil {
		t.Fatal(err)
	}
	hit, err := pattern.Obj(point, []pattern.Pattern{mustVar(t, "b"), pattern.Any}, nil)
	if err != nil {
		t.Fatal(err)
	}
	or := &pattern.Or{Alternatives: []pattern.Pattern{miss, hit}}

	if _, ok, err := Match(or, rec); err != nil || !ok {
		t.Fatalf("ok %v err %v", ok, err)
	}
	if reads != 1 {
		t.Fatalf("field read %d times", reads)
	}

	// A fresh attempt reads again.
	if _, ok, err := Match(or, rec); err != nil || !ok {
		t.Fatalf("ok %v err %v", ok, err)
	}
	if reads != 2 {
		t.Fatalf("field read %d times across two attempts", reads)
	}
}

func TestMatchLazyFieldError(t *testing.T) {
	_, point, _ := testRegistry(t)

	boom := errors.New("boom")
	rec, err := values.NewLazyRecord(point,
		map[string]values.Value{"y": values.Number(2)},
		map[string]values.FieldFunc{
			"x": func() (values.Value, error) { return nil, boom },
		})
	if err != nil {
		t.Fatal(err)
	}

	p, err := pattern.Obj(point, []pattern.Pattern{mustVar(t, "a"), pattern.Any}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, _, err := Match(p, rec); !errors.Is(err, boom) {
		t.Fatalf("got %v", err)
	}
}

func TestMatchLazyFieldSkipped(t *testing.T) {
	_, point, _ := testRegistry(t)

	rec, err := values.NewLazyRecord(point,
		map[string]values.Value{"x": values.Number(1)},
		map[string]values.FieldFunc{
			"y": func() (values.Value, error) {
				t.Fatal("y should not be read")
				return nil, nil
			},
		})
	if err != nil {
		t.Fatal(err)
	}

	// Only names y's sibling, so y's thunk must stay cold.
	p, err := pattern.Obj(point, nil, []pattern.Field{{Name: "x", Pattern: mustVar(t, "a")}})
	if err != nil {
		t.Fatal(err)
	}

	if _, ok, err := Match(p, rec); err != nil || !ok {
		t.Fatalf("ok %v err %v", ok, err)
	}
}

func TestMatchOrFirstAlternativeWins(t *testing.T) {
	as, err := pattern.Bind(pattern.Any, "x")
	if err != nil {
		t.Fatal(err)
	}
	// Hand-assembled: OrOf would insist on uniform bind sets, but the
	// matcher itself just reports whichever alternative matched.
	or := &pattern.Or{Alternatives: []pattern.Pattern{
		pattern.Lit(values.Number(3)),
		as,
	}}

	bs, ok, err := Match(or, values.Number(3))
	if err != nil || !ok {
		t.Fatalf("ok %v err %v", ok, err)
	}
	if len(bs) != 0 {
		t.Fatalf("first alternative binds nothing; got %v", bs.Names())
	}

	bs, ok, err = Match(or, values.Number(5))
	if err != nil || !ok {
		t.Fatalf("ok %v err %v", ok, err)
	}
	if got := bs["x"]; !values.Number(5).Equal(got) {
		t.Fatalf("got %#v", got)
	}
}

func TestMatchConflictingBinding(t *testing.T) {
	v := msg(map[string]interface{}{"a": 1.0, "b": 2.0})
	p, err := pattern.Decode(map[string]interface{}{"a": "?x", "b": "?x"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = Match(p, v)
	var conflict *ConflictingBinding
	if !errors.As(err, &conflict) {
		t.Fatalf("got %v", err)
	}
	if conflict.Name != "x" {
		t.Fatalf("got %q", conflict.Name)
	}
}

func TestMatchShadowing(t *testing.T) {
	v := msg(map[string]interface{}{"a": 1.0, "b": 2.0})
	p, err := pattern.Decode(map[string]interface{}{"a": "?x", "b": "?x"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	m := &Matcher{AllowShadowing: true}
	bs, ok, err := m.Match(p, v)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected a match")
	}
	if got := bs["x"]; !values.Number(2).Equal(got) {
		t.Fatalf("later binding should win: got %#v", got)
	}
}

func TestMatchDeterministic(t *testing.T) {
	v := msg(map[string]interface{}{"a": 1.0, "b": 2.0, "c": 3.0})
	p, err := pattern.Decode(map[string]interface{}{
		"map":  map[string]interface{}{"a": "?x"},
		"rest": "r",
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	first, ok, err := Match(p, v)
	if err != nil || !ok {
		t.Fatalf("ok %v err %v", ok, err)
	}
	for i := 0; i < 10; i++ {
		bs, ok, err := Match(p, v)
		if err != nil || !ok {
			t.Fatalf("ok %v err %v", ok, err)
		}
		for _, name := range first.Names() {
			if !first[name].Equal(bs[name]) {
				t.Fatalf("run %d differs at %q", i, name)
			}
		}
	}
}
