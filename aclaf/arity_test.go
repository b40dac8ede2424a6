package aclaf

import "testing"

func TestNewArityUnbounded(t *testing.T) {
	a, err := NewArity(1, 0, false)
	if err != nil {
		t.Fatalf("NewArity failed: %v", err)
	}
	if !a.Unbounded() {
		t.Error("expected unbounded arity")
	}
	if _, hasMax := a.Max(); hasMax {
		t.Error("expected Max to report hasMax=false")
	}
	if a.Min() != 1 {
		t.Errorf("Min() = %d, want 1", a.Min())
	}
}

func TestNewArityBounded(t *testing.T) {
	a, err := NewArity(1, 3, true)
	if err != nil {
		t.Fatalf("NewArity failed: %v", err)
	}
	max, hasMax := a.Max()
	if !hasMax || max != 3 {
		t.Errorf("Max() = (%d, %v), want (3, true)", max, hasMax)
	}
}

func TestNewArityRejectsMaxBelowMin(t *testing.T) {
	_, err := NewArity(3, 1, true)
	if err == nil {
		t.Fatal("expected error for max < min")
	}
	perr, ok := err.(*ParseError)
	if !ok || perr.Type != ErrorTypeInvalidArity {
		t.Errorf("got %v, want ErrorTypeInvalidArity", err)
	}
}

func TestArityInRange(t *testing.T) {
	cases := []struct {
		name   string
		arity  Arity
		n      uint32
		inside bool
	}{
		{"below min", ArityOneOrMore, 0, false},
		{"at min unbounded", ArityOneOrMore, 1, true},
		{"far above min unbounded", ArityOneOrMore, 100, true},
		{"zero at zero", ArityZero, 0, true},
		{"zero above zero", ArityZero, 1, false},
		{"zero-or-one at zero", ArityZeroOrOne, 0, true},
		{"zero-or-one at one", ArityZeroOrOne, 1, true},
		{"zero-or-one above one", ArityZeroOrOne, 2, false},
		{"exactly one at zero", ArityExactlyOne, 0, false},
		{"exactly one at one", ArityExactlyOne, 1, true},
		{"zero-or-more at zero", ArityZeroOrMore, 0, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.arity.InRange(c.n); got != c.inside {
				t.Errorf("%s.InRange(%d) = %v, want %v", c.arity, c.n, got, c.inside)
			}
		})
	}
}

func TestArityEqual(t *testing.T) {
	a, _ := NewArity(1, 3, true)
	b, _ := NewArity(1, 3, true)
	c, _ := NewArity(1, 4, true)

	if !a.Equal(b) {
		t.Error("expected equal arities to compare equal")
	}
	if a.Equal(c) {
		t.Error("expected different max to compare unequal")
	}
	if ArityOneOrMore.Equal(ArityExactlyOne) {
		t.Error("unbounded and bounded arities must not compare equal")
	}
}

func TestArityString(t *testing.T) {
	if got := ArityOneOrMore.String(); got != "[1, ∞)" {
		t.Errorf("String() = %q", got)
	}
	if got := ArityExactlyOne.String(); got != "[1, 1]" {
		t.Errorf("String() = %q", got)
	}
}
