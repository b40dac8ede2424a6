package aclaf

import "fmt"

// Arity describes the permitted number of values a single occurrence of an
// option, or the values of a positional, may carry. Max of nil means
// unbounded.
type Arity struct {
	min uint32
	max *uint32
}

// NewArity constructs an Arity from a minimum and an optional maximum.
// hasMax controls whether max is honored; when false the arity is
// unbounded above. Construction fails fast with InvalidArity when
// max < min.
func NewArity(min uint32, max uint32, hasMax bool) (Arity, error) {
	if !hasMax {
		return Arity{min: min}, nil
	}
	if max < min {
		return Arity{}, &ParseError{
			Type:     ErrorTypeInvalidArity,
			Message:  fmt.Sprintf("invalid arity: max (%d) is less than min (%d)", max, min),
			Position: -1,
		}
	}
	m := max
	return Arity{min: min, max: &m}, nil
}

// Min returns the minimum number of values required per occurrence.
func (a Arity) Min() uint32 { return a.min }

// Max returns the maximum number of values allowed per occurrence and
// whether that maximum is bounded at all.
func (a Arity) Max() (uint32, bool) {
	if a.max == nil {
		return 0, false
	}
	return *a.max, true
}

// Unbounded reports whether the arity has no upper bound.
func (a Arity) Unbounded() bool { return a.max == nil }

// InRange reports whether n values satisfy this arity's bounds.
func (a Arity) InRange(n uint32) bool {
	if n < a.min {
		return false
	}
	if a.max != nil && n > *a.max {
		return false
	}
	return true
}

// Equal reports structural equality between two Arity values.
func (a Arity) Equal(other Arity) bool {
	if a.min != other.min {
		return false
	}
	if (a.max == nil) != (other.max == nil) {
		return false
	}
	return a.max == nil || *a.max == *other.max
}

func (a Arity) String() string {
	if a.max == nil {
		return fmt.Sprintf("[%d, ∞)", a.min)
	}
	return fmt.Sprintf("[%d, %d]", a.min, *a.max)
}

// Standard arity constants, built with must* helpers since their bounds
// are known-valid at compile time.

var (
	// ArityZero permits no values per occurrence (flags).
	ArityZero = mustArity(0, 0, true)
	// ArityZeroOrOne permits at most one value per occurrence.
	ArityZeroOrOne = mustArity(0, 1, true)
	// ArityExactlyOne requires exactly one value per occurrence.
	ArityExactlyOne = mustArity(1, 1, true)
	// ArityZeroOrMore permits any number of values, including none.
	ArityZeroOrMore = mustArity(0, 0, false)
	// ArityOneOrMore requires at least one value, with no upper bound.
	ArityOneOrMore = mustArity(1, 0, false)
)

func mustArity(min, max uint32, hasMax bool) Arity {
	a, err := NewArity(min, max, hasMax)
	if err != nil {
		panic(err)
	}
	return a
}
