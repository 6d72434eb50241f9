package safeset

import "github.com/pkg/errors"

// Union is the pointwise minimum of two safe sets over the same state space:
// a state is safe only if it is safe with respect to both operands.
type Union struct {
	a, b SafeSet
}

// NewUnion combines two sets of equal dimension.
func NewUnion(a, b SafeSet) (*Union, error) {
	if a.Dim() != b.Dim() {
		return nil, errors.Errorf("cannot union sets of dimension %d and %d", a.Dim(), b.Dim())
	}
	return &Union{a: a, b: b}, nil
}

// Dim returns the shared state-space dimension.
func (u *Union) Dim() int {
	return u.a.Dim()
}

// Value returns the smaller of the two operand margins.
func (u *Union) Value(state []float64) (float64, error) {
	va, err := u.a.Value(state)
	if err != nil {
		return 0, err
	}
	vb, err := u.b.Value(state)
	if err != nil {
		return 0, err
	}
	if va < vb {
		return va, nil
	}
	return vb, nil
}

// Gradient returns the gradient of whichever operand attains the minimum.
// Both values are recomputed within this call so the branch choice always
// matches what Value would report; ties go to the second operand.
func (u *Union) Gradient(state []float64) ([]float64, error) {
	va, err := u.a.Value(state)
	if err != nil {
		return nil, err
	}
	vb, err := u.b.Value(state)
	if err != nil {
		return nil, err
	}
	if va < vb {
		return u.a.Gradient(state)
	}
	return u.b.Gradient(state)
}
