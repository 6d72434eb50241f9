package safeset

import "github.com/pkg/errors"

// CoupledPair combines two independent lower-dimensional sets into one set
// over the concatenated state: the first a.Dim() components are evaluated by
// the first operand and the remainder by the second. The combined margin is
// the larger of the two sub-margins, so the pair is violating only when both
// subsystems are simultaneously violating along their own axes. This matches
// a decoupled-dynamics decomposition where either subsystem can restore
// safety on its own.
type CoupledPair struct {
	a, b SafeSet
}

// NewCoupledPair concatenates two sets into one over a.Dim()+b.Dim() states.
func NewCoupledPair(a, b SafeSet) (*CoupledPair, error) {
	if a.Dim() < 1 || b.Dim() < 1 {
		return nil, errors.New("coupled pair operands must have positive dimension")
	}
	return &CoupledPair{a: a, b: b}, nil
}

// Dim returns the concatenated state dimension.
func (c *CoupledPair) Dim() int {
	return c.a.Dim() + c.b.Dim()
}

func (c *CoupledPair) split(state []float64) ([]float64, []float64, error) {
	if err := checkDim(c.Dim(), state); err != nil {
		return nil, nil, err
	}
	return state[:c.a.Dim()], state[c.a.Dim():], nil
}

// Value returns the larger of the two independent sub-margins.
func (c *CoupledPair) Value(state []float64) (float64, error) {
	sa, sb, err := c.split(state)
	if err != nil {
		return 0, err
	}
	va, err := c.a.Value(sa)
	if err != nil {
		return 0, err
	}
	vb, err := c.b.Value(sb)
	if err != nil {
		return 0, err
	}
	if va >= vb {
		return va, nil
	}
	return vb, nil
}

// Gradient returns the dominant (larger-margin) subsystem's partials in its
// own slots and zeros in the other subsystem's slots. Ties go to the first
// operand, mirroring Value.
func (c *CoupledPair) Gradient(state []float64) ([]float64, error) {
	sa, sb, err := c.split(state)
	if err != nil {
		return nil, err
	}
	va, err := c.a.Value(sa)
	if err != nil {
		return nil, err
	}
	vb, err := c.b.Value(sb)
	if err != nil {
		return nil, err
	}
	grad := make([]float64, c.Dim())
	if va >= vb {
		sub, err := c.a.Gradient(sa)
		if err != nil {
			return nil, err
		}
		copy(grad, sub)
		return grad, nil
	}
	sub, err := c.b.Gradient(sb)
	if err != nil {
		return nil, err
	}
	copy(grad[c.a.Dim():], sub)
	return grad, nil
}
