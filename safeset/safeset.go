// Package safeset implements signed safety margin functions over robot state
// vectors. A safe set reports how far a state is from violating a safety
// property: positive values are safe, non-positive values are violating. The
// spatial gradient of the margin points toward safety and is consumed by the
// intervention controller to compute worst-case-optimal avoidance inputs.
package safeset

// A SafeSet answers value and gradient queries at arbitrary states.
//
// Value is a signed-distance-like margin with the convention that positive
// means safe and non-positive means unsafe. Gradient must be the spatial
// gradient of Value under the same sign convention, except at
// non-differentiable union boundaries where the gradient of the currently
// active branch is returned.
type SafeSet interface {
	// Dim returns the dimension of the state space the set is defined over.
	Dim() int

	// Value returns the signed safety margin at the given state.
	Value(state []float64) (float64, error)

	// Gradient returns the spatial gradient of Value at the given state.
	Gradient(state []float64) ([]float64, error)
}

// checkDim validates a state vector against a set's dimensionality before any
// indexing happens. A mismatch indicates a wiring bug and is surfaced rather
// than silently truncated.
func checkDim(dim int, state []float64) error {
	if len(state) != dim {
		return NewDimensionMismatchError(dim, len(state))
	}
	return nil
}
