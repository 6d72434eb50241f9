package safeset

import (
	"gonum.org/v1/gonum/mat"

	"github.com/pkg/errors"
)

// SampleGrid evaluates a safe set at every point of the grid described by
// the metadata and returns a dense matrix with one row per grid point: the
// point's coordinates followed by the set value there. Rendering
// collaborators consume this to draw level sets; the core does no drawing.
func SampleGrid(set SafeSet, meta GridMetadata) (*mat.Dense, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	if set.Dim() != meta.Dim() {
		return nil, errors.Errorf("cannot sample %d-dimensional set over %d-dimensional grid", set.Dim(), meta.Dim())
	}
	d := meta.Dim()
	size := 1
	for _, n := range meta.N {
		size *= n
	}
	out := mat.NewDense(size, d+1, nil)
	indices := make([]int, d)
	state := make([]float64, d)
	for flat := 0; flat < size; flat++ {
		rem := flat
		for axis := d - 1; axis >= 0; axis-- {
			indices[axis] = rem % meta.N[axis]
			rem /= meta.N[axis]
		}
		for axis := 0; axis < d; axis++ {
			state[axis] = meta.Min[axis] + float64(indices[axis])*meta.Dx[axis]
			out.Set(flat, axis, state[axis])
		}
		v, err := set.Value(state)
		if err != nil {
			return nil, err
		}
		out.Set(flat, d, v)
	}
	return out, nil
}
