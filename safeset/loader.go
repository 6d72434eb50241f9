package safeset

import (
	"context"

	"github.com/pkg/errors"
)

// A GridSource supplies precomputed grid data. Sources typically front an
// asynchronous fetch from disk or network; the Grid call blocks until the
// data is available or the context is done.
type GridSource interface {
	Grid(ctx context.Context) (GridMetadata, []float64, error)
}

// LoadGrid performs the explicit load phase for a grid value function. It is
// the only way to obtain a queryable grid: construction fails rather than
// producing a function that would answer queries from missing data.
func LoadGrid(ctx context.Context, src GridSource) (*GridValueFunction, error) {
	meta, data, err := src.Grid(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "loading grid value function")
	}
	return NewGridValueFunction(meta, data)
}

// StaticGridSource serves already-parsed grid data from memory.
type StaticGridSource struct {
	Meta GridMetadata
	Data []float64
}

// Grid returns the held metadata and data.
func (s *StaticGridSource) Grid(ctx context.Context) (GridMetadata, []float64, error) {
	return s.Meta, s.Data, nil
}

// FlattenNested converts the nested row-major arrays produced by decoding a
// grid data file into the flat layout NewGridValueFunction expects, checking
// the shape against the metadata along the way.
func FlattenNested(nested interface{}, meta GridMetadata) ([]float64, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	size := 1
	for _, n := range meta.N {
		size *= n
	}
	out := make([]float64, 0, size)
	var walk func(node interface{}, axis int) error
	walk = func(node interface{}, axis int) error {
		if axis == meta.Dim() {
			switch v := node.(type) {
			case float64:
				out = append(out, v)
				return nil
			case int:
				out = append(out, float64(v))
				return nil
			default:
				return errors.Errorf("grid leaf at depth %d is %T, expected a number", axis, node)
			}
		}
		slice, ok := node.([]interface{})
		if !ok {
			return errors.Errorf("grid data at depth %d is %T, expected an array", axis, node)
		}
		if len(slice) != meta.N[axis] {
			return errors.Errorf("grid data has %d entries along axis %d, metadata says %d", len(slice), axis, meta.N[axis])
		}
		for _, child := range slice {
			if err := walk(child, axis+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(nested, 0); err != nil {
		return nil, err
	}
	return out, nil
}

// SampleOntoGrid builds a grid value function by evaluating a safe set at
// every grid point described by the metadata. This is how "pixelwise"
// palette entries are produced from analytic sets.
func SampleOntoGrid(set SafeSet, meta GridMetadata) (*GridValueFunction, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	if set.Dim() != meta.Dim() {
		return nil, errors.Errorf("cannot sample %d-dimensional set onto %d-dimensional grid", set.Dim(), meta.Dim())
	}
	size := 1
	for _, n := range meta.N {
		size *= n
	}
	d := meta.Dim()
	data := make([]float64, size)
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
		}
		v, err := set.Value(state)
		if err != nil {
			return nil, err
		}
		data[flat] = v
	}
	return NewGridValueFunction(meta, data)
}
