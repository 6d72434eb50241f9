package safeset

import (
	"math"

	"github.com/pkg/errors"
)

// GradientStrategy selects how a grid value function estimates gradients.
type GradientStrategy int

const (
	// GradientCentered estimates each partial by a centered finite
	// difference of interpolated values a half grid spacing to either side.
	// The estimate is continuous everywhere, including off grid points.
	GradientCentered GradientStrategy = iota
	// GradientNearest differences the two grid points adjacent along the
	// axis, with all other axes rounded to their nearest grid index. The
	// estimate is piecewise constant between grid cells.
	GradientNearest
)

// GridMetadata describes a rectangular, optionally per-axis-periodic grid.
// Periodic axes wrap at Min + N*Dx.
type GridMetadata struct {
	Min      []float64
	Dx       []float64
	N        []int
	Periodic []bool
}

// Dim returns the number of grid axes.
func (m GridMetadata) Dim() int {
	return len(m.N)
}

// Validate checks the per-axis arrays agree in length and are well formed.
func (m GridMetadata) Validate() error {
	d := m.Dim()
	if d == 0 {
		return errors.New("grid metadata has no axes")
	}
	if len(m.Min) != d || len(m.Dx) != d || len(m.Periodic) != d {
		return errors.Errorf("grid metadata arrays disagree in length: min %d, dx %d, n %d, periodic %d",
			len(m.Min), len(m.Dx), d, len(m.Periodic))
	}
	for axis := 0; axis < d; axis++ {
		if m.N[axis] < 1 {
			return errors.Errorf("grid axis %d has %d points", axis, m.N[axis])
		}
		if m.Dx[axis] <= 0 {
			return errors.Errorf("grid axis %d has non-positive spacing %f", axis, m.Dx[axis])
		}
	}
	return nil
}

// GridValueFunction holds a precomputed scalar field over a rectangular grid
// and answers interpolated value and gradient queries at arbitrary states.
// The data is immutable after construction and may be shared read-only.
type GridValueFunction struct {
	meta     GridMetadata
	data     []float64
	strides  []int
	strategy GradientStrategy
}

// NewGridValueFunction wraps grid metadata and a row-major flattened data
// array whose length is the product of the per-axis point counts.
func NewGridValueFunction(meta GridMetadata, data []float64) (*GridValueFunction, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	size := 1
	for _, n := range meta.N {
		size *= n
	}
	if len(data) != size {
		return nil, errors.Errorf("grid data has %d entries, metadata implies %d", len(data), size)
	}
	d := meta.Dim()
	strides := make([]int, d)
	strides[d-1] = 1
	for axis := d - 2; axis >= 0; axis-- {
		strides[axis] = strides[axis+1] * meta.N[axis+1]
	}
	return &GridValueFunction{meta: meta, data: data, strides: strides, strategy: GradientCentered}, nil
}

// SetGradientStrategy switches between the named gradient estimators. The
// default is GradientCentered.
func (g *GridValueFunction) SetGradientStrategy(strategy GradientStrategy) {
	g.strategy = strategy
}

// Metadata returns the grid description.
func (g *GridValueFunction) Metadata() GridMetadata {
	return g.meta
}

// Dim returns the state-space dimension.
func (g *GridValueFunction) Dim() int {
	return g.meta.Dim()
}

// At returns the stored datum at exact grid indices, without bounds
// correction. Indices must already be in range.
func (g *GridValueFunction) At(indices []int) float64 {
	flat := 0
	for axis, idx := range indices {
		flat += idx * g.strides[axis]
	}
	return g.data[flat]
}

// wrapIndex maps any integer index onto [0, n) for a periodic axis.
func wrapIndex(idx, n int) int {
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}

func clampIndex(idx, n int) int {
	if idx < 0 {
		return 0
	}
	if idx > n-1 {
		return n - 1
	}
	return idx
}

// cell locates the grid cell enclosing the state: the lower and upper corner
// index per axis, and the fractional position of the state within the cell.
// States exactly on a grid line collapse to that line with fraction zero.
// Periodic axes wrap both corners; non-periodic axes clamp, pinning states
// outside the grid to the boundary value.
func (g *GridValueFunction) cell(state []float64) (low, high []int, frac []float64, err error) {
	if g.data == nil {
		return nil, nil, nil, ErrGridNotLoaded
	}
	if err := checkDim(g.meta.Dim(), state); err != nil {
		return nil, nil, nil, err
	}
	d := g.meta.Dim()
	low = make([]int, d)
	high = make([]int, d)
	frac = make([]float64, d)
	for axis := 0; axis < d; axis++ {
		n := g.meta.N[axis]
		rel := (state[axis] - g.meta.Min[axis]) / g.meta.Dx[axis]
		lo := int(math.Floor(rel))
		t := rel - float64(lo)
		if g.meta.Periodic[axis] {
			low[axis] = wrapIndex(lo, n)
			high[axis] = wrapIndex(lo+1, n)
			frac[axis] = t
			continue
		}
		switch {
		case lo < 0:
			lo, t = 0, 0
		case lo > n-1:
			lo, t = n-1, 0
		}
		low[axis] = lo
		high[axis] = clampIndex(lo+1, n)
		frac[axis] = t
	}
	return low, high, frac, nil
}

// Value performs multilinear interpolation of the stored field at the state.
// All 2^D corners of the enclosing cell are enumerated by bit pattern and
// weighted by the product of per-axis fractional distances to the opposite
// corner. The result is exact at grid points and reduces to bilinear and
// trilinear interpolation in two and three dimensions.
func (g *GridValueFunction) Value(state []float64) (float64, error) {
	low, high, frac, err := g.cell(state)
	if err != nil {
		return 0, err
	}
	d := g.meta.Dim()
	sum := 0.0
	for corner := 0; corner < 1<<uint(d); corner++ {
		weight := 1.0
		flat := 0
		for axis := 0; axis < d; axis++ {
			if corner&(1<<uint(axis)) != 0 {
				weight *= frac[axis]
				flat += high[axis] * g.strides[axis]
			} else {
				weight *= 1 - frac[axis]
				flat += low[axis] * g.strides[axis]
			}
		}
		if weight != 0 {
			sum += weight * g.data[flat]
		}
	}
	return sum, nil
}

// Gradient estimates the spatial gradient of Value using the configured
// strategy.
func (g *GridValueFunction) Gradient(state []float64) ([]float64, error) {
	if g.strategy == GradientNearest {
		return g.nearestGradient(state)
	}
	return g.centeredGradient(state)
}

func (g *GridValueFunction) centeredGradient(state []float64) ([]float64, error) {
	if g.data == nil {
		return nil, ErrGridNotLoaded
	}
	if err := checkDim(g.meta.Dim(), state); err != nil {
		return nil, err
	}
	d := g.meta.Dim()
	grad := make([]float64, d)
	shifted := make([]float64, d)
	copy(shifted, state)
	for axis := 0; axis < d; axis++ {
		half := g.meta.Dx[axis] / 2
		shifted[axis] = state[axis] + half
		above, err := g.Value(shifted)
		if err != nil {
			return nil, err
		}
		shifted[axis] = state[axis] - half
		below, err := g.Value(shifted)
		if err != nil {
			return nil, err
		}
		shifted[axis] = state[axis]
		grad[axis] = (above - below) / g.meta.Dx[axis]
	}
	return grad, nil
}

func (g *GridValueFunction) nearestGradient(state []float64) ([]float64, error) {
	low, high, frac, err := g.cell(state)
	if err != nil {
		return nil, err
	}
	d := g.meta.Dim()
	// Round every axis to its nearest grid index as the base point.
	base := make([]int, d)
	for axis := 0; axis < d; axis++ {
		if frac[axis] < 0.5 {
			base[axis] = low[axis]
		} else {
			base[axis] = high[axis]
		}
	}
	grad := make([]float64, d)
	indices := make([]int, d)
	for axis := 0; axis < d; axis++ {
		if g.meta.N[axis] < 2 {
			continue
		}
		copy(indices, base)
		indices[axis] = low[axis]
		lower := g.At(indices)
		hi := high[axis]
		if hi == low[axis] {
			// Clamped against the upper boundary; difference the last cell.
			indices[axis] = low[axis] - 1
			lower = g.At(indices)
			hi = low[axis]
		}
		indices[axis] = hi
		grad[axis] = (g.At(indices) - lower) / g.meta.Dx[axis]
	}
	return grad, nil
}

// Indices returns the low and high grid indices enclosing the state along
// each axis. With wrap true, periodic axes wrap into [0, N) and non-periodic
// axes clamp; with wrap false, all axes clamp. This is the shared index
// helper used by rendering collaborators enumerating grid samples.
func (g *GridValueFunction) Indices(state []float64, wrap bool) (low, high []int, err error) {
	if g.data == nil {
		return nil, nil, ErrGridNotLoaded
	}
	if err := checkDim(g.meta.Dim(), state); err != nil {
		return nil, nil, err
	}
	d := g.meta.Dim()
	low = make([]int, d)
	high = make([]int, d)
	for axis := 0; axis < d; axis++ {
		n := g.meta.N[axis]
		rel := (state[axis] - g.meta.Min[axis]) / g.meta.Dx[axis]
		lo := int(math.Floor(rel))
		hi := int(math.Ceil(rel))
		if wrap && g.meta.Periodic[axis] {
			low[axis] = wrapIndex(lo, n)
			high[axis] = wrapIndex(hi, n)
		} else {
			low[axis] = clampIndex(lo, n)
			high[axis] = clampIndex(hi, n)
		}
	}
	return low, high, nil
}
