package safeset

import "github.com/pkg/errors"

// ErrGridNotLoaded is returned when a grid value function is queried before
// its backing data has been loaded.
var ErrGridNotLoaded = errors.New("grid value function queried before data was loaded")

// NewDimensionMismatchError returns an error for a state vector whose length
// disagrees with the dimensionality of the set it was passed to.
func NewDimensionMismatchError(want, got int) error {
	return errors.Errorf("state vector has dimension %d, safe set expects %d", got, want)
}

// NewPaletteIndexError returns an error for a set identifier outside the
// bounds of a palette.
func NewPaletteIndexError(id, size int) error {
	return errors.Errorf("set identifier %d out of range for palette of %d sets", id, size)
}
