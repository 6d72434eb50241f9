package safeset

import "github.com/pkg/errors"

// A Palette is an ordered collection of interchangeable safe sets over the
// same state space, selectable at runtime by a stable integer identifier.
// Entries are alternative estimates of one safety property (raw, sampled,
// conservative), not distinct obstacles.
type Palette struct {
	sets []SafeSet
}

// NewPalette creates a palette from one or more sets of equal dimension.
func NewPalette(sets ...SafeSet) (*Palette, error) {
	if len(sets) == 0 {
		return nil, errors.New("palette needs at least one safe set")
	}
	dim := sets[0].Dim()
	for i, set := range sets {
		if set.Dim() != dim {
			return nil, errors.Errorf("palette set %d has dimension %d, expected %d", i, set.Dim(), dim)
		}
	}
	return &Palette{sets: sets}, nil
}

// Dim returns the shared state-space dimension.
func (p *Palette) Dim() int {
	return p.sets[0].Dim()
}

// Len returns the number of sets in the palette.
func (p *Palette) Len() int {
	return len(p.sets)
}

// Set returns the set registered under the given identifier.
func (p *Palette) Set(id int) (SafeSet, error) {
	if id < 0 || id >= len(p.sets) {
		return nil, NewPaletteIndexError(id, len(p.sets))
	}
	return p.sets[id], nil
}

// Value dispatches a value query to the identified set.
func (p *Palette) Value(id int, state []float64) (float64, error) {
	set, err := p.Set(id)
	if err != nil {
		return 0, err
	}
	return set.Value(state)
}

// Gradient dispatches a gradient query to the identified set.
func (p *Palette) Gradient(id int, state []float64) ([]float64, error) {
	set, err := p.Set(id)
	if err != nil {
		return nil, err
	}
	return set.Gradient(state)
}
