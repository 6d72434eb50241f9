package obstacle

import "math/rand"

// DefaultDetectionProbability is the chance an obstacle is detected when a
// mask is resampled.
const DefaultDetectionProbability = 0.8

// MaskedScape decorates a Scape with an independently sampled per-obstacle
// detection mask modelling partial observability. The mask is resampled on
// an external trigger (typically a goal change) and pushed into the wrapped
// scape's undetected flags before every query.
type MaskedScape struct {
	*Scape
	detectProb float64
	mask       []bool
	r          *rand.Rand
}

// NewMaskedScape wraps a scape with a detection mask drawn per obstacle with
// the given probability. A nil rand source falls back to a fixed seed so
// scenario runs are reproducible by default. All obstacles start detected.
func NewMaskedScape(scape *Scape, detectProb float64, r *rand.Rand) *MaskedScape {
	if r == nil {
		//nolint:gosec
		r = rand.New(rand.NewSource(1))
	}
	mask := make([]bool, scape.Len())
	for i := range mask {
		mask[i] = true
	}
	return &MaskedScape{Scape: scape, detectProb: detectProb, mask: mask, r: r}
}

// ResampleMask independently redraws each obstacle's detected flag.
func (m *MaskedScape) ResampleMask() {
	for i := range m.mask {
		m.mask[i] = m.r.Float64() < m.detectProb
	}
}

// Mask returns a copy of the current per-obstacle detected flags.
func (m *MaskedScape) Mask() []bool {
	out := make([]bool, len(m.mask))
	copy(out, m.mask)
	return out
}

// UndetectionMask returns a copy of the mask inverted into undetected flags,
// the form telemetry events carry.
func (m *MaskedScape) UndetectionMask() []bool {
	out := make([]bool, len(m.mask))
	for i, detected := range m.mask {
		out[i] = !detected
	}
	return out
}

func (m *MaskedScape) applyMask() {
	for i, detected := range m.mask {
		m.Scape.SetUndetected(i, !detected)
	}
}

// Value applies the mask and delegates to the wrapped scape.
func (m *MaskedScape) Value(setID int, state []float64) (float64, error) {
	m.applyMask()
	return m.Scape.Value(setID, state)
}

// Gradient applies the mask and delegates to the wrapped scape.
func (m *MaskedScape) Gradient(setID int, state []float64) ([]float64, error) {
	m.applyMask()
	return m.Scape.Gradient(setID, state)
}

// CollisionValue applies the mask and delegates to the wrapped scape.
func (m *MaskedScape) CollisionValue(state []float64) (float64, int, error) {
	m.applyMask()
	return m.Scape.CollisionValue(state)
}
