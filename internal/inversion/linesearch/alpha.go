// Package linesearch selects the velocity-update step length: a physics
// cap bounds the per-cell velocity change, a bracket state machine walks
// candidate steps, and a parabolic fit picks the vertex.
package linesearch

import (
	"math"

	"github.com/copyleftdev/TREMOR/internal/fdm"
)

const (
	// minAlpha and resetAlpha guard the persisted initial step: a
	// collapsed alpha from a previous iteration restarts at resetAlpha.
	minAlpha   = 1.0e-7
	resetAlpha = 1.0e-4

	// dirEps skips cells whose direction component is numerically zero
	// when computing the physics cap.
	dirEps = 1.0e-10
)

// AlphaState persists the chosen step length across outer iterations. It
// is owned by the driver and threaded through each search, so no global
// registry is involved.
type AlphaState struct {
	alpha       float64
	initialized bool
}

// Init seeds the state with the physics cap on first use and returns the
// initial candidate pair (alpha2, alpha3) for this iteration.
func (s *AlphaState) Init(maxAlpha3 float64) (alpha2, alpha3 float64) {
	if !s.initialized {
		s.initialized = true
		s.alpha = maxAlpha3
	}
	alpha3 = s.alpha
	if alpha3 < minAlpha {
		alpha3 = resetAlpha
	}
	return alpha3 / 2, alpha3
}

// Store records the accepted step length for the next iteration.
func (s *AlphaState) Store(alpha float64) { s.alpha = alpha }

// Value returns the persisted step length.
func (s *AlphaState) Value() float64 { return s.alpha }

// CapAlpha computes the step-length caps from maxdv meters per second.
// For each cell with a non-negligible direction component, sShifted is the
// transformed value of the speed lowered by maxdv, and the cell's cap is
// (sShifted - s)/|d|; the cap is the minimum over cells, and alpha3's cap
// is twice that. At maxAlpha2 a cell whose step raises s slows by at most
// maxdv; a cell whose step lowers s speeds up by more than maxdv at the
// same |alpha*d|, because the transform is not linear.
func CapAlpha(vel *fdm.Velocity, dir []float64, maxdv float64) (maxAlpha2, maxAlpha3 float64) {
	g := vel.Grid
	maxAlpha2 = math.Inf(1)
	for i, s := range vel.Data {
		if math.Abs(dir[i]) < dirEps {
			continue
		}
		c := g.Untransform(s) - maxdv
		if c <= 0 {
			continue
		}
		shifted := g.Transform(c)
		if cap := (shifted - s) / math.Abs(dir[i]); cap < maxAlpha2 {
			maxAlpha2 = cap
		}
	}
	if math.IsInf(maxAlpha2, 1) {
		// Zero direction: no step can change the model, any alpha is moot.
		return 0, 0
	}
	return maxAlpha2, 2 * maxAlpha2
}
