package linesearch

import (
	"math"

	"go.uber.org/zap"

	"github.com/copyleftdev/TREMOR/internal/inversion"
)

// MaxHalvings bounds the bracket-left loop.
const MaxHalvings = 5

// colinearTol marks a near-degenerate parabolic fit: the two secant
// slopes differ by less than this fraction of their magnitude.
const colinearTol = 0.001

// Outcome is the result of one step-length search.
type Outcome struct {
	// Alpha is the accepted step length.
	Alpha float64
	// Objective is the misfit at Alpha. NaN when the parabolic fit was
	// degenerate: the vertex value is then unknown.
	Objective float64
	// Parabolic reports whether the bracket succeeded and the parabolic
	// fit produced Alpha. False means a fallback branch picked the best
	// candidate ever tried.
	Parabolic bool
	// Degenerate reports a near-colinear triple: Alpha was forced to
	// min(2*alpha3, cap) instead of the vertex.
	Degenerate bool
}

// point is one tried (alpha, J) candidate.
type point struct {
	alpha, j float64
}

// Searcher runs the bracket plus parabolic-vertex step selection.
type Searcher struct {
	log *zap.Logger
}

// New creates a searcher.
func New(logger *zap.Logger) *Searcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Searcher{log: logger}
}

// Search brackets a minimum of obj along the ray starting from the
// candidate pair (alpha2, alpha3) and returns the accepted step. j1 is
// the known misfit at alpha = 0; maxAlpha3 is the physics cap. Numerical
// degeneracies are recovered locally and reported in the Outcome, never
// as errors; only objective evaluation failures propagate.
func (s *Searcher) Search(obj inversion.Objective, j1, alpha2, alpha3, maxAlpha3 float64) (Outcome, error) {
	j2, err := obj.At(alpha2)
	if err != nil {
		return Outcome{}, err
	}
	j3, err := obj.At(alpha3)
	if err != nil {
		return Outcome{}, err
	}

	tried := []point{{alpha2, j2}, {alpha3, j3}}

	// Bracket-left: halve alpha2 until the misfit drops below j1.
	for iter := 0; iter < MaxHalvings && j2 > j1; iter++ {
		alpha3, j3 = alpha2, j2
		alpha2 /= 2
		if j2, err = obj.At(alpha2); err != nil {
			return Outcome{}, err
		}
		tried = append(tried, point{alpha2, j2})
		s.log.Debug("bracket left",
			zap.Float64("alpha2", alpha2),
			zap.Float64("obj2", j2))
	}

	if j2 > j1 {
		// Fallback-left: no candidate beat j1 within the halving budget.
		// Take the best candidate ever tried as alpha2, probe one doubled
		// step, and accept whichever of the tried points has the lowest
		// misfit.
		s.log.Warn("line search exhausted halving budget, selecting best tried alpha",
			zap.Float64("obj1", j1))
		best := minPoint(tried)
		alpha2, j2 = best.alpha, best.j
		alpha3 = math.Min(2*alpha2, maxAlpha3)
		if j3, err = obj.At(alpha3); err != nil {
			return Outcome{}, err
		}
		tried = append(tried, point{alpha3, j3})
		best = minPoint(tried)
		return Outcome{Alpha: best.alpha, Objective: best.j}, nil
	}

	// Bracket-right: while the misfit keeps dropping faster than the
	// linear extrapolation through (0, j1) and (alpha2, j2), double
	// alpha3 up to the cap.
	linearFit := (j2-j1)/alpha2*alpha3 + j1
	tried = tried[:0]
	tried = append(tried, point{alpha3, j3})

	for j3 < linearFit && j3 < j1 && alpha3 < maxAlpha3 {
		alpha2, j2 = alpha3, j3
		alpha3 = math.Min(2*alpha3, maxAlpha3)
		if j3, err = obj.At(alpha3); err != nil {
			return Outcome{}, err
		}
		tried = append(tried, point{alpha3, j3})
		s.log.Debug("bracket right",
			zap.Float64("alpha3", alpha3),
			zap.Float64("obj3", j3))
	}

	if alpha3 > maxAlpha3 {
		// Fallback-right: alpha3 lies beyond the physics cap. The doubling
		// is clamped to the cap, so this happens only when alpha3 entered
		// the bracket-right stage already above it.
		s.log.Warn("line search exceeded the step cap, selecting best tried alpha",
			zap.Float64("max_alpha3", maxAlpha3))
		best := minPoint(tried)
		alpha3, j3 = best.alpha, best.j
		alpha2 = alpha3 / 2
		if j2, err = obj.At(alpha2); err != nil {
			return Outcome{}, err
		}
		tried = append(tried, point{alpha2, j2})
		best = minPoint(tried)
		return Outcome{Alpha: best.alpha, Objective: best.j}, nil
	}

	alpha4, j4, degenerate := parabolaVertex(0, j1, alpha2, j2, alpha3, j3, maxAlpha3)
	if degenerate {
		s.log.Warn("parabolic fit degenerate, stepping to the cap",
			zap.Float64("alpha4", alpha4))
	}
	if alpha4 > maxAlpha3 {
		alpha4 = maxAlpha3
	}
	return Outcome{Alpha: alpha4, Objective: j4, Parabolic: true, Degenerate: degenerate}, nil
}

// parabolaVertex fits a parabola through three points and returns its
// vertex. A near-colinear triple or a failed fit is degenerate: the
// abscissa is forced to min(2*x3, maxX) and the ordinate to NaN.
func parabolaVertex(x1, y1, x2, y2, x3, y3, maxX float64) (xv, yv float64, degenerate bool) {
	denom := (x1 - x2) * (x1 - x3) * (x2 - x3)
	a := (x3*(y2-y1) + x2*(y1-y3) + x1*(y3-y2)) / denom
	b := (x3*x3*(y1-y2) + x2*x2*(y3-y1) + x1*x1*(y2-y3)) / denom
	c := (x2*x3*(x2-x3)*y1 + x3*x1*(x3-x1)*y2 + x1*x2*(x1-x2)*y3) / denom

	xv = -b / (2 * a)
	yv = c - b*b/(4*a)

	k1 := (y2 - y1) / (x2 - x1)
	k2 := (y3 - y2) / (x3 - x2)
	if math.Abs(k2-k1) < colinearTol*math.Max(math.Abs(k1), math.Abs(k2)) || math.IsNaN(xv) {
		xv = math.Min(2*x3, maxX)
		yv = math.NaN()
		degenerate = true
	}
	return xv, yv, degenerate
}

func minPoint(pts []point) point {
	best := pts[0]
	for _, p := range pts[1:] {
		if p.j < best.j {
			best = p
		}
	}
	return best
}
