package gradient

import (
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/copyleftdev/TREMOR/internal/fdm"
	"github.com/copyleftdev/TREMOR/internal/inversion"
)

// Direct-arrival window half-width (seconds) for line-search synthetics.
// Fixed, unlike the 1.5/fm window the gradient stage applies to the
// residual.
const trialArrivalWidth = 0.15

// TrialObjective measures the encoded-super-shot misfit along the search
// ray: J(alpha) = 1/2 ||encobs - dcal(clip(v + alpha*d))||^2. It
// implements inversion.Objective as a stochastic estimate of the full
// multi-shot misfit. encobs must already have the direct arrival removed
// by the gradient stage.
type TrialObjective struct {
	base    *fdm.Velocity
	dir     []float64
	smin    float64
	smax    float64
	src     *fdm.ShotPosition
	geo     *fdm.ShotPosition
	encsrc  []float64
	encobs  []float64
	nt      int
	workers int
	log     *zap.Logger
}

// NewTrialObjective builds the line-search objective for the current
// iteration. smin and smax are the transformed-unit clamps.
func NewTrialObjective(base *fdm.Velocity, dir []float64, smin, smax float64,
	src, geo *fdm.ShotPosition, encsrc, encobs []float64, nt, workers int,
	logger *zap.Logger) *TrialObjective {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrialObjective{
		base:    base,
		dir:     dir,
		smin:    smin,
		smax:    smax,
		src:     src,
		geo:     geo,
		encsrc:  encsrc,
		encobs:  encobs,
		nt:      nt,
		workers: workers,
		log:     logger,
	}
}

// At implements inversion.Objective.
func (t *TrialObjective) At(alpha float64) (float64, error) {
	vtmp := t.base.Clone()
	floats.AddScaled(vtmp.Data, alpha, t.dir)
	vtmp.Clip(t.smin, t.smax)

	prop := fdm.NewPropagator(t.base.Grid, t.workers, t.log)
	prop.BindVelocity(vtmp)

	ng := t.geo.N
	dcal := Modeling(prop, t.src, t.geo, t.encsrc, t.nt)
	prop.RemoveDirectArrival(t.src, t.geo, dcal, t.nt, trialArrivalWidth)

	vdiff := make([]float64, t.nt*ng)
	floats.SubTo(vdiff, t.encobs, dcal)
	val := 0.5 * floats.Dot(vdiff, vdiff)

	t.log.Debug("trial objective",
		zap.Float64("alpha", alpha),
		zap.Float64("objective", val))
	return val, nil
}

var _ inversion.Objective = (*TrialObjective)(nil)
