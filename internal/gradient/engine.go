// Package gradient computes the FWI gradient by the adjoint-state method:
// a forward pass records synthetics and checkpoints the source wavefield,
// then a reverse pass reconstructs the source wavefield backward in time
// while the residual propagates forward, correlating the two into the
// gradient.
package gradient

import (
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/copyleftdev/TREMOR/internal/checkpoint"
	"github.com/copyleftdev/TREMOR/internal/fdm"
)

// DefaultCheckStep is the checkpoint stride K: the forward pass persists
// the wavefield pair every K steps, trading O(nt*grid/K) I/O for O(grid)
// memory.
const DefaultCheckStep = 50

// Time mute of the earliest reverse-correlation samples. Contributions
// fade in linearly between muteEnd and muteFull seconds; below muteEnd the
// reverse loop terminates.
const (
	muteEnd  = 0.3
	muteFull = 0.4
)

// Engine computes gradients on the propagator's currently bound velocity.
type Engine struct {
	prop  *fdm.Propagator
	src   *fdm.ShotPosition
	geo   *fdm.ShotPosition
	store checkpoint.Store

	// CheckStep is the checkpoint stride K.
	CheckStep int

	log *zap.Logger
}

// Result carries the gradient of one encoded super-shot together with the
// objective measured on the way.
type Result struct {
	// Gradient on the padded grid, unmasked.
	Gradient []float64
	// Objective is J = 1/2 ||encobs - dcal||^2 after direct-arrival removal.
	Objective float64
}

// NewEngine creates a gradient engine. The propagator must have the
// current velocity bound before Compute is called.
func NewEngine(prop *fdm.Propagator, src, geo *fdm.ShotPosition, store checkpoint.Store, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		prop:      prop,
		src:       src,
		geo:       geo,
		store:     store,
		CheckStep: DefaultCheckStep,
		log:       logger,
	}
}

// Modeling forward-propagates the encoded source through the bound model
// for nt steps and returns the synthetic gather dcal (nt*ng, receiver
// fast).
func Modeling(prop *fdm.Propagator, src, geo *fdm.ShotPosition, encsrc []float64, nt int) []float64 {
	g := prop.Grid()
	ns, ng := src.N, geo.N

	p0 := make([]float64, g.PadSize())
	p1 := make([]float64, g.PadSize())
	dcal := make([]float64, nt*ng)

	for it := 0; it < nt; it++ {
		prop.AddSource(p1, encsrc[it*ns:(it+1)*ns], src)
		prop.StepForward(p0, p1)
		prop.RecordSeis(dcal[it*ng:(it+1)*ng], p0, geo)
		p0, p1 = p1, p0
	}
	return dcal
}

// Compute runs the four gradient stages for one encoded super-shot.
// encobs is mutated in place by the direct-arrival removal, matching the
// outer loop which reuses the filtered data for the line search.
func (e *Engine) Compute(encsrc, encobs []float64, nt int, fm float64) (*Result, error) {
	ng := e.geo.N

	// Stage A: synthetics, residual and objective.
	dcal := Modeling(e.prop, e.src, e.geo, encsrc, nt)
	e.prop.RemoveDirectArrival(e.src, e.geo, encobs, nt, 1.5/fm)
	e.prop.RemoveDirectArrival(e.src, e.geo, dcal, nt, 1.5/fm)

	vsrc := make([]float64, nt*ng)
	floats.SubTo(vsrc, encobs, dcal)
	obj := 0.5 * floats.Dot(vsrc, vsrc)

	e.log.Debug("residual assembled",
		zap.Float64("objective", obj),
		zap.Int("nt", nt),
		zap.Int("ng", ng))

	// Stage B: second time derivative turns the residual into the virtual
	// adjoint source.
	transformResidual(vsrc, nt, ng)

	// Stage C: checkpointed forward pass for reconstruction.
	if err := e.forwardPropagate(encsrc, nt); err != nil {
		return nil, err
	}

	// Stage D: reverse correlation.
	grad, err := e.reverseCorrelate(encsrc, vsrc, nt)
	if err != nil {
		return nil, err
	}

	return &Result{Gradient: grad, Objective: obj}, nil
}

// forwardPropagate re-runs the forward modeling, persisting the wavefield
// pair every CheckStep steps and the final pair under the last keys.
func (e *Engine) forwardPropagate(encsrc []float64, nt int) error {
	g := e.prop.Grid()
	ns := e.src.N
	k := e.CheckStep

	p0 := make([]float64, g.PadSize())
	p1 := make([]float64, g.PadSize())

	for it := 0; it < nt; it++ {
		e.prop.AddSource(p1, encsrc[it*ns:(it+1)*ns], e.src)
		e.prop.StepForward(p0, p1)
		p0, p1 = p1, p0

		if it > 0 && it != nt-1 && it%k == 0 {
			if err := e.store.Save(checkpoint.Key(it, 1), p0); err != nil {
				return err
			}
			if err := e.store.Save(checkpoint.Key(it, 2), p1); err != nil {
				return err
			}
		}
	}

	if err := e.store.Save(checkpoint.LastKey(1), p0); err != nil {
		return err
	}
	return e.store.Save(checkpoint.LastKey(2), p1)
}

// reverseCorrelate walks time backward from nt-1, reconstructing the
// source wavefield from checkpoints while the virtual source propagates
// forward in the adjoint field, and accumulates their correlation into
// the gradient. The adjoint field starts at zero, the documented
// adjoint-state convention.
func (e *Engine) reverseCorrelate(encsrc, vsrc []float64, nt int) ([]float64, error) {
	g := e.prop.Grid()
	ns, ng := e.src.N, e.geo.N
	k := e.CheckStep
	dt := g.Dt

	sp0 := make([]float64, g.PadSize())
	sp1 := make([]float64, g.PadSize())
	gp0 := make([]float64, g.PadSize())
	gp1 := make([]float64, g.PadSize())
	grad := make([]float64, g.PadSize())

	for it := nt - 1; it >= 0; it-- {
		if it == nt-1 {
			if err := e.store.Load(checkpoint.LastKey(1), sp1); err != nil {
				return nil, err
			}
			if err := e.store.Load(checkpoint.LastKey(2), sp0); err != nil {
				return nil, err
			}
		} else if it%k == 0 && it != 0 {
			if err := e.store.Load(checkpoint.Key(it, 1), sp1); err != nil {
				return nil, err
			}
			if err := e.store.Load(checkpoint.Key(it, 2), sp0); err != nil {
				return nil, err
			}
		}

		e.prop.StepBackward(sp0, sp1)
		sp0, sp1 = sp1, sp0
		e.prop.SubSource(sp0, encsrc[it*ns:(it+1)*ns], e.src)

		e.prop.AddSource(gp1, vsrc[it*ng:(it+1)*ng], e.geo)
		e.prop.StepForward(gp0, gp1)
		gp0, gp1 = gp1, gp0

		t := dt * float64(it)
		switch {
		case t > muteFull:
			crossCorrelate(grad, sp0, gp0, 1.0)
		case t > muteEnd:
			crossCorrelate(grad, sp0, gp0, (t-muteEnd)/(muteFull-muteEnd))
		default:
			// The earliest samples contribute nothing.
			return grad, nil
		}
	}
	return grad, nil
}

// crossCorrelate accumulates image[i] -= src[i]*adj[i]*scale.
func crossCorrelate(image, src, adj []float64, scale float64) {
	for i := range image {
		image[i] -= src[i] * adj[i] * scale
	}
}
