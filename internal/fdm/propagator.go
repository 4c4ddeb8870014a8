package fdm

import (
	"math"

	"go.uber.org/zap"
)

// Spatial stencil coefficients, Zhang Jinhai's 10th-order isotropic set.
// Applied on the cross stencil (four axis-aligned arms of radius 1..5).
var stencilA = [6]float64{
	+1.53400796,
	+1.78858721,
	-0.31660756,
	+0.07612173,
	-0.01626042,
	+0.00216736,
}

const (
	// stencilD is the write margin: the update never touches the outermost
	// d rows/columns, the Laplacian scratch never touches the outermost d-1.
	stencilD = 6

	// maxDelta is the damping coefficient at the outer padded edge.
	maxDelta = 0.05

	// gradTopTaper counts extra interior rows below the free surface that
	// the gradient mask zeroes together with the padded border.
	gradTopTaper = 2
)

// Propagator advances a pressure wavefield on the padded grid with a
// 10th-order-in-space, 2nd-order-in-time scheme plus a 4th-order time
// correction, and absorbs energy in a quadratic damping zone on the side
// and bottom margins. The top margin is a free surface and is not damped.
//
// Step kernels write the new field into p0 in place, so callers rotate
// buffers by swapping p0 and p1 after each step. StepBackward is the
// symbolically identical kernel; time reversal comes from the caller
// swapping the roles of the previous and next fields.
type Propagator struct {
	grid    Grid
	vel     *Velocity
	u2      []float64
	workers int
	log     *zap.Logger
}

// NewPropagator creates a propagator for the given padded grid. workers
// bounds the fork-join parallelism of the kernels (0 = one per CPU).
func NewPropagator(g Grid, workers int, logger *zap.Logger) *Propagator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Propagator{
		grid:    g,
		u2:      make([]float64, g.PadSize()),
		workers: workers,
		log:     logger,
	}
}

// Grid returns the padded grid the propagator steps on.
func (p *Propagator) Grid() Grid { return p.grid }

// Velocity returns the currently bound model.
func (p *Propagator) Velocity() *Velocity { return p.vel }

// BindVelocity attaches the transformed-unit model used by the step
// kernels. The model must live on the propagator's grid.
func (p *Propagator) BindVelocity(v *Velocity) {
	p.vel = v
}

// StepForward advances one time step: reads the current field p1 and the
// previous field p0, and overwrites p0 with the next field.
func (p *Propagator) StepForward(p0, p1 []float64) {
	p.step(p0, p1)
}

// StepBackward retreats one time step during source-wavefield
// reconstruction. The kernel is identical to StepForward; reversibility
// is achieved by the caller's buffer roles.
func (p *Propagator) StepBackward(p0, p1 []float64) {
	p.step(p0, p1)
}

func (p *Propagator) step(p0, p1 []float64) {
	g := p.grid
	nzp, nxp, nb := g.NzPad(), g.NxPad(), g.Nb
	vel := p.vel.Data
	u2 := p.u2
	a := stencilA

	forkJoin(p.workers, stencilD-1, nxp-(stencilD-1), func(lo, hi int) {
		for ix := lo; ix < hi; ix++ {
			for iz := stencilD - 1; iz < nzp-(stencilD-1); iz++ {
				i := ix*nzp + iz
				u2[i] = -4.0*a[0]*p1[i] +
					a[1]*(p1[i-1]+p1[i+1]+p1[i-nzp]+p1[i+nzp]) +
					a[2]*(p1[i-2]+p1[i+2]+p1[i-2*nzp]+p1[i+2*nzp]) +
					a[3]*(p1[i-3]+p1[i+3]+p1[i-3*nzp]+p1[i+3*nzp]) +
					a[4]*(p1[i-4]+p1[i+4]+p1[i-4*nzp]+p1[i+4*nzp]) +
					a[5]*(p1[i-5]+p1[i+5]+p1[i-5*nzp]+p1[i+5*nzp])
			}
		}
	})

	forkJoin(p.workers, stencilD, nxp-stencilD, func(lo, hi int) {
		for ix := lo; ix < hi; ix++ {
			for iz := stencilD; iz < nzp-stencilD; iz++ {
				var dist float64
				if nb > 0 {
					if ix < nb {
						dist = float64(nb-ix) / float64(nb)
					}
					if ix >= nxp-nb {
						dist = float64(ix-(nxp-nb)+1) / float64(nb)
					}
					if iz >= nzp-nb {
						dist = float64(iz-(nzp-nb)+1) / float64(nb)
					}
				}
				delta := maxDelta * dist * dist

				i := ix*nzp + iz
				s := vel[i]
				p0[i] = (2.0-2.0*delta+delta*delta)*p1[i] - (1.0-2.0*delta)*p0[i] +
					(1.0/s)*u2[i] +
					1.0/12.0*(1.0/s)*(1.0/s)*
						(u2[i-1]+u2[i+1]+u2[i-nzp]+u2[i+nzp]-4.0*u2[i])
			}
		}
	})
}

// AddSource injects one sample per source point into the field.
func (p *Propagator) AddSource(field, samples []float64, pos *ShotPosition) {
	for i := 0; i < pos.N; i++ {
		field[pos.PadIdx(p.grid, i)] += samples[i]
	}
}

// SubSource removes previously injected samples, reversing AddSource
// during source-wavefield reconstruction.
func (p *Propagator) SubSource(field, samples []float64, pos *ShotPosition) {
	for i := 0; i < pos.N; i++ {
		field[pos.PadIdx(p.grid, i)] -= samples[i]
	}
}

// RecordSeis samples the field at the receiver positions into out[0..ng).
func (p *Propagator) RecordSeis(out, field []float64, pos *ShotPosition) {
	for i := 0; i < pos.N; i++ {
		out[i] = field[pos.PadIdx(p.grid, i)]
	}
}

// RemoveDirectArrival zeroes every sample of data (nt*ng, time slow) that
// lies within tWidth seconds of the straight-ray travel time from any
// source to the receiver. The ray speed is approximated by the mean of the
// physical speeds at the two endpoints of the ray.
func (p *Propagator) RemoveDirectArrival(src, geo *ShotPosition, data []float64, nt int, tWidth float64) {
	g := p.grid
	ng := geo.N
	for is := 0; is < src.N; is++ {
		sz, sx := src.At(is)
		cs := g.Untransform(p.vel.Data[src.PadIdx(g, is)])
		for ig := 0; ig < ng; ig++ {
			gz, gx := geo.At(ig)
			cr := g.Untransform(p.vel.Data[geo.PadIdx(g, ig)])
			dz := float64(gz-sz) * g.Dx
			dx := float64(gx-sx) * g.Dx
			t0 := math.Hypot(dz, dx) / (0.5 * (cs + cr))

			itLo := int(math.Ceil((t0 - tWidth) / g.Dt))
			itHi := int(math.Floor((t0 + tWidth) / g.Dt))
			if itLo < 0 {
				itLo = 0
			}
			if itHi > nt-1 {
				itHi = nt - 1
			}
			for it := itLo; it <= itHi; it++ {
				data[it*ng+ig] = 0
			}
		}
	}
}

// MaskGradient zeroes the gradient in the padded border and in the top
// interior rows next to the free surface.
func (p *Propagator) MaskGradient(grad []float64) {
	g := p.grid
	nzp, nxp, nb := g.NzPad(), g.NxPad(), g.Nb
	top := nb + gradTopTaper
	for ix := 0; ix < nxp; ix++ {
		for iz := 0; iz < nzp; iz++ {
			if ix < nb || ix >= nxp-nb || iz >= nzp-nb || iz < top {
				grad[ix*nzp+iz] = 0
			}
		}
	}
}

// CheckStability warns when the bound model violates the CFL bound for the
// given physical speed ceiling. The clamp bounds recover the violation on
// the next update, so this never aborts.
func (p *Propagator) CheckStability(vmax float64) bool {
	if p.vel.CFLSatisfied(vmax) {
		return true
	}
	p.log.Warn("velocity model violates the CFL stability bound",
		zap.Float64("vmax", vmax),
		zap.Float64("smin_required", p.grid.Transform(vmax)))
	return false
}
