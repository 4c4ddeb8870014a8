package fdm

import (
	"math"
)

// Velocity is a dense model on the padded grid carried in the transformed
// unit s = (dx / (dt*c))^2. The transform is bijective and strictly
// decreasing in the physical speed c, so clamps flip direction: the
// physical vmax maps to the transformed minimum.
type Velocity struct {
	Grid Grid
	Data []float64
}

// NewVelocity allocates a zero velocity model on the padded grid.
func NewVelocity(g Grid) *Velocity {
	return &Velocity{Grid: g, Data: make([]float64, g.PadSize())}
}

// Transform converts a physical speed (m/s) to the transformed unit.
func (g Grid) Transform(c float64) float64 {
	t := g.Dx / (g.Dt * c)
	return t * t
}

// Untransform converts a transformed value back to a physical speed (m/s).
func (g Grid) Untransform(s float64) float64 {
	return g.Dx / (g.Dt * math.Sqrt(s))
}

// ExpandDomain pads an interior physical-velocity model (m/s, nz*nx,
// z fast) onto the padded grid, converting to the transformed unit. Border
// cells are filled from the nearest interior edge cell.
func ExpandDomain(interior []float64, g Grid) *Velocity {
	v := expand(interior, g)
	for i, c := range v.Data {
		v.Data[i] = g.Transform(c)
	}
	return v
}

// ExpandDomainNoTrans pads an interior model onto the padded grid without
// converting units; values keep whatever unit the input carries.
func ExpandDomainNoTrans(interior []float64, g Grid) *Velocity {
	return expand(interior, g)
}

func expand(interior []float64, g Grid) *Velocity {
	v := NewVelocity(g)
	for ix := 0; ix < g.Nx; ix++ {
		for iz := 0; iz < g.Nz; iz++ {
			v.Data[g.InteriorIdx(iz, ix)] = interior[ix*g.Nz+iz]
		}
	}
	v.RefillBoundary()
	return v
}

// Interior copies the interior region out of the padded model, applying fn
// to each cell. fn is typically Grid.Untransform, or nil for a raw copy.
func (v *Velocity) Interior(fn func(float64) float64) []float64 {
	g := v.Grid
	out := make([]float64, g.Nz*g.Nx)
	for ix := 0; ix < g.Nx; ix++ {
		for iz := 0; iz < g.Nz; iz++ {
			s := v.Data[g.InteriorIdx(iz, ix)]
			if fn != nil {
				s = fn(s)
			}
			out[ix*g.Nz+iz] = s
		}
	}
	return out
}

// RefillBoundary resets every padded border cell to its nearest
// interior-edge cell. Called after each velocity update so the damping
// zone tracks the physical edge.
func (v *Velocity) RefillBoundary() {
	g := v.Grid
	nzp, nxp, nb := g.NzPad(), g.NxPad(), g.Nb
	for ix := 0; ix < nxp; ix++ {
		cx := clampInt(ix, nb, nxp-nb-1)
		for iz := 0; iz < nzp; iz++ {
			if ix >= nb && ix < nxp-nb && iz >= nb && iz < nzp-nb {
				continue
			}
			cz := clampInt(iz, nb, nzp-nb-1)
			v.Data[g.Idx(iz, ix)] = v.Data[g.Idx(cz, cx)]
		}
	}
}

// Clip clamps every cell into [smin, smax] (transformed units).
func (v *Velocity) Clip(smin, smax float64) {
	for i, s := range v.Data {
		if s < smin {
			v.Data[i] = smin
		} else if s > smax {
			v.Data[i] = smax
		}
	}
}

// Clone returns a deep copy of the model.
func (v *Velocity) Clone() *Velocity {
	out := &Velocity{Grid: v.Grid, Data: make([]float64, len(v.Data))}
	copy(out.Data, v.Data)
	return out
}

// MinMax returns the extreme transformed values of the model.
func (v *Velocity) MinMax() (smin, smax float64) {
	smin, smax = math.Inf(1), math.Inf(-1)
	for _, s := range v.Data {
		smin = math.Min(smin, s)
		smax = math.Max(smax, s)
	}
	return smin, smax
}

// CFLSatisfied reports whether every cell satisfies the stability bound
// s >= (dx/(dt*vmax))^2 for the given physical speed ceiling.
func (v *Velocity) CFLSatisfied(vmax float64) bool {
	smin, _ := v.MinMax()
	return smin >= v.Grid.Transform(vmax)
}

func clampInt(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
