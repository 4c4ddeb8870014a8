// Package fdm implements the finite-difference modeling core of TREMOR: the
// padded 2-D grid, the transformed-unit velocity model, shot geometry, the
// Ricker source wavelet and the damped 4th/10th-order wave propagator.
package fdm

// Grid describes the interior nz x nx cell grid with uniform spacing
// Dx = Dz, expanded by Nb cells on every side into the padded grid that
// hosts the damping zone. All wavefields and the velocity model live on
// the padded grid, indexed (iz, ix) with z fast.
type Grid struct {
	Nz, Nx int
	Nb     int
	Dx     float64
	Dt     float64
}

// NzPad returns the padded grid height.
func (g Grid) NzPad() int { return g.Nz + 2*g.Nb }

// NxPad returns the padded grid width.
func (g Grid) NxPad() int { return g.Nx + 2*g.Nb }

// PadSize returns the number of cells of the padded grid.
func (g Grid) PadSize() int { return g.NzPad() * g.NxPad() }

// Idx maps padded-grid coordinates to the linear index.
func (g Grid) Idx(iz, ix int) int { return ix*g.NzPad() + iz }

// InteriorIdx maps interior coordinates to the linear padded index.
func (g Grid) InteriorIdx(iz, ix int) int {
	return (ix+g.Nb)*g.NzPad() + iz + g.Nb
}
