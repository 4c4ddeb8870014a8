package fdm

import (
	"math"
	"testing"
)

func testGrid() Grid {
	return Grid{Nz: 10, Nx: 12, Nb: 3, Dx: 10, Dt: 0.001}
}

func TestTransformRoundTrip(t *testing.T) {
	g := testGrid()
	for _, c := range []float64{1500, 2000, 2500.5, 3300, 5500} {
		s := g.Transform(c)
		back := g.Untransform(s)
		if math.Abs(back-c) > 1e-9*c {
			t.Errorf("round trip of %v gave %v", c, back)
		}
	}
}

func TestTransformDecreasing(t *testing.T) {
	g := testGrid()
	if g.Transform(2000) <= g.Transform(3000) {
		t.Error("transform must be strictly decreasing in the physical speed")
	}
}

func TestExpandDomainRefill(t *testing.T) {
	g := testGrid()
	interior := make([]float64, g.Nz*g.Nx)
	for ix := 0; ix < g.Nx; ix++ {
		for iz := 0; iz < g.Nz; iz++ {
			interior[ix*g.Nz+iz] = 2000 + float64(ix*g.Nz+iz)
		}
	}

	v := ExpandDomain(interior, g)
	nzp, nxp, nb := g.NzPad(), g.NxPad(), g.Nb

	// Interior cells carry the transformed input.
	for ix := 0; ix < g.Nx; ix++ {
		for iz := 0; iz < g.Nz; iz++ {
			want := g.Transform(interior[ix*g.Nz+iz])
			got := v.Data[g.InteriorIdx(iz, ix)]
			if math.Abs(got-want) > 1e-12*want {
				t.Fatalf("interior (%d,%d): got %v want %v", iz, ix, got, want)
			}
		}
	}

	// Every border cell equals its nearest interior-edge cell.
	for ix := 0; ix < nxp; ix++ {
		for iz := 0; iz < nzp; iz++ {
			if ix >= nb && ix < nxp-nb && iz >= nb && iz < nzp-nb {
				continue
			}
			cz := clampInt(iz, nb, nzp-nb-1)
			cx := clampInt(ix, nb, nxp-nb-1)
			if v.Data[g.Idx(iz, ix)] != v.Data[g.Idx(cz, cx)] {
				t.Fatalf("border (%d,%d) not refilled from (%d,%d)", iz, ix, cz, cx)
			}
		}
	}
}

func TestRefillAfterMutation(t *testing.T) {
	g := testGrid()
	interior := make([]float64, g.Nz*g.Nx)
	for i := range interior {
		interior[i] = 2500
	}
	v := ExpandDomain(interior, g)

	// Perturb an interior edge cell, then refill: the border above it must
	// track the new value.
	edge := g.InteriorIdx(0, 4)
	v.Data[edge] = 99
	v.RefillBoundary()
	for iz := 0; iz < g.Nb; iz++ {
		if v.Data[g.Idx(iz, 4+g.Nb)] != 99 {
			t.Fatalf("border row %d above the edge cell not refilled", iz)
		}
	}
}

func TestClip(t *testing.T) {
	g := testGrid()
	v := NewVelocity(g)
	for i := range v.Data {
		v.Data[i] = float64(i)
	}
	v.Clip(10, 20)
	smin, smax := v.MinMax()
	if smin < 10 || smax > 20 {
		t.Errorf("clip failed: min %v max %v", smin, smax)
	}
}

func TestInteriorRoundTrip(t *testing.T) {
	g := testGrid()
	interior := make([]float64, g.Nz*g.Nx)
	for i := range interior {
		interior[i] = 2000 + float64(i%7)*100
	}
	v := ExpandDomain(interior, g)
	got := v.Interior(g.Untransform)
	for i := range interior {
		if math.Abs(got[i]-interior[i]) > 1e-9*interior[i] {
			t.Fatalf("cell %d: got %v want %v", i, got[i], interior[i])
		}
	}
}

func TestCFLSatisfied(t *testing.T) {
	g := testGrid()
	interior := make([]float64, g.Nz*g.Nx)
	for i := range interior {
		interior[i] = 3000
	}
	v := ExpandDomain(interior, g)
	if !v.CFLSatisfied(3000) {
		t.Error("model at the speed ceiling must satisfy the CFL bound")
	}
	if v.CFLSatisfied(2000) {
		t.Error("model faster than the ceiling must violate the CFL bound")
	}
}
