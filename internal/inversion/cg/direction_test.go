package cg

import (
	"math"
	"testing"
)

func TestFirstIterationTakesGradient(t *testing.T) {
	d := New(3)
	g := []float64{1, -2, 3}
	dir := d.Next(g)
	for i := range g {
		if dir[i] != g[i] {
			t.Errorf("dir[%d] = %v, want %v", i, dir[i], g[i])
		}
	}
	if d.Iteration() != 1 {
		t.Errorf("iteration = %d, want 1", d.Iteration())
	}
}

func TestPolakRibiereUpdate(t *testing.T) {
	d := New(2)
	d.Next([]float64{1, 0})

	// Orthogonal successive gradients: beta reduces to |g|^2/|gPrev|^2.
	dir := d.Next([]float64{0, 2})

	// a=4, b=0, c=1 -> beta=4; dir = g + 4*dPrev = (4, 2).
	want := []float64{4, 2}
	for i := range want {
		if math.Abs(dir[i]-want[i]) > 1e-12 {
			t.Errorf("dir[%d] = %v, want %v", i, dir[i], want[i])
		}
	}
}

func TestBetaResetNeverNegative(t *testing.T) {
	d := New(2)
	d.Next([]float64{2, 0})

	// <g, gPrev> exceeds <g, g>: beta would be negative, the reset rule
	// makes the direction plain steepest descent.
	dir := d.Next([]float64{1, 0})
	want := []float64{1, 0}
	for i := range want {
		if dir[i] != want[i] {
			t.Errorf("dir[%d] = %v, want %v", i, dir[i], want[i])
		}
	}
}

func TestPreviousDirectionCarriesOver(t *testing.T) {
	d := New(2)
	d.Next([]float64{1, 1})
	d.Next([]float64{0, 1}) // beta = (1-1)/2 = 0 -> dir = g
	dir := d.Next([]float64{1, 0})

	// gPrev = (0,1): a=1, b=0, c=1 -> beta=1; dPrev = (0,1);
	// dir = (1,0) + 1*(0,1) = (1,1).
	want := []float64{1, 1}
	for i := range want {
		if math.Abs(dir[i]-want[i]) > 1e-12 {
			t.Errorf("dir[%d] = %v, want %v", i, dir[i], want[i])
		}
	}
}
