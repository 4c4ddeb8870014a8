// Package cg builds the nonlinear conjugate-gradient update direction with
// the Polak-Ribiere-with-reset rule.
package cg

import (
	"gonum.org/v1/gonum/floats"
)

// Direction holds the CG state that persists across outer iterations: the
// previous gradient and, through in-place reuse of the returned slice, the
// previous direction.
type Direction struct {
	gPrev []float64
	dir   []float64
	iter  int
}

// New creates a direction builder for model vectors of the given size.
func New(size int) *Direction {
	return &Direction{
		gPrev: make([]float64, size),
		dir:   make([]float64, size),
	}
}

// Next folds the current gradient into the update direction. Iteration 0
// takes the gradient itself; later iterations apply
// beta = max(0, (<g,g> - <g,gPrev>) / <gPrev,gPrev>) and
// d = g + beta*dPrev. The returned slice is owned by the builder and is
// overwritten by the next call.
func (c *Direction) Next(g []float64) []float64 {
	if c.iter == 0 {
		copy(c.dir, g)
		copy(c.gPrev, g)
		c.iter++
		return c.dir
	}

	a := floats.Dot(g, g)
	b := floats.Dot(g, c.gPrev)
	d := floats.Dot(c.gPrev, c.gPrev)

	beta := 0.0
	if d > 0 {
		beta = (a - b) / d
	}
	if beta < 0 {
		beta = 0
	}

	for i := range c.dir {
		c.dir[i] = g[i] + beta*c.dir[i]
	}
	copy(c.gPrev, g)
	c.iter++
	return c.dir
}

// Iteration returns the number of directions produced so far.
func (c *Direction) Iteration() int { return c.iter }
