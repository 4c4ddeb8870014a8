package fdm

import (
	"github.com/copyleftdev/TREMOR/internal/errors"
)

// ShotPosition is an ordered list of source or receiver points generated
// from a linear array (begin, stride, count) in interior-grid coordinates.
type ShotPosition struct {
	ZBeg, XBeg int
	Jz, Jx     int
	N          int
}

// NewShotPosition builds the position list for n points starting at
// (zbeg, xbeg) with strides (jz, jx).
func NewShotPosition(zbeg, xbeg, jz, jx, n int) *ShotPosition {
	return &ShotPosition{ZBeg: zbeg, XBeg: xbeg, Jz: jz, Jx: jx, N: n}
}

// At returns the interior coordinates of point i.
func (s *ShotPosition) At(i int) (iz, ix int) {
	return s.ZBeg + i*s.Jz, s.XBeg + i*s.Jx
}

// PadIdx returns the linear padded-grid index of point i.
func (s *ShotPosition) PadIdx(g Grid, i int) int {
	iz, ix := s.At(i)
	return g.InteriorIdx(iz, ix)
}

// Validate checks that every point lies inside the interior computing zone.
func (s *ShotPosition) Validate(g Grid, what string) error {
	last := s.N - 1
	if s.ZBeg >= 0 && s.XBeg >= 0 &&
		s.XBeg+last*s.Jx < g.Nx && s.ZBeg+last*s.Jz < g.Nz {
		return nil
	}
	return errors.Errorf("%s exceed the computing zone", what).
		WithComponent("fdm").WithOperation("validate geometry")
}

// ClipRange returns the sub-array covering points [start, end].
func (s *ShotPosition) ClipRange(start, end int) *ShotPosition {
	return &ShotPosition{
		ZBeg: s.ZBeg + start*s.Jz,
		XBeg: s.XBeg + start*s.Jx,
		Jz:   s.Jz,
		Jx:   s.Jx,
		N:    end - start + 1,
	}
}
