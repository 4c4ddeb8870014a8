package gradient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/copyleftdev/TREMOR/internal/checkpoint"
	"github.com/copyleftdev/TREMOR/internal/encoding"
	"github.com/copyleftdev/TREMOR/internal/fdm"
)

func uniformModel(g fdm.Grid, c float64) *fdm.Velocity {
	interior := make([]float64, g.Nz*g.Nx)
	for i := range interior {
		interior[i] = c
	}
	return fdm.ExpandDomain(interior, g)
}

func twoLayerModel(g fdm.Grid, top, bottom float64) *fdm.Velocity {
	interior := make([]float64, g.Nz*g.Nx)
	for ix := 0; ix < g.Nx; ix++ {
		for iz := 0; iz < g.Nz; iz++ {
			c := top
			if iz >= g.Nz/2 {
				c = bottom
			}
			interior[ix*g.Nz+iz] = c
		}
	}
	return fdm.ExpandDomain(interior, g)
}

func TestSourceEncodingLinearity(t *testing.T) {
	// The wave operator is linear in the source term: modeling the encoded
	// super-shot equals the encoded sum of per-shot modelings.
	g := fdm.Grid{Nz: 30, Nx: 30, Nb: 5, Dx: 10, Dt: 0.001}
	vel := uniformModel(g, 2000)

	const nt = 120
	wlt := fdm.Ricker(nt, 20, g.Dt, 100)
	src := fdm.NewShotPosition(1, 8, 0, 14, 2)
	geo := fdm.NewShotPosition(1, 3, 0, 1, 24)

	codes := []int{1, -1}
	enc := encoding.NewEncoder(codes)
	encsrc := enc.EncodeSource(wlt)

	prop := fdm.NewPropagator(g, 1, nil)
	prop.BindVelocity(vel)
	super := Modeling(prop, src, geo, encsrc, nt)

	sum := make([]float64, nt*geo.N)
	for is := 0; is < src.N; is++ {
		single := src.ClipRange(is, is)
		singleSrc := make([]float64, nt)
		copy(singleSrc, wlt)
		prop := fdm.NewPropagator(g, 1, nil)
		prop.BindVelocity(vel)
		dcal := Modeling(prop, single, geo, singleSrc, nt)
		floats.AddScaled(sum, float64(codes[is]), dcal)
	}

	diff := make([]float64, len(super))
	floats.SubTo(diff, super, sum)
	rel := floats.Norm(diff, 2) / floats.Norm(super, 2)
	assert.Less(t, rel, 1e-9, "superposition should hold to roundoff")
}

func TestComputeZeroResidual(t *testing.T) {
	// Observed data generated on the same model gives a vanishing residual,
	// objective and gradient.
	g := fdm.Grid{Nz: 40, Nx: 40, Nb: 5, Dx: 10, Dt: 0.001}
	vel := uniformModel(g, 2000)

	const (
		nt = 150
		fm = 20.0
	)
	wlt := fdm.Ricker(nt, fm, g.Dt, 100)
	src := fdm.NewShotPosition(1, 20, 0, 0, 1)
	geo := fdm.NewShotPosition(1, 5, 0, 1, 30)

	enc := encoding.NewEncoder([]int{1})
	encsrc := enc.EncodeSource(wlt)

	prop := fdm.NewPropagator(g, 1, nil)
	prop.BindVelocity(vel)
	encobs := Modeling(prop, src, geo, encsrc, nt)

	engine := NewEngine(prop, src, geo, checkpoint.NewMemStore(), nil)
	res, err := engine.Compute(encsrc, encobs, nt, fm)
	require.NoError(t, err)

	assert.Less(t, res.Objective, 1e-12)
	for i, v := range res.Gradient {
		require.InDelta(t, 0, v, 1e-12, "gradient cell %d", i)
	}
}

func TestCheckpointStrideEquivalence(t *testing.T) {
	// Changing the checkpoint stride from 25 to 100 must not change the
	// gradient beyond reconstruction roundoff.
	g := fdm.Grid{Nz: 50, Nx: 50, Nb: 0, Dx: 10, Dt: 0.001}
	vel := uniformModel(g, 2000)
	velTrue := twoLayerModel(g, 2000, 2300)

	const (
		nt = 450
		fm = 15.0
	)
	// With nb = 0 the padded grid equals the interior, so sources and
	// receivers must sit inside the stencil write margin.
	wlt := fdm.Ricker(nt, fm, g.Dt, 100)
	src := fdm.NewShotPosition(8, 25, 0, 0, 1)
	geo := fdm.NewShotPosition(6, 6, 0, 1, 38)

	enc := encoding.NewEncoder([]int{1})
	encsrc := enc.EncodeSource(wlt)

	propTrue := fdm.NewPropagator(g, 1, nil)
	propTrue.BindVelocity(velTrue)
	dobs := Modeling(propTrue, src, geo, encsrc, nt)

	gradientFor := func(k int) ([]float64, float64) {
		prop := fdm.NewPropagator(g, 1, nil)
		prop.BindVelocity(vel.Clone())
		engine := NewEngine(prop, src, geo, checkpoint.NewMemStore(), nil)
		engine.CheckStep = k
		encobs := append([]float64(nil), dobs...)
		res, err := engine.Compute(encsrc, encobs, nt, fm)
		require.NoError(t, err)
		return res.Gradient, res.Objective
	}

	g25, obj25 := gradientFor(25)
	g100, obj100 := gradientFor(100)

	require.Greater(t, obj25, 0.0)
	assert.InEpsilon(t, obj25, obj100, 1e-12)

	norm := floats.Norm(g25, 2)
	require.Greater(t, norm, 0.0, "gradient must be nonzero for a model mismatch")

	diff := make([]float64, len(g25))
	floats.SubTo(diff, g25, g100)
	assert.Less(t, floats.Norm(diff, 2)/norm, 1e-5)
}
