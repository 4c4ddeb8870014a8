// Package driver orchestrates the TREMOR outer loop: per iteration it
// encodes the shots into one super-shot, computes the adjoint-state
// gradient, folds it into a conjugate-gradient direction, selects a step
// length with the parabolic line search, and applies the clamped velocity
// update.
package driver

import (
	"context"
	"math/rand"
	"os"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/copyleftdev/TREMOR/internal/checkpoint"
	"github.com/copyleftdev/TREMOR/internal/encoding"
	"github.com/copyleftdev/TREMOR/internal/fdm"
	"github.com/copyleftdev/TREMOR/internal/gradient"
	"github.com/copyleftdev/TREMOR/internal/inversion"
	"github.com/copyleftdev/TREMOR/internal/inversion/cg"
	"github.com/copyleftdev/TREMOR/internal/inversion/linesearch"
	"github.com/copyleftdev/TREMOR/internal/logging"
)

// Snapshotter receives the interior velocity (m/s, z fast) after each
// outer iteration.
type Snapshotter interface {
	Append(frame []float64) error
}

// Config assembles everything one inversion run needs.
type Config struct {
	Grid fdm.Grid

	// VInit is the interior starting model in m/s (nz*nx, z fast).
	VInit []float64

	Src *fdm.ShotPosition
	Geo *fdm.ShotPosition

	// Dobs is the observed data, ns*nt*ng in (shot, time, receiver) order.
	Dobs []float64

	NT    int
	FM    float64
	Amp   float64
	NIter int

	Workers int
	Seed    int64

	Store checkpoint.Store

	// Snapshots, when non-nil, receives the model after every iteration.
	Snapshots Snapshotter

	// Recorder, when non-nil, receives per-iteration statistics.
	Recorder inversion.Recorder

	Logger *logging.Logger
}

// Driver runs the outer loop. All mutation of the model, the CG state and
// the persisted step length happens here, between the strictly sequential
// gradient and line-search calls.
type Driver struct {
	cfg  Config
	prop *fdm.Propagator
	vel  *fdm.Velocity
	wlt  []float64
	rng  *rand.Rand

	smin, smax float64

	log  *logging.Logger
	zlog *zap.Logger
}

// New validates the geometry, expands the starting model onto the padded
// grid, and prepares the propagator.
func New(cfg Config) (*Driver, error) {
	if cfg.Logger == nil {
		cfg.Logger = logging.New(logging.InfoLevel, os.Stderr)
	}
	if cfg.Amp == 0 {
		cfg.Amp = 1000
	}
	if err := cfg.Src.Validate(cfg.Grid, "sources"); err != nil {
		return nil, err
	}
	if err := cfg.Geo.Validate(cfg.Grid, "geophones"); err != nil {
		return nil, err
	}

	zlog := logging.NewZapLogger(cfg.Logger)

	d := &Driver{
		cfg:  cfg,
		prop: fdm.NewPropagator(cfg.Grid, cfg.Workers, zlog),
		vel:  fdm.ExpandDomain(cfg.VInit, cfg.Grid),
		wlt:  fdm.Ricker(cfg.NT, cfg.FM, cfg.Grid.Dt, cfg.Amp),
		rng:  rand.New(rand.NewSource(cfg.Seed)),
		smin: cfg.Grid.Transform(inversion.VMax),
		smax: cfg.Grid.Transform(inversion.VMin),
		log:  cfg.Logger,
		zlog: zlog,
	}
	return d, nil
}

// Velocity returns the current model.
func (d *Driver) Velocity() *fdm.Velocity { return d.vel }

// Run executes NIter outer iterations. The context is only checked
// between iterations; no operation suspends.
func (d *Driver) Run(ctx context.Context) (*inversion.Result, error) {
	ns, ng := d.cfg.Src.N, d.cfg.Geo.N
	nt := d.cfg.NT

	cgb := cg.New(d.cfg.Grid.PadSize())
	searcher := linesearch.New(d.zlog)
	var alpha linesearch.AlphaState

	result := &inversion.Result{}

	for iter := 0; iter < d.cfg.NIter; iter++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}
		start := time.Now()

		codes := encoding.GenPlusMinus1(d.rng, ns)
		enc := encoding.NewEncoder(codes)
		encobs := enc.EncodeObsData(d.cfg.Dobs, nt, ng)
		encsrc := enc.EncodeSource(d.wlt)

		d.prop.BindVelocity(d.vel)
		d.prop.CheckStability(inversion.VMax)

		engine := gradient.NewEngine(d.prop, d.cfg.Src, d.cfg.Geo, d.cfg.Store, d.zlog)
		res, err := engine.Compute(encsrc, encobs, nt, d.cfg.FM)
		if err != nil {
			return result, inversion.WrapError(err, "gradient computation failed").
				WithComponent("driver").WithOperation("compute gradient")
		}
		d.prop.MaskGradient(res.Gradient)

		dir := cgb.Next(res.Gradient)

		_, maxAlpha3 := linesearch.CapAlpha(d.vel, dir, inversion.MaxDV)
		alpha2, alpha3 := alpha.Init(maxAlpha3)

		obj := gradient.NewTrialObjective(d.vel, dir, d.smin, d.smax,
			d.cfg.Src, d.cfg.Geo, encsrc, encobs, nt, d.cfg.Workers, d.zlog)
		out, err := searcher.Search(obj, res.Objective, alpha2, alpha3, maxAlpha3)
		if err != nil {
			return result, inversion.WrapError(err, "line search failed").
				WithComponent("driver").WithOperation("select step length")
		}
		alpha.Store(out.Alpha)

		floats.AddScaled(d.vel.Data, out.Alpha, dir)
		d.vel.Clip(d.smin, d.smax)
		d.vel.RefillBoundary()

		if d.cfg.Snapshots != nil {
			if err := d.cfg.Snapshots.Append(d.vel.Interior(d.cfg.Grid.Untransform)); err != nil {
				return result, inversion.WrapError(err, "velocity snapshot failed").
					WithComponent("driver").WithOperation("append snapshot")
			}
		}

		stats := inversion.IterationStats{
			Iteration: iter,
			Objective: res.Objective,
			StepLen:   out.Alpha,
			GradNorm:  floats.Norm(dir, 2),
			Duration:  time.Since(start),
		}
		if d.cfg.Recorder != nil {
			d.cfg.Recorder.RecordIteration(stats)
		}
		d.log.Info("iteration complete", map[string]interface{}{
			"iteration":   iter,
			"objective":   stats.Objective,
			"steplen":     stats.StepLen,
			"grad_norm":   stats.GradNorm,
			"parabolic":   out.Parabolic,
			"duration_ms": stats.Duration.Milliseconds(),
		})

		result.Iterations++
		result.Objectives = append(result.Objectives, res.Objective)
	}
	return result, nil
}
