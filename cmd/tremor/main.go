package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/copyleftdev/TREMOR/internal/checkpoint"
	"github.com/copyleftdev/TREMOR/internal/config"
	"github.com/copyleftdev/TREMOR/internal/errors"
	"github.com/copyleftdev/TREMOR/internal/fdm"
	"github.com/copyleftdev/TREMOR/internal/inversion/driver"
	"github.com/copyleftdev/TREMOR/internal/logging"
	"github.com/copyleftdev/TREMOR/internal/seisio"
	"github.com/copyleftdev/TREMOR/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(&logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	runLogger := logger.WithFields(map[string]interface{}{
		"service": "tremor-fwi",
	})

	if err := run(cfg, runLogger); err != nil {
		runLogger.Error("inversion failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *logging.Logger) error {
	vinit, velHdr, err := seisio.ReadVelocity(cfg.VInit)
	if err != nil {
		return err
	}
	dobs, shotHdr, err := seisio.ReadShotData(cfg.Shots)
	if err != nil {
		return err
	}

	grid, err := buildGrid(velHdr, shotHdr, cfg.NB)
	if err != nil {
		return err
	}
	nt, _ := shotHdr.Int("n1")
	ng, _ := shotHdr.Int("n2")
	ns, _ := shotHdr.Int("n3")
	fm, err := shotHdr.Float("fm")
	if err != nil {
		return err
	}
	amp, err := shotHdr.Float("amp")
	if err != nil {
		return err
	}

	src, geo, err := buildGeometry(shotHdr, ns, ng)
	if err != nil {
		return err
	}

	store, err := checkpoint.NewDirStore(cfg.CheckpointDir)
	if err != nil {
		return err
	}

	vout, err := seisio.NewVelocityWriter(cfg.VUpdates, grid.Nz, grid.Nx, grid.Dx, grid.Dx)
	if err != nil {
		return err
	}
	defer vout.Close()

	monitor := server.NewMonitor(logger)
	if cfg.MonitorAddr != "" {
		startMonitor(cfg.MonitorAddr, monitor, logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := driver.New(driver.Config{
		Grid:      grid,
		VInit:     vinit,
		Src:       src,
		Geo:       geo,
		Dobs:      dobs,
		NT:        nt,
		FM:        fm,
		Amp:       amp,
		NIter:     cfg.NIter,
		Workers:   cfg.WorkerCount,
		Seed:      cfg.Seed,
		Store:     store,
		Snapshots: vout,
		Recorder:  monitor,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	logger.Info("starting inversion", map[string]interface{}{
		"nz": grid.Nz, "nx": grid.Nx, "nb": grid.Nb,
		"nt": nt, "ns": ns, "ng": ng,
		"niter": cfg.NIter, "fm": fm,
	})

	monitor.SetStatus("running")
	result, err := d.Run(ctx)
	if err != nil {
		monitor.SetStatus("failed")
		return err
	}
	monitor.SetStatus("completed")

	logger.Info("inversion complete", map[string]interface{}{
		"iterations": result.Iterations,
	})
	return nil
}

func buildGrid(velHdr, shotHdr seisio.Header, nb int) (fdm.Grid, error) {
	nz, err := velHdr.Int("n1")
	if err != nil {
		return fdm.Grid{}, err
	}
	nx, err := velHdr.Int("n2")
	if err != nil {
		return fdm.Grid{}, err
	}
	dz, err := velHdr.Float("d1")
	if err != nil {
		return fdm.Grid{}, err
	}
	dx, err := velHdr.Float("d2")
	if err != nil {
		return fdm.Grid{}, err
	}
	if dz != dx {
		return fdm.Grid{}, errors.Errorf("grid spacing must be uniform, got dz=%g dx=%g", dz, dx)
	}
	dt, err := shotHdr.Float("d1")
	if err != nil {
		return fdm.Grid{}, err
	}
	return fdm.Grid{Nz: nz, Nx: nx, Nb: nb, Dx: dx, Dt: dt}, nil
}

func buildGeometry(hdr seisio.Header, ns, ng int) (src, geo *fdm.ShotPosition, err error) {
	szbeg, err := hdr.Int("szbeg")
	if err != nil {
		return nil, nil, err
	}
	sxbeg, err := hdr.Int("sxbeg")
	if err != nil {
		return nil, nil, err
	}
	jsz, err := hdr.Int("jsz")
	if err != nil {
		return nil, nil, err
	}
	jsx, err := hdr.Int("jsx")
	if err != nil {
		return nil, nil, err
	}
	gzbeg, err := hdr.Int("gzbeg")
	if err != nil {
		return nil, nil, err
	}
	gxbeg, err := hdr.Int("gxbeg")
	if err != nil {
		return nil, nil, err
	}
	jgz, err := hdr.Int("jgz")
	if err != nil {
		return nil, nil, err
	}
	jgx, err := hdr.Int("jgx")
	if err != nil {
		return nil, nil, err
	}
	src = fdm.NewShotPosition(szbeg, sxbeg, jsz, jsx, ns)
	geo = fdm.NewShotPosition(gzbeg, gxbeg, jgz, jgx, ng)
	return src, geo, nil
}

func startMonitor(addr string, monitor *server.Monitor, logger *logging.Logger) {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(logger))
	r.Use(errors.RecoveryMiddleware(logger))
	r.Use(middleware.Timeout(30 * time.Second))
	monitor.RegisterRoutes(r)

	httpServer := &http.Server{Addr: addr, Handler: r}
	go func() {
		logger.Info("starting monitor", map[string]interface{}{"address": addr})
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("monitor server stopped", map[string]interface{}{"error": err.Error()})
		}
	}()
}
