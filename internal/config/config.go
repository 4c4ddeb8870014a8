// Package config loads the TREMOR inversion configuration from the
// environment. Acquisition parameters (nt, ng, geometry, wavelet) are not
// configured here; they travel in the shot-data header.
package config

import (
	"os"
	"strconv"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	// CheckpointDir receives the wavefield checkpoint files written during
	// each gradient computation.
	CheckpointDir string `env:"CHECKPOINTDIR,required"`

	// VInit is the initial velocity dataset (float32, nz*nx, z fast).
	VInit string `env:"VINIT,required"`

	// Shots is the observed shot-gather dataset (float32, ns*nt*ng).
	Shots string `env:"SHOTS,required"`

	// VUpdates receives one velocity snapshot per outer iteration.
	VUpdates string `env:"VUPDATES" envDefault:"vupdates.bin"`

	NIter int `env:"NITER" envDefault:"20"`

	// NB is the damping border thickness in cells.
	NB int `env:"NB" envDefault:"30"`

	// Seed drives the per-iteration source encoding. Fixed by default so
	// runs are reproducible.
	Seed int64 `env:"SEED" envDefault:"10"`

	// WorkerCount bounds the fork-join kernel parallelism. Zero means one
	// worker per CPU.
	WorkerCount int `env:"WORKER_COUNT" envDefault:"0"`

	Logging struct {
		Level  string `env:"LOG_LEVEL" envDefault:"info"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
		Output string `env:"LOG_OUTPUT" envDefault:"stderr"`
	}

	// MonitorAddr enables the HTTP monitor (health, metrics, inversion
	// state) when non-empty, e.g. ":8080".
	MonitorAddr string `env:"MONITOR_ADDR"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetEnv returns the value of the environment variable or the default value.
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetEnvAsInt returns the value of the environment variable as int or the
// default value.
func GetEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(GetEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}
