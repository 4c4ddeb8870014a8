// Package server exposes the read-only HTTP monitor of a running
// inversion: liveness, Prometheus metrics, and the latest iteration state.
package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/copyleftdev/TREMOR/internal/inversion"
	"github.com/copyleftdev/TREMOR/internal/logging"
)

// Logger defines the logging interface used by the monitor, keeping the
// implementation swappable in tests.
type Logger interface {
	Debug(msg string, fields ...map[string]interface{})
	Info(msg string, fields ...map[string]interface{})
	Warn(msg string, fields ...map[string]interface{})
	Error(msg string, fields ...map[string]interface{})
	WithFields(fields map[string]interface{}) *logging.Logger
}

// State is the last observed inversion progress. It is updated by the
// driver through the Recorder interface and read concurrently by HTTP
// handlers.
type State struct {
	Status      string    `json:"status"`
	Iteration   int       `json:"iteration"`
	Objective   float64   `json:"objective"`
	StepLen     float64   `json:"step_length"`
	GradNorm    float64   `json:"gradient_norm"`
	StartTime   time.Time `json:"start_time"`
	LastUpdated time.Time `json:"last_updated"`
}

// Monitor implements inversion.Recorder and serves the monitor endpoints.
type Monitor struct {
	logger Logger

	mu      sync.RWMutex
	state   State
	metrics *Metrics
}

// NewMonitor creates a monitor in the "pending" state.
func NewMonitor(logger Logger) *Monitor {
	return &Monitor{
		logger: logger,
		state: State{
			Status:    "pending",
			StartTime: time.Now(),
		},
		metrics: newMetrics(),
	}
}

// RegisterRoutes mounts the monitor endpoints on the router.
func (m *Monitor) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", m.handleHealth)
	r.Handle("/metrics", m.metrics.Handler())
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/state", m.handleState)
	})
}

// RecordIteration implements inversion.Recorder.
func (m *Monitor) RecordIteration(stats inversion.IterationStats) {
	m.mu.Lock()
	m.state.Status = "running"
	m.state.Iteration = stats.Iteration
	m.state.Objective = stats.Objective
	m.state.StepLen = stats.StepLen
	m.state.GradNorm = stats.GradNorm
	m.state.LastUpdated = time.Now()
	m.mu.Unlock()

	m.metrics.observe(stats)
}

// SetStatus marks run transitions (running, completed, failed).
func (m *Monitor) SetStatus(status string) {
	m.mu.Lock()
	m.state.Status = status
	m.state.LastUpdated = time.Now()
	m.mu.Unlock()
}

func (m *Monitor) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (m *Monitor) handleState(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	state := m.state
	m.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(state); err != nil {
		m.logger.Error("failed to encode state", map[string]interface{}{"error": err.Error()})
	}
}
