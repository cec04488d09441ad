// Package health provides liveness and readiness probes for the simulation
// server, exposed as HTTP endpoints for orchestrators and load balancers.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Probe is a named readiness check for one component.
type Probe struct {
	// Name uniquely identifies the probe in readiness reports.
	Name string
	// Check returns an error when the component is unhealthy.
	Check func(ctx context.Context) error
}

// Status represents the overall health of the process.
type Status struct {
	Status string                     `json:"status"`
	Checks map[string]ComponentHealth `json:"checks"`
}

// ComponentHealth represents the health of an individual component.
type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Checker aggregates probes and serves liveness/readiness over HTTP.
type Checker struct {
	mu     sync.RWMutex
	probes []Probe
}

// NewChecker creates an empty health checker.
func NewChecker() *Checker {
	return &Checker{}
}

// AddProbe registers a readiness probe. Probes run in registration order.
func (c *Checker) AddProbe(p Probe) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.probes = append(c.probes, p)
}

// CheckHealth runs all probes and aggregates their results. The overall
// status is "healthy" only when every probe passes.
func (c *Checker) CheckHealth(ctx context.Context) Status {
	c.mu.RLock()
	probes := make([]Probe, len(c.probes))
	copy(probes, c.probes)
	c.mu.RUnlock()

	status := Status{
		Status: "healthy",
		Checks: make(map[string]ComponentHealth),
	}
	for _, p := range probes {
		if err := p.Check(ctx); err != nil {
			status.Status = "unhealthy"
			status.Checks[p.Name] = ComponentHealth{Status: "unhealthy", Message: err.Error()}
		} else {
			status.Checks[p.Name] = ComponentHealth{Status: "healthy"}
		}
	}
	return status
}

// LivenessHandler answers 200 whenever the process can serve requests at all.
func (c *Checker) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "alive"})
}

// ReadinessHandler runs every probe; 200 when all pass, 503 otherwise.
func (c *Checker) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := c.CheckHealth(ctx)

	w.Header().Set("Content-Type", "application/json")
	if status.Status == "healthy" {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(status)
}

// EngineProbe reports healthy while the simulation scheduler is running.
func EngineProbe(running func() bool) Probe {
	return Probe{
		Name: "engine",
		Check: func(ctx context.Context) error {
			if !running() {
				return fmt.Errorf("simulation scheduler is not running")
			}
			return nil
		},
	}
}

// ListenerProbe reports healthy while the transport listener is bound.
func ListenerProbe(addr func() string) Probe {
	return Probe{
		Name: "listener",
		Check: func(ctx context.Context) error {
			if addr() == "" {
				return fmt.Errorf("transport listener is not bound")
			}
			return nil
		},
	}
}

// MemoryProbe reports unhealthy when allocated memory exceeds limitMB.
func MemoryProbe(limitMB int64, allocMB func() int64) Probe {
	return Probe{
		Name: "memory",
		Check: func(ctx context.Context) error {
			if used := allocMB(); used > limitMB {
				return fmt.Errorf("memory usage %dMB exceeds limit %dMB", used, limitMB)
			}
			return nil
		},
	}
}
