// Package health provides Kubernetes-style liveness and readiness probes.
//
// Registered checks run periodically on a single background goroutine; probe
// endpoints report the most recent results without running checks inline, so
// a slow dependency cannot stall the kubelet.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// CheckFunc probes one component. It returns nil when the component is
// healthy.
type CheckFunc func(ctx context.Context) error

type kind int

const (
	liveness kind = iota
	readiness
)

type check struct {
	name    string
	kind    kind
	timeout time.Duration
	fn      CheckFunc

	mu      sync.Mutex
	lastErr error
}

func (c *check) run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	err := c.fn(ctx)

	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
}

func (c *check) err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Health manages the service's probe state.
type Health struct {
	mu     sync.Mutex
	checks []*check
	ready  bool
	cancel context.CancelFunc
}

// New creates a Health instance. The service starts not ready; call
// SetReady(true) once initialization finishes.
func New() *Health {
	return &Health{}
}

// AddLivenessCheck registers a liveness check, answering "is the process
// functioning": goroutine leaks, deadlocks.
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.add(&check{name: name, kind: liveness, timeout: timeout, fn: fn})
}

// AddReadinessCheck registers a readiness check, answering "may traffic come
// in": database connectivity, dependent services.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.add(&check{name: name, kind: readiness, timeout: timeout, fn: fn})
}

func (h *Health) add(c *check) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks = append(h.checks, c)
}

// Start runs every registered check once immediately, then again at the
// given interval, until Stop or context cancellation.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	checks := append([]*check(nil), h.checks...)
	h.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			for _, c := range checks {
				c.run(ctx)
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop cancels the background check goroutine. Safe to call repeatedly.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// SetReady flips the manual readiness gate: true once initialization
// completes, false at the start of graceful shutdown to drain traffic.
func (h *Health) SetReady(ready bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready = ready
}

// IsReady reports whether the manual gate is open and every readiness check
// passed on its last run.
func (h *Health) IsReady() bool {
	h.mu.Lock()
	ready := h.ready
	checks := append([]*check(nil), h.checks...)
	h.mu.Unlock()

	if !ready {
		return false
	}
	for _, c := range checks {
		if c.kind == readiness && c.err() != nil {
			return false
		}
	}
	return true
}

// IsLive reports whether every liveness check passed on its last run.
func (h *Health) IsLive() bool {
	h.mu.Lock()
	checks := append([]*check(nil), h.checks...)
	h.mu.Unlock()

	for _, c := range checks {
		if c.kind == liveness && c.err() != nil {
			return false
		}
	}
	return true
}

type statusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint is the /livez HTTP handler.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.respond(w, h.IsLive(), liveness)
}

// ReadyEndpoint is the /readyz HTTP handler.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.respond(w, h.IsReady(), readiness)
}

func (h *Health) respond(w http.ResponseWriter, ok bool, k kind) {
	h.mu.Lock()
	checks := append([]*check(nil), h.checks...)
	h.mu.Unlock()

	resp := statusResponse{Status: "ok", Checks: make(map[string]string)}
	for _, c := range checks {
		if c.kind != k {
			continue
		}
		if err := c.err(); err != nil {
			resp.Checks[c.name] = err.Error()
		} else {
			resp.Checks[c.name] = "ok"
		}
	}

	code := http.StatusOK
	if !ok {
		resp.Status = "unavailable"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
