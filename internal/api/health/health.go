// Package health provides health check functionality for API components.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Status represents the health status of a component.
type Status string

const (
	// StatusHealthy indicates the component is fully operational.
	StatusHealthy Status = "healthy"
	// StatusDegraded indicates the component is operational but with issues.
	StatusDegraded Status = "degraded"
	// StatusUnhealthy indicates the component is not operational.
	StatusUnhealthy Status = "unhealthy"
)

// ComponentStatus represents the health status of a single component.
type ComponentStatus struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// Response represents the health check response.
type Response struct {
	Status       Status                     `json:"status"`
	Components   map[string]ComponentStatus `json:"components"`
	Version      string                     `json:"version"`
	Uptime       string                     `json:"uptime"`
	CacheEntries int                        `json:"cacheEntries"`
	RateWindows  int                        `json:"rateWindows"`
}

// Pinger is an interface for components that can be pinged.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Sizer reports the number of live entries in an in-memory component.
type Sizer interface {
	Size() int
}

// Checker performs health checks for the service.
type Checker struct {
	backend   Pinger
	cache     Sizer
	limiter   Sizer
	startTime time.Time
	version   string
	timeout   time.Duration
	mu        sync.RWMutex
}

// NewChecker creates a new health checker. backend may be nil when no
// service credentials are configured.
func NewChecker(backend Pinger, cache, limiter Sizer, version string) *Checker {
	return &Checker{
		backend:   backend,
		cache:     cache,
		limiter:   limiter,
		startTime: time.Now(),
		version:   version,
		timeout:   5 * time.Second,
	}
}

// SetTimeout sets the timeout for health checks.
func (c *Checker) SetTimeout(timeout time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeout = timeout
}

// Check performs all health checks and returns the aggregated response.
func (c *Checker) Check(ctx context.Context) *Response {
	c.mu.RLock()
	timeout := c.timeout
	c.mu.RUnlock()

	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	components := map[string]ComponentStatus{
		"backend": c.checkBackend(checkCtx),
	}

	overallStatus := StatusHealthy
	for _, comp := range components {
		if comp.Status == StatusUnhealthy {
			overallStatus = StatusUnhealthy
			break
		}
		if comp.Status == StatusDegraded {
			overallStatus = StatusDegraded
		}
	}

	return &Response{
		Status:       overallStatus,
		Components:   components,
		Version:      c.version,
		Uptime:       time.Since(c.startTime).Round(time.Second).String(),
		CacheEntries: c.cache.Size(),
		RateWindows:  c.limiter.Size(),
	}
}

func (c *Checker) checkBackend(ctx context.Context) ComponentStatus {
	if c.backend == nil {
		return ComponentStatus{
			Status:  StatusDegraded,
			Message: "backend credentials not configured",
		}
	}
	if err := c.backend.Ping(ctx); err != nil {
		return ComponentStatus{
			Status:  StatusUnhealthy,
			Message: err.Error(),
		}
	}
	return ComponentStatus{Status: StatusHealthy}
}

// Handler returns an http.HandlerFunc serving the health check.
func (c *Checker) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := c.Check(r.Context())

		status := http.StatusOK
		if resp.Status == StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(resp)
	}
}
