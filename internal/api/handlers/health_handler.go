package handlers

import (
	"context"
	"net/http"
	"time"
)

// HealthCheck pings one dependency
type HealthCheck func(ctx context.Context) error

// HealthHandler reports whether the service and its dependencies are up
type HealthHandler struct {
	checks  map[string]HealthCheck
	stats   map[string]func() int
	timeout time.Duration
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks, timeout: 2 * time.Second}
}

// WithStat adds a gauge reported under "stats"
func (h *HealthHandler) WithStat(name string, fn func() int) *HealthHandler {
	if h.stats == nil {
		h.stats = make(map[string]func() int)
	}
	h.stats[name] = fn
	return h
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	body := map[string]interface{}{
		"status": overall,
		"checks": results,
	}
	if len(h.stats) > 0 {
		stats := make(map[string]int, len(h.stats))
		for name, fn := range h.stats {
			stats[name] = fn()
		}
		body["stats"] = stats
	}
	respondWithJSON(w, status, body)
}
