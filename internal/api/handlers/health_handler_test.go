package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zatekoja/workshopbooking/internal/api/handlers"
)

func TestHealthHandler(t *testing.T) {
	ok := func(ctx context.Context) error { return nil }
	down := func(ctx context.Context) error { return errors.New("connection refused") }

	rec := httptest.NewRecorder()
	handlers.NewHealthHandler(map[string]handlers.HealthCheck{"database": ok, "cache": ok}).
		Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","checks":{"database":"ok","cache":"ok"}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	handlers.NewHealthHandler(map[string]handlers.HealthCheck{"database": down}).
		Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"degraded","checks":{"database":"connection refused"}}`, rec.Body.String())
}

func TestHealthHandler_ReportsStats(t *testing.T) {
	streams := handlers.NewSSEHandler(&stubSessions{})

	rec := httptest.NewRecorder()
	handlers.NewHealthHandler(nil).
		WithStat("sse_clients", streams.GetClientCount).
		Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","checks":{},"stats":{"sse_clients":0}}`, rec.Body.String())
}
