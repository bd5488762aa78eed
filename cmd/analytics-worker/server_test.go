package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merchant-analytics/internal/common/logger"
	"merchant-analytics/internal/common/metrics"
)

func get(t *testing.T, mux http.Handler, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]interface{}
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestServerMux_Health(t *testing.T) {
	rec, body := get(t, newServerMux(nil), "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
}

func TestServerMux_Ready(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	t.Run("all checks pass", func(t *testing.T) {
		rec, body := get(t, newServerMux(map[string]readinessCheck{"postgres": ok, "zeebe": ok}), "/ready")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ready", body["status"])
	})

	t.Run("store unreachable", func(t *testing.T) {
		rec, body := get(t, newServerMux(map[string]readinessCheck{"postgres": down, "zeebe": ok}), "/ready")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "not_ready", body["status"])
		checks := body["checks"].(map[string]interface{})
		assert.Equal(t, "connection refused", checks["postgres"])
		assert.Equal(t, "ok", checks["zeebe"])
	})
}

func TestServerMux_Metrics(t *testing.T) {
	metrics.AnalyticsQueryDuration.WithLabelValues("conversation_totals", "ok").Observe(0.01)

	rec, _ := get(t, newServerMux(nil), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "analytics_query_duration_seconds")
}

func TestRetryWithBackoff(t *testing.T) {
	log := logger.NewNoOpLogger()

	attempts := 0
	err := retryWithBackoff(context.Background(), func() error {
		attempts++
		if attempts < 2 {
			return errors.New("not yet")
		}
		return nil
	}, 3, time.Millisecond, log, "test")
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)

	err = retryWithBackoff(context.Background(), func() error { return errors.New("down") }, 2, time.Millisecond, log, "test")
	assert.ErrorContains(t, err, "failed after 2 attempts")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = retryWithBackoff(ctx, func() error { return errors.New("down") }, 3, time.Hour, log, "test")
	assert.ErrorIs(t, err, context.Canceled)
}
