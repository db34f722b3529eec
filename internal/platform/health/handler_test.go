package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.Register(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestReadiness(t *testing.T) {
	h := New("test")
	h.RegisterCheck("settings_store", func(context.Context) error { return nil })

	w := serve(h, "/health/ready")
	assert.Equal(t, http.StatusOK, w.Code)

	h.RegisterCheck("redis", func(context.Context) error { return errors.New("connection refused") })
	w = serve(h, "/health/ready")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body ReadinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "not_ready", body.Status)
	assert.Equal(t, "up", body.Checks["settings_store"])
	assert.Equal(t, "down: connection refused", body.Checks["redis"])
}

func TestStatusAndLiveness(t *testing.T) {
	h := New("staging")
	assert.Equal(t, http.StatusOK, serve(h, "/health/live").Code)

	w := serve(h, "/health")
	var body StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "staging", body.Environment)
	assert.Equal(t, "healthy", body.Status)
}

func TestReadinessCheckTimeout(t *testing.T) {
	h := New("test", WithCheckTimeout(20*time.Millisecond))
	h.RegisterCheck("settings_sqlite", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	w := serve(h, "/health/ready")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body ReadinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "down: context deadline exceeded", body.Checks["settings_sqlite"])
}

func TestStatusReportsUpstream(t *testing.T) {
	online := true
	h := New("test", WithUpstream(func() bool { return online }))

	var body StatusResponse
	require.NoError(t, json.Unmarshal(serve(h, "/health").Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "online", body.Upstream)

	online = false
	require.NoError(t, json.Unmarshal(serve(h, "/health").Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "offline", body.Upstream)
}
