package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dErrors "checklist/pkg/domain-errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type plateRequest struct {
	Plate string `json:"plate"`
}

func (r *plateRequest) Normalize() {
	r.Plate = strings.ToUpper(strings.TrimSpace(r.Plate))
}

func (r *plateRequest) Validate() error {
	if r.Plate == "" {
		return errors.New("plate is required")
	}
	return nil
}

type tenantRequest struct {
	ClientID string `json:"clientId"`
}

func (r *tenantRequest) Validate() error {
	if r.ClientID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "clientId is required")
	}
	return nil
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestDecodeJSON(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("decodes body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"plate":"abc1d23"}`))
		w := httptest.NewRecorder()

		result, ok := DecodeJSON[plateRequest](w, req, logger, ctx, "req-1")

		require.True(t, ok)
		assert.Equal(t, "abc1d23", result.Plate)
	})

	t.Run("malformed body is a bad request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{oops`))
		w := httptest.NewRecorder()

		result, ok := DecodeJSON[plateRequest](w, req, logger, ctx, "req-1")

		assert.False(t, ok)
		assert.Nil(t, result)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "bad_request", decodeError(t, w)["error"])
		assert.Equal(t, "invalid request body", decodeError(t, w)["error_description"])
	})

	t.Run("empty body names the problem", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", http.NoBody)
		w := httptest.NewRecorder()

		_, ok := DecodeJSON[plateRequest](w, req, logger, ctx, "req-1")

		assert.False(t, ok)
		assert.Equal(t, "request body is required", decodeError(t, w)["error_description"])
	})

	t.Run("body over the limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"plate":"`+strings.Repeat("A", 64)+`"}`))
		w := httptest.NewRecorder()
		req.Body = http.MaxBytesReader(w, req.Body, 16)

		_, ok := DecodeJSON[plateRequest](w, req, logger, ctx, "req-1")

		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "request body too large", decodeError(t, w)["error_description"])
	})
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("normalizes before validating", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"plate":" abc1d23 "}`))
		w := httptest.NewRecorder()

		result, ok := DecodeAndPrepare[plateRequest](w, req, logger, ctx, "req-1")

		require.True(t, ok)
		assert.Equal(t, "ABC1D23", result.Plate)
	})

	t.Run("plain validation error maps to validation_error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"plate":"  "}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[plateRequest](w, req, logger, ctx, "req-1")

		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeError(t, w)
		assert.Equal(t, "validation_error", body["error"])
		assert.Equal(t, "plate is required", body["error_description"])
	})

	t.Run("domain error code is preserved", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{}`))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[tenantRequest](w, req, logger, ctx, "req-1")

		assert.False(t, ok)
		assert.Equal(t, "bad_request", decodeError(t, w)["error"])
	})
}

func TestWriteError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{dErrors.New(dErrors.CodeUnauthorized, "session expired"), http.StatusUnauthorized, "unauthorized"},
		{dErrors.New(dErrors.CodeTimeout, "backend slow"), http.StatusGatewayTimeout, "upstream_timeout"},
		{dErrors.New(dErrors.CodeUnavailable, "offline"), http.StatusServiceUnavailable, "upstream_unavailable"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		WriteError(w, tc.err)
		assert.Equal(t, tc.status, w.Code)
		assert.Equal(t, tc.code, decodeError(t, w)["error"])
	}
}
