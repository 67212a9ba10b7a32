package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemHandler_Health(t *testing.T) {
	t.Run("all checks pass", func(t *testing.T) {
		h := NewSystemHandler("storefront", "1.0.0", map[string]Pinger{
			"database": PingFunc(func(context.Context) error { return nil }),
		}, nil)
		e := newTestEngine()
		e.GET("/health", h.Health)

		w := doJSON(t, e, http.MethodGet, "/health", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var got HealthResponse
		decodeData(t, w, &got)
		assert.Equal(t, "ok", got.Status)
		assert.Equal(t, map[string]string{"database": "ok"}, got.Checks)
		assert.NotEmpty(t, got.Uptime)
	})

	t.Run("failing dependency is 503", func(t *testing.T) {
		h := NewSystemHandler("storefront", "1.0.0", map[string]Pinger{
			"database": PingFunc(func(context.Context) error { return errors.New("dial tcp: refused") }),
			"cache":    PingFunc(func(context.Context) error { return nil }),
		}, nil)
		e := newTestEngine()
		e.GET("/health", h.Health)

		w := doJSON(t, e, http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.NotContains(t, w.Body.String(), "refused")

		resp := decodeResponse(t, w)
		assert.False(t, resp.Success)
		assert.Equal(t, "SERVICE_UNAVAILABLE", resp.Error.Code)

		var got HealthResponse
		decodeData(t, w, &got)
		assert.Equal(t, "degraded", got.Status)
		assert.Equal(t, "unavailable", got.Checks["database"])
		assert.Equal(t, "ok", got.Checks["cache"])
	})

	t.Run("no checks", func(t *testing.T) {
		e := newTestEngine()
		e.GET("/health", NewSystemHandler("storefront", "1.0.0", nil, nil).Health)

		w := doJSON(t, e, http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	h := NewSystemHandler("storefront", "1.2.3", nil, nil)
	assert.False(t, h.startTime.IsZero())

	e := newTestEngine()
	e.GET("/system/info", h.GetSystemInfo)

	w := doJSON(t, e, http.MethodGet, "/system/info", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got SystemInfoResponse
	decodeData(t, w, &got)
	assert.Equal(t, "storefront", got.Name)
	assert.Equal(t, "1.2.3", got.Version)
	assert.NotEmpty(t, got.GoVersion)
}
