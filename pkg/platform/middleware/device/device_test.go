package device

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"checklist/pkg/requestcontext"
)

const androidChrome = "Mozilla/5.0 (Linux; Android 13; SM-A536B) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"

func TestDeviceMiddleware(t *testing.T) {
	var ip, label string
	var mobile bool
	handler := Device(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip = requestcontext.ClientIP(r.Context())
		label = requestcontext.DeviceLabel(r.Context())
		mobile = requestcontext.IsMobile(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/vehicles", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	req.Header.Set("User-Agent", androidChrome)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "10.1.2.3", ip)
	assert.Contains(t, label, "Chrome")
	assert.True(t, mobile)
}

func TestDescribe(t *testing.T) {
	t.Run("empty agent", func(t *testing.T) {
		label, mobile := Describe("")
		assert.Equal(t, "unknown", label)
		assert.False(t, mobile)
	})

	t.Run("android phone", func(t *testing.T) {
		label, mobile := Describe(androidChrome)
		assert.True(t, mobile)
		assert.Contains(t, label, "Chrome")
	})
}
