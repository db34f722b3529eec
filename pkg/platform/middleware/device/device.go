// Package device tags each request with the caller's address and a coarse
// description of the device it came from. Fleet drivers use phones, so the
// mobile flag is surfaced to handlers and logs.
package device

import (
	"net"
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"checklist/pkg/requestcontext"
)

// Device stores the client IP in the request context, along with a display
// label and mobile flag derived from the User-Agent. Register it after chi's RealIP.
func Device(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ua := r.Header.Get("User-Agent")

		ctx = requestcontext.WithClientIP(ctx, remoteIP(r.RemoteAddr))
		label, mobile := Describe(ua)
		ctx = requestcontext.WithDevice(ctx, label, mobile)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Describe returns a label like "Chrome on Android" and whether the agent is mobile.
func Describe(userAgent string) (string, bool) {
	if userAgent == "" {
		return "unknown", false
	}
	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	browser = strings.TrimSpace(browser)
	if browser == "" {
		browser = "unknown"
	}

	if ua.Mobile() {
		if platform := strings.TrimSpace(ua.Platform()); platform != "" {
			return browser + " on " + platform, true
		}
		return browser + " (mobile)", true
	}
	if os := strings.TrimSpace(ua.OS()); os != "" {
		return browser + " on " + os, false
	}
	return browser, false
}

func remoteIP(addr string) string {
	if addr == "" {
		return "unknown"
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
