package guard

import (
	"log/slog"
	"net/http"

	"checklist/internal/platform/metrics"
	"checklist/internal/session/models"
	"checklist/pkg/platform/httputil"
)

// SessionProvider resolves the session for a request.
type SessionProvider interface {
	Resolve(w http.ResponseWriter, r *http.Request) models.Session
}

const loadingRetryAfter = "1"

// httpNavigator maps navigation onto a single HTTP response.
type httpNavigator struct {
	w      http.ResponseWriter
	r      *http.Request
	pushed bool
}

func (n *httpNavigator) CurrentPath() string {
	return n.r.URL.Path
}

func (n *httpNavigator) Push(to string) {
	if n.pushed {
		return
	}
	n.pushed = true
	n.w.Header().Set("Location", to)
	httputil.WriteJSON(n.w, http.StatusFound, map[string]string{
		"redirect": to,
	})
}

// Middleware gates the wrapped routes. Authenticated requests continue with
// the session in context; loading sessions get 202 so the client keeps its
// progress indicator up and retries.
func Middleware(provider SessionProvider, loginPath string, logger *slog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := provider.Resolve(w, r)
			nav := &httpNavigator{w: w, r: r}
			decision := NewController(nav, loginPath, WithLogger(logger), WithMetrics(m)).Sync(sess)

			switch decision.Outcome {
			case OutcomeLoading:
				w.Header().Set("Retry-After", loadingRetryAfter)
				httputil.WriteJSON(w, http.StatusAccepted, map[string]string{
					"status": "loading",
				})
			case OutcomeRedirect:
				logger.DebugContext(r.Context(), "unauthenticated request redirected",
					"path", r.URL.Path,
					"redirect", decision.RedirectTo,
				)
			default:
				next.ServeHTTP(w, r.WithContext(models.WithSession(r.Context(), sess)))
			}
		})
	}
}
