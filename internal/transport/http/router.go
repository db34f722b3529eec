package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	checklistHandler "checklist/internal/checklist/handler"
	"checklist/internal/guard"
	"checklist/internal/platform/health"
	"checklist/internal/platform/metrics"
	sessionHandler "checklist/internal/session/handler"
	settingsHandler "checklist/internal/settings/handler"
	"checklist/internal/transition"
	vehicleHandler "checklist/internal/vehicle/handler"
	"checklist/pkg/platform/middleware/device"
	request "checklist/pkg/platform/middleware/request"
	"checklist/pkg/platform/validation"
)

const defaultTimeout = 30 * time.Second

// Deps holds everything the router wires together.
type Deps struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	RequestMetrics *request.Metrics
	Timeout        time.Duration

	Health     *health.Handler
	Sessions   guard.SessionProvider
	LoginPath  string
	Tracker    *transition.Tracker
	Auth       *sessionHandler.Handler
	Settings   *settingsHandler.Handler
	Vehicles   *vehicleHandler.Handler
	Checklists *checklistHandler.Handler

	// MetricsHandler serves /metrics. Defaults to the global registry.
	MetricsHandler http.Handler
}

// NewRouter wires public endpoints and the guarded screens.
func NewRouter(d Deps) http.Handler {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	metricsHandler := d.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	r := chi.NewRouter()

	r.Use(request.Recovery(d.Logger))
	r.Use(request.RequestID)
	r.Use(chimw.RealIP)
	r.Use(device.Device)
	r.Use(request.Logger(d.Logger))
	r.Use(request.Timeout(timeout))
	r.Use(request.ContentTypeJSON)
	r.Use(request.BodyLimit(validation.MaxBodySize))
	r.Use(request.LatencyMiddleware(d.RequestMetrics))

	d.Health.Register(r)
	r.Handle("/metrics", metricsHandler)
	r.Get("/endpoints", handleListOperations)
	r.Get("/endpoints/{tenant}/{operation}", handleResolveEndpoint)
	d.Auth.Register(r)

	r.Group(func(r chi.Router) {
		r.Use(guard.Middleware(d.Sessions, d.LoginPath, d.Logger, d.Metrics))
		r.Use(d.Tracker.Middleware)

		d.Auth.RegisterViews(r)
		d.Settings.Register(r)
		d.Vehicles.Register(r)
		d.Checklists.Register(r)
	})

	return r
}
