package transition

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"checklist/internal/platform/metrics"
	"checklist/internal/session/models"
)

// ClientCookie remembers the tenant (and user) of the last request.
const ClientCookie = "checklist_client"

// Clearer drops data cached on behalf of a user in a tenant.
type Clearer interface {
	ClearTenant(ctx context.Context, clientID, userID string) error
}

// Tracker clears tenant-scoped local data when a transition is observed.
type Tracker struct {
	clearers []Clearer
	secure   bool
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Tracker)

func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) {
		t.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Tracker) {
		t.metrics = m
	}
}

func WithSecureCookies(secure bool) Option {
	return func(t *Tracker) {
		t.secure = secure
	}
}

func NewTracker(clearers []Clearer, opts ...Option) *Tracker {
	t := &Tracker{
		clearers: clearers,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Observe clears the previous tenant's data when the record shows a change.
// Clearing failures are logged; the request is not failed for them.
func (t *Tracker) Observe(ctx context.Context, rec Record, previousUserID string) {
	if !rec.Changed() {
		return
	}
	t.metrics.IncTenantTransitions()
	t.logger.InfoContext(ctx, "tenant transition",
		"previous_client_id", *rec.PreviousClientID,
		"client_id", *rec.CurrentClientID,
	)
	for _, c := range t.clearers {
		if err := c.ClearTenant(ctx, *rec.PreviousClientID, previousUserID); err != nil {
			t.logger.ErrorContext(ctx, "failed to clear tenant data",
				"previous_client_id", *rec.PreviousClientID,
				"error", err,
			)
		}
	}
}

type recordKey struct{}

// RecordFromContext returns the transition record computed for the request.
func RecordFromContext(ctx context.Context) Record {
	r, _ := ctx.Value(recordKey{}).(Record)
	return r
}

// Middleware must run behind the guard: it compares the tenant cookie with the
// session's tenant, observes the transition and refreshes the cookie.
func (t *Tracker) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := models.FromContext(r.Context())
		prevClient, prevUser := readClientCookie(r)

		rec := Record{PreviousClientID: prevClient, CurrentClientID: sess.CurrentClientID}
		t.Observe(r.Context(), rec, prevUser)

		if sess.CurrentClientID != nil {
			t.writeClientCookie(w, *sess.CurrentClientID, sess.UserID)
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), recordKey{}, rec)))
	})
}

func readClientCookie(r *http.Request) (*string, string) {
	c, err := r.Cookie(ClientCookie)
	if err != nil || c.Value == "" {
		return nil, ""
	}
	values, err := url.ParseQuery(c.Value)
	if err != nil || values.Get("c") == "" {
		return nil, ""
	}
	client := values.Get("c")
	return &client, values.Get("u")
}

func (t *Tracker) writeClientCookie(w http.ResponseWriter, clientID, userID string) {
	values := url.Values{}
	values.Set("c", clientID)
	values.Set("u", userID)
	http.SetCookie(w, &http.Cookie{
		Name:     ClientCookie,
		Value:    values.Encode(),
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
