package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	jwttoken "checklist/internal/jwt_token"
	"checklist/internal/platform/metrics"
	"checklist/internal/session/models"
	"checklist/internal/upstream"
	dErrors "checklist/pkg/domain-errors"
	"checklist/pkg/platform/validation"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Tokens,Refresher

// Tokens mints and validates session tokens.
type Tokens interface {
	IssueSession(ctx context.Context, userID, clientID, upstreamToken string, ttl time.Duration) (string, time.Time, error)
	ValidateSession(token string) (*jwttoken.SessionClaims, error)
}

// Refresher exchanges a backend refresh token for a new token pair.
type Refresher interface {
	RefreshToken(ctx context.Context, tenant, refreshToken string) (*upstream.TokenResponse, error)
}

const (
	defaultHydrationWait   = 2 * time.Second
	defaultRefreshDeadline = 15 * time.Second
	// Completed hydrations are remembered briefly so a client retrying after a
	// loading response picks up the result instead of replaying a refresh
	// token the backend may already have rotated.
	hydratedRetention = time.Minute
)

type hydrated struct {
	token        string
	refreshToken string
	session      models.Session
	at           time.Time
}

// Service resolves the current Session from request cookies. Every failure
// path yields an unauthenticated session.
type Service struct {
	tokens        Tokens
	refresher     Refresher
	cookies       CookieConfig
	sessionTTL    time.Duration
	hydrationWait time.Duration
	refreshTTL    time.Duration
	logger        *slog.Logger
	metrics       *metrics.Metrics

	group singleflight.Group

	mu     sync.Mutex
	recent map[string]hydrated
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithHydrationWait(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.hydrationWait = d
		}
	}
}

// WithRefreshDeadline bounds a single background refresh call.
func WithRefreshDeadline(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.refreshTTL = d
		}
	}
}

func WithCookies(c CookieConfig) Option {
	return func(s *Service) {
		s.cookies = c
	}
}

func New(tokens Tokens, refresher Refresher, sessionTTL time.Duration, opts ...Option) *Service {
	s := &Service{
		tokens:        tokens,
		refresher:     refresher,
		sessionTTL:    sessionTTL,
		hydrationWait: defaultHydrationWait,
		refreshTTL:    defaultRefreshDeadline,
		logger:        slog.Default(),
		recent:        make(map[string]hydrated),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve returns the session snapshot for the request. It may write cookies
// to w when an expired session is refreshed or an invalid one is dropped.
func (s *Service) Resolve(w http.ResponseWriter, r *http.Request) models.Session {
	raw := cookieValue(r, SessionCookie)
	if raw == "" {
		return models.Unauthenticated()
	}
	if err := validation.CheckStringLength("session cookie", raw, validation.MaxSessionTokenLength); err != nil {
		s.logger.DebugContext(r.Context(), "dropping oversized session cookie", "error", err)
		s.Clear(w)
		return models.Unauthenticated()
	}

	claims, err := s.tokens.ValidateSession(raw)
	switch {
	case err == nil:
		return models.Authenticated(claims.ClientID, claims.UserID, claims.UpstreamToken, claims.ExpiresAt.Time)
	case errors.Is(err, jwttoken.ErrTokenExpired) && claims != nil:
		refresh := cookieValue(r, RefreshCookie)
		if refresh == "" || validation.CheckStringLength("refresh cookie", refresh, validation.MaxRefreshTokenLength) != nil {
			s.Clear(w)
			return models.Unauthenticated()
		}
		return s.hydrate(w, r, claims, refresh)
	default:
		s.logger.DebugContext(r.Context(), "dropping invalid session cookie", "error", err)
		s.Clear(w)
		return models.Unauthenticated()
	}
}

func (s *Service) hydrate(w http.ResponseWriter, r *http.Request, claims *jwttoken.SessionClaims, refresh string) models.Session {
	ctx := r.Context()
	key := claims.ClientID + "\x00" + refresh

	if h, ok := s.recentHydration(key); ok {
		s.setCookies(w, h.token, h.refreshToken)
		return h.session
	}

	ch := s.group.DoChan(key, func() (any, error) {
		// Detached from the request so a caller giving up early does not
		// abort the refresh other callers are waiting on.
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.refreshTTL)
		defer cancel()
		h, err := s.refresh(refreshCtx, claims, refresh)
		if err != nil {
			return nil, err
		}
		s.remember(key, h)
		return h, nil
	})

	timer := time.NewTimer(s.hydrationWait)
	defer timer.Stop()

	select {
	case res := <-ch:
		if res.Err != nil {
			s.metrics.IncSessionHydration("failure")
			s.logger.WarnContext(ctx, "session hydration failed",
				"client_id", claims.ClientID,
				"error", res.Err,
			)
			s.Clear(w)
			return models.Unauthenticated()
		}
		h := res.Val.(hydrated)
		s.metrics.IncSessionHydration("success")
		s.setCookies(w, h.token, h.refreshToken)
		return h.session
	case <-timer.C:
		s.metrics.IncSessionHydration("pending")
		return models.Loading()
	case <-ctx.Done():
		return models.Loading()
	}
}

func (s *Service) refresh(ctx context.Context, claims *jwttoken.SessionClaims, refresh string) (hydrated, error) {
	tokens, err := s.refresher.RefreshToken(ctx, claims.ClientID, refresh)
	if err != nil {
		return hydrated{}, err
	}
	if tokens == nil || tokens.AccessToken == "" {
		return hydrated{}, dErrors.New(dErrors.CodeUnauthorized, "refresh returned no access token")
	}

	userID := tokens.UserID
	if userID == "" {
		userID = claims.UserID
	}
	nextRefresh := tokens.RefreshToken
	if nextRefresh == "" {
		nextRefresh = refresh
	}

	token, expiresAt, err := s.tokens.IssueSession(ctx, userID, claims.ClientID, tokens.AccessToken, s.ttlFor(tokens))
	if err != nil {
		return hydrated{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue session")
	}
	return hydrated{
		token:        token,
		refreshToken: nextRefresh,
		session:      models.Authenticated(claims.ClientID, userID, tokens.AccessToken, expiresAt),
		at:           time.Now(),
	}, nil
}

// Establish mints a session for a successful backend login and sets the
// session cookies.
func (s *Service) Establish(ctx context.Context, w http.ResponseWriter, clientID string, tokens *upstream.TokenResponse) (models.Session, error) {
	if tokens == nil || tokens.AccessToken == "" {
		return models.Unauthenticated(), dErrors.New(dErrors.CodeUnauthorized, "login returned no access token")
	}
	token, expiresAt, err := s.tokens.IssueSession(ctx, tokens.UserID, clientID, tokens.AccessToken, s.ttlFor(tokens))
	if err != nil {
		return models.Unauthenticated(), dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue session")
	}
	s.setCookies(w, token, tokens.RefreshToken)
	return models.Authenticated(clientID, tokens.UserID, tokens.AccessToken, expiresAt), nil
}

// Clear removes both session cookies.
func (s *Service) Clear(w http.ResponseWriter) {
	s.cookies.clear(w, SessionCookie)
	s.cookies.clear(w, RefreshCookie)
}

func (s *Service) setCookies(w http.ResponseWriter, token, refresh string) {
	s.cookies.set(w, SessionCookie, token)
	if refresh != "" {
		s.cookies.set(w, RefreshCookie, refresh)
	}
}

// ttlFor prefers the backend's access token lifetime so the session never
// outlives the token it carries.
func (s *Service) ttlFor(tokens *upstream.TokenResponse) time.Duration {
	if tokens.ExpiresIn > 0 {
		ttl := time.Duration(tokens.ExpiresIn) * time.Second
		if s.sessionTTL <= 0 || ttl < s.sessionTTL {
			return ttl
		}
	}
	return s.sessionTTL
}

func (s *Service) remember(key string, h hydrated) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range s.recent {
		if time.Since(v.at) > hydratedRetention {
			delete(s.recent, k)
		}
	}
	s.recent[key] = h
}

func (s *Service) recentHydration(key string) (hydrated, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.recent[key]
	if !ok || time.Since(h.at) > hydratedRetention {
		return hydrated{}, false
	}
	return h, true
}
