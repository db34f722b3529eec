package service

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"checklist/internal/platform/metrics"
	"checklist/internal/vehicle/models"
	dErrors "checklist/pkg/domain-errors"
)

type cacheKey struct {
	clientID string
	userID   string
}

// Reporter receives the outcome of backend calls so reachability tracks
// request traffic between health checks.
type Reporter interface {
	Report(ctx context.Context, err error)
}

// Service serves the vehicle list with offline fallback: the primary
// provider when online, otherwise (or when the backend is unreachable or
// answers with garbage) the last list cached for the scope, otherwise the
// fallback provider. Any other backend error is returned to the caller.
type Service struct {
	primary       Provider
	primarySource models.Source
	fallback      Provider
	online        func() bool
	reporter      Reporter
	logger        *slog.Logger
	metrics       *metrics.Metrics

	mu    sync.RWMutex
	cache map[cacheKey][]models.Vehicle
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

// WithOnline reports backend reachability. Without it the backend is
// assumed reachable.
func WithOnline(online func() bool) Option {
	return func(s *Service) {
		s.online = online
	}
}

func WithReporter(r Reporter) Option {
	return func(s *Service) {
		s.reporter = r
	}
}

func WithFallback(p Provider) Option {
	return func(s *Service) {
		s.fallback = p
	}
}

func New(primary Provider, opts ...Option) *Service {
	s := &Service{
		primary:       primary,
		primarySource: models.SourceUpstream,
		fallback:      StaticProvider{},
		online:        func() bool { return true },
		logger:        slog.Default(),
		cache:         make(map[cacheKey][]models.Vehicle),
	}
	if _, ok := primary.(StaticProvider); ok {
		s.primarySource = models.SourceStatic
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List(ctx context.Context, scope models.Scope) (models.Listing, error) {
	key := cacheKey{clientID: scope.ClientID, userID: scope.UserID}

	if s.online() {
		vehicles, err := s.primary.List(ctx, scope)
		s.report(ctx, err)
		if err == nil {
			s.store(key, vehicles)
			return models.Listing{Vehicles: slices.Clone(vehicles), Source: s.primarySource}, nil
		}
		if !canFallBack(err) {
			return models.Listing{}, err
		}
		level := slog.LevelError
		if dErrors.IsTransient(err) {
			level = slog.LevelWarn
		}
		s.logger.Log(ctx, level, "vehicle list unavailable, falling back",
			"client_id", scope.ClientID,
			"error", err,
		)
	}

	if cached, ok := s.cached(key); ok {
		s.metrics.IncVehicleFallback(string(models.SourceCache))
		return models.Listing{Vehicles: cached, Source: models.SourceCache, Fallback: true}, nil
	}

	vehicles, err := s.fallback.List(ctx, scope)
	if err != nil {
		return models.Listing{}, err
	}
	s.metrics.IncVehicleFallback(string(models.SourceStatic))
	return models.Listing{Vehicles: vehicles, Source: models.SourceStatic, Fallback: true}, nil
}

// canFallBack is true for transport failures, malformed backend data and
// errors that carry no domain code. Rejected credentials, missing resources
// and bad requests are the caller's to see.
func canFallBack(err error) bool {
	code, ok := dErrors.CodeOf(err)
	if !ok {
		return true
	}
	return dErrors.IsTransient(err) || code == dErrors.CodeInternal
}

// report feeds the reporter. Only transient errors count against the
// backend; any other answer proves it reachable.
func (s *Service) report(ctx context.Context, err error) {
	if s.reporter == nil {
		return
	}
	if err != nil && !dErrors.IsTransient(err) {
		err = nil
	}
	s.reporter.Report(ctx, err)
}

// ClearTenant drops the cached list of a user in a tenant. An empty userID
// drops every list cached for the tenant.
func (s *Service) ClearTenant(_ context.Context, clientID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.cache {
		if k.clientID == clientID && (userID == "" || k.userID == userID) {
			delete(s.cache, k)
		}
	}
	return nil
}

func (s *Service) store(key cacheKey, vehicles []models.Vehicle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = slices.Clone(vehicles)
}

func (s *Service) cached(key cacheKey) ([]models.Vehicle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.cache[key]
	if !ok {
		return nil, false
	}
	return slices.Clone(v), true
}
