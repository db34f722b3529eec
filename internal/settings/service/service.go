// Package service owns the checklist settings: which fields a driver must fill
// before a checklist can be submitted. One Service is created at startup and
// shared by every handler.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"

	"checklist/internal/platform/metrics"
	"checklist/internal/settings/models"
)

// Store is the key-value persistence the service writes through to.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics

	// mu serializes read-merge-write so concurrent updates never drop each
	// other, and keeps persisted order equal to in-memory order.
	mu      sync.Mutex
	current models.ChecklistSettings
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

// New loads persisted settings over the defaults. Load failures are logged
// and the defaults stay in effect.
func New(ctx context.Context, store Store, opts ...Option) *Service {
	s := &Service{
		store:   store,
		current: models.Defaults(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s.load(ctx)
	return s
}

func (s *Service) load(ctx context.Context) {
	raw, ok, err := s.store.Get(ctx, models.StorageKey)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load checklist settings, using defaults", "error", err)
		s.metrics.IncSettingsPersistFailure("load")
		return
	}
	if !ok {
		return
	}

	// Decode over the defaults so keys missing from older documents keep
	// their default value.
	loaded := models.Defaults()
	if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
		s.logger.ErrorContext(ctx, "stored checklist settings are unreadable, using defaults", "error", err)
		s.metrics.IncSettingsPersistFailure("load")
		return
	}
	s.current = loaded
}

// Settings returns a copy of the current settings.
func (s *Service) Settings() models.ChecklistSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Update merges p into the current settings and writes the result through to
// the store. It never fails: persistence errors are logged and the in-memory
// update stands.
func (s *Service) Update(ctx context.Context, p models.Partial) models.ChecklistSettings {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = s.current.Merge(p)
	s.metrics.IncSettingsUpdates()
	s.persist(ctx, s.current)
	return s.current
}

func (s *Service) persist(ctx context.Context, settings models.ChecklistSettings) {
	raw, err := json.Marshal(settings)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to encode checklist settings", "error", err)
		s.metrics.IncSettingsPersistFailure("save")
		return
	}
	if err := s.store.Set(ctx, models.StorageKey, string(raw)); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist checklist settings", "error", err)
		s.metrics.IncSettingsPersistFailure("save")
	}
}

func (s *Service) IsLocationRequired() bool { return s.Settings().RequiredLocations }
func (s *Service) IsKilometerRequired() bool { return s.Settings().RequiredKilometer }
func (s *Service) IsPhotoRequired() bool { return s.Settings().RequiredPhotos }
func (s *Service) IsAudioRequired() bool { return s.Settings().RequiredAudio }
func (s *Service) IsObservationRequired() bool { return s.Settings().RequiredObservations }
