// Package connectivity tracks whether the fleet backend is reachable.
package connectivity

import (
	"context"
	"log/slog"
	"time"

	"checklist/internal/platform/config"
	"checklist/internal/platform/metrics"
	"checklist/pkg/platform/circuit"
)

// Checker checks backend health for a tenant.
type Checker interface {
	Healthcheck(ctx context.Context, tenant string) error
}

const (
	defaultInterval = 30 * time.Second
	checkTimeout    = 5 * time.Second
)

// Monitor polls the backend healthcheck and feeds a circuit breaker. The
// backend counts as offline while the breaker is open.
type Monitor struct {
	checker  Checker
	tenant   string
	interval time.Duration
	breaker  *circuit.Breaker
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Monitor)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Monitor) {
		m.logger = logger
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Monitor) {
		m.metrics = mt
	}
}

func New(checker Checker, cfg config.ConnectivityConfig, opts ...Option) *Monitor {
	m := &Monitor{
		checker:  checker,
		tenant:   cfg.DefaultClientID,
		interval: cfg.PollInterval,
		breaker:  circuit.New("backend", circuit.WithFailureThreshold(cfg.FailureThreshold)),
		logger:   slog.Default(),
	}
	if m.interval <= 0 {
		m.interval = defaultInterval
	}
	for _, opt := range opts {
		opt(m)
	}
	m.metrics.SetBackendOnline(true)
	return m
}

// Online reports whether the backend is considered reachable.
func (m *Monitor) Online() bool {
	return !m.breaker.IsOpen()
}

// Enabled is false when no tenant is configured to check.
func (m *Monitor) Enabled() bool {
	return m.tenant != ""
}

// Report records the outcome of a backend call made outside the poller.
// It is a no-op when disabled, since nothing would poll the backend back
// online.
func (m *Monitor) Report(ctx context.Context, err error) {
	if !m.Enabled() {
		return
	}
	change := m.breaker.Record(err)
	switch {
	case change.Opened:
		m.metrics.SetBackendOnline(false)
		m.logger.WarnContext(ctx, "backend marked offline", "tenant", m.tenant, "error", err)
	case change.Closed:
		m.metrics.SetBackendOnline(true)
		m.logger.InfoContext(ctx, "backend back online", "tenant", m.tenant)
	}
}

// Check polls the backend once.
func (m *Monitor) Check(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	m.Report(ctx, m.checker.Healthcheck(ctx, m.tenant))
}

// Run polls until ctx is cancelled. It returns immediately when disabled.
func (m *Monitor) Run(ctx context.Context) error {
	if !m.Enabled() {
		m.logger.InfoContext(ctx, "connectivity monitor disabled: no default client id")
		return nil
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}
