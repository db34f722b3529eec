package guard

import (
	"log/slog"
	"sync"

	"checklist/internal/platform/metrics"
	"checklist/internal/session/models"
)

//go:generate mockgen -source=controller.go -destination=mocks/mocks.go -package=mocks Navigator

// Navigator performs imperative navigation.
type Navigator interface {
	Push(path string)
	CurrentPath() string
}

// Effect is a decision stamped with the generation it was evaluated in.
type Effect struct {
	Decision   Decision
	generation uint64
}

// Controller reacts to session changes. Only the most recently evaluated
// effect is ever applied; effects superseded by a newer evaluation are
// dropped, so a slow redirect cannot override a newer session state.
type Controller struct {
	nav       Navigator
	loginPath string
	logger    *slog.Logger
	metrics   *metrics.Metrics

	mu         sync.Mutex
	generation uint64
}

type Option func(*Controller)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

func NewController(nav Navigator, loginPath string, opts ...Option) *Controller {
	c := &Controller{
		nav:       nav,
		loginPath: loginPath,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Evaluate decides for the given snapshot and supersedes every effect
// evaluated before it.
func (c *Controller) Evaluate(s models.Session) Effect {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	return Effect{
		Decision:   Decide(s, c.nav.CurrentPath(), c.loginPath),
		generation: c.generation,
	}
}

// Apply executes a redirect effect if it is still the latest one. It reports
// whether navigation happened.
func (c *Controller) Apply(e Effect) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e.generation != c.generation {
		c.logger.Debug("dropping stale guard effect", "outcome", e.Decision.Outcome.String())
		return false
	}
	if e.Decision.Outcome != OutcomeRedirect {
		return false
	}
	c.nav.Push(e.Decision.RedirectTo)
	return true
}

// Sync evaluates and applies in one step.
func (c *Controller) Sync(s models.Session) Decision {
	e := c.Evaluate(s)
	c.Apply(e)
	c.metrics.IncGuardDecision(e.Decision.Outcome.String())
	return e.Decision
}
