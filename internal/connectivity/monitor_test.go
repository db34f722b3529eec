package connectivity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checklist/internal/platform/config"
	"checklist/internal/platform/metrics"
)

type scriptedChecker struct {
	mu      sync.Mutex
	err     error
	tenants []string
}

func (c *scriptedChecker) Healthcheck(_ context.Context, tenant string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tenants = append(c.tenants, tenant)
	return c.err
}

func (c *scriptedChecker) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

func (c *scriptedChecker) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tenants)
}

func TestMonitorOpensAfterThreshold(t *testing.T) {
	checker := &scriptedChecker{err: errors.New("unreachable")}
	m := metrics.NewWith(prometheus.NewRegistry())
	mon := New(checker, config.ConnectivityConfig{DefaultClientID: "acme", FailureThreshold: 2}, WithMetrics(m))

	mon.Check(context.Background())
	assert.True(t, mon.Online(), "one failure is below the threshold")

	mon.Check(context.Background())
	assert.False(t, mon.Online())
	assert.InDelta(t, 0, testutil.ToFloat64(m.BackendOnline), 0)

	checker.fail(nil)
	mon.Check(context.Background())
	assert.True(t, mon.Online())
	assert.InDelta(t, 1, testutil.ToFloat64(m.BackendOnline), 0)
	assert.Equal(t, []string{"acme", "acme", "acme"}, checker.tenants)
}

func TestMonitorRunPollsUntilCancelled(t *testing.T) {
	checker := &scriptedChecker{}
	mon := New(checker, config.ConnectivityConfig{DefaultClientID: "acme", PollInterval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- mon.Run(ctx) }()

	require.Eventually(t, func() bool { return checker.calls() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}
}

func TestMonitorDisabledWithoutTenant(t *testing.T) {
	checker := &scriptedChecker{}
	mon := New(checker, config.ConnectivityConfig{})

	assert.False(t, mon.Enabled())
	assert.NoError(t, mon.Run(context.Background()))
	assert.Zero(t, checker.calls())
	assert.True(t, mon.Online())
}

func TestMonitorReportIgnoredWhenDisabled(t *testing.T) {
	mon := New(&scriptedChecker{}, config.ConnectivityConfig{FailureThreshold: 1})

	mon.Report(context.Background(), errors.New("unreachable"))

	assert.True(t, mon.Online())
}

func TestMonitorReportFromRequestPath(t *testing.T) {
	checker := &scriptedChecker{}
	mon := New(checker, config.ConnectivityConfig{DefaultClientID: "acme", FailureThreshold: 1})

	mon.Report(context.Background(), errors.New("unreachable"))
	assert.False(t, mon.Online())

	mon.Check(context.Background())
	assert.True(t, mon.Online(), "a healthy check closes the breaker again")
	assert.Equal(t, 1, checker.calls())
}
