package circuit

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBreaker(t *testing.T) {
	errDown := errors.New("healthcheck failed")

	t.Run("opens after consecutive failures", func(t *testing.T) {
		b := New("backend", WithFailureThreshold(2))
		assert.Equal(t, StateChange{}, b.Record(errDown))
		assert.False(t, b.IsOpen())
		assert.True(t, b.Record(errDown).Opened)
		assert.True(t, b.IsOpen())
		assert.Equal(t, "open", b.State().String())
	})

	t.Run("a success resets the failure streak", func(t *testing.T) {
		b := New("backend", WithFailureThreshold(2))
		b.Record(errDown)
		b.Record(nil)
		b.Record(errDown)
		assert.False(t, b.IsOpen())
	})

	t.Run("closes after enough successes", func(t *testing.T) {
		b := New("backend", WithFailureThreshold(1), WithSuccessThreshold(2))
		b.Record(errDown)
		assert.False(t, b.Record(nil).Closed)
		assert.True(t, b.Record(nil).Closed)
		assert.Equal(t, StateClosed, b.State())
	})

	t.Run("reset", func(t *testing.T) {
		b := New("backend", WithFailureThreshold(1))
		b.Record(errDown)
		b.Reset()
		assert.False(t, b.IsOpen())
	})
}
