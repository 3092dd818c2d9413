package network

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func newTestBreaker(maxFailures int, reset time.Duration) (*CircuitBreaker, *time.Time) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(maxFailures, reset)
	cb.now = func() time.Time { return now }
	return cb, &now
}

func TestCircuitBreaker_OpensAfterMaxFailures(t *testing.T) {
	cb, _ := newTestBreaker(3, time.Minute)

	for i := 0; i < 2; i++ {
		require.True(t, cb.Allow())
		cb.Record(errBoom)
	}
	assert.Equal(t, CircuitClosed, cb.State())

	require.True(t, cb.Allow())
	cb.Record(errBoom)
	assert.Equal(t, CircuitOpen, cb.State())
	assert.False(t, cb.Allow())
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb, _ := newTestBreaker(2, time.Minute)

	cb.Record(errBoom)
	cb.Record(nil)
	cb.Record(errBoom)
	assert.Equal(t, CircuitClosed, cb.State())
	assert.Equal(t, 1, cb.Stats().Failures)
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	cb, now := newTestBreaker(1, 30*time.Second)

	cb.Record(errBoom)
	require.Equal(t, CircuitOpen, cb.State())

	*now = now.Add(31 * time.Second)
	require.True(t, cb.Allow(), "first call after reset timeout is the probe")
	assert.Equal(t, CircuitHalfOpen, cb.State())
	assert.False(t, cb.Allow(), "only one probe at a time")

	cb.Record(nil)
	assert.Equal(t, CircuitClosed, cb.State())
	assert.True(t, cb.Allow())
}

func TestCircuitBreaker_UncountedProbeStaysHalfOpen(t *testing.T) {
	cb, now := newTestBreaker(1, 30*time.Second)
	canceled := errors.New("canceled")
	countable := func(err error) bool { return err != canceled }

	require.ErrorIs(t, cb.Call(func() error { return errBoom }, countable), errBoom)
	require.Equal(t, CircuitOpen, cb.State())

	*now = now.Add(31 * time.Second)
	err := cb.Call(func() error { return canceled }, countable)
	assert.ErrorIs(t, err, canceled)
	assert.Equal(t, CircuitHalfOpen, cb.State(), "an uncounted probe proves nothing")

	require.True(t, cb.Allow(), "the probe slot is free again")
	cb.Record(nil)
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitBreaker_UncountedKeepsFailureCount(t *testing.T) {
	cb, _ := newTestBreaker(3, time.Minute)
	canceled := errors.New("canceled")
	countable := func(err error) bool { return err != canceled }

	_ = cb.Call(func() error { return errBoom }, countable)
	for i := 0; i < 5; i++ {
		_ = cb.Call(func() error { return canceled }, countable)
	}
	assert.Equal(t, 1, cb.Stats().Failures)
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	cb, now := newTestBreaker(1, 10*time.Second)

	cb.Record(errBoom)
	*now = now.Add(11 * time.Second)
	require.True(t, cb.Allow())
	cb.Record(errBoom)

	assert.Equal(t, CircuitOpen, cb.State())
	assert.False(t, cb.Allow())
}

func TestCircuitBreaker_Call(t *testing.T) {
	cb, _ := newTestBreaker(1, time.Minute)
	notCounted := errors.New("not found")

	err := cb.Call(func() error { return notCounted }, func(err error) bool { return err != notCounted })
	assert.ErrorIs(t, err, notCounted)
	assert.Equal(t, CircuitClosed, cb.State())

	err = cb.Call(func() error { return errBoom }, nil)
	assert.ErrorIs(t, err, errBoom)

	err = cb.Call(func() error { t.Fatal("must not run while open"); return nil }, nil)
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreaker_NilAllowsEverything(t *testing.T) {
	var cb *CircuitBreaker
	assert.True(t, cb.Allow())
	cb.Record(errBoom)
	assert.Equal(t, CircuitClosed, cb.State())
	assert.Equal(t, "closed", cb.Stats().StateName)
}

func TestCircuitBreaker_StateChangeHandler(t *testing.T) {
	cb, _ := newTestBreaker(1, time.Minute)
	changes := make(chan CircuitState, 1)
	cb.SetStateChangeHandler(func(from, to CircuitState) { changes <- to })

	cb.Record(errBoom)
	select {
	case to := <-changes:
		assert.Equal(t, CircuitOpen, to)
	case <-time.After(time.Second):
		t.Fatal("state change handler not called")
	}
}
