package warmer

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingWarmable struct {
	calls atomic.Int32
	err   error
}

func (c *countingWarmable) WarmList(context.Context) error {
	c.calls.Add(1)
	return c.err
}

func TestRunner_WarmsImmediatelyAndStops(t *testing.T) {
	w := &countingWarmable{}
	r, err := New(Options{Stories: w})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Start(ctx) }()

	// the initial warm happens before the cron ever fires
	require.Eventually(t, func() bool { return w.calls.Load() >= 1 },
		2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("runner did not stop")
	}
}

func TestRunner_WarmFailureIsNotFatal(t *testing.T) {
	w := &countingWarmable{err: errors.New("db down")}
	r, err := New(Options{Stories: w})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Start(ctx) }()

	require.Eventually(t, func() bool { return w.calls.Load() >= 1 },
		2*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestNew_RequiresStories(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)

	_, err = New(Options{Stories: &countingWarmable{}, Schedule: "*/1 * * * *"})
	assert.NoError(t, err)
}
