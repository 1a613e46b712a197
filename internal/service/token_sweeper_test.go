package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go-media-cms/internal/metrics"
)

type panickingPruner struct{}

type countingPruner struct {
	calls atomic.Int64
}

func (p *countingPruner) DeleteExpiredBefore(context.Context, time.Time) (int64, error) {
	p.calls.Add(1)
	return 1, nil
}

func (panickingPruner) DeleteExpiredBefore(context.Context, time.Time) (int64, error) {
	panic("boom")
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTokenSweeper_SweepOnceUsesCurrentTime(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 4, 1, 10, 1, 0, 0, time.UTC)}
	store := new(mockTokenStore)
	atNow := mock.MatchedBy(func(threshold time.Time) bool { return threshold.Equal(clock.now) })
	store.On("DeleteExpiredBefore", mock.Anything, atNow).Return(int64(3), nil).Once()

	sweeper := NewTokenSweeper(store, time.Minute, quietLogger(), nil)
	sweeper.now = clock.Now

	removed, err := sweeper.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
	store.AssertExpectations(t)
}

func TestTokenSweeper_FailureIsContained(t *testing.T) {
	m := metrics.New()
	store := new(mockTokenStore)
	store.On("DeleteExpiredBefore", mock.Anything, mock.Anything).Return(int64(0), errors.New("db down"))

	sweeper := NewTokenSweeper(store, time.Minute, quietLogger(), m)

	removed, err := sweeper.SweepOnce(context.Background())
	assert.Error(t, err)
	assert.Zero(t, removed)
}

func TestTokenSweeper_PanicIsRecovered(t *testing.T) {
	sweeper := NewTokenSweeper(panickingPruner{}, time.Minute, quietLogger(), nil)

	var (
		removed int64
		err     error
	)
	assert.NotPanics(t, func() {
		removed, err = sweeper.SweepOnce(context.Background())
	})
	assert.ErrorContains(t, err, "panicked")
	assert.Zero(t, removed)
}

func TestTokenSweeper_RunSweepsAtStartAndStopsOnCancel(t *testing.T) {
	store := &countingPruner{}
	sweeper := NewTokenSweeper(store, 10*time.Millisecond, quietLogger(), metrics.New())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return store.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancellation")
	}
}

func TestTokenSweeper_DefaultInterval(t *testing.T) {
	sweeper := NewTokenSweeper(new(mockTokenStore), 0, nil, nil)
	assert.Equal(t, DefaultSweepInterval, sweeper.interval)
}
