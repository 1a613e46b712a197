package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go-media-cms/internal/metrics"
	"go-media-cms/internal/model"
	"go-media-cms/internal/repository"
	"go-media-cms/internal/security"
)

const sessionTestSecret = "session-test-secret"

type sessionFixture struct {
	svc     *SessionService
	store   *repository.RedisTokenRepository
	signer  *security.Signer
	clock   *fakeClock
	sweeper *TokenSweeper
}

func newSessionFixture(t *testing.T) sessionFixture {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	clock := &fakeClock{now: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)}
	signer, err := security.NewSigner(sessionTestSecret, time.Hour, security.WithClock(clock.Now))
	require.NoError(t, err)

	store := repository.NewRedisTokenRepository(rdb, "session-test:")
	m := metrics.New()
	svc := NewSessionService(store, signer, WithSessionClock(clock.Now), WithSessionMetrics(m))

	sweeper := NewTokenSweeper(store, time.Hour, nil, m)
	sweeper.now = clock.Now

	return sessionFixture{svc: svc, store: store, signer: signer, clock: clock, sweeper: sweeper}
}

func TestSessionService_IssueThenUsable(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	token, err := f.svc.Issue(ctx, "alice", 7)
	require.NoError(t, err)
	assert.NotEmpty(t, token.ID)
	assert.NotEmpty(t, token.Value)
	assert.Equal(t, int64(7), token.HolderID)

	exp, ok := f.signer.ExpiryOf(token.Value)
	require.True(t, ok)
	assert.True(t, exp.Equal(token.ExpiresAt))

	usable, err := f.svc.IsUsable(ctx, token.Value)
	require.NoError(t, err)
	assert.True(t, usable)

	claims, ok, err := f.svc.Validate(ctx, token.Value)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "alice", claims.Identity())
	assert.Equal(t, int64(7), claims.HolderID)
}

func TestSessionService_RevokeWhileSignatureStillValid(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	token, err := f.svc.Issue(ctx, "alice", 7)
	require.NoError(t, err)

	f.clock.Advance(30 * time.Minute)
	usable, err := f.svc.IsUsable(ctx, token.Value)
	require.NoError(t, err)
	assert.True(t, usable)

	f.clock.Advance(time.Minute)
	require.NoError(t, f.svc.Revoke(ctx, token.Value))

	f.clock.Advance(time.Minute)
	usable, err = f.svc.IsUsable(ctx, token.Value)
	require.NoError(t, err)
	assert.False(t, usable)

	_, verified := f.signer.Verify(token.Value)
	assert.True(t, verified)

	require.NoError(t, f.svc.Revoke(ctx, token.Value))
}

func TestSessionService_RevokeAllIsolatesHolders(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	a, err := f.svc.Issue(ctx, "alice", 7)
	require.NoError(t, err)
	b, err := f.svc.Issue(ctx, "alice", 7)
	require.NoError(t, err)
	other, err := f.svc.Issue(ctx, "bob", 8)
	require.NoError(t, err)
	assert.NotEqual(t, a.Value, b.Value)

	require.NoError(t, f.svc.RevokeAll(ctx, 7))

	for _, value := range []string{a.Value, b.Value} {
		usable, err := f.svc.IsUsable(ctx, value)
		require.NoError(t, err)
		assert.False(t, usable)
	}

	usable, err := f.svc.IsUsable(ctx, other.Value)
	require.NoError(t, err)
	assert.True(t, usable)

	require.NoError(t, f.svc.RevokeAll(ctx, 7))
}

func TestSessionService_ExpiredButUnsweptThenSwept(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	token, err := f.svc.Issue(ctx, "alice", 7)
	require.NoError(t, err)

	f.clock.Advance(61 * time.Minute)

	usable, err := f.svc.IsUsable(ctx, token.Value)
	require.NoError(t, err)
	assert.False(t, usable)

	record, err := f.store.FindByValue(ctx, token.Value)
	require.NoError(t, err)
	assert.Equal(t, token.ID, record.ID)

	removed, err := f.sweeper.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = f.store.FindByValue(ctx, token.Value)
	assert.ErrorIs(t, err, model.ErrTokenNotFound)

	removed, err = f.sweeper.SweepOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestSessionService_RejectsForeignAndMalformedTokens(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	foreign, err := security.NewSigner("another-secret", time.Hour, security.WithClock(f.clock.Now))
	require.NoError(t, err)
	forged, err := foreign.Issue("alice", 7)
	require.NoError(t, err)

	for _, value := range []string{"", "not-a-token", forged} {
		usable, err := f.svc.IsUsable(ctx, value)
		require.NoError(t, err)
		assert.False(t, usable, value)
	}
}

func TestSessionService_SessionsNewestFirst(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	first, err := f.svc.Issue(ctx, "alice", 7)
	require.NoError(t, err)
	f.clock.Advance(5 * time.Minute)
	second, err := f.svc.Issue(ctx, "alice", 7)
	require.NoError(t, err)
	_, err = f.svc.Issue(ctx, "bob", 8)
	require.NoError(t, err)

	sessions, err := f.svc.Sessions(ctx, 7)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, second.ID, sessions[0].ID)
	assert.Equal(t, first.ID, sessions[1].ID)

	none, err := f.svc.Sessions(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSessionService_StoreFaultIsNotASecurityDecision(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)}
	signer, err := security.NewSigner(sessionTestSecret, time.Hour, security.WithClock(clock.Now))
	require.NoError(t, err)

	store := new(mockTokenStore)
	svc := NewSessionService(store, signer, WithSessionClock(clock.Now))
	ctx := context.Background()
	outage := errors.New("connection refused")

	value, err := signer.Issue("alice", 7)
	require.NoError(t, err)

	store.On("FindByValue", mock.Anything, value).Return(model.IssuedToken{}, outage).Once()
	usable, err := svc.IsUsable(ctx, value)
	assert.False(t, usable)
	assert.ErrorIs(t, err, model.ErrStoreUnavailable)
	assert.ErrorIs(t, err, outage)

	store.On("Put", mock.Anything, mock.AnythingOfType("model.IssuedToken")).Return(outage).Once()
	_, err = svc.Issue(ctx, "alice", 7)
	assert.ErrorIs(t, err, model.ErrStoreUnavailable)

	store.On("DeleteByValue", mock.Anything, value).Return(outage).Once()
	assert.ErrorIs(t, svc.Revoke(ctx, value), model.ErrStoreUnavailable)

	store.On("DeleteByHolder", mock.Anything, int64(7)).Return(outage).Once()
	assert.ErrorIs(t, svc.RevokeAll(ctx, 7), model.ErrStoreUnavailable)

	store.On("FindByHolder", mock.Anything, int64(7)).Return(nil, outage).Once()
	_, err = svc.Sessions(ctx, 7)
	assert.ErrorIs(t, err, model.ErrStoreUnavailable)

	store.AssertExpectations(t)
}

func TestSessionService_ConflictIsInternalFault(t *testing.T) {
	signer, err := security.NewSigner(sessionTestSecret, time.Hour)
	require.NoError(t, err)

	store := new(mockTokenStore)
	store.On("Put", mock.Anything, mock.AnythingOfType("model.IssuedToken")).Return(model.ErrTokenConflict)
	svc := NewSessionService(store, signer)

	_, err = svc.Issue(context.Background(), "alice", 7)
	assert.ErrorIs(t, err, model.ErrTokenConflict)
	assert.NotErrorIs(t, err, model.ErrStoreUnavailable)
}

func TestSessionService_RejectedTokenSkipsStore(t *testing.T) {
	signer, err := security.NewSigner(sessionTestSecret, time.Hour)
	require.NoError(t, err)

	store := new(mockTokenStore)
	svc := NewSessionService(store, signer)

	usable, err := svc.IsUsable(context.Background(), "garbage")
	require.NoError(t, err)
	assert.False(t, usable)
	store.AssertNotCalled(t, "FindByValue", mock.Anything, mock.Anything)
}
