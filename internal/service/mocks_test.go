package service

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"go-media-cms/internal/model"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type mockTokenStore struct {
	mock.Mock
}

func (m *mockTokenStore) Put(ctx context.Context, token model.IssuedToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockTokenStore) FindByValue(ctx context.Context, value string) (model.IssuedToken, error) {
	args := m.Called(ctx, value)
	return args.Get(0).(model.IssuedToken), args.Error(1)
}

func (m *mockTokenStore) FindByHolder(ctx context.Context, holderID int64) ([]model.IssuedToken, error) {
	args := m.Called(ctx, holderID)
	tokens, _ := args.Get(0).([]model.IssuedToken)
	return tokens, args.Error(1)
}

func (m *mockTokenStore) DeleteByValue(ctx context.Context, value string) error {
	args := m.Called(ctx, value)
	return args.Error(0)
}

func (m *mockTokenStore) DeleteByHolder(ctx context.Context, holderID int64) error {
	args := m.Called(ctx, holderID)
	return args.Error(0)
}

func (m *mockTokenStore) DeleteExpiredBefore(ctx context.Context, threshold time.Time) (int64, error) {
	args := m.Called(ctx, threshold)
	return args.Get(0).(int64), args.Error(1)
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []model.AuditEntry
}

func (r *recordingAudit) Log(_ context.Context, entry model.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *recordingAudit) Query(context.Context, model.AuditQuery) ([]model.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.AuditEntry(nil), r.entries...), nil
}
