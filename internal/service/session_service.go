package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"go-media-cms/internal/metrics"
	"go-media-cms/internal/model"
	"go-media-cms/internal/security"
)

// SessionService ties the signer to the token store. A token is usable only
// while it verifies and its exact value is present in the store.
type SessionService struct {
	store   TokenStore
	signer  TokenSigner
	metrics *metrics.Metrics
	now     func() time.Time
}

type SessionOption func(*SessionService)

func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *SessionService) {
		s.now = now
	}
}

func WithSessionMetrics(m *metrics.Metrics) SessionOption {
	return func(s *SessionService) {
		s.metrics = m
	}
}

func NewSessionService(store TokenStore, signer TokenSigner, opts ...SessionOption) *SessionService {
	s := &SessionService{
		store:  store,
		signer: signer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue signs a new token for the holder and records it in the store. The
// stored expiry is read back from the signed value so both always agree.
func (s *SessionService) Issue(ctx context.Context, identity string, holderID int64) (model.IssuedToken, error) {
	value, err := s.signer.Issue(identity, holderID)
	if err != nil {
		return model.IssuedToken{}, fmt.Errorf("sign token: %w", err)
	}

	expiresAt, ok := s.signer.ExpiryOf(value)
	if !ok {
		return model.IssuedToken{}, errors.New("sign token: signed value carries no expiry")
	}

	token := model.IssuedToken{
		ID:        uuid.NewString(),
		Value:     value,
		HolderID:  holderID,
		IssuedAt:  s.now().UTC(),
		ExpiresAt: expiresAt,
	}

	if err := s.store.Put(ctx, token); err != nil {
		if errors.Is(err, model.ErrTokenConflict) {
			return model.IssuedToken{}, fmt.Errorf("issue token for holder %d: %w", holderID, err)
		}
		return model.IssuedToken{}, storeFault("issue token", err)
	}

	s.metrics.TokenIssued()
	return token, nil
}

func (s *SessionService) IsUsable(ctx context.Context, token string) (bool, error) {
	_, ok, err := s.Validate(ctx, token)
	return ok, err
}

// Validate verifies the token and then checks the allow-list. A failed
// verification never touches the store. A store miss is a plain false; a
// store fault is returned as ErrStoreUnavailable.
func (s *SessionService) Validate(ctx context.Context, token string) (security.Claims, bool, error) {
	claims, ok := s.signer.Verify(token)
	if !ok {
		s.metrics.ObserveValidation(metrics.ValidationRejected)
		return security.Claims{}, false, nil
	}

	if _, err := s.store.FindByValue(ctx, token); err != nil {
		if errors.Is(err, model.ErrTokenNotFound) {
			s.metrics.ObserveValidation(metrics.ValidationRevoked)
			return security.Claims{}, false, nil
		}
		s.metrics.ObserveValidation(metrics.ValidationError)
		return security.Claims{}, false, storeFault("validate token", err)
	}

	s.metrics.ObserveValidation(metrics.ValidationOK)
	return claims, true, nil
}

// Revoke removes a single token. Revoking an unknown token is not an error.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	if err := s.store.DeleteByValue(ctx, token); err != nil {
		return storeFault("revoke token", err)
	}
	s.metrics.TokenRevoked("single")
	return nil
}

// RevokeAll removes every token held by holderID and leaves other holders
// untouched.
func (s *SessionService) RevokeAll(ctx context.Context, holderID int64) error {
	if err := s.store.DeleteByHolder(ctx, holderID); err != nil {
		return storeFault("revoke holder tokens", err)
	}
	s.metrics.TokenRevoked("holder")
	return nil
}

// Sessions lists the holder's stored records, newest first.
func (s *SessionService) Sessions(ctx context.Context, holderID int64) ([]model.SessionInfo, error) {
	tokens, err := s.store.FindByHolder(ctx, holderID)
	if err != nil {
		return nil, storeFault("list sessions", err)
	}

	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].IssuedAt.After(tokens[j].IssuedAt)
	})

	sessions := make([]model.SessionInfo, 0, len(tokens))
	for _, t := range tokens {
		sessions = append(sessions, t.Info())
	}
	return sessions, nil
}

func storeFault(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, model.ErrStoreUnavailable, err)
}
