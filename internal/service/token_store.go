package service

import (
	"context"
	"time"

	"go-media-cms/internal/model"
	"go-media-cms/internal/security"
)

// TokenStore is the allow-list of issued tokens. Implementations make every
// operation atomic and every delete idempotent.
type TokenStore interface {
	Put(ctx context.Context, token model.IssuedToken) error
	FindByValue(ctx context.Context, value string) (model.IssuedToken, error)
	FindByHolder(ctx context.Context, holderID int64) ([]model.IssuedToken, error)
	DeleteByValue(ctx context.Context, value string) error
	DeleteByHolder(ctx context.Context, holderID int64) error
	DeleteExpiredBefore(ctx context.Context, threshold time.Time) (int64, error)
}

// TokenSigner is satisfied by *security.Signer.
type TokenSigner interface {
	Issue(identity string, holderID int64) (string, error)
	Verify(token string) (security.Claims, bool)
	ExpiryOf(token string) (time.Time, bool)
}
