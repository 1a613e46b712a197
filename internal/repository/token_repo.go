package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-media-cms/internal/model"
)

const pgUniqueViolation = "23505"

// TokenRepository is the Postgres allow-list of issued session tokens.
// Every mutation is a single statement, so bulk deletes apply all-or-nothing.
type TokenRepository struct {
	pool *pgxpool.Pool
}

func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

func (r *TokenRepository) Put(ctx context.Context, token model.IssuedToken) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO issued_tokens (id, value, holder_id, issued_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		token.ID, token.Value, token.HolderID, token.IssuedAt.UTC(), token.ExpiresAt.UTC())

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return model.ErrTokenConflict
	}
	if err != nil {
		return fmt.Errorf("store issued token: %w", err)
	}
	return nil
}

func (r *TokenRepository) FindByValue(ctx context.Context, value string) (model.IssuedToken, error) {
	var t model.IssuedToken
	err := r.pool.QueryRow(ctx,
		`SELECT id, value, holder_id, issued_at, expires_at
		 FROM issued_tokens WHERE value = $1`, value).
		Scan(&t.ID, &t.Value, &t.HolderID, &t.IssuedAt, &t.ExpiresAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.IssuedToken{}, model.ErrTokenNotFound
	}
	if err != nil {
		return model.IssuedToken{}, fmt.Errorf("find token by value: %w", err)
	}
	return t, nil
}

func (r *TokenRepository) FindByHolder(ctx context.Context, holderID int64) ([]model.IssuedToken, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, value, holder_id, issued_at, expires_at
		 FROM issued_tokens WHERE holder_id = $1`, holderID)
	if err != nil {
		return nil, fmt.Errorf("find tokens by holder: %w", err)
	}
	defer rows.Close()

	tokens := make([]model.IssuedToken, 0)
	for rows.Next() {
		var t model.IssuedToken
		if err := rows.Scan(&t.ID, &t.Value, &t.HolderID, &t.IssuedAt, &t.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scan issued token: %w", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

func (r *TokenRepository) DeleteByValue(ctx context.Context, value string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM issued_tokens WHERE value = $1`, value)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (r *TokenRepository) DeleteByHolder(ctx context.Context, holderID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM issued_tokens WHERE holder_id = $1`, holderID)
	if err != nil {
		return fmt.Errorf("revoke all holder tokens: %w", err)
	}
	return nil
}

func (r *TokenRepository) DeleteExpiredBefore(ctx context.Context, threshold time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM issued_tokens WHERE expires_at < $1`, threshold.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
