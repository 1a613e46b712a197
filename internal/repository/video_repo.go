package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-media-cms/internal/model"
)

type VideoRepository struct {
	pool *pgxpool.Pool
}

func NewVideoRepository(pool *pgxpool.Pool) *VideoRepository {
	return &VideoRepository{pool: pool}
}

func (r *VideoRepository) Create(ctx context.Context, v model.Video) (model.Video, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO videos (title, url, duration_seconds)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		v.Title, v.URL, v.DurationSeconds).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return model.Video{}, fmt.Errorf("create video: %w", err)
	}
	return v, nil
}

func (r *VideoRepository) FindByID(ctx context.Context, id int64) (model.Video, error) {
	var v model.Video
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, url, duration_seconds, created_at, updated_at
		 FROM videos WHERE id = $1`, id).
		Scan(&v.ID, &v.Title, &v.URL, &v.DurationSeconds, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Video{}, model.ErrVideoNotFound
	}
	if err != nil {
		return model.Video{}, fmt.Errorf("find video: %w", err)
	}
	return v, nil
}

func (r *VideoRepository) List(ctx context.Context) ([]model.Video, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, url, duration_seconds, created_at, updated_at
		 FROM videos ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	videos := make([]model.Video, 0)
	for rows.Next() {
		var v model.Video
		if err := rows.Scan(&v.ID, &v.Title, &v.URL, &v.DurationSeconds, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

func (r *VideoRepository) Update(ctx context.Context, v model.Video) (model.Video, error) {
	err := r.pool.QueryRow(ctx,
		`UPDATE videos SET title = $2, url = $3, duration_seconds = $4, updated_at = $5
		 WHERE id = $1
		 RETURNING created_at, updated_at`,
		v.ID, v.Title, v.URL, v.DurationSeconds, time.Now().UTC()).Scan(&v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Video{}, model.ErrVideoNotFound
	}
	if err != nil {
		return model.Video{}, fmt.Errorf("update video: %w", err)
	}
	return v, nil
}

func (r *VideoRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrVideoNotFound
	}
	return nil
}
