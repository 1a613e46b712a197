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

type PodcastRepository struct {
	pool *pgxpool.Pool
}

func NewPodcastRepository(pool *pgxpool.Pool) *PodcastRepository {
	return &PodcastRepository{pool: pool}
}

func (r *PodcastRepository) Create(ctx context.Context, p model.Podcast) (model.Podcast, error) {
	if p.Episodes == nil {
		p.Episodes = []string{}
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO podcasts (title, audio_url, episodes)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		p.Title, p.AudioURL, p.Episodes).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.Podcast{}, fmt.Errorf("create podcast: %w", err)
	}
	return p, nil
}

func (r *PodcastRepository) FindByID(ctx context.Context, id int64) (model.Podcast, error) {
	var p model.Podcast
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, audio_url, episodes, created_at, updated_at
		 FROM podcasts WHERE id = $1`, id).
		Scan(&p.ID, &p.Title, &p.AudioURL, &p.Episodes, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Podcast{}, model.ErrPodcastNotFound
	}
	if err != nil {
		return model.Podcast{}, fmt.Errorf("find podcast: %w", err)
	}
	return p, nil
}

func (r *PodcastRepository) List(ctx context.Context) ([]model.Podcast, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, audio_url, episodes, created_at, updated_at
		 FROM podcasts ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list podcasts: %w", err)
	}
	defer rows.Close()

	podcasts := make([]model.Podcast, 0)
	for rows.Next() {
		var p model.Podcast
		if err := rows.Scan(&p.ID, &p.Title, &p.AudioURL, &p.Episodes, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan podcast: %w", err)
		}
		podcasts = append(podcasts, p)
	}
	return podcasts, rows.Err()
}

func (r *PodcastRepository) Update(ctx context.Context, p model.Podcast) (model.Podcast, error) {
	if p.Episodes == nil {
		p.Episodes = []string{}
	}
	err := r.pool.QueryRow(ctx,
		`UPDATE podcasts SET title = $2, audio_url = $3, episodes = $4, updated_at = $5
		 WHERE id = $1
		 RETURNING created_at, updated_at`,
		p.ID, p.Title, p.AudioURL, p.Episodes, time.Now().UTC()).Scan(&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Podcast{}, model.ErrPodcastNotFound
	}
	if err != nil {
		return model.Podcast{}, fmt.Errorf("update podcast: %w", err)
	}
	return p, nil
}

func (r *PodcastRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM podcasts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete podcast: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPodcastNotFound
	}
	return nil
}
