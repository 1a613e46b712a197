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

const commentColumns = `id::text, content_id, content_type, text, author, parent_id::text, created_at, updated_at`

type CommentRepository struct {
	pool *pgxpool.Pool
}

func NewCommentRepository(pool *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{pool: pool}
}

func scanComment(row pgx.Row) (model.Comment, error) {
	var c model.Comment
	var contentType string
	err := row.Scan(&c.ID, &c.ContentID, &contentType, &c.Text, &c.Author, &c.ParentID, &c.CreatedAt, &c.UpdatedAt)
	c.ContentType = model.ContentType(contentType)
	return c, err
}

func (r *CommentRepository) Create(ctx context.Context, c model.Comment) (model.Comment, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO comments (id, content_id, content_type, text, author, parent_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		c.ID, c.ContentID, string(c.ContentType), c.Text, c.Author, c.ParentID, c.CreatedAt.UTC())
	if err != nil {
		return model.Comment{}, fmt.Errorf("create comment: %w", err)
	}
	c.UpdatedAt = c.CreatedAt
	return c, nil
}

func (r *CommentRepository) FindByID(ctx context.Context, id string) (model.Comment, error) {
	c, err := scanComment(r.pool.QueryRow(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Comment{}, model.ErrCommentNotFound
	}
	if err != nil {
		return model.Comment{}, fmt.Errorf("find comment: %w", err)
	}
	return c, nil
}

// ListByContent returns every comment on a content item, oldest first.
func (r *CommentRepository) ListByContent(ctx context.Context, contentType model.ContentType, contentID int64) ([]model.Comment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+commentColumns+`
		 FROM comments
		 WHERE content_type = $1 AND content_id = $2
		 ORDER BY created_at ASC, id ASC`,
		string(contentType), contentID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]model.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *CommentRepository) UpdateText(ctx context.Context, id, text string) (model.Comment, error) {
	c, err := scanComment(r.pool.QueryRow(ctx,
		`UPDATE comments SET text = $2, updated_at = $3
		 WHERE id = $1
		 RETURNING `+commentColumns,
		id, text, time.Now().UTC()))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Comment{}, model.ErrCommentNotFound
	}
	if err != nil {
		return model.Comment{}, fmt.Errorf("update comment: %w", err)
	}
	return c, nil
}

// Delete removes the comment and, through the foreign key, all of its replies.
func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCommentNotFound
	}
	return nil
}
