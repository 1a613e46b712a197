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

const articleColumns = `a.id, a.title, a.content, a.author_id, u.username, a.publication_date, a.created_at, a.updated_at`

type ArticleRepository struct {
	pool *pgxpool.Pool
}

func NewArticleRepository(pool *pgxpool.Pool) *ArticleRepository {
	return &ArticleRepository{pool: pool}
}

func scanArticle(row pgx.Row) (model.Article, error) {
	var a model.Article
	err := row.Scan(&a.ID, &a.Title, &a.Content, &a.AuthorID, &a.AuthorUsername,
		&a.PublicationDate, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *ArticleRepository) Create(ctx context.Context, a model.Article) (model.Article, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO articles (title, content, author_id, publication_date)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		a.Title, a.Content, a.AuthorID, a.PublicationDate.UTC()).Scan(&id)
	if err != nil {
		return model.Article{}, fmt.Errorf("create article: %w", err)
	}
	return r.FindByID(ctx, id)
}

// FindByID treats an article whose author was deleted as missing.
func (r *ArticleRepository) FindByID(ctx context.Context, id int64) (model.Article, error) {
	a, err := scanArticle(r.pool.QueryRow(ctx,
		`SELECT `+articleColumns+`
		 FROM articles a JOIN users u ON u.id = a.author_id
		 WHERE a.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Article{}, model.ErrArticleNotFound
	}
	if err != nil {
		return model.Article{}, fmt.Errorf("find article: %w", err)
	}
	return a, nil
}

func (r *ArticleRepository) List(ctx context.Context) ([]model.Article, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+articleColumns+`
		 FROM articles a JOIN users u ON u.id = a.author_id
		 ORDER BY a.publication_date DESC, a.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	articles := make([]model.Article, 0)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

func (r *ArticleRepository) Update(ctx context.Context, a model.Article) (model.Article, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE articles SET title = $2, content = $3, publication_date = $4, updated_at = $5
		 WHERE id = $1`,
		a.ID, a.Title, a.Content, a.PublicationDate.UTC(), time.Now().UTC())
	if err != nil {
		return model.Article{}, fmt.Errorf("update article: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.Article{}, model.ErrArticleNotFound
	}
	return r.FindByID(ctx, a.ID)
}

func (r *ArticleRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrArticleNotFound
	}
	return nil
}
