package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var _ Repository = (*postgresRepository)(nil)

const postColumns = `id, author_id, title, slug, content, excerpt, status,
	featured_image, seo_title, seo_description, seo_keywords, canonical_url,
	published_at, created_at, updated_at`

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

// EnsureSchema creates the posts table if it does not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS posts (
    id              UUID PRIMARY KEY,
    author_id       UUID NOT NULL,
    title           TEXT NOT NULL,
    slug            TEXT NOT NULL UNIQUE,
    content         TEXT NOT NULL DEFAULT '',
    excerpt         TEXT NOT NULL DEFAULT '',
    status          TEXT NOT NULL DEFAULT 'draft',
    featured_image  TEXT NOT NULL DEFAULT '',
    seo_title       TEXT NOT NULL DEFAULT '',
    seo_description TEXT NOT NULL DEFAULT '',
    seo_keywords    TEXT[] NOT NULL DEFAULT '{}',
    canonical_url   TEXT NOT NULL DEFAULT '',
    published_at    TIMESTAMPTZ,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS posts_author_id_idx ON posts (author_id);
CREATE INDEX IF NOT EXISTS posts_published_idx ON posts (status, published_at DESC);
`)
	if err != nil {
		return fmt.Errorf("ensure posts schema: %w", err)
	}
	return nil
}

func (r *postgresRepository) Insert(ctx context.Context, p *Post) (*Post, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO posts (id, author_id, title, slug, content, excerpt, status,
			featured_image, seo_title, seo_description, seo_keywords, canonical_url, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+postColumns,
		p.ID, p.AuthorID, p.Title, p.Slug, p.Content, p.Excerpt, p.Status,
		p.FeaturedImage, p.SEOTitle, p.SEODescription, pq.Array(p.SEOKeywords),
		p.CanonicalURL, p.PublishedAt,
	)
	return scanPost(row)
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	return scanPost(row)
}

func (r *postgresRepository) GetBySlug(ctx context.Context, slug string) (*Post, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = $1`, slug)
	return scanPost(row)
}

func (r *postgresRepository) Update(ctx context.Context, p *Post) (*Post, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE posts
		SET title = $2, slug = $3, content = $4, excerpt = $5, status = $6,
			featured_image = $7, seo_title = $8, seo_description = $9,
			seo_keywords = $10, canonical_url = $11, published_at = $12,
			updated_at = now()
		WHERE id = $1
		RETURNING `+postColumns,
		p.ID, p.Title, p.Slug, p.Content, p.Excerpt, p.Status,
		p.FeaturedImage, p.SEOTitle, p.SEODescription, pq.Array(p.SEOKeywords),
		p.CanonicalURL, p.PublishedAt,
	)
	return scanPost(row)
}

func (r *postgresRepository) ListPublished(ctx context.Context, limit int) ([]*Post, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE status = 'published'
		ORDER BY published_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

func (r *postgresRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*Post, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+postColumns+` FROM posts
		WHERE author_id = $1
		ORDER BY updated_at DESC`, authorID)
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*Post, error) {
	var p Post
	var keywords pq.StringArray
	err := row.Scan(
		&p.ID, &p.AuthorID, &p.Title, &p.Slug, &p.Content, &p.Excerpt, &p.Status,
		&p.FeaturedImage, &p.SEOTitle, &p.SEODescription, &keywords,
		&p.CanonicalURL, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, ErrSlugExists
		}
		return nil, err
	}
	p.SEOKeywords = keywords
	return &p, nil
}

func scanPosts(rows *sql.Rows) ([]*Post, error) {
	defer rows.Close()
	var out []*Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
