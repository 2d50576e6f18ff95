package article

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"workshophub/internal/gateway/entity"
)

const uniqueViolation = "23505"

// PostgresStore keeps feed order in a serial column.
type PostgresStore struct {
	db         *sql.DB
	schemaOnce sync.Once
	schemaErr  error
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres opens and pings a pgx-backed database.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("db is nil")
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS articles (
    seq BIGSERIAL,
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    excerpt TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL,
    author TEXT NOT NULL,
    date TEXT NOT NULL,
    image_url TEXT NOT NULL DEFAULT '',
    video_url TEXT NOT NULL DEFAULT '',
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_articles_seq ON articles(seq);
`)
	})
	return s.schemaErr
}

const articleColumns = `id, title, excerpt, content, category, author, date, image_url, video_url`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (entity.Article, error) {
	var a entity.Article
	err := row.Scan(&a.ID, &a.Title, &a.Excerpt, &a.Content, &a.Category, &a.Author, &a.Date, &a.ImageURL, &a.VideoURL)
	return a, err
}

func (s *PostgresStore) List(ctx context.Context) ([]entity.Article, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+articleColumns+` FROM articles ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.Article, 0, 16)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) Get(ctx context.Context, id entity.ArticleID) (entity.Article, error) {
	id = entity.NormalizeArticleID(string(id))
	if id.IsZero() {
		return entity.Article{}, fmt.Errorf("id is required")
	}
	if err := s.ensureSchema(ctx); err != nil {
		return entity.Article{}, err
	}
	a, err := scanArticle(s.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Article{}, ErrNotFound
	}
	return a, err
}

func (s *PostgresStore) Create(ctx context.Context, a entity.Article) error {
	if a.ID.IsZero() {
		return fmt.Errorf("id is required")
	}
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO articles (`+articleColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.Title, a.Excerpt, a.Content, a.Category, a.Author, a.Date, a.ImageURL, a.VideoURL)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}

func (s *PostgresStore) Update(ctx context.Context, a entity.Article) error {
	if a.ID.IsZero() {
		return fmt.Errorf("id is required")
	}
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
UPDATE articles
SET title=$2, excerpt=$3, content=$4, category=$5, author=$6, date=$7, image_url=$8, video_url=$9, updated_at=NOW()
WHERE id=$1`,
		a.ID, a.Title, a.Excerpt, a.Content, a.Category, a.Author, a.Date, a.ImageURL, a.VideoURL)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
