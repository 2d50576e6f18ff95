package article

import (
	"context"
	"errors"

	"workshophub/internal/gateway/entity"
)

// Store persists articles in feed order. Create appends; Update replaces the
// record with the same id and keeps its position.
type Store interface {
	List(ctx context.Context) ([]entity.Article, error)
	Get(ctx context.Context, id entity.ArticleID) (entity.Article, error)
	Create(ctx context.Context, a entity.Article) error
	Update(ctx context.Context, a entity.Article) error
}

var (
	ErrNotFound  = errors.New("article not found")
	ErrDuplicate = errors.New("article already exists")
)
