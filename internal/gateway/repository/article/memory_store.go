package article

import (
	"context"
	"fmt"
	"sync"

	"workshophub/internal/gateway/entity"
)

type MemoryStore struct {
	mu    sync.RWMutex
	order []entity.ArticleID
	byID  map[entity.ArticleID]entity.Article
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID: make(map[entity.ArticleID]entity.Article),
	}
}

func (s *MemoryStore) List(_ context.Context) ([]entity.Article, error) {
	if s == nil {
		return nil, fmt.Errorf("store is nil")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Article, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id entity.ArticleID) (entity.Article, error) {
	if s == nil {
		return entity.Article{}, fmt.Errorf("store is nil")
	}
	id = entity.NormalizeArticleID(string(id))
	if id.IsZero() {
		return entity.Article{}, fmt.Errorf("id is required")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[id]
	if !ok {
		return entity.Article{}, ErrNotFound
	}
	return a, nil
}

func (s *MemoryStore) Create(_ context.Context, a entity.Article) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	if a.ID.IsZero() {
		return fmt.Errorf("id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[a.ID]; ok {
		return ErrDuplicate
	}
	s.byID[a.ID] = a
	s.order = append(s.order, a.ID)
	return nil
}

func (s *MemoryStore) Update(_ context.Context, a entity.Article) error {
	if s == nil {
		return fmt.Errorf("store is nil")
	}
	if a.ID.IsZero() {
		return fmt.Errorf("id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[a.ID]; !ok {
		return ErrNotFound
	}
	s.byID[a.ID] = a
	return nil
}
