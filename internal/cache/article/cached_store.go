package article

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"workshophub/internal/gateway/entity"
	articlerepo "workshophub/internal/gateway/repository/article"
)

type Store = articlerepo.Store

type CacheConfig struct {
	ItemTTL        time.Duration
	ItemMaxEntries int
	ListTTL        time.Duration
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		ItemTTL:        5 * time.Minute,
		ItemMaxEntries: 512,
		ListTTL:        30 * time.Second,
	}
}

type MetricsSnapshot struct {
	ItemHits       uint64
	ItemMisses     uint64
	ListHits       uint64
	ListMisses     uint64
	OriginReads    uint64
	OriginWrites   uint64
	OriginReadErr  uint64
	OriginWriteErr uint64
}

type Metrics struct {
	itemHits       atomic.Uint64
	itemMisses     atomic.Uint64
	listHits       atomic.Uint64
	listMisses     atomic.Uint64
	originReads    atomic.Uint64
	originWrites   atomic.Uint64
	originReadErr  atomic.Uint64
	originWriteErr atomic.Uint64
}

func (m *Metrics) snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		ItemHits:       m.itemHits.Load(),
		ItemMisses:     m.itemMisses.Load(),
		ListHits:       m.listHits.Load(),
		ListMisses:     m.listMisses.Load(),
		OriginReads:    m.originReads.Load(),
		OriginWrites:   m.originWrites.Load(),
		OriginReadErr:  m.originReadErr.Load(),
		OriginWriteErr: m.originWriteErr.Load(),
	}
}

// CachedStore is a read-through cache in front of an article Store. Writes go
// to the origin first; the feed list is dropped on every write.
type CachedStore struct {
	origin Store

	items *expirable.LRU[entity.ArticleID, entity.Article]

	listTTL   time.Duration
	listMu    sync.Mutex
	list      []entity.Article
	listUntil time.Time
	// listGen advances on every write; a list read that spans a write is not cached.
	listGen   uint64
	now       func() time.Time

	metrics Metrics
}

var _ Store = (*CachedStore)(nil)

func NewCachedStore(origin Store, cfg CacheConfig) *CachedStore {
	def := DefaultCacheConfig()
	if cfg.ItemTTL <= 0 {
		cfg.ItemTTL = def.ItemTTL
	}
	if cfg.ItemMaxEntries <= 0 {
		cfg.ItemMaxEntries = def.ItemMaxEntries
	}
	if cfg.ListTTL <= 0 {
		cfg.ListTTL = def.ListTTL
	}
	return &CachedStore{
		origin:  origin,
		items:   expirable.NewLRU[entity.ArticleID, entity.Article](cfg.ItemMaxEntries, nil, cfg.ItemTTL),
		listTTL: cfg.ListTTL,
		now:     time.Now,
	}
}

func (s *CachedStore) List(ctx context.Context) ([]entity.Article, error) {
	s.listMu.Lock()
	if s.list != nil && s.now().Before(s.listUntil) {
		out := append([]entity.Article(nil), s.list...)
		s.listMu.Unlock()
		s.metrics.listHits.Add(1)
		return out, nil
	}
	gen := s.listGen
	s.listMu.Unlock()
	s.metrics.listMisses.Add(1)
	s.metrics.originReads.Add(1)

	list, err := s.origin.List(ctx)
	if err != nil {
		s.metrics.originReadErr.Add(1)
		return nil, err
	}
	s.listMu.Lock()
	if s.listGen == gen {
		s.list = append([]entity.Article{}, list...)
		s.listUntil = s.now().Add(s.listTTL)
	}
	s.listMu.Unlock()
	return append([]entity.Article(nil), list...), nil
}

func (s *CachedStore) Get(ctx context.Context, id entity.ArticleID) (entity.Article, error) {
	id = entity.NormalizeArticleID(string(id))
	if a, ok := s.items.Get(id); ok {
		s.metrics.itemHits.Add(1)
		return a, nil
	}
	s.metrics.itemMisses.Add(1)
	s.metrics.originReads.Add(1)

	a, err := s.origin.Get(ctx, id)
	if err != nil {
		s.metrics.originReadErr.Add(1)
		return entity.Article{}, err
	}
	s.items.Add(id, a)
	return a, nil
}

func (s *CachedStore) Create(ctx context.Context, a entity.Article) error {
	return s.write(ctx, a, s.origin.Create)
}

func (s *CachedStore) Update(ctx context.Context, a entity.Article) error {
	return s.write(ctx, a, s.origin.Update)
}

func (s *CachedStore) write(ctx context.Context, a entity.Article, fn func(context.Context, entity.Article) error) error {
	s.metrics.originWrites.Add(1)
	s.invalidateList()
	err := fn(ctx, a)
	s.invalidateList()
	if err != nil {
		s.metrics.originWriteErr.Add(1)
		s.items.Remove(a.ID)
		return err
	}
	s.items.Add(a.ID, a)
	return nil
}

func (s *CachedStore) invalidateList() {
	s.listMu.Lock()
	s.list = nil
	s.listGen++
	s.listMu.Unlock()
}

func (s *CachedStore) Metrics() MetricsSnapshot {
	return s.metrics.snapshot()
}
