package article

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"workshophub/internal/gateway/entity"
	articlerepo "workshophub/internal/gateway/repository/article"
)

type countingOrigin struct {
	*articlerepo.MemoryStore
	mu        sync.Mutex
	getCalls  int
	listCalls int
	failWrite bool
}

func (o *countingOrigin) Get(ctx context.Context, id entity.ArticleID) (entity.Article, error) {
	o.mu.Lock()
	o.getCalls++
	o.mu.Unlock()
	return o.MemoryStore.Get(ctx, id)
}

func (o *countingOrigin) List(ctx context.Context) ([]entity.Article, error) {
	o.mu.Lock()
	o.listCalls++
	o.mu.Unlock()
	return o.MemoryStore.List(ctx)
}

func (o *countingOrigin) Update(ctx context.Context, a entity.Article) error {
	if o.failWrite {
		return errors.New("write failed")
	}
	return o.MemoryStore.Update(ctx, a)
}

func newOrigin(t *testing.T) *countingOrigin {
	t.Helper()
	o := &countingOrigin{MemoryStore: articlerepo.NewMemoryStore()}
	if err := o.MemoryStore.Create(context.Background(), entity.Article{ID: "a", Title: "first"}); err != nil {
		t.Fatal(err)
	}
	return o
}

func TestCachedStoreReadThroughAndMetrics(t *testing.T) {
	ctx := context.Background()
	origin := newOrigin(t)
	store := NewCachedStore(origin, CacheConfig{ItemTTL: time.Minute, ItemMaxEntries: 8, ListTTL: time.Minute})

	for i := 0; i < 3; i++ {
		got, err := store.Get(ctx, "a")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Title != "first" {
			t.Fatalf("title=%q", got.Title)
		}
	}
	if origin.getCalls != 1 {
		t.Fatalf("origin get calls=%d want 1", origin.getCalls)
	}

	_, _ = store.List(ctx)
	_, _ = store.List(ctx)
	if origin.listCalls != 1 {
		t.Fatalf("origin list calls=%d want 1", origin.listCalls)
	}

	m := store.Metrics()
	if m.ItemHits != 2 || m.ItemMisses != 1 || m.ListHits != 1 || m.ListMisses != 1 {
		t.Fatalf("unexpected metrics: %+v", m)
	}
}

func TestCachedStoreWriteInvalidatesList(t *testing.T) {
	ctx := context.Background()
	origin := newOrigin(t)
	store := NewCachedStore(origin, DefaultCacheConfig())

	if _, err := store.List(ctx); err != nil {
		t.Fatal(err)
	}
	if err := store.Create(ctx, entity.Article{ID: "b", Title: "second"}); err != nil {
		t.Fatal(err)
	}
	list, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[1].ID != "b" {
		t.Fatalf("list after create=%+v", list)
	}
	if origin.listCalls != 2 {
		t.Fatalf("origin list calls=%d want 2", origin.listCalls)
	}

	got, err := store.Get(ctx, "b")
	if err != nil || got.Title != "second" {
		t.Fatalf("get after create: %+v %v", got, err)
	}
	if origin.getCalls != 0 {
		t.Fatalf("write should populate item cache, origin get calls=%d", origin.getCalls)
	}
}

func TestCachedStoreFailedWriteDropsItem(t *testing.T) {
	ctx := context.Background()
	origin := newOrigin(t)
	store := NewCachedStore(origin, DefaultCacheConfig())
	if _, err := store.Get(ctx, "a"); err != nil {
		t.Fatal(err)
	}

	origin.failWrite = true
	if err := store.Update(ctx, entity.Article{ID: "a", Title: "lost"}); err == nil {
		t.Fatal("expected write error")
	}
	got, err := store.Get(ctx, "a")
	if err != nil || got.Title != "first" {
		t.Fatalf("get after failed write: %+v %v", got, err)
	}
	if m := store.Metrics(); m.OriginWriteErr != 1 {
		t.Fatalf("write errors=%d", m.OriginWriteErr)
	}
}

func TestCachedStoreListExpires(t *testing.T) {
	ctx := context.Background()
	origin := newOrigin(t)
	store := NewCachedStore(origin, CacheConfig{ListTTL: time.Second})
	now := time.Now()
	store.now = func() time.Time { return now }

	_, _ = store.List(ctx)
	now = now.Add(2 * time.Second)
	_, _ = store.List(ctx)
	if origin.listCalls != 2 {
		t.Fatalf("origin list calls=%d want 2", origin.listCalls)
	}
}

func TestCachedStoreNotFoundPassesThrough(t *testing.T) {
	store := NewCachedStore(newOrigin(t), DefaultCacheConfig())
	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, articlerepo.ErrNotFound) {
		t.Fatalf("err=%v", err)
	}
}

// pausingOrigin holds its next List after reading the origin until release
// is closed.
type pausingOrigin struct {
	*articlerepo.MemoryStore
	pause   bool
	reading chan struct{}
	release chan struct{}
}

func (o *pausingOrigin) List(ctx context.Context) ([]entity.Article, error) {
	list, err := o.MemoryStore.List(ctx)
	if o.pause {
		o.pause = false
		close(o.reading)
		<-o.release
	}
	return list, err
}

func TestCachedStoreListSpanningWriteIsNotCached(t *testing.T) {
	ctx := context.Background()
	origin := &pausingOrigin{
		MemoryStore: articlerepo.NewMemoryStore(),
		pause:       true,
		reading:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	store := NewCachedStore(origin, CacheConfig{ListTTL: time.Minute})

	done := make(chan []entity.Article)
	go func() {
		list, err := store.List(ctx)
		if err != nil {
			t.Errorf("list: %v", err)
		}
		done <- list
	}()
	<-origin.reading

	if err := store.Create(ctx, entity.Article{ID: "new", Title: "fresh"}); err != nil {
		t.Fatal(err)
	}
	close(origin.release)
	if stale := <-done; len(stale) != 0 {
		t.Fatalf("in-flight list=%+v want the pre-create feed", stale)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != "new" {
		t.Fatalf("feed after create=%+v", list)
	}
}
