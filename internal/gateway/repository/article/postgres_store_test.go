package article

import (
	"context"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"workshophub/internal/gateway/entity"
)

// openTestPostgres returns a store on a throwaway schema of TEST_DATABASE_URL.
func openTestPostgres(t *testing.T) *PostgresStore {
	t.Helper()
	dsn := strings.TrimSpace(os.Getenv("TEST_DATABASE_URL"))
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping PostgreSQL integration test")
	}
	ctx := context.Background()
	schema := "whub_test_" + strings.ReplaceAll(uuid.NewString()[:8], "-", "")

	admin, err := OpenPostgres(ctx, dsn)
	require.NoError(t, err)
	_, err = admin.ExecContext(ctx, `CREATE SCHEMA `+schema)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = admin.ExecContext(context.Background(), `DROP SCHEMA `+schema+` CASCADE`)
		_ = admin.Close()
	})

	db, err := OpenPostgres(ctx, withSearchPath(t, dsn, schema))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresStore(db)
}

func withSearchPath(t *testing.T, dsn, schema string) string {
	t.Helper()
	if !strings.Contains(dsn, "://") {
		return dsn + " search_path=" + schema
	}
	u, err := url.Parse(dsn)
	require.NoError(t, err)
	q := u.Query()
	q.Set("search_path", schema)
	u.RawQuery = q.Encode()
	return u.String()
}

func TestPostgresStore_KeepsInsertOrder(t *testing.T) {
	store := openTestPostgres(t)
	ctx := context.Background()

	for _, id := range []entity.ArticleID{"3", "1", "2"} {
		require.NoError(t, store.Create(ctx, entity.Article{ID: id, Title: "t" + id, Category: entity.CategoryTutorial, Author: "a", Date: "2024-01-01"}))
	}
	updated := entity.Article{ID: "1", Title: "renamed", Category: entity.CategoryCaseStudy, Author: "b", Date: "2024-01-01"}
	require.NoError(t, store.Update(ctx, updated))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, []entity.ArticleID{"3", "1", "2"}, []entity.ArticleID{list[0].ID, list[1].ID, list[2].ID})
	require.Equal(t, updated, list[1])

	got, err := store.Get(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, updated, got)
}

func TestPostgresStore_Errors(t *testing.T) {
	store := openTestPostgres(t)
	ctx := context.Background()
	a := entity.Article{ID: "x", Title: "x", Category: entity.CategoryTutorial, Author: "a", Date: "2024-01-01"}

	require.NoError(t, store.Create(ctx, a))
	require.ErrorIs(t, store.Create(ctx, a), ErrDuplicate)
	require.ErrorIs(t, store.Update(ctx, entity.Article{ID: "missing", Title: "m"}), ErrNotFound)

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}
