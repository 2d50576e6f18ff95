package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	articlecache "workshophub/internal/cache/article"
	"workshophub/internal/credential"
	"workshophub/internal/gateway/config"
	articlerepo "workshophub/internal/gateway/repository/article"
	mediarepo "workshophub/internal/gateway/repository/media"
)

type gatewayStores struct {
	article articlerepo.Store
	media   mediarepo.Store
	keyring credential.Keyring
	closers []io.Closer
}

func (s *gatewayStores) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func initStores(ctx context.Context, cfg *config.Config) (*gatewayStores, error) {
	stores := &gatewayStores{}

	article, db, err := chooseArticleStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if db != nil {
		stores.closers = append(stores.closers, db)
	}
	stores.article = articlecache.NewCachedStore(article, articlecache.DefaultCacheConfig())

	media, err := chooseMediaStore(cfg)
	if err != nil {
		_ = stores.Close()
		return nil, err
	}
	stores.media = media

	if cfg.Credential.Mode == "session" {
		ring, err := chooseKeyring(ctx, cfg)
		if err != nil {
			_ = stores.Close()
			return nil, err
		}
		if c, ok := ring.(io.Closer); ok {
			stores.closers = append(stores.closers, c)
		}
		stores.keyring = ring
	}
	return stores, nil
}

func chooseArticleStore(ctx context.Context, cfg *config.Config) (articlerepo.Store, *sql.DB, error) {
	if cfg.DatabaseURL == "" {
		slog.Info("article store: in-memory")
		return articlerepo.NewMemoryStore(), nil, nil
	}
	db, err := articlerepo.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open article db: %w", err)
	}
	slog.Info("article store: postgres")
	return articlerepo.NewPostgresStore(db), db, nil
}

func chooseMediaStore(cfg *config.Config) (mediarepo.Store, error) {
	if !cfg.Media.CanUseS3() {
		slog.Info("media store: in-memory")
		return mediarepo.NewMemoryStore(), nil
	}
	s3Store, err := mediarepo.NewS3Store(mediarepo.S3Config{
		Endpoint:  cfg.Media.Endpoint,
		Region:    cfg.Media.Region,
		AccessKey: cfg.Media.AccessKey,
		SecretKey: cfg.Media.SecretKey,
		Bucket:    cfg.Media.Bucket,
		UseSSL:    cfg.Media.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize media s3 store: %w", err)
	}
	slog.Info("media store: s3", "bucket", cfg.Media.Bucket, "endpoint", cfg.Media.Endpoint)
	return s3Store, nil
}

func chooseKeyring(ctx context.Context, cfg *config.Config) (credential.Keyring, error) {
	if cfg.RedisURL == "" {
		slog.Info("keyring: in-memory", "ttl", cfg.Credential.SessionTTL)
		return credential.NewMemoryKeyring(cfg.Credential.SessionTTL), nil
	}
	ring, err := credential.NewRedisKeyringFromURL(ctx, cfg.RedisURL, cfg.Credential.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis keyring: %w", err)
	}
	slog.Info("keyring: redis", "ttl", cfg.Credential.SessionTTL)
	return ring, nil
}
