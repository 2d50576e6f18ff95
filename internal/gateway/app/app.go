package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"workshophub/internal/credential"
	"workshophub/internal/gateway/config"
	"workshophub/internal/gateway/handler"
	"workshophub/internal/gateway/server"
	articlesvc "workshophub/internal/gateway/service/article"
	optimizersvc "workshophub/internal/gateway/service/optimizer"
	"workshophub/internal/llm"
	"workshophub/internal/logger"
	"workshophub/internal/telemetry"
)

type App struct {
	server    *server.Server
	stores    *gatewayStores
	optimizer *optimizersvc.Service
	telemetry *telemetry.Telemetry
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewWithConfig(ctx, cfg)
}

func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	tel, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("failed to set up telemetry: %w", err)
	}
	log := logger.Setup(logger.Options{
		Env:         cfg.Env,
		ServiceName: cfg.Telemetry.ServiceName,
		OTLP:        cfg.IsProduction() && cfg.Telemetry.Enabled(),
	})

	a := &App{telemetry: tel}
	handlerRoot, err := a.build(ctx, cfg, log)
	if err != nil {
		_ = a.close(ctx)
		return nil, err
	}
	a.server = server.New(cfg.Port, handlerRoot)
	return a, nil
}

// build wires stores, services and handlers into the root handler.
func (a *App) build(ctx context.Context, cfg *config.Config, log *slog.Logger) (http.Handler, error) {
	stores, err := initStores(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.stores = stores

	articles := articlesvc.New(stores.article, stores.media)
	if err := articles.Seed(ctx); err != nil {
		return nil, fmt.Errorf("failed to seed articles: %w", err)
	}

	mode, err := optimizersvc.ParseCredentialMode(cfg.Credential.Mode)
	if err != nil {
		return nil, err
	}
	client := llm.Wrap(newLLMClient(cfg),
		llm.WithLogging(log),
		llm.WithTracing(nil),
		llm.WithRateLimit(cfg.LLM.RPS, cfg.LLM.Burst),
	)
	opt, err := optimizersvc.New(client, optimizersvc.Options{
		Mode:          mode,
		Env:           credential.NewEnvProvider(),
		Keyring:       stores.keyring,
		MaxSessions:   cfg.Credential.MaxSessions,
		SubmitTimeout: cfg.Credential.SubmitTimeout,
		Logger:        log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build optimizer: %w", err)
	}
	a.optimizer = opt
	log.Info("optimizer ready", "llm", client.Name(), "credential_mode", mode)

	return server.NewMux(
		handler.NewArticleHandler(articles),
		handler.NewOptimizerHandler(opt, cfg.CORSOrigins),
		server.MuxConfig{
			SessionTTL:     cfg.Credential.SessionTTL,
			SecureCookies:  cfg.IsProduction(),
			AllowedOrigins: cfg.CORSOrigins,
			Logger:         log,
		},
	), nil
}

func newLLMClient(cfg *config.Config) llm.LLMClient {
	if cfg.LLM.Provider == "fake" {
		return llm.NewFakeClient()
	}
	var opts []llm.GeminiOption
	if cfg.LLM.BaseURL != "" {
		opts = append(opts, llm.WithBaseURL(cfg.LLM.BaseURL))
	}
	return llm.NewGeminiClient(cfg.LLM.Model, opts...)
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.server != nil {
		errs = append(errs, a.server.Shutdown(ctx))
	}
	errs = append(errs, a.close(ctx))
	return errors.Join(errs...)
}

func (a *App) close(ctx context.Context) error {
	var errs []error
	if a.optimizer != nil {
		errs = append(errs, a.optimizer.Close())
	}
	if a.stores != nil {
		errs = append(errs, a.stores.Close())
	}
	errs = append(errs, a.telemetry.Shutdown(ctx))
	return errors.Join(errs...)
}
