package server

import (
	"log/slog"
	"net/http"
	"time"

	"workshophub/internal/gateway/handler"
	"workshophub/internal/gateway/middleware"
)

type MuxConfig struct {
	SessionTTL     time.Duration
	SecureCookies  bool
	// AllowedOrigins limits CORS; empty echoes any origin.
	AllowedOrigins []string
	Logger         *slog.Logger
}

func NewMux(
	articleHandler *handler.ArticleHandler,
	optimizerHandler *handler.OptimizerHandler,
	cfg MuxConfig,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	// Articles
	mux.HandleFunc("GET /api/views", articleHandler.HandleViews)
	mux.HandleFunc("GET /api/articles", articleHandler.HandleList)
	mux.HandleFunc("POST /api/articles", articleHandler.HandleCreate)
	mux.HandleFunc("GET /api/articles/{id}", articleHandler.HandleGet)
	mux.HandleFunc("PUT /api/articles/{id}", articleHandler.HandleUpdate)
	mux.HandleFunc("POST /api/articles/{id}/cover", articleHandler.HandleUploadCover)
	mux.HandleFunc("GET /media/{key...}", articleHandler.HandleMedia)

	// Optimizer
	mux.HandleFunc("GET /api/optimizer", optimizerHandler.HandleGet)
	mux.HandleFunc("POST /api/optimizer/credential", optimizerHandler.HandleSelectCredential)
	mux.HandleFunc("DELETE /api/optimizer/credential", optimizerHandler.HandleResetCredential)
	mux.HandleFunc("POST /api/optimizer/submit", optimizerHandler.HandleSubmit)
	mux.HandleFunc("GET /api/optimizer/ws", optimizerHandler.HandleWS)

	// Middleware. Trace wraps the mux directly so it sees the matched pattern.
	var h http.Handler = mux
	h = middleware.Trace(cfg.Logger)(h)
	h = middleware.Session(cfg.SessionTTL, cfg.SecureCookies)(h)
	return middleware.CORS(cfg.AllowedOrigins)(h)
}
