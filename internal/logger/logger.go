package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/trace"
)

type Options struct {
	Env         string
	ServiceName string
	// OTLP routes records to the global OTel logger provider instead of stdout.
	OTLP   bool
	Output io.Writer
}

// New builds the process logger: text locally, JSON in production, the OTel
// bridge when OTLP export is on.
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	hopts := &slog.HandlerOptions{Level: slog.LevelInfo}
	production := strings.EqualFold(strings.TrimSpace(opts.Env), "production")
	if !production {
		hopts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	switch {
	case opts.OTLP:
		handler = otelslog.NewHandler(
			opts.ServiceName,
			otelslog.WithLoggerProvider(global.GetLoggerProvider()),
		)
	case production:
		handler = NewTraceHandler(slog.NewJSONHandler(out, hopts))
	default:
		handler = NewTraceHandler(slog.NewTextHandler(out, hopts))
	}
	return slog.New(handler)
}

// Setup installs New(opts) as the slog default.
func Setup(opts Options) *slog.Logger {
	l := New(opts)
	slog.SetDefault(l)
	return l
}

// TraceHandler adds trace_id and span_id from the context span.
type TraceHandler struct {
	slog.Handler
}

func NewTraceHandler(h slog.Handler) *TraceHandler {
	return &TraceHandler{Handler: h}
}

func (h *TraceHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *TraceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TraceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *TraceHandler) WithGroup(name string) slog.Handler {
	return &TraceHandler{Handler: h.Handler.WithGroup(name)}
}
