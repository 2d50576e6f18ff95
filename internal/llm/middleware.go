package llm

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Middleware decorates an LLMClient to inject cross-cutting concerns
// (logging, tracing, etc.).
type Middleware func(LLMClient) LLMClient

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner LLMClient, mws ...Middleware) LLMClient {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// -------- Logging --------

// WithLogging logs request size, latency and errors. The API key is never
// logged. A nil logger uses slog.Default().
func WithLogging(logger *slog.Logger) Middleware {
	return func(next LLMClient) LLMClient {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next LLMClient
	log  *slog.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }
func (l *logging) GenerateJSON(ctx context.Context, req Request) (string, error) {
	logger := l.log
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()
	logger.InfoContext(ctx, "llm request", "client", l.next.Name(), "phase", PhaseFrom(ctx), "bytes", len(req.Prompt))
	raw, err := l.next.GenerateJSON(ctx, req)
	if err != nil {
		logger.WarnContext(ctx, "llm error", "client", l.next.Name(), "phase", PhaseFrom(ctx),
			"elapsed", time.Since(start), "error", err)
		return raw, err
	}
	logger.InfoContext(ctx, "llm reply", "client", l.next.Name(), "phase", PhaseFrom(ctx),
		"elapsed", time.Since(start), "bytes", len(raw))
	return raw, nil
}

// -------- Tracing --------

// WithTracing opens one span per call. A nil tracer uses the global
// provider, which is a no-op until telemetry is configured.
func WithTracing(tracer trace.Tracer) Middleware {
	if tracer == nil {
		tracer = otel.Tracer("workshophub/llm")
	}
	return func(next LLMClient) LLMClient {
		return &traced{next: next, tracer: tracer}
	}
}

type traced struct {
	next   LLMClient
	tracer trace.Tracer
}

func (t *traced) Name() string { return t.next.Name() }
func (t *traced) Close() error { return t.next.Close() }
func (t *traced) GenerateJSON(ctx context.Context, req Request) (string, error) {
	ctx, span := t.tracer.Start(ctx, "llm.GenerateJSON", trace.WithAttributes(
		attribute.String("llm.client", t.next.Name()),
		attribute.String("llm.phase", PhaseFrom(ctx)),
		attribute.Int("llm.prompt_bytes", len(req.Prompt)),
	))
	defer span.End()

	raw, err := t.next.GenerateJSON(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return raw, err
	}
	span.SetAttributes(attribute.Int("llm.reply_bytes", len(raw)))
	return raw, nil
}
