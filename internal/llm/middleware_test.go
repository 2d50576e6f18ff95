package llm

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"workshophub/internal/tester"
)

type orderClient struct {
	name string
	next LLMClient
	log  *[]string
}

func (o *orderClient) Name() string { return o.name }
func (o *orderClient) Close() error { return nil }
func (o *orderClient) GenerateJSON(ctx context.Context, req Request) (string, error) {
	*o.log = append(*o.log, o.name)
	return o.next.GenerateJSON(ctx, req)
}

func TestWrap_AppliesLeftToRight(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next LLMClient) LLMClient { return &orderClient{name: name, next: next, log: &order} }
	}
	cli := Wrap(NewFakeClient(), mw("a"), mw("b"))
	_, err := cli.GenerateJSON(context.Background(), Request{Prompt: "p"})
	tester.NoErr(t, err)
	tester.Eq(t, order, []string{"a", "b"})
}

func TestWithLogging_NeverLogsKey(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	fake := NewFakeClient()
	cli := Wrap(fake, WithLogging(logger))

	_, err := cli.GenerateJSON(WithPhase(context.Background(), "optimize"), Request{APIKey: "secret-key-123", Prompt: "p"})
	tester.NoErr(t, err)
	fake.Script("", errors.New("boom"))
	_, err = cli.GenerateJSON(context.Background(), Request{APIKey: "secret-key-123", Prompt: "p"})
	tester.True(t, err != nil)

	out := buf.String()
	tester.False(t, strings.Contains(out, "secret-key-123"), out)
	tester.True(t, strings.Contains(out, `"phase":"optimize"`), out)
	tester.True(t, strings.Contains(out, "boom"), out)
}

func TestWithTracing_RecordsSpan(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	fake := NewFakeClient()
	cli := Wrap(fake, WithTracing(tp.Tracer("test")))
	_, err := cli.GenerateJSON(WithPhase(context.Background(), "optimize"), Request{Prompt: "p"})
	tester.NoErr(t, err)
	fake.Script("", errors.New("Requested entity was not found."))
	_, _ = cli.GenerateJSON(context.Background(), Request{Prompt: "p"})

	spans := rec.Ended()
	tester.Eq(t, len(spans), 2)
	tester.Eq(t, spans[0].Name(), "llm.GenerateJSON")
	tester.Eq(t, spans[0].Status().Code, codes.Unset)
	tester.Eq(t, spans[1].Status().Code, codes.Error)
}

func TestFakeClient_RecordsAndHonoursCancel(t *testing.T) {
	fake := NewFakeClient()
	raw, err := fake.GenerateJSON(context.Background(), Request{Prompt: "one"})
	tester.NoErr(t, err)
	tester.Eq(t, raw, FakeReply)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = fake.GenerateJSON(ctx, Request{Prompt: "two"})
	tester.True(t, errors.Is(err, context.Canceled))
	tester.Eq(t, len(fake.Requests()), 2)
	tester.Eq(t, PhaseFrom(context.Background()), "unknown")
}
