package llm

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"
)

// ErrRateLimited marks a call abandoned while waiting for the limiter.
var ErrRateLimited = errors.New("llm: rate limit wait aborted")

// WithRateLimit caps calls across every caller sharing the wrapped client.
// Calls wait for a token until ctx is done. rps <= 0 disables the limit and
// is the gateway default.
func WithRateLimit(rps float64, burst int) Middleware {
	if rps <= 0 {
		return func(next LLMClient) LLMClient { return next }
	}
	if burst <= 0 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(next LLMClient) LLMClient {
		return &limited{next: next, limiter: limiter}
	}
}

type limited struct {
	next    LLMClient
	limiter *rate.Limiter
}

func (l *limited) Name() string { return l.next.Name() }
func (l *limited) Close() error { return l.next.Close() }
func (l *limited) GenerateJSON(ctx context.Context, req Request) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return l.next.GenerateJSON(ctx, req)
}
