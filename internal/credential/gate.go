package credential

import (
	"context"
	"log/slog"
	"sync"
)

// Gate tracks whether a usable credential is selected for one optimizer.
type Gate struct {
	provider Provider

	mu  sync.RWMutex
	has bool
}

// NewGate queries the provider once. A nil provider or a failing query leaves
// the gate closed.
func NewGate(ctx context.Context, provider Provider) *Gate {
	g := &Gate{provider: provider}
	if provider == nil {
		return g
	}
	ok, err := provider.HasSelectedCredential(ctx)
	if err != nil {
		slog.WarnContext(ctx, "credential provider query failed", "error", err)
		return g
	}
	g.has = ok
	return g
}

func (g *Gate) HasCredential() bool {
	if g == nil {
		return false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.has
}

// RequestSelection opens the provider's picker and then assumes a key was
// chosen. The picker reports no cancellation, so a cancelled pick also opens
// the gate; the next failing call closes it again through Revoke.
func (g *Gate) RequestSelection(ctx context.Context) error {
	if g == nil || g.provider == nil {
		return ErrNoProvider
	}
	if err := g.provider.OpenSelectCredential(ctx); err != nil {
		return err
	}
	g.mu.Lock()
	g.has = true
	g.mu.Unlock()
	return nil
}

func (g *Gate) Revoke() {
	if g == nil {
		return
	}
	g.mu.Lock()
	g.has = false
	g.mu.Unlock()
}
