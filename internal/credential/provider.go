package credential

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNoCredential = errors.New("credential: no API key selected")
	ErrNoProvider   = errors.New("credential: no credential provider available")
)

// Provider is the host-supplied collaborator behind the gate.
type Provider interface {
	HasSelectedCredential(ctx context.Context) (bool, error)
	// OpenSelectCredential runs the host's key picker. Completion implies,
	// but does not guarantee, that a key is now selected.
	OpenSelectCredential(ctx context.Context) error
}

// Source yields the currently selected API key. Callers read it at call time
// and never cache it.
type Source interface {
	APIKey(ctx context.Context) (string, error)
}

type ctxKeySelected struct{}

// WithSelectedKey carries the key picked in the browser into
// OpenSelectCredential.
func WithSelectedKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, ctxKeySelected{}, strings.TrimSpace(key))
}

// SelectedKeyFrom returns the key attached by WithSelectedKey, if any.
func SelectedKeyFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKeySelected{}).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Mask hides all but the last four characters of a key for logging.
func Mask(key string) string {
	key = strings.TrimSpace(key)
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
