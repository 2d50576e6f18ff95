package credential

import (
	"context"
	"os"
	"strings"
)

// DefaultEnvKeys are checked in order.
var DefaultEnvKeys = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "API_KEY"}

// EnvProvider serves a process-wide key from the environment. The variables
// are re-read on every call so a rotated key applies to the next request.
type EnvProvider struct {
	Keys   []string
	Lookup func(string) (string, bool)
}

func NewEnvProvider(keys ...string) *EnvProvider {
	if len(keys) == 0 {
		keys = DefaultEnvKeys
	}
	return &EnvProvider{Keys: keys, Lookup: os.LookupEnv}
}

func (p *EnvProvider) HasSelectedCredential(ctx context.Context) (bool, error) {
	_, err := p.APIKey(ctx)
	return err == nil, nil
}

// OpenSelectCredential is a no-op: the environment is the picker.
func (p *EnvProvider) OpenSelectCredential(context.Context) error { return nil }

func (p *EnvProvider) APIKey(context.Context) (string, error) {
	lookup := p.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, k := range p.Keys {
		if v, ok := lookup(k); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), nil
		}
	}
	return "", ErrNoCredential
}
