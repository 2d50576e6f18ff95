package credential

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Keyring stores the key each browser session picked.
type Keyring interface {
	Get(ctx context.Context, sessionID string) (string, error)
	Put(ctx context.Context, sessionID, key string) error
	Delete(ctx context.Context, sessionID string) error
}

type memoryEntry struct {
	key       string
	expiresAt time.Time
}

// MemoryKeyring is a process-local Keyring with an optional TTL.
type MemoryKeyring struct {
	mu   sync.RWMutex
	data map[string]memoryEntry
	ttl  time.Duration
	now  func() time.Time
}

func NewMemoryKeyring(ttl time.Duration) *MemoryKeyring {
	return &MemoryKeyring{
		data: make(map[string]memoryEntry),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (k *MemoryKeyring) Get(_ context.Context, sessionID string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", fmt.Errorf("session id is required")
	}
	k.mu.RLock()
	e, ok := k.data[sessionID]
	k.mu.RUnlock()
	if !ok {
		return "", ErrNoCredential
	}
	if !e.expiresAt.IsZero() && k.now().After(e.expiresAt) {
		k.mu.Lock()
		delete(k.data, sessionID)
		k.mu.Unlock()
		return "", ErrNoCredential
	}
	return e.key, nil
}

func (k *MemoryKeyring) Put(_ context.Context, sessionID, key string) error {
	sessionID = strings.TrimSpace(sessionID)
	key = strings.TrimSpace(key)
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}
	if key == "" {
		return fmt.Errorf("api key is required")
	}
	e := memoryEntry{key: key}
	if k.ttl > 0 {
		e.expiresAt = k.now().Add(k.ttl)
	}
	k.mu.Lock()
	k.data[sessionID] = e
	k.mu.Unlock()
	return nil
}

func (k *MemoryKeyring) Delete(_ context.Context, sessionID string) error {
	k.mu.Lock()
	delete(k.data, strings.TrimSpace(sessionID))
	k.mu.Unlock()
	return nil
}

// KeyringProvider is a Provider and Source bound to one browser session.
type KeyringProvider struct {
	ring      Keyring
	sessionID string
}

func NewKeyringProvider(ring Keyring, sessionID string) *KeyringProvider {
	return &KeyringProvider{ring: ring, sessionID: sessionID}
}

func (p *KeyringProvider) HasSelectedCredential(ctx context.Context) (bool, error) {
	_, err := p.APIKey(ctx)
	if errors.Is(err, ErrNoCredential) {
		return false, nil
	}
	return err == nil, err
}

// OpenSelectCredential stores the key carried by WithSelectedKey. Without
// one the pick was cancelled, which is not an error.
func (p *KeyringProvider) OpenSelectCredential(ctx context.Context) error {
	key, ok := SelectedKeyFrom(ctx)
	if !ok {
		return nil
	}
	if err := p.ring.Put(ctx, p.sessionID, key); err != nil {
		return fmt.Errorf("store selected key: %w", err)
	}
	return nil
}

func (p *KeyringProvider) APIKey(ctx context.Context) (string, error) {
	return p.ring.Get(ctx, p.sessionID)
}
