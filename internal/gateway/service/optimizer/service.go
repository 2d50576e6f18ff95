package optimizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"workshophub/internal/credential"
	"workshophub/internal/gateway/entity"
	"workshophub/internal/llm"
	"workshophub/internal/optimizer"
)

// CredentialMode selects where API keys come from.
type CredentialMode string

const (
	// ModeEnv shares one process-wide key read from the environment.
	ModeEnv CredentialMode = "env"
	// ModeSession stores the key each browser picks in a Keyring.
	ModeSession CredentialMode = "session"
)

func ParseCredentialMode(raw string) (CredentialMode, error) {
	switch CredentialMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ModeEnv:
		return ModeEnv, nil
	case ModeSession:
		return ModeSession, nil
	}
	return "", fmt.Errorf("unknown credential mode %q", raw)
}

const DefaultMaxSessions = 1024

// ErrServerManagedKey rejects a browser-supplied key in env mode.
var ErrServerManagedKey = errors.New("api keys are configured on the server")

type Options struct {
	Mode          CredentialMode
	Env           *credential.EnvProvider
	Keyring       credential.Keyring
	MaxSessions   int
	SubmitTimeout time.Duration
	Logger        *slog.Logger
}

type session struct {
	machine *optimizer.Machine
	ring    *credential.KeyringProvider
}

// Service owns one optimizer machine per browser session. Least recently used
// sessions are closed once MaxSessions is exceeded.
type Service struct {
	llm      llm.LLMClient
	opts     Options
	log      *slog.Logger
	sessions *lru.Cache[entity.SessionID, *session]
}

func New(client llm.LLMClient, opts Options) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("llm client is required")
	}
	if opts.Mode == "" {
		opts.Mode = ModeEnv
	}
	switch opts.Mode {
	case ModeEnv:
		if opts.Env == nil {
			opts.Env = credential.NewEnvProvider()
		}
	case ModeSession:
		if opts.Keyring == nil {
			return nil, fmt.Errorf("session credential mode needs a keyring")
		}
	default:
		return nil, fmt.Errorf("unknown credential mode %q", opts.Mode)
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	if opts.SubmitTimeout <= 0 {
		opts.SubmitTimeout = optimizer.DefaultSubmitTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cache, err := lru.NewWithEvict[entity.SessionID, *session](opts.MaxSessions, func(id entity.SessionID, s *session) {
		s.machine.Close()
	})
	if err != nil {
		return nil, err
	}
	return &Service{
		llm:      client,
		opts:     opts,
		log:      logger,
		sessions: cache,
	}, nil
}

func (s *Service) Mode() CredentialMode { return s.opts.Mode }

func (s *Service) session(ctx context.Context, id entity.SessionID) (*session, error) {
	if id.IsZero() {
		return nil, fmt.Errorf("session id is required")
	}
	if sess, ok := s.sessions.Get(id); ok {
		return sess, nil
	}

	var (
		provider credential.Provider
		source   credential.Source
		ring     *credential.KeyringProvider
	)
	switch s.opts.Mode {
	case ModeSession:
		ring = credential.NewKeyringProvider(s.opts.Keyring, id.String())
		provider, source = ring, ring
	default:
		provider, source = s.opts.Env, s.opts.Env
	}
	gate := credential.NewGate(ctx, provider)
	sess := &session{
		machine: optimizer.NewMachine(gate, optimizer.NewCompletionClient(s.llm, source),
			optimizer.WithSubmitTimeout(s.opts.SubmitTimeout),
			optimizer.WithLogger(s.log.With("session", id.String())),
		),
		ring: ring,
	}

	if prev, ok, _ := s.sessions.PeekOrAdd(id, sess); ok {
		sess.machine.Close()
		s.sessions.Get(id)
		return prev, nil
	}
	return sess, nil
}

func (s *Service) Snapshot(ctx context.Context, id entity.SessionID) (optimizer.Snapshot, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return optimizer.Snapshot{}, err
	}
	return sess.machine.Snapshot(), nil
}

// SelectCredential runs the picker for the session. In session mode apiKey is
// the key chosen in the browser; blank means the picker was dismissed.
func (s *Service) SelectCredential(ctx context.Context, id entity.SessionID, apiKey string) (optimizer.Snapshot, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return optimizer.Snapshot{}, err
	}
	if key := strings.TrimSpace(apiKey); key != "" {
		if s.opts.Mode != ModeSession {
			return sess.machine.Snapshot(), ErrServerManagedKey
		}
		ctx = credential.WithSelectedKey(ctx, key)
		s.log.InfoContext(ctx, "api key selected", "session", id.String(), "key", credential.Mask(key))
	}
	return sess.machine.SelectCredential(ctx)
}

// ResetCredential returns a failed session to the gate and forgets its key.
func (s *Service) ResetCredential(ctx context.Context, id entity.SessionID) (optimizer.Snapshot, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return optimizer.Snapshot{}, err
	}
	snap, err := sess.machine.ResetCredential()
	if err != nil {
		return snap, err
	}
	if sess.ring != nil {
		if err := s.opts.Keyring.Delete(ctx, id.String()); err != nil {
			s.log.WarnContext(ctx, "forget api key failed", "session", id.String(), "error", err)
		}
	}
	return snap, nil
}

func (s *Service) Submit(ctx context.Context, id entity.SessionID, workflow, painPoints string) (optimizer.Snapshot, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return optimizer.Snapshot{}, err
	}
	return sess.machine.Submit(ctx, workflow, painPoints)
}

func (s *Service) Subscribe(ctx context.Context, id entity.SessionID) (<-chan optimizer.Snapshot, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess.machine.Subscribe(ctx), nil
}

// Sessions reports how many machines are live.
func (s *Service) Sessions() int { return s.sessions.Len() }

// Close ends every session and releases the model client.
func (s *Service) Close() error {
	s.sessions.Purge()
	return s.llm.Close()
}
