package optimizer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"workshophub/internal/credential"
)

type Phase string

const (
	PhaseGated      Phase = "gated"
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhaseResolved   Phase = "resolved"
	PhaseFailed     Phase = "failed"
)

// Snapshot is the immutable view of a machine handed to the presentation
// layer. Version increases on every transition.
type Snapshot struct {
	Phase         Phase               `json:"phase"`
	HasCredential bool                `json:"hasCredential"`
	ShowGate      bool                `json:"showGate"`
	Result        *OptimizationResult `json:"result,omitempty"`
	Error         string              `json:"error,omitempty"`
	ErrorKind     ErrorKind           `json:"errorKind,omitempty"`
	Version       uint64              `json:"version"`
}

const DefaultSubmitTimeout = 2 * time.Minute

// Machine drives one optimizer view: gate, idle, submitting, then a result
// or an error. It has no terminal state.
type Machine struct {
	gate    *credential.Gate
	client  Completer
	timeout time.Duration
	log     *slog.Logger

	mu      sync.Mutex
	phase   Phase
	result  *OptimizationResult
	failure string
	kind    ErrorKind
	version uint64
	changed chan struct{}
	done    chan struct{}
	closed  bool
}

type Option func(*Machine)

// WithSubmitTimeout bounds one model call. Zero disables the bound.
func WithSubmitTimeout(d time.Duration) Option {
	return func(m *Machine) { m.timeout = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) { m.log = l }
}

func NewMachine(gate *credential.Gate, client Completer, opts ...Option) *Machine {
	m := &Machine{
		gate:    gate,
		client:  client,
		timeout: DefaultSubmitTimeout,
		log:     slog.Default(),
		phase:   PhaseGated,
		changed: make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	if gate.HasCredential() {
		m.phase = PhaseIdle
	}
	return m
}

// HasCredential reports the gate state.
func (m *Machine) HasCredential() bool { return m.gate.HasCredential() }

func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// SelectCredential runs the credential picker and, optimistically, opens the
// gate. From Gated the machine moves to Idle; other states keep their phase.
func (m *Machine) SelectCredential(ctx context.Context) (Snapshot, error) {
	m.mu.Lock()
	if m.phase == PhaseSubmitting {
		snap := m.snapshotLocked()
		m.mu.Unlock()
		return snap, ErrSubmissionInFlight
	}
	m.mu.Unlock()

	if err := m.gate.RequestSelection(ctx); err != nil {
		return m.Snapshot(), err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase == PhaseGated {
		m.phase = PhaseIdle
	}
	m.notifyLocked()
	return m.snapshotLocked(), nil
}

// ResetCredential is the recovery action offered from Failed: it closes the
// gate and returns the machine to Gated.
func (m *Machine) ResetCredential() (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseFailed {
		return m.snapshotLocked(), ErrInvalidTransition
	}
	m.gate.Revoke()
	m.phase = PhaseGated
	m.result = nil
	m.failure = ""
	m.kind = ""
	m.notifyLocked()
	return m.snapshotLocked(), nil
}

// Submit builds a request and runs it to completion. Rejected submissions
// (empty workflow, closed gate, one already in flight) return an error and
// leave the state untouched. Once started, every outcome lands in Resolved
// or Failed and Submit returns a nil error.
//
// The model call is detached from ctx cancellation so that a caller going
// away does not abort it; a stale outcome is the caller's to ignore.
func (m *Machine) Submit(ctx context.Context, workflow, painPoints string) (Snapshot, error) {
	req, err := Build(workflow, painPoints)
	if err != nil {
		return m.Snapshot(), err
	}

	m.mu.Lock()
	if m.phase == PhaseSubmitting {
		snap := m.snapshotLocked()
		m.mu.Unlock()
		return snap, ErrSubmissionInFlight
	}
	if !m.gate.HasCredential() {
		snap := m.snapshotLocked()
		m.mu.Unlock()
		return snap, ErrGated
	}
	m.phase = PhaseSubmitting
	m.result = nil
	m.failure = ""
	m.kind = ""
	m.notifyLocked()
	m.mu.Unlock()

	result, runErr := m.run(context.WithoutCancel(ctx), req)

	m.mu.Lock()
	defer m.mu.Unlock()
	if runErr != nil {
		m.phase = PhaseFailed
		m.failure = UserMessage(runErr)
		m.kind = KindOf(runErr)
		if IsCredentialShaped(runErr) {
			m.gate.Revoke()
		}
		m.log.WarnContext(ctx, "optimizer submission failed", "kind", m.kind, "error", runErr)
	} else {
		m.phase = PhaseResolved
		m.result = result
		m.log.InfoContext(ctx, "optimizer submission resolved", "suggestions", len(result.Suggestions))
	}
	m.notifyLocked()
	return m.snapshotLocked(), nil
}

func (m *Machine) run(ctx context.Context, req OptimizationRequest) (*OptimizationResult, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}
	raw, err := m.client.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// Subscribe streams snapshots, starting with the current one. Slow readers
// only miss intermediate snapshots, never the latest. The channel closes
// when ctx is done or the machine is closed.
func (m *Machine) Subscribe(ctx context.Context) <-chan Snapshot {
	out := make(chan Snapshot, 4)
	go func() {
		defer close(out)
		for {
			m.mu.Lock()
			snap := m.snapshotLocked()
			ch := m.changed
			m.mu.Unlock()

			pushSnapshot(out, snap)

			select {
			case <-ctx.Done():
				return
			case <-m.done:
				return
			case <-ch:
			}
		}
	}()
	return out
}

// Close ends all subscriptions.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	close(m.done)
}

func (m *Machine) snapshotLocked() Snapshot {
	has := m.gate.HasCredential()
	return Snapshot{
		Phase:         m.phase,
		HasCredential: has,
		ShowGate:      !has && m.phase != PhaseSubmitting,
		Result:        m.result.clone(),
		Error:         m.failure,
		ErrorKind:     m.kind,
		Version:       m.version,
	}
}

func (m *Machine) notifyLocked() {
	m.version++
	close(m.changed)
	m.changed = make(chan struct{})
}

func pushSnapshot(out chan Snapshot, snap Snapshot) {
	select {
	case out <- snap:
		return
	default:
	}
	select {
	case <-out:
	default:
	}
	select {
	case out <- snap:
	default:
	}
}
