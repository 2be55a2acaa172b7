package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned when the breaker rejects a call outright.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State represents the breaker state.
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Settings configures breaker behavior.
type Settings struct {
	// FailureThreshold is the consecutive failure count that opens the circuit.
	FailureThreshold uint32
	// Cooldown is how long the circuit stays open before a probe is allowed.
	Cooldown time.Duration
	// OnStateChange is called whenever the state changes.
	OnStateChange func(name string, from State, to State)
}

// Breaker guards the remote bundle fetch path. The loading core itself
// never retries; the breaker only protects against hammering a dead
// bundle host during preload sweeps.
type Breaker struct {
	name     string
	settings Settings

	mu           sync.Mutex
	state        State
	failures     uint32
	openedAt     time.Time
	halfOpenBusy bool
}

// New creates a circuit breaker with the given settings.
func New(name string, settings Settings) *Breaker {
	if settings.FailureThreshold == 0 {
		settings.FailureThreshold = 5
	}
	if settings.Cooldown == 0 {
		settings.Cooldown = 30 * time.Second
	}
	return &Breaker{
		name:     name,
		settings: settings,
	}
}

// Name returns the breaker's name.
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.observe(time.Now())
}

// Execute runs fn if the circuit accepts it, recording the outcome.
func (b *Breaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	if err := b.before(); err != nil {
		return nil, err
	}

	result, err := fn()
	b.after(err == nil)
	return result, err
}

func (b *Breaker) before() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.observe(time.Now()) {
	case StateOpen:
		return ErrCircuitOpen
	case StateHalfOpen:
		if b.halfOpenBusy {
			return ErrCircuitOpen
		}
		// Single probe at a time while half-open
		b.halfOpenBusy = true
	}
	return nil
}

func (b *Breaker) after(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	state := b.observe(now)
	b.halfOpenBusy = false

	if success {
		b.failures = 0
		if state == StateHalfOpen {
			b.transition(StateClosed, now)
		}
		return
	}

	switch state {
	case StateClosed:
		b.failures++
		if b.failures >= b.settings.FailureThreshold {
			b.transition(StateOpen, now)
		}
	case StateHalfOpen:
		b.transition(StateOpen, now)
	}
}

// observe returns the effective state, promoting open to half-open once
// the cooldown elapses. Caller must hold b.mu.
func (b *Breaker) observe(now time.Time) State {
	if b.state == StateOpen && now.Sub(b.openedAt) >= b.settings.Cooldown {
		b.transition(StateHalfOpen, now)
	}
	return b.state
}

// transition changes state. Caller must hold b.mu.
func (b *Breaker) transition(state State, now time.Time) {
	if b.state == state {
		return
	}
	prev := b.state
	b.state = state
	if state == StateOpen {
		b.openedAt = now
	}
	if b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, prev, state)
	}
}
