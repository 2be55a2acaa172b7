package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/ISimplifyComplexity/lazyunit/internal/shared/types"
)

// Manager is an in-memory token to principal store. Credential storage is
// an external concern; this only holds session snapshots for the process
// lifetime.
type Manager struct {
	mu      sync.RWMutex
	byToken map[string]types.Principal
}

// NewManager creates a session manager.
func NewManager() *Manager {
	return &Manager{byToken: make(map[string]types.Principal)}
}

// Issue stores a principal snapshot and returns its bearer token.
func (m *Manager) Issue(p types.Principal) string {
	token := uuid.New().String()
	m.mu.Lock()
	m.byToken[token] = p
	m.mu.Unlock()
	return token
}

// Resolve returns the principal for a token, or the anonymous principal
// when the token is unknown or empty.
func (m *Manager) Resolve(token string) types.Principal {
	if token == "" {
		return types.Anonymous()
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.byToken[token]
	if !ok {
		return types.Anonymous()
	}
	return p
}

// Revoke removes a token.
func (m *Manager) Revoke(token string) {
	m.mu.Lock()
	delete(m.byToken, token)
	m.mu.Unlock()
}

// Count returns the number of active sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byToken)
}

type contextKey struct{}

// WithPrincipal attaches a principal snapshot to the context.
func WithPrincipal(ctx context.Context, p types.Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext reads the principal snapshot from the context, defaulting
// to anonymous.
func FromContext(ctx context.Context) types.Principal {
	if p, ok := ctx.Value(contextKey{}).(types.Principal); ok {
		return p
	}
	return types.Anonymous()
}

// ContextProvider supplies the request-scoped principal to the dispatcher.
type ContextProvider struct{}

// Current returns the principal carried by the context.
func (ContextProvider) Current(ctx context.Context) types.Principal {
	return FromContext(ctx)
}
