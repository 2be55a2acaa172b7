package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ISimplifyComplexity/lazyunit/internal/shared/types"
)

func TestEvaluateNoGates(t *testing.T) {
	decision := Evaluate(types.Unit{ID: "open"}, types.Anonymous())
	assert.True(t, decision.Allowed)
}

func TestEvaluateShortCircuit(t *testing.T) {
	secondEvaluated := false
	unit := types.Unit{
		ID: "guarded",
		Gates: []types.Gate{
			DenyAll("/login"),
			func(types.Unit, types.Principal) types.Decision {
				secondEvaluated = true
				return types.Allow()
			},
		},
	}

	decision := Evaluate(unit, types.Anonymous())

	assert.False(t, decision.Allowed)
	assert.Equal(t, "/login", decision.Redirect)
	assert.False(t, secondEvaluated, "gates after the first denial must not run")
}

func TestEvaluateAllAllow(t *testing.T) {
	unit := types.Unit{
		ID:    "open",
		Gates: []types.Gate{AllowAll, AllowAll},
	}
	assert.True(t, Evaluate(unit, types.Anonymous()).Allowed)
}

func TestAuthenticated(t *testing.T) {
	g := Authenticated("/login")

	denied := g(types.Unit{}, types.Anonymous())
	assert.False(t, denied.Allowed)
	assert.Equal(t, "/login", denied.Redirect)

	allowed := g(types.Unit{}, types.Principal{Authenticated: true, Subject: "alice"})
	assert.True(t, allowed.Allowed)
}

func TestRequireAttr(t *testing.T) {
	g := RequireAttr("role", "admin", "/denied")

	user := types.Principal{Authenticated: true, Attrs: map[string]string{"role": "viewer"}}
	assert.False(t, g(types.Unit{}, user).Allowed)

	admin := types.Principal{Authenticated: true, Attrs: map[string]string{"role": "admin"}}
	assert.True(t, g(types.Unit{}, admin).Allowed)
}

func TestResolve(t *testing.T) {
	g, err := Resolve("authenticated", Params{Redirect: "/login"})
	require.NoError(t, err)
	decision := g(types.Unit{}, types.Anonymous())
	assert.Equal(t, "/login", decision.Redirect)

	_, err = Resolve("attr", Params{})
	assert.Error(t, err)

	_, err = Resolve("bogus", Params{})
	assert.Error(t, err)
}
