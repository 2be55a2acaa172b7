package gate

import (
	"fmt"

	"github.com/ISimplifyComplexity/lazyunit/internal/shared/types"
)

// Evaluate ANDs every gate attached to the unit, short-circuiting on the
// first denial. Gates past the first denial are never evaluated, so their
// denial handlers see no side effects.
func Evaluate(u types.Unit, p types.Principal) types.Decision {
	for _, g := range u.Gates {
		if decision := g(u, p); !decision.Allowed {
			return decision
		}
	}
	return types.Allow()
}

// AllowAll permits every activation.
func AllowAll(types.Unit, types.Principal) types.Decision {
	return types.Allow()
}

// DenyAll rejects every activation, redirecting to the given trigger key.
func DenyAll(redirect string) types.Gate {
	return func(types.Unit, types.Principal) types.Decision {
		return types.Deny(redirect)
	}
}

// Authenticated permits activation only for authenticated principals,
// redirecting to the given trigger key otherwise.
func Authenticated(redirect string) types.Gate {
	return func(_ types.Unit, p types.Principal) types.Decision {
		if p.Authenticated {
			return types.Allow()
		}
		return types.Deny(redirect)
	}
}

// RequireAttr permits activation only when the principal carries the
// given attribute value.
func RequireAttr(attr, want, redirect string) types.Gate {
	return func(_ types.Unit, p types.Principal) types.Decision {
		if p.Attrs[attr] == want {
			return types.Allow()
		}
		return types.Deny(redirect)
	}
}

// Params carries the configuration of a named gate from the manifest.
type Params struct {
	Redirect string
	Attr     string
	Value    string
}

// Resolve maps a manifest gate name to a built-in gate.
func Resolve(name string, params Params) (types.Gate, error) {
	switch name {
	case "allow":
		return AllowAll, nil
	case "deny":
		return DenyAll(params.Redirect), nil
	case "authenticated":
		return Authenticated(params.Redirect), nil
	case "attr":
		if params.Attr == "" {
			return nil, fmt.Errorf("gate %q requires attr", name)
		}
		return RequireAttr(params.Attr, params.Value, params.Redirect), nil
	default:
		return nil, fmt.Errorf("unknown gate %q", name)
	}
}
