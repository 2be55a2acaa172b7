package types

import (
	"context"
	"time"
)

// LoadFn materializes a unit. It is invoked at most once per successful
// load; the loader re-invokes it only after a failure.
type LoadFn func(ctx context.Context) (*Handle, error)

// Gate decides whether a unit may be activated for a principal.
// Gates must be pure with respect to their inputs.
type Gate func(unit Unit, principal Principal) Decision

// Unit describes one independently loadable application unit.
// Immutable after registration.
type Unit struct {
	ID         string         `json:"id"`
	TriggerKey string         `json:"trigger_key"` // navigation path that activates the unit
	Metadata   map[string]any `json:"metadata,omitempty"`
	Gates      []Gate         `json:"-"`
	LoadFn     LoadFn         `json:"-"`
}

// MetadataBool reads a boolean policy flag from unit metadata.
// Missing or non-boolean values read as false.
func (u Unit) MetadataBool(key string) bool {
	v, ok := u.Metadata[key].(bool)
	return ok && v
}

// Handle is the materialized result of loading a unit. Once created it is
// cached for the process lifetime and never re-created.
type Handle struct {
	InstanceID string         `json:"instance_id"`
	UnitID     string         `json:"unit_id"`
	Exports    map[string]any `json:"exports,omitempty"`
	LoadedAt   time.Time      `json:"loaded_at"`
}

// Principal is an opaque snapshot of the current session, supplied by an
// external context provider. The core only reads it.
type Principal struct {
	Subject       string            `json:"subject,omitempty"`
	Authenticated bool              `json:"authenticated"`
	Attrs         map[string]string `json:"attrs,omitempty"`
}

// Anonymous is the zero principal used when no session is present.
func Anonymous() Principal {
	return Principal{}
}
