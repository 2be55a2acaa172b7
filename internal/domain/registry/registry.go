package registry

import (
	"fmt"
	"sync"

	"github.com/ISimplifyComplexity/lazyunit/internal/shared/types"
)

// Registry is the static table of loadable units. Units are registered
// during the construction phase and the table is frozen before serving.
type Registry struct {
	mu     sync.RWMutex
	byKey  map[string]types.Unit
	ids    map[string]struct{}
	order  []string // trigger keys in registration order
	frozen bool
}

// New creates an empty unit registry.
func New() *Registry {
	return &Registry{
		byKey: make(map[string]types.Unit),
		ids:   make(map[string]struct{}),
	}
}

// Register adds a unit to the registry. It fails if the trigger key is
// already taken or the registry has been frozen.
func (r *Registry) Register(u types.Unit) error {
	if u.ID == "" {
		return fmt.Errorf("unit ID is required")
	}
	if u.TriggerKey == "" {
		return fmt.Errorf("unit %s: trigger key is required", u.ID)
	}
	if u.LoadFn == nil {
		return fmt.Errorf("unit %s: load function is required", u.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("register %s: %w", u.ID, types.ErrRegistryFrozen)
	}
	if _, exists := r.byKey[u.TriggerKey]; exists {
		return fmt.Errorf("trigger key %s: %w", u.TriggerKey, types.ErrDuplicateUnit)
	}
	// IDs key the loader's state table, so two units sharing one ID
	// would share a load entry and handle.
	if _, exists := r.ids[u.ID]; exists {
		return fmt.Errorf("unit ID %s: %w", u.ID, types.ErrDuplicateUnit)
	}

	r.byKey[u.TriggerKey] = u
	r.ids[u.ID] = struct{}{}
	r.order = append(r.order, u.TriggerKey)
	return nil
}

// Lookup finds a unit by trigger key.
func (r *Registry) Lookup(triggerKey string) (types.Unit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byKey[triggerKey]
	if !ok {
		return types.Unit{}, fmt.Errorf("trigger key %s: %w", triggerKey, types.ErrUnitNotFound)
	}
	return u, nil
}

// All returns every registered unit in registration order.
func (r *Registry) All() []types.Unit {
	r.mu.RLock()
	defer r.mu.RUnlock()

	units := make([]types.Unit, 0, len(r.order))
	for _, key := range r.order {
		units = append(units, r.byKey[key])
	}
	return units
}

// Freeze ends the construction phase. Registration attempts after Freeze
// fail with ErrRegistryFrozen.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Frozen reports whether the registry has been frozen.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Len returns the number of registered units.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Stats returns registry statistics.
func (r *Registry) Stats() map[string]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var preloadable, gated int
	for _, key := range r.order {
		u := r.byKey[key]
		if u.MetadataBool("preload") {
			preloadable++
		}
		if len(u.Gates) > 0 {
			gated++
		}
	}

	return map[string]interface{}{
		"total_units": len(r.order),
		"preloadable": preloadable,
		"gated":       gated,
		"frozen":      r.frozen,
	}
}
