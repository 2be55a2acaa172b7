package loader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ISimplifyComplexity/lazyunit/internal/events"
	"github.com/ISimplifyComplexity/lazyunit/internal/infrastructure/logging"
	"github.com/ISimplifyComplexity/lazyunit/internal/infrastructure/monitoring"
	"github.com/ISimplifyComplexity/lazyunit/internal/shared/types"
)

// Loader materializes units at most once, memoizing in-flight and
// completed results. It is the single source of truth for "has this unit
// been materialized".
type Loader struct {
	mu      sync.Mutex
	entries map[string]*entry // keyed by unit ID, protected by mu
	sf      singleflight.Group
	log     *logging.Logger
	metrics *monitoring.Metrics
	bus     *events.Bus
}

// entry tracks one unit's load state. Transitions happen under Loader.mu
// so check-then-set is indivisible with respect to other callers.
type entry struct {
	state   types.LoadState
	handle  *types.Handle
	lastErr error
}

// New creates a unit loader.
func New(log *logging.Logger) *Loader {
	return &Loader{
		entries: make(map[string]*entry),
		log:     log,
	}
}

// WithMetrics adds metrics tracking to the loader.
func (l *Loader) WithMetrics(metrics *monitoring.Metrics) *Loader {
	l.metrics = metrics
	return l
}

// WithBus adds lifecycle event publishing to the loader.
func (l *Loader) WithBus(bus *events.Bus) *Loader {
	l.bus = bus
	return l
}

// Load returns the unit's handle, materializing it if necessary.
//
// Concurrent callers for the same unit share a single LoadFn invocation;
// a loaded handle is returned without blocking; a failed unit is
// re-attempted on the next call. Cancelling ctx abandons the wait but
// never aborts the underlying load, which completes and caches normally.
func (l *Loader) Load(ctx context.Context, u types.Unit) (*types.Handle, error) {
	l.mu.Lock()
	e := l.entry(u.ID)
	if e.state == types.StateLoaded {
		handle := e.handle
		l.mu.Unlock()
		return handle, nil
	}
	l.mu.Unlock()

	ch := l.sf.DoChan(u.ID, func() (interface{}, error) {
		return l.materialize(u)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*types.Handle), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// materialize performs the single LoadFn invocation for a unit. It runs
// inside singleflight, so at most one execution is in flight per unit.
func (l *Loader) materialize(u types.Unit) (interface{}, error) {
	// Double-check after acquiring the singleflight slot: a caller that
	// raced past the fast path may arrive after the unit loaded.
	l.mu.Lock()
	e := l.entry(u.ID)
	if e.state == types.StateLoaded {
		handle := e.handle
		l.mu.Unlock()
		return handle, nil
	}
	e.state = types.StateLoading
	l.mu.Unlock()

	l.publish(events.Event{Type: events.TypeUnitLoading, UnitID: u.ID, TriggerKey: u.TriggerKey})
	l.log.Debug("loading unit", zap.String("unit", u.ID))

	start := time.Now()
	// The load runs detached from any caller context: abandoned waiters
	// must not leave the unit wedged in Loading.
	handle, err := u.LoadFn(context.Background())
	duration := time.Since(start)

	if err == nil && handle == nil {
		err = fmt.Errorf("load function returned no handle")
	}

	l.mu.Lock()
	if err != nil {
		e.state = types.StateFailed
		e.lastErr = err
		l.mu.Unlock()

		if l.metrics != nil {
			l.metrics.RecordLoad(u.ID, "failure", duration)
		}
		l.publish(events.Event{Type: events.TypeUnitFailed, UnitID: u.ID, TriggerKey: u.TriggerKey, Error: err.Error()})
		l.log.Warn("unit load failed",
			zap.String("unit", u.ID),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, fmt.Errorf("load unit %s: %w", u.ID, err)
	}

	e.state = types.StateLoaded
	e.handle = handle
	e.lastErr = nil
	l.mu.Unlock()

	if l.metrics != nil {
		l.metrics.RecordLoad(u.ID, "success", duration)
	}
	l.publish(events.Event{Type: events.TypeUnitLoaded, UnitID: u.ID, TriggerKey: u.TriggerKey})
	l.log.Info("unit loaded",
		zap.String("unit", u.ID),
		zap.Duration("duration", duration),
	)
	return handle, nil
}

// State returns the unit's current load state.
func (l *Loader) State(unitID string) types.LoadState {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[unitID]
	if !ok {
		return types.StateUnloaded
	}
	return e.state
}

// Handle returns the cached handle for a loaded unit, if any.
func (l *Loader) Handle(unitID string) (*types.Handle, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[unitID]
	if !ok || e.state != types.StateLoaded {
		return nil, false
	}
	return e.handle, true
}

// Stats returns loader statistics.
func (l *Loader) Stats() map[string]interface{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	counts := map[types.LoadState]int{}
	for _, e := range l.entries {
		counts[e.state]++
	}

	return map[string]interface{}{
		"loading": counts[types.StateLoading],
		"loaded":  counts[types.StateLoaded],
		"failed":  counts[types.StateFailed],
	}
}

// entry returns the state entry for a unit, creating it lazily.
// Caller must hold l.mu.
func (l *Loader) entry(unitID string) *entry {
	e, ok := l.entries[unitID]
	if !ok {
		e = &entry{state: types.StateUnloaded}
		l.entries[unitID] = e
	}
	return e
}

func (l *Loader) publish(ev events.Event) {
	if l.bus != nil {
		l.bus.Publish(ev)
	}
}
