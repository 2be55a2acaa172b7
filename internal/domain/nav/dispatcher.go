package nav

import (
	"context"

	"go.uber.org/zap"

	"github.com/ISimplifyComplexity/lazyunit/internal/domain/gate"
	"github.com/ISimplifyComplexity/lazyunit/internal/domain/loader"
	"github.com/ISimplifyComplexity/lazyunit/internal/domain/registry"
	"github.com/ISimplifyComplexity/lazyunit/internal/events"
	"github.com/ISimplifyComplexity/lazyunit/internal/infrastructure/logging"
	"github.com/ISimplifyComplexity/lazyunit/internal/infrastructure/monitoring"
	"github.com/ISimplifyComplexity/lazyunit/internal/shared/types"
)

// PrincipalProvider supplies the current session snapshot on demand.
type PrincipalProvider interface {
	Current(ctx context.Context) types.Principal
}

// Status describes the outcome of a navigation.
type Status string

const (
	StatusLoaded   Status = "loaded"
	StatusRedirect Status = "redirect"
)

// Result is the outcome of a navigation dispatch. A denied navigation is
// a redirect result, not an error; the unit's load never ran.
type Result struct {
	Status   Status        `json:"status"`
	Handle   *types.Handle `json:"handle,omitempty"`
	Redirect string        `json:"redirect,omitempty"`
}

// Dispatcher resolves navigation events: lookup, gate evaluation, then
// on-demand load through the shared loader.
type Dispatcher struct {
	registry   *registry.Registry
	loader     *loader.Loader
	principals PrincipalProvider
	log        *logging.Logger
	metrics    *monitoring.Metrics
	bus        *events.Bus
}

// NewDispatcher creates a navigation dispatcher.
func NewDispatcher(reg *registry.Registry, l *loader.Loader, principals PrincipalProvider, log *logging.Logger) *Dispatcher {
	return &Dispatcher{
		registry:   reg,
		loader:     l,
		principals: principals,
		log:        log,
	}
}

// WithMetrics adds metrics tracking to the dispatcher.
func (d *Dispatcher) WithMetrics(metrics *monitoring.Metrics) *Dispatcher {
	d.metrics = metrics
	return d
}

// WithBus adds event publishing to the dispatcher.
func (d *Dispatcher) WithBus(bus *events.Bus) *Dispatcher {
	d.bus = bus
	return d
}

// Navigate activates the unit behind triggerKey.
//
// Unknown keys fail with ErrUnitNotFound. A gate denial returns a
// redirect result without ever invoking the unit's load. An allowed
// navigation awaits the load and returns the handle, or the load error.
func (d *Dispatcher) Navigate(ctx context.Context, triggerKey string) (*Result, error) {
	unit, err := d.registry.Lookup(triggerKey)
	if err != nil {
		d.recordNavigation("not_found")
		return nil, err
	}

	principal := d.principals.Current(ctx)
	if decision := gate.Evaluate(unit, principal); !decision.Allowed {
		d.recordNavigation("denied")
		if d.metrics != nil {
			d.metrics.RecordDenial(unit.ID)
		}
		if d.bus != nil {
			d.bus.Publish(events.Event{
				Type:       events.TypeGateDenied,
				UnitID:     unit.ID,
				TriggerKey: unit.TriggerKey,
				Redirect:   decision.Redirect,
			})
		}
		d.log.Info("navigation denied",
			zap.String("unit", unit.ID),
			zap.String("redirect", decision.Redirect),
		)
		return &Result{Status: StatusRedirect, Redirect: decision.Redirect}, nil
	}

	handle, err := d.loader.Load(ctx, unit)
	if err != nil {
		d.recordNavigation("load_failed")
		return nil, err
	}

	d.recordNavigation("loaded")
	return &Result{Status: StatusLoaded, Handle: handle}, nil
}

func (d *Dispatcher) recordNavigation(status string) {
	if d.metrics != nil {
		d.metrics.RecordNavigation(status)
	}
}
