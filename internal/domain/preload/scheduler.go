package preload

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ISimplifyComplexity/lazyunit/internal/domain/loader"
	"github.com/ISimplifyComplexity/lazyunit/internal/domain/registry"
	"github.com/ISimplifyComplexity/lazyunit/internal/events"
	"github.com/ISimplifyComplexity/lazyunit/internal/infrastructure/logging"
	"github.com/ISimplifyComplexity/lazyunit/internal/infrastructure/monitoring"
	"github.com/ISimplifyComplexity/lazyunit/internal/shared/types"
)

// Strategy decides whether a unit should be loaded speculatively.
// Strategies are pure functions over the unit descriptor.
type Strategy func(types.Unit) bool

// AllUnits preloads every unit.
func AllUnits(types.Unit) bool {
	return true
}

// MetadataFlag preloads units whose metadata carries preload=true.
func MetadataFlag(u types.Unit) bool {
	return u.MetadataBool("preload")
}

// None preloads nothing.
func None(types.Unit) bool {
	return false
}

// Scheduler state machine: idle -> scheduling -> done. Terminal.
const (
	stateIdle int32 = iota
	stateScheduling
	stateDone
)

// Scheduler runs one speculative preload pass over the registry after
// startup. It never consults gates: preloading fetches code ahead of
// demand, while authorization happens only at actual activation.
type Scheduler struct {
	registry *registry.Registry
	loader   *loader.Loader
	log      *logging.Logger
	metrics  *monitoring.Metrics
	bus      *events.Bus

	state int32 // atomic; idle/scheduling/done
	wg    sync.WaitGroup
}

// NewScheduler creates a preload scheduler.
func NewScheduler(reg *registry.Registry, l *loader.Loader, log *logging.Logger) *Scheduler {
	return &Scheduler{
		registry: reg,
		loader:   l,
		log:      log,
	}
}

// WithMetrics adds metrics tracking to the scheduler.
func (s *Scheduler) WithMetrics(metrics *monitoring.Metrics) *Scheduler {
	s.metrics = metrics
	return s
}

// WithBus adds event publishing to the scheduler.
func (s *Scheduler) WithBus(bus *events.Bus) *Scheduler {
	s.bus = bus
	return s
}

// Run performs the preload pass: one sweep over the registry, dispatching
// a background load for every unit the strategy accepts. Loads are fire
// and forget; one unit's failure never stops the sweep. Run is a no-op
// after the first invocation and reports whether this call performed it.
func (s *Scheduler) Run(ctx context.Context, strategy Strategy) bool {
	if !atomic.CompareAndSwapInt32(&s.state, stateIdle, stateScheduling) {
		s.log.Debug("preload already ran; skipping")
		return false
	}

	dispatched := 0
	for _, u := range s.registry.All() {
		if !strategy(u) {
			continue
		}

		dispatched++
		if s.metrics != nil {
			s.metrics.PreloadDispatched.Inc()
		}
		if s.bus != nil {
			s.bus.Publish(events.Event{Type: events.TypePreloadQueued, UnitID: u.ID, TriggerKey: u.TriggerKey})
		}

		unit := u
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if _, err := s.loader.Load(ctx, unit); err != nil {
				s.log.Warn("speculative load failed",
					zap.String("unit", unit.ID),
					zap.Error(err),
				)
			}
		}()
	}

	atomic.StoreInt32(&s.state, stateDone)
	s.log.Info("preload pass dispatched", zap.Int("units", dispatched))
	return true
}

// Done reports whether the preload pass has been dispatched.
func (s *Scheduler) Done() bool {
	return atomic.LoadInt32(&s.state) == stateDone
}

// Wait blocks until all dispatched background loads settle. Used by
// graceful shutdown and tests; navigation never waits on it.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// StrategyByName maps a configuration value to a built-in strategy.
func StrategyByName(name string) Strategy {
	switch name {
	case "all":
		return AllUnits
	case "none":
		return None
	default:
		return MetadataFlag
	}
}
