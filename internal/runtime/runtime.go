package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/dop251/goja"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ISimplifyComplexity/lazyunit/internal/infrastructure/logging"
	"github.com/ISimplifyComplexity/lazyunit/internal/shared/types"
)

// Config defines evaluation limits.
type Config struct {
	Timeout      time.Duration
	MaxCallStack int
}

// DefaultConfig returns production-ready runtime configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:      10 * time.Second,
		MaxCallStack: 1024,
	}
}

// Runtime evaluates unit bundle scripts in an isolated JavaScript VM and
// turns their exports into unit handles. Each evaluation gets a fresh VM,
// so concurrent loads never share interpreter state.
type Runtime struct {
	config Config
	log    *logging.Logger
}

// New creates a unit runtime.
func New(cfg Config, log *logging.Logger) *Runtime {
	return &Runtime{
		config: cfg,
		log:    log,
	}
}

// Evaluate runs a bundle script and returns the materialized handle.
// The script's `exports` global becomes Handle.Exports; a script with no
// exports yields an empty export map.
func (r *Runtime) Evaluate(ctx context.Context, unitID, script string) (*types.Handle, error) {
	vm := goja.New()
	if r.config.MaxCallStack > 0 {
		vm.SetMaxCallStackSize(r.config.MaxCallStack)
	}
	if err := vm.Set("exports", vm.NewObject()); err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", unitID, err)
	}

	// Interrupt on timeout or context cancellation
	stop := make(chan struct{})
	defer close(stop)
	timer := time.NewTimer(r.config.Timeout)
	defer timer.Stop()
	go func() {
		select {
		case <-timer.C:
			vm.Interrupt("evaluation timeout exceeded")
		case <-ctx.Done():
			vm.Interrupt("context cancelled")
		case <-stop:
		}
	}()

	start := time.Now()
	if _, err := vm.RunString(script); err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", unitID, err)
	}

	exports := exportMap(vm)
	r.log.Debug("bundle evaluated",
		zap.String("unit", unitID),
		zap.Duration("duration", time.Since(start)),
		zap.Int("exports", len(exports)),
	)

	return &types.Handle{
		InstanceID: uuid.New().String(),
		UnitID:     unitID,
		Exports:    exports,
		LoadedAt:   time.Now(),
	}, nil
}

func exportMap(vm *goja.Runtime) map[string]any {
	val := vm.Get("exports")
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return map[string]any{}
	}
	if m, ok := val.Export().(map[string]any); ok {
		return m
	}
	return map[string]any{"default": val.Export()}
}
