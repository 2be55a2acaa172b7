package preload

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ISimplifyComplexity/lazyunit/internal/domain/gate"
	"github.com/ISimplifyComplexity/lazyunit/internal/domain/loader"
	"github.com/ISimplifyComplexity/lazyunit/internal/domain/registry"
	"github.com/ISimplifyComplexity/lazyunit/internal/infrastructure/logging"
	"github.com/ISimplifyComplexity/lazyunit/internal/shared/types"
)

func unitWithFlag(id string, preload bool, calls *int32) types.Unit {
	return types.Unit{
		ID:         id,
		TriggerKey: "/" + id,
		Metadata:   map[string]any{"preload": preload},
		LoadFn: func(ctx context.Context) (*types.Handle, error) {
			atomic.AddInt32(calls, 1)
			return &types.Handle{InstanceID: id, UnitID: id, LoadedAt: time.Now()}, nil
		},
	}
}

func TestStrategies(t *testing.T) {
	flagged := types.Unit{Metadata: map[string]any{"preload": true}}
	plain := types.Unit{}

	assert.True(t, AllUnits(flagged))
	assert.True(t, AllUnits(plain))
	assert.True(t, MetadataFlag(flagged))
	assert.False(t, MetadataFlag(plain))
	assert.False(t, None(flagged))
}

func TestStrategyByName(t *testing.T) {
	flagged := types.Unit{Metadata: map[string]any{"preload": true}}
	assert.True(t, StrategyByName("all")(types.Unit{}))
	assert.False(t, StrategyByName("none")(flagged))
	assert.True(t, StrategyByName("metadata")(flagged))
	assert.False(t, StrategyByName("metadata")(types.Unit{}))
}

func TestRunMetadataFlagLoadsOnlyFlagged(t *testing.T) {
	reg := registry.New()
	var aCalls, bCalls int32
	require.NoError(t, reg.Register(unitWithFlag("a", true, &aCalls)))
	require.NoError(t, reg.Register(unitWithFlag("b", false, &bCalls)))

	l := loader.New(logging.NewNop())
	s := NewScheduler(reg, l, logging.NewNop())

	assert.True(t, s.Run(context.Background(), MetadataFlag))
	s.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&aCalls))
	assert.Equal(t, int32(0), atomic.LoadInt32(&bCalls))
	assert.Equal(t, types.StateLoaded, l.State("a"))
	assert.Equal(t, types.StateUnloaded, l.State("b"))
}

func TestRunAllUnitsLoadsEverything(t *testing.T) {
	reg := registry.New()
	var aCalls, bCalls int32
	require.NoError(t, reg.Register(unitWithFlag("a", true, &aCalls)))
	require.NoError(t, reg.Register(unitWithFlag("b", false, &bCalls)))

	l := loader.New(logging.NewNop())
	s := NewScheduler(reg, l, logging.NewNop())

	s.Run(context.Background(), AllUnits)
	s.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&aCalls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&bCalls))
}

func TestRunIsOneShot(t *testing.T) {
	reg := registry.New()
	var calls int32
	require.NoError(t, reg.Register(unitWithFlag("a", true, &calls)))

	l := loader.New(logging.NewNop())
	s := NewScheduler(reg, l, logging.NewNop())

	assert.True(t, s.Run(context.Background(), AllUnits))
	assert.False(t, s.Run(context.Background(), AllUnits), "second run must be a no-op")
	s.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.True(t, s.Done())
}

func TestRunBypassesGates(t *testing.T) {
	reg := registry.New()
	var calls int32
	u := unitWithFlag("guarded", true, &calls)
	u.Gates = []types.Gate{gate.DenyAll("/login")}
	require.NoError(t, reg.Register(u))

	l := loader.New(logging.NewNop())
	s := NewScheduler(reg, l, logging.NewNop())

	s.Run(context.Background(), MetadataFlag)
	s.Wait()

	// A denying gate must not stop the speculative fetch
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, types.StateLoaded, l.State("guarded"))
}

func TestRunFailureDoesNotStopSweep(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(types.Unit{
		ID:         "broken",
		TriggerKey: "/broken",
		Metadata:   map[string]any{"preload": true},
		LoadFn: func(ctx context.Context) (*types.Handle, error) {
			return nil, errors.New("fetch failed")
		},
	}))
	var calls int32
	require.NoError(t, reg.Register(unitWithFlag("healthy", true, &calls)))

	l := loader.New(logging.NewNop())
	s := NewScheduler(reg, l, logging.NewNop())

	s.Run(context.Background(), MetadataFlag)
	s.Wait()

	assert.Equal(t, types.StateFailed, l.State("broken"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, types.StateLoaded, l.State("healthy"))
}
