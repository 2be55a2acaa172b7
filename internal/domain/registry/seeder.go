package registry

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"go.uber.org/zap"

	"github.com/ISimplifyComplexity/lazyunit/internal/domain/gate"
	"github.com/ISimplifyComplexity/lazyunit/internal/infrastructure/logging"
	"github.com/ISimplifyComplexity/lazyunit/internal/shared/types"
)

// SourceFetcher retrieves a unit bundle from a remote source.
type SourceFetcher interface {
	Source(ctx context.Context, url string) ([]byte, error)
}

// Evaluator materializes a unit handle from bundle source.
type Evaluator interface {
	Evaluate(ctx context.Context, unitID, script string) (*types.Handle, error)
}

// Manifest is the on-disk declaration of all loadable units, consumed
// once at startup.
type Manifest struct {
	Units []ManifestUnit `yaml:"units"`
}

// ManifestUnit declares one unit in the manifest.
type ManifestUnit struct {
	ID       string         `yaml:"id"`
	Trigger  string         `yaml:"trigger"`
	Source   string         `yaml:"source,omitempty"` // remote bundle URL
	Script   string         `yaml:"script,omitempty"` // inline bundle source
	Eager    bool           `yaml:"eager,omitempty"`
	Preload  bool           `yaml:"preload,omitempty"`
	Gates    []ManifestGate `yaml:"gates,omitempty"`
	Metadata map[string]any `yaml:"metadata,omitempty"`
}

// ManifestGate names a built-in gate attached to a unit.
type ManifestGate struct {
	Name     string `yaml:"name"`
	Redirect string `yaml:"redirect,omitempty"`
	Attr     string `yaml:"attr,omitempty"`
	Value    string `yaml:"value,omitempty"`
}

// Seeder builds the registry from a YAML manifest.
type Seeder struct {
	registry *Registry
	fetcher  SourceFetcher
	eval     Evaluator
	log      *logging.Logger
}

// NewSeeder creates a manifest seeder.
func NewSeeder(registry *Registry, fetcher SourceFetcher, eval Evaluator, log *logging.Logger) *Seeder {
	return &Seeder{
		registry: registry,
		fetcher:  fetcher,
		eval:     eval,
		log:      log,
	}
}

// SeedFile reads and registers the manifest at path, then freezes the
// registry. Manifest errors are fatal: a broken unit declaration fails
// startup rather than serving a partial table.
func (s *Seeder) SeedFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}
	return s.Seed(data)
}

// Seed parses manifest bytes, registers every declared unit, and freezes
// the registry.
func (s *Seeder) Seed(data []byte) error {
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return fmt.Errorf("parse manifest: %w", err)
	}

	for _, decl := range manifest.Units {
		unit, err := s.buildUnit(decl)
		if err != nil {
			return fmt.Errorf("unit %s: %w", decl.ID, err)
		}
		if err := s.registry.Register(unit); err != nil {
			return err
		}
		s.log.Info("unit registered",
			zap.String("unit", unit.ID),
			zap.String("trigger", unit.TriggerKey),
			zap.Bool("eager", decl.Eager),
			zap.Bool("preload", decl.Preload),
		)
	}

	s.registry.Freeze()
	s.log.Info("registry frozen", zap.Int("units", s.registry.Len()))
	return nil
}

func (s *Seeder) buildUnit(decl ManifestUnit) (types.Unit, error) {
	loadFn, err := s.buildLoadFn(decl)
	if err != nil {
		return types.Unit{}, err
	}

	gates := make([]types.Gate, 0, len(decl.Gates))
	for _, g := range decl.Gates {
		resolved, err := gate.Resolve(g.Name, gate.Params{
			Redirect: g.Redirect,
			Attr:     g.Attr,
			Value:    g.Value,
		})
		if err != nil {
			return types.Unit{}, err
		}
		gates = append(gates, resolved)
	}

	metadata := make(map[string]any, len(decl.Metadata)+2)
	for k, v := range decl.Metadata {
		metadata[k] = v
	}
	metadata["eager"] = decl.Eager
	metadata["preload"] = decl.Preload

	return types.Unit{
		ID:         decl.ID,
		TriggerKey: decl.Trigger,
		Metadata:   metadata,
		Gates:      gates,
		LoadFn:     loadFn,
	}, nil
}

// buildLoadFn composes fetch and evaluation into the unit's load function.
// Inline scripts skip the fetch; remote sources are fetched first.
func (s *Seeder) buildLoadFn(decl ManifestUnit) (types.LoadFn, error) {
	switch {
	case decl.Script != "":
		script := decl.Script
		id := decl.ID
		return func(ctx context.Context) (*types.Handle, error) {
			return s.eval.Evaluate(ctx, id, script)
		}, nil

	case decl.Source != "":
		url := decl.Source
		id := decl.ID
		return func(ctx context.Context) (*types.Handle, error) {
			src, err := s.fetcher.Source(ctx, url)
			if err != nil {
				return nil, fmt.Errorf("fetch bundle: %w", err)
			}
			return s.eval.Evaluate(ctx, id, string(src))
		}, nil

	default:
		return nil, fmt.Errorf("either source or script is required")
	}
}
