// Package registry provides the static table of loadable units.
//
// Components:
//   - Registry: register/lookup/iterate units, frozen after construction
//   - Seeder: bulk registration from a YAML manifest at startup
//
// The registry is pure data: it carries unit descriptors and their load
// functions but never loads anything itself. Iteration order matches
// registration order so preload scheduling is deterministic.
//
// Example Usage:
//
//	reg := registry.New()
//	seeder := registry.NewSeeder(reg, fetcher, runtime, log)
//	if err := seeder.SeedFile("units.yaml"); err != nil {
//		return err
//	}
package registry
