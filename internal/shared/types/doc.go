// Package types defines the shared data model for the unit loading core.
//
// Types:
//   - Unit: immutable descriptor of a loadable application unit
//   - Handle: materialized unit result, cached for the process lifetime
//   - LoadState: unloaded/loading/loaded/failed lifecycle
//   - Principal: opaque session snapshot from the context provider
//   - Decision: gate evaluation outcome with optional redirect
//
// Error taxonomy:
//   - ErrDuplicateUnit: trigger key collision at registration
//   - ErrRegistryFrozen: registration after the construction phase
//   - ErrUnitNotFound: navigation to an unknown trigger key
//
// Load failures carry the LoadFn error wrapped by the loader; gate denial
// is a Decision value rather than an error.
package types
