// Package preload runs the speculative background load pass.
//
// The scheduler sweeps the registry exactly once per process lifetime,
// asking a pluggable Strategy function whether each unit should be
// fetched ahead of demand. Accepted units are loaded fire-and-forget
// through the shared loader, so an on-demand navigation arriving during
// the sweep coalesces onto the same in-flight load instead of fetching
// twice.
//
// Gates are deliberately not consulted here: speculative fetching must
// never trigger authorization side effects such as redirects.
package preload
