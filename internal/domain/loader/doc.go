// Package loader materializes units exactly once and memoizes the result.
//
// Concurrency contract:
//   - At most one LoadFn invocation is in flight per unit; concurrent
//     callers coalesce onto it via singleflight.
//   - A loaded handle is cached for the process lifetime and returned
//     without blocking.
//   - A failed load is surfaced to every concurrent waiter and is not
//     retried internally; the next Load call re-attempts.
//   - Abandoning a Load call (context cancellation) never aborts the
//     underlying load; it completes and caches for future callers.
//
// State transitions (unloaded -> loading -> loaded | failed, with
// failed -> loading on retry) happen under a single mutex so the
// check-then-set is race-free.
package loader
