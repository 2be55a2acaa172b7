// Package resilience provides a circuit breaker for the remote bundle
// fetch path.
//
// States: closed -> open after a run of consecutive failures; open ->
// half-open after a cooldown; half-open admits a single probe and closes
// on success or reopens on failure.
package resilience
