// Package fetch retrieves unit bundles over HTTP.
//
// The client stacks resty on a retryable transport, guarded by a circuit
// breaker. Gzip-encoded bundle payloads are decompressed transparently.
// The loading core does not retry; transport-level retries here are the
// only automatic re-attempts in the system.
package fetch
