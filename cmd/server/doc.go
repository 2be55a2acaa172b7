// Package main is the entry point for the lazyunit server.
//
// The server materializes independently loadable application units on
// demand: eager units at startup, preload-flagged units speculatively in
// the background, and everything else lazily on first navigation, behind
// per-unit access gates.
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server -port 8600 -manifest units.yaml
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: graceful shutdown
package main
