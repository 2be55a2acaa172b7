// Package server wires the loading core into a running HTTP service.
//
// Startup order: load configuration, seed the registry from the unit
// manifest, synchronously load eager units, dispatch the one-shot
// preload pass, then serve navigation traffic. Shutdown drains HTTP and
// waits for background preloads to settle.
package server
