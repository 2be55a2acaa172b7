// Package events provides a non-blocking publish/subscribe bus for unit
// lifecycle transitions.
//
// The loader publishes unit_loading, unit_loaded, and unit_failed; the
// dispatcher publishes gate_denied; the preload scheduler publishes
// preload_queued. Subscribers include the WebSocket stream handler.
package events
