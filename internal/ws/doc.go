// Package ws streams unit lifecycle events over WebSocket.
//
// Clients connect to /stream and receive every event published on the
// bus: unit_loading, unit_loaded, unit_failed, gate_denied, and
// preload_queued. The stream is observe-only; clients send nothing but
// control frames.
//
// Example Usage:
//
//	handler := ws.NewHandler(bus, log)
//	router.GET("/stream", handler.HandleConnection)
package ws
