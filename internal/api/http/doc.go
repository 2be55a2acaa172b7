// Package http exposes the unit loading core over a REST surface.
//
// Endpoints:
//   - POST /navigate/*key: dispatch a navigation (303 on gate denial)
//   - GET  /units: list units with load states
//   - GET  /state/*key: one unit's load state
//   - GET  /stats: registry/loader statistics
//   - POST /auth/login, /auth/logout: session token management
//   - GET  /health: liveness
package http
