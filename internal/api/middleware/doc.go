// Package middleware provides Gin middleware for the HTTP surface:
// CORS, per-IP rate limiting, and bearer token to principal resolution.
package middleware
