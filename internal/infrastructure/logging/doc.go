// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: colored console output for human readability
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("unit loaded", zap.String("unit", "profile"))
package logging
