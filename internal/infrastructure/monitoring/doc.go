// Package monitoring provides Prometheus metrics for the unit loading core.
//
// Metrics cover load attempts and durations, materialized unit counts,
// gate denials, preload dispatches, navigation outcomes, and the HTTP
// surface. Each Metrics instance owns its own registry so tests can
// construct collectors freely.
//
// Example Usage:
//
//	metrics := monitoring.NewMetrics()
//	loader := loader.New(log).WithMetrics(metrics)
//	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})))
package monitoring
