/*
Package monitoring provides performance monitoring and metrics collection.

# Overview

This package implements Prometheus-based metrics collection for the session
stage service: HTTP traffic, session provisioning outcomes and latency,
region resolution strategies, curtain transitions, and WebSocket viewers.
A JSON summary with latency quantiles backs the human-facing summary
endpoint.

# Usage

	// Create metrics collector
	metrics := monitoring.NewMetrics()

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Record domain events
	metrics.RecordRegionResolution("us-east-1", "exact")
	metrics.IncSessionsCreated()

	// Time provisioning
	timer := monitoring.NewProvisionTimer(metrics, "us-east-1")
	// ... provision ...
	timer.Stop("success")

# Metrics Endpoint

Expose metrics via the standard Prometheus endpoint:

	import "github.com/prometheus/client_golang/prometheus/promhttp"
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
*/
package monitoring
