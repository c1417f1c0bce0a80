// Package telemetry groups the observability subsystems: structured
// logging (telemetry/logging) and Prometheus metrics (telemetry/metrics).
package telemetry
