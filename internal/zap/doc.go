// Package zap adapts zap-based logging to the settlement pipeline's log
// abstraction.
//
// Logs are written to stderr so the result CSV on stdout stays machine-clean.
// When a context carries an active OpenTelemetry span, trace and span ids are
// appended to each entry so an embedding service can correlate engine logs
// with its traces.
package zap
