// Package log defines the logging interface and typed logging fields used
// across the settlement pipeline.
//
// Adapters (such as internal/zap) implement Logger so components can keep
// logging calls consistent across backends; NewNop is the default for
// components constructed without a logger.
package log
