// Package ui provides helpers for formatting human-readable console output.
//
// The helpers translate audit projections and operation events into concise
// messages for CLI users while detailed telemetry continues to flow through
// structured loggers.
package ui
