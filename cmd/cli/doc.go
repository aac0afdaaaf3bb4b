// Package cli constructs the auditflow command-line interface, wiring the Cobra
// command hierarchy, the Viper configuration loader, and zap logging around the
// audit session service.
package cli
