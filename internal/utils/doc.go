// Package utils holds the plumbing shared by the auditflow commands.
//
// ConfigurationLoader layers the embedded defaults, config.yaml files, and
// AUDITFLOW_* environment variables through Viper. LoggerFactory builds zap
// loggers bound to the command's error stream. FlushingWriter and
// CommandContextAccessor support rendering and diagnostics.
package utils
