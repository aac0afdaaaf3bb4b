package utils

import "context"

type commandContextKey int

const (
	configurationFilePathContextKey commandContextKey = iota
	storeLocationContextKey
)

// CommandContextAccessor stores resolved configuration details on command execution contexts
// so subcommands can report where their settings and audits came from.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath records the configuration file that was loaded, if any.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	return withContextString(parentContext, configurationFilePathContextKey, configurationFilePath)
}

// ConfigurationFilePath returns the recorded configuration file path.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	return contextString(executionContext, configurationFilePathContextKey)
}

// WithStoreLocation records the backend and path of the audit store in use.
func (accessor CommandContextAccessor) WithStoreLocation(parentContext context.Context, storeLocation string) context.Context {
	return withContextString(parentContext, storeLocationContextKey, storeLocation)
}

// StoreLocation returns the recorded audit store location.
func (accessor CommandContextAccessor) StoreLocation(executionContext context.Context) (string, bool) {
	return contextString(executionContext, storeLocationContextKey)
}

func withContextString(parentContext context.Context, key commandContextKey, value string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, key, value)
}

func contextString(executionContext context.Context, key commandContextKey) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	value, available := executionContext.Value(key).(string)
	return value, available
}
