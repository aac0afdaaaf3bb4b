package audits

import (
	"strings"

	"github.com/auditflow-pro/auditflow-pro/internal/ui"
)

const (
	outputConfigurationKeyConstant    = "output"
	assumeYesConfigurationKeyConstant = "assume_yes"
	configurationKeySeparatorConstant = "."
)

// CommandConfiguration captures CLI presentation defaults for audit commands.
type CommandConfiguration struct {
	Output    string `mapstructure:"output"`
	AssumeYes bool   `mapstructure:"assume_yes"`
}

// DefaultCommandConfiguration returns baseline CLI settings.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Output:    string(ui.OutputFormatText),
		AssumeYes: false,
	}
}

// DefaultConfigurationValues produces Viper defaults under the provided prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		prefixedKey(prefix, outputConfigurationKeyConstant):    defaults.Output,
		prefixedKey(prefix, assumeYesConfigurationKeyConstant): defaults.AssumeYes,
	}
}

// Sanitize trims values and restores defaults for blank fields.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Output = strings.ToLower(strings.TrimSpace(configuration.Output))
	if len(sanitized.Output) == 0 {
		sanitized.Output = string(ui.OutputFormatText)
	}
	return sanitized
}

func prefixedKey(prefix string, key string) string {
	trimmedPrefix := strings.TrimSpace(prefix)
	if len(trimmedPrefix) == 0 {
		return key
	}
	return trimmedPrefix + configurationKeySeparatorConstant + key
}
