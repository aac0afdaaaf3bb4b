package cli

import (
	"bytes"
	_ "embed"
)

// defaultConfigurationContent seeds every configuration key so AUDITFLOW_* environment
// variables can override keys that no config file mentions.
//
//go:embed default_config.yaml
var defaultConfigurationContent []byte

// EmbeddedDefaultConfiguration returns a copy of the built-in configuration document and its format.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return bytes.Clone(defaultConfigurationContent), configurationTypeConstant
}
