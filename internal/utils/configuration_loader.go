package utils

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	environmentKeyNestingSeparatorConstant   = "."
	environmentKeyWordSeparatorConstant      = "_"
	configurationFileErrorTemplateConstant   = "unable to read configuration file: %w"
	configurationDecodeErrorTemplateConstant = "unable to decode configuration: %w"
	embeddedDocumentErrorTemplateConstant    = "unable to merge built-in configuration: %w"
)

var configurationFormatsByExtension = map[string]string{
	".yaml": "yaml",
	".yml":  "yaml",
	".json": "json",
}

// ConfigurationLoaderSettings names the configuration file, its default format, the directories
// searched for it, and the prefix of the environment variables that override it.
type ConfigurationLoaderSettings struct {
	FileName          string
	Format            string
	EnvironmentPrefix string
	SearchDirectories []string
}

// ConfigurationRequest describes a single load.
type ConfigurationRequest struct {
	// ExplicitFilePath disables directory search when set.
	ExplicitFilePath string
	Defaults         map[string]any
}

// LoadedConfiguration surfaces metadata about the resolved configuration.
type LoadedConfiguration struct {
	ConfigFileUsed string
	SettingKeys    []string
}

type embeddedDocument struct {
	content []byte
	format  string
}

// ConfigurationLoader decodes layered configuration. Layers apply lowest precedence first:
// request defaults, the built-in document, the configuration file, then environment variables.
type ConfigurationLoader struct {
	settings ConfigurationLoaderSettings
	builtIn  *embeddedDocument
}

type configurationLayer func(viperInstance *viper.Viper, request ConfigurationRequest) error

// NewConfigurationLoader copies settings so later mutation by the caller has no effect.
func NewConfigurationLoader(settings ConfigurationLoaderSettings) *ConfigurationLoader {
	settings.SearchDirectories = append([]string(nil), settings.SearchDirectories...)
	return &ConfigurationLoader{settings: settings}
}

// WithBuiltInDocument returns a loader that merges content beneath every file and environment value.
// An empty format falls back to the loader's format.
func (loader *ConfigurationLoader) WithBuiltInDocument(content []byte, format string) *ConfigurationLoader {
	derived := &ConfigurationLoader{settings: loader.settings}
	if len(content) > 0 {
		derived.builtIn = &embeddedDocument{content: bytes.Clone(content), format: strings.TrimSpace(format)}
	}
	return derived
}

// Load decodes the layered configuration into target.
func (loader *ConfigurationLoader) Load(request ConfigurationRequest, target any) (LoadedConfiguration, error) {
	viperInstance := viper.New()
	viperInstance.SetConfigName(loader.settings.FileName)
	viperInstance.SetConfigType(loader.settings.Format)

	layers := []configurationLayer{
		loader.applyDefaults,
		loader.applyBuiltInDocument,
		loader.applyConfigurationFile,
		loader.applyEnvironment,
	}
	for _, layer := range layers {
		if layerError := layer(viperInstance, request); layerError != nil {
			return LoadedConfiguration{}, layerError
		}
	}

	if decodeError := viperInstance.Unmarshal(target); decodeError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationDecodeErrorTemplateConstant, decodeError)
	}

	return LoadedConfiguration{
		ConfigFileUsed: viperInstance.ConfigFileUsed(),
		SettingKeys:    viperInstance.AllKeys(),
	}, nil
}

func (loader *ConfigurationLoader) applyDefaults(viperInstance *viper.Viper, request ConfigurationRequest) error {
	for settingKey, settingValue := range request.Defaults {
		viperInstance.SetDefault(settingKey, settingValue)
	}
	return nil
}

func (loader *ConfigurationLoader) applyBuiltInDocument(viperInstance *viper.Viper, _ ConfigurationRequest) error {
	if loader.builtIn == nil {
		return nil
	}

	if len(loader.builtIn.format) > 0 {
		viperInstance.SetConfigType(loader.builtIn.format)
		defer viperInstance.SetConfigType(loader.settings.Format)
	}
	if mergeError := viperInstance.MergeConfig(bytes.NewReader(loader.builtIn.content)); mergeError != nil {
		return fmt.Errorf(embeddedDocumentErrorTemplateConstant, mergeError)
	}
	return nil
}

// applyConfigurationFile merges the explicit file, or the first match in the search directories.
// A missing discovered file is not an error; a missing explicit file is.
func (loader *ConfigurationLoader) applyConfigurationFile(viperInstance *viper.Viper, request ConfigurationRequest) error {
	explicitFilePath := strings.TrimSpace(request.ExplicitFilePath)
	if len(explicitFilePath) > 0 {
		viperInstance.SetConfigFile(explicitFilePath)
		if format, recognized := configurationFormatsByExtension[strings.ToLower(filepath.Ext(explicitFilePath))]; recognized {
			viperInstance.SetConfigType(format)
		}
	} else {
		for _, searchDirectory := range loader.settings.SearchDirectories {
			if len(strings.TrimSpace(searchDirectory)) == 0 {
				continue
			}
			viperInstance.AddConfigPath(searchDirectory)
		}
	}

	mergeError := viperInstance.MergeInConfig()
	if mergeError == nil {
		return nil
	}
	var notFoundError viper.ConfigFileNotFoundError
	if errors.As(mergeError, &notFoundError) {
		return nil
	}
	return fmt.Errorf(configurationFileErrorTemplateConstant, mergeError)
}

func (loader *ConfigurationLoader) applyEnvironment(viperInstance *viper.Viper, _ ConfigurationRequest) error {
	viperInstance.SetEnvPrefix(loader.settings.EnvironmentPrefix)
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(environmentKeyNestingSeparatorConstant, environmentKeyWordSeparatorConstant))
	viperInstance.AutomaticEnv()
	return nil
}
