package session

import (
	"strings"

	"github.com/auditflow-pro/auditflow-pro/internal/audit"
)

// StoreBackend names a persistence implementation.
type StoreBackend string

// Supported store backends.
const (
	StoreBackendJSON   StoreBackend = "json"
	StoreBackendSQLite StoreBackend = "sqlite"
)

// StoreBackendChoices lists accepted store.backend values.
var StoreBackendChoices = []string{string(StoreBackendJSON), string(StoreBackendSQLite)}

const (
	storeConfigurationKeyConstant        = "store"
	checklistConfigurationKeyConstant    = "checklist"
	exposureConfigurationKeyConstant     = "exposure"
	storeBackendKeyConstant              = "backend"
	storePathKeyConstant                 = "path"
	checklistTemplatePathKeyConstant     = "template_path"
	exposureDefaultLikelihoodKeyConstant = "default_likelihood"
	configurationKeySeparatorConstant    = "."
	defaultJSONStorePathConstant         = "~/.auditflow/store.json"
	defaultSQLiteStorePathConstant       = "~/.auditflow/store.db"
)

// Configuration captures store, checklist, and exposure settings.
type Configuration struct {
	Store     StoreConfiguration     `mapstructure:"store"`
	Checklist ChecklistConfiguration `mapstructure:"checklist"`
	Exposure  ExposureConfiguration  `mapstructure:"exposure"`
}

// StoreConfiguration selects the persistence backend and its location.
type StoreConfiguration struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

// ChecklistConfiguration points at a custom checklist template; blank uses the embedded one.
type ChecklistConfiguration struct {
	TemplatePath string `mapstructure:"template_path"`
}

// ExposureConfiguration holds exposure scoring defaults.
type ExposureConfiguration struct {
	DefaultLikelihood int `mapstructure:"default_likelihood"`
}

// DefaultConfiguration returns baseline session settings.
func DefaultConfiguration() Configuration {
	return Configuration{
		Store: StoreConfiguration{
			Backend: string(StoreBackendJSON),
			Path:    "",
		},
		Checklist: ChecklistConfiguration{TemplatePath: ""},
		Exposure:  ExposureConfiguration{DefaultLikelihood: audit.DefaultLikelihood},
	}
}

// DefaultConfigurationValues produces Viper defaults for session settings.
func DefaultConfigurationValues() map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		configurationKey(storeConfigurationKeyConstant, storeBackendKeyConstant):                 defaults.Store.Backend,
		configurationKey(storeConfigurationKeyConstant, storePathKeyConstant):                    defaults.Store.Path,
		configurationKey(checklistConfigurationKeyConstant, checklistTemplatePathKeyConstant):    defaults.Checklist.TemplatePath,
		configurationKey(exposureConfigurationKeyConstant, exposureDefaultLikelihoodKeyConstant): defaults.Exposure.DefaultLikelihood,
	}
}

// Sanitize trims values and fills defaults. The store path defaults per backend.
func (configuration Configuration) Sanitize() Configuration {
	sanitized := configuration
	sanitized.Store.Backend = strings.ToLower(strings.TrimSpace(configuration.Store.Backend))
	if len(sanitized.Store.Backend) == 0 {
		sanitized.Store.Backend = string(StoreBackendJSON)
	}

	sanitized.Store.Path = strings.TrimSpace(configuration.Store.Path)
	if len(sanitized.Store.Path) == 0 {
		sanitized.Store.Path = defaultJSONStorePathConstant
		if StoreBackend(sanitized.Store.Backend) == StoreBackendSQLite {
			sanitized.Store.Path = defaultSQLiteStorePathConstant
		}
	}

	sanitized.Checklist.TemplatePath = strings.TrimSpace(configuration.Checklist.TemplatePath)
	if sanitized.Exposure.DefaultLikelihood < 1 {
		sanitized.Exposure.DefaultLikelihood = audit.DefaultLikelihood
	}
	return sanitized
}

func configurationKey(section string, key string) string {
	return section + configurationKeySeparatorConstant + key
}
