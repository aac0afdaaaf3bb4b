package checklist

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	templatePathRequiredMessageConstant     = "checklist template path must be provided"
	templateReadErrorTemplateConstant       = "failed to read checklist template: %w"
	templateParseErrorTemplateConstant      = "failed to parse checklist template: %w"
	templateValidationErrorTemplateConstant = "invalid checklist template: %w"
)

//go:embed default_template.yaml
var embeddedDefaultTemplateContent []byte

type templateDocument struct {
	Version  string    `yaml:"version"`
	Sections []Section `yaml:"sections"`
}

// Parse decodes a YAML checklist document and validates it.
func Parse(content []byte) (*Template, error) {
	var document templateDocument
	if unmarshalError := yaml.Unmarshal(content, &document); unmarshalError != nil {
		return nil, fmt.Errorf(templateParseErrorTemplateConstant, unmarshalError)
	}

	template, validationError := New(document.Version, document.Sections)
	if validationError != nil {
		return nil, fmt.Errorf(templateValidationErrorTemplateConstant, validationError)
	}
	return template, nil
}

// LoadFile reads and parses a checklist template from disk.
func LoadFile(filePath string) (*Template, error) {
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return nil, errors.New(templatePathRequiredMessageConstant)
	}

	contentBytes, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		return nil, fmt.Errorf(templateReadErrorTemplateConstant, readError)
	}
	return Parse(contentBytes)
}

// Default returns the embedded fire safety checklist.
func Default() (*Template, error) {
	return Parse(embeddedDefaultTemplateContent)
}

// Load returns the template at filePath, or the embedded default when filePath is blank.
func Load(filePath string) (*Template, error) {
	if len(strings.TrimSpace(filePath)) == 0 {
		return Default()
	}
	return LoadFile(filePath)
}
