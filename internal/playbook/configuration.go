package playbook

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	configurationLoadErrorTemplateConstant            = "failed to load playbook: %w"
	configurationParseErrorTemplateConstant           = "failed to parse playbook: %w"
	configurationPathRequiredMessageConstant          = "playbook path must be provided"
	configurationEmptyStepsMessageConstant            = "playbook must define at least one step"
	configurationOperationMissingTemplateConstant     = "playbook step %d missing operation name"
	configurationToolNameRequiredMessageConstant      = "playbook tool names must be non-empty"
	configurationDuplicateToolNameTemplateConstant    = "playbook defines duplicate tool name %q"
	configurationToolOperationMissingTemplateConstant = "playbook tool %s missing operation name"
	configurationUnknownToolTemplateConstant          = "playbook step %d references unknown tool %q"
	optionToolReferenceKeyConstant                    = "tool"
)

// OperationType identifies supported playbook operations.
type OperationType string

// Supported playbook operations.
const (
	OperationTypeCreate       OperationType = "create"
	OperationTypeSelect       OperationType = "select"
	OperationTypeDelete       OperationType = "delete"
	OperationTypeUpdate       OperationType = "update"
	OperationTypeAnswer       OperationType = "answer"
	OperationTypeNext         OperationType = "next"
	OperationTypePrevious     OperationType = "prev"
	OperationTypeSection      OperationType = "section"
	OperationTypeToggleAction OperationType = "toggle-action"
	OperationTypeUpdateAction OperationType = "update-action"
	OperationTypeAdvance      OperationType = "advance"
	OperationTypeReopen       OperationType = "reopen"
)

// Configuration describes ordered playbook steps and reusable tool definitions.
type Configuration struct {
	Tools []NamedToolConfiguration `yaml:"tools"`
	Steps []StepConfiguration      `yaml:"steps"`
}

// NamedToolConfiguration is a reusable step definition referenced from steps by name.
type NamedToolConfiguration struct {
	Name              string `yaml:"name"`
	ToolConfiguration `yaml:",inline"`
}

// ToolConfiguration holds the operation and default options of a tool.
type ToolConfiguration struct {
	Operation OperationType  `yaml:"operation"`
	Options   map[string]any `yaml:"with"`
}

// StepConfiguration associates an operation with declarative options.
type StepConfiguration struct {
	Operation OperationType  `yaml:"operation"`
	Options   map[string]any `yaml:"with"`
}

// LoadConfiguration reads a playbook from disk.
func LoadConfiguration(filePath string) (Configuration, error) {
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return Configuration{}, errors.New(configurationPathRequiredMessageConstant)
	}

	contentBytes, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		return Configuration{}, fmt.Errorf(configurationLoadErrorTemplateConstant, readError)
	}
	return ParseConfiguration(contentBytes)
}

// ParseConfiguration decodes a playbook document. The steps may sit at the top level or
// under a `playbook:` key. Tool references are expanded so every returned step carries
// its final operation and options.
func ParseConfiguration(content []byte) (Configuration, error) {
	var document struct {
		Configuration `yaml:",inline"`
		Playbook      *Configuration `yaml:"playbook"`
	}
	if unmarshalError := yaml.Unmarshal(content, &document); unmarshalError != nil {
		return Configuration{}, fmt.Errorf(configurationParseErrorTemplateConstant, unmarshalError)
	}

	configuration := document.Configuration
	if len(configuration.Steps) == 0 && len(configuration.Tools) == 0 && document.Playbook != nil {
		configuration = *document.Playbook
	}

	toolLookup, toolsError := buildToolLookup(configuration.Tools)
	if toolsError != nil {
		return Configuration{}, toolsError
	}

	if len(configuration.Steps) == 0 {
		return Configuration{}, errors.New(configurationEmptyStepsMessageConstant)
	}

	for stepIndex := range configuration.Steps {
		resolvedStep, resolveError := resolveStep(stepIndex, configuration.Steps[stepIndex], toolLookup)
		if resolveError != nil {
			return Configuration{}, resolveError
		}
		configuration.Steps[stepIndex] = resolvedStep
	}

	return configuration, nil
}

func buildToolLookup(tools []NamedToolConfiguration) (map[string]ToolConfiguration, error) {
	lookup := make(map[string]ToolConfiguration, len(tools))
	for toolIndex := range tools {
		trimmedName := strings.TrimSpace(tools[toolIndex].Name)
		if len(trimmedName) == 0 {
			return nil, errors.New(configurationToolNameRequiredMessageConstant)
		}
		if _, exists := lookup[trimmedName]; exists {
			return nil, fmt.Errorf(configurationDuplicateToolNameTemplateConstant, trimmedName)
		}
		if len(strings.TrimSpace(string(tools[toolIndex].Operation))) == 0 {
			return nil, fmt.Errorf(configurationToolOperationMissingTemplateConstant, trimmedName)
		}
		lookup[trimmedName] = ToolConfiguration{
			Operation: OperationType(strings.TrimSpace(string(tools[toolIndex].Operation))),
			Options:   tools[toolIndex].Options,
		}
	}
	return lookup, nil
}

// resolveStep merges a referenced tool into the step. Step options override tool options.
func resolveStep(stepIndex int, step StepConfiguration, toolLookup map[string]ToolConfiguration) (StepConfiguration, error) {
	resolved := StepConfiguration{
		Operation: OperationType(strings.TrimSpace(string(step.Operation))),
		Options:   map[string]any{},
	}

	toolName, referencesTool := toolReference(step.Options)
	if referencesTool {
		tool, exists := toolLookup[toolName]
		if !exists {
			return StepConfiguration{}, fmt.Errorf(configurationUnknownToolTemplateConstant, stepIndex+1, toolName)
		}
		if len(resolved.Operation) == 0 {
			resolved.Operation = tool.Operation
		}
		for optionKey, optionValue := range tool.Options {
			resolved.Options[optionKey] = optionValue
		}
	}

	for optionKey, optionValue := range step.Options {
		if strings.EqualFold(strings.TrimSpace(optionKey), optionToolReferenceKeyConstant) {
			continue
		}
		resolved.Options[optionKey] = optionValue
	}

	if len(resolved.Operation) == 0 {
		return StepConfiguration{}, fmt.Errorf(configurationOperationMissingTemplateConstant, stepIndex+1)
	}
	return resolved, nil
}

func toolReference(options map[string]any) (string, bool) {
	for rawKey, rawValue := range options {
		if !strings.EqualFold(strings.TrimSpace(rawKey), optionToolReferenceKeyConstant) {
			continue
		}
		name, isString := rawValue.(string)
		return strings.TrimSpace(name), isString && len(strings.TrimSpace(name)) > 0
	}
	return "", false
}
