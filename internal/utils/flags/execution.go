// Package flags provides helpers for binding standardized execution flags to Cobra commands.
package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ExecutionDefaults describes default flag values shared across commands.
type ExecutionDefaults struct {
	DryRun    bool
	AssumeYes bool
}

// ExecutionFlagDefinition captures a single flag's configuration.
type ExecutionFlagDefinition struct {
	Name      string
	Usage     string
	Shorthand string
	Enabled   bool
}

// ExecutionFlagDefinitions groups execution flag definitions.
type ExecutionFlagDefinitions struct {
	DryRun    ExecutionFlagDefinition
	AssumeYes ExecutionFlagDefinition
}

// ExecutionFlagValues stores parsed execution flag values.
type ExecutionFlagValues struct {
	DryRun    bool
	AssumeYes bool
}

// BindExecutionFlags attaches yes/no toggle execution flags to the provided command.
func BindExecutionFlags(command *cobra.Command, defaults ExecutionDefaults, definitions ExecutionFlagDefinitions) *ExecutionFlagValues {
	values := ExecutionFlagValues{DryRun: defaults.DryRun, AssumeYes: defaults.AssumeYes}
	if command == nil {
		return &values
	}

	flagSet := command.Flags()
	bindToggleFlag(flagSet, &values.DryRun, definitions.DryRun, defaults.DryRun)
	bindToggleFlag(flagSet, &values.AssumeYes, definitions.AssumeYes, defaults.AssumeYes)
	return &values
}

// DryRunDefinition returns the standard dry-run flag definition.
func DryRunDefinition() ExecutionFlagDefinition {
	return ExecutionFlagDefinition{Name: DryRunFlagName, Usage: DryRunFlagUsage, Enabled: true}
}

// AssumeYesDefinition returns the standard assume-yes flag definition.
func AssumeYesDefinition() ExecutionFlagDefinition {
	return ExecutionFlagDefinition{Name: AssumeYesFlagName, Usage: AssumeYesFlagUsage, Shorthand: AssumeYesFlagShorthand, Enabled: true}
}

func bindToggleFlag(flagSet *pflag.FlagSet, target *bool, definition ExecutionFlagDefinition, defaultValue bool) {
	if flagSet == nil || !definition.Enabled || len(definition.Name) == 0 {
		return
	}
	if flagSet.Lookup(definition.Name) != nil {
		return
	}
	AddToggleFlag(flagSet, target, definition.Name, definition.Shorthand, defaultValue, definition.Usage)
}
