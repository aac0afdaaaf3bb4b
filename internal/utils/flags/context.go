package flags

import "github.com/spf13/cobra"

const (
	// AuditFlagName exposes the shared audit selector flag name.
	AuditFlagName = "audit"
	// AuditFlagShorthand provides the shorthand for the audit selector flag.
	AuditFlagShorthand = "a"
	// AuditFlagUsage describes the shared audit selector flag purpose.
	AuditFlagUsage = "Audit to target by id, id prefix, or name (defaults to the active audit)"
	// OutputFlagName exposes the shared output format flag name.
	OutputFlagName = "output"
	// OutputFlagShorthand provides the shorthand for the output format flag.
	OutputFlagShorthand = "o"
	// OutputFlagDescription describes the shared output format flag purpose.
	OutputFlagDescription = "Output format"
	// DryRunFlagName exposes the shared dry-run flag name.
	DryRunFlagName = "dry-run"
	// DryRunFlagUsage describes the shared dry-run flag purpose.
	DryRunFlagUsage = "Preview operations without saving the audit store"
	// AssumeYesFlagName exposes the shared assume-yes flag name.
	AssumeYesFlagName = "yes"
	// AssumeYesFlagShorthand provides the shorthand for the assume-yes flag.
	AssumeYesFlagShorthand = "y"
	// AssumeYesFlagUsage describes the shared assume-yes flag purpose.
	AssumeYesFlagUsage = "Automatically confirm prompts"
)

// AuditFlagDefinition captures configuration for the audit selector flag.
type AuditFlagDefinition struct {
	Name    string
	Usage   string
	Enabled bool
}

// AuditFlagValues stores the audit selector flag value.
type AuditFlagValues struct {
	Selector string
}

// BindAuditFlag attaches the audit selector flag to the provided command.
func BindAuditFlag(command *cobra.Command, defaults AuditFlagValues, definition AuditFlagDefinition) *AuditFlagValues {
	values := defaults
	if command == nil || !definition.Enabled {
		return &values
	}

	flagName := definition.Name
	if len(flagName) == 0 {
		flagName = AuditFlagName
	}
	flagUsage := definition.Usage
	if len(flagUsage) == 0 {
		flagUsage = AuditFlagUsage
	}

	flagSet := command.Flags()
	if flagSet.Lookup(flagName) != nil {
		return &values
	}
	if flagName == AuditFlagName {
		flagSet.StringVarP(&values.Selector, flagName, AuditFlagShorthand, defaults.Selector, flagUsage)
		return &values
	}
	flagSet.StringVar(&values.Selector, flagName, defaults.Selector, flagUsage)
	return &values
}

// OutputFlagDefinition captures configuration for the output format flag.
type OutputFlagDefinition struct {
	DefaultChoice string
	Choices       []string
	Enabled       bool
}

// OutputFlagValues stores the output format flag value. Format is blank until the flag is set.
type OutputFlagValues struct {
	Format string
}

// BindOutputFlag attaches the output format flag. The usage lists the choices with the
// default highlighted; the flag itself defaults to blank so configuration can apply.
func BindOutputFlag(command *cobra.Command, definition OutputFlagDefinition) *OutputFlagValues {
	values := OutputFlagValues{}
	if command == nil || !definition.Enabled {
		return &values
	}

	flagSet := command.Flags()
	if flagSet.Lookup(OutputFlagName) == nil {
		usage := FormatChoiceUsage(definition.DefaultChoice, definition.Choices, OutputFlagDescription)
		flagSet.StringVarP(&values.Format, OutputFlagName, OutputFlagShorthand, "", usage)
	}
	return &values
}
