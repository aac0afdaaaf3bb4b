package audits

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/auditflow-pro/auditflow-pro/internal/playbook"
	"github.com/auditflow-pro/auditflow-pro/internal/session"
	"github.com/auditflow-pro/auditflow-pro/internal/ui"
	"github.com/auditflow-pro/auditflow-pro/internal/utils/flags"
)

const (
	applyCommandUseConstant              = "apply <playbook>"
	applyCommandShortDescriptionConstant = "Run a playbook of audit operations"
	applyCommandLongDescriptionConstant  = "apply runs the steps of a YAML playbook in order. The first failing step aborts the playbook and nothing is saved."

	playbookPathRequiredMessageConstant = "playbook path required; provide it as a positional argument"
	loadPlaybookErrorTemplateConstant   = "unable to load playbook: %w"
	buildPlaybookErrorTemplateConstant  = "unable to build playbook operations: %w"
	playbookAppliedMessageConstant      = "playbook applied"
	logFieldPlaybookPathConstant        = "playbook"
	logFieldStepCountConstant           = "steps"
	logFieldDryRunConstant              = "dry_run"
)

func (builder *CommandBuilder) buildApplyCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   applyCommandUseConstant,
		Short: applyCommandShortDescriptionConstant,
		Long:  applyCommandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
	}
	output := bindOutputFlag(command)
	execution := flags.BindExecutionFlags(command, flags.ExecutionDefaults{}, flags.ExecutionFlagDefinitions{DryRun: flags.DryRunDefinition()})

	command.RunE = func(command *cobra.Command, arguments []string) error {
		playbookPath := ""
		if len(arguments) > 0 {
			playbookPath = strings.TrimSpace(arguments[0])
		}
		if len(playbookPath) == 0 {
			if helpError := displayCommandHelp(command); helpError != nil {
				return helpError
			}
			return errors.New(playbookPathRequiredMessageConstant)
		}

		configuration, configurationError := playbook.LoadConfiguration(playbookPath)
		if configurationError != nil {
			return fmt.Errorf(loadPlaybookErrorTemplateConstant, configurationError)
		}
		operations, operationsError := playbook.BuildOperations(configuration)
		if operationsError != nil {
			return fmt.Errorf(buildPlaybookErrorTemplateConstant, operationsError)
		}

		return builder.withService(command, output, func(service *session.Service, renderer *ui.Renderer) error {
			run := service.Execute
			if execution.DryRun {
				run = service.Preview
			}
			result, runError := run(commandContext(command), operations...)
			if runError != nil {
				return runError
			}

			resolveLogger(builder.LoggerProvider).Info(playbookAppliedMessageConstant,
				zap.String(logFieldPlaybookPathConstant, playbookPath),
				zap.Int(logFieldStepCountConstant, len(operations)),
				zap.Bool(logFieldDryRunConstant, execution.DryRun),
			)
			return renderResult(service, renderer, result)
		})
	}
	return command
}
