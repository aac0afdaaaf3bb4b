package audits

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/auditflow-pro/auditflow-pro/internal/audit"
	"github.com/auditflow-pro/auditflow-pro/internal/session"
	"github.com/auditflow-pro/auditflow-pro/internal/store"
	"github.com/auditflow-pro/auditflow-pro/internal/ui"
	"github.com/auditflow-pro/auditflow-pro/internal/utils"
	"github.com/auditflow-pro/auditflow-pro/internal/utils/flags"
)

const (
	newCommandUseConstant              = "new [name]"
	newCommandShortDescriptionConstant = "Create an audit and make it active"
	newCommandLongDescriptionConstant  = "new registers a blank audit against the configured checklist and selects it."

	listCommandUseConstant              = "list"
	listCommandShortDescriptionConstant = "List audits with progress and exposure"

	selectCommandUseConstant              = "select <audit>"
	selectCommandShortDescriptionConstant = "Make an audit active"
	selectCommandLongDescriptionConstant  = "select activates an audit by id, unique id prefix, or case-insensitive name."

	deleteCommandUseConstant              = "delete [audit]"
	deleteCommandShortDescriptionConstant = "Delete an audit"
	deleteCommandLongDescriptionConstant  = "delete removes an audit after confirmation. Deleting the active audit activates the most recent remaining one."

	updateCommandUseConstant              = "update"
	updateCommandShortDescriptionConstant = "Edit the name, client, date, or likelihood of an audit"

	showCommandUseConstant              = "show"
	showCommandShortDescriptionConstant = "Show progress, cursor, and exposure of an audit"

	nameFlagNameConstant        = "name"
	nameFlagUsageConstant       = "Audit name"
	clientFlagNameConstant      = "client"
	clientFlagUsageConstant     = "Client or site name"
	dateFlagNameConstant        = "date"
	dateFlagUsageConstant       = "Audit date"
	likelihoodFlagNameConstant  = "likelihood"
	likelihoodFlagUsageConstant = "Likelihood multiplier used for exposure scoring"

	deletePromptTemplateConstant            = "Delete audit %s (%s)? [y/N] "
	deleteCancelledMessageConstant          = "Deletion cancelled.\n"
	deleteConfirmationErrorTemplateConstant = "unable to confirm deletion: %w"
	updateFieldsRequiredMessageConstant     = "update requires at least one of --name, --client, --date, or --likelihood"
)

func (builder *CommandBuilder) buildNewCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   newCommandUseConstant,
		Short: newCommandShortDescriptionConstant,
		Long:  newCommandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
	}
	output := bindOutputFlag(command)
	bindDetailFlags(command)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		details := readDetailFlags(command)
		if len(arguments) > 0 && !command.Flags().Changed(nameFlagNameConstant) {
			name := arguments[0]
			details.Name = &name
		}
		return builder.executeOperations(command, output, session.CreateAudit(details))
	}
	return command
}

func (builder *CommandBuilder) buildListCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   listCommandUseConstant,
		Short: listCommandShortDescriptionConstant,
		Args:  cobra.NoArgs,
	}
	output := bindOutputFlag(command)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.withService(command, output, func(service *session.Service, renderer *ui.Renderer) error {
			state, viewError := service.View(commandContext(command))
			if viewError != nil {
				return viewError
			}
			return renderer.RenderList(service.Projections().List(state.Audits, state.ActiveAuditID))
		})
	}
	return command
}

func (builder *CommandBuilder) buildSelectCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   selectCommandUseConstant,
		Short: selectCommandShortDescriptionConstant,
		Long:  selectCommandLongDescriptionConstant,
		Args:  cobra.ExactArgs(1),
	}
	output := bindOutputFlag(command)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.executeOperations(command, output, session.SelectAudit(arguments[0]))
	}
	return command
}

func (builder *CommandBuilder) buildDeleteCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   deleteCommandUseConstant,
		Short: deleteCommandShortDescriptionConstant,
		Long:  deleteCommandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(1),
	}
	output := bindOutputFlag(command)
	auditFlag := bindAuditFlag(command)
	execution := flags.BindExecutionFlags(command, flags.ExecutionDefaults{}, flags.ExecutionFlagDefinitions{AssumeYes: flags.AssumeYesDefinition()})

	command.RunE = func(command *cobra.Command, arguments []string) error {
		selector := auditFlag.Selector
		if len(arguments) > 0 {
			selector = arguments[0]
		}
		assumeYes := builder.resolveConfiguration().AssumeYes
		if command.Flags().Changed(flags.AssumeYesFlagName) {
			assumeYes = execution.AssumeYes
		}

		return builder.withService(command, output, func(service *session.Service, renderer *ui.Renderer) error {
			state, viewError := service.View(commandContext(command))
			if viewError != nil {
				return viewError
			}
			record, lookupError := state.Lookup(selector)
			if lookupError != nil {
				return lookupError
			}

			if !assumeYes {
				prompter := resolvePrompter(builder.PrompterFactory, command)
				confirmed, confirmError := prompter.Confirm(fmt.Sprintf(deletePromptTemplateConstant, record.Name, record.ID))
				if confirmError != nil {
					return fmt.Errorf(deleteConfirmationErrorTemplateConstant, confirmError)
				}
				if !confirmed {
					_, writeError := fmt.Fprint(utils.NewFlushingWriter(command.OutOrStdout()), deleteCancelledMessageConstant)
					return writeError
				}
			}

			result, executeError := service.Execute(commandContext(command), session.DeleteAudit(record.ID))
			if executeError != nil {
				return executeError
			}
			return renderer.RenderList(service.Projections().List(result.State.Audits, result.State.ActiveAuditID))
		})
	}
	return command
}

func (builder *CommandBuilder) buildUpdateCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   updateCommandUseConstant,
		Short: updateCommandShortDescriptionConstant,
		Args:  cobra.NoArgs,
	}
	output := bindOutputFlag(command)
	auditFlag := bindAuditFlag(command)
	bindDetailFlags(command)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		details := readDetailFlags(command)
		if details == (audit.Details{}) {
			if helpError := displayCommandHelp(command); helpError != nil {
				return helpError
			}
			return errors.New(updateFieldsRequiredMessageConstant)
		}
		return builder.executeOperations(command, output, session.UpdateAudit(auditFlag.Selector, details))
	}
	return command
}

func (builder *CommandBuilder) buildShowCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   showCommandUseConstant,
		Short: showCommandShortDescriptionConstant,
		Args:  cobra.NoArgs,
	}
	output := bindOutputFlag(command)
	auditFlag := bindAuditFlag(command)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.viewRecord(command, output, auditFlag.Selector, func(service *session.Service, renderer *ui.Renderer, state store.State, record audit.Record) error {
			return renderer.RenderSummary(service.Projections().Summarize(record, record.ID == state.ActiveAuditID))
		})
	}
	return command
}

func bindDetailFlags(command *cobra.Command) {
	flagSet := command.Flags()
	flagSet.String(nameFlagNameConstant, "", nameFlagUsageConstant)
	flagSet.String(clientFlagNameConstant, "", clientFlagUsageConstant)
	flagSet.String(dateFlagNameConstant, "", dateFlagUsageConstant)
	flagSet.Int(likelihoodFlagNameConstant, audit.DefaultLikelihood, likelihoodFlagUsageConstant)
}

// readDetailFlags returns only the fields whose flags were set explicitly.
func readDetailFlags(command *cobra.Command) audit.Details {
	details := audit.Details{}
	flagSet := command.Flags()
	for _, field := range []struct {
		flagName string
		target   **string
	}{
		{flagName: nameFlagNameConstant, target: &details.Name},
		{flagName: clientFlagNameConstant, target: &details.Client},
		{flagName: dateFlagNameConstant, target: &details.Date},
	} {
		if !flagSet.Changed(field.flagName) {
			continue
		}
		value, _ := flagSet.GetString(field.flagName)
		trimmedValue := strings.TrimSpace(value)
		*field.target = &trimmedValue
	}
	if flagSet.Changed(likelihoodFlagNameConstant) {
		likelihood, _ := flagSet.GetInt(likelihoodFlagNameConstant)
		details.Likelihood = &likelihood
	}
	return details
}
