package audits

import (
	"github.com/spf13/cobra"

	"github.com/auditflow-pro/auditflow-pro/internal/audit"
	"github.com/auditflow-pro/auditflow-pro/internal/report"
	"github.com/auditflow-pro/auditflow-pro/internal/session"
	"github.com/auditflow-pro/auditflow-pro/internal/store"
	"github.com/auditflow-pro/auditflow-pro/internal/ui"
	"github.com/auditflow-pro/auditflow-pro/internal/utils/flags"
)

const (
	actionsCommandUseConstant              = "actions"
	actionsCommandShortDescriptionConstant = "List remediation actions of an audit"

	toggleActionCommandUseConstant              = "toggle-action <action>"
	toggleActionCommandShortDescriptionConstant = "Close an open action or reopen a closed one"
	toggleActionCommandLongDescriptionConstant  = "toggle-action flips an action between OPEN and CLOSED. Actions are addressed by id or unique id prefix."

	actionUpdateCommandUseConstant              = "action-update <action>"
	actionUpdateCommandShortDescriptionConstant = "Set severity, rationale, or remediation of an action"

	openOnlyFlagNameConstant        = "open"
	openOnlyFlagUsageConstant       = "Only list open actions"
	severityFlagNameConstant        = "severity"
	severityFlagDescriptionConstant = "Action severity"
	rationaleFlagNameConstant       = "rationale"
	rationaleFlagUsageConstant      = "Why the finding matters"
	remediationFlagNameConstant     = "remediation"
	remediationFlagUsageConstant    = "What must be done to close the finding"
)

func (builder *CommandBuilder) buildActionsCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   actionsCommandUseConstant,
		Short: actionsCommandShortDescriptionConstant,
		Args:  cobra.NoArgs,
	}
	output := bindOutputFlag(command)
	auditFlag := bindAuditFlag(command)
	var openOnly bool
	flags.AddToggleFlag(command.Flags(), &openOnly, openOnlyFlagNameConstant, "", false, openOnlyFlagUsageConstant)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.viewRecord(command, output, auditFlag.Selector, func(service *session.Service, renderer *ui.Renderer, state store.State, record audit.Record) error {
			actionViews := service.Projections().Actions(record)
			if openOnly {
				actionViews = filterOpenActions(actionViews)
			}
			return renderer.RenderActions(actionViews)
		})
	}
	return command
}

func (builder *CommandBuilder) buildToggleActionCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   toggleActionCommandUseConstant,
		Short: toggleActionCommandShortDescriptionConstant,
		Long:  toggleActionCommandLongDescriptionConstant,
		Args:  cobra.ExactArgs(1),
	}
	output := bindOutputFlag(command)
	auditFlag := bindAuditFlag(command)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.executeOperations(command, output, session.ToggleAction(auditFlag.Selector, arguments[0]))
	}
	return command
}

func (builder *CommandBuilder) buildActionUpdateCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   actionUpdateCommandUseConstant,
		Short: actionUpdateCommandShortDescriptionConstant,
		Args:  cobra.ExactArgs(1),
	}
	output := bindOutputFlag(command)
	auditFlag := bindAuditFlag(command)
	flagSet := command.Flags()
	flagSet.String(severityFlagNameConstant, "", flags.FormatChoiceUsage("", audit.SeverityChoices, severityFlagDescriptionConstant))
	flagSet.String(rationaleFlagNameConstant, "", rationaleFlagUsageConstant)
	flagSet.String(remediationFlagNameConstant, "", remediationFlagUsageConstant)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		details := audit.ActionDetails{}
		if flagSet.Changed(severityFlagNameConstant) {
			rawSeverity, _ := flagSet.GetString(severityFlagNameConstant)
			severity, severityError := audit.ParseSeverity(rawSeverity)
			if severityError != nil {
				return severityError
			}
			details.Severity = &severity
		}
		if flagSet.Changed(rationaleFlagNameConstant) {
			rationale, _ := flagSet.GetString(rationaleFlagNameConstant)
			details.Rationale = &rationale
		}
		if flagSet.Changed(remediationFlagNameConstant) {
			remediation, _ := flagSet.GetString(remediationFlagNameConstant)
			details.Remediation = &remediation
		}
		return builder.executeOperations(command, output, session.UpdateAction(auditFlag.Selector, arguments[0], details))
	}
	return command
}

func filterOpenActions(actionViews []report.ActionView) []report.ActionView {
	filtered := make([]report.ActionView, 0, len(actionViews))
	for _, actionView := range actionViews {
		if actionView.Open() {
			filtered = append(filtered, actionView)
		}
	}
	return filtered
}
