package audits

import (
	"github.com/spf13/cobra"

	"github.com/auditflow-pro/auditflow-pro/internal/session"
)

const (
	advanceCommandUseConstant              = "advance"
	advanceCommandShortDescriptionConstant = "Move an audit to its next workflow status"
	advanceCommandLongDescriptionConstant  = "advance moves IN_PROGRESS to READY_REVIEW, READY_REVIEW to COMPLETE when no actions are open, and COMPLETE back to IN_PROGRESS."
	reopenCommandUseConstant               = "reopen"
	reopenCommandShortDescriptionConstant  = "Return a complete audit to IN_PROGRESS"
)

func (builder *CommandBuilder) buildAdvanceCommand() *cobra.Command {
	command := builder.buildScopedCommand(advanceCommandUseConstant, advanceCommandShortDescriptionConstant, session.Advance)
	command.Long = advanceCommandLongDescriptionConstant
	return command
}

func (builder *CommandBuilder) buildReopenCommand() *cobra.Command {
	return builder.buildScopedCommand(reopenCommandUseConstant, reopenCommandShortDescriptionConstant, session.Reopen)
}
