package audits

import (
	"github.com/spf13/cobra"

	"github.com/auditflow-pro/auditflow-pro/internal/audit"
	"github.com/auditflow-pro/auditflow-pro/internal/session"
)

const (
	answerCommandUseConstant              = "answer <yes|no|n/a|none>"
	answerCommandShortDescriptionConstant = "Answer a checklist question"
	answerCommandLongDescriptionConstant  = "answer records a response for the current question, or for the question chosen with --section and --question. A NO answer raises a remediation action."

	nextCommandUseConstant                  = "next"
	nextCommandShortDescriptionConstant     = "Move to the next question in the current section"
	previousCommandUseConstant              = "prev"
	previousCommandShortDescriptionConstant = "Move to the previous question in the current section"

	sectionCommandUseConstant              = "section <key>"
	sectionCommandShortDescriptionConstant = "Jump to the first question of a section"

	sectionFlagNameConstant   = "section"
	sectionFlagUsageConstant  = "Section key (defaults to the current section)"
	questionFlagNameConstant  = "question"
	questionFlagUsageConstant = "1-based question number (defaults to the current question)"
)

func (builder *CommandBuilder) buildAnswerCommand() *cobra.Command {
	command := &cobra.Command{
		Use:       answerCommandUseConstant,
		Short:     answerCommandShortDescriptionConstant,
		Long:      answerCommandLongDescriptionConstant,
		Args:      cobra.ExactArgs(1),
		ValidArgs: audit.AnswerChoices,
	}
	output := bindOutputFlag(command)
	auditFlag := bindAuditFlag(command)
	sectionKey := command.Flags().String(sectionFlagNameConstant, "", sectionFlagUsageConstant)
	questionNumber := command.Flags().Int(questionFlagNameConstant, 0, questionFlagUsageConstant)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		answer, answerError := audit.ParseAnswer(arguments[0])
		if answerError != nil {
			return answerError
		}
		reference := session.QuestionReference{SectionKey: *sectionKey, Number: *questionNumber}
		return builder.executeOperations(command, output, session.AnswerQuestion(auditFlag.Selector, reference, answer))
	}
	return command
}

func (builder *CommandBuilder) buildNextCommand() *cobra.Command {
	return builder.buildScopedCommand(nextCommandUseConstant, nextCommandShortDescriptionConstant, session.NextQuestion)
}

func (builder *CommandBuilder) buildPreviousCommand() *cobra.Command {
	return builder.buildScopedCommand(previousCommandUseConstant, previousCommandShortDescriptionConstant, session.PreviousQuestion)
}

func (builder *CommandBuilder) buildSectionCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   sectionCommandUseConstant,
		Short: sectionCommandShortDescriptionConstant,
		Args:  cobra.ExactArgs(1),
	}
	output := bindOutputFlag(command)
	auditFlag := bindAuditFlag(command)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.executeOperations(command, output, session.SelectSection(auditFlag.Selector, arguments[0]))
	}
	return command
}

// buildScopedCommand builds an argument-less command applying one operation to the selected audit.
func (builder *CommandBuilder) buildScopedCommand(use string, short string, operation func(selector string) session.Operation) *cobra.Command {
	command := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
	}
	output := bindOutputFlag(command)
	auditFlag := bindAuditFlag(command)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.executeOperations(command, output, operation(auditFlag.Selector))
	}
	return command
}
