package audits

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/auditflow-pro/auditflow-pro/internal/audit"
	"github.com/auditflow-pro/auditflow-pro/internal/session"
	"github.com/auditflow-pro/auditflow-pro/internal/store"
	"github.com/auditflow-pro/auditflow-pro/internal/ui"
	"github.com/auditflow-pro/auditflow-pro/internal/utils"
	"github.com/auditflow-pro/auditflow-pro/internal/utils/flags"
)

const (
	serviceOpenErrorTemplateConstant  = "unable to open audit session: %w"
	serviceCloseErrorTemplateConstant = "unable to close audit session: %w"
	serviceCloseFailedMessageConstant = "audit session did not close cleanly"
	commandStartingMessageConstant    = "audit command starting"
	logFieldCommandConstant           = "command"
	logFieldErrorConstant             = "error"
	logFieldConfigFileConstant        = "config_file"
	logFieldStoreLocationConstant     = "store_location"
)

// CommandBuilder assembles the audit subcommands attached to the root command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        func() CommandConfiguration
	SessionConfigurationProvider func() session.Configuration
	ServiceFactory               ServiceFactory
	PrompterFactory              PrompterFactory
}

// Build constructs every audit subcommand.
func (builder *CommandBuilder) Build() ([]*cobra.Command, error) {
	constructors := []func() *cobra.Command{
		builder.buildNewCommand,
		builder.buildListCommand,
		builder.buildSelectCommand,
		builder.buildDeleteCommand,
		builder.buildUpdateCommand,
		builder.buildShowCommand,
		builder.buildAnswerCommand,
		builder.buildNextCommand,
		builder.buildPreviousCommand,
		builder.buildSectionCommand,
		builder.buildActionsCommand,
		builder.buildToggleActionCommand,
		builder.buildActionUpdateCommand,
		builder.buildAdvanceCommand,
		builder.buildReopenCommand,
		builder.buildApplyCommand,
	}

	commands := make([]*cobra.Command, 0, len(constructors))
	for _, construct := range constructors {
		commands = append(commands, construct())
	}
	return commands, nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveSessionConfiguration() session.Configuration {
	if builder.SessionConfigurationProvider == nil {
		return session.DefaultConfiguration()
	}
	return builder.SessionConfigurationProvider()
}

func (builder *CommandBuilder) resolveRenderer(command *cobra.Command, output *flags.OutputFlagValues) (*ui.Renderer, error) {
	requestedFormat := builder.resolveConfiguration().Output
	if output != nil && len(output.Format) > 0 {
		requestedFormat = output.Format
	}
	format, formatError := ui.ParseOutputFormat(requestedFormat)
	if formatError != nil {
		return nil, formatError
	}
	return ui.NewRenderer(utils.NewFlushingWriter(command.OutOrStdout()), format), nil
}

// withService opens a session for the command, runs action, and always closes the session.
func (builder *CommandBuilder) withService(command *cobra.Command, output *flags.OutputFlagValues, action func(service *session.Service, renderer *ui.Renderer) error) (resultError error) {
	renderer, rendererError := builder.resolveRenderer(command, output)
	if rendererError != nil {
		return rendererError
	}

	logger := resolveLogger(builder.LoggerProvider)
	contextAccessor := utils.NewCommandContextAccessor()
	configurationFilePath, _ := contextAccessor.ConfigurationFilePath(commandContext(command))
	storeLocation, _ := contextAccessor.StoreLocation(commandContext(command))
	logger.Debug(commandStartingMessageConstant,
		zap.String(logFieldCommandConstant, command.Name()),
		zap.String(logFieldConfigFileConstant, configurationFilePath),
		zap.String(logFieldStoreLocationConstant, storeLocation),
	)

	factory := resolveServiceFactory(builder.ServiceFactory)
	service, serviceError := factory(commandContext(command), builder.resolveSessionConfiguration(), session.Dependencies{
		Logger:   logger,
		Observer: ui.NewConsoleOperationEventLogger(logger),
	})
	if serviceError != nil {
		return fmt.Errorf(serviceOpenErrorTemplateConstant, serviceError)
	}
	defer func() {
		closeError := service.Close()
		if closeError == nil {
			return
		}
		if resultError == nil {
			resultError = fmt.Errorf(serviceCloseErrorTemplateConstant, closeError)
			return
		}
		logger.Warn(serviceCloseFailedMessageConstant, zap.String(logFieldCommandConstant, command.Name()), zap.String(logFieldErrorConstant, closeError.Error()))
	}()

	return action(service, renderer)
}

// executeOperations applies operations, saves, and renders the touched record.
func (builder *CommandBuilder) executeOperations(command *cobra.Command, output *flags.OutputFlagValues, operations ...session.Operation) error {
	return builder.withService(command, output, func(service *session.Service, renderer *ui.Renderer) error {
		result, executeError := service.Execute(commandContext(command), operations...)
		if executeError != nil {
			return executeError
		}
		return renderResult(service, renderer, result)
	})
}

// viewRecord renders a read-only projection of the selected record without saving.
func (builder *CommandBuilder) viewRecord(command *cobra.Command, output *flags.OutputFlagValues, selector string, render func(service *session.Service, renderer *ui.Renderer, state store.State, record audit.Record) error) error {
	return builder.withService(command, output, func(service *session.Service, renderer *ui.Renderer) error {
		state, viewError := service.View(commandContext(command))
		if viewError != nil {
			return viewError
		}
		record, lookupError := state.Lookup(selector)
		if lookupError != nil {
			return lookupError
		}
		return render(service, renderer, state, *record)
	})
}

func renderResult(service *session.Service, renderer *ui.Renderer, result session.Result) error {
	if result.Record == nil {
		return renderer.RenderList(service.Projections().List(result.State.Audits, result.State.ActiveAuditID))
	}
	record := *result.Record
	return renderer.RenderSummary(service.Projections().Summarize(record, record.ID == result.State.ActiveAuditID))
}

func bindOutputFlag(command *cobra.Command) *flags.OutputFlagValues {
	return flags.BindOutputFlag(command, flags.OutputFlagDefinition{
		DefaultChoice: string(ui.OutputFormatText),
		Choices:       ui.OutputFormatChoices,
		Enabled:       true,
	})
}

func bindAuditFlag(command *cobra.Command) *flags.AuditFlagValues {
	return flags.BindAuditFlag(command, flags.AuditFlagValues{}, flags.AuditFlagDefinition{Enabled: true})
}
