package audits

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/auditflow-pro/auditflow-pro/internal/session"
	"github.com/auditflow-pro/auditflow-pro/internal/ui"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// PrompterFactory creates confirmation prompters scoped to a Cobra command.
type PrompterFactory func(*cobra.Command) ui.ConfirmationPrompter

// ServiceFactory opens a session service for one command invocation.
type ServiceFactory func(executionContext context.Context, configuration session.Configuration, dependencies session.Dependencies) (*session.Service, error)

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func resolvePrompter(factory PrompterFactory, command *cobra.Command) ui.ConfirmationPrompter {
	if factory != nil {
		prompter := factory(command)
		if prompter != nil {
			return prompter
		}
	}
	return ui.NewIOConfirmationPrompter(command.InOrStdin(), command.OutOrStdout())
}

func resolveServiceFactory(factory ServiceFactory) ServiceFactory {
	if factory != nil {
		return factory
	}
	return session.NewServiceFromConfiguration
}

func displayCommandHelp(command *cobra.Command) error {
	if command == nil {
		return nil
	}
	return command.Help()
}

func commandContext(command *cobra.Command) context.Context {
	if command == nil || command.Context() == nil {
		return context.Background()
	}
	return command.Context()
}
