package ui

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	operationStartedMessageTemplateConstant   = "Running %s"
	operationCompletedMessageTemplateConstant = "Completed %s"
	operationFailedMessageTemplateConstant    = "%s failed: %s"
	operationLabelTemplateConstant            = "%s%s"
	auditSuffixTemplateConstant               = " (audit %s)"
	unknownFailureMessageConstant             = "unknown error"
	emptyStringConstant                       = ""
)

// OperationEventFormatter builds human-readable messages for audit operation lifecycle events.
type OperationEventFormatter struct{}

// BuildStartedMessage formats the message describing an operation about to run.
func (formatter OperationEventFormatter) BuildStartedMessage(operation string, auditID string) string {
	return fmt.Sprintf(operationStartedMessageTemplateConstant, formatter.formatOperationLabel(operation, auditID))
}

// BuildSuccessMessage formats the message describing a completed operation.
func (formatter OperationEventFormatter) BuildSuccessMessage(operation string, auditID string) string {
	return fmt.Sprintf(operationCompletedMessageTemplateConstant, formatter.formatOperationLabel(operation, auditID))
}

// BuildFailureMessage formats the message describing a rejected operation.
func (formatter OperationEventFormatter) BuildFailureMessage(operation string, auditID string, failure error) string {
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	return fmt.Sprintf(operationFailedMessageTemplateConstant, formatter.formatOperationLabel(operation, auditID), failureMessage)
}

func (formatter OperationEventFormatter) formatOperationLabel(operation string, auditID string) string {
	trimmedAuditID := strings.TrimSpace(auditID)
	if len(trimmedAuditID) == 0 {
		return fmt.Sprintf(operationLabelTemplateConstant, operation, emptyStringConstant)
	}
	return fmt.Sprintf(operationLabelTemplateConstant, operation, fmt.Sprintf(auditSuffixTemplateConstant, trimmedAuditID))
}

// ConsoleOperationEventLogger renders operation lifecycle events using a zap logger.
type ConsoleOperationEventLogger struct {
	logger    *zap.Logger
	formatter OperationEventFormatter
}

// NewConsoleOperationEventLogger constructs a console event logger backed by the provided zap logger.
func NewConsoleOperationEventLogger(logger *zap.Logger) *ConsoleOperationEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleOperationEventLogger{logger: logger, formatter: OperationEventFormatter{}}
}

// OperationStarted logs at debug level; starts are noisy for interactive use.
func (eventLogger *ConsoleOperationEventLogger) OperationStarted(operation string, auditID string) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Debug(eventLogger.formatter.BuildStartedMessage(operation, auditID))
}

// OperationCompleted logs a successful operation.
func (eventLogger *ConsoleOperationEventLogger) OperationCompleted(operation string, auditID string) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Info(eventLogger.formatter.BuildSuccessMessage(operation, auditID))
}

// OperationFailed logs a rejected operation.
func (eventLogger *ConsoleOperationEventLogger) OperationFailed(operation string, auditID string, failure error) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Warn(eventLogger.formatter.BuildFailureMessage(operation, auditID, failure))
}
