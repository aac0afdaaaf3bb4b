package ui_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/auditflow-pro/auditflow-pro/internal/ui"
)

const (
	testOperationNameConstant             = "answer"
	testAuditIdentifierConstant           = "audit-7"
	testOperationLabelExpectationConstant = "answer (audit audit-7)"
	testFailureReasonConstant             = "completion blocked"
	testStartMessageExpectationConstant   = "Running " + testOperationLabelExpectationConstant
	testSuccessMessageExpectationConstant = "Completed " + testOperationLabelExpectationConstant
	testFailureMessageExpectationConstant = testOperationLabelExpectationConstant + " failed: " + testFailureReasonConstant
)

func TestConsoleOperationEventLoggerEmitsMessages(testInstance *testing.T) {
	testCases := []struct {
		name            string
		invoke          func(logger *ui.ConsoleOperationEventLogger)
		expectedLevel   zapcore.Level
		expectedMessage string
	}{
		{
			name: "operation_started",
			invoke: func(logger *ui.ConsoleOperationEventLogger) {
				logger.OperationStarted(testOperationNameConstant, testAuditIdentifierConstant)
			},
			expectedLevel:   zapcore.DebugLevel,
			expectedMessage: testStartMessageExpectationConstant,
		},
		{
			name: "operation_completed",
			invoke: func(logger *ui.ConsoleOperationEventLogger) {
				logger.OperationCompleted(testOperationNameConstant, testAuditIdentifierConstant)
			},
			expectedLevel:   zapcore.InfoLevel,
			expectedMessage: testSuccessMessageExpectationConstant,
		},
		{
			name: "operation_failed",
			invoke: func(logger *ui.ConsoleOperationEventLogger) {
				logger.OperationFailed(testOperationNameConstant, testAuditIdentifierConstant, errors.New(testFailureReasonConstant))
			},
			expectedLevel:   zapcore.WarnLevel,
			expectedMessage: testFailureMessageExpectationConstant,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observedCore, observedLogs := observer.New(zapcore.DebugLevel)
			eventLogger := ui.NewConsoleOperationEventLogger(zap.New(observedCore))

			testCase.invoke(eventLogger)

			entries := observedLogs.All()
			require.Len(testInstance, entries, 1)
			require.Equal(testInstance, testCase.expectedLevel, entries[0].Level)
			require.Equal(testInstance, testCase.expectedMessage, entries[0].Message)
		})
	}
}

func TestOperationEventFormatterOmitsBlankAudit(testInstance *testing.T) {
	formatter := ui.OperationEventFormatter{}
	require.Equal(testInstance, "Completed list", formatter.BuildSuccessMessage("list", " "))
	require.Equal(testInstance, "list failed: unknown error", formatter.BuildFailureMessage("list", "", nil))
}

func TestNilOperationEventLoggerIsSafe(testInstance *testing.T) {
	var eventLogger *ui.ConsoleOperationEventLogger
	require.NotPanics(testInstance, func() {
		eventLogger.OperationStarted(testOperationNameConstant, "")
		eventLogger.OperationCompleted(testOperationNameConstant, "")
		eventLogger.OperationFailed(testOperationNameConstant, "", nil)
	})
}
