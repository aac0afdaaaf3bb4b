package audit_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/auditflow-pro/auditflow-pro/internal/audit"
)

func TestWorkflowFireScenario(testInstance *testing.T) {
	engine, _ := newTestEngine(testInstance)
	record := newTestRecord(testInstance, engine)
	require.Equal(testInstance, audit.StatusInProgress, record.Status)

	require.NoError(testInstance, engine.RecordResponse(&record, testFireSectionKeyConstant, 1, audit.AnswerNo))
	require.Equal(testInstance, []audit.Answer{audit.AnswerUnanswered, audit.AnswerNo, audit.AnswerUnanswered, audit.AnswerUnanswered}, record.Responses[testFireSectionKeyConstant])
	require.Len(testInstance, record.Actions, 1)
	require.Equal(testInstance, audit.ActionStatusOpen, record.Actions[0].Status)

	require.NoError(testInstance, engine.Advance(&record))
	require.Equal(testInstance, audit.StatusReadyReview, record.Status)

	advanceError := engine.Advance(&record)
	require.ErrorIs(testInstance, advanceError, audit.ErrCompletionBlocked)
	var blockedError *audit.CompletionBlockedError
	require.True(testInstance, errors.As(advanceError, &blockedError))
	require.Equal(testInstance, 1, blockedError.OpenActions)
	require.Equal(testInstance, audit.StatusReadyReview, record.Status)

	require.NoError(testInstance, engine.ToggleActionStatus(&record, record.Actions[0].ID))
	require.Equal(testInstance, audit.ActionStatusClosed, record.Actions[0].Status)

	require.NoError(testInstance, engine.Advance(&record))
	require.Equal(testInstance, audit.StatusComplete, record.Status)

	require.NoError(testInstance, engine.RecordResponse(&record, testFireSectionKeyConstant, 2, audit.AnswerNo))
	require.Len(testInstance, record.Actions, 2)
	require.Equal(testInstance, audit.ActionStatusOpen, record.Actions[1].Status)
	require.Equal(testInstance, audit.StatusReadyReview, record.Status)
}

func TestWorkflowAdvance(testInstance *testing.T) {
	testCases := []struct {
		name           string
		initialStatus  audit.Status
		openActions    bool
		expectedStatus audit.Status
		expectedError  error
	}{
		{
			name:           "in_progress_moves_to_ready_review",
			initialStatus:  audit.StatusInProgress,
			expectedStatus: audit.StatusReadyReview,
		},
		{
			name:           "in_progress_with_open_actions_moves_to_ready_review",
			initialStatus:  audit.StatusInProgress,
			openActions:    true,
			expectedStatus: audit.StatusReadyReview,
		},
		{
			name:           "ready_review_without_actions_completes",
			initialStatus:  audit.StatusReadyReview,
			expectedStatus: audit.StatusComplete,
		},
		{
			name:           "ready_review_with_open_actions_is_blocked",
			initialStatus:  audit.StatusReadyReview,
			openActions:    true,
			expectedStatus: audit.StatusReadyReview,
			expectedError:  audit.ErrCompletionBlocked,
		},
		{
			name:           "complete_reopens",
			initialStatus:  audit.StatusComplete,
			expectedStatus: audit.StatusInProgress,
		},
		{
			name:           "unknown_status_is_rejected",
			initialStatus:  audit.Status("ARCHIVED"),
			expectedStatus: audit.Status("ARCHIVED"),
			expectedError:  audit.ErrInvalidTransition,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			engine, _ := newTestEngine(testInstance)
			record := newTestRecord(testInstance, engine)
			if testCase.openActions {
				require.NoError(testInstance, engine.RecordResponse(&record, testAccessSectionKeyConstant, 0, audit.AnswerNo))
			}
			record.Status = testCase.initialStatus

			advanceError := engine.Advance(&record)
			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, advanceError, testCase.expectedError)
			} else {
				require.NoError(testInstance, advanceError)
			}
			require.Equal(testInstance, testCase.expectedStatus, record.Status)
		})
	}
}

func TestWorkflowReopen(testInstance *testing.T) {
	engine, _ := newTestEngine(testInstance)
	record := newTestRecord(testInstance, engine)

	reopenError := engine.Reopen(&record)
	require.ErrorIs(testInstance, reopenError, audit.ErrInvalidTransition)
	require.Equal(testInstance, audit.StatusInProgress, record.Status)

	record.Status = audit.StatusComplete
	require.NoError(testInstance, engine.Reopen(&record))
	require.Equal(testInstance, audit.StatusInProgress, record.Status)
}

func TestWorkflowReopeningActionDemotesCompleteRecord(testInstance *testing.T) {
	engine, _ := newTestEngine(testInstance)
	record := newTestRecord(testInstance, engine)
	require.NoError(testInstance, engine.RecordResponse(&record, testFireSectionKeyConstant, 3, audit.AnswerNo))
	require.NoError(testInstance, engine.ToggleActionStatus(&record, record.Actions[0].ID))
	require.NoError(testInstance, engine.Advance(&record))
	require.NoError(testInstance, engine.Advance(&record))
	require.Equal(testInstance, audit.StatusComplete, record.Status)

	require.NoError(testInstance, engine.ToggleActionStatus(&record, record.Actions[0].ID))

	require.Equal(testInstance, audit.StatusReadyReview, record.Status)
	require.False(testInstance, audit.CanComplete(record))
}

func TestWorkflowCompletionGateIsNecessaryAndSufficient(testInstance *testing.T) {
	for openCount := 0; openCount <= 3; openCount++ {
		engine, _ := newTestEngine(testInstance)
		record := newTestRecord(testInstance, engine)
		for questionIndex := 0; questionIndex < openCount; questionIndex++ {
			require.NoError(testInstance, engine.RecordResponse(&record, testFireSectionKeyConstant, questionIndex, audit.AnswerNo))
		}
		record.Status = audit.StatusReadyReview

		require.Equal(testInstance, openCount == 0, audit.CanComplete(record))
		advanceError := engine.Advance(&record)
		if openCount == 0 {
			require.NoError(testInstance, advanceError)
			require.Equal(testInstance, audit.StatusComplete, record.Status)
			continue
		}
		var blockedError *audit.CompletionBlockedError
		require.True(testInstance, errors.As(advanceError, &blockedError))
		require.Equal(testInstance, openCount, blockedError.OpenActions)
		require.Equal(testInstance, audit.StatusReadyReview, record.Status)
	}
}

func TestStatusLabel(testInstance *testing.T) {
	require.Equal(testInstance, "In progress", audit.StatusLabel(audit.StatusInProgress))
	require.Equal(testInstance, "Ready for Review", audit.StatusLabel(audit.StatusReadyReview))
	require.Equal(testInstance, "Complete", audit.StatusLabel(audit.StatusComplete))
}
