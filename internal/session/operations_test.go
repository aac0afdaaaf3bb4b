package session_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/auditflow-pro/auditflow-pro/internal/audit"
	"github.com/auditflow-pro/auditflow-pro/internal/session"
)

const (
	testSubtestTemplateConstant = "%d_%s"
	testFirstAuditNameConstant  = "Warehouse"
	testSecondAuditNameConstant = "Office"
)

func TestAnswerQuestionReferences(testInstance *testing.T) {
	testCases := []struct {
		name          string
		preparation   []session.Operation
		reference     session.QuestionReference
		expectedIndex int
		expectError   bool
	}{
		{
			name:          "cursor_question",
			reference:     session.QuestionReference{},
			expectedIndex: 0,
		},
		{
			name:          "cursor_after_next",
			preparation:   []session.Operation{session.NextQuestion(""), session.NextQuestion("")},
			reference:     session.QuestionReference{SectionKey: testFireSectionKeyConstant},
			expectedIndex: 2,
		},
		{
			name:          "explicit_number",
			reference:     session.QuestionReference{Number: 4},
			expectedIndex: 3,
		},
		{
			name:        "number_out_of_range",
			reference:   session.QuestionReference{Number: 5},
			expectError: true,
		},
		{
			name:        "cursor_in_other_section",
			reference:   session.QuestionReference{SectionKey: "plumbing"},
			expectError: true,
		},
		{
			name:        "negative_number",
			reference:   session.QuestionReference{Number: -1},
			expectError: true,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			fixture := newServiceFixture(testInstance, nil)
			operations := append([]session.Operation{session.CreateAudit(audit.Details{})}, testCase.preparation...)
			operations = append(operations, session.AnswerQuestion("", testCase.reference, audit.AnswerYes))

			result, executeError := fixture.service.Execute(context.Background(), operations...)
			if testCase.expectError {
				require.ErrorIs(testInstance, executeError, audit.ErrInvalidReference)
				return
			}
			require.NoError(testInstance, executeError)
			require.Equal(testInstance, audit.AnswerYes, result.Record.Responses[testFireSectionKeyConstant][testCase.expectedIndex])
			require.Equal(testInstance, testCase.expectedIndex, result.Record.ActiveIndex)
		})
	}
}

func TestAuditSelectorsResolveByNameAndPrefix(testInstance *testing.T) {
	fixture := newServiceFixture(testInstance, nil)
	executionContext := context.Background()

	_, createError := fixture.service.Execute(executionContext,
		session.CreateAudit(audit.Details{Name: textPointer(testFirstAuditNameConstant)}),
		session.CreateAudit(audit.Details{Name: textPointer(testSecondAuditNameConstant)}),
	)
	require.NoError(testInstance, createError)

	selected, selectError := fixture.service.Execute(executionContext, session.SelectAudit("warehouse"))
	require.NoError(testInstance, selectError)
	require.Equal(testInstance, "id-001", selected.State.ActiveAuditID)

	updated, updateError := fixture.service.Execute(executionContext, session.UpdateAudit("id-002", audit.Details{Client: textPointer("Acme")}))
	require.NoError(testInstance, updateError)
	require.Equal(testInstance, "Acme", updated.Record.Client)
	require.Equal(testInstance, "id-001", updated.State.ActiveAuditID)

	_, ambiguousError := fixture.service.Execute(executionContext, session.SelectAudit("id-00"))
	require.ErrorIs(testInstance, ambiguousError, audit.ErrInvalidReference)
}

func TestActionSelectorsResolveByPrefix(testInstance *testing.T) {
	fixture := newServiceFixture(testInstance, nil)
	executionContext := context.Background()

	answered, answerError := fixture.service.Execute(executionContext,
		session.CreateAudit(audit.Details{}),
		session.AnswerQuestion("", session.QuestionReference{Number: 1}, audit.AnswerNo),
	)
	require.NoError(testInstance, answerError)
	require.Len(testInstance, answered.Record.Actions, 1)
	require.Equal(testInstance, "id-002", answered.Record.Actions[0].ID)

	severity := audit.SeverityHigh
	updated, updateError := fixture.service.Execute(executionContext,
		session.UpdateAction("", "id-002", audit.ActionDetails{Severity: &severity, Remediation: textPointer("Replace extinguisher")}),
		session.ToggleAction("", "id-002"),
	)
	require.NoError(testInstance, updateError)
	require.Equal(testInstance, audit.ActionStatusClosed, updated.Record.Actions[0].Status)
	require.Equal(testInstance, audit.SeverityHigh, *updated.Record.Actions[0].Severity)

	_, unknownError := fixture.service.Execute(executionContext, session.ToggleAction("", "zzz"))
	require.ErrorIs(testInstance, unknownError, audit.ErrInvalidReference)

	_, blankError := fixture.service.Execute(executionContext, session.ToggleAction("", " "))
	require.ErrorIs(testInstance, blankError, audit.ErrInvalidReference)
}

func TestDeleteAuditReportsNextActive(testInstance *testing.T) {
	fixture := newServiceFixture(testInstance, nil)
	executionContext := context.Background()

	_, createError := fixture.service.Execute(executionContext,
		session.CreateAudit(audit.Details{Name: textPointer(testFirstAuditNameConstant)}),
		session.CreateAudit(audit.Details{Name: textPointer(testSecondAuditNameConstant)}),
	)
	require.NoError(testInstance, createError)

	deleted, deleteError := fixture.service.Execute(executionContext, session.DeleteAudit(""))
	require.NoError(testInstance, deleteError)
	require.NotNil(testInstance, deleted.Record)
	require.Equal(testInstance, "id-001", deleted.Record.ID)
	require.Len(testInstance, deleted.State.Audits, 1)

	emptied, emptyError := fixture.service.Execute(executionContext, session.DeleteAudit(testFirstAuditNameConstant))
	require.NoError(testInstance, emptyError)
	require.Nil(testInstance, emptied.Record)
	require.Empty(testInstance, emptied.State.ActiveAuditID)

	_, missingError := fixture.service.Execute(executionContext, session.Advance(""))
	require.ErrorIs(testInstance, missingError, audit.ErrInvalidReference)
}

func TestCursorOperations(testInstance *testing.T) {
	fixture := newServiceFixture(testInstance, nil)

	result, executeError := fixture.service.Execute(context.Background(),
		session.CreateAudit(audit.Details{}),
		session.PreviousQuestion(""),
		session.NextQuestion(""),
		session.NextQuestion(""),
		session.NextQuestion(""),
		session.NextQuestion(""),
		session.NextQuestion(""),
	)
	require.NoError(testInstance, executeError)
	require.Equal(testInstance, 3, result.Record.ActiveIndex)

	sectioned, sectionError := fixture.service.Execute(context.Background(), session.SelectSection("", testFireSectionKeyConstant))
	require.NoError(testInstance, sectionError)
	require.Equal(testInstance, 0, sectioned.Record.ActiveIndex)
}

func TestReopenRequiresCompleteAudit(testInstance *testing.T) {
	fixture := newServiceFixture(testInstance, nil)

	_, reopenError := fixture.service.Execute(context.Background(), session.CreateAudit(audit.Details{}), session.Reopen(""))
	require.ErrorIs(testInstance, reopenError, audit.ErrInvalidTransition)

	reopened, executeError := fixture.service.Execute(context.Background(),
		session.CreateAudit(audit.Details{}),
		session.Advance(""),
		session.Advance(""),
		session.Reopen(""),
	)
	require.NoError(testInstance, executeError)
	require.Equal(testInstance, audit.StatusInProgress, reopened.Record.Status)
}
