package audit_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/auditflow-pro/auditflow-pro/internal/audit"
)

func TestEngineNewRecord(testInstance *testing.T) {
	engine, _ := newTestEngine(testInstance)

	record := newTestRecord(testInstance, engine)

	require.Equal(testInstance, "id-001", record.ID)
	require.Equal(testInstance, "New Audit", record.Name)
	require.Equal(testInstance, audit.StatusInProgress, record.Status)
	require.Equal(testInstance, audit.DefaultLikelihood, record.Likelihood)
	require.Equal(testInstance, testFireSectionKeyConstant, record.ActiveSection)
	require.Zero(testInstance, record.ActiveIndex)
	require.Len(testInstance, record.Responses[testFireSectionKeyConstant], 4)
	require.Len(testInstance, record.Responses[testAccessSectionKeyConstant], 2)
	require.Empty(testInstance, record.Actions)
	require.Equal(testInstance, testFixedTime, record.CreatedAt)

	for _, answers := range record.Responses {
		for _, answer := range answers {
			require.Equal(testInstance, audit.AnswerUnanswered, answer)
		}
	}
}

func TestEngineNewRecordRejectsInvalidLikelihood(testInstance *testing.T) {
	engine, _ := newTestEngine(testInstance)
	likelihood := 0

	_, recordError := engine.NewRecord(audit.Details{Likelihood: &likelihood})

	require.ErrorIs(testInstance, recordError, audit.ErrInvalidReference)
}

func TestEngineRecordResponse(testInstance *testing.T) {
	testCases := []struct {
		name              string
		answers           []audit.Answer
		expectedActions   int
		expectedOpen      int
		expectedAnswerEnd audit.Answer
	}{
		{
			name:              "yes_creates_no_action",
			answers:           []audit.Answer{audit.AnswerYes},
			expectedActions:   0,
			expectedOpen:      0,
			expectedAnswerEnd: audit.AnswerYes,
		},
		{
			name:              "no_creates_open_action",
			answers:           []audit.Answer{audit.AnswerNo},
			expectedActions:   1,
			expectedOpen:      1,
			expectedAnswerEnd: audit.AnswerNo,
		},
		{
			name:              "repeated_no_is_idempotent",
			answers:           []audit.Answer{audit.AnswerNo, audit.AnswerNo, audit.AnswerNo},
			expectedActions:   1,
			expectedOpen:      1,
			expectedAnswerEnd: audit.AnswerNo,
		},
		{
			name:              "last_write_wins",
			answers:           []audit.Answer{audit.AnswerNo, audit.AnswerNotApplicable},
			expectedActions:   1,
			expectedOpen:      1,
			expectedAnswerEnd: audit.AnswerNotApplicable,
		},
		{
			name:              "clearing_answer_keeps_action",
			answers:           []audit.Answer{audit.AnswerNo, audit.AnswerUnanswered},
			expectedActions:   1,
			expectedOpen:      1,
			expectedAnswerEnd: audit.AnswerUnanswered,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			engine, _ := newTestEngine(testInstance)
			record := newTestRecord(testInstance, engine)

			for _, answer := range testCase.answers {
				require.NoError(testInstance, engine.RecordResponse(&record, testFireSectionKeyConstant, 1, answer))
			}

			require.Len(testInstance, record.Actions, testCase.expectedActions)
			require.Equal(testInstance, testCase.expectedOpen, audit.OpenActionCount(record))
			require.Equal(testInstance, testCase.expectedAnswerEnd, record.Responses[testFireSectionKeyConstant][1])
			require.Equal(testInstance, 1, record.ActiveIndex)
			if testCase.expectedActions > 0 {
				action := record.Actions[0]
				require.Equal(testInstance, testFireSectionKeyConstant, action.SectionKey)
				require.Equal(testInstance, 1, action.QuestionIndex)
				require.Equal(testInstance, audit.ActionStatusOpen, action.Status)
			}
		})
	}
}

func TestEngineRecordResponseRejectsInvalidReferences(testInstance *testing.T) {
	testCases := []struct {
		name          string
		sectionKey    string
		questionIndex int
		answer        audit.Answer
		expectedKind  audit.ReferenceKind
	}{
		{
			name:          "unknown_section",
			sectionKey:    "electrical",
			questionIndex: 0,
			answer:        audit.AnswerYes,
			expectedKind:  audit.ReferenceKindSection,
		},
		{
			name:          "negative_question",
			sectionKey:    testFireSectionKeyConstant,
			questionIndex: -1,
			answer:        audit.AnswerYes,
			expectedKind:  audit.ReferenceKindQuestion,
		},
		{
			name:          "question_past_end",
			sectionKey:    testFireSectionKeyConstant,
			questionIndex: 4,
			answer:        audit.AnswerNo,
			expectedKind:  audit.ReferenceKindQuestion,
		},
		{
			name:          "unsupported_answer",
			sectionKey:    testFireSectionKeyConstant,
			questionIndex: 0,
			answer:        audit.Answer("MAYBE"),
			expectedKind:  audit.ReferenceKindAnswer,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			engine, _ := newTestEngine(testInstance)
			record := newTestRecord(testInstance, engine)
			before := newTestRecord(testInstance, engine)
			before.ID = record.ID

			responseError := engine.RecordResponse(&record, testCase.sectionKey, testCase.questionIndex, testCase.answer)

			require.ErrorIs(testInstance, responseError, audit.ErrInvalidReference)
			var referenceError *audit.ReferenceError
			require.True(testInstance, errors.As(responseError, &referenceError))
			require.Equal(testInstance, testCase.expectedKind, referenceError.Kind)
			require.Equal(testInstance, before.Responses, record.Responses)
			require.Empty(testInstance, record.Actions)
		})
	}
}

func TestEngineClosedActionIsNotReopenedByNewNo(testInstance *testing.T) {
	engine, _ := newTestEngine(testInstance)
	record := newTestRecord(testInstance, engine)

	require.NoError(testInstance, engine.RecordResponse(&record, testFireSectionKeyConstant, 2, audit.AnswerNo))
	actionID := record.Actions[0].ID
	require.NoError(testInstance, engine.ToggleActionStatus(&record, actionID))
	require.NoError(testInstance, engine.RecordResponse(&record, testFireSectionKeyConstant, 2, audit.AnswerYes))
	require.NoError(testInstance, engine.RecordResponse(&record, testFireSectionKeyConstant, 2, audit.AnswerNo))

	require.Len(testInstance, record.Actions, 1)
	require.Equal(testInstance, audit.ActionStatusClosed, record.Actions[0].Status)
	require.Zero(testInstance, audit.OpenActionCount(record))
}

func TestEngineToggleActionStatus(testInstance *testing.T) {
	engine, clock := newTestEngine(testInstance)
	record := newTestRecord(testInstance, engine)
	require.NoError(testInstance, engine.RecordResponse(&record, testFireSectionKeyConstant, 0, audit.AnswerNo))
	actionID := record.Actions[0].ID

	clock.now = testFixedTime.Add(time.Hour)
	require.NoError(testInstance, engine.ToggleActionStatus(&record, actionID))
	require.Equal(testInstance, audit.ActionStatusClosed, record.Actions[0].Status)
	require.NotNil(testInstance, record.Actions[0].ClosedAt)
	require.Equal(testInstance, clock.now, *record.Actions[0].ClosedAt)

	require.NoError(testInstance, engine.ToggleActionStatus(&record, actionID))
	require.Equal(testInstance, audit.ActionStatusOpen, record.Actions[0].Status)
	require.Nil(testInstance, record.Actions[0].ClosedAt)

	toggleError := engine.ToggleActionStatus(&record, "missing")
	require.ErrorIs(testInstance, toggleError, audit.ErrInvalidReference)
}

func TestEngineUpdateAction(testInstance *testing.T) {
	engine, _ := newTestEngine(testInstance)
	record := newTestRecord(testInstance, engine)
	require.NoError(testInstance, engine.RecordResponse(&record, testFireSectionKeyConstant, 0, audit.AnswerNo))
	actionID := record.Actions[0].ID

	severity := audit.SeverityHigh
	rationale := "  Extinguisher blocked by pallets  "
	remediation := "Clear access route"
	updateError := engine.UpdateAction(&record, actionID, audit.ActionDetails{
		Severity:    &severity,
		Rationale:   &rationale,
		Remediation: &remediation,
	})
	require.NoError(testInstance, updateError)
	require.Equal(testInstance, audit.SeverityHigh, *record.Actions[0].Severity)
	require.Equal(testInstance, "Extinguisher blocked by pallets", *record.Actions[0].Rationale)
	require.Equal(testInstance, remediation, *record.Actions[0].Remediation)

	cleared := " "
	require.NoError(testInstance, engine.UpdateAction(&record, actionID, audit.ActionDetails{Rationale: &cleared}))
	require.Nil(testInstance, record.Actions[0].Rationale)
	require.NotNil(testInstance, record.Actions[0].Remediation)

	invalidSeverity := audit.Severity("EXTREME")
	require.ErrorIs(testInstance, engine.UpdateAction(&record, actionID, audit.ActionDetails{Severity: &invalidSeverity}), audit.ErrInvalidReference)
	require.ErrorIs(testInstance, engine.UpdateAction(&record, "missing", audit.ActionDetails{}), audit.ErrInvalidReference)
}

func TestEngineUpdateDetails(testInstance *testing.T) {
	engine, _ := newTestEngine(testInstance)
	record := newTestRecord(testInstance, engine)

	name := "Warehouse 7"
	client := "Acme Logistics"
	date := "2026-03-14"
	likelihood := 4
	require.NoError(testInstance, engine.UpdateDetails(&record, audit.Details{Name: &name, Client: &client, Date: &date, Likelihood: &likelihood}))
	require.Equal(testInstance, name, record.Name)
	require.Equal(testInstance, client, record.Client)
	require.Equal(testInstance, date, record.Date)
	require.Equal(testInstance, likelihood, record.Likelihood)

	invalidLikelihood := -2
	require.ErrorIs(testInstance, engine.UpdateDetails(&record, audit.Details{Likelihood: &invalidLikelihood}), audit.ErrInvalidReference)
	require.Equal(testInstance, likelihood, record.Likelihood)
}

func TestEngineBlankNameFallsBackToDefault(testInstance *testing.T) {
	engine, _ := newTestEngine(testInstance)
	blankName := "   "

	created, createError := engine.NewRecord(audit.Details{Name: &blankName})
	require.NoError(testInstance, createError)
	require.Equal(testInstance, "New Audit", created.Name)

	renamed := "Depot"
	require.NoError(testInstance, engine.UpdateDetails(&created, audit.Details{Name: &renamed}))
	require.Equal(testInstance, renamed, created.Name)

	emptyName := ""
	require.NoError(testInstance, engine.UpdateDetails(&created, audit.Details{Name: &emptyName}))
	require.Equal(testInstance, "New Audit", created.Name)
}

func TestEngineCursorNavigation(testInstance *testing.T) {
	engine, _ := newTestEngine(testInstance)
	record := newTestRecord(testInstance, engine)

	engine.MoveCursor(&record, -1)
	require.Zero(testInstance, record.ActiveIndex)

	engine.MoveCursor(&record, 2)
	require.Equal(testInstance, 2, record.ActiveIndex)

	engine.MoveCursor(&record, 10)
	require.Equal(testInstance, 3, record.ActiveIndex)

	require.NoError(testInstance, engine.SelectSection(&record, testAccessSectionKeyConstant))
	require.Equal(testInstance, testAccessSectionKeyConstant, record.ActiveSection)
	require.Zero(testInstance, record.ActiveIndex)

	engine.MoveCursor(&record, 5)
	require.Equal(testInstance, 1, record.ActiveIndex)

	require.ErrorIs(testInstance, engine.SelectSection(&record, "electrical"), audit.ErrInvalidReference)
	require.Equal(testInstance, testAccessSectionKeyConstant, record.ActiveSection)
}

func TestParseAnswer(testInstance *testing.T) {
	testCases := []struct {
		raw         string
		expected    audit.Answer
		expectError bool
	}{
		{raw: "yes", expected: audit.AnswerYes},
		{raw: " NO ", expected: audit.AnswerNo},
		{raw: "n/a", expected: audit.AnswerNotApplicable},
		{raw: "NA", expected: audit.AnswerNotApplicable},
		{raw: "none", expected: audit.AnswerUnanswered},
		{raw: "perhaps", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.raw, func(testInstance *testing.T) {
			answer, parseError := audit.ParseAnswer(testCase.raw)
			if testCase.expectError {
				require.ErrorIs(testInstance, parseError, audit.ErrInvalidReference)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expected, answer)
		})
	}
}
