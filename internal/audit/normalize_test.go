package audit_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/auditflow-pro/auditflow-pro/internal/audit"
)

const testLegacyRecordJSONConstant = `{
  "id": "legacy-1",
  "name": "Legacy",
  "client": "",
  "date": "",
  "status": "DRAFT",
  "activeSection": "plumbing",
  "activeIndex": 9,
  "responses": {
    "fire": [null, "NO", "YES", "N/A", "NO", "YES"],
    "access": ["maybe"],
    "plumbing": ["YES"]
  },
  "actions": [
    {"id": "a1", "sectionKey": "fire", "questionIndex": 1, "status": "CLOSED"},
    {"id": "a2", "sectionKey": "fire", "questionIndex": 1, "status": "OPEN"},
    {"id": "a3", "sectionKey": "fire", "questionIndex": 4, "status": "OPEN"},
    {"id": "a4", "sectionKey": "plumbing", "questionIndex": 0, "status": "OPEN"},
    {"id": "a1", "sectionKey": "access", "questionIndex": 0, "status": "OPEN"},
    {"id": "", "sectionKey": "access", "questionIndex": 1, "status": "PENDING"}
  ]
}`

func TestEngineNormalizeRepairsLegacyRecord(testInstance *testing.T) {
	engine, _ := newTestEngine(testInstance)

	var record audit.Record
	require.NoError(testInstance, json.Unmarshal([]byte(testLegacyRecordJSONConstant), &record))

	report := engine.Normalize(&record)

	require.Equal(testInstance, []audit.Answer{audit.AnswerUnanswered, audit.AnswerNo, audit.AnswerYes, audit.AnswerNotApplicable}, record.Responses[testFireSectionKeyConstant])
	require.Equal(testInstance, []audit.Answer{audit.AnswerUnanswered, audit.AnswerUnanswered}, record.Responses[testAccessSectionKeyConstant])
	require.NotContains(testInstance, record.Responses, "plumbing")

	require.Len(testInstance, record.Actions, 3)
	require.Equal(testInstance, "a1", record.Actions[0].ID)
	require.Equal(testInstance, audit.ActionStatusOpen, record.Actions[0].Status)
	require.Equal(testInstance, testAccessSectionKeyConstant, record.Actions[1].SectionKey)
	require.NotEqual(testInstance, "a1", record.Actions[1].ID)
	require.NotEmpty(testInstance, record.Actions[2].ID)
	require.Equal(testInstance, audit.ActionStatusOpen, record.Actions[2].Status)

	require.Equal(testInstance, audit.StatusInProgress, record.Status)
	require.Equal(testInstance, testFireSectionKeyConstant, record.ActiveSection)
	require.Zero(testInstance, record.ActiveIndex)
	require.Equal(testInstance, audit.DefaultLikelihood, record.Likelihood)

	require.True(testInstance, report.Changed())
	require.Equal(testInstance, 2, report.ResizedSections)
	require.Equal(testInstance, 1, report.DroppedSections)
	require.Equal(testInstance, 1, report.ClearedAnswers)
	require.Equal(testInstance, 2, report.DroppedActions)
	require.Equal(testInstance, 1, report.MergedActions)
	require.Equal(testInstance, 2, report.AssignedActionID)
	require.True(testInstance, report.StatusReset)
}

func TestEngineNormalizeAddsMissingSections(testInstance *testing.T) {
	engine, _ := newTestEngine(testInstance)
	record := audit.Record{ID: "bare", Status: audit.StatusInProgress, ActiveSection: testFireSectionKeyConstant}

	report := engine.Normalize(&record)

	require.Len(testInstance, record.Responses[testFireSectionKeyConstant], 4)
	require.Len(testInstance, record.Responses[testAccessSectionKeyConstant], 2)
	require.Equal(testInstance, 2, report.AddedSections)
	require.NotNil(testInstance, record.Actions)
}

func TestEngineNormalizeDemotesCompleteRecordWithOpenActions(testInstance *testing.T) {
	engine, _ := newTestEngine(testInstance)
	record := newTestRecord(testInstance, engine)
	require.NoError(testInstance, engine.RecordResponse(&record, testFireSectionKeyConstant, 0, audit.AnswerNo))
	record.Status = audit.StatusComplete

	report := engine.Normalize(&record)

	require.True(testInstance, report.Demoted)
	require.Equal(testInstance, audit.StatusReadyReview, record.Status)
}

func TestEngineNormalizeLeavesValidRecordUnchanged(testInstance *testing.T) {
	engine, _ := newTestEngine(testInstance)
	record := newTestRecord(testInstance, engine)
	require.NoError(testInstance, engine.RecordResponse(&record, testFireSectionKeyConstant, 1, audit.AnswerNo))
	require.NoError(testInstance, engine.RecordResponse(&record, testAccessSectionKeyConstant, 1, audit.AnswerYes))

	before, marshalError := json.Marshal(record)
	require.NoError(testInstance, marshalError)

	report := engine.Normalize(&record)

	after, marshalAfterError := json.Marshal(record)
	require.NoError(testInstance, marshalAfterError)
	require.False(testInstance, report.Changed())
	require.JSONEq(testInstance, string(before), string(after))
}

func TestAnswerJSONEncodesUnansweredAsNull(testInstance *testing.T) {
	encoded, marshalError := json.Marshal([]audit.Answer{audit.AnswerUnanswered, audit.AnswerNo, audit.AnswerNotApplicable})
	require.NoError(testInstance, marshalError)
	require.JSONEq(testInstance, `[null,"NO","N/A"]`, string(encoded))
}

func TestEngineNormalizeAssignsStableActionIdentifiers(testInstance *testing.T) {
	engine, _ := newTestEngine(testInstance)

	var firstLoad audit.Record
	require.NoError(testInstance, json.Unmarshal([]byte(testLegacyRecordJSONConstant), &firstLoad))
	engine.Normalize(&firstLoad)

	var secondLoad audit.Record
	require.NoError(testInstance, json.Unmarshal([]byte(testLegacyRecordJSONConstant), &secondLoad))
	engine.Normalize(&secondLoad)

	require.Len(testInstance, secondLoad.Actions, len(firstLoad.Actions))
	seenIdentifiers := map[string]struct{}{}
	for actionIndex := range firstLoad.Actions {
		require.Equal(testInstance, firstLoad.Actions[actionIndex].ID, secondLoad.Actions[actionIndex].ID)
		seenIdentifiers[firstLoad.Actions[actionIndex].ID] = struct{}{}
	}
	require.Len(testInstance, seenIdentifiers, len(firstLoad.Actions))

	report := engine.Normalize(&secondLoad)
	require.Zero(testInstance, report.AssignedActionID)
}
