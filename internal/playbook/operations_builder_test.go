package playbook_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/auditflow-pro/auditflow-pro/internal/audit"
	"github.com/auditflow-pro/auditflow-pro/internal/checklist"
	"github.com/auditflow-pro/auditflow-pro/internal/exposure"
	"github.com/auditflow-pro/auditflow-pro/internal/playbook"
	"github.com/auditflow-pro/auditflow-pro/internal/session"
	"github.com/auditflow-pro/auditflow-pro/internal/store"
)

const (
	fullPlaybookDocument = `steps:
  - operation: create
    with:
      name: Depot
      client: Acme
      likelihood: "4"
  - operation: answer
    with:
      section: fire
      question: 1
      answer: no
  - operation: update-action
    with:
      action: id-2
      severity: high
      remediation: Replace extinguisher
  - operation: next
  - operation: answer
    with:
      answer: n/a
  - operation: prev
  - operation: section
    with:
      section: fire
  - operation: advance
  - operation: toggle-action
    with:
      action: id-2
  - operation: advance
  - operation: reopen
  - operation: update
    with:
      date: "2026-06-01"
  - operation: create
  - operation: select
    with:
      audit: Depot
  - operation: delete
    with:
      audit: id-3
`
)

type sequentialIdentifiers struct {
	issued int
}

func (source *sequentialIdentifiers) NewIdentifier() string {
	source.issued++
	return fmt.Sprintf("id-%d", source.issued)
}

func TestBuildOperationsRunsFullPlaybook(testInstance *testing.T) {
	configuration, parseError := playbook.ParseConfiguration([]byte(fullPlaybookDocument))
	require.NoError(testInstance, parseError)
	operations, buildError := playbook.BuildOperations(configuration)
	require.NoError(testInstance, buildError)
	require.Len(testInstance, operations, 15)

	template, templateError := checklist.Default()
	require.NoError(testInstance, templateError)
	engine := audit.NewEngine(template, audit.EngineOptions{Identifiers: &sequentialIdentifiers{}})
	persister := store.NewMemoryPersister(nil)
	service, serviceError := session.NewService(persister, engine, exposure.NewCalculator(template, exposure.DefaultBandTable), nil, nil)
	require.NoError(testInstance, serviceError)

	result, executeError := service.Execute(context.Background(), operations...)
	require.NoError(testInstance, executeError)
	require.Len(testInstance, result.State.Audits, 1)

	record := result.State.Audits[0]
	require.Equal(testInstance, "Depot", record.Name)
	require.Equal(testInstance, "Acme", record.Client)
	require.Equal(testInstance, "2026-06-01", record.Date)
	require.Equal(testInstance, 4, record.Likelihood)
	require.Equal(testInstance, audit.StatusInProgress, record.Status)
	require.Equal(testInstance, []audit.Answer{audit.AnswerNo, audit.AnswerNotApplicable, audit.AnswerUnanswered, audit.AnswerUnanswered}, record.Responses["fire"])
	require.Len(testInstance, record.Actions, 1)
	require.Equal(testInstance, audit.ActionStatusClosed, record.Actions[0].Status)
	require.Equal(testInstance, audit.SeverityHigh, *record.Actions[0].Severity)
	require.Equal(testInstance, "id-1", result.State.ActiveAuditID)
}

func TestBuildOperationsRejectsInvalidSteps(testInstance *testing.T) {
	testCases := []struct {
		name string
		step playbook.StepConfiguration
	}{
		{name: "unsupported_operation", step: playbook.StepConfiguration{Operation: "export"}},
		{name: "unknown_option", step: playbook.StepConfiguration{Operation: playbook.OperationTypeAdvance, Options: map[string]any{"force": true}}},
		{name: "invalid_answer", step: playbook.StepConfiguration{Operation: playbook.OperationTypeAnswer, Options: map[string]any{"answer": "maybe"}}},
		{name: "invalid_severity", step: playbook.StepConfiguration{Operation: playbook.OperationTypeUpdateAction, Options: map[string]any{"action": "a", "severity": "urgent"}}},
		{name: "non_numeric_question", step: playbook.StepConfiguration{Operation: playbook.OperationTypeAnswer, Options: map[string]any{"question": "second", "answer": "yes"}}},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			operations, buildError := playbook.BuildOperations(playbook.Configuration{Steps: []playbook.StepConfiguration{testCase.step}})
			require.Error(testInstance, buildError)
			require.Nil(testInstance, operations)
		})
	}
}
