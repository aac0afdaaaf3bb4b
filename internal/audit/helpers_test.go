package audit_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/auditflow-pro/auditflow-pro/internal/audit"
	"github.com/auditflow-pro/auditflow-pro/internal/checklist"
)

const (
	testTemplateVersionConstant    = "engine-test/v1"
	testFireSectionKeyConstant     = "fire"
	testAccessSectionKeyConstant   = "access"
	testIdentifierTemplateConstant = "id-%03d"
)

var testFixedTime = time.Date(2026, time.April, 7, 9, 30, 0, 0, time.UTC)

type adjustableClock struct {
	now time.Time
}

func (clock *adjustableClock) Now() time.Time {
	return clock.now
}

type sequentialIdentifiers struct {
	issued int
}

func (source *sequentialIdentifiers) NewIdentifier() string {
	source.issued++
	return fmt.Sprintf(testIdentifierTemplateConstant, source.issued)
}

// newTestTemplate builds a fire section with four questions and an access section with two.
func newTestTemplate(testInstance *testing.T) *checklist.Template {
	testInstance.Helper()
	template, templateError := checklist.New(testTemplateVersionConstant, []checklist.Section{
		{
			Key:   testFireSectionKeyConstant,
			Title: "Fire Safety",
			Questions: []checklist.Question{
				{Text: "Extinguishers serviced within twelve months", Impact: 3},
				{Text: "Escape routes unobstructed", Impact: 5},
				{Text: "Alarm tested weekly", Impact: 4},
				{Text: "Fire doors close fully", Impact: 2},
			},
		},
		{
			Key:   testAccessSectionKeyConstant,
			Title: "Access",
			Questions: []checklist.Question{
				{Text: "Visitor log maintained", Impact: 1},
				{Text: "Badge readers operational", Impact: 2},
			},
		},
	})
	require.NoError(testInstance, templateError)
	return template
}

func newTestEngine(testInstance *testing.T) (*audit.Engine, *adjustableClock) {
	testInstance.Helper()
	clock := &adjustableClock{now: testFixedTime}
	engine := audit.NewEngine(newTestTemplate(testInstance), audit.EngineOptions{
		Clock:       clock,
		Identifiers: &sequentialIdentifiers{},
	})
	return engine, clock
}

func newTestRecord(testInstance *testing.T, engine *audit.Engine) audit.Record {
	testInstance.Helper()
	record, recordError := engine.NewRecord(audit.Details{})
	require.NoError(testInstance, recordError)
	return record
}
