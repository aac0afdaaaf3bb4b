package store_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/auditflow-pro/auditflow-pro/internal/audit"
	"github.com/auditflow-pro/auditflow-pro/internal/checklist"
)

const (
	testIdentifierTemplateConstant = "audit-%02d"
)

type fixedClock struct{}

func (fixedClock) Now() time.Time {
	return time.Date(2026, time.May, 2, 8, 0, 0, 0, time.UTC)
}

type sequentialIdentifiers struct {
	issued int
}

func (source *sequentialIdentifiers) NewIdentifier() string {
	source.issued++
	return fmt.Sprintf(testIdentifierTemplateConstant, source.issued)
}

func newTestEngine(testInstance *testing.T) *audit.Engine {
	testInstance.Helper()
	template, templateError := checklist.Default()
	require.NoError(testInstance, templateError)
	return audit.NewEngine(template, audit.EngineOptions{Clock: fixedClock{}, Identifiers: &sequentialIdentifiers{}})
}

func textPointer(value string) *string {
	return &value
}
