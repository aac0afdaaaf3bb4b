package session_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/auditflow-pro/auditflow-pro/internal/audit"
	"github.com/auditflow-pro/auditflow-pro/internal/checklist"
	"github.com/auditflow-pro/auditflow-pro/internal/exposure"
	"github.com/auditflow-pro/auditflow-pro/internal/session"
	"github.com/auditflow-pro/auditflow-pro/internal/store"
)

const (
	testIdentifierTemplateConstant = "id-%03d"
	testFireSectionKeyConstant     = "fire"
)

type fixedClock struct{}

func (fixedClock) Now() time.Time {
	return time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)
}

type sequentialIdentifiers struct {
	issued int
}

func (source *sequentialIdentifiers) NewIdentifier() string {
	source.issued++
	return fmt.Sprintf(testIdentifierTemplateConstant, source.issued)
}

type recordedEvent struct {
	kind      string
	operation string
	auditID   string
}

type recordingObserver struct {
	events []recordedEvent
}

func (observer *recordingObserver) OperationStarted(operation string, auditID string) {
	observer.events = append(observer.events, recordedEvent{kind: "started", operation: operation, auditID: auditID})
}

func (observer *recordingObserver) OperationCompleted(operation string, auditID string) {
	observer.events = append(observer.events, recordedEvent{kind: "completed", operation: operation, auditID: auditID})
}

func (observer *recordingObserver) OperationFailed(operation string, auditID string, failure error) {
	observer.events = append(observer.events, recordedEvent{kind: "failed", operation: operation, auditID: auditID})
}

type serviceFixture struct {
	service   *session.Service
	persister *store.MemoryPersister
	observer  *recordingObserver
}

func newServiceFixture(testInstance *testing.T, initialContent []byte) serviceFixture {
	testInstance.Helper()
	persister := store.NewMemoryPersister(initialContent)
	observer := &recordingObserver{}
	return serviceFixture{service: newServiceWithPersister(testInstance, persister, observer), persister: persister, observer: observer}
}

func newServiceWithPersister(testInstance *testing.T, persister store.Persister, observer session.OperationObserver) *session.Service {
	testInstance.Helper()
	template, templateError := checklist.Default()
	require.NoError(testInstance, templateError)

	engine := audit.NewEngine(template, audit.EngineOptions{Clock: fixedClock{}, Identifiers: &sequentialIdentifiers{}})
	service, serviceError := session.NewService(persister, engine, exposure.NewCalculator(template, exposure.DefaultBandTable), nil, observer)
	require.NoError(testInstance, serviceError)
	return service
}

func textPointer(value string) *string {
	return &value
}
