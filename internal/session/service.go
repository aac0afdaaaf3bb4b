package session

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/auditflow-pro/auditflow-pro/internal/audit"
	"github.com/auditflow-pro/auditflow-pro/internal/exposure"
	"github.com/auditflow-pro/auditflow-pro/internal/report"
	"github.com/auditflow-pro/auditflow-pro/internal/store"
)

const (
	serviceDependenciesMessageConstant   = "session service requires a persister, an engine, and a calculator"
	storeUnreadableMessageConstant       = "audit store could not be read; refusing to overwrite it"
	storeUnreadableErrorTemplateConstant = "%w: %w"
	operationFailedErrorTemplateConstant = "%s failed: %w"
	saveStoreErrorTemplateConstant       = "unable to save audit store: %w"
	storeNormalizedMessageConstant       = "audit store repaired on load"
	storeSavedMessageConstant            = "audit store saved"
	logFieldDroppedAuditsConstant        = "dropped_audits"
	logFieldRepairedAuditsConstant       = "repaired_audits"
	logFieldActivePointerFixConstant     = "active_pointer_fixed"
	logFieldMergedActionsConstant        = "merged_actions"
	logFieldDroppedActionsConstant       = "dropped_actions"
	logFieldResizedSectionsConstant      = "resized_sections"
	logFieldStatusResetConstant          = "status_reset"
	logFieldDemotedConstant              = "demoted"
	logFieldOperationsConstant           = "operations"
	logFieldAuditCountConstant           = "audit_count"
)

// ErrServiceDependencies indicates a Service was constructed without its collaborators.
var ErrServiceDependencies = errors.New(serviceDependenciesMessageConstant)

// ErrStoreUnreadable is returned by Execute when the store failed to load for a reason
// other than quarantined corruption. Nothing is saved in that case.
var ErrStoreUnreadable = errors.New(storeUnreadableMessageConstant)

// OperationObserver receives lifecycle notifications for every operation.
type OperationObserver interface {
	OperationStarted(operation string, auditID string)
	OperationCompleted(operation string, auditID string)
	OperationFailed(operation string, auditID string, failure error)
}

// Result is the outcome of an execution: the state after every operation, and a copy of
// the record touched by the last operation when there was one.
type Result struct {
	State  store.State
	Record *audit.Record
}

// Service coordinates loading, mutating, and saving the audit store.
type Service struct {
	persister   store.Persister
	engine      *audit.Engine
	projections *report.Builder
	logger      *zap.Logger
	observer    OperationObserver
	closer      io.Closer
}

// NewService constructs a Service. A nil logger disables logging and a nil observer
// disables lifecycle notifications.
func NewService(persister store.Persister, engine *audit.Engine, calculator *exposure.Calculator, logger *zap.Logger, observer OperationObserver) (*Service, error) {
	if persister == nil || engine == nil || calculator == nil {
		return nil, ErrServiceDependencies
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		persister:   persister,
		engine:      engine,
		projections: report.NewBuilder(engine.Template(), calculator),
		logger:      logger,
		observer:    observer,
	}, nil
}

// Engine exposes the engine bound to the service's checklist.
func (service *Service) Engine() *audit.Engine {
	return service.engine
}

// Projections exposes the view-model builder for the service's checklist.
func (service *Service) Projections() *report.Builder {
	return service.projections
}

// View loads and repairs the store without saving it.
func (service *Service) View(executionContext context.Context) (store.State, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return store.NewState(), contextError
	}
	return service.load(executionContext).State, nil
}

// Execute applies operations in order and saves the store once all of them succeed.
// The first failing operation aborts the run and nothing is saved. A store that could
// not be read is never overwritten.
func (service *Service) Execute(executionContext context.Context, operations ...Operation) (Result, error) {
	return service.run(executionContext, true, operations)
}

// Preview applies operations in order like Execute but never saves.
func (service *Service) Preview(executionContext context.Context, operations ...Operation) (Result, error) {
	return service.run(executionContext, false, operations)
}

// Close releases backend resources held by the persister.
func (service *Service) Close() error {
	if service == nil || service.closer == nil {
		return nil
	}
	return service.closer.Close()
}

func (service *Service) run(executionContext context.Context, persist bool, operations []Operation) (Result, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return Result{}, contextError
	}

	loaded := service.load(executionContext)
	if persist && !loaded.Writable() {
		return Result{}, fmt.Errorf(storeUnreadableErrorTemplateConstant, ErrStoreUnreadable, loaded.Failure)
	}
	state := loaded.State
	result := Result{}

	for _, operation := range operations {
		auditID := operation.target(&state)
		service.notifyStarted(operation.Name, auditID)

		record, applyError := operation.Apply(&state, service.engine)
		if applyError != nil {
			service.notifyFailed(operation.Name, auditID, applyError)
			return Result{State: state}, fmt.Errorf(operationFailedErrorTemplateConstant, operation.Name, applyError)
		}

		result.Record = nil
		if record != nil {
			recordCopy := *record
			result.Record = &recordCopy
			auditID = record.ID
		}
		service.notifyCompleted(operation.Name, auditID)
	}

	if persist {
		if saveError := service.persister.Save(executionContext, state); saveError != nil {
			return Result{State: state}, fmt.Errorf(saveStoreErrorTemplateConstant, saveError)
		}
		service.logger.Debug(storeSavedMessageConstant,
			zap.Int(logFieldOperationsConstant, len(operations)),
			zap.Int(logFieldAuditCountConstant, len(state.Audits)),
		)
	}

	result.State = state
	return result, nil
}

func (service *Service) load(executionContext context.Context) store.LoadResult {
	loaded := store.Recover(executionContext, service.persister, service.logger)
	normalizationReport := loaded.State.Normalize(service.engine)
	if normalizationReport.Changed() {
		service.logger.Info(storeNormalizedMessageConstant,
			zap.Int(logFieldDroppedAuditsConstant, normalizationReport.DroppedAudits),
			zap.Strings(logFieldRepairedAuditsConstant, normalizationReport.RepairedAuditIDs),
			zap.Bool(logFieldActivePointerFixConstant, normalizationReport.ActivePointerFix),
			zap.Int(logFieldMergedActionsConstant, normalizationReport.MergedActions),
			zap.Int(logFieldDroppedActionsConstant, normalizationReport.DroppedActions),
			zap.Int(logFieldResizedSectionsConstant, normalizationReport.ResizedSections),
			zap.Bool(logFieldStatusResetConstant, normalizationReport.StatusReset),
			zap.Bool(logFieldDemotedConstant, normalizationReport.Demoted),
		)
	}
	return loaded
}

func (service *Service) notifyStarted(operation string, auditID string) {
	if service.observer != nil {
		service.observer.OperationStarted(operation, auditID)
	}
}

func (service *Service) notifyCompleted(operation string, auditID string) {
	if service.observer != nil {
		service.observer.OperationCompleted(operation, auditID)
	}
}

func (service *Service) notifyFailed(operation string, auditID string, failure error) {
	if service.observer != nil {
		service.observer.OperationFailed(operation, auditID, failure)
	}
}
