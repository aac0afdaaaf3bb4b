package store

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/auditflow-pro/auditflow-pro/internal/audit"
)

const (
	loadRecoveredCorruptMessageConstant = "store data is corrupt; starting from an empty store"
	loadRecoveredFailureMessageConstant = "store could not be loaded; starting from an empty store"
	quarantineFailedMessageConstant     = "corrupt store data could not be quarantined"
	logFieldErrorConstant               = "error"
	logFieldWritableConstant            = "writable"
)

// ErrQuarantineFailed is wrapped with ErrCorruptStoreData when a backend could not copy
// corrupt data aside before reporting it.
var ErrQuarantineFailed = errors.New(quarantineFailedMessageConstant)

// Persister reads and writes the whole store. Load returns an empty state when nothing
// has been saved yet.
type Persister interface {
	Load(executionContext context.Context) (State, error)
	Save(executionContext context.Context, state State) error
}

// LoadResult is the outcome of a recovering load.
type LoadResult struct {
	State State
	// Failure is the load error when the stored data was neither read nor preserved
	// elsewhere. Saving State would then overwrite data that still exists.
	Failure error
}

// Writable reports whether saving the loaded state is safe.
func (result LoadResult) Writable() bool {
	return result.Failure == nil
}

// Recover loads the store and falls back to an empty state on any failure, logging the
// reason. Corrupt data that the backend quarantined leaves the result writable; any other
// failure is kept in Failure.
func Recover(executionContext context.Context, persister Persister, logger *zap.Logger) LoadResult {
	if logger == nil {
		logger = zap.NewNop()
	}

	state, loadError := persister.Load(executionContext)
	if loadError == nil {
		if state.Audits == nil {
			state.Audits = []audit.Record{}
		}
		return LoadResult{State: state}
	}

	result := LoadResult{State: NewState(), Failure: loadError}
	message := loadRecoveredFailureMessageConstant
	if errors.Is(loadError, ErrCorruptStoreData) {
		message = loadRecoveredCorruptMessageConstant
		if !errors.Is(loadError, ErrQuarantineFailed) {
			result.Failure = nil
		}
	}
	logger.Warn(message, zap.String(logFieldErrorConstant, loadError.Error()), zap.Bool(logFieldWritableConstant, result.Writable()))
	return result
}

// LoadOrDefault returns the state from Recover. It never fails the caller.
func LoadOrDefault(executionContext context.Context, persister Persister, logger *zap.Logger) State {
	return Recover(executionContext, persister, logger).State
}
