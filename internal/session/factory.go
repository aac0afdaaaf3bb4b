package session

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/auditflow-pro/auditflow-pro/internal/audit"
	"github.com/auditflow-pro/auditflow-pro/internal/checklist"
	"github.com/auditflow-pro/auditflow-pro/internal/exposure"
	"github.com/auditflow-pro/auditflow-pro/internal/store"
	"github.com/auditflow-pro/auditflow-pro/internal/store/jsonfile"
	"github.com/auditflow-pro/auditflow-pro/internal/store/sqlite"
	pathutils "github.com/auditflow-pro/auditflow-pro/internal/utils/path"
)

const (
	unsupportedStoreBackendTemplateConstant = "unsupported store backend %q (expected one of %s)"
	checklistLoadErrorTemplateConstant      = "unable to load checklist template: %w"
	storeDirectoryErrorTemplateConstant     = "unable to create store directory %s: %w"
	storeOpenErrorTemplateConstant          = "unable to open audit store: %w"
	serviceReadyMessageConstant             = "audit session ready"
	logFieldBackendConstant                 = "store_backend"
	logFieldStorePathConstant               = "store_path"
	logFieldTemplateVersionConstant         = "checklist_version"
	backendChoiceSeparatorConstant          = ", "
	storeDirectoryPermissionsConstant       = fs.FileMode(0o755)
)

// Dependencies overrides collaborators of a Service built from configuration. Zero values
// select production implementations.
type Dependencies struct {
	Logger       *zap.Logger
	Observer     OperationObserver
	Clock        audit.Clock
	Identifiers  audit.IdentifierSource
	Persister    store.Persister
	HomeExpander *pathutils.HomeExpander
}

// NewServiceFromConfiguration loads the checklist, opens the configured store backend, and
// assembles a Service. Callers must Close the service to release the backend.
func NewServiceFromConfiguration(executionContext context.Context, configuration Configuration, dependencies Dependencies) (*Service, error) {
	sanitized := configuration.Sanitize()
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	homeExpander := dependencies.HomeExpander
	if homeExpander == nil {
		homeExpander = pathutils.NewHomeExpander()
	}

	template, templateError := checklist.Load(homeExpander.Expand(sanitized.Checklist.TemplatePath))
	if templateError != nil {
		return nil, fmt.Errorf(checklistLoadErrorTemplateConstant, templateError)
	}

	engine := audit.NewEngine(template, audit.EngineOptions{
		Clock:             dependencies.Clock,
		Identifiers:       dependencies.Identifiers,
		DefaultLikelihood: sanitized.Exposure.DefaultLikelihood,
	})
	calculator := exposure.NewCalculator(template, exposure.DefaultBandTable)

	storePath, storePathError := homeExpander.Resolve(sanitized.Store.Path)
	if storePathError != nil {
		return nil, fmt.Errorf(storeOpenErrorTemplateConstant, storePathError)
	}
	persister := dependencies.Persister
	var closer io.Closer
	if persister == nil {
		openedPersister, persisterCloser, openError := openPersister(executionContext, StoreBackend(sanitized.Store.Backend), storePath)
		if openError != nil {
			return nil, openError
		}
		persister = openedPersister
		closer = persisterCloser
	}

	service, serviceError := NewService(persister, engine, calculator, logger, dependencies.Observer)
	if serviceError != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, serviceError
	}
	service.closer = closer

	logger.Debug(serviceReadyMessageConstant,
		zap.String(logFieldBackendConstant, sanitized.Store.Backend),
		zap.String(logFieldStorePathConstant, storePath),
		zap.String(logFieldTemplateVersionConstant, template.Version()),
	)
	return service, nil
}

func openPersister(executionContext context.Context, backend StoreBackend, storePath string) (store.Persister, io.Closer, error) {
	switch backend {
	case StoreBackendJSON:
		persister, persisterError := jsonfile.NewPersister(storePath, nil)
		if persisterError != nil {
			return nil, nil, fmt.Errorf(storeOpenErrorTemplateConstant, persisterError)
		}
		return persister, nil, nil
	case StoreBackendSQLite:
		directoryPath := filepath.Dir(storePath)
		if mkdirError := os.MkdirAll(directoryPath, storeDirectoryPermissionsConstant); mkdirError != nil {
			return nil, nil, fmt.Errorf(storeDirectoryErrorTemplateConstant, directoryPath, mkdirError)
		}
		persister, openError := sqlite.Open(executionContext, storePath)
		if openError != nil {
			return nil, nil, fmt.Errorf(storeOpenErrorTemplateConstant, openError)
		}
		return persister, persister, nil
	default:
		return nil, nil, fmt.Errorf(unsupportedStoreBackendTemplateConstant, backend, strings.Join(StoreBackendChoices, backendChoiceSeparatorConstant))
	}
}
