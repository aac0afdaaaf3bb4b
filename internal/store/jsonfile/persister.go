// Package jsonfile persists the audit store as a single JSON document on disk.
package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/auditflow-pro/auditflow-pro/internal/store"
)

const (
	storePathRequiredMessageConstant     = "store path must be provided"
	storeReadErrorTemplateConstant       = "failed to read store %s: %w"
	storeDirectoryErrorTemplateConstant  = "failed to create store directory %s: %w"
	storeWriteErrorTemplateConstant      = "failed to write store %s: %w"
	storeReplaceErrorTemplateConstant    = "failed to replace store %s: %w"
	storeQuarantineErrorTemplateConstant = "%w: %w (%s: %v)"
	corruptSuffixConstant                = ".corrupt"
	temporarySuffixConstant              = ".tmp"
	storeFilePermissionsConstant         = fs.FileMode(0o600)
	storeDirectoryPermissionsConstant    = fs.FileMode(0o755)
)

// ErrStorePathRequired indicates the persister was constructed without a path.
var ErrStorePathRequired = errors.New(storePathRequiredMessageConstant)

// Persister reads and writes the store document at a fixed path.
type Persister struct {
	filePath   string
	fileSystem FileSystem
}

// NewPersister constructs a persister for filePath. A nil fileSystem selects the
// operating system.
func NewPersister(filePath string, fileSystem FileSystem) (*Persister, error) {
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return nil, ErrStorePathRequired
	}
	if fileSystem == nil {
		fileSystem = OSFileSystem{}
	}
	return &Persister{filePath: trimmedPath, fileSystem: fileSystem}, nil
}

// Path returns the document location.
func (persister *Persister) Path() string {
	return persister.filePath
}

// Load reads the document. A missing file yields an empty state. A malformed document
// is copied to <path>.corrupt before the corrupt-data error is returned, so the next
// save cannot destroy it.
func (persister *Persister) Load(executionContext context.Context) (store.State, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return store.NewState(), contextError
	}

	contentBytes, readError := persister.fileSystem.ReadFile(persister.filePath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return store.NewState(), nil
		}
		return store.NewState(), fmt.Errorf(storeReadErrorTemplateConstant, persister.filePath, readError)
	}

	state, decodeError := store.Decode(contentBytes)
	if decodeError == nil {
		return state, nil
	}

	quarantinePath := persister.filePath + corruptSuffixConstant
	if writeError := persister.fileSystem.WriteFile(quarantinePath, contentBytes, storeFilePermissionsConstant); writeError != nil {
		return store.NewState(), fmt.Errorf(storeQuarantineErrorTemplateConstant, decodeError, store.ErrQuarantineFailed, quarantinePath, writeError)
	}
	return store.NewState(), decodeError
}

// Save writes the document atomically through a temporary sibling file.
func (persister *Persister) Save(executionContext context.Context, state store.State) error {
	if contextError := executionContext.Err(); contextError != nil {
		return contextError
	}

	encoded, encodeError := store.Encode(state)
	if encodeError != nil {
		return encodeError
	}

	directoryPath := filepath.Dir(persister.filePath)
	if mkdirError := persister.fileSystem.MkdirAll(directoryPath, storeDirectoryPermissionsConstant); mkdirError != nil {
		return fmt.Errorf(storeDirectoryErrorTemplateConstant, directoryPath, mkdirError)
	}

	temporaryPath := persister.filePath + temporarySuffixConstant
	if writeError := persister.fileSystem.WriteFile(temporaryPath, encoded, storeFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(storeWriteErrorTemplateConstant, temporaryPath, writeError)
	}
	if renameError := persister.fileSystem.Rename(temporaryPath, persister.filePath); renameError != nil {
		_ = persister.fileSystem.Remove(temporaryPath)
		return fmt.Errorf(storeReplaceErrorTemplateConstant, persister.filePath, renameError)
	}
	return nil
}
