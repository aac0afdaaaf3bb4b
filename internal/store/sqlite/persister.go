// Package sqlite persists the audit store as a keyed row in an SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/auditflow-pro/auditflow-pro/internal/store"
)

const (
	driverNameConstant                     = "sqlite"
	corruptKeySuffixConstant               = ".corrupt"
	databasePathRequiredMessageConstant    = "sqlite database path must be provided"
	openDatabaseErrorTemplateConstant      = "failed to open sqlite store %s: %w"
	migrateDatabaseErrorTemplateConstant   = "failed to prepare sqlite store schema: %w"
	loadPayloadErrorTemplateConstant       = "failed to load store payload: %w"
	savePayloadErrorTemplateConstant       = "failed to save store payload: %w"
	quarantinePayloadErrorTemplateConstant = "%w: %w (%s: %v)"

	createTableStatementConstant = `
		CREATE TABLE IF NOT EXISTS auditflow_store (
			store_key  TEXT PRIMARY KEY,
			payload    TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`
	selectPayloadStatementConstant = `
		SELECT payload
		FROM auditflow_store
		WHERE store_key = ?
	`
	upsertPayloadStatementConstant = `
		INSERT INTO auditflow_store (store_key, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(store_key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`
)

// ErrDatabasePathRequired indicates the persister was opened without a database path.
var ErrDatabasePathRequired = errors.New(databasePathRequiredMessageConstant)

// Persister stores the encoded document under a single key.
type Persister struct {
	database   *sql.DB
	storeKey   string
	timeSource func() time.Time
}

// Open connects to the database at databasePath and ensures the schema exists.
func Open(executionContext context.Context, databasePath string) (*Persister, error) {
	trimmedPath := strings.TrimSpace(databasePath)
	if len(trimmedPath) == 0 {
		return nil, ErrDatabasePathRequired
	}

	database, openError := sql.Open(driverNameConstant, trimmedPath)
	if openError != nil {
		return nil, fmt.Errorf(openDatabaseErrorTemplateConstant, trimmedPath, openError)
	}
	database.SetMaxOpenConns(1)

	persister, persisterError := New(executionContext, database)
	if persisterError != nil {
		_ = database.Close()
		return nil, persisterError
	}
	return persister, nil
}

// New wraps an existing database handle and ensures the schema exists.
func New(executionContext context.Context, database *sql.DB) (*Persister, error) {
	if _, execError := database.ExecContext(executionContext, createTableStatementConstant); execError != nil {
		return nil, fmt.Errorf(migrateDatabaseErrorTemplateConstant, execError)
	}
	return &Persister{database: database, storeKey: store.StorageKey, timeSource: time.Now}, nil
}

// Load reads the stored document. A missing row yields an empty state. A malformed
// payload is copied under the corrupt key before the error is returned.
func (persister *Persister) Load(executionContext context.Context) (store.State, error) {
	var payload string
	row := persister.database.QueryRowContext(executionContext, selectPayloadStatementConstant, persister.storeKey)
	if scanError := row.Scan(&payload); scanError != nil {
		if errors.Is(scanError, sql.ErrNoRows) {
			return store.NewState(), nil
		}
		return store.NewState(), fmt.Errorf(loadPayloadErrorTemplateConstant, scanError)
	}

	state, decodeError := store.Decode([]byte(payload))
	if decodeError == nil {
		return state, nil
	}

	quarantineKey := persister.storeKey + corruptKeySuffixConstant
	if writeError := persister.write(executionContext, quarantineKey, payload); writeError != nil {
		return store.NewState(), fmt.Errorf(quarantinePayloadErrorTemplateConstant, decodeError, store.ErrQuarantineFailed, quarantineKey, writeError)
	}
	return store.NewState(), decodeError
}

// Save replaces the stored document.
func (persister *Persister) Save(executionContext context.Context, state store.State) error {
	encoded, encodeError := store.Encode(state)
	if encodeError != nil {
		return encodeError
	}
	if writeError := persister.write(executionContext, persister.storeKey, string(encoded)); writeError != nil {
		return fmt.Errorf(savePayloadErrorTemplateConstant, writeError)
	}
	return nil
}

// Close releases the database handle.
func (persister *Persister) Close() error {
	return persister.database.Close()
}

func (persister *Persister) write(executionContext context.Context, key string, payload string) error {
	_, execError := persister.database.ExecContext(executionContext, upsertPayloadStatementConstant, key, payload, persister.timeSource().UTC())
	return execError
}
