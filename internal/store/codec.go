package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/auditflow-pro/auditflow-pro/internal/audit"
)

const (
	// StorageKey names the persisted document in keyed backends.
	StorageKey = "auditflow_v3_store"

	corruptStoreDataMessageConstant  = "corrupt store data"
	noActiveAuditMessageConstant     = "no active audit; create one with `new` or choose one with `select`"
	corruptStoreDataTemplateConstant = "%w: %v"
	encodeStoreErrorTemplateConstant = "failed to encode store: %w"
	encodedIndentConstant            = "  "
)

// ErrCorruptStoreData reports persisted data that failed structural validation.
var ErrCorruptStoreData = errors.New(corruptStoreDataMessageConstant)

// ErrNoActiveAudit reports that an operation needed the active audit but none is selected.
var ErrNoActiveAudit = fmt.Errorf("%w: %s", audit.ErrInvalidReference, noActiveAuditMessageConstant)

// Encode serialises the state as indented JSON terminated by a newline.
func Encode(state State) ([]byte, error) {
	if state.Audits == nil {
		state.Audits = []audit.Record{}
	}
	encoded, marshalError := json.MarshalIndent(state, "", encodedIndentConstant)
	if marshalError != nil {
		return nil, fmt.Errorf(encodeStoreErrorTemplateConstant, marshalError)
	}
	return append(encoded, '\n'), nil
}

// Decode parses a persisted document. Blank input yields an empty state; malformed
// input yields an error wrapping ErrCorruptStoreData.
func Decode(content []byte) (State, error) {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		return NewState(), nil
	}

	var state State
	if unmarshalError := json.Unmarshal(trimmed, &state); unmarshalError != nil {
		return NewState(), fmt.Errorf(corruptStoreDataTemplateConstant, ErrCorruptStoreData, unmarshalError)
	}
	if state.Audits == nil {
		state.Audits = []audit.Record{}
	}
	return state, nil
}
