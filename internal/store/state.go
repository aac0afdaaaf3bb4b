package store

import (
	"strings"

	"github.com/auditflow-pro/auditflow-pro/internal/audit"
)

// State is the whole persisted collection of audits plus the active-audit pointer.
type State struct {
	ActiveAuditID string         `json:"activeAuditId"`
	Audits        []audit.Record `json:"audits"`
}

// NewState returns an empty store.
func NewState() State {
	return State{Audits: []audit.Record{}}
}

// Create registers a blank audit and makes it active.
func (state *State) Create(engine *audit.Engine, details audit.Details) (*audit.Record, error) {
	record, recordError := engine.NewRecord(details)
	if recordError != nil {
		return nil, recordError
	}
	state.Audits = append(state.Audits, record)
	state.ActiveAuditID = record.ID
	return &state.Audits[len(state.Audits)-1], nil
}

// Find returns the audit with the given identifier.
func (state *State) Find(auditID string) (*audit.Record, error) {
	trimmedID := strings.TrimSpace(auditID)
	for auditIndex := range state.Audits {
		if state.Audits[auditIndex].ID == trimmedID {
			return &state.Audits[auditIndex], nil
		}
	}
	return nil, audit.NewAuditReferenceError(auditID)
}

// FindByName returns the first audit whose name matches, ignoring case.
func (state *State) FindByName(name string) (*audit.Record, error) {
	trimmedName := strings.TrimSpace(name)
	for auditIndex := range state.Audits {
		if strings.EqualFold(state.Audits[auditIndex].Name, trimmedName) {
			return &state.Audits[auditIndex], nil
		}
	}
	return nil, audit.NewAuditReferenceError(name)
}

// Active returns the active audit.
func (state *State) Active() (*audit.Record, error) {
	if len(state.ActiveAuditID) == 0 {
		return nil, ErrNoActiveAudit
	}
	return state.Find(state.ActiveAuditID)
}

// Resolve returns the audit identified by auditID, or the active audit when auditID is blank.
func (state *State) Resolve(auditID string) (*audit.Record, error) {
	if len(strings.TrimSpace(auditID)) == 0 {
		return state.Active()
	}
	return state.Find(auditID)
}

// Lookup resolves a user-supplied selector: blank selects the active audit, then an exact
// identifier, a case-insensitive name, or an unambiguous identifier prefix.
func (state *State) Lookup(selector string) (*audit.Record, error) {
	trimmedSelector := strings.TrimSpace(selector)
	if len(trimmedSelector) == 0 {
		return state.Active()
	}
	if record, findError := state.Find(trimmedSelector); findError == nil {
		return record, nil
	}
	if record, nameError := state.FindByName(trimmedSelector); nameError == nil {
		return record, nil
	}

	matchIndex := -1
	for auditIndex := range state.Audits {
		if !strings.HasPrefix(state.Audits[auditIndex].ID, trimmedSelector) {
			continue
		}
		if matchIndex >= 0 {
			return nil, audit.NewAuditReferenceError(selector)
		}
		matchIndex = auditIndex
	}
	if matchIndex < 0 {
		return nil, audit.NewAuditReferenceError(selector)
	}
	return &state.Audits[matchIndex], nil
}

// Activate points the active-audit pointer at an existing audit.
func (state *State) Activate(auditID string) error {
	record, findError := state.Find(auditID)
	if findError != nil {
		return findError
	}
	state.ActiveAuditID = record.ID
	return nil
}

// Delete removes an audit. Deleting the active audit activates the most recently
// registered remaining audit, or clears the pointer when none remain.
func (state *State) Delete(auditID string) error {
	record, findError := state.Find(auditID)
	if findError != nil {
		return findError
	}
	deletedID := record.ID

	remaining := make([]audit.Record, 0, len(state.Audits)-1)
	for auditIndex := range state.Audits {
		if state.Audits[auditIndex].ID != deletedID {
			remaining = append(remaining, state.Audits[auditIndex])
		}
	}
	state.Audits = remaining

	if state.ActiveAuditID == deletedID {
		state.ActiveAuditID = ""
		if len(remaining) > 0 {
			state.ActiveAuditID = remaining[len(remaining)-1].ID
		}
	}
	return nil
}

// Report summarises the repairs applied by Normalize.
type Report struct {
	audit.NormalizationReport
	DroppedAudits    int
	ActivePointerFix bool
	RepairedAuditIDs []string
}

// Normalize reshapes every audit to the engine's template, drops audits without an
// identifier or with a duplicate identifier, and repairs a dangling active pointer.
func (state *State) Normalize(engine *audit.Engine) Report {
	report := Report{}
	if state.Audits == nil {
		state.Audits = []audit.Record{}
	}

	kept := make([]audit.Record, 0, len(state.Audits))
	seenIdentifiers := make(map[string]struct{}, len(state.Audits))
	for _, record := range state.Audits {
		record.ID = strings.TrimSpace(record.ID)
		if _, duplicate := seenIdentifiers[record.ID]; duplicate || len(record.ID) == 0 {
			report.DroppedAudits++
			continue
		}
		seenIdentifiers[record.ID] = struct{}{}

		recordReport := engine.Normalize(&record)
		if recordReport.Changed() {
			report.RepairedAuditIDs = append(report.RepairedAuditIDs, record.ID)
		}
		report.Add(recordReport)
		kept = append(kept, record)
	}
	state.Audits = kept

	if len(state.ActiveAuditID) > 0 {
		if _, known := seenIdentifiers[state.ActiveAuditID]; !known {
			state.ActiveAuditID = ""
			report.ActivePointerFix = true
		}
	}
	if len(state.ActiveAuditID) == 0 && len(kept) > 0 {
		state.ActiveAuditID = kept[len(kept)-1].ID
		report.ActivePointerFix = true
	}
	return report
}

// Changed reports whether Normalize repaired anything.
func (report Report) Changed() bool {
	return report.NormalizationReport.Changed() || report.DroppedAudits > 0 || report.ActivePointerFix
}
