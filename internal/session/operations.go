package session

import (
	"strconv"
	"strings"

	"github.com/auditflow-pro/auditflow-pro/internal/audit"
	"github.com/auditflow-pro/auditflow-pro/internal/store"
)

// Operation names reported to observers and used in error messages.
const (
	OperationNameCreate       = "create"
	OperationNameSelect       = "select"
	OperationNameDelete       = "delete"
	OperationNameUpdate       = "update"
	OperationNameAnswer       = "answer"
	OperationNameNext         = "next"
	OperationNamePrevious     = "prev"
	OperationNameSection      = "section"
	OperationNameToggleAction = "toggle-action"
	OperationNameUpdateAction = "update-action"
	OperationNameAdvance      = "advance"
	OperationNameReopen       = "reopen"
)

const (
	questionNumberSeparatorConstant = "#"
)

// Operation is one named mutation of the store. Apply returns the record it touched,
// or nil when no record remains to report.
type Operation struct {
	Name     string
	Selector string
	Apply    func(state *store.State, engine *audit.Engine) (*audit.Record, error)

	scoped bool
}

// QuestionReference addresses a question by section key and 1-based number. A blank
// section selects the cursor's section and a zero number selects the cursor's question.
type QuestionReference struct {
	SectionKey string
	Number     int
}

// CreateAudit registers a blank audit and makes it active.
func CreateAudit(details audit.Details) Operation {
	return Operation{
		Name: OperationNameCreate,
		Apply: func(state *store.State, engine *audit.Engine) (*audit.Record, error) {
			return state.Create(engine, details)
		},
	}
}

// SelectAudit makes the selected audit active.
func SelectAudit(selector string) Operation {
	return scopedOperation(OperationNameSelect, selector, func(state *store.State, engine *audit.Engine, record *audit.Record) (*audit.Record, error) {
		state.ActiveAuditID = record.ID
		return record, nil
	})
}

// DeleteAudit removes the selected audit and reports the record that becomes active.
func DeleteAudit(selector string) Operation {
	return scopedOperation(OperationNameDelete, selector, func(state *store.State, engine *audit.Engine, record *audit.Record) (*audit.Record, error) {
		if deleteError := state.Delete(record.ID); deleteError != nil {
			return nil, deleteError
		}
		active, activeError := state.Active()
		if activeError != nil {
			return nil, nil
		}
		return active, nil
	})
}

// UpdateAudit edits the descriptive fields of the selected audit.
func UpdateAudit(selector string, details audit.Details) Operation {
	return scopedOperation(OperationNameUpdate, selector, func(state *store.State, engine *audit.Engine, record *audit.Record) (*audit.Record, error) {
		return record, engine.UpdateDetails(record, details)
	})
}

// AnswerQuestion records an answer on the selected audit.
func AnswerQuestion(selector string, reference QuestionReference, answer audit.Answer) Operation {
	return scopedOperation(OperationNameAnswer, selector, func(state *store.State, engine *audit.Engine, record *audit.Record) (*audit.Record, error) {
		sectionKey, questionIndex, resolveError := resolveQuestion(*record, reference)
		if resolveError != nil {
			return nil, resolveError
		}
		return record, engine.RecordResponse(record, sectionKey, questionIndex, answer)
	})
}

// NextQuestion moves the cursor of the selected audit forward.
func NextQuestion(selector string) Operation {
	return moveCursor(OperationNameNext, selector, 1)
}

// PreviousQuestion moves the cursor of the selected audit back.
func PreviousQuestion(selector string) Operation {
	return moveCursor(OperationNamePrevious, selector, -1)
}

// SelectSection moves the cursor of the selected audit to the start of a section.
func SelectSection(selector string, sectionKey string) Operation {
	return scopedOperation(OperationNameSection, selector, func(state *store.State, engine *audit.Engine, record *audit.Record) (*audit.Record, error) {
		return record, engine.SelectSection(record, strings.TrimSpace(sectionKey))
	})
}

// ToggleAction flips an action of the selected audit between OPEN and CLOSED.
func ToggleAction(selector string, actionSelector string) Operation {
	return scopedOperation(OperationNameToggleAction, selector, func(state *store.State, engine *audit.Engine, record *audit.Record) (*audit.Record, error) {
		actionID, resolveError := resolveActionID(*record, actionSelector)
		if resolveError != nil {
			return nil, resolveError
		}
		return record, engine.ToggleActionStatus(record, actionID)
	})
}

// UpdateAction edits severity, rationale, and remediation of an action.
func UpdateAction(selector string, actionSelector string, details audit.ActionDetails) Operation {
	return scopedOperation(OperationNameUpdateAction, selector, func(state *store.State, engine *audit.Engine, record *audit.Record) (*audit.Record, error) {
		actionID, resolveError := resolveActionID(*record, actionSelector)
		if resolveError != nil {
			return nil, resolveError
		}
		return record, engine.UpdateAction(record, actionID, details)
	})
}

// Advance moves the selected audit one step through the workflow.
func Advance(selector string) Operation {
	return scopedOperation(OperationNameAdvance, selector, func(state *store.State, engine *audit.Engine, record *audit.Record) (*audit.Record, error) {
		return record, engine.Advance(record)
	})
}

// Reopen returns the selected COMPLETE audit to IN_PROGRESS.
func Reopen(selector string) Operation {
	return scopedOperation(OperationNameReopen, selector, func(state *store.State, engine *audit.Engine, record *audit.Record) (*audit.Record, error) {
		return record, engine.Reopen(record)
	})
}

func moveCursor(name string, selector string, delta int) Operation {
	return scopedOperation(name, selector, func(state *store.State, engine *audit.Engine, record *audit.Record) (*audit.Record, error) {
		engine.MoveCursor(record, delta)
		return record, nil
	})
}

func scopedOperation(name string, selector string, apply func(state *store.State, engine *audit.Engine, record *audit.Record) (*audit.Record, error)) Operation {
	return Operation{
		Name:     name,
		Selector: selector,
		scoped:   true,
		Apply: func(state *store.State, engine *audit.Engine) (*audit.Record, error) {
			record, lookupError := state.Lookup(selector)
			if lookupError != nil {
				return nil, lookupError
			}
			return apply(state, engine, record)
		},
	}
}

func (operation Operation) target(state *store.State) string {
	if !operation.scoped {
		return ""
	}
	record, lookupError := state.Lookup(operation.Selector)
	if lookupError != nil {
		return strings.TrimSpace(operation.Selector)
	}
	return record.ID
}

func resolveQuestion(record audit.Record, reference QuestionReference) (string, int, error) {
	sectionKey := strings.TrimSpace(reference.SectionKey)
	if len(sectionKey) == 0 {
		sectionKey = record.ActiveSection
	}
	if reference.Number > 0 {
		return sectionKey, reference.Number - 1, nil
	}
	if reference.Number < 0 || sectionKey != record.ActiveSection {
		return "", 0, audit.NewReferenceError(audit.ReferenceKindQuestion, sectionKey+questionNumberSeparatorConstant+strconv.Itoa(reference.Number))
	}
	return sectionKey, record.ActiveIndex, nil
}

// resolveActionID accepts an exact identifier or an unambiguous identifier prefix.
func resolveActionID(record audit.Record, actionSelector string) (string, error) {
	trimmedSelector := strings.TrimSpace(actionSelector)
	if len(trimmedSelector) == 0 {
		return "", audit.NewReferenceError(audit.ReferenceKindAction, actionSelector)
	}
	if _, exists := audit.FindAction(record, trimmedSelector); exists {
		return trimmedSelector, nil
	}

	matchedID := ""
	for _, action := range record.Actions {
		if !strings.HasPrefix(action.ID, trimmedSelector) {
			continue
		}
		if len(matchedID) > 0 {
			return "", audit.NewReferenceError(audit.ReferenceKindAction, actionSelector)
		}
		matchedID = action.ID
	}
	if len(matchedID) == 0 {
		return "", audit.NewReferenceError(audit.ReferenceKindAction, actionSelector)
	}
	return matchedID, nil
}
