package audit

import (
	"errors"
	"fmt"
)

const (
	invalidReferenceMessageConstant        = "invalid reference"
	completionBlockedMessageConstant       = "completion blocked"
	invalidTransitionMessageConstant       = "invalid status transition"
	referenceErrorTemplateConstant         = "invalid %s reference: %q"
	completionBlockedErrorTemplateConstant = "cannot complete audit: %d open action(s) remain"
	transitionErrorTemplateConstant        = "cannot %s an audit in status %s"
)

// Sentinel errors matched with errors.Is.
var (
	ErrInvalidReference  = errors.New(invalidReferenceMessageConstant)
	ErrCompletionBlocked = errors.New(completionBlockedMessageConstant)
	ErrInvalidTransition = errors.New(invalidTransitionMessageConstant)
)

// ReferenceKind names what an invalid reference pointed at.
type ReferenceKind string

// Reference kinds.
const (
	ReferenceKindSection  ReferenceKind = "section"
	ReferenceKindQuestion ReferenceKind = "question"
	ReferenceKindAction   ReferenceKind = "action"
	ReferenceKindAudit    ReferenceKind = "audit"
	ReferenceKindAnswer   ReferenceKind = "answer"
	ReferenceKindSeverity ReferenceKind = "severity"
	ReferenceKindValue    ReferenceKind = "value"
)

// ReferenceError reports a section, question, action, audit, or value that does not exist.
type ReferenceError struct {
	Kind  ReferenceKind
	Value string
}

func newReferenceError(kind ReferenceKind, value string) *ReferenceError {
	return &ReferenceError{Kind: kind, Value: value}
}

// NewReferenceError reports an unknown reference of the given kind.
func NewReferenceError(kind ReferenceKind, value string) error {
	return newReferenceError(kind, value)
}

// NewAuditReferenceError reports an unknown audit identifier.
func NewAuditReferenceError(auditID string) error {
	return newReferenceError(ReferenceKindAudit, auditID)
}

// Error implements error.
func (referenceError *ReferenceError) Error() string {
	return fmt.Sprintf(referenceErrorTemplateConstant, referenceError.Kind, referenceError.Value)
}

// Is matches ErrInvalidReference.
func (referenceError *ReferenceError) Is(target error) bool {
	return target == ErrInvalidReference
}

// CompletionBlockedError is returned when completing an audit that still has open actions.
type CompletionBlockedError struct {
	OpenActions int
}

// Error implements error.
func (blockedError *CompletionBlockedError) Error() string {
	return fmt.Sprintf(completionBlockedErrorTemplateConstant, blockedError.OpenActions)
}

// Is matches ErrCompletionBlocked.
func (blockedError *CompletionBlockedError) Is(target error) bool {
	return target == ErrCompletionBlocked
}

// TransitionError is returned when an operation is not valid from the current status.
type TransitionError struct {
	Operation string
	From      Status
}

// Error implements error.
func (transitionError *TransitionError) Error() string {
	return fmt.Sprintf(transitionErrorTemplateConstant, transitionError.Operation, transitionError.From)
}

// Is matches ErrInvalidTransition.
func (transitionError *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
