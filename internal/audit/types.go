package audit

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultLikelihood is the likelihood multiplier assigned to records that do not carry one.
const DefaultLikelihood = 3

const (
	jsonNullLiteralConstant = "null"
)

// Answer is a nullable checklist response. AnswerUnanswered encodes as JSON null.
type Answer string

// Supported answers.
const (
	AnswerUnanswered    Answer = ""
	AnswerYes           Answer = "YES"
	AnswerNo            Answer = "NO"
	AnswerNotApplicable Answer = "N/A"
)

var answerAliases = map[string]Answer{
	"yes":            AnswerYes,
	"y":              AnswerYes,
	"no":             AnswerNo,
	"n":              AnswerNo,
	"n/a":            AnswerNotApplicable,
	"na":             AnswerNotApplicable,
	"not-applicable": AnswerNotApplicable,
	"none":           AnswerUnanswered,
	"null":           AnswerUnanswered,
	"clear":          AnswerUnanswered,
}

// AnswerChoices lists the command-line spellings accepted by ParseAnswer, in display order.
var AnswerChoices = []string{"yes", "no", "n/a", "none"}

// ParseAnswer converts user input into an Answer.
func ParseAnswer(raw string) (Answer, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	answer, known := answerAliases[normalized]
	if !known {
		return AnswerUnanswered, newReferenceError(ReferenceKindAnswer, raw)
	}
	return answer, nil
}

// Valid reports whether the answer is one of the supported values.
func (answer Answer) Valid() bool {
	switch answer {
	case AnswerUnanswered, AnswerYes, AnswerNo, AnswerNotApplicable:
		return true
	default:
		return false
	}
}

// Answered reports whether a value other than null has been recorded.
func (answer Answer) Answered() bool {
	return answer != AnswerUnanswered
}

// MarshalJSON encodes unanswered questions as null.
func (answer Answer) MarshalJSON() ([]byte, error) {
	if answer == AnswerUnanswered {
		return []byte(jsonNullLiteralConstant), nil
	}
	return json.Marshal(string(answer))
}

// UnmarshalJSON decodes null into AnswerUnanswered.
func (answer *Answer) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte(jsonNullLiteralConstant)) {
		*answer = AnswerUnanswered
		return nil
	}
	var decoded string
	if decodeError := json.Unmarshal(data, &decoded); decodeError != nil {
		return decodeError
	}
	*answer = Answer(decoded)
	return nil
}

// Status enumerates audit workflow states.
type Status string

// Workflow states. StatusDraft is only recognised when loading legacy data.
const (
	StatusInProgress  Status = "IN_PROGRESS"
	StatusReadyReview Status = "READY_REVIEW"
	StatusComplete    Status = "COMPLETE"
	StatusDraft       Status = "DRAFT"
)

// ActionStatus enumerates remediation action states.
type ActionStatus string

// Action states.
const (
	ActionStatusOpen   ActionStatus = "OPEN"
	ActionStatusClosed ActionStatus = "CLOSED"
)

// Severity grades a remediation action.
type Severity string

// Supported severities.
const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// SeverityChoices lists the command-line spellings accepted by ParseSeverity.
var SeverityChoices = []string{"low", "medium", "high"}

// ParseSeverity converts user input into a Severity.
func ParseSeverity(raw string) (Severity, error) {
	severity := Severity(strings.ToUpper(strings.TrimSpace(raw)))
	if !severity.Valid() {
		return "", newReferenceError(ReferenceKindSeverity, raw)
	}
	return severity, nil
}

// Valid reports whether the severity is supported.
func (severity Severity) Valid() bool {
	switch severity {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	default:
		return false
	}
}

// Action is a remediation item raised by a NO answer.
type Action struct {
	ID            string       `json:"id"`
	SectionKey    string       `json:"sectionKey"`
	QuestionIndex int          `json:"questionIndex"`
	Status        ActionStatus `json:"status"`
	Severity      *Severity    `json:"severity,omitempty"`
	Rationale     *string      `json:"rationale,omitempty"`
	Remediation   *string      `json:"remediation,omitempty"`
	CreatedAt     time.Time    `json:"createdAt,omitzero"`
	ClosedAt      *time.Time   `json:"closedAt,omitempty"`
}

// Open reports whether the action still requires remediation.
func (action Action) Open() bool {
	return action.Status == ActionStatusOpen
}

// Record is one checklist walkthrough for a client, site, and date.
type Record struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Client        string              `json:"client"`
	Date          string              `json:"date"`
	Status        Status              `json:"status"`
	Likelihood    int                 `json:"likelihood,omitempty"`
	ActiveSection string              `json:"activeSection"`
	ActiveIndex   int                 `json:"activeIndex"`
	Responses     map[string][]Answer `json:"responses"`
	Actions       []Action            `json:"actions"`
	CreatedAt     time.Time           `json:"createdAt,omitzero"`
	UpdatedAt     time.Time           `json:"updatedAt,omitzero"`
}

// Details carries the user-editable descriptive fields of a record. Nil fields are left unchanged.
type Details struct {
	Name       *string
	Client     *string
	Date       *string
	Likelihood *int
}

// ActionDetails carries the optional descriptive fields of an action. Nil fields are left unchanged.
type ActionDetails struct {
	Severity    *Severity
	Rationale   *string
	Remediation *string
}

// Clock abstracts time-dependent functionality for deterministic testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the standard library.
type SystemClock struct{}

// Now returns the current system time in UTC.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// IdentifierSource mints opaque identifiers for records and actions.
type IdentifierSource interface {
	NewIdentifier() string
}

// UUIDIdentifierSource issues random UUIDs.
type UUIDIdentifierSource struct{}

// NewIdentifier returns a new random UUID string.
func (UUIDIdentifierSource) NewIdentifier() string {
	return uuid.NewString()
}
