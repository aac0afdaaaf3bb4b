package audit

import (
	"strconv"
	"strings"

	"github.com/auditflow-pro/auditflow-pro/internal/checklist"
)

const (
	defaultRecordNameConstant = "New Audit"
)

// EngineOptions configures an Engine. Zero values select production defaults.
type EngineOptions struct {
	Clock             Clock
	Identifiers       IdentifierSource
	DefaultLikelihood int
}

// Engine applies checklist responses, action changes, and workflow transitions to records.
// Every mutating method validates its input before touching the record and re-applies
// the completion gate afterwards.
type Engine struct {
	template          *checklist.Template
	clock             Clock
	identifiers       IdentifierSource
	defaultLikelihood int
}

// NewEngine constructs an Engine bound to a checklist template.
func NewEngine(template *checklist.Template, options EngineOptions) *Engine {
	clock := options.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	identifiers := options.Identifiers
	if identifiers == nil {
		identifiers = UUIDIdentifierSource{}
	}
	defaultLikelihood := options.DefaultLikelihood
	if defaultLikelihood < 1 {
		defaultLikelihood = DefaultLikelihood
	}
	return &Engine{
		template:          template,
		clock:             clock,
		identifiers:       identifiers,
		defaultLikelihood: defaultLikelihood,
	}
}

// Template exposes the checklist the engine validates against.
func (engine *Engine) Template() *checklist.Template {
	return engine.template
}

// NewRecord builds an empty IN_PROGRESS record with every response unanswered.
func (engine *Engine) NewRecord(details Details) (Record, error) {
	if details.Likelihood != nil && *details.Likelihood < 1 {
		return Record{}, newReferenceError(ReferenceKindValue, strconv.Itoa(*details.Likelihood))
	}

	now := engine.clock.Now()
	record := Record{
		ID:            engine.identifiers.NewIdentifier(),
		Name:          defaultRecordNameConstant,
		Status:        StatusInProgress,
		Likelihood:    engine.defaultLikelihood,
		ActiveSection: engine.template.FirstSectionKey(),
		ActiveIndex:   0,
		Responses:     engine.blankResponses(),
		Actions:       []Action{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	applyDetails(&record, details)
	return record, nil
}

// RecordResponse stores the answer for a question. A NO answer upserts the question's
// action: it is created OPEN when missing and left untouched when present, so a CLOSED
// action is never reopened implicitly.
func (engine *Engine) RecordResponse(record *Record, sectionKey string, questionIndex int, value Answer) error {
	if referenceError := engine.validateQuestion(sectionKey, questionIndex); referenceError != nil {
		return referenceError
	}
	if !value.Valid() {
		return newReferenceError(ReferenceKindAnswer, string(value))
	}

	engine.ensureResponses(record, sectionKey)
	record.Responses[sectionKey][questionIndex] = value

	if value == AnswerNo {
		if _, exists := FindActionForQuestion(*record, sectionKey, questionIndex); !exists {
			record.Actions = append(record.Actions, Action{
				ID:            engine.identifiers.NewIdentifier(),
				SectionKey:    sectionKey,
				QuestionIndex: questionIndex,
				Status:        ActionStatusOpen,
				CreatedAt:     engine.clock.Now(),
			})
		}
	}

	record.ActiveSection = sectionKey
	record.ActiveIndex = questionIndex
	engine.touch(record)
	return nil
}

// ToggleActionStatus flips an action between OPEN and CLOSED.
func (engine *Engine) ToggleActionStatus(record *Record, actionID string) error {
	actionIndex, exists := findActionIndex(*record, actionID)
	if !exists {
		return newReferenceError(ReferenceKindAction, actionID)
	}

	action := &record.Actions[actionIndex]
	if action.Open() {
		closedAt := engine.clock.Now()
		action.Status = ActionStatusClosed
		action.ClosedAt = &closedAt
	} else {
		action.Status = ActionStatusOpen
		action.ClosedAt = nil
	}

	engine.touch(record)
	return nil
}

// UpdateAction sets the optional descriptive fields of an action.
func (engine *Engine) UpdateAction(record *Record, actionID string, details ActionDetails) error {
	actionIndex, exists := findActionIndex(*record, actionID)
	if !exists {
		return newReferenceError(ReferenceKindAction, actionID)
	}
	if details.Severity != nil && !details.Severity.Valid() {
		return newReferenceError(ReferenceKindSeverity, string(*details.Severity))
	}

	action := &record.Actions[actionIndex]
	if details.Severity != nil {
		severity := *details.Severity
		action.Severity = &severity
	}
	if details.Rationale != nil {
		action.Rationale = optionalText(*details.Rationale)
	}
	if details.Remediation != nil {
		action.Remediation = optionalText(*details.Remediation)
	}

	engine.touch(record)
	return nil
}

// UpdateDetails edits the name, client, date, and likelihood of a record. A blank name
// falls back to the default record name.
func (engine *Engine) UpdateDetails(record *Record, details Details) error {
	if details.Likelihood != nil && *details.Likelihood < 1 {
		return newReferenceError(ReferenceKindValue, strconv.Itoa(*details.Likelihood))
	}
	applyDetails(record, details)
	engine.touch(record)
	return nil
}

// MoveCursor shifts the active question by delta, clamped to the active section.
func (engine *Engine) MoveCursor(record *Record, delta int) {
	questionCount, exists := engine.template.QuestionCount(record.ActiveSection)
	if !exists {
		record.ActiveSection = engine.template.FirstSectionKey()
		record.ActiveIndex = 0
		questionCount, _ = engine.template.QuestionCount(record.ActiveSection)
	}
	record.ActiveIndex = clamp(record.ActiveIndex+delta, 0, questionCount-1)
	engine.touch(record)
}

// SelectSection moves the cursor to the first question of a section.
func (engine *Engine) SelectSection(record *Record, sectionKey string) error {
	if _, exists := engine.template.QuestionCount(sectionKey); !exists {
		return newReferenceError(ReferenceKindSection, sectionKey)
	}
	record.ActiveSection = sectionKey
	record.ActiveIndex = 0
	engine.touch(record)
	return nil
}

// FindActionForQuestion returns the action raised for a question, if any.
func FindActionForQuestion(record Record, sectionKey string, questionIndex int) (Action, bool) {
	for actionIndex := range record.Actions {
		action := record.Actions[actionIndex]
		if action.SectionKey == sectionKey && action.QuestionIndex == questionIndex {
			return action, true
		}
	}
	return Action{}, false
}

// FindAction returns the action with the given identifier.
func FindAction(record Record, actionID string) (Action, bool) {
	actionIndex, exists := findActionIndex(record, actionID)
	if !exists {
		return Action{}, false
	}
	return record.Actions[actionIndex], true
}

// OpenActionCount counts actions still OPEN on the record.
func OpenActionCount(record Record) int {
	openCount := 0
	for actionIndex := range record.Actions {
		if record.Actions[actionIndex].Open() {
			openCount++
		}
	}
	return openCount
}

func (engine *Engine) validateQuestion(sectionKey string, questionIndex int) error {
	questionCount, exists := engine.template.QuestionCount(sectionKey)
	if !exists {
		return newReferenceError(ReferenceKindSection, sectionKey)
	}
	if questionIndex < 0 || questionIndex >= questionCount {
		return newReferenceError(ReferenceKindQuestion, sectionKey+"#"+strconv.Itoa(questionIndex))
	}
	return nil
}

func (engine *Engine) blankResponses() map[string][]Answer {
	responses := make(map[string][]Answer)
	for _, sectionKey := range engine.template.SectionKeys() {
		questionCount, _ := engine.template.QuestionCount(sectionKey)
		responses[sectionKey] = make([]Answer, questionCount)
	}
	return responses
}

func (engine *Engine) ensureResponses(record *Record, sectionKey string) {
	if record.Responses == nil {
		record.Responses = make(map[string][]Answer)
	}
	questionCount, _ := engine.template.QuestionCount(sectionKey)
	record.Responses[sectionKey] = resizeAnswers(record.Responses[sectionKey], questionCount)
}

// touch stamps the modification time and enforces the completion gate.
func (engine *Engine) touch(record *Record) {
	record.UpdatedAt = engine.clock.Now()
	applyCompletionGate(record)
}

func findActionIndex(record Record, actionID string) (int, bool) {
	trimmedID := strings.TrimSpace(actionID)
	if len(trimmedID) == 0 {
		return 0, false
	}
	for actionIndex := range record.Actions {
		if record.Actions[actionIndex].ID == trimmedID {
			return actionIndex, true
		}
	}
	return 0, false
}

func applyDetails(record *Record, details Details) {
	if details.Name != nil {
		record.Name = strings.TrimSpace(*details.Name)
		if len(record.Name) == 0 {
			record.Name = defaultRecordNameConstant
		}
	}
	if details.Client != nil {
		record.Client = strings.TrimSpace(*details.Client)
	}
	if details.Date != nil {
		record.Date = strings.TrimSpace(*details.Date)
	}
	if details.Likelihood != nil {
		record.Likelihood = *details.Likelihood
	}
}

func optionalText(value string) *string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return nil
	}
	return &trimmed
}

func resizeAnswers(answers []Answer, length int) []Answer {
	if len(answers) == length {
		return answers
	}
	resized := make([]Answer, length)
	copy(resized, answers)
	return resized
}

func clamp(value int, minimum int, maximum int) int {
	if maximum < minimum {
		return minimum
	}
	if value < minimum {
		return minimum
	}
	if value > maximum {
		return maximum
	}
	return value
}
