package audit

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	repairedActionNameTemplateConstant = "%s/%s/%d/%d"
)

// NormalizationReport counts the repairs applied to a record loaded from storage.
type NormalizationReport struct {
	ResizedSections  int
	AddedSections    int
	DroppedSections  int
	ClearedAnswers   int
	DroppedActions   int
	MergedActions    int
	AssignedActionID int
	StatusReset      bool
	Demoted          bool
}

// Changed reports whether any repair was applied.
func (report NormalizationReport) Changed() bool {
	return report != NormalizationReport{}
}

// Add accumulates another report into this one.
func (report *NormalizationReport) Add(other NormalizationReport) {
	report.ResizedSections += other.ResizedSections
	report.AddedSections += other.AddedSections
	report.DroppedSections += other.DroppedSections
	report.ClearedAnswers += other.ClearedAnswers
	report.DroppedActions += other.DroppedActions
	report.MergedActions += other.MergedActions
	report.AssignedActionID += other.AssignedActionID
	report.StatusReset = report.StatusReset || other.StatusReset
	report.Demoted = report.Demoted || other.Demoted
}

type questionReference struct {
	sectionKey    string
	questionIndex int
}

// Normalize reshapes a stored record to the engine's template: responses are padded or
// truncated to the template's question counts, unknown sections and unknown answers are
// discarded, actions pointing outside the template are dropped, duplicate actions for one
// question are merged into the first (kept OPEN if any duplicate was OPEN), actions with a
// blank or repeated identifier get one derived from their question, legacy and
// unknown statuses become IN_PROGRESS, the cursor is clamped, and the completion gate is
// applied.
func (engine *Engine) Normalize(record *Record) NormalizationReport {
	report := NormalizationReport{}

	engine.normalizeResponses(record, &report)
	engine.normalizeActions(record, &report)

	switch record.Status {
	case StatusInProgress, StatusReadyReview, StatusComplete:
	default:
		record.Status = StatusInProgress
		report.StatusReset = true
	}

	if record.Likelihood < 1 {
		record.Likelihood = engine.defaultLikelihood
	}

	questionCount, sectionExists := engine.template.QuestionCount(record.ActiveSection)
	if !sectionExists {
		record.ActiveSection = engine.template.FirstSectionKey()
		record.ActiveIndex = 0
		questionCount, _ = engine.template.QuestionCount(record.ActiveSection)
	}
	record.ActiveIndex = clamp(record.ActiveIndex, 0, questionCount-1)

	report.Demoted = applyCompletionGate(record)
	return report
}

func (engine *Engine) normalizeResponses(record *Record, report *NormalizationReport) {
	normalized := make(map[string][]Answer)
	for _, sectionKey := range engine.template.SectionKeys() {
		questionCount, _ := engine.template.QuestionCount(sectionKey)
		stored, present := record.Responses[sectionKey]
		if !present {
			report.AddedSections++
		} else if len(stored) != questionCount {
			report.ResizedSections++
		}

		answers := make([]Answer, questionCount)
		copy(answers, stored)
		for answerIndex := range answers {
			if !answers[answerIndex].Valid() {
				answers[answerIndex] = AnswerUnanswered
				report.ClearedAnswers++
			}
		}
		normalized[sectionKey] = answers
	}

	for sectionKey := range record.Responses {
		if _, known := normalized[sectionKey]; !known {
			report.DroppedSections++
		}
	}

	record.Responses = normalized
}

func (engine *Engine) normalizeActions(record *Record, report *NormalizationReport) {
	kept := make([]Action, 0, len(record.Actions))
	positions := make(map[questionReference]int, len(record.Actions))
	seenIdentifiers := make(map[string]struct{}, len(record.Actions))

	for _, action := range record.Actions {
		action.SectionKey = strings.TrimSpace(action.SectionKey)
		if !engine.template.HasQuestion(action.SectionKey, action.QuestionIndex) {
			report.DroppedActions++
			continue
		}

		if action.Status != ActionStatusOpen && action.Status != ActionStatusClosed {
			action.Status = ActionStatusOpen
		}
		if action.Open() {
			action.ClosedAt = nil
		}
		if action.Severity != nil && !action.Severity.Valid() {
			action.Severity = nil
		}

		reference := questionReference{sectionKey: action.SectionKey, questionIndex: action.QuestionIndex}
		if position, duplicate := positions[reference]; duplicate {
			if action.Open() && !kept[position].Open() {
				kept[position].Status = ActionStatusOpen
				kept[position].ClosedAt = nil
			}
			report.MergedActions++
			continue
		}

		action.ID = strings.TrimSpace(action.ID)
		if _, clash := seenIdentifiers[action.ID]; clash || len(action.ID) == 0 {
			action.ID = repairedActionIdentifier(record.ID, reference, seenIdentifiers)
			report.AssignedActionID++
		}
		seenIdentifiers[action.ID] = struct{}{}

		positions[reference] = len(kept)
		kept = append(kept, action)
	}

	record.Actions = kept
}

// repairedActionIdentifier derives a name-based UUID from the record and the action's question,
// so repeated loads of the same unsaved data hand out the same identifier.
func repairedActionIdentifier(recordID string, reference questionReference, seenIdentifiers map[string]struct{}) string {
	for attempt := 0; ; attempt++ {
		name := fmt.Sprintf(repairedActionNameTemplateConstant, recordID, reference.sectionKey, reference.questionIndex, attempt)
		candidate := uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
		if _, clash := seenIdentifiers[candidate]; !clash {
			return candidate
		}
	}
}
