// Package report builds read-only projections of audit records for presentation.
package report

import (
	"time"

	"github.com/auditflow-pro/auditflow-pro/internal/audit"
	"github.com/auditflow-pro/auditflow-pro/internal/checklist"
	"github.com/auditflow-pro/auditflow-pro/internal/exposure"
)

// SectionProgress counts answers and open actions within one section.
type SectionProgress struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Answered    int    `json:"answered"`
	Total       int    `json:"total"`
	OpenActions int    `json:"open_actions"`
}

// CursorQuestion identifies the question the record's cursor points at.
type CursorQuestion struct {
	SectionKey string       `json:"section_key"`
	Index      int          `json:"index"`
	Text       string       `json:"text"`
	Answer     audit.Answer `json:"answer"`
}

// ActionView describes one action together with the question that raised it.
type ActionView struct {
	ID            string             `json:"id"`
	SectionKey    string             `json:"section_key"`
	QuestionIndex int                `json:"question_index"`
	QuestionText  string             `json:"question_text"`
	Status        audit.ActionStatus `json:"status"`
	Severity      *audit.Severity    `json:"severity,omitempty"`
	Rationale     *string            `json:"rationale,omitempty"`
	Remediation   *string            `json:"remediation,omitempty"`
	CreatedAt     time.Time          `json:"created_at,omitzero"`
	ClosedAt      *time.Time         `json:"closed_at,omitempty"`
}

// Open reports whether the action still requires remediation.
func (view ActionView) Open() bool {
	return view.Status == audit.ActionStatusOpen
}

// Summary is the presentation view-model of one record.
type Summary struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Client        string              `json:"client"`
	Date          string              `json:"date"`
	Status        audit.Status        `json:"status"`
	StatusLabel   string              `json:"status_label"`
	Active        bool                `json:"active"`
	Answered      int                 `json:"answered"`
	Total         int                 `json:"total"`
	OpenActions   int                 `json:"open_actions"`
	ClosedActions int                 `json:"closed_actions"`
	CanComplete   bool                `json:"can_complete"`
	Sections      []SectionProgress   `json:"sections"`
	Cursor        CursorQuestion      `json:"cursor"`
	Exposure      exposure.Assessment `json:"exposure"`
}

// ListEntry is the condensed projection used when listing records.
type ListEntry struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Client      string        `json:"client"`
	Date        string        `json:"date"`
	Status      audit.Status  `json:"status"`
	StatusLabel string        `json:"status_label"`
	Active      bool          `json:"active"`
	Answered    int           `json:"answered"`
	Total       int           `json:"total"`
	OpenActions int           `json:"open_actions"`
	Band        exposure.Band `json:"band"`
	Percent     int           `json:"percent"`
}

// Builder derives projections from a template and an exposure calculator.
type Builder struct {
	template   *checklist.Template
	calculator *exposure.Calculator
}

// NewBuilder constructs a Builder.
func NewBuilder(template *checklist.Template, calculator *exposure.Calculator) *Builder {
	return &Builder{template: template, calculator: calculator}
}

// Summarize projects a record. active marks whether it is the selected record.
func (builder *Builder) Summarize(record audit.Record, active bool) Summary {
	summary := Summary{
		ID:          record.ID,
		Name:        record.Name,
		Client:      record.Client,
		Date:        record.Date,
		Status:      record.Status,
		StatusLabel: audit.StatusLabel(record.Status),
		Active:      active,
		CanComplete: audit.CanComplete(record),
		Sections:    make([]SectionProgress, 0, len(builder.template.SectionKeys())),
		Exposure:    builder.calculator.Assess(record),
	}

	for _, section := range builder.template.Sections() {
		progress := SectionProgress{Key: section.Key, Title: section.Title, Total: len(section.Questions)}
		for _, answer := range record.Responses[section.Key] {
			if answer.Answered() {
				progress.Answered++
			}
		}
		summary.Answered += progress.Answered
		summary.Total += progress.Total
		summary.Sections = append(summary.Sections, progress)
	}

	for _, action := range record.Actions {
		if !action.Open() {
			summary.ClosedActions++
			continue
		}
		summary.OpenActions++
		for sectionIndex := range summary.Sections {
			if summary.Sections[sectionIndex].Key == action.SectionKey {
				summary.Sections[sectionIndex].OpenActions++
			}
		}
	}

	summary.Cursor = builder.cursor(record)
	return summary
}

// List projects every record in order.
func (builder *Builder) List(records []audit.Record, activeAuditID string) []ListEntry {
	entries := make([]ListEntry, 0, len(records))
	for _, record := range records {
		summary := builder.Summarize(record, record.ID == activeAuditID)
		entries = append(entries, ListEntry{
			ID:          summary.ID,
			Name:        summary.Name,
			Client:      summary.Client,
			Date:        summary.Date,
			Status:      summary.Status,
			StatusLabel: summary.StatusLabel,
			Active:      summary.Active,
			Answered:    summary.Answered,
			Total:       summary.Total,
			OpenActions: summary.OpenActions,
			Band:        summary.Exposure.Band,
			Percent:     summary.Exposure.Percent,
		})
	}
	return entries
}

// Actions pairs every action with the text of the question that raised it.
func (builder *Builder) Actions(record audit.Record) []ActionView {
	views := make([]ActionView, 0, len(record.Actions))
	for _, action := range record.Actions {
		view := ActionView{
			ID:            action.ID,
			SectionKey:    action.SectionKey,
			QuestionIndex: action.QuestionIndex,
			Status:        action.Status,
			Severity:      action.Severity,
			Rationale:     action.Rationale,
			Remediation:   action.Remediation,
			CreatedAt:     action.CreatedAt,
			ClosedAt:      action.ClosedAt,
		}
		if question, exists := builder.template.Question(action.SectionKey, action.QuestionIndex); exists {
			view.QuestionText = question.Text
		}
		views = append(views, view)
	}
	return views
}

func (builder *Builder) cursor(record audit.Record) CursorQuestion {
	cursor := CursorQuestion{SectionKey: record.ActiveSection, Index: record.ActiveIndex}
	question, exists := builder.template.Question(record.ActiveSection, record.ActiveIndex)
	if !exists {
		return cursor
	}
	cursor.Text = question.Text
	answers := record.Responses[record.ActiveSection]
	if record.ActiveIndex < len(answers) {
		cursor.Answer = answers[record.ActiveIndex]
	}
	return cursor
}
