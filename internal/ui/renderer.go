package ui

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/auditflow-pro/auditflow-pro/internal/audit"
	"github.com/auditflow-pro/auditflow-pro/internal/report"
)

// OutputFormat selects how projections are written.
type OutputFormat string

// Supported output formats.
const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatCSV  OutputFormat = "csv"
)

// OutputFormatChoices lists the accepted --output values.
var OutputFormatChoices = []string{string(OutputFormatText), string(OutputFormatJSON), string(OutputFormatCSV)}

const (
	unsupportedOutputFormatTemplateConstant = "unsupported output format %q (expected one of %s)"
	renderWriteErrorTemplateConstant        = "failed to write output: %w"
	choiceSeparatorConstant                 = ", "
	jsonIndentConstant                      = "  "

	summaryHeaderTemplateConstant      = "%s [%s]\n"
	summaryDetailsTemplateConstant     = "  id: %s  client: %s  date: %s\n"
	summaryStatusTemplateConstant      = "  status: %s\n"
	summaryProgressTemplateConstant    = "  answered: %d/%d  open actions: %d  closed actions: %d\n"
	summaryExposureTemplateConstant    = "  exposure: %d%% %s (score %d/%d, likelihood %d, %s)\n"
	summarySectionTemplateConstant     = "  - %s: %d/%d answered, %d open\n"
	summaryCursorTemplateConstant      = "  current: %s #%d %s [%s]\n"
	summaryCompletableTemplateConstant = "  ready to complete\n"
	listEntryTemplateConstant          = "%s %s  %-24s %-16s %d/%d  %d open  %d%% %s\n"
	actionEntryTemplateConstant        = "%s  %-6s %s #%d %s%s\n"
	actionSeverityTemplateConstant     = "  [%s]"
	noAuditsMessageConstant            = "No audits.\n"
	noActionsMessageConstant           = "No actions.\n"
	activeMarkerConstant               = "*"
	inactiveMarkerConstant             = " "
	unansweredLabelConstant            = "unanswered"
	blankFieldPlaceholderConstant      = "-"

	csvHeaderIDConstant           = "id"
	csvHeaderNameConstant         = "name"
	csvHeaderClientConstant       = "client"
	csvHeaderDateConstant         = "date"
	csvHeaderStatusConstant       = "status"
	csvHeaderActiveConstant       = "active"
	csvHeaderAnsweredConstant     = "answered"
	csvHeaderTotalConstant        = "total"
	csvHeaderOpenActionsConstant  = "open_actions"
	csvHeaderPercentConstant      = "exposure_percent"
	csvHeaderBandConstant         = "exposure_band"
	csvHeaderSectionConstant      = "section"
	csvHeaderQuestionConstant     = "question_index"
	csvHeaderQuestionTextConstant = "question"
	csvHeaderSeverityConstant     = "severity"
	csvHeaderRationaleConstant    = "rationale"
	csvHeaderRemediationConstant  = "remediation"
)

// ParseOutputFormat validates an --output value.
func ParseOutputFormat(raw string) (OutputFormat, error) {
	normalized := OutputFormat(strings.ToLower(strings.TrimSpace(raw)))
	switch normalized {
	case OutputFormatText, OutputFormatJSON, OutputFormatCSV:
		return normalized, nil
	case "":
		return OutputFormatText, nil
	default:
		return "", fmt.Errorf(unsupportedOutputFormatTemplateConstant, raw, strings.Join(OutputFormatChoices, choiceSeparatorConstant))
	}
}

// Renderer writes projections in one output format.
type Renderer struct {
	writer io.Writer
	format OutputFormat
}

// NewRenderer constructs a Renderer.
func NewRenderer(writer io.Writer, format OutputFormat) *Renderer {
	return &Renderer{writer: writer, format: format}
}

// RenderSummary writes a single record projection.
func (renderer *Renderer) RenderSummary(summary report.Summary) error {
	switch renderer.format {
	case OutputFormatJSON:
		return renderer.writeJSON(summary)
	case OutputFormatCSV:
		return renderer.writeCSV([]string{csvHeaderIDConstant, csvHeaderSectionConstant, csvHeaderAnsweredConstant, csvHeaderTotalConstant, csvHeaderOpenActionsConstant}, sectionRows(summary))
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, summaryHeaderTemplateConstant, summary.Name, summary.StatusLabel)
	fmt.Fprintf(&builder, summaryDetailsTemplateConstant, summary.ID, placeholder(summary.Client), placeholder(summary.Date))
	fmt.Fprintf(&builder, summaryStatusTemplateConstant, summary.Status)
	fmt.Fprintf(&builder, summaryProgressTemplateConstant, summary.Answered, summary.Total, summary.OpenActions, summary.ClosedActions)
	fmt.Fprintf(&builder, summaryExposureTemplateConstant, summary.Exposure.Percent, summary.Exposure.Band, summary.Exposure.TotalScore, summary.Exposure.MaxScore, summary.Exposure.Likelihood, summary.Exposure.TableVersion)
	for _, section := range summary.Sections {
		fmt.Fprintf(&builder, summarySectionTemplateConstant, section.Title, section.Answered, section.Total, section.OpenActions)
	}
	if len(summary.Cursor.Text) > 0 {
		fmt.Fprintf(&builder, summaryCursorTemplateConstant, summary.Cursor.SectionKey, summary.Cursor.Index+1, summary.Cursor.Text, answerLabel(summary.Cursor.Answer))
	}
	if summary.CanComplete {
		builder.WriteString(summaryCompletableTemplateConstant)
	}
	return renderer.writeString(builder.String())
}

// RenderList writes the condensed projection of every record.
func (renderer *Renderer) RenderList(entries []report.ListEntry) error {
	switch renderer.format {
	case OutputFormatJSON:
		return renderer.writeJSON(entries)
	case OutputFormatCSV:
		header := []string{csvHeaderIDConstant, csvHeaderNameConstant, csvHeaderClientConstant, csvHeaderDateConstant, csvHeaderStatusConstant, csvHeaderActiveConstant, csvHeaderAnsweredConstant, csvHeaderTotalConstant, csvHeaderOpenActionsConstant, csvHeaderPercentConstant, csvHeaderBandConstant}
		rows := make([][]string, 0, len(entries))
		for _, entry := range entries {
			rows = append(rows, []string{
				entry.ID,
				entry.Name,
				entry.Client,
				entry.Date,
				string(entry.Status),
				strconv.FormatBool(entry.Active),
				strconv.Itoa(entry.Answered),
				strconv.Itoa(entry.Total),
				strconv.Itoa(entry.OpenActions),
				strconv.Itoa(entry.Percent),
				string(entry.Band),
			})
		}
		return renderer.writeCSV(header, rows)
	}

	if len(entries) == 0 {
		return renderer.writeString(noAuditsMessageConstant)
	}
	var builder strings.Builder
	for _, entry := range entries {
		marker := inactiveMarkerConstant
		if entry.Active {
			marker = activeMarkerConstant
		}
		fmt.Fprintf(&builder, listEntryTemplateConstant, marker, entry.ID, entry.Name, entry.StatusLabel, entry.Answered, entry.Total, entry.OpenActions, entry.Percent, entry.Band)
	}
	return renderer.writeString(builder.String())
}

// RenderActions writes the actions of one record.
func (renderer *Renderer) RenderActions(actions []report.ActionView) error {
	switch renderer.format {
	case OutputFormatJSON:
		return renderer.writeJSON(actions)
	case OutputFormatCSV:
		header := []string{csvHeaderIDConstant, csvHeaderSectionConstant, csvHeaderQuestionConstant, csvHeaderQuestionTextConstant, csvHeaderStatusConstant, csvHeaderSeverityConstant, csvHeaderRationaleConstant, csvHeaderRemediationConstant}
		rows := make([][]string, 0, len(actions))
		for _, action := range actions {
			rows = append(rows, []string{
				action.ID,
				action.SectionKey,
				strconv.Itoa(action.QuestionIndex + 1),
				action.QuestionText,
				string(action.Status),
				severityText(action.Severity),
				dereference(action.Rationale),
				dereference(action.Remediation),
			})
		}
		return renderer.writeCSV(header, rows)
	}

	if len(actions) == 0 {
		return renderer.writeString(noActionsMessageConstant)
	}
	var builder strings.Builder
	for _, action := range actions {
		severitySuffix := emptyStringConstant
		if action.Severity != nil {
			severitySuffix = fmt.Sprintf(actionSeverityTemplateConstant, *action.Severity)
		}
		fmt.Fprintf(&builder, actionEntryTemplateConstant, action.ID, action.Status, action.SectionKey, action.QuestionIndex+1, action.QuestionText, severitySuffix)
	}
	return renderer.writeString(builder.String())
}

func (renderer *Renderer) writeJSON(value any) error {
	encoder := json.NewEncoder(renderer.writer)
	encoder.SetIndent("", jsonIndentConstant)
	if encodeError := encoder.Encode(value); encodeError != nil {
		return fmt.Errorf(renderWriteErrorTemplateConstant, encodeError)
	}
	return nil
}

func (renderer *Renderer) writeCSV(header []string, rows [][]string) error {
	csvWriter := csv.NewWriter(renderer.writer)
	if writeError := csvWriter.Write(header); writeError != nil {
		return fmt.Errorf(renderWriteErrorTemplateConstant, writeError)
	}
	if writeError := csvWriter.WriteAll(rows); writeError != nil {
		return fmt.Errorf(renderWriteErrorTemplateConstant, writeError)
	}
	return nil
}

func (renderer *Renderer) writeString(content string) error {
	if _, writeError := io.WriteString(renderer.writer, content); writeError != nil {
		return fmt.Errorf(renderWriteErrorTemplateConstant, writeError)
	}
	return nil
}

func sectionRows(summary report.Summary) [][]string {
	rows := make([][]string, 0, len(summary.Sections))
	for _, section := range summary.Sections {
		rows = append(rows, []string{summary.ID, section.Key, strconv.Itoa(section.Answered), strconv.Itoa(section.Total), strconv.Itoa(section.OpenActions)})
	}
	return rows
}

func answerLabel(answer audit.Answer) string {
	if !answer.Answered() {
		return unansweredLabelConstant
	}
	return string(answer)
}

func severityText(severity *audit.Severity) string {
	if severity == nil {
		return emptyStringConstant
	}
	return string(*severity)
}

func dereference(value *string) string {
	if value == nil {
		return emptyStringConstant
	}
	return *value
}

func placeholder(value string) string {
	if len(strings.TrimSpace(value)) == 0 {
		return blankFieldPlaceholderConstant
	}
	return value
}
