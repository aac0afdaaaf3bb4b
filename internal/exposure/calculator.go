// Package exposure scores an audit record by weighting each NO answer with its
// question's impact and the record's likelihood, and classifies the resulting
// percentage against a versioned band table.
package exposure

import (
	"github.com/auditflow-pro/auditflow-pro/internal/audit"
	"github.com/auditflow-pro/auditflow-pro/internal/checklist"
)

// SectionScore is the exposure contribution of one checklist section.
type SectionScore struct {
	SectionKey   string `json:"section_key"`
	TotalScore   int    `json:"total_score"`
	MaxScore     int    `json:"max_score"`
	FlaggedCount int    `json:"flagged_count"`
	Percent      int    `json:"percent"`
}

// Assessment is the full exposure result for a record.
type Assessment struct {
	TotalScore   int            `json:"total_score"`
	MaxScore     int            `json:"max_score"`
	Percent      int            `json:"percent"`
	Band         Band           `json:"band"`
	TableVersion string         `json:"table_version"`
	Likelihood   int            `json:"likelihood"`
	Sections     []SectionScore `json:"sections"`
}

// Calculator recomputes exposure from scratch on every call.
type Calculator struct {
	template  *checklist.Template
	bandTable BandTable
}

// NewCalculator binds a calculator to a template and band table.
func NewCalculator(template *checklist.Template, bandTable BandTable) *Calculator {
	return &Calculator{template: template, bandTable: bandTable}
}

// Assess computes totalScore, maxScore, percentage, and band for the record's current answers.
func (calculator *Calculator) Assess(record audit.Record) Assessment {
	likelihood := record.Likelihood
	if likelihood < 1 {
		likelihood = audit.DefaultLikelihood
	}

	assessment := Assessment{
		TableVersion: calculator.bandTable.Version,
		Likelihood:   likelihood,
		Sections:     make([]SectionScore, 0, len(calculator.template.SectionKeys())),
	}

	for _, section := range calculator.template.Sections() {
		answers := record.Responses[section.Key]
		sectionScore := SectionScore{SectionKey: section.Key}
		for questionIndex, question := range section.Questions {
			weight := question.Impact * likelihood
			sectionScore.MaxScore += weight
			if questionIndex < len(answers) && answers[questionIndex] == audit.AnswerNo {
				sectionScore.TotalScore += weight
				sectionScore.FlaggedCount++
			}
		}
		sectionScore.Percent = Percent(sectionScore.TotalScore, sectionScore.MaxScore)

		assessment.TotalScore += sectionScore.TotalScore
		assessment.MaxScore += sectionScore.MaxScore
		assessment.Sections = append(assessment.Sections, sectionScore)
	}

	assessment.Percent = Percent(assessment.TotalScore, assessment.MaxScore)
	assessment.Band = calculator.bandTable.Classify(assessment.Percent)
	return assessment
}

// Percent rounds 100*total/maxScore half up using integer arithmetic; it is 0 when maxScore is not positive.
func Percent(total int, maxScore int) int {
	if maxScore <= 0 || total <= 0 {
		return 0
	}
	return (200*total + maxScore) / (2 * maxScore)
}
