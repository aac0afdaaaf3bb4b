package checklist

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultImpactWeight applies to questions that omit an impact value.
	DefaultImpactWeight = 1

	templateVersionRequiredMessageConstant       = "checklist template version must be provided"
	templateSectionsRequiredMessageConstant      = "checklist template must define at least one section"
	templateSectionKeyRequiredMessageConstant    = "checklist section key must be non-empty"
	templateDuplicateSectionTemplateConstant     = "checklist template defines duplicate section %q"
	templateQuestionsRequiredTemplateConstant    = "checklist section %q must define at least one question"
	templateQuestionTextRequiredTemplateConstant = "checklist section %q question %d has no text"
	templateImpactInvalidTemplateConstant        = "checklist section %q question %d has impact %d; impact must be at least 1"
	questionNodeUnsupportedTemplateConstant      = "checklist question must be a string or mapping, found %s"
)

// Question is a single checklist prompt answered with YES, NO, or N/A.
type Question struct {
	Text   string `yaml:"text" json:"text"`
	Impact int    `yaml:"impact" json:"impact"`
}

// UnmarshalYAML accepts either a bare string or a mapping with text and impact.
func (question *Question) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		question.Text = node.Value
		question.Impact = 0
		return nil
	case yaml.MappingNode:
		type plainQuestion Question
		var decoded plainQuestion
		if decodeError := node.Decode(&decoded); decodeError != nil {
			return decodeError
		}
		*question = Question(decoded)
		return nil
	default:
		return fmt.Errorf(questionNodeUnsupportedTemplateConstant, node.Tag)
	}
}

// Section groups an ordered list of questions under a stable key.
type Section struct {
	Key       string     `yaml:"key" json:"key"`
	Title     string     `yaml:"title" json:"title"`
	Questions []Question `yaml:"questions" json:"questions"`
}

// Template is an immutable, versioned checklist definition shared by all audits.
type Template struct {
	version  string
	sections []Section
	lookup   map[string]int
}

// New validates the provided sections and builds an immutable template.
func New(version string, sections []Section) (*Template, error) {
	trimmedVersion := strings.TrimSpace(version)
	if len(trimmedVersion) == 0 {
		return nil, errors.New(templateVersionRequiredMessageConstant)
	}
	if len(sections) == 0 {
		return nil, errors.New(templateSectionsRequiredMessageConstant)
	}

	copiedSections := make([]Section, 0, len(sections))
	lookup := make(map[string]int, len(sections))
	for sectionIndex := range sections {
		section := sections[sectionIndex]
		sectionKey := strings.TrimSpace(section.Key)
		if len(sectionKey) == 0 {
			return nil, errors.New(templateSectionKeyRequiredMessageConstant)
		}
		if _, exists := lookup[sectionKey]; exists {
			return nil, fmt.Errorf(templateDuplicateSectionTemplateConstant, sectionKey)
		}
		if len(section.Questions) == 0 {
			return nil, fmt.Errorf(templateQuestionsRequiredTemplateConstant, sectionKey)
		}

		questions := make([]Question, 0, len(section.Questions))
		for questionIndex, question := range section.Questions {
			questionText := strings.TrimSpace(question.Text)
			if len(questionText) == 0 {
				return nil, fmt.Errorf(templateQuestionTextRequiredTemplateConstant, sectionKey, questionIndex+1)
			}
			impact := question.Impact
			if impact == 0 {
				impact = DefaultImpactWeight
			}
			if impact < 1 {
				return nil, fmt.Errorf(templateImpactInvalidTemplateConstant, sectionKey, questionIndex+1, question.Impact)
			}
			questions = append(questions, Question{Text: questionText, Impact: impact})
		}

		sectionTitle := strings.TrimSpace(section.Title)
		if len(sectionTitle) == 0 {
			sectionTitle = sectionKey
		}

		lookup[sectionKey] = len(copiedSections)
		copiedSections = append(copiedSections, Section{Key: sectionKey, Title: sectionTitle, Questions: questions})
	}

	return &Template{version: trimmedVersion, sections: copiedSections, lookup: lookup}, nil
}

// Version reports the template's version identifier.
func (template *Template) Version() string {
	return template.version
}

// SectionKeys lists section keys in template order.
func (template *Template) SectionKeys() []string {
	keys := make([]string, 0, len(template.sections))
	for sectionIndex := range template.sections {
		keys = append(keys, template.sections[sectionIndex].Key)
	}
	return keys
}

// Sections returns a copy of every section in template order.
func (template *Template) Sections() []Section {
	copied := make([]Section, 0, len(template.sections))
	for sectionIndex := range template.sections {
		copied = append(copied, copySection(template.sections[sectionIndex]))
	}
	return copied
}

// Section returns a copy of the section identified by key.
func (template *Template) Section(sectionKey string) (Section, bool) {
	sectionIndex, exists := template.lookup[sectionKey]
	if !exists {
		return Section{}, false
	}
	return copySection(template.sections[sectionIndex]), true
}

// QuestionCount reports how many questions the section holds.
func (template *Template) QuestionCount(sectionKey string) (int, bool) {
	sectionIndex, exists := template.lookup[sectionKey]
	if !exists {
		return 0, false
	}
	return len(template.sections[sectionIndex].Questions), true
}

// Question returns the question at the zero-based index within a section.
func (template *Template) Question(sectionKey string, questionIndex int) (Question, bool) {
	sectionIndex, exists := template.lookup[sectionKey]
	if !exists {
		return Question{}, false
	}
	questions := template.sections[sectionIndex].Questions
	if questionIndex < 0 || questionIndex >= len(questions) {
		return Question{}, false
	}
	return questions[questionIndex], true
}

// HasQuestion reports whether the reference addresses a template question.
func (template *Template) HasQuestion(sectionKey string, questionIndex int) bool {
	_, exists := template.Question(sectionKey, questionIndex)
	return exists
}

// FirstSectionKey returns the key of the first section.
func (template *Template) FirstSectionKey() string {
	return template.sections[0].Key
}

// TotalQuestions counts questions across every section.
func (template *Template) TotalQuestions() int {
	total := 0
	for sectionIndex := range template.sections {
		total += len(template.sections[sectionIndex].Questions)
	}
	return total
}

func copySection(section Section) Section {
	questions := make([]Question, len(section.Questions))
	copy(questions, section.Questions)
	return Section{Key: section.Key, Title: section.Title, Questions: questions}
}
