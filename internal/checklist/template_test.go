package checklist_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/auditflow-pro/auditflow-pro/internal/checklist"
)

const (
	testSubtestTemplateConstant  = "%d_%s"
	testTemplateFileNameConstant = "checklist.yaml"
	testMixedQuestionDocument    = `version: mixed/v2
sections:
  - key: fire
    title: Fire Safety
    questions:
      - Fire extinguishers present and accessible?
      - text: Emergency lighting operational?
        impact: 4
  - key: access
    questions:
      - Visitor log maintained?
`
)

func TestDefaultTemplate(testInstance *testing.T) {
	template, templateError := checklist.Default()
	require.NoError(testInstance, templateError)

	require.Equal(testInstance, "fire-safety/v1", template.Version())
	require.Equal(testInstance, []string{"fire"}, template.SectionKeys())
	require.Equal(testInstance, "fire", template.FirstSectionKey())
	require.Equal(testInstance, 4, template.TotalQuestions())

	section, exists := template.Section("fire")
	require.True(testInstance, exists)
	require.Equal(testInstance, "Fire Safety", section.Title)
	require.Equal(testInstance, "Evacuation plan displayed?", section.Questions[3].Text)
	require.Equal(testInstance, 3, section.Questions[0].Impact)
}

func TestParseAcceptsStringAndMappingQuestions(testInstance *testing.T) {
	template, parseError := checklist.Parse([]byte(testMixedQuestionDocument))
	require.NoError(testInstance, parseError)

	first, firstExists := template.Question("fire", 0)
	require.True(testInstance, firstExists)
	require.Equal(testInstance, checklist.DefaultImpactWeight, first.Impact)

	second, secondExists := template.Question("fire", 1)
	require.True(testInstance, secondExists)
	require.Equal(testInstance, 4, second.Impact)

	accessSection, accessExists := template.Section("access")
	require.True(testInstance, accessExists)
	require.Equal(testInstance, "access", accessSection.Title)

	require.False(testInstance, template.HasQuestion("fire", 2))
	require.False(testInstance, template.HasQuestion("plumbing", 0))
}

func TestNewRejectsInvalidTemplates(testInstance *testing.T) {
	validQuestions := []checklist.Question{{Text: "Question?"}}
	testCases := []struct {
		name     string
		version  string
		sections []checklist.Section
	}{
		{name: "missing_version", version: " ", sections: []checklist.Section{{Key: "a", Questions: validQuestions}}},
		{name: "no_sections", version: "v1", sections: nil},
		{name: "blank_key", version: "v1", sections: []checklist.Section{{Key: " ", Questions: validQuestions}}},
		{name: "duplicate_key", version: "v1", sections: []checklist.Section{{Key: "a", Questions: validQuestions}, {Key: "a", Questions: validQuestions}}},
		{name: "no_questions", version: "v1", sections: []checklist.Section{{Key: "a"}}},
		{name: "blank_question", version: "v1", sections: []checklist.Section{{Key: "a", Questions: []checklist.Question{{Text: ""}}}}},
		{name: "negative_impact", version: "v1", sections: []checklist.Section{{Key: "a", Questions: []checklist.Question{{Text: "Q?", Impact: -1}}}}},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			template, templateError := checklist.New(testCase.version, testCase.sections)
			require.Error(testInstance, templateError)
			require.Nil(testInstance, template)
		})
	}
}

func TestTemplateIsImmutable(testInstance *testing.T) {
	sections := []checklist.Section{{Key: "a", Title: "A", Questions: []checklist.Question{{Text: "Q?"}}}}
	template, templateError := checklist.New("v1", sections)
	require.NoError(testInstance, templateError)

	sections[0].Questions[0].Text = "mutated"
	returned, _ := template.Section("a")
	returned.Questions[0].Text = "mutated again"

	question, exists := template.Question("a", 0)
	require.True(testInstance, exists)
	require.Equal(testInstance, "Q?", question.Text)
}

func TestLoadFile(testInstance *testing.T) {
	templatePath := filepath.Join(testInstance.TempDir(), testTemplateFileNameConstant)
	require.NoError(testInstance, os.WriteFile(templatePath, []byte(testMixedQuestionDocument), 0o600))

	template, loadError := checklist.Load(templatePath)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "mixed/v2", template.Version())

	defaultTemplate, defaultError := checklist.Load("  ")
	require.NoError(testInstance, defaultError)
	require.Equal(testInstance, "fire-safety/v1", defaultTemplate.Version())

	_, missingError := checklist.LoadFile(filepath.Join(testInstance.TempDir(), "missing.yaml"))
	require.Error(testInstance, missingError)

	_, parseError := checklist.Parse([]byte("sections: [unclosed"))
	require.Error(testInstance, parseError)
}
