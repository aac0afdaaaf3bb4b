package flags

import (
	"fmt"
	"strings"
)

const (
	choiceSeparatorLiteral   = "|"
	choicePlaceholderFormat  = "<%s>"
	choiceUsageEmptyTemplate = "`%s`"
	choiceUsageFullTemplate  = "`%s` %s"
)

// FormatChoiceUsage renders usage text such as "`<TEXT|json|csv>` Output format", upper-casing
// the default choice. Blank and repeated choices are dropped, comparing case-insensitively.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	placeholder := fmt.Sprintf(choicePlaceholderFormat, strings.Join(displayChoices(defaultChoice, choices), choiceSeparatorLiteral))
	trimmedDescription := strings.TrimSpace(description)
	if len(trimmedDescription) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplate, placeholder, trimmedDescription)
}

func displayChoices(defaultChoice string, choices []string) []string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	displayed := make([]string, 0, len(choices))
	seen := make(map[string]struct{}, len(choices))

	for _, choice := range choices {
		trimmedChoice := strings.TrimSpace(choice)
		normalizedChoice := strings.ToLower(trimmedChoice)
		if _, duplicate := seen[normalizedChoice]; duplicate || len(trimmedChoice) == 0 {
			continue
		}
		seen[normalizedChoice] = struct{}{}

		if len(normalizedDefault) > 0 && normalizedChoice == normalizedDefault {
			trimmedChoice = strings.ToUpper(trimmedChoice)
		}
		displayed = append(displayed, trimmedChoice)
	}
	return displayed
}
