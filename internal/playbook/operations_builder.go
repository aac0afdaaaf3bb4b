package playbook

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/auditflow-pro/auditflow-pro/internal/audit"
	"github.com/auditflow-pro/auditflow-pro/internal/session"
)

const (
	unsupportedOperationTemplateConstant = "unsupported playbook operation %q in step %d"
	stepOptionsErrorTemplateConstant     = "invalid options for %s step %d: %w"
	optionsDecoderErrorTemplateConstant  = "unable to prepare option decoder: %w"
	mapstructureTagNameConstant          = "mapstructure"
)

type auditScopedOptions struct {
	Audit string `mapstructure:"audit"`
}

type detailOptions struct {
	Name       *string `mapstructure:"name"`
	Client     *string `mapstructure:"client"`
	Date       *string `mapstructure:"date"`
	Likelihood *int    `mapstructure:"likelihood"`
}

type updateOptions struct {
	Audit      string  `mapstructure:"audit"`
	Name       *string `mapstructure:"name"`
	Client     *string `mapstructure:"client"`
	Date       *string `mapstructure:"date"`
	Likelihood *int    `mapstructure:"likelihood"`
}

type answerOptions struct {
	Audit    string `mapstructure:"audit"`
	Section  string `mapstructure:"section"`
	Question int    `mapstructure:"question"`
	Answer   string `mapstructure:"answer"`
}

type sectionOptions struct {
	Audit   string `mapstructure:"audit"`
	Section string `mapstructure:"section"`
}

type actionOptions struct {
	Audit  string `mapstructure:"audit"`
	Action string `mapstructure:"action"`
}

type updateActionOptions struct {
	Audit       string  `mapstructure:"audit"`
	Action      string  `mapstructure:"action"`
	Severity    *string `mapstructure:"severity"`
	Rationale   *string `mapstructure:"rationale"`
	Remediation *string `mapstructure:"remediation"`
}

// BuildOperations converts the declarative configuration into session operations.
func BuildOperations(configuration Configuration) ([]session.Operation, error) {
	operations := make([]session.Operation, 0, len(configuration.Steps))
	for stepIndex := range configuration.Steps {
		operation, buildError := buildOperationFromStep(stepIndex+1, configuration.Steps[stepIndex])
		if buildError != nil {
			return nil, buildError
		}
		operations = append(operations, operation)
	}
	return operations, nil
}

func buildOperationFromStep(stepNumber int, step StepConfiguration) (session.Operation, error) {
	switch step.Operation {
	case OperationTypeCreate:
		var options detailOptions
		if decodeError := decodeStepOptions(step, stepNumber, &options); decodeError != nil {
			return session.Operation{}, decodeError
		}
		return session.CreateAudit(options.details()), nil
	case OperationTypeUpdate:
		var options updateOptions
		if decodeError := decodeStepOptions(step, stepNumber, &options); decodeError != nil {
			return session.Operation{}, decodeError
		}
		details := detailOptions{Name: options.Name, Client: options.Client, Date: options.Date, Likelihood: options.Likelihood}
		return session.UpdateAudit(options.Audit, details.details()), nil
	case OperationTypeAnswer:
		return buildAnswerOperation(stepNumber, step)
	case OperationTypeSection:
		var options sectionOptions
		if decodeError := decodeStepOptions(step, stepNumber, &options); decodeError != nil {
			return session.Operation{}, decodeError
		}
		return session.SelectSection(options.Audit, options.Section), nil
	case OperationTypeToggleAction:
		var options actionOptions
		if decodeError := decodeStepOptions(step, stepNumber, &options); decodeError != nil {
			return session.Operation{}, decodeError
		}
		return session.ToggleAction(options.Audit, options.Action), nil
	case OperationTypeUpdateAction:
		return buildUpdateActionOperation(stepNumber, step)
	case OperationTypeSelect, OperationTypeDelete, OperationTypeNext, OperationTypePrevious, OperationTypeAdvance, OperationTypeReopen:
		var options auditScopedOptions
		if decodeError := decodeStepOptions(step, stepNumber, &options); decodeError != nil {
			return session.Operation{}, decodeError
		}
		return buildAuditScopedOperation(step.Operation, options.Audit), nil
	default:
		return session.Operation{}, fmt.Errorf(unsupportedOperationTemplateConstant, step.Operation, stepNumber)
	}
}

func buildAuditScopedOperation(operationType OperationType, selector string) session.Operation {
	switch operationType {
	case OperationTypeSelect:
		return session.SelectAudit(selector)
	case OperationTypeDelete:
		return session.DeleteAudit(selector)
	case OperationTypeNext:
		return session.NextQuestion(selector)
	case OperationTypePrevious:
		return session.PreviousQuestion(selector)
	case OperationTypeReopen:
		return session.Reopen(selector)
	default:
		return session.Advance(selector)
	}
}

func buildAnswerOperation(stepNumber int, step StepConfiguration) (session.Operation, error) {
	var options answerOptions
	if decodeError := decodeStepOptions(step, stepNumber, &options); decodeError != nil {
		return session.Operation{}, decodeError
	}
	answer, answerError := audit.ParseAnswer(options.Answer)
	if answerError != nil {
		return session.Operation{}, fmt.Errorf(stepOptionsErrorTemplateConstant, step.Operation, stepNumber, answerError)
	}
	reference := session.QuestionReference{SectionKey: options.Section, Number: options.Question}
	return session.AnswerQuestion(options.Audit, reference, answer), nil
}

func buildUpdateActionOperation(stepNumber int, step StepConfiguration) (session.Operation, error) {
	var options updateActionOptions
	if decodeError := decodeStepOptions(step, stepNumber, &options); decodeError != nil {
		return session.Operation{}, decodeError
	}

	details := audit.ActionDetails{Rationale: options.Rationale, Remediation: options.Remediation}
	if options.Severity != nil {
		severity, severityError := audit.ParseSeverity(*options.Severity)
		if severityError != nil {
			return session.Operation{}, fmt.Errorf(stepOptionsErrorTemplateConstant, step.Operation, stepNumber, severityError)
		}
		details.Severity = &severity
	}
	return session.UpdateAction(options.Audit, options.Action, details), nil
}

// decodeStepOptions decodes `with` options into target, rejecting unknown keys.
func decodeStepOptions(step StepConfiguration, stepNumber int, target any) error {
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          mapstructureTagNameConstant,
		Result:           target,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if decoderError != nil {
		return fmt.Errorf(optionsDecoderErrorTemplateConstant, decoderError)
	}
	if decodeError := decoder.Decode(step.Options); decodeError != nil {
		return fmt.Errorf(stepOptionsErrorTemplateConstant, step.Operation, stepNumber, decodeError)
	}
	return nil
}

func (options detailOptions) details() audit.Details {
	return audit.Details{
		Name:       options.Name,
		Client:     options.Client,
		Date:       options.Date,
		Likelihood: options.Likelihood,
	}
}
