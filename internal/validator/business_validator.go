package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/surveyer/survey-service/internal/models"
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateSurveyCreate validates survey creation business rules
func (bv *BusinessValidator) ValidateSurveyCreate(req *SurveyCreateRequest) ValidationErrors {
	return bv.Validate(req)
}

// ValidateSurveyUpdate validates survey update business rules
func (bv *BusinessValidator) ValidateSurveyUpdate(req *SurveyUpdateRequest, existing *models.Survey) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if req.Status != nil && !models.ValidTransition(existing.Status, *req.Status) {
		errors = append(errors, ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("cannot transition from %s to %s", existing.Status, *req.Status),
			Value:   *req.Status,
			Rule:    "status_transition",
		})
	}

	return errors
}

// ValidateQuestionCreate validates question creation business rules
func (bv *BusinessValidator) ValidateQuestionCreate(req *QuestionCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	errors = append(errors, bv.validateQuestionOptions(req.Type, req.Options, false)...)

	return errors
}

// ValidateQuestionUpdate validates question update business rules against the
// stored question. Option rules apply only when the request replaces options.
func (bv *BusinessValidator) ValidateQuestionUpdate(req *QuestionUpdateRequest, existing *models.Question) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	qType := existing.Type
	if req.Type != nil {
		qType = *req.Type
	}
	if req.Options != nil {
		errors = append(errors, bv.validateQuestionOptions(qType, req.Options, false)...)
	}

	return errors
}

// ValidateStatusTransition validates survey status transitions. Publishing
// additionally requires at least one question.
func (bv *BusinessValidator) ValidateStatusTransition(currentStatus, newStatus models.SurveyStatus, questionCount int64) ValidationErrors {
	var errors ValidationErrors

	if !models.ValidTransition(currentStatus, newStatus) {
		errors = append(errors, ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("cannot transition from %s to %s", currentStatus, newStatus),
			Value:   newStatus,
			Rule:    "status_transition",
		})
	}

	if newStatus == models.StatusPublished && questionCount == 0 {
		errors = append(errors, ValidationError{
			Field:   "questions",
			Message: "survey must have at least one question before publishing",
			Value:   questionCount,
			Rule:    "business_logic",
		})
	}

	return errors
}

// validateQuestionOptions checks option shape against the question type:
// choice questions need at least two options, text questions take none.
func (bv *BusinessValidator) validateQuestionOptions(qType models.QuestionType, options []QuestionOptionRequest, optionsOptional bool) ValidationErrors {
	var errors ValidationErrors

	switch qType {
	case models.TypeSingleChoice, models.TypeMultipleChoice:
		if len(options) < 2 && !optionsOptional {
			errors = append(errors, ValidationError{
				Field:   "options",
				Message: "choice questions require at least 2 options",
				Value:   len(options),
				Rule:    "business_logic",
			})
		}
	case models.TypeText:
		if len(options) > 0 {
			errors = append(errors, ValidationError{
				Field:   "options",
				Message: "text questions cannot have options",
				Value:   len(options),
				Rule:    "business_logic",
			})
		}
	}

	return errors
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	// Title validation (1-200 characters)
	bv.validate.RegisterValidation("survey_title", func(fl validator.FieldLevel) bool {
		title := strings.TrimSpace(fl.Field().String())
		return len(title) >= 1 && len(title) <= 200
	})

	// Description validation (max 1000 characters)
	bv.validate.RegisterValidation("survey_description", func(fl validator.FieldLevel) bool {
		desc := fl.Field().String()
		return len(desc) <= 1000
	})

	// Question text validation (1-2000 characters)
	bv.validate.RegisterValidation("question_text", func(fl validator.FieldLevel) bool {
		text := strings.TrimSpace(fl.Field().String())
		return len(text) >= 1 && len(text) <= 2000
	})

	// question type validation
	bv.validate.RegisterValidation("question_type", func(fl validator.FieldLevel) bool {
		qType := fl.Field().String()
		validTypes := []models.QuestionType{models.TypeText, models.TypeSingleChoice, models.TypeMultipleChoice}
		for _, vt := range validTypes {
			if models.QuestionType(qType) == vt {
				return true
			}
		}
		return false
	})

	// survey status validation
	bv.validate.RegisterValidation("survey_status", func(fl validator.FieldLevel) bool {
		status := fl.Field().String()
		validStatuses := []models.SurveyStatus{models.StatusDraft, models.StatusPublished, models.StatusArchived}
		for _, vs := range validStatuses {
			if models.SurveyStatus(status) == vs {
				return true
			}
		}
		return false
	})
}
