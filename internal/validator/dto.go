package validator

import (
	"github.com/surveyer/survey-service/internal/models"
)

// SurveyCreateRequest represents the request structure for creating surveys
type SurveyCreateRequest struct {
	Title       string  `json:"title" validate:"required,survey_title"`
	Description *string `json:"description" validate:"omitempty,survey_description"`
}

// SurveyUpdateRequest represents the request structure for updating surveys.
// Every field is optional; absent fields are left untouched.
type SurveyUpdateRequest struct {
	Title       *string              `json:"title" validate:"omitempty,survey_title"`
	Description *string              `json:"description" validate:"omitempty,survey_description"`
	Status      *models.SurveyStatus `json:"status" validate:"omitempty,survey_status"`
}

// QuestionOptionRequest represents a single answer option
type QuestionOptionRequest struct {
	Text string `json:"text" validate:"required,min=1,max=500"`
}

// QuestionCreateRequest represents the request structure for adding questions
type QuestionCreateRequest struct {
	Text    string                  `json:"text" validate:"required,question_text"`
	Type    models.QuestionType     `json:"type" validate:"required,question_type"`
	Order   int                     `json:"order" validate:"min=0"`
	Options []QuestionOptionRequest `json:"options" validate:"omitempty,max=50,dive"`
}

// QuestionUpdateRequest represents the request structure for updating
// questions. A non-nil Options slice replaces the full option set.
type QuestionUpdateRequest struct {
	Text    *string                 `json:"text" validate:"omitempty,question_text"`
	Type    *models.QuestionType    `json:"type" validate:"omitempty,question_type"`
	Order   *int                    `json:"order" validate:"omitempty,min=0"`
	Options []QuestionOptionRequest `json:"options" validate:"omitempty,max=50,dive"`
}

// TokenIssueRequest optionally overrides the default 30-day token lifetime
type TokenIssueRequest struct {
	ExpiresInDays *int `json:"expires_in_days" validate:"omitempty,min=1,max=365"`
}

// AnswerSubmitRequest carries one respondent answer. Text answers fill Text;
// choice answers fill SelectedOptionIDs.
type AnswerSubmitRequest struct {
	QuestionID        uint    `json:"question_id" validate:"required"`
	Text              *string `json:"text" validate:"omitempty,max=5000"`
	SelectedOptionIDs []uint  `json:"selected_option_ids" validate:"omitempty,max=50"`
}

// ResponseSubmitRequest represents a direct submission against a survey id
type ResponseSubmitRequest struct {
	SurveyID        uint                   `json:"survey_id" validate:"required"`
	RespondentEmail string                 `json:"respondent_email" validate:"required,email"`
	Answers         []AnswerSubmitRequest  `json:"answers" validate:"omitempty,max=200,dive"`
	Metadata        map[string]interface{} `json:"metadata"`
}

// TokenResponseSubmitRequest represents a submission through a share link;
// the survey is resolved from the token in the URL.
type TokenResponseSubmitRequest struct {
	RespondentEmail string                 `json:"respondent_email" validate:"required,email"`
	Answers         []AnswerSubmitRequest  `json:"answers" validate:"omitempty,max=200,dive"`
	Metadata        map[string]interface{} `json:"metadata"`
}

// ResponseListRequest carries owner-side listing filters
type ResponseListRequest struct {
	RespondentEmail *string `json:"respondent_email" form:"respondent_email" validate:"omitempty,email"`
	Limit           int     `json:"limit" form:"limit" validate:"omitempty,min=1,max=500"`
	Offset          int     `json:"offset" form:"offset" validate:"omitempty,min=0"`
}
