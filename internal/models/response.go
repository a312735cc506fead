package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"
)

type SurveyResponse struct {
	ID              uint   `json:"id" gorm:"primaryKey"`
	SurveyID        uint   `json:"survey_id" gorm:"not null;index;uniqueIndex:idx_responses_survey_email"`
	RespondentEmail string `json:"respondent_email" gorm:"not null;size:255;uniqueIndex:idx_responses_survey_email" validate:"required,email"`

	SubmittedAt time.Time `json:"submitted_at" gorm:"autoCreateTime;index"`

	// Client context captured at submission time (user agent, locale, remote
	// address). Free-form, never interpreted by the core.
	Metadata datatypes.JSON `json:"metadata,omitempty" gorm:"type:jsonb"`

	// Relations
	Survey  Survey   `json:"-" gorm:"foreignKey:SurveyID"`
	Answers []Answer `json:"answers" gorm:"foreignKey:SurveyResponseID;constraint:OnDelete:CASCADE"`
}

type Answer struct {
	ID               uint `json:"id" gorm:"primaryKey"`
	SurveyResponseID uint `json:"survey_response_id" gorm:"not null;index"`
	QuestionID       uint `json:"question_id" gorm:"not null;index"`

	AnswerText *string `json:"answer_text" gorm:"type:text"`

	// Comma-joined decimal option ids for choice questions. NULL when nothing
	// was selected, never the empty string.
	SelectedOptions *string `json:"selected_options" gorm:"size:1000"`

	// Relations
	Question Question `json:"-" gorm:"foreignKey:QuestionID"`
}

func (SurveyResponse) TableName() string {
	return "survey_responses"
}

func (Answer) TableName() string {
	return "answers"
}

const selectedOptionsSeparator = ","

// EncodeSelectedOptions serializes an ordered option id list into the stored
// wire form. An empty or nil list encodes to nil.
func EncodeSelectedOptions(ids []uint) *string {
	if len(ids) == 0 {
		return nil
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	joined := strings.Join(parts, selectedOptionsSeparator)
	return &joined
}

// DecodeSelectedOptions parses the stored form back into the ordered id list.
// A nil or empty field decodes to nil, never to a single empty-string id.
func DecodeSelectedOptions(encoded *string) ([]uint, error) {
	if encoded == nil || *encoded == "" {
		return nil, nil
	}
	parts := strings.Split(*encoded, selectedOptionsSeparator)
	ids := make([]uint, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid selected option id %q: %w", part, err)
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

// SelectedOptionIDs decodes the answer's selection, returning nil when the
// stored field is absent or malformed.
func (a *Answer) SelectedOptionIDs() []uint {
	ids, err := DecodeSelectedOptions(a.SelectedOptions)
	if err != nil {
		return nil
	}
	return ids
}
