package models

import (
	"time"
)

type SurveyStatus string

const (
	StatusDraft     SurveyStatus = "Draft"
	StatusPublished SurveyStatus = "Published"
	StatusArchived  SurveyStatus = "Archived"
)

// ValidTransition reports whether a survey may move from one status to another.
// Re-applying the current status is a no-op and always allowed; archived
// surveys can be republished, which also covers reactivation after a soft
// delete.
func ValidTransition(from, to SurveyStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case StatusDraft:
		return to == StatusPublished || to == StatusArchived
	case StatusPublished:
		return to == StatusArchived || to == StatusDraft
	case StatusArchived:
		return to == StatusPublished || to == StatusDraft
	}
	return false
}

type Survey struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	Title       string       `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string      `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`
	Status      SurveyStatus `json:"status" gorm:"default:Draft;index" validate:"omitempty,oneof=Draft Published Archived"`

	// Metadata
	CreatedBy string    `json:"created_by" gorm:"not null;index;size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Questions []Question `json:"questions" gorm:"foreignKey:SurveyID;constraint:OnDelete:CASCADE"`

	// Computed fields (not stored)
	QuestionsCount int   `json:"questions_count" gorm:"-"`
	ResponseCount  int64 `json:"response_count" gorm:"-"`
}

func (Survey) TableName() string {
	return "surveys"
}

// IsPublished reports whether the survey accepts public reads and submissions.
func (s *Survey) IsPublished() bool {
	return s.Status == StatusPublished
}
