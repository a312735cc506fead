package models

import (
	"time"
)

// QuestionType is an open tag: the constants below are the set the UI renders,
// but unknown values are stored verbatim so new types can be introduced
// without a migration.
type QuestionType string

const (
	TypeText           QuestionType = "TEXT"
	TypeSingleChoice   QuestionType = "SINGLE_CHOICE"
	TypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
)

type Question struct {
	ID       uint         `json:"id" gorm:"primaryKey"`
	SurveyID uint         `json:"survey_id" gorm:"not null;index"`
	Text     string       `json:"text" gorm:"type:text;not null" validate:"required"`
	Type     QuestionType `json:"type" gorm:"not null;size:50;index"`

	// Order determines display sequence within a survey. Values are not
	// reassigned on deletion, so gaps are expected.
	Order int `json:"order" gorm:"column:question_order;not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Survey  Survey           `json:"-" gorm:"foreignKey:SurveyID"`
	Options []QuestionOption `json:"options" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
}

type QuestionOption struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Text       string `json:"text" gorm:"type:text;not null" validate:"required"`

	CreatedAt time.Time `json:"created_at"`
}

func (Question) TableName() string {
	return "questions"
}

func (QuestionOption) TableName() string {
	return "question_options"
}
