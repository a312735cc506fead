package models

import (
	"time"
)

// DefaultTokenTTL is applied when a token is issued without an explicit
// expiry.
const DefaultTokenTTL = 30 * 24 * time.Hour

// SurveyToken is an opaque bearer credential granting public read and submit
// access to exactly one survey. Tokens are deactivated, never deleted.
type SurveyToken struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Token    string `json:"token" gorm:"not null;size:64;uniqueIndex"`
	SurveyID uint   `json:"survey_id" gorm:"not null;index"`
	IsActive bool   `json:"is_active" gorm:"not null;default:true"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`

	// Relations
	Survey Survey `json:"-" gorm:"foreignKey:SurveyID"`
}

func (SurveyToken) TableName() string {
	return "survey_tokens"
}

// Valid reports whether the token is usable at the given instant. Expiry is
// evaluated lazily here; there is no background sweep.
func (t *SurveyToken) Valid(now time.Time) bool {
	return t.IsActive && t.ExpiresAt.After(now)
}
