package events

import "time"

// Event types carried in the envelope's Type field.
const (
	EventSurveyPublished = "survey.published"
	EventSurveyArchived  = "survey.archived"
	EventTokenIssued     = "survey.token.issued"
	EventTokenRevoked    = "survey.token.revoked"
)

// SurveyPublishedEvent notifies downstream consumers that a survey went live.
type SurveyPublishedEvent struct {
	SurveyID      uint      `json:"survey_id"`
	Title         string    `json:"title"`
	CreatedBy     string    `json:"created_by"`
	QuestionCount int       `json:"question_count"`
	PublishedAt   time.Time `json:"published_at"`
}

// SurveyArchivedEvent notifies that a survey stopped accepting responses.
type SurveyArchivedEvent struct {
	SurveyID   uint      `json:"survey_id"`
	Title      string    `json:"title"`
	CreatedBy  string    `json:"created_by"`
	ArchivedAt time.Time `json:"archived_at"`
}

// TokenIssuedEvent carries the share link material for a freshly issued token.
type TokenIssuedEvent struct {
	SurveyID  uint      `json:"survey_id"`
	Title     string    `json:"title"`
	CreatedBy string    `json:"created_by"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenRevokedEvent signals that a share link stopped working.
type TokenRevokedEvent struct {
	SurveyID  uint      `json:"survey_id"`
	Token     string    `json:"token"`
	RevokedAt time.Time `json:"revoked_at"`
}
