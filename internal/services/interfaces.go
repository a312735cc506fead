package services

import (
	"context"
	"time"

	"github.com/surveyer/survey-service/internal/models"
	"github.com/surveyer/survey-service/internal/repositories"
	"github.com/surveyer/survey-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateSurveyRequest = validator.SurveyCreateRequest
type UpdateSurveyRequest = validator.SurveyUpdateRequest
type CreateQuestionRequest = validator.QuestionCreateRequest
type UpdateQuestionRequest = validator.QuestionUpdateRequest
type AddOptionRequest = validator.QuestionOptionRequest
type IssueTokenRequest = validator.TokenIssueRequest
type SubmitResponseRequest = validator.ResponseSubmitRequest
type TokenSubmitRequest = validator.TokenResponseSubmitRequest

type ValidationErrors = validator.ValidationErrors

// SurveyDetail is the survey aggregate plus the caller's capabilities.
type SurveyDetail struct {
	*models.Survey
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

type SurveyListResult struct {
	Surveys []*SurveyDetail `json:"surveys"`
	Total   int64           `json:"total"`
	Page    int             `json:"page"`
	Size    int             `json:"size"`
}

// TokenDetail describes an issued share token. Reused is true when an
// existing valid token was returned instead of minting a new one.
type TokenDetail struct {
	Token     string    `json:"token"`
	SurveyID  uint      `json:"survey_id"`
	ExpiresAt time.Time `json:"expires_at"`
	IsActive  bool      `json:"is_active"`
	Reused    bool      `json:"reused"`
}

// SubmissionResult summarizes an accepted response.
type SubmissionResult struct {
	ResponseID  uint      `json:"response_id"`
	SurveyID    uint      `json:"survey_id"`
	SubmittedAt time.Time `json:"submitted_at"`
	AnswerCount int       `json:"answer_count"`
}

type ResponseListResult struct {
	Responses []*models.SurveyResponse `json:"responses"`
	Total     int64                    `json:"total"`
	Page      int                      `json:"page"`
	Size      int                      `json:"size"`
}

// ===== SERVICE INTERFACES =====

type SurveyService interface {
	// Core CRUD operations
	Create(ctx context.Context, req *CreateSurveyRequest, creatorID string) (*SurveyDetail, error)
	GetByID(ctx context.Context, id uint, userID string) (*SurveyDetail, error)
	Update(ctx context.Context, id uint, req *UpdateSurveyRequest, userID string) (*SurveyDetail, error)
	Delete(ctx context.Context, id uint, userID string) error

	// Public read paths
	GetPublished(ctx context.Context, id uint) (*SurveyDetail, error)
	ListPublished(ctx context.Context, filters repositories.SurveyFilters) (*SurveyListResult, error)

	// Owner operations
	ListByCreator(ctx context.Context, creatorID string, filters repositories.SurveyFilters) (*SurveyListResult, error)
	Publish(ctx context.Context, id uint, userID string) (*SurveyDetail, error)

	// Statistics
	GetStats(ctx context.Context, id uint, userID string) (*repositories.SurveyStats, error)
	GetCreatorStats(ctx context.Context, creatorID string) (*repositories.CreatorStats, error)

	// Permission checks
	CanEdit(ctx context.Context, surveyID uint, userID string) (bool, error)
}

type QuestionService interface {
	Add(ctx context.Context, surveyID uint, req *CreateQuestionRequest, userID string) (*models.Question, error)
	Update(ctx context.Context, id uint, req *UpdateQuestionRequest, userID string) (*models.Question, error)
	Delete(ctx context.Context, id uint, userID string) error
	AddOption(ctx context.Context, questionID uint, req *AddOptionRequest, userID string) (*models.QuestionOption, error)

	// ListBySurvey is the public rendering path, ordered by question order.
	ListBySurvey(ctx context.Context, surveyID uint) ([]*models.Question, error)
}

type TokenService interface {
	// Issue returns the existing valid token for the survey when one exists,
	// otherwise mints a new one.
	Issue(ctx context.Context, surveyID uint, req *IssueTokenRequest, userID string) (*TokenDetail, error)
	Revoke(ctx context.Context, token string, userID string) error

	// Validate resolves a token to its published survey for respondents.
	Validate(ctx context.Context, token string) (*SurveyDetail, error)
}

type ResponseService interface {
	Submit(ctx context.Context, req *SubmitResponseRequest) (*SubmissionResult, error)
	SubmitViaToken(ctx context.Context, token string, req *TokenSubmitRequest) (*SubmissionResult, error)

	ListBySurvey(ctx context.Context, surveyID uint, filters repositories.ResponseFilters, userID string) (*ResponseListResult, error)
	GetByID(ctx context.Context, id uint, userID string) (*models.SurveyResponse, error)
	CountBySurvey(ctx context.Context, surveyID uint) (int64, error)

	AnswersForQuestion(ctx context.Context, questionID uint, userID string) ([]*models.Answer, error)
}

// NotificationEventService publishes lifecycle events for downstream
// consumers. Callers treat failures as non-fatal.
type NotificationEventService interface {
	NotifySurveyPublished(ctx context.Context, survey *models.Survey, questionCount int64) error
	NotifySurveyArchived(ctx context.Context, survey *models.Survey) error
	NotifyTokenIssued(ctx context.Context, survey *models.Survey, token *models.SurveyToken) error
	NotifyTokenRevoked(ctx context.Context, token *models.SurveyToken) error
}

// ExportService renders collected responses as a spreadsheet.
type ExportService interface {
	ExportResponses(ctx context.Context, surveyID uint, userID string) ([]byte, string, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	// Core service getters
	Survey() SurveyService
	Question() QuestionService
	Token() TokenService
	Response() ResponseService
	Notification() NotificationEventService
	Export() ExportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
