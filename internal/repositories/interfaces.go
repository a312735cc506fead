package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/surveyer/survey-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type SurveyFilters struct {
	Status    *models.SurveyStatus `json:"status"`
	CreatedBy *string              `json:"created_by"`
	DateFrom  *time.Time           `json:"date_from"`
	DateTo    *time.Time           `json:"date_to"`
	Limit     int                  `json:"limit"`
	Offset    int                  `json:"offset"`
}

type ResponseFilters struct {
	RespondentEmail *string    `json:"respondent_email"`
	DateFrom        *time.Time `json:"date_from"`
	DateTo          *time.Time `json:"date_to"`
	Limit           int        `json:"limit"`
	Offset          int        `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

// SurveyStats carries raw counts only; answers are never aggregated.
type SurveyStats struct {
	SurveyID       uint                `json:"survey_id"`
	Title          string              `json:"title"`
	Status         models.SurveyStatus `json:"status"`
	QuestionCount  int64               `json:"question_count"`
	ResponseCount  int64               `json:"response_count"`
	HasActiveToken bool                `json:"has_active_token"`
}

type CreatorStats struct {
	TotalSurveys     int64 `json:"total_surveys"`
	PublishedSurveys int64 `json:"published_surveys"`
	DraftSurveys     int64 `json:"draft_surveys"`
	TotalResponses   int64 `json:"total_responses"`
}

// ===== REPOSITORY INTERFACES =====

// SurveyRepository covers survey-aggregate persistence. Every method accepts
// the caller's transaction handle; services pass the request-scoped tx.
type SurveyRepository interface {
	Create(ctx context.Context, tx *gorm.DB, survey *models.Survey) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Survey, error)
	GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Survey, error)
	GetPublishedByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Survey, error)
	Update(ctx context.Context, tx *gorm.DB, survey *models.Survey) error

	ListPublished(ctx context.Context, tx *gorm.DB, filters SurveyFilters) ([]*models.Survey, error)
	ListByCreator(ctx context.Context, tx *gorm.DB, creator string, filters SurveyFilters) ([]*models.Survey, error)
	CountByCreator(ctx context.Context, tx *gorm.DB, creator string) (int64, error)

	GetStats(ctx context.Context, tx *gorm.DB, id uint) (*SurveyStats, error)
	GetCreatorStats(ctx context.Context, tx *gorm.DB, creator string) (*CreatorStats, error)
}

type QuestionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
	GetByIDWithSurvey(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
	Update(ctx context.Context, tx *gorm.DB, question *models.Question) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	ListBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint) ([]*models.Question, error)
	CountBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint) (int64, error)

	// Option management
	CreateOption(ctx context.Context, tx *gorm.DB, option *models.QuestionOption) error
	CreateOptions(ctx context.Context, tx *gorm.DB, options []*models.QuestionOption) error
	DeleteOptionsByQuestion(ctx context.Context, tx *gorm.DB, questionID uint) error
	ListOptionsByQuestion(ctx context.Context, tx *gorm.DB, questionID uint) ([]*models.QuestionOption, error)
}

type ResponseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, response *models.SurveyResponse) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.SurveyResponse, error)
	GetByIDWithSurvey(ctx context.Context, tx *gorm.DB, id uint) (*models.SurveyResponse, error)

	ListBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint, filters ResponseFilters) ([]*models.SurveyResponse, error)
	CountBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint) (int64, error)
	ExistsBySurveyAndEmail(ctx context.Context, tx *gorm.DB, surveyID uint, email string) (bool, error)

	// Answer access
	CreateAnswer(ctx context.Context, tx *gorm.DB, answer *models.Answer) error
	ListAnswersByQuestion(ctx context.Context, tx *gorm.DB, questionID uint) ([]*models.Answer, error)
	ListAnswersByResponse(ctx context.Context, tx *gorm.DB, responseID uint) ([]*models.Answer, error)
}

type TokenRepository interface {
	Create(ctx context.Context, tx *gorm.DB, token *models.SurveyToken) error
	Update(ctx context.Context, tx *gorm.DB, token *models.SurveyToken) error

	GetByToken(ctx context.Context, tx *gorm.DB, token string) (*models.SurveyToken, error)
	GetBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint) (*models.SurveyToken, error)
	GetValidToken(ctx context.Context, tx *gorm.DB, token string, now time.Time) (*models.SurveyToken, error)
	ExistsByToken(ctx context.Context, tx *gorm.DB, token string) (bool, error)
	HasActiveToken(ctx context.Context, tx *gorm.DB, surveyID uint, now time.Time) (bool, error)
}

// IsNotFoundError reports whether err is the store's record-not-found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateKeyError reports whether err is a unique-constraint violation.
// The store backs check-then-act paths (token uniqueness, one response per
// respondent) with unique indexes; callers map this to a conflict.
func IsDuplicateKeyError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
