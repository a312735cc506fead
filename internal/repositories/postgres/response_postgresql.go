package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/surveyer/survey-service/internal/cache"
	"github.com/surveyer/survey-service/internal/models"
	"github.com/surveyer/survey-service/internal/repositories"
)

type ResponsePostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewResponsePostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ResponseRepository {
	return &ResponsePostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (r *ResponsePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *ResponsePostgreSQL) Create(ctx context.Context, tx *gorm.DB, response *models.SurveyResponse) error {
	if err := r.getDB(tx).WithContext(ctx).Create(response).Error; err != nil {
		return fmt.Errorf("failed to create response: %w", err)
	}
	cache.SafeDelete(ctx, r.cacheManager.Count, fmt.Sprintf("responses:%d", response.SurveyID))
	cache.SafeDelete(ctx, r.cacheManager.Stats, fmt.Sprintf("survey:%d", response.SurveyID))
	return nil
}

func (r *ResponsePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.SurveyResponse, error) {
	var response models.SurveyResponse
	err := r.getDB(tx).WithContext(ctx).
		Preload("Answers").
		First(&response, id).Error
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// GetByIDWithSurvey loads the response with its parent survey for ownership
// checks.
func (r *ResponsePostgreSQL) GetByIDWithSurvey(ctx context.Context, tx *gorm.DB, id uint) (*models.SurveyResponse, error) {
	var response models.SurveyResponse
	err := r.getDB(tx).WithContext(ctx).
		Preload("Survey").
		Preload("Answers").
		First(&response, id).Error
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func (r *ResponsePostgreSQL) ListBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint, filters repositories.ResponseFilters) ([]*models.SurveyResponse, error) {
	var responses []*models.SurveyResponse
	query := r.getDB(tx).WithContext(ctx).
		Where("survey_id = ?", surveyID).
		Order("submitted_at DESC").
		Preload("Answers")

	if filters.RespondentEmail != nil {
		query = query.Where("respondent_email = ?", *filters.RespondentEmail)
	}
	if filters.DateFrom != nil {
		query = query.Where("submitted_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("submitted_at <= ?", *filters.DateTo)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&responses).Error; err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	return responses, nil
}

// CountBySurvey is on the public path and cached with a short TTL.
func (r *ResponsePostgreSQL) CountBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint) (int64, error) {
	cacheKey := fmt.Sprintf("responses:%d", surveyID)
	var count int64

	err := r.cacheManager.Count.CacheOrExecute(ctx, cacheKey, &count, cache.CountCacheConfig.TTL, func() (interface{}, error) {
		var dbCount int64
		err := r.getDB(tx).WithContext(ctx).
			Model(&models.SurveyResponse{}).
			Where("survey_id = ?", surveyID).
			Count(&dbCount).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count responses: %w", err)
		}
		return dbCount, nil
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *ResponsePostgreSQL) ExistsBySurveyAndEmail(ctx context.Context, tx *gorm.DB, surveyID uint, email string) (bool, error) {
	var count int64
	err := r.getDB(tx).WithContext(ctx).
		Model(&models.SurveyResponse{}).
		Where("survey_id = ? AND respondent_email = ?", surveyID, email).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check existing response: %w", err)
	}
	return count > 0, nil
}

func (r *ResponsePostgreSQL) CreateAnswer(ctx context.Context, tx *gorm.DB, answer *models.Answer) error {
	if err := r.getDB(tx).WithContext(ctx).Create(answer).Error; err != nil {
		return fmt.Errorf("failed to create answer: %w", err)
	}
	return nil
}

func (r *ResponsePostgreSQL) ListAnswersByQuestion(ctx context.Context, tx *gorm.DB, questionID uint) ([]*models.Answer, error) {
	var answers []*models.Answer
	err := r.getDB(tx).WithContext(ctx).
		Where("question_id = ?", questionID).
		Order("id ASC").
		Find(&answers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list answers by question: %w", err)
	}
	return answers, nil
}

func (r *ResponsePostgreSQL) ListAnswersByResponse(ctx context.Context, tx *gorm.DB, responseID uint) ([]*models.Answer, error) {
	var answers []*models.Answer
	err := r.getDB(tx).WithContext(ctx).
		Where("survey_response_id = ?", responseID).
		Order("id ASC").
		Find(&answers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list answers by response: %w", err)
	}
	return answers, nil
}
