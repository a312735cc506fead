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

type SurveyPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewSurveyPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.SurveyRepository {
	return &SurveyPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

// getDB returns the transaction DB if provided, otherwise the default DB
func (s *SurveyPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

func (s *SurveyPostgreSQL) Create(ctx context.Context, tx *gorm.DB, survey *models.Survey) error {
	if err := s.getDB(tx).WithContext(ctx).Create(survey).Error; err != nil {
		return fmt.Errorf("failed to create survey: %w", err)
	}
	cache.SafeInvalidatePattern(ctx, s.cacheManager.Survey, "list:*")

	return nil
}

func (s *SurveyPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Survey, error) {
	var survey models.Survey
	err := s.getDB(tx).WithContext(ctx).First(&survey, id).Error
	if err != nil {
		return nil, err
	}
	return &survey, nil
}

// GetByIDWithQuestions loads the full aggregate: questions in display order
// with their options.
func (s *SurveyPostgreSQL) GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Survey, error) {
	var survey models.Survey
	err := s.getDB(tx).WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.question_order ASC")
		}).
		Preload("Questions.Options").
		First(&survey, id).Error
	if err != nil {
		return nil, err
	}
	survey.QuestionsCount = len(survey.Questions)
	return &survey, nil
}

// GetPublishedByID is the public read path; it caches the aggregate and hides
// any survey that is not currently published behind the store's not-found
// error.
func (s *SurveyPostgreSQL) GetPublishedByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Survey, error) {
	cacheKey := fmt.Sprintf("published:%d", id)
	var survey models.Survey

	err := s.cacheManager.Survey.CacheOrExecute(ctx, cacheKey, &survey, cache.SurveyCacheConfig.TTL, func() (interface{}, error) {
		var dbSurvey models.Survey
		err := s.getDB(tx).WithContext(ctx).
			Where("status = ?", models.StatusPublished).
			Preload("Questions", func(db *gorm.DB) *gorm.DB {
				return db.Order("questions.question_order ASC")
			}).
			Preload("Questions.Options").
			First(&dbSurvey, id).Error
		if err != nil {
			return nil, err
		}
		dbSurvey.QuestionsCount = len(dbSurvey.Questions)
		return &dbSurvey, nil
	})
	if err != nil {
		return nil, err
	}

	return &survey, nil
}

func (s *SurveyPostgreSQL) Update(ctx context.Context, tx *gorm.DB, survey *models.Survey) error {
	err := s.getDB(tx).WithContext(ctx).
		Model(&models.Survey{}).
		Where("id = ?", survey.ID).
		Updates(map[string]interface{}{
			"title":       survey.Title,
			"description": survey.Description,
			"status":      survey.Status,
			"updated_at":  survey.UpdatedAt,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update survey: %w", err)
	}

	s.cacheManager.InvalidateSurvey(ctx, survey.ID)

	return nil
}

func (s *SurveyPostgreSQL) ListPublished(ctx context.Context, tx *gorm.DB, filters repositories.SurveyFilters) ([]*models.Survey, error) {
	var surveys []*models.Survey
	query := s.getDB(tx).WithContext(ctx).
		Where("status = ?", models.StatusPublished).
		Order("created_at DESC")
	query = applySurveyFilters(query, filters)

	if err := query.Find(&surveys).Error; err != nil {
		return nil, fmt.Errorf("failed to list published surveys: %w", err)
	}
	return surveys, nil
}

func (s *SurveyPostgreSQL) ListByCreator(ctx context.Context, tx *gorm.DB, creator string, filters repositories.SurveyFilters) ([]*models.Survey, error) {
	var surveys []*models.Survey
	query := s.getDB(tx).WithContext(ctx).
		Where("created_by = ?", creator).
		Order("created_at DESC")
	query = applySurveyFilters(query, filters)

	if err := query.Find(&surveys).Error; err != nil {
		return nil, fmt.Errorf("failed to list surveys by creator: %w", err)
	}
	return surveys, nil
}

func (s *SurveyPostgreSQL) CountByCreator(ctx context.Context, tx *gorm.DB, creator string) (int64, error) {
	var count int64
	err := s.getDB(tx).WithContext(ctx).
		Model(&models.Survey{}).
		Where("created_by = ?", creator).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count surveys by creator: %w", err)
	}
	return count, nil
}

// GetStats collects raw counts for the owner dashboard; answers are never
// aggregated here.
func (s *SurveyPostgreSQL) GetStats(ctx context.Context, tx *gorm.DB, id uint) (*repositories.SurveyStats, error) {
	cacheKey := fmt.Sprintf("survey:%d", id)
	var stats repositories.SurveyStats

	err := s.cacheManager.Stats.CacheOrExecute(ctx, cacheKey, &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		db := s.getDB(tx).WithContext(ctx)

		var survey models.Survey
		if err := db.First(&survey, id).Error; err != nil {
			return nil, err
		}

		result := &repositories.SurveyStats{
			SurveyID: survey.ID,
			Title:    survey.Title,
			Status:   survey.Status,
		}

		if err := db.Model(&models.Question{}).Where("survey_id = ?", id).Count(&result.QuestionCount).Error; err != nil {
			return nil, fmt.Errorf("failed to count questions: %w", err)
		}
		if err := db.Model(&models.SurveyResponse{}).Where("survey_id = ?", id).Count(&result.ResponseCount).Error; err != nil {
			return nil, fmt.Errorf("failed to count responses: %w", err)
		}

		var tokenCount int64
		err := db.Model(&models.SurveyToken{}).
			Where("survey_id = ? AND is_active = ? AND expires_at > NOW()", id, true).
			Count(&tokenCount).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count tokens: %w", err)
		}
		result.HasActiveToken = tokenCount > 0

		return result, nil
	})
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

func (s *SurveyPostgreSQL) GetCreatorStats(ctx context.Context, tx *gorm.DB, creator string) (*repositories.CreatorStats, error) {
	db := s.getDB(tx).WithContext(ctx)
	stats := &repositories.CreatorStats{}

	if err := db.Model(&models.Survey{}).Where("created_by = ?", creator).Count(&stats.TotalSurveys).Error; err != nil {
		return nil, fmt.Errorf("failed to count surveys: %w", err)
	}
	if err := db.Model(&models.Survey{}).Where("created_by = ? AND status = ?", creator, models.StatusPublished).Count(&stats.PublishedSurveys).Error; err != nil {
		return nil, fmt.Errorf("failed to count published surveys: %w", err)
	}
	if err := db.Model(&models.Survey{}).Where("created_by = ? AND status = ?", creator, models.StatusDraft).Count(&stats.DraftSurveys).Error; err != nil {
		return nil, fmt.Errorf("failed to count draft surveys: %w", err)
	}

	err := db.Model(&models.SurveyResponse{}).
		Joins("JOIN surveys ON surveys.id = survey_responses.survey_id").
		Where("surveys.created_by = ?", creator).
		Count(&stats.TotalResponses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count responses: %w", err)
	}

	return stats, nil
}

func applySurveyFilters(query *gorm.DB, filters repositories.SurveyFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query
}
