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

type QuestionPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewQuestionPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.QuestionRepository {
	return &QuestionPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (q *QuestionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return q.db
}

func (q *QuestionPostgreSQL) invalidate(ctx context.Context, surveyID uint) {
	q.cacheManager.InvalidateSurvey(ctx, surveyID)
}

func (q *QuestionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	if err := q.getDB(tx).WithContext(ctx).Create(question).Error; err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	q.invalidate(ctx, question.SurveyID)
	return nil
}

func (q *QuestionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	var question models.Question
	err := q.getDB(tx).WithContext(ctx).
		Preload("Options").
		First(&question, id).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// GetByIDWithSurvey loads the question together with its parent survey for
// ownership checks.
func (q *QuestionPostgreSQL) GetByIDWithSurvey(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	var question models.Question
	err := q.getDB(tx).WithContext(ctx).
		Preload("Survey").
		Preload("Options").
		First(&question, id).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	err := q.getDB(tx).WithContext(ctx).
		Model(&models.Question{}).
		Where("id = ?", question.ID).
		Updates(map[string]interface{}{
			"text":           question.Text,
			"type":           question.Type,
			"question_order": question.Order,
			"updated_at":     question.UpdatedAt,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}
	q.invalidate(ctx, question.SurveyID)
	return nil
}

// Delete removes a question and cascades to its options. Recorded answers
// referencing the question are kept as historical data.
func (q *QuestionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := q.getDB(tx).WithContext(ctx)

	var question models.Question
	if err := db.Select("id, survey_id").First(&question, id).Error; err != nil {
		return err
	}

	if err := db.Where("question_id = ?", id).Delete(&models.QuestionOption{}).Error; err != nil {
		return fmt.Errorf("failed to delete question options: %w", err)
	}
	if err := db.Delete(&models.Question{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}

	q.invalidate(ctx, question.SurveyID)
	return nil
}

func (q *QuestionPostgreSQL) ListBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint) ([]*models.Question, error) {
	var questions []*models.Question
	err := q.getDB(tx).WithContext(ctx).
		Where("survey_id = ?", surveyID).
		Order("question_order ASC").
		Preload("Options").
		Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, nil
}

func (q *QuestionPostgreSQL) CountBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint) (int64, error) {
	var count int64
	err := q.getDB(tx).WithContext(ctx).
		Model(&models.Question{}).
		Where("survey_id = ?", surveyID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return count, nil
}

func (q *QuestionPostgreSQL) CreateOption(ctx context.Context, tx *gorm.DB, option *models.QuestionOption) error {
	if err := q.getDB(tx).WithContext(ctx).Create(option).Error; err != nil {
		return fmt.Errorf("failed to create option: %w", err)
	}
	return nil
}

func (q *QuestionPostgreSQL) CreateOptions(ctx context.Context, tx *gorm.DB, options []*models.QuestionOption) error {
	if len(options) == 0 {
		return nil
	}
	if err := q.getDB(tx).WithContext(ctx).Create(options).Error; err != nil {
		return fmt.Errorf("failed to create options: %w", err)
	}
	return nil
}

func (q *QuestionPostgreSQL) DeleteOptionsByQuestion(ctx context.Context, tx *gorm.DB, questionID uint) error {
	err := q.getDB(tx).WithContext(ctx).
		Where("question_id = ?", questionID).
		Delete(&models.QuestionOption{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete options: %w", err)
	}
	return nil
}

func (q *QuestionPostgreSQL) ListOptionsByQuestion(ctx context.Context, tx *gorm.DB, questionID uint) ([]*models.QuestionOption, error) {
	var options []*models.QuestionOption
	err := q.getDB(tx).WithContext(ctx).
		Where("question_id = ?", questionID).
		Order("id ASC").
		Find(&options).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list options: %w", err)
	}
	return options, nil
}
