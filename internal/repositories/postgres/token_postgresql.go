package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/surveyer/survey-service/internal/cache"
	"github.com/surveyer/survey-service/internal/models"
	"github.com/surveyer/survey-service/internal/repositories"
)

type TokenPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewTokenPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.TokenRepository {
	return &TokenPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (t *TokenPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return t.db
}

func (t *TokenPostgreSQL) Create(ctx context.Context, tx *gorm.DB, token *models.SurveyToken) error {
	if err := t.getDB(tx).WithContext(ctx).Create(token).Error; err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}
	cache.SafeDelete(ctx, t.cacheManager.Stats, fmt.Sprintf("survey:%d", token.SurveyID))
	return nil
}

func (t *TokenPostgreSQL) Update(ctx context.Context, tx *gorm.DB, token *models.SurveyToken) error {
	err := t.getDB(tx).WithContext(ctx).
		Model(&models.SurveyToken{}).
		Where("id = ?", token.ID).
		Updates(map[string]interface{}{
			"is_active":  token.IsActive,
			"expires_at": token.ExpiresAt,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update token: %w", err)
	}
	cache.SafeDelete(ctx, t.cacheManager.Token, fmt.Sprintf("value:%s", token.Token))
	cache.SafeDelete(ctx, t.cacheManager.Stats, fmt.Sprintf("survey:%d", token.SurveyID))
	return nil
}

func (t *TokenPostgreSQL) GetByToken(ctx context.Context, tx *gorm.DB, token string) (*models.SurveyToken, error) {
	var surveyToken models.SurveyToken
	err := t.getDB(tx).WithContext(ctx).
		Where("token = ?", token).
		First(&surveyToken).Error
	if err != nil {
		return nil, err
	}
	return &surveyToken, nil
}

// GetBySurvey returns the most recently issued token for a survey.
func (t *TokenPostgreSQL) GetBySurvey(ctx context.Context, tx *gorm.DB, surveyID uint) (*models.SurveyToken, error) {
	var surveyToken models.SurveyToken
	err := t.getDB(tx).WithContext(ctx).
		Where("survey_id = ?", surveyID).
		Order("created_at DESC").
		First(&surveyToken).Error
	if err != nil {
		return nil, err
	}
	return &surveyToken, nil
}

// GetValidToken resolves a token on the public path. It caches the row with a
// short TTL; revocation takes effect within the cache window at the latest,
// since Update also evicts the entry.
func (t *TokenPostgreSQL) GetValidToken(ctx context.Context, tx *gorm.DB, token string, now time.Time) (*models.SurveyToken, error) {
	cacheKey := fmt.Sprintf("value:%s", token)
	var surveyToken models.SurveyToken

	err := t.cacheManager.Token.CacheOrExecute(ctx, cacheKey, &surveyToken, cache.TokenCacheConfig.TTL, func() (interface{}, error) {
		var dbToken models.SurveyToken
		err := t.getDB(tx).WithContext(ctx).
			Where("token = ?", token).
			First(&dbToken).Error
		if err != nil {
			return nil, err
		}
		return &dbToken, nil
	})
	if err != nil {
		return nil, err
	}

	// Expiry is evaluated against the caller's clock, not the cached row's age.
	if !surveyToken.Valid(now) {
		return nil, gorm.ErrRecordNotFound
	}

	return &surveyToken, nil
}

func (t *TokenPostgreSQL) ExistsByToken(ctx context.Context, tx *gorm.DB, token string) (bool, error) {
	var count int64
	err := t.getDB(tx).WithContext(ctx).
		Model(&models.SurveyToken{}).
		Where("token = ?", token).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check token existence: %w", err)
	}
	return count > 0, nil
}

func (t *TokenPostgreSQL) HasActiveToken(ctx context.Context, tx *gorm.DB, surveyID uint, now time.Time) (bool, error) {
	var count int64
	err := t.getDB(tx).WithContext(ctx).
		Model(&models.SurveyToken{}).
		Where("survey_id = ? AND is_active = ? AND expires_at > ?", surveyID, true, now).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check active token: %w", err)
	}
	return count > 0, nil
}
