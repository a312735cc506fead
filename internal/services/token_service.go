package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/surveyer/survey-service/internal/models"
	"github.com/surveyer/survey-service/internal/repositories"
	"github.com/surveyer/survey-service/internal/validator"
)

// tokenGenerationAttempts bounds the uniqueness retry loop; collisions on
// 128-bit tokens are effectively impossible, the bound guards against a
// broken random source.
const tokenGenerationAttempts = 5

type tokenService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	notifier  NotificationEventService
}

func NewTokenService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, notifier NotificationEventService) TokenService {
	return &tokenService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		notifier:  notifier,
	}
}

// Issue returns the survey's existing valid token when one exists, so
// repeated calls hand out the same share link. A new token is minted only
// when none is active.
func (s *tokenService) Issue(ctx context.Context, surveyID uint, req *IssueTokenRequest, userID string) (*TokenDetail, error) {
	s.logger.Info("Issuing token", "survey_id", surveyID, "user_id", userID)

	if req != nil {
		if err := s.validator.Validate(req); err != nil {
			return nil, err
		}
	}

	survey, err := s.repo.Survey().GetByID(ctx, nil, surveyID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}

	if survey.CreatedBy != userID {
		return nil, NewPermissionError(userID, surveyID, "survey", "issue_token", "not owner")
	}

	if !survey.IsPublished() {
		return nil, ErrSurveyNotPublished
	}

	ttl := models.DefaultTokenTTL
	if req != nil && req.ExpiresInDays != nil {
		ttl = time.Duration(*req.ExpiresInDays) * 24 * time.Hour
	}

	for attempt := 0; attempt < tokenGenerationAttempts; attempt++ {
		now := time.Now()

		// Idempotent reuse of a still-valid token.
		existing, err := s.repo.Token().GetBySurvey(ctx, nil, surveyID)
		if err != nil && !repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("failed to look up existing token: %w", err)
		}
		if existing != nil && existing.Valid(now) {
			s.logger.Info("Reusing valid token", "survey_id", surveyID, "token_id", existing.ID)
			return &TokenDetail{
				Token:     existing.Token,
				SurveyID:  existing.SurveyID,
				ExpiresAt: existing.ExpiresAt,
				IsActive:  existing.IsActive,
				Reused:    true,
			}, nil
		}

		value, err := s.generateUniqueToken(ctx)
		if err != nil {
			return nil, err
		}

		token := &models.SurveyToken{
			Token:     value,
			SurveyID:  surveyID,
			IsActive:  true,
			ExpiresAt: now.Add(ttl),
		}

		if err := s.repo.Token().Create(ctx, nil, token); err != nil {
			// A concurrent issue can win the race; the unique index is the
			// arbiter and the winner's token is picked up by the reuse
			// lookup on the next pass.
			if repositories.IsDuplicateKeyError(err) {
				continue
			}
			return nil, fmt.Errorf("failed to create token: %w", err)
		}

		s.logger.Info("Token issued successfully", "survey_id", surveyID, "token_id", token.ID, "expires_at", token.ExpiresAt)

		if s.notifier != nil {
			if err := s.notifier.NotifyTokenIssued(ctx, survey, token); err != nil {
				s.logger.Error("Failed to publish token issued event", "survey_id", surveyID, "error", err)
			}
		}

		return &TokenDetail{
			Token:     token.Token,
			SurveyID:  token.SurveyID,
			ExpiresAt: token.ExpiresAt,
			IsActive:  token.IsActive,
		}, nil
	}

	return nil, fmt.Errorf("failed to issue token after %d attempts", tokenGenerationAttempts)
}

// Revoke deactivates a token. Revoking an already revoked token is a no-op.
func (s *tokenService) Revoke(ctx context.Context, token string, userID string) error {
	s.logger.Info("Revoking token", "user_id", userID)

	surveyToken, err := s.repo.Token().GetByToken(ctx, nil, token)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrTokenNotFound
		}
		return fmt.Errorf("failed to get token: %w", err)
	}

	survey, err := s.repo.Survey().GetByID(ctx, nil, surveyToken.SurveyID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSurveyNotFound
		}
		return fmt.Errorf("failed to get survey: %w", err)
	}

	if survey.CreatedBy != userID {
		return NewPermissionError(userID, surveyToken.SurveyID, "token", "revoke", "not owner")
	}

	if !surveyToken.IsActive {
		return nil
	}

	surveyToken.IsActive = false
	if err := s.repo.Token().Update(ctx, nil, surveyToken); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	s.logger.Info("Token revoked successfully", "survey_id", surveyToken.SurveyID, "token_id", surveyToken.ID)

	if s.notifier != nil {
		if err := s.notifier.NotifyTokenRevoked(ctx, surveyToken); err != nil {
			s.logger.Error("Failed to publish token revoked event", "survey_id", surveyToken.SurveyID, "error", err)
		}
	}

	return nil
}

// Validate resolves a share token to its published survey. Unknown, revoked
// and expired tokens all produce the same error.
func (s *tokenService) Validate(ctx context.Context, token string) (*SurveyDetail, error) {
	surveyToken, err := s.repo.Token().GetValidToken(ctx, nil, token, time.Now())
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTokenInvalidOrExpired
		}
		return nil, fmt.Errorf("failed to validate token: %w", err)
	}

	survey, err := s.repo.Survey().GetPublishedByID(ctx, nil, surveyToken.SurveyID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			// Survey was archived after the token went out.
			return nil, ErrTokenInvalidOrExpired
		}
		return nil, fmt.Errorf("failed to get survey for token: %w", err)
	}

	return &SurveyDetail{Survey: survey}, nil
}

// generateUniqueToken mints opaque token values until one is unused.
func (s *tokenService) generateUniqueToken(ctx context.Context) (string, error) {
	for i := 0; i < tokenGenerationAttempts; i++ {
		value := strings.ReplaceAll(uuid.New().String(), "-", "")

		exists, err := s.repo.Token().ExistsByToken(ctx, nil, value)
		if err != nil {
			return "", fmt.Errorf("failed to check token uniqueness: %w", err)
		}
		if !exists {
			return value, nil
		}
	}

	return "", fmt.Errorf("failed to generate unique token after %d attempts", tokenGenerationAttempts)
}
