package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/surveyer/survey-service/internal/models"
	"github.com/surveyer/survey-service/internal/repositories"
	"github.com/surveyer/survey-service/internal/validator"
)

type surveyService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	notifier  NotificationEventService
}

func NewSurveyService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, notifier NotificationEventService) SurveyService {
	return &surveyService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		notifier:  notifier,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *surveyService) Create(ctx context.Context, req *CreateSurveyRequest, creatorID string) (*SurveyDetail, error) {
	s.logger.Info("Creating survey", "creator_id", creatorID, "title", req.Title)

	if errors := s.validator.GetBusinessValidator().ValidateSurveyCreate(req); len(errors) > 0 {
		return nil, errors
	}

	survey := &models.Survey{
		Title:       req.Title,
		Description: req.Description,
		Status:      models.StatusDraft,
		CreatedBy:   creatorID,
	}

	if err := s.repo.Survey().Create(ctx, nil, survey); err != nil {
		return nil, fmt.Errorf("failed to create survey: %w", err)
	}

	s.logger.Info("Survey created successfully", "survey_id", survey.ID)

	return s.buildSurveyDetail(survey, creatorID), nil
}

func (s *surveyService) GetByID(ctx context.Context, id uint, userID string) (*SurveyDetail, error) {
	survey, err := s.repo.Survey().GetByIDWithQuestions(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}

	if survey.CreatedBy != userID {
		return nil, NewPermissionError(userID, id, "survey", "read", "not owner")
	}

	return s.buildSurveyDetail(survey, userID), nil
}

func (s *surveyService) Update(ctx context.Context, id uint, req *UpdateSurveyRequest, userID string) (*SurveyDetail, error) {
	s.logger.Info("Updating survey", "survey_id", id, "user_id", userID)

	survey, err := s.repo.Survey().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}

	if survey.CreatedBy != userID {
		return nil, NewPermissionError(userID, id, "survey", "update", "not owner")
	}

	if errors := s.validator.GetBusinessValidator().ValidateSurveyUpdate(req, survey); len(errors) > 0 {
		return nil, errors
	}

	// Publishing through update carries the same question requirement as the
	// publish operation.
	wasStatus := survey.Status
	if req.Status != nil && *req.Status == models.StatusPublished && wasStatus != models.StatusPublished {
		count, err := s.repo.Question().CountBySurvey(ctx, nil, id)
		if err != nil {
			return nil, fmt.Errorf("failed to count questions: %w", err)
		}
		if count == 0 {
			return nil, ErrSurveyNotPublishable
		}
	}

	s.applySurveyUpdates(survey, req)

	if err := s.repo.Survey().Update(ctx, nil, survey); err != nil {
		return nil, fmt.Errorf("failed to update survey: %w", err)
	}

	s.notifyStatusChange(ctx, survey, wasStatus)

	s.logger.Info("Survey updated successfully", "survey_id", id)

	return s.GetByID(ctx, id, userID)
}

// Delete archives the survey instead of removing rows, keeping collected
// responses reachable. Archiving an archived survey is a no-op.
func (s *surveyService) Delete(ctx context.Context, id uint, userID string) error {
	s.logger.Info("Deleting survey", "survey_id", id, "user_id", userID)

	survey, err := s.repo.Survey().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSurveyNotFound
		}
		return fmt.Errorf("failed to get survey: %w", err)
	}

	if survey.CreatedBy != userID {
		return NewPermissionError(userID, id, "survey", "delete", "not owner")
	}

	if survey.Status == models.StatusArchived {
		return nil
	}

	wasStatus := survey.Status
	survey.Status = models.StatusArchived
	survey.UpdatedAt = time.Now()

	if err := s.repo.Survey().Update(ctx, nil, survey); err != nil {
		return fmt.Errorf("failed to archive survey: %w", err)
	}

	s.notifyStatusChange(ctx, survey, wasStatus)

	s.logger.Info("Survey archived successfully", "survey_id", id)
	return nil
}

// ===== PUBLIC READ PATHS =====

func (s *surveyService) GetPublished(ctx context.Context, id uint) (*SurveyDetail, error) {
	survey, err := s.repo.Survey().GetPublishedByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get published survey: %w", err)
	}

	return &SurveyDetail{Survey: survey}, nil
}

func (s *surveyService) ListPublished(ctx context.Context, filters repositories.SurveyFilters) (*SurveyListResult, error) {
	surveys, err := s.repo.Survey().ListPublished(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list published surveys: %w", err)
	}

	return s.buildListResult(surveys, "", filters), nil
}

// ===== OWNER OPERATIONS =====

func (s *surveyService) ListByCreator(ctx context.Context, creatorID string, filters repositories.SurveyFilters) (*SurveyListResult, error) {
	surveys, err := s.repo.Survey().ListByCreator(ctx, nil, creatorID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list surveys by creator: %w", err)
	}

	total, err := s.repo.Survey().CountByCreator(ctx, nil, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to count surveys by creator: %w", err)
	}

	result := s.buildListResult(surveys, creatorID, filters)
	result.Total = total
	return result, nil
}

func (s *surveyService) Publish(ctx context.Context, id uint, userID string) (*SurveyDetail, error) {
	s.logger.Info("Publishing survey", "survey_id", id, "user_id", userID)

	survey, err := s.repo.Survey().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}

	if survey.CreatedBy != userID {
		return nil, NewPermissionError(userID, id, "survey", "publish", "not owner")
	}

	if !models.ValidTransition(survey.Status, models.StatusPublished) {
		return nil, ErrInvalidStatusTransition
	}

	questionCount, err := s.repo.Question().CountBySurvey(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}
	if questionCount == 0 {
		return nil, ErrSurveyNotPublishable
	}

	wasStatus := survey.Status
	survey.Status = models.StatusPublished
	survey.UpdatedAt = time.Now()

	if err := s.repo.Survey().Update(ctx, nil, survey); err != nil {
		return nil, fmt.Errorf("failed to publish survey: %w", err)
	}

	s.notifyStatusChange(ctx, survey, wasStatus)

	s.logger.Info("Survey published successfully", "survey_id", id, "question_count", questionCount)

	return s.buildSurveyDetail(survey, userID), nil
}

// ===== STATISTICS =====

func (s *surveyService) GetStats(ctx context.Context, id uint, userID string) (*repositories.SurveyStats, error) {
	survey, err := s.repo.Survey().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}

	if survey.CreatedBy != userID {
		return nil, NewPermissionError(userID, id, "survey", "view_stats", "not owner")
	}

	stats, err := s.repo.Survey().GetStats(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get survey stats: %w", err)
	}

	return stats, nil
}

func (s *surveyService) GetCreatorStats(ctx context.Context, creatorID string) (*repositories.CreatorStats, error) {
	stats, err := s.repo.Survey().GetCreatorStats(ctx, nil, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get creator stats: %w", err)
	}

	return stats, nil
}

// ===== PERMISSION CHECKS =====

func (s *surveyService) CanEdit(ctx context.Context, surveyID uint, userID string) (bool, error) {
	survey, err := s.repo.Survey().GetByID(ctx, nil, surveyID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, nil
		}
		return false, err
	}

	return survey.CreatedBy == userID, nil
}

// ===== HELPERS =====

func (s *surveyService) buildSurveyDetail(survey *models.Survey, userID string) *SurveyDetail {
	isOwner := userID != "" && survey.CreatedBy == userID
	return &SurveyDetail{
		Survey:    survey,
		CanEdit:   isOwner,
		CanDelete: isOwner && survey.Status != models.StatusArchived,
	}
}

func (s *surveyService) buildListResult(surveys []*models.Survey, userID string, filters repositories.SurveyFilters) *SurveyListResult {
	result := &SurveyListResult{
		Surveys: make([]*SurveyDetail, len(surveys)),
		Total:   int64(len(surveys)),
		Page:    (filters.Offset / max(filters.Limit, 1)) + 1,
		Size:    filters.Limit,
	}
	for i, survey := range surveys {
		result.Surveys[i] = s.buildSurveyDetail(survey, userID)
	}
	return result
}

// applySurveyUpdates applies only the fields present in the request.
func (s *surveyService) applySurveyUpdates(survey *models.Survey, req *UpdateSurveyRequest) {
	if req.Title != nil {
		survey.Title = *req.Title
	}
	if req.Description != nil {
		survey.Description = req.Description
	}
	if req.Status != nil {
		survey.Status = *req.Status
	}
	survey.UpdatedAt = time.Now()
}

// notifyStatusChange publishes lifecycle events without failing the mutation.
func (s *surveyService) notifyStatusChange(ctx context.Context, survey *models.Survey, wasStatus models.SurveyStatus) {
	if s.notifier == nil || survey.Status == wasStatus {
		return
	}

	var err error
	switch survey.Status {
	case models.StatusPublished:
		count, countErr := s.repo.Question().CountBySurvey(ctx, nil, survey.ID)
		if countErr != nil {
			count = 0
		}
		err = s.notifier.NotifySurveyPublished(ctx, survey, count)
	case models.StatusArchived:
		err = s.notifier.NotifySurveyArchived(ctx, survey)
	}

	if err != nil {
		s.logger.Error("Failed to publish survey lifecycle event",
			"survey_id", survey.ID,
			"status", survey.Status,
			"error", err)
	}
}
