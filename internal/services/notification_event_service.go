package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/surveyer/survey-service/internal/events"
	"github.com/surveyer/survey-service/internal/models"
	"github.com/surveyer/survey-service/internal/repositories"
	"github.com/surveyer/survey-service/internal/validator"
)

type notificationEventService struct {
	repo           repositories.Repository
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	validator      *validator.Validator
}

func NewNotificationEventService(repo repositories.Repository, eventPublisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) NotificationEventService {
	return &notificationEventService{
		repo:           repo,
		eventPublisher: eventPublisher,
		logger:         logger,
		validator:      validator,
	}
}

func (s *notificationEventService) NotifySurveyPublished(ctx context.Context, survey *models.Survey, questionCount int64) error {
	event := events.NewEvent(events.EventSurveyPublished, &events.SurveyPublishedEvent{
		SurveyID:      survey.ID,
		Title:         survey.Title,
		CreatedBy:     survey.CreatedBy,
		QuestionCount: int(questionCount),
		PublishedAt:   time.Now(),
	})

	if err := s.eventPublisher.Publish(ctx, events.TopicSurveyEvents, event); err != nil {
		return fmt.Errorf("failed to publish survey published event: %w", err)
	}

	s.logger.Info("Survey published event sent", "survey_id", survey.ID, "event_id", event.ID)
	return nil
}

func (s *notificationEventService) NotifySurveyArchived(ctx context.Context, survey *models.Survey) error {
	event := events.NewEvent(events.EventSurveyArchived, &events.SurveyArchivedEvent{
		SurveyID:   survey.ID,
		Title:      survey.Title,
		CreatedBy:  survey.CreatedBy,
		ArchivedAt: time.Now(),
	})

	if err := s.eventPublisher.Publish(ctx, events.TopicSurveyEvents, event); err != nil {
		return fmt.Errorf("failed to publish survey archived event: %w", err)
	}

	s.logger.Info("Survey archived event sent", "survey_id", survey.ID, "event_id", event.ID)
	return nil
}

func (s *notificationEventService) NotifyTokenIssued(ctx context.Context, survey *models.Survey, token *models.SurveyToken) error {
	event := events.NewEvent(events.EventTokenIssued, &events.TokenIssuedEvent{
		SurveyID:  survey.ID,
		Title:     survey.Title,
		CreatedBy: survey.CreatedBy,
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
	})

	if err := s.eventPublisher.Publish(ctx, events.TopicTokenEvents, event); err != nil {
		return fmt.Errorf("failed to publish token issued event: %w", err)
	}

	s.logger.Info("Token issued event sent", "survey_id", survey.ID, "event_id", event.ID)
	return nil
}

func (s *notificationEventService) NotifyTokenRevoked(ctx context.Context, token *models.SurveyToken) error {
	event := events.NewEvent(events.EventTokenRevoked, &events.TokenRevokedEvent{
		SurveyID:  token.SurveyID,
		Token:     token.Token,
		RevokedAt: time.Now(),
	})

	if err := s.eventPublisher.Publish(ctx, events.TopicTokenEvents, event); err != nil {
		return fmt.Errorf("failed to publish token revoked event: %w", err)
	}

	s.logger.Info("Token revoked event sent", "survey_id", token.SurveyID, "event_id", event.ID)
	return nil
}
