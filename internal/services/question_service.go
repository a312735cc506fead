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

type questionService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuestionService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) QuestionService {
	return &questionService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

func (s *questionService) Add(ctx context.Context, surveyID uint, req *CreateQuestionRequest, userID string) (*models.Question, error) {
	s.logger.Info("Adding question", "survey_id", surveyID, "user_id", userID, "type", req.Type)

	if errors := s.validator.GetBusinessValidator().ValidateQuestionCreate(req); len(errors) > 0 {
		return nil, errors
	}

	survey, err := s.repo.Survey().GetByID(ctx, nil, surveyID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}

	if survey.CreatedBy != userID {
		return nil, NewPermissionError(userID, surveyID, "survey", "add_question", "not owner")
	}

	question := &models.Question{
		SurveyID: surveyID,
		Text:     req.Text,
		Type:     req.Type,
		Order:    req.Order,
	}

	// Questions default to the end of the survey when no order is given.
	if req.Order == 0 {
		count, err := s.repo.Question().CountBySurvey(ctx, nil, surveyID)
		if err != nil {
			return nil, fmt.Errorf("failed to count questions: %w", err)
		}
		question.Order = int(count) + 1
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Question().Create(ctx, nil, question); err != nil {
			return fmt.Errorf("failed to create question: %w", err)
		}

		if len(req.Options) > 0 {
			options := make([]*models.QuestionOption, len(req.Options))
			for i, opt := range req.Options {
				options[i] = &models.QuestionOption{
					QuestionID: question.ID,
					Text:       opt.Text,
				}
			}
			if err := txRepo.Question().CreateOptions(ctx, nil, options); err != nil {
				return fmt.Errorf("failed to create options: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Question added successfully", "survey_id", surveyID, "question_id", question.ID)

	return s.repo.Question().GetByID(ctx, nil, question.ID)
}

func (s *questionService) Update(ctx context.Context, id uint, req *UpdateQuestionRequest, userID string) (*models.Question, error) {
	s.logger.Info("Updating question", "question_id", id, "user_id", userID)

	question, err := s.repo.Question().GetByIDWithSurvey(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	if question.Survey.CreatedBy != userID {
		return nil, NewPermissionError(userID, id, "question", "update", "not owner")
	}

	if errors := s.validator.GetBusinessValidator().ValidateQuestionUpdate(req, question); len(errors) > 0 {
		return nil, errors
	}

	s.applyQuestionUpdates(question, req)

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Question().Update(ctx, nil, question); err != nil {
			return fmt.Errorf("failed to update question: %w", err)
		}

		// A non-nil options slice replaces the full option set.
		if req.Options != nil {
			if err := txRepo.Question().DeleteOptionsByQuestion(ctx, nil, id); err != nil {
				return fmt.Errorf("failed to delete old options: %w", err)
			}
			if len(req.Options) > 0 {
				options := make([]*models.QuestionOption, len(req.Options))
				for i, opt := range req.Options {
					options[i] = &models.QuestionOption{
						QuestionID: id,
						Text:       opt.Text,
					}
				}
				if err := txRepo.Question().CreateOptions(ctx, nil, options); err != nil {
					return fmt.Errorf("failed to create options: %w", err)
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Question updated successfully", "question_id", id)

	return s.repo.Question().GetByID(ctx, nil, id)
}

// Delete removes the question and its options. Answers already recorded
// against the question stay in place.
func (s *questionService) Delete(ctx context.Context, id uint, userID string) error {
	s.logger.Info("Deleting question", "question_id", id, "user_id", userID)

	question, err := s.repo.Question().GetByIDWithSurvey(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to get question: %w", err)
	}

	if question.Survey.CreatedBy != userID {
		return NewPermissionError(userID, id, "question", "delete", "not owner")
	}

	if err := s.repo.Question().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}

	s.logger.Info("Question deleted successfully", "question_id", id)
	return nil
}

func (s *questionService) AddOption(ctx context.Context, questionID uint, req *AddOptionRequest, userID string) (*models.QuestionOption, error) {
	s.logger.Info("Adding option", "question_id", questionID, "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	question, err := s.repo.Question().GetByIDWithSurvey(ctx, nil, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	if question.Survey.CreatedBy != userID {
		return nil, NewPermissionError(userID, questionID, "question", "add_option", "not owner")
	}

	option := &models.QuestionOption{
		QuestionID: questionID,
		Text:       req.Text,
	}

	if err := s.repo.Question().CreateOption(ctx, nil, option); err != nil {
		return nil, fmt.Errorf("failed to create option: %w", err)
	}

	s.logger.Info("Option added successfully", "question_id", questionID, "option_id", option.ID)
	return option, nil
}

func (s *questionService) ListBySurvey(ctx context.Context, surveyID uint) ([]*models.Question, error) {
	if _, err := s.repo.Survey().GetByID(ctx, nil, surveyID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}

	questions, err := s.repo.Question().ListBySurvey(ctx, nil, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	return questions, nil
}

func (s *questionService) applyQuestionUpdates(question *models.Question, req *UpdateQuestionRequest) {
	if req.Text != nil {
		question.Text = *req.Text
	}
	if req.Type != nil {
		question.Type = *req.Type
	}
	if req.Order != nil {
		question.Order = *req.Order
	}
	question.UpdatedAt = time.Now()
}
