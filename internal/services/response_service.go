package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/surveyer/survey-service/internal/models"
	"github.com/surveyer/survey-service/internal/repositories"
	"github.com/surveyer/survey-service/internal/validator"
)

type responseService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewResponseService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) ResponseService {
	return &responseService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

// ===== SUBMISSION =====

func (s *responseService) Submit(ctx context.Context, req *SubmitResponseRequest) (*SubmissionResult, error) {
	s.logger.Info("Submitting response", "survey_id", req.SurveyID, "answer_count", len(req.Answers))

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	survey, err := s.repo.Survey().GetByID(ctx, nil, req.SurveyID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}

	// Respondents cannot tell a draft or archived survey apart from one that
	// never existed.
	if !survey.IsPublished() {
		return nil, ErrSurveyNotFound
	}

	return s.record(ctx, survey, req.RespondentEmail, req.Answers, req.Metadata)
}

func (s *responseService) SubmitViaToken(ctx context.Context, token string, req *TokenSubmitRequest) (*SubmissionResult, error) {
	s.logger.Info("Submitting response via token", "answer_count", len(req.Answers))

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	surveyToken, err := s.repo.Token().GetValidToken(ctx, nil, token, time.Now())
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTokenInvalidOrExpired
		}
		return nil, fmt.Errorf("failed to validate token: %w", err)
	}

	survey, err := s.repo.Survey().GetByID(ctx, nil, surveyToken.SurveyID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTokenInvalidOrExpired
		}
		return nil, fmt.Errorf("failed to get survey for token: %w", err)
	}

	if !survey.IsPublished() {
		return nil, ErrTokenInvalidOrExpired
	}

	return s.record(ctx, survey, req.RespondentEmail, req.Answers, req.Metadata)
}

// record persists the response and its answers in one transaction. Answers
// referencing questions outside the survey are dropped rather than rejected.
func (s *responseService) record(ctx context.Context, survey *models.Survey, email string, answers []validator.AnswerSubmitRequest, metadata map[string]interface{}) (*SubmissionResult, error) {
	exists, err := s.repo.Response().ExistsBySurveyAndEmail(ctx, nil, survey.ID, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing response: %w", err)
	}
	if exists {
		return nil, ErrDuplicateResponse
	}

	questions, err := s.repo.Question().ListBySurvey(ctx, nil, survey.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	questionSet := make(map[uint]*models.Question, len(questions))
	for _, q := range questions {
		questionSet[q.ID] = q
	}

	response := &models.SurveyResponse{
		SurveyID:        survey.ID,
		RespondentEmail: email,
	}

	if len(metadata) > 0 {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		response.Metadata = datatypes.JSON(raw)
	}

	answerCount := 0
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Response().Create(ctx, nil, response); err != nil {
			return fmt.Errorf("failed to create response: %w", err)
		}

		for _, a := range answers {
			question, ok := questionSet[a.QuestionID]
			if !ok {
				s.logger.Debug("Dropping answer for unknown question",
					"survey_id", survey.ID,
					"question_id", a.QuestionID)
				continue
			}

			answer := &models.Answer{
				SurveyResponseID: response.ID,
				QuestionID:       question.ID,
				AnswerText:       a.Text,
				SelectedOptions:  models.EncodeSelectedOptions(a.SelectedOptionIDs),
			}

			if err := txRepo.Response().CreateAnswer(ctx, nil, answer); err != nil {
				return fmt.Errorf("failed to create answer: %w", err)
			}
			answerCount++
		}

		return nil
	})
	if err != nil {
		// Two submissions can pass the existence check concurrently; the
		// composite unique index picks the winner.
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateResponse
		}
		return nil, err
	}

	s.logger.Info("Response recorded",
		"survey_id", survey.ID,
		"response_id", response.ID,
		"answer_count", answerCount)

	return &SubmissionResult{
		ResponseID:  response.ID,
		SurveyID:    survey.ID,
		SubmittedAt: response.SubmittedAt,
		AnswerCount: answerCount,
	}, nil
}

// ===== OWNER READS =====

func (s *responseService) ListBySurvey(ctx context.Context, surveyID uint, filters repositories.ResponseFilters, userID string) (*ResponseListResult, error) {
	survey, err := s.repo.Survey().GetByID(ctx, nil, surveyID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}

	if survey.CreatedBy != userID {
		return nil, NewPermissionError(userID, surveyID, "survey", "list_responses", "not owner")
	}

	responses, err := s.repo.Response().ListBySurvey(ctx, nil, surveyID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}

	total, err := s.repo.Response().CountBySurvey(ctx, nil, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to count responses: %w", err)
	}

	return &ResponseListResult{
		Responses: responses,
		Total:     total,
		Page:      (filters.Offset / max(filters.Limit, 1)) + 1,
		Size:      filters.Limit,
	}, nil
}

// GetByID distinguishes a missing response from someone else's response: the
// former is not found, the latter is a permission failure.
func (s *responseService) GetByID(ctx context.Context, id uint, userID string) (*models.SurveyResponse, error) {
	response, err := s.repo.Response().GetByIDWithSurvey(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResponseNotFound
		}
		return nil, fmt.Errorf("failed to get response: %w", err)
	}

	if response.Survey.CreatedBy != userID {
		return nil, NewPermissionError(userID, id, "response", "read", "not survey owner")
	}

	return response, nil
}

func (s *responseService) CountBySurvey(ctx context.Context, surveyID uint) (int64, error) {
	if _, err := s.repo.Survey().GetByID(ctx, nil, surveyID); err != nil {
		if repositories.IsNotFoundError(err) {
			return 0, ErrSurveyNotFound
		}
		return 0, fmt.Errorf("failed to get survey: %w", err)
	}

	count, err := s.repo.Response().CountBySurvey(ctx, nil, surveyID)
	if err != nil {
		return 0, fmt.Errorf("failed to count responses: %w", err)
	}

	return count, nil
}

func (s *responseService) AnswersForQuestion(ctx context.Context, questionID uint, userID string) ([]*models.Answer, error) {
	question, err := s.repo.Question().GetByIDWithSurvey(ctx, nil, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	if question.Survey.CreatedBy != userID {
		return nil, NewPermissionError(userID, questionID, "question", "list_answers", "not owner")
	}

	answers, err := s.repo.Response().ListAnswersByQuestion(ctx, nil, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}

	return answers, nil
}
