package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/surveyer/survey-service/internal/models"
	"github.com/surveyer/survey-service/internal/repositories"
)

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

// ExportResponses renders every response to the survey as an xlsx sheet with
// one column per question in display order. Choice answers show the option
// texts; options deleted since submission fall back to their raw ids.
func (s *exportService) ExportResponses(ctx context.Context, surveyID uint, userID string) ([]byte, string, error) {
	s.logger.Info("Exporting responses", "survey_id", surveyID, "user_id", userID)

	survey, err := s.repo.Survey().GetByID(ctx, nil, surveyID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, "", ErrSurveyNotFound
		}
		return nil, "", fmt.Errorf("failed to get survey: %w", err)
	}

	if survey.CreatedBy != userID {
		return nil, "", NewPermissionError(userID, surveyID, "survey", "export_responses", "not owner")
	}

	questions, err := s.repo.Question().ListBySurvey(ctx, nil, surveyID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list questions: %w", err)
	}

	responses, err := s.repo.Response().ListBySurvey(ctx, nil, surveyID, repositories.ResponseFilters{})
	if err != nil {
		return nil, "", fmt.Errorf("failed to list responses: %w", err)
	}

	optionTexts := make(map[uint]string)
	for _, q := range questions {
		for _, opt := range q.Options {
			optionTexts[opt.ID] = opt.Text
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Responses"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Response ID", "Respondent Email", "Submitted At"}
	for _, q := range questions {
		headers = append(headers, q.Text)
	}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for row, response := range responses {
		answersByQuestion := make(map[uint]*models.Answer, len(response.Answers))
		for i := range response.Answers {
			answersByQuestion[response.Answers[i].QuestionID] = &response.Answers[i]
		}

		values := []interface{}{
			response.ID,
			response.RespondentEmail,
			response.SubmittedAt.Format(time.RFC3339),
		}
		for _, q := range questions {
			values = append(values, s.renderAnswer(answersByQuestion[q.ID], optionTexts))
		}

		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to write workbook: %w", err)
	}

	filename := fmt.Sprintf("survey_%d_responses_%s.xlsx", surveyID, time.Now().Format("2006-01-02"))

	s.logger.Info("Responses exported",
		"survey_id", surveyID,
		"response_count", len(responses),
		"filename", filename)

	return buf.Bytes(), filename, nil
}

func (s *exportService) renderAnswer(answer *models.Answer, optionTexts map[uint]string) string {
	if answer == nil {
		return ""
	}

	if answer.SelectedOptions != nil {
		ids := answer.SelectedOptionIDs()
		parts := make([]string, 0, len(ids))
		for _, id := range ids {
			if text, ok := optionTexts[id]; ok {
				parts = append(parts, text)
			} else {
				parts = append(parts, fmt.Sprintf("#%d", id))
			}
		}
		return strings.Join(parts, ", ")
	}

	if answer.AnswerText != nil {
		return *answer.AnswerText
	}

	return ""
}
