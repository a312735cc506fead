package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/surveyer/survey-service/internal/events"
	"github.com/surveyer/survey-service/internal/models"
	"github.com/surveyer/survey-service/internal/validator"
)

const (
	testOwner    = "alice"
	testStranger = "mallory"
)

type testEnv struct {
	repo      *fakeRepository
	publisher *events.MockEventPublisher

	surveys   SurveyService
	questions QuestionService
	tokens    TokenService
	responses ResponseService
	export    ExportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	v := validator.New()
	repo := newFakeRepository()
	publisher := events.NewMockEventPublisher(logger)
	notifier := NewNotificationEventService(repo, publisher, logger, v)

	return &testEnv{
		repo:      repo,
		publisher: publisher,
		surveys:   NewSurveyService(repo, nil, logger, v, notifier),
		questions: NewQuestionService(repo, nil, logger, v),
		tokens:    NewTokenService(repo, nil, logger, v, notifier),
		responses: NewResponseService(repo, nil, logger, v),
		export:    NewExportService(repo, logger),
	}
}

// createSurvey seeds a draft survey owned by testOwner.
func (e *testEnv) createSurvey(t *testing.T, title string) *SurveyDetail {
	t.Helper()

	survey, err := e.surveys.Create(context.Background(), &CreateSurveyRequest{Title: title}, testOwner)
	if err != nil {
		t.Fatalf("failed to create survey: %v", err)
	}
	return survey
}

// createPublishedSurvey seeds a published survey with one single-choice
// question and one text question.
func (e *testEnv) createPublishedSurvey(t *testing.T, title string) (*SurveyDetail, []*models.Question) {
	t.Helper()
	ctx := context.Background()

	survey := e.createSurvey(t, title)

	choice, err := e.questions.Add(ctx, survey.ID, &CreateQuestionRequest{
		Text: "How do you take your coffee?",
		Type: models.TypeSingleChoice,
		Options: []validator.QuestionOptionRequest{
			{Text: "Black"},
			{Text: "With milk"},
			{Text: "With sugar"},
		},
	}, testOwner)
	if err != nil {
		t.Fatalf("failed to add choice question: %v", err)
	}

	text, err := e.questions.Add(ctx, survey.ID, &CreateQuestionRequest{
		Text: "Anything else?",
		Type: models.TypeText,
	}, testOwner)
	if err != nil {
		t.Fatalf("failed to add text question: %v", err)
	}

	published, err := e.surveys.Publish(ctx, survey.ID, testOwner)
	if err != nil {
		t.Fatalf("failed to publish survey: %v", err)
	}

	return published, []*models.Question{choice, text}
}

// seedToken inserts a token row directly, bypassing the service, so tests can
// control expiry and active state.
func (e *testEnv) seedToken(t *testing.T, surveyID uint, value string, active bool, expiresAt time.Time) *models.SurveyToken {
	t.Helper()

	token := &models.SurveyToken{
		Token:     value,
		SurveyID:  surveyID,
		IsActive:  active,
		ExpiresAt: expiresAt,
	}
	if err := e.repo.Token().Create(context.Background(), nil, token); err != nil {
		t.Fatalf("failed to seed token: %v", err)
	}
	return token
}
