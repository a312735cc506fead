package services

import (
	"context"
	"errors"
	"testing"

	"github.com/surveyer/survey-service/internal/models"
	"github.com/surveyer/survey-service/internal/validator"
)

func TestQuestionService_Add(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	survey := env.createSurvey(t, "Question survey")

	t.Run("appends to end when order omitted", func(t *testing.T) {
		first, err := env.questions.Add(ctx, survey.ID, &CreateQuestionRequest{
			Text: "First question",
			Type: models.TypeText,
		}, testOwner)
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if first.Order != 1 {
			t.Errorf("first question order = %d, want 1", first.Order)
		}

		second, err := env.questions.Add(ctx, survey.ID, &CreateQuestionRequest{
			Text: "Second question",
			Type: models.TypeText,
		}, testOwner)
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if second.Order != 2 {
			t.Errorf("second question order = %d, want 2", second.Order)
		}
	})

	t.Run("choice question carries its options", func(t *testing.T) {
		question, err := env.questions.Add(ctx, survey.ID, &CreateQuestionRequest{
			Text: "Pick one",
			Type: models.TypeSingleChoice,
			Options: []validator.QuestionOptionRequest{
				{Text: "Yes"},
				{Text: "No"},
			},
		}, testOwner)
		if err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		if len(question.Options) != 2 {
			t.Errorf("got %d options, want 2", len(question.Options))
		}
	})

	t.Run("choice question needs at least two options", func(t *testing.T) {
		_, err := env.questions.Add(ctx, survey.ID, &CreateQuestionRequest{
			Text:    "Pick one",
			Type:    models.TypeSingleChoice,
			Options: []validator.QuestionOptionRequest{{Text: "Only"}},
		}, testOwner)
		if err == nil {
			t.Error("expected validation error for single option")
		}
	})

	t.Run("text question rejects options", func(t *testing.T) {
		_, err := env.questions.Add(ctx, survey.ID, &CreateQuestionRequest{
			Text:    "Free form",
			Type:    models.TypeText,
			Options: []validator.QuestionOptionRequest{{Text: "a"}, {Text: "b"}},
		}, testOwner)
		if err == nil {
			t.Error("expected validation error for text question with options")
		}
	})

	t.Run("not owner", func(t *testing.T) {
		_, err := env.questions.Add(ctx, survey.ID, &CreateQuestionRequest{
			Text: "Sneaky question",
			Type: models.TypeText,
		}, testStranger)
		if !IsPermissionError(err) {
			t.Errorf("Add by stranger = %v, want PermissionError", err)
		}
	})

	t.Run("missing survey", func(t *testing.T) {
		_, err := env.questions.Add(ctx, 99999, &CreateQuestionRequest{
			Text: "Orphan question",
			Type: models.TypeText,
		}, testOwner)
		if !errors.Is(err, ErrSurveyNotFound) {
			t.Errorf("Add = %v, want ErrSurveyNotFound", err)
		}
	})
}

func TestQuestionService_Update(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, questions := env.createPublishedSurvey(t, "Editable survey")
	choice := questions[0]

	t.Run("text change keeps options", func(t *testing.T) {
		text := "How do you REALLY take your coffee?"
		updated, err := env.questions.Update(ctx, choice.ID, &UpdateQuestionRequest{Text: &text}, testOwner)
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if updated.Text != text {
			t.Errorf("text = %q, want %q", updated.Text, text)
		}
		if len(updated.Options) != 3 {
			t.Errorf("options dropped to %d, want 3 untouched", len(updated.Options))
		}
	})

	t.Run("non-nil options replace the full set", func(t *testing.T) {
		updated, err := env.questions.Update(ctx, choice.ID, &UpdateQuestionRequest{
			Options: []validator.QuestionOptionRequest{
				{Text: "Espresso"},
				{Text: "Americano"},
			},
		}, testOwner)
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if len(updated.Options) != 2 {
			t.Fatalf("got %d options, want 2", len(updated.Options))
		}
		if updated.Options[0].Text != "Espresso" || updated.Options[1].Text != "Americano" {
			t.Errorf("options = %v, want replaced set", updated.Options)
		}
	})

	t.Run("not owner", func(t *testing.T) {
		text := "hijacked"
		if _, err := env.questions.Update(ctx, choice.ID, &UpdateQuestionRequest{Text: &text}, testStranger); !IsPermissionError(err) {
			t.Errorf("Update by stranger = %v, want PermissionError", err)
		}
	})

	t.Run("missing question", func(t *testing.T) {
		text := "nothing"
		if _, err := env.questions.Update(ctx, 99999, &UpdateQuestionRequest{Text: &text}, testOwner); !errors.Is(err, ErrQuestionNotFound) {
			t.Errorf("Update = %v, want ErrQuestionNotFound", err)
		}
	})
}

func TestQuestionService_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	published, questions := env.createPublishedSurvey(t, "Shrinking survey")
	choice := questions[0]

	// Record an answer first so we can check it survives the delete.
	if _, err := env.responses.Submit(ctx, &SubmitResponseRequest{
		SurveyID:        published.ID,
		RespondentEmail: "kim@example.com",
		Answers: []validator.AnswerSubmitRequest{
			{QuestionID: choice.ID, SelectedOptionIDs: []uint{choice.Options[0].ID}},
		},
	}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	t.Run("not owner", func(t *testing.T) {
		if err := env.questions.Delete(ctx, choice.ID, testStranger); !IsPermissionError(err) {
			t.Errorf("Delete by stranger = %v, want PermissionError", err)
		}
	})

	t.Run("delete keeps recorded answers", func(t *testing.T) {
		if err := env.questions.Delete(ctx, choice.ID, testOwner); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}

		remaining, err := env.questions.ListBySurvey(ctx, published.ID)
		if err != nil {
			t.Fatalf("ListBySurvey failed: %v", err)
		}
		if len(remaining) != 1 {
			t.Errorf("got %d questions, want 1", len(remaining))
		}

		answers, err := env.repo.Response().ListAnswersByQuestion(ctx, nil, choice.ID)
		if err != nil {
			t.Fatalf("ListAnswersByQuestion failed: %v", err)
		}
		if len(answers) != 1 {
			t.Errorf("answers for deleted question = %d, want 1 kept", len(answers))
		}
	})

	t.Run("missing question", func(t *testing.T) {
		if err := env.questions.Delete(ctx, 99999, testOwner); !errors.Is(err, ErrQuestionNotFound) {
			t.Errorf("Delete = %v, want ErrQuestionNotFound", err)
		}
	})
}

func TestQuestionService_AddOption(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, questions := env.createPublishedSurvey(t, "Growing survey")
	choice := questions[0]

	option, err := env.questions.AddOption(ctx, choice.ID, &AddOptionRequest{Text: "Oat milk"}, testOwner)
	if err != nil {
		t.Fatalf("AddOption failed: %v", err)
	}
	if option.ID == 0 {
		t.Error("expected assigned option id")
	}

	stored, err := env.repo.Question().GetByID(ctx, nil, choice.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(stored.Options) != 4 {
		t.Errorf("got %d options, want 4", len(stored.Options))
	}

	if _, err := env.questions.AddOption(ctx, choice.ID, &AddOptionRequest{Text: "nope"}, testStranger); !IsPermissionError(err) {
		t.Errorf("AddOption by stranger = %v, want PermissionError", err)
	}
}
