package services

import (
	"context"
	"errors"
	"testing"

	"github.com/surveyer/survey-service/internal/events"
	"github.com/surveyer/survey-service/internal/models"
	"github.com/surveyer/survey-service/internal/repositories"
)

func TestSurveyService_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	survey, err := env.surveys.Create(ctx, &CreateSurveyRequest{Title: "Coffee Survey"}, testOwner)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if survey.ID == 0 {
		t.Error("expected assigned id")
	}
	if survey.Status != models.StatusDraft {
		t.Errorf("new survey status = %s, want Draft", survey.Status)
	}
	if survey.CreatedBy != testOwner {
		t.Errorf("created_by = %s, want %s", survey.CreatedBy, testOwner)
	}
	if !survey.CanEdit {
		t.Error("owner should be able to edit")
	}
}

func TestSurveyService_Create_Invalid(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.surveys.Create(context.Background(), &CreateSurveyRequest{Title: ""}, testOwner)
	if err == nil {
		t.Fatal("expected validation error for empty title")
	}
}

func TestSurveyService_Publish(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("without questions fails", func(t *testing.T) {
		survey := env.createSurvey(t, "Empty Survey")

		_, err := env.surveys.Publish(ctx, survey.ID, testOwner)
		if !errors.Is(err, ErrSurveyNotPublishable) {
			t.Errorf("Publish = %v, want ErrSurveyNotPublishable", err)
		}
	})

	t.Run("with questions succeeds and emits event", func(t *testing.T) {
		env.publisher.ClearEvents()
		published, _ := env.createPublishedSurvey(t, "Coffee Survey")

		if published.Status != models.StatusPublished {
			t.Errorf("status = %s, want Published", published.Status)
		}

		evts := env.publisher.GetPublishedEvents()
		if len(evts) != 1 {
			t.Fatalf("expected 1 event, got %d", len(evts))
		}
		if evts[0].Type != events.EventSurveyPublished {
			t.Errorf("event type = %s, want %s", evts[0].Type, events.EventSurveyPublished)
		}
	})

	t.Run("not owner fails", func(t *testing.T) {
		survey := env.createSurvey(t, "Someone else's survey")

		_, err := env.surveys.Publish(ctx, survey.ID, testStranger)
		if !IsPermissionError(err) {
			t.Errorf("Publish by stranger = %v, want PermissionError", err)
		}
	})

	t.Run("missing survey", func(t *testing.T) {
		_, err := env.surveys.Publish(ctx, 99999, testOwner)
		if !errors.Is(err, ErrSurveyNotFound) {
			t.Errorf("Publish = %v, want ErrSurveyNotFound", err)
		}
	})

	t.Run("publish twice is idempotent", func(t *testing.T) {
		published, _ := env.createPublishedSurvey(t, "Already live")
		env.publisher.ClearEvents()

		again, err := env.surveys.Publish(ctx, published.ID, testOwner)
		if err != nil {
			t.Fatalf("second Publish failed: %v", err)
		}
		if again.Status != models.StatusPublished {
			t.Errorf("status = %s, want Published", again.Status)
		}

		// No status change, no lifecycle event.
		if evts := env.publisher.GetPublishedEvents(); len(evts) != 0 {
			t.Errorf("second Publish emitted %d events, want 0", len(evts))
		}
	})
}

func TestSurveyService_Update(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	survey := env.createSurvey(t, "Original Title")

	t.Run("partial update leaves absent fields untouched", func(t *testing.T) {
		desc := "now with description"
		updated, err := env.surveys.Update(ctx, survey.ID, &UpdateSurveyRequest{Description: &desc}, testOwner)
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if updated.Title != "Original Title" {
			t.Errorf("title changed to %q", updated.Title)
		}
		if updated.Description == nil || *updated.Description != desc {
			t.Errorf("description = %v, want %q", updated.Description, desc)
		}
	})

	t.Run("not owner", func(t *testing.T) {
		title := "hijacked"
		_, err := env.surveys.Update(ctx, survey.ID, &UpdateSurveyRequest{Title: &title}, testStranger)
		if !IsPermissionError(err) {
			t.Errorf("Update by stranger = %v, want PermissionError", err)
		}
	})

	t.Run("publish through update requires questions", func(t *testing.T) {
		status := models.StatusPublished
		_, err := env.surveys.Update(ctx, survey.ID, &UpdateSurveyRequest{Status: &status}, testOwner)
		if !errors.Is(err, ErrSurveyNotPublishable) {
			t.Errorf("Update to Published = %v, want ErrSurveyNotPublishable", err)
		}
	})

	t.Run("re-sending the current status is accepted", func(t *testing.T) {
		published, _ := env.createPublishedSurvey(t, "Settled")

		status := models.StatusPublished
		title := "Settled, renamed"
		updated, err := env.surveys.Update(ctx, published.ID, &UpdateSurveyRequest{Title: &title, Status: &status}, testOwner)
		if err != nil {
			t.Fatalf("Update with unchanged status failed: %v", err)
		}
		if updated.Status != models.StatusPublished {
			t.Errorf("status = %s, want Published", updated.Status)
		}
		if updated.Title != title {
			t.Errorf("title = %q, want %q", updated.Title, title)
		}
	})
}

func TestSurveyService_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	published, _ := env.createPublishedSurvey(t, "Short lived")

	if err := env.surveys.Delete(ctx, published.ID, testOwner); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	stored, err := env.repo.Survey().GetByID(ctx, nil, published.ID)
	if err != nil {
		t.Fatalf("survey disappeared: %v", err)
	}
	if stored.Status != models.StatusArchived {
		t.Errorf("status after delete = %s, want Archived", stored.Status)
	}

	// Archived surveys vanish from the public read path.
	if _, err := env.surveys.GetPublished(ctx, published.ID); !errors.Is(err, ErrSurveyNotFound) {
		t.Errorf("GetPublished after delete = %v, want ErrSurveyNotFound", err)
	}

	// Deleting again is a no-op.
	if err := env.surveys.Delete(ctx, published.ID, testOwner); err != nil {
		t.Errorf("second Delete = %v, want nil", err)
	}
}

func TestSurveyService_GetPublished(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	draft := env.createSurvey(t, "Still drafting")
	if _, err := env.surveys.GetPublished(ctx, draft.ID); !errors.Is(err, ErrSurveyNotFound) {
		t.Errorf("GetPublished on draft = %v, want ErrSurveyNotFound", err)
	}

	published, questions := env.createPublishedSurvey(t, "Live one")
	got, err := env.surveys.GetPublished(ctx, published.ID)
	if err != nil {
		t.Fatalf("GetPublished failed: %v", err)
	}
	if len(got.Questions) != len(questions) {
		t.Errorf("question count = %d, want %d", len(got.Questions), len(questions))
	}
}

func TestSurveyService_ListByCreator(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.createSurvey(t, "First")
	env.createSurvey(t, "Second")

	result, err := env.surveys.ListByCreator(ctx, testOwner, repositories.SurveyFilters{})
	if err != nil {
		t.Fatalf("ListByCreator failed: %v", err)
	}
	if len(result.Surveys) != 2 {
		t.Errorf("got %d surveys, want 2", len(result.Surveys))
	}

	other, err := env.surveys.ListByCreator(ctx, testStranger, repositories.SurveyFilters{})
	if err != nil {
		t.Fatalf("ListByCreator failed: %v", err)
	}
	if len(other.Surveys) != 0 {
		t.Errorf("stranger sees %d surveys, want 0", len(other.Surveys))
	}
}

func TestSurveyService_GetStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	published, _ := env.createPublishedSurvey(t, "Stats survey")

	stats, err := env.surveys.GetStats(ctx, published.ID, testOwner)
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.QuestionCount != 2 {
		t.Errorf("question count = %d, want 2", stats.QuestionCount)
	}
	if stats.ResponseCount != 0 {
		t.Errorf("response count = %d, want 0", stats.ResponseCount)
	}

	if _, err := env.surveys.GetStats(ctx, published.ID, testStranger); !IsPermissionError(err) {
		t.Errorf("GetStats by stranger = %v, want PermissionError", err)
	}
}
