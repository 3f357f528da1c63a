package services_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	apperrors "github.com/nwang/babypoll/internal/errors"
	"github.com/nwang/babypoll/internal/logger"
	"github.com/nwang/babypoll/internal/models"
	"github.com/nwang/babypoll/internal/repository"
	"github.com/nwang/babypoll/internal/services"
	"github.com/nwang/babypoll/internal/testutil"
)

func setupAdmin(t *testing.T, deadline *time.Time) (*services.AdminService, *repository.Repository, int64) {
	t.Helper()
	repo := testutil.NewTestRepository(t)
	log := logger.New()

	eventID, err := repo.EnsureEvent(context.Background(), "LMN2026", deadline)
	if err != nil {
		t.Fatalf("EnsureEvent failed: %v", err)
	}

	events := services.NewEventService(log, repo)
	results := services.NewResultsService(log, repo, events)
	return services.NewAdminService(log, repo, events, results), repo, eventID
}

func TestDeclareCorrectOption(t *testing.T) {
	svc, repo, eventID := setupAdmin(t, nil)
	ctx := context.Background()

	if err := svc.DeclareCorrectOption(ctx, eventID, models.OptionBoy); err != nil {
		t.Fatalf("DeclareCorrectOption failed: %v", err)
	}

	event, err := repo.GetEvent(ctx, eventID)
	if err != nil {
		t.Fatalf("GetEvent failed: %v", err)
	}
	if event.CorrectOption == nil || *event.CorrectOption != models.OptionBoy {
		t.Errorf("expected declared option %q, got %v", models.OptionBoy, event.CorrectOption)
	}
}

func TestDeclareCorrectOption_SilentOverwrite(t *testing.T) {
	svc, repo, eventID := setupAdmin(t, nil)
	ctx := context.Background()

	if err := svc.DeclareCorrectOption(ctx, eventID, models.OptionBoy); err != nil {
		t.Fatalf("first DeclareCorrectOption failed: %v", err)
	}
	if err := svc.DeclareCorrectOption(ctx, eventID, models.OptionGirl); err != nil {
		t.Fatalf("second DeclareCorrectOption failed: %v", err)
	}

	event, err := repo.GetEvent(ctx, eventID)
	if err != nil {
		t.Fatalf("GetEvent failed: %v", err)
	}
	if event.CorrectOption == nil || *event.CorrectOption != models.OptionGirl {
		t.Errorf("expected overwritten option %q, got %v", models.OptionGirl, event.CorrectOption)
	}
}

func TestDeclareCorrectOption_Invalid(t *testing.T) {
	svc, _, eventID := setupAdmin(t, nil)

	err := svc.DeclareCorrectOption(context.Background(), eventID, models.Option("twins"))
	if err != services.ErrInvalidOption {
		t.Errorf("expected ErrInvalidOption, got %v", err)
	}
}

func TestDeclareCorrectOption_UnknownEvent(t *testing.T) {
	svc, _, _ := setupAdmin(t, nil)

	err := svc.DeclareCorrectOption(context.Background(), 999, models.OptionBoy)
	var appErr *apperrors.Error
	if !stderrors.As(err, &appErr) || appErr.Kind != apperrors.ErrNotFound {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestAdminStats(t *testing.T) {
	deadline := time.Date(2026, 2, 16, 23, 59, 59, 0, time.UTC)
	svc, repo, eventID := setupAdmin(t, &deadline)
	ctx := context.Background()

	pid, err := repo.CreateParticipant(ctx, eventID, "auntie_em", "em@example.com")
	if err != nil {
		t.Fatalf("CreateParticipant failed: %v", err)
	}
	if _, err := repo.CreateParticipant(ctx, eventID, "grandpa_joe", "joe@example.com"); err != nil {
		t.Fatalf("CreateParticipant failed: %v", err)
	}
	if _, err := repo.CreateBallot(ctx, eventID, pid, models.OptionGirl); err != nil {
		t.Fatalf("CreateBallot failed: %v", err)
	}

	stats, err := svc.Stats(ctx, eventID, deadline.Add(-time.Hour))
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if !stats.Open {
		t.Error("expected event open before deadline")
	}
	if stats.Registered != 2 {
		t.Errorf("expected 2 registered, got %d", stats.Registered)
	}
	if stats.Voted != 1 {
		t.Errorf("expected 1 voted, got %d", stats.Voted)
	}
	if stats.Decided {
		t.Error("expected undecided before declaration")
	}
	if stats.Tally.Options[models.OptionGirl] != 1 {
		t.Errorf("expected 1 girl vote in tally, got %d", stats.Tally.Options[models.OptionGirl])
	}

	stats, err = svc.Stats(ctx, eventID, deadline.Add(time.Minute))
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Open {
		t.Error("expected event closed after deadline")
	}
}

func TestAdminParticipants(t *testing.T) {
	svc, repo, eventID := setupAdmin(t, nil)
	ctx := context.Background()

	if _, err := repo.CreateParticipant(ctx, eventID, "auntie_em", "em@example.com"); err != nil {
		t.Fatalf("CreateParticipant failed: %v", err)
	}

	participants, err := svc.Participants(ctx, eventID)
	if err != nil {
		t.Fatalf("Participants failed: %v", err)
	}
	if len(participants) != 1 {
		t.Errorf("expected 1 participant, got %d", len(participants))
	}
}
