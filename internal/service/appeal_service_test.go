package service

import (
	"context"
	"errors"
	"testing"

	"github.com/PluraGate/SyriaHub-sub004/internal/models"
)

func TestAppealServiceOpenShortReason(t *testing.T) {
	repo := noopAppealRepo()
	repo.openFn = func(context.Context, *models.Appeal, int) error {
		t.Fatal("repository must not be called for an invalid reason")
		return nil
	}

	svc := NewAppealService(repo, noopUserRepo(), noopReevaluator(), 5, testLogger())
	_, err := svc.Open(context.Background(), 1, 2, "too short")
	if err == nil {
		t.Fatal("expected validation error")
	}
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected validation app error, got %#v", err)
	}
}

func TestAppealServiceOpenPassesJurySize(t *testing.T) {
	var gotJurySize int
	repo := noopAppealRepo()
	repo.openFn = func(_ context.Context, appeal *models.Appeal, jurySize int) error {
		gotJurySize = jurySize
		appeal.ID = 11
		appeal.Status = models.AppealStatusPending
		return nil
	}

	svc := NewAppealService(repo, noopUserRepo(), noopReevaluator(), 7, testLogger())
	appeal, err := svc.Open(context.Background(), 1, 2, "this decision misread satire as harassment")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if gotJurySize != 7 {
		t.Fatalf("expected jury size 7, got %d", gotJurySize)
	}
	if appeal.ID != 11 || appeal.ContentID != 2 || appeal.UserID != 1 {
		t.Fatalf("unexpected appeal %#v", appeal)
	}
}

func TestAppealServiceRequestRevisionEmptyNote(t *testing.T) {
	svc := NewAppealService(noopAppealRepo(), noopUserRepo(), noopReevaluator(), 5, testLogger())
	_, err := svc.RequestRevision(context.Background(), 1, 2, "  ")
	if err == nil {
		t.Fatal("expected validation error")
	}
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected validation app error, got %#v", err)
	}
}

func TestAppealServiceRequestRevisionNonModerator(t *testing.T) {
	users := noopUserRepo()
	users.getByIDFn = func(context.Context, uint) (*models.User, error) {
		return &models.User{ID: 1, Role: models.RoleTrusted}, nil
	}

	svc := NewAppealService(noopAppealRepo(), users, noopReevaluator(), 5, testLogger())
	_, err := svc.RequestRevision(context.Background(), 1, 2, "please remove the quoted passage")
	if err == nil {
		t.Fatal("expected forbidden error")
	}
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != "FORBIDDEN" {
		t.Fatalf("expected forbidden app error, got %#v", err)
	}
}

func TestAppealServiceRequestRevisionDelegates(t *testing.T) {
	users := noopUserRepo()
	users.getByIDFn = func(context.Context, uint) (*models.User, error) {
		return &models.User{ID: 1, Role: models.RoleModerator}, nil
	}
	repo := noopAppealRepo()
	repo.requestRevisionFn = func(_ context.Context, appealID uint, note string) (*models.Appeal, error) {
		return &models.Appeal{ID: appealID, Status: models.AppealStatusRevisionRequested, ResolutionNote: note}, nil
	}

	svc := NewAppealService(repo, users, noopReevaluator(), 5, testLogger())
	appeal, err := svc.RequestRevision(context.Background(), 1, 9, "please remove the quoted passage")
	if err != nil {
		t.Fatalf("request revision failed: %v", err)
	}
	if appeal.Status != models.AppealStatusRevisionRequested {
		t.Fatalf("expected revision_requested status, got %q", appeal.Status)
	}
}

func TestAppealServiceResubmitEmptyBody(t *testing.T) {
	svc := NewAppealService(noopAppealRepo(), noopUserRepo(), noopReevaluator(), 5, testLogger())
	_, err := svc.Resubmit(context.Background(), 1, 2, "title", "")
	if err == nil {
		t.Fatal("expected validation error")
	}
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected validation app error, got %#v", err)
	}
}

func TestAppealServiceResubmitRerunsModeration(t *testing.T) {
	repo := noopAppealRepo()
	repo.resubmitFn = func(_ context.Context, appealID, userID uint, _, _ string) (*models.Appeal, error) {
		return &models.Appeal{ID: appealID, UserID: userID, ContentID: 33, Status: models.AppealStatusPending}, nil
	}

	var reevaluated []uint
	moderation := &reevaluatorStub{
		reevaluateFn: func(_ context.Context, contentID uint) (*DecisionReport, error) {
			reevaluated = append(reevaluated, contentID)
			return &DecisionReport{
				Decision: &models.ModerationDecision{ContentID: contentID, Outcome: models.DecisionBlock},
				Status:   models.ContentStatusFlagged,
			}, nil
		},
	}

	svc := NewAppealService(repo, noopUserRepo(), moderation, 5, testLogger())
	appeal, err := svc.Resubmit(context.Background(), 1, 2, "new title", "a cleaned-up body")
	if err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	if appeal.Status != models.AppealStatusPending {
		t.Fatalf("expected pending appeal, got %q", appeal.Status)
	}
	if len(reevaluated) != 1 || reevaluated[0] != 33 {
		t.Fatalf("expected one moderation re-run for content 33, got %v", reevaluated)
	}
}

func TestAppealServiceResubmitReevaluationError(t *testing.T) {
	moderation := &reevaluatorStub{
		reevaluateFn: func(context.Context, uint) (*DecisionReport, error) {
			return nil, models.NewInternalError(errors.New("decision write failed"))
		},
	}

	svc := NewAppealService(noopAppealRepo(), noopUserRepo(), moderation, 5, testLogger())
	_, err := svc.Resubmit(context.Background(), 1, 2, "title", "a cleaned-up body")
	if err == nil {
		t.Fatal("expected the re-run failure to surface")
	}
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != "INTERNAL_ERROR" {
		t.Fatalf("expected internal app error, got %#v", err)
	}
}
