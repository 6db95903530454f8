package service

import (
	"context"
	"errors"
	"testing"

	"github.com/PluraGate/SyriaHub-sub004/internal/models"
	"github.com/PluraGate/SyriaHub-sub004/internal/repository"
)

// moderatorUserRepo returns every user as a moderator, which is the baseline
// most vote tests need.
func moderatorUserRepo() *userRepoStub {
	users := noopUserRepo()
	users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, Role: models.RoleModerator}, nil
	}
	return users
}

func pendingAppealRepo(appellantID, contentID uint) *appealRepoStub {
	repo := noopAppealRepo()
	repo.getByIDFn = func(context.Context, uint) (*models.Appeal, error) {
		return &models.Appeal{
			ID:        3,
			ContentID: contentID,
			UserID:    appellantID,
			Status:    models.AppealStatusPending,
		}, nil
	}
	return repo
}

func TestJuryServiceCastVoteInvalidValue(t *testing.T) {
	svc := NewJuryService(noopDelibRepo(), noopAppealRepo(), noopContentRepo(), moderatorUserRepo(), testLogger())
	_, err := svc.CastVote(context.Background(), 1, 2, "abstain")
	if err == nil {
		t.Fatal("expected validation error")
	}
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected validation app error, got %#v", err)
	}
}

func TestJuryServiceCastVoteNonModerator(t *testing.T) {
	users := noopUserRepo()
	users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return &models.User{ID: id, Role: models.RoleTrusted}, nil
	}

	svc := NewJuryService(noopDelibRepo(), noopAppealRepo(), noopContentRepo(), users, testLogger())
	_, err := svc.CastVote(context.Background(), 1, 2, models.VoteUphold)
	if err == nil {
		t.Fatal("expected forbidden error")
	}
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != "FORBIDDEN" {
		t.Fatalf("expected forbidden app error, got %#v", err)
	}
}

func TestJuryServiceCastVoteAppealNotPending(t *testing.T) {
	appeals := noopAppealRepo()
	appeals.getByIDFn = func(context.Context, uint) (*models.Appeal, error) {
		return &models.Appeal{ID: 3, Status: models.AppealStatusRejected}, nil
	}

	svc := NewJuryService(noopDelibRepo(), appeals, noopContentRepo(), moderatorUserRepo(), testLogger())
	_, err := svc.CastVote(context.Background(), 1, 2, models.VoteUphold)
	if err == nil {
		t.Fatal("expected precondition error")
	}
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != "PRECONDITION_FAILED" {
		t.Fatalf("expected precondition app error, got %#v", err)
	}
}

func TestJuryServiceCastVoteAppellantExcluded(t *testing.T) {
	svc := NewJuryService(noopDelibRepo(), pendingAppealRepo(8, 4), noopContentRepo(), moderatorUserRepo(), testLogger())
	_, err := svc.CastVote(context.Background(), 8, 2, models.VoteOverturn)
	if err == nil {
		t.Fatal("expected forbidden error")
	}
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != "FORBIDDEN" {
		t.Fatalf("expected forbidden app error, got %#v", err)
	}
}

func TestJuryServiceCastVoteAuthorExcluded(t *testing.T) {
	content := noopContentRepo()
	content.getByIDFn = func(context.Context, uint) (*models.ContentItem, error) {
		return &models.ContentItem{ID: 4, AuthorID: 9}, nil
	}

	svc := NewJuryService(noopDelibRepo(), pendingAppealRepo(8, 4), content, moderatorUserRepo(), testLogger())
	_, err := svc.CastVote(context.Background(), 9, 2, models.VoteOverturn)
	if err == nil {
		t.Fatal("expected forbidden error")
	}
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != "FORBIDDEN" {
		t.Fatalf("expected forbidden app error, got %#v", err)
	}
}

func TestJuryServiceCastVoteFinalizes(t *testing.T) {
	delibs := noopDelibRepo()
	delibs.castVoteFn = func(_ context.Context, deliberationID, jurorID uint, vote models.JuryVote) (*repository.VoteOutcome, error) {
		return &repository.VoteOutcome{
			Deliberation: &models.JuryDeliberation{ID: deliberationID, JurySize: 3, FinalDecision: models.JuryDecisionOverturn},
			Finalized:    true,
			Decision:     models.JuryDecisionOverturn,
			Appeal:       &models.Appeal{ID: 3, Status: models.AppealStatusApproved},
		}, nil
	}
	content := noopContentRepo()
	content.getByIDFn = func(context.Context, uint) (*models.ContentItem, error) {
		return &models.ContentItem{ID: 4, AuthorID: 8}, nil
	}

	svc := NewJuryService(delibs, pendingAppealRepo(8, 4), content, moderatorUserRepo(), testLogger())
	outcome, err := svc.CastVote(context.Background(), 12, 2, models.VoteOverturn)
	if err != nil {
		t.Fatalf("cast vote failed: %v", err)
	}
	if !outcome.Finalized || outcome.Decision != models.JuryDecisionOverturn {
		t.Fatalf("unexpected outcome %#v", outcome)
	}
	if outcome.Appeal.Status != models.AppealStatusApproved {
		t.Fatalf("expected approved appeal, got %q", outcome.Appeal.Status)
	}
}
