package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/PluraGate/SyriaHub-sub004/internal/models"
	"github.com/PluraGate/SyriaHub-sub004/internal/repository"
)

func TestComputeTrustScore(t *testing.T) {
	in := &repository.TrustInputs{
		Role:                 models.RoleModerator,
		EndorsementsGiven:    4,
		EndorsementsReceived: 3,
		AppealsApproved:      2,
		AppealsRejected:      1,
		ContentBlocked:       1,
	}
	// 2*10 + 4*0.5 + 3*2 + 2*5 - 1*2 - 1*3
	if got := ComputeTrustScore(in); got != 33 {
		t.Fatalf("expected score 33, got %v", got)
	}
}

func TestComputeTrustScoreClamped(t *testing.T) {
	low := &repository.TrustInputs{Role: models.RoleMember, ContentBlocked: 50}
	if got := ComputeTrustScore(low); got != 0 {
		t.Fatalf("expected floor 0, got %v", got)
	}
	high := &repository.TrustInputs{Role: models.RoleAdmin, AppealsApproved: 100}
	if got := ComputeTrustScore(high); got != 100 {
		t.Fatalf("expected cap 100, got %v", got)
	}
}

func TestTrustServiceSweepCompletesClaimedTasks(t *testing.T) {
	queue := noopTrustQueue()
	var claimToken string
	queue.claimFn = func(_ context.Context, token string, batch int, _ time.Duration) ([]models.TrustRecalcTask, error) {
		claimToken = token
		if batch != 50 {
			t.Fatalf("expected default batch 50, got %d", batch)
		}
		return []models.TrustRecalcTask{
			{ID: 1, SubjectUserID: 10, Reason: models.TrustReasonRoleChange},
			{ID: 2, SubjectUserID: 11, Reason: models.TrustReasonAppealResolution},
		}, nil
	}
	// The second task's lease was lost to another sweep mid-run.
	queue.completeFn = func(_ context.Context, taskID uint, token string) (bool, error) {
		if token != claimToken {
			t.Fatalf("complete called with a different token than claim")
		}
		return taskID == 1, nil
	}

	var scored []uint
	users := noopUserRepo()
	users.updateTrustScoreFn = func(_ context.Context, id uint, score float64) error {
		scored = append(scored, id)
		return nil
	}

	svc := NewTrustService(queue, users, time.Minute, 0, testLogger())
	processed, err := svc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if processed != 1 {
		t.Fatalf("expected 1 completed task, got %d", processed)
	}
	if len(scored) != 2 {
		t.Fatalf("expected both subjects recomputed, got %v", scored)
	}
}

func TestTrustServiceSweepClaimError(t *testing.T) {
	queue := noopTrustQueue()
	queue.claimFn = func(context.Context, string, int, time.Duration) ([]models.TrustRecalcTask, error) {
		return nil, errors.New("connection refused")
	}

	svc := NewTrustService(queue, noopUserRepo(), time.Minute, 10, testLogger())
	if _, err := svc.Sweep(context.Background()); err == nil {
		t.Fatal("expected claim error to surface")
	}
}

func TestTrustServiceSweepSkipsFailedRecalculation(t *testing.T) {
	queue := noopTrustQueue()
	queue.claimFn = func(context.Context, string, int, time.Duration) ([]models.TrustRecalcTask, error) {
		return []models.TrustRecalcTask{{ID: 1, SubjectUserID: 10}}, nil
	}
	queue.inputsFn = func(context.Context, uint) (*repository.TrustInputs, error) {
		return nil, errors.New("user gone")
	}
	queue.completeFn = func(context.Context, uint, string) (bool, error) {
		t.Fatal("a failed recalculation must leave the task claimable")
		return false, nil
	}

	svc := NewTrustService(queue, noopUserRepo(), time.Minute, 10, testLogger())
	processed, err := svc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if processed != 0 {
		t.Fatalf("expected no completed tasks, got %d", processed)
	}
}
