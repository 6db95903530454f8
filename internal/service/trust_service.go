package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/PluraGate/SyriaHub-sub004/internal/models"
	"github.com/PluraGate/SyriaHub-sub004/internal/observability"
	"github.com/PluraGate/SyriaHub-sub004/internal/repository"

	"github.com/google/uuid"
)

// DefaultClaimLease is how long a sweep's claim on a task holds before
// another sweep may take it over.
const DefaultClaimLease = 5 * time.Minute

// TrustService consumes the trust-recalculation queue. Producers enqueue
// inside the transaction that triggered the recalculation; the sweep claims
// entries with a per-run token and recomputes each subject's score from
// durable aggregates, so reprocessing a task is harmless.
type TrustService struct {
	queueRepo repository.TrustQueueRepository
	userRepo  repository.UserRepository
	interval  time.Duration
	batch     int
	lease     time.Duration
	logger    *slog.Logger
}

// NewTrustService returns a new TrustService.
func NewTrustService(queueRepo repository.TrustQueueRepository, userRepo repository.UserRepository, interval time.Duration, batch int, logger *slog.Logger) *TrustService {
	if batch <= 0 {
		batch = 50
	}
	return &TrustService{
		queueRepo: queueRepo,
		userRepo:  userRepo,
		interval:  interval,
		batch:     batch,
		lease:     DefaultClaimLease,
		logger:    logger,
	}
}

// Run sweeps the queue on a fixed interval until the context is cancelled.
func (s *TrustService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.ErrorContext(ctx, "trust sweep failed", "err", err)
			}
		}
	}
}

// Sweep claims one batch of unprocessed tasks and recomputes each subject's
// trust score. It returns the number of tasks completed by this sweep.
func (s *TrustService) Sweep(ctx context.Context) (int, error) {
	token := uuid.NewString()
	tasks, err := s.queueRepo.Claim(ctx, token, s.batch, s.lease)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, task := range tasks {
		if err := s.recalculate(ctx, task.SubjectUserID); err != nil {
			observability.TrustTasksProcessed.WithLabelValues("error").Inc()
			s.logger.ErrorContext(ctx, "trust recalculation failed",
				"task_id", task.ID,
				"subject_user_id", task.SubjectUserID,
				"reason", task.Reason,
				"err", err,
			)
			continue
		}

		done, err := s.queueRepo.Complete(ctx, task.ID, token)
		if err != nil {
			observability.TrustTasksProcessed.WithLabelValues("error").Inc()
			continue
		}
		if !done {
			// Lease expired mid-sweep and another sweep took over; the
			// recomputed score is identical either way.
			observability.TrustTasksProcessed.WithLabelValues("lost").Inc()
			continue
		}
		observability.TrustTasksProcessed.WithLabelValues("ok").Inc()
		processed++
	}

	if depth, err := s.queueRepo.Depth(ctx); err == nil {
		observability.TrustQueueDepth.Set(float64(depth))
	}
	return processed, nil
}

func (s *TrustService) recalculate(ctx context.Context, userID uint) error {
	inputs, err := s.queueRepo.Inputs(ctx, userID)
	if err != nil {
		return err
	}
	return s.userRepo.UpdateTrustScore(ctx, userID, ComputeTrustScore(inputs))
}

// ComputeTrustScore derives a trust score from durable aggregates. The score
// is a pure function of the inputs, clamped to [0, 100], so recomputation
// always converges.
func ComputeTrustScore(in *repository.TrustInputs) float64 {
	score := float64(in.Role.Rank()) * 10

	score += float64(in.EndorsementsGiven) * 0.5
	score += float64(in.EndorsementsReceived) * 2
	score += float64(in.AppealsApproved) * 5
	score -= float64(in.AppealsRejected) * 2
	score -= float64(in.ContentBlocked) * 3

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Enqueue records that a user's trust inputs changed outside the transactional
// paths (admin tooling, backfills). Normal flows enqueue inside their own
// transactions via the repository.
func (s *TrustService) Enqueue(ctx context.Context, subjectUserID uint, reason string) error {
	if reason == "" {
		reason = models.TrustReasonRoleChange
	}
	return s.queueRepo.Enqueue(ctx, nil, subjectUserID, reason)
}
