package service

import (
	"context"
	"log/slog"

	"github.com/PluraGate/SyriaHub-sub004/internal/cache"
	"github.com/PluraGate/SyriaHub-sub004/internal/models"
	"github.com/PluraGate/SyriaHub-sub004/internal/observability"
	"github.com/PluraGate/SyriaHub-sub004/internal/repository"
)

// JuryService resolves appeals through independent juror votes.
type JuryService struct {
	deliberationRepo repository.DeliberationRepository
	appealRepo       repository.AppealRepository
	contentRepo      repository.ContentRepository
	userRepo         repository.UserRepository
	logger           *slog.Logger
}

// NewJuryService returns a new JuryService.
func NewJuryService(
	deliberationRepo repository.DeliberationRepository,
	appealRepo repository.AppealRepository,
	contentRepo repository.ContentRepository,
	userRepo repository.UserRepository,
	logger *slog.Logger,
) *JuryService {
	return &JuryService{
		deliberationRepo: deliberationRepo,
		appealRepo:       appealRepo,
		contentRepo:      contentRepo,
		userRepo:         userRepo,
		logger:           logger,
	}
}

// CastVote records one juror's vote. Jurors must hold moderator privileges
// and be neither the appellant nor the content's author. When the vote
// completes the jury, the deliberation finalizes and the appeal resolves in
// the same transaction as the vote insert.
func (s *JuryService) CastVote(ctx context.Context, jurorID, deliberationID uint, vote models.JuryVote) (*repository.VoteOutcome, error) {
	if vote != models.VoteUphold && vote != models.VoteOverturn {
		return nil, models.NewValidationError("Vote must be 'uphold' or 'overturn'")
	}

	juror, err := s.userRepo.GetByID(ctx, jurorID)
	if err != nil {
		return nil, err
	}
	if !juror.IsModerator() {
		return nil, models.NewForbiddenError("only moderators may serve as jurors")
	}

	deliberation, err := s.deliberationRepo.GetByID(ctx, deliberationID)
	if err != nil {
		return nil, err
	}
	appeal, err := s.appealRepo.GetByID(ctx, deliberation.AppealID)
	if err != nil {
		return nil, err
	}
	if appeal.Status != models.AppealStatusPending {
		return nil, models.NewPreconditionError("appeal is not awaiting deliberation")
	}
	if jurorID == appeal.UserID {
		return nil, models.NewForbiddenError("the appellant may not vote on their own appeal")
	}
	item, err := s.contentRepo.GetByID(ctx, appeal.ContentID)
	if err != nil {
		return nil, err
	}
	if jurorID == item.AuthorID {
		return nil, models.NewForbiddenError("the content author may not vote on the appeal")
	}

	outcome, err := s.deliberationRepo.CastVote(ctx, deliberationID, jurorID, vote)
	if err != nil {
		return nil, err
	}

	if outcome.Finalized {
		observability.AppealResolutions.WithLabelValues(string(outcome.Decision)).Inc()
		cache.InvalidateAppeal(ctx, appeal.ID)
		cache.InvalidateDecision(ctx, appeal.ContentID)
		s.logger.InfoContext(ctx, "deliberation finalized",
			"deliberation_id", deliberationID,
			"appeal_id", appeal.ID,
			"decision", outcome.Decision,
		)
	}
	return outcome, nil
}

// GetDeliberation returns a deliberation with its votes.
func (s *JuryService) GetDeliberation(ctx context.Context, id uint) (*models.JuryDeliberation, error) {
	return s.deliberationRepo.GetByID(ctx, id)
}
