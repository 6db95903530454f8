package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/PluraGate/SyriaHub-sub004/internal/cache"
	"github.com/PluraGate/SyriaHub-sub004/internal/models"
	"github.com/PluraGate/SyriaHub-sub004/internal/repository"
)

// Reevaluator refreshes the moderation decision chain for content whose text
// has changed.
type Reevaluator interface {
	Reevaluate(ctx context.Context, contentID uint) (*DecisionReport, error)
}

// AppealService governs a content owner's dispute of a moderation decision.
type AppealService struct {
	appealRepo repository.AppealRepository
	userRepo   repository.UserRepository
	moderation Reevaluator
	jurySize   int
	logger     *slog.Logger
}

// NewAppealService returns a new AppealService. jurySize is the number of
// votes each deliberation collects before resolving.
func NewAppealService(
	appealRepo repository.AppealRepository,
	userRepo repository.UserRepository,
	moderation Reevaluator,
	jurySize int,
	logger *slog.Logger,
) *AppealService {
	return &AppealService{
		appealRepo: appealRepo,
		userRepo:   userRepo,
		moderation: moderation,
		jurySize:   jurySize,
		logger:     logger,
	}
}

// Open creates an appeal against the moderation decision on flagged content
// and opens its jury deliberation. Ownership, the flagged status, and the
// no-prior-rejection rule are enforced atomically with the insert.
func (s *AppealService) Open(ctx context.Context, userID, contentID uint, reason string) (*models.Appeal, error) {
	if len(strings.TrimSpace(reason)) < models.MinAppealReasonLen {
		return nil, models.NewValidationError("Appeal reason must be at least 20 characters")
	}

	appeal := &models.Appeal{
		ContentID: contentID,
		UserID:    userID,
		Reason:    reason,
	}
	if err := s.appealRepo.Open(ctx, appeal, s.jurySize); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "appeal opened",
		"appeal_id", appeal.ID,
		"content_id", contentID,
		"jury_size", s.jurySize,
	)
	return appeal, nil
}

// GetAppeal returns an appeal by id.
func (s *AppealService) GetAppeal(ctx context.Context, id uint) (*models.Appeal, error) {
	var appeal models.Appeal
	err := cache.Aside(ctx, cache.AppealKey(id), &appeal, cache.AppealTTL, func() error {
		found, err := s.appealRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		appeal = *found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &appeal, nil
}

// RequestRevision sends a pending appeal back to the author for content
// edits. Moderator-only.
func (s *AppealService) RequestRevision(ctx context.Context, moderatorID, appealID uint, note string) (*models.Appeal, error) {
	if strings.TrimSpace(note) == "" {
		return nil, models.NewValidationError("A revision request must explain what to change")
	}
	moderator, err := s.userRepo.GetByID(ctx, moderatorID)
	if err != nil {
		return nil, err
	}
	if !moderator.IsModerator() {
		return nil, models.NewForbiddenError("only moderators may request a revision")
	}

	appeal, err := s.appealRepo.RequestRevision(ctx, appealID, note)
	if err != nil {
		return nil, err
	}
	cache.InvalidateAppeal(ctx, appealID)
	return appeal, nil
}

// Resubmit applies the author's revised content, re-runs moderation on it so
// the decision chain describes the edited text, and returns the appeal to
// pending for the jury to review.
func (s *AppealService) Resubmit(ctx context.Context, userID, appealID uint, title, body string) (*models.Appeal, error) {
	if strings.TrimSpace(body) == "" {
		return nil, models.NewValidationError("Revised content body must not be empty")
	}

	appeal, err := s.appealRepo.Resubmit(ctx, appealID, userID, title, body)
	if err != nil {
		return nil, err
	}
	cache.InvalidateAppeal(ctx, appealID)

	report, err := s.moderation.Reevaluate(ctx, appeal.ContentID)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "appeal resubmitted after revision",
		"appeal_id", appealID,
		"content_id", appeal.ContentID,
		"rerun_outcome", report.Decision.Outcome,
	)
	return appeal, nil
}

// ListMine returns the user's appeals, newest first.
func (s *AppealService) ListMine(ctx context.Context, userID uint, limit, offset int) ([]models.Appeal, error) {
	return s.appealRepo.ListByUser(ctx, userID, limit, offset)
}
