package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PluraGate/SyriaHub-sub004/internal/cache"
	"github.com/PluraGate/SyriaHub-sub004/internal/config"
	"github.com/PluraGate/SyriaHub-sub004/internal/models"
	"github.com/PluraGate/SyriaHub-sub004/internal/observability"
	"github.com/PluraGate/SyriaHub-sub004/internal/repository"
)

// PromotionService governs role-promotion requests and their endorsement
// quorums.
type PromotionService struct {
	promotionRepo repository.PromotionRepository
	userRepo      repository.UserRepository
	quorums       map[string]config.QuorumRule
	logger        *slog.Logger
}

// NewPromotionService returns a new PromotionService. quorums maps each
// requestable role to its endorsement thresholds.
func NewPromotionService(
	promotionRepo repository.PromotionRepository,
	userRepo repository.UserRepository,
	quorums map[string]config.QuorumRule,
	logger *slog.Logger,
) *PromotionService {
	return &PromotionService{
		promotionRepo: promotionRepo,
		userRepo:      userRepo,
		quorums:       quorums,
		logger:        logger,
	}
}

// Request opens a promotion request toward a higher role. The quorum
// thresholds are copied onto the request so a later configuration change
// cannot alter an open request.
func (s *PromotionService) Request(ctx context.Context, userID uint, targetRole models.Role, justification string) (*models.PromotionRequest, error) {
	if len(strings.TrimSpace(justification)) < models.MinPromotionJustificationLen {
		return nil, models.NewValidationError("Promotion justification must be at least 50 characters")
	}
	if !targetRole.Valid() {
		return nil, models.NewValidationError(fmt.Sprintf("Unknown role %q", targetRole))
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if targetRole.Rank() <= user.Role.Rank() {
		return nil, models.NewValidationError("Requested role must be higher than the current role")
	}
	rule, ok := s.quorums[string(targetRole)]
	if !ok {
		return nil, models.NewValidationError(fmt.Sprintf("No promotion path to role %q", targetRole))
	}

	req := &models.PromotionRequest{
		UserID:                        userID,
		CurrentRole:                   user.Role,
		RequestedRole:                 targetRole,
		Justification:                 justification,
		RequiredModeratorEndorsements: rule.Moderators,
		RequiredAdminEndorsements:     rule.Admins,
	}
	if err := s.promotionRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "promotion request opened",
		"request_id", req.ID,
		"requested_role", targetRole,
		"required_moderators", rule.Moderators,
		"required_admins", rule.Admins,
	)
	return req, nil
}

// Endorse records one qualifying account's backing of a promotion request.
// When the endorsement completes both quorums, the approval and the role
// mutation (with its audit entry) commit atomically.
func (s *PromotionService) Endorse(ctx context.Context, endorserID, requestID uint, justification string) (*repository.EndorseOutcome, error) {
	if len(strings.TrimSpace(justification)) < models.MinEndorsementJustificationLen {
		return nil, models.NewValidationError("Endorsement justification must be at least 20 characters")
	}

	endorser, err := s.userRepo.GetByID(ctx, endorserID)
	if err != nil {
		return nil, err
	}
	var tier models.EndorserTier
	switch {
	case endorser.IsAdmin():
		tier = models.TierAdmin
	case endorser.IsModerator():
		tier = models.TierModerator
	default:
		return nil, models.NewForbiddenError("only moderator or admin accounts may endorse")
	}

	req, err := s.promotionRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.UserID == endorserID {
		return nil, models.NewPreconditionError("an endorser cannot endorse their own request")
	}

	outcome, err := s.promotionRepo.Endorse(ctx, requestID, &models.Endorsement{
		EndorserID:    endorserID,
		Tier:          tier,
		Justification: justification,
	})
	if err != nil {
		return nil, err
	}

	if outcome.Approved {
		observability.PromotionApprovals.WithLabelValues(string(models.PromotionStatusApproved)).Inc()
		cache.InvalidateAuditPages(ctx)
		s.logger.InfoContext(ctx, "promotion request approved by quorum",
			"request_id", requestID,
			"subject_user_id", outcome.Request.UserID,
			"new_role", outcome.Request.RequestedRole,
			"role_changed", outcome.RoleChanged,
		)
	}
	return outcome, nil
}

// Reject terminates a pending promotion request. Admin-only; available at
// any time before quorum.
func (s *PromotionService) Reject(ctx context.Context, adminID, requestID uint, note string) (*models.PromotionRequest, error) {
	admin, err := s.userRepo.GetByID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if !admin.IsAdmin() {
		return nil, models.NewForbiddenError("only admins may reject a promotion request")
	}

	req, err := s.promotionRepo.Reject(ctx, requestID, adminID, note)
	if err != nil {
		return nil, err
	}
	observability.PromotionApprovals.WithLabelValues(string(models.PromotionStatusRejected)).Inc()
	return req, nil
}

// GetRequest returns a promotion request with its endorsements.
func (s *PromotionService) GetRequest(ctx context.Context, id uint) (*models.PromotionRequest, error) {
	return s.promotionRepo.GetByID(ctx, id)
}

// ListPending returns open promotion requests for reviewer dashboards.
func (s *PromotionService) ListPending(ctx context.Context, limit, offset int) ([]models.PromotionRequest, error) {
	return s.promotionRepo.ListPending(ctx, limit, offset)
}
