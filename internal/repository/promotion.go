package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/PluraGate/SyriaHub-sub004/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EndorseOutcome reports what one endorsement did to the request.
type EndorseOutcome struct {
	Request     *models.PromotionRequest
	Approved    bool
	RoleChanged bool
}

// PromotionRepository defines the interface for promotion data operations.
// Endorse carries the quorum protocol: when the endorsement completes both
// quorums, the approval, the role mutation, and its audit entry commit in the
// same transaction. An audit entry is written when and only when the role
// actually changes.
type PromotionRepository interface {
	Create(ctx context.Context, req *models.PromotionRequest) error
	GetByID(ctx context.Context, id uint) (*models.PromotionRequest, error)
	Endorse(ctx context.Context, requestID uint, e *models.Endorsement) (*EndorseOutcome, error)
	Reject(ctx context.Context, requestID, reviewerID uint, note string) (*models.PromotionRequest, error)
	ListPending(ctx context.Context, limit, offset int) ([]models.PromotionRequest, error)
}

type promotionRepository struct {
	db    *gorm.DB
	trust TrustQueueRepository
}

// NewPromotionRepository creates a new promotion repository
func NewPromotionRepository(db *gorm.DB, trust TrustQueueRepository) PromotionRepository {
	return &promotionRepository{db: db, trust: trust}
}

func (r *promotionRepository) Create(ctx context.Context, req *models.PromotionRequest) error {
	req.Status = models.PromotionStatusPending
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		if isDuplicateKey(err) {
			return models.NewPreconditionError("a promotion request is already pending for this user")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *promotionRepository) GetByID(ctx context.Context, id uint) (*models.PromotionRequest, error) {
	var req models.PromotionRequest
	err := r.db.WithContext(ctx).
		Preload("Endorsements").
		Preload("User").
		First(&req, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Promotion request", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &req, nil
}

func (r *promotionRepository) Endorse(ctx context.Context, requestID uint, e *models.Endorsement) (*EndorseOutcome, error) {
	outcome := &EndorseOutcome{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req models.PromotionRequest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&req, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Promotion request", requestID)
			}
			return models.NewInternalError(err)
		}
		if req.Status != models.PromotionStatusPending {
			return models.NewPreconditionError("promotion request is no longer pending")
		}

		e.RequestID = requestID
		if err := tx.Create(e).Error; err != nil {
			if isDuplicateKey(err) {
				return models.NewPreconditionError("endorser has already endorsed this request")
			}
			return models.NewInternalError(err)
		}
		if err := r.trust.Enqueue(ctx, tx, e.EndorserID, models.TrustReasonEndorsementCast); err != nil {
			return err
		}

		var moderators, admins int64
		if err := tx.Model(&models.Endorsement{}).
			Where("request_id = ? AND tier = ?", requestID, models.TierModerator).
			Count(&moderators).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Model(&models.Endorsement{}).
			Where("request_id = ? AND tier = ?", requestID, models.TierAdmin).
			Count(&admins).Error; err != nil {
			return models.NewInternalError(err)
		}

		outcome.Request = &req
		if int(moderators) < req.RequiredModeratorEndorsements ||
			int(admins) < req.RequiredAdminEndorsements {
			return nil
		}

		if err := tx.Model(&req).Update("status", models.PromotionStatusApproved).Error; err != nil {
			return models.NewInternalError(err)
		}
		req.Status = models.PromotionStatusApproved
		outcome.Approved = true

		changed, err := r.applyRoleChange(ctx, tx, &req, e.EndorserID)
		if err != nil {
			return err
		}
		outcome.RoleChanged = changed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// applyRoleChange promotes the subject and writes the audit entry. When the
// subject already holds the requested role (or higher) nothing mutates and no
// entry is written.
func (r *promotionRepository) applyRoleChange(ctx context.Context, tx *gorm.DB, req *models.PromotionRequest, actorID uint) (bool, error) {
	var user models.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, req.UserID).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	if user.Role.Rank() >= req.RequestedRole.Rank() {
		return false, nil
	}

	oldRole := user.Role
	if err := tx.Model(&user).Update("role", req.RequestedRole).Error; err != nil {
		return false, models.NewInternalError(err)
	}

	entry := models.AuditEntry{
		SubjectUserID: req.UserID,
		ActorUserID:   actorID,
		OldRole:       oldRole,
		NewRole:       req.RequestedRole,
		Reason:        fmt.Sprintf("promotion request %d approved by endorsement quorum", req.ID),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	if err := r.trust.Enqueue(ctx, tx, req.UserID, models.TrustReasonRoleChange); err != nil {
		return false, err
	}
	return true, nil
}

func (r *promotionRepository) Reject(ctx context.Context, requestID, reviewerID uint, note string) (*models.PromotionRequest, error) {
	var req models.PromotionRequest
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&req, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Promotion request", requestID)
			}
			return models.NewInternalError(err)
		}
		if req.Status != models.PromotionStatusPending {
			return models.NewPreconditionError("promotion request is no longer pending")
		}
		updates := map[string]interface{}{
			"status":              models.PromotionStatusRejected,
			"reviewed_by_user_id": reviewerID,
			"review_notes":        note,
		}
		if err := tx.Model(&req).Updates(updates).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *promotionRepository) ListPending(ctx context.Context, limit, offset int) ([]models.PromotionRequest, error) {
	var reqs []models.PromotionRequest
	err := r.db.WithContext(ctx).
		Preload("Endorsements").
		Where("status = ?", models.PromotionStatusPending).
		Order("id").
		Limit(limit).Offset(offset).
		Find(&reqs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return reqs, nil
}
