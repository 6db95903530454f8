package repository

import (
	"context"
	"errors"
	"time"

	"github.com/PluraGate/SyriaHub-sub004/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoteOutcome reports what one cast vote did to the deliberation.
type VoteOutcome struct {
	Deliberation *models.JuryDeliberation
	Finalized    bool
	Decision     models.JuryDecision
	Appeal       *models.Appeal
}

// DeliberationRepository defines the interface for jury deliberation data
// operations. CastVote carries the whole quorum protocol: the vote insert,
// the tally, and on the final vote the appeal resolution and content status
// change, all in one transaction under a lock on the deliberation row.
type DeliberationRepository interface {
	GetByID(ctx context.Context, id uint) (*models.JuryDeliberation, error)
	GetByAppealID(ctx context.Context, appealID uint) (*models.JuryDeliberation, error)
	CastVote(ctx context.Context, deliberationID, jurorID uint, vote models.JuryVote) (*VoteOutcome, error)
}

type deliberationRepository struct {
	db    *gorm.DB
	trust TrustQueueRepository
}

// NewDeliberationRepository creates a new deliberation repository
func NewDeliberationRepository(db *gorm.DB, trust TrustQueueRepository) DeliberationRepository {
	return &deliberationRepository{db: db, trust: trust}
}

func (r *deliberationRepository) GetByID(ctx context.Context, id uint) (*models.JuryDeliberation, error) {
	var deliberation models.JuryDeliberation
	err := r.db.WithContext(ctx).Preload("Votes").First(&deliberation, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Deliberation", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &deliberation, nil
}

func (r *deliberationRepository) GetByAppealID(ctx context.Context, appealID uint) (*models.JuryDeliberation, error) {
	var deliberation models.JuryDeliberation
	err := r.db.WithContext(ctx).Preload("Votes").
		Where("appeal_id = ?", appealID).
		First(&deliberation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Deliberation for appeal", appealID)
		}
		return nil, models.NewInternalError(err)
	}
	return &deliberation, nil
}

func (r *deliberationRepository) CastVote(ctx context.Context, deliberationID, jurorID uint, vote models.JuryVote) (*VoteOutcome, error) {
	outcome := &VoteOutcome{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var deliberation models.JuryDeliberation
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&deliberation, deliberationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Deliberation", deliberationID)
			}
			return models.NewInternalError(err)
		}
		if deliberation.Final() {
			return models.NewPreconditionError("deliberation has already reached a final decision")
		}

		// The service checks the appeal status before calling, but a
		// revision request can land between that check and this insert, so
		// the status is re-verified under the lock.
		var appeal models.Appeal
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&appeal, deliberation.AppealID).Error; err != nil {
			return models.NewInternalError(err)
		}
		if appeal.Status != models.AppealStatusPending {
			return models.NewPreconditionError("appeal is not awaiting deliberation")
		}

		jurorVote := models.JurorVote{
			DeliberationID: deliberationID,
			JurorID:        jurorID,
			Vote:           vote,
		}
		if err := tx.Create(&jurorVote).Error; err != nil {
			if isDuplicateKey(err) {
				return models.NewPreconditionError("juror has already voted in this deliberation")
			}
			return models.NewInternalError(err)
		}

		var uphold, overturn int64
		if err := tx.Model(&models.JurorVote{}).
			Where("deliberation_id = ? AND vote = ?", deliberationID, models.VoteUphold).
			Count(&uphold).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Model(&models.JurorVote{}).
			Where("deliberation_id = ? AND vote = ?", deliberationID, models.VoteOverturn).
			Count(&overturn).Error; err != nil {
			return models.NewInternalError(err)
		}

		outcome.Deliberation = &deliberation
		if int(uphold+overturn) < deliberation.JurySize {
			return nil
		}

		decision := tally(uphold, overturn)
		now := time.Now()
		updates := map[string]interface{}{
			"final_decision": decision,
			"decided_at":     now,
		}
		if err := tx.Model(&deliberation).Updates(updates).Error; err != nil {
			return models.NewInternalError(err)
		}
		deliberation.FinalDecision = decision
		deliberation.DecidedAt = &now

		if err := r.resolveAppeal(tx, &appeal, decision); err != nil {
			return err
		}

		outcome.Finalized = true
		outcome.Decision = decision
		outcome.Appeal = &appeal
		return r.trust.Enqueue(ctx, tx, appeal.UserID, models.TrustReasonAppealResolution)
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// tally maps vote counts to the final decision. An exact tie is a split:
// the original moderation decision stands, recorded distinctly from a
// majority uphold.
func tally(uphold, overturn int64) models.JuryDecision {
	switch {
	case overturn > uphold:
		return models.JuryDecisionOverturn
	case uphold > overturn:
		return models.JuryDecisionUphold
	default:
		return models.JuryDecisionSplit
	}
}

// resolveAppeal applies the jury's decision to the appeal row, which the
// caller already holds a lock on.
func (r *deliberationRepository) resolveAppeal(tx *gorm.DB, appeal *models.Appeal, decision models.JuryDecision) error {
	var status models.AppealStatus
	var note string
	switch decision {
	case models.JuryDecisionOverturn:
		status = models.AppealStatusApproved
		note = "jury overturned the moderation decision"
	case models.JuryDecisionSplit:
		status = models.AppealStatusRejected
		note = "jury split evenly; the moderation decision stands"
	default:
		status = models.AppealStatusRejected
		note = "jury upheld the moderation decision"
	}

	updates := map[string]interface{}{
		"status":          status,
		"resolution_note": note,
	}
	if err := tx.Model(appeal).Updates(updates).Error; err != nil {
		return models.NewInternalError(err)
	}
	appeal.Status = status
	appeal.ResolutionNote = note

	if decision == models.JuryDecisionOverturn {
		if err := r.republish(tx, appeal.ContentID); err != nil {
			return err
		}
	}
	return nil
}

// republish restores overturned content: a fresh allow decision extends the
// version chain and the item becomes published again.
func (r *deliberationRepository) republish(tx *gorm.DB, contentID uint) error {
	decision := models.ModerationDecision{
		ContentID: contentID,
		Outcome:   models.DecisionAllow,
		Notes:     "moderation decision overturned by jury deliberation",
	}
	if err := tx.Create(&decision).Error; err != nil {
		return models.NewInternalError(err)
	}
	updates := map[string]interface{}{
		"status":             models.ContentStatusPublished,
		"latest_decision_id": decision.ID,
	}
	if err := tx.Model(&models.ContentItem{}).
		Where("id = ?", contentID).
		Updates(updates).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
