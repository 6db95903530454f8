package repository

import (
	"context"
	"errors"

	"github.com/PluraGate/SyriaHub-sub004/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AppealRepository defines the interface for appeal data operations. Open and
// Resubmit re-check their preconditions inside the transaction that writes,
// so a concurrent status change cannot slip between check and commit.
type AppealRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Appeal, error)
	Open(ctx context.Context, appeal *models.Appeal, jurySize int) error
	RequestRevision(ctx context.Context, appealID uint, note string) (*models.Appeal, error)
	Resubmit(ctx context.Context, appealID, userID uint, title, body string) (*models.Appeal, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Appeal, error)
}

type appealRepository struct {
	db *gorm.DB
}

// NewAppealRepository creates a new appeal repository
func NewAppealRepository(db *gorm.DB) AppealRepository {
	return &appealRepository{db: db}
}

func (r *appealRepository) GetByID(ctx context.Context, id uint) (*models.Appeal, error) {
	var appeal models.Appeal
	if err := r.db.WithContext(ctx).First(&appeal, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Appeal", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &appeal, nil
}

// Open creates the appeal and its deliberation. In one transaction it locks
// the content row, verifies the content is flagged and owned by the
// appellant, and rules out a prior rejected appeal. The partial unique index
// on (content_id, user_id, pending) backstops the duplicate-pending check
// against concurrent opens.
func (r *appealRepository) Open(ctx context.Context, appeal *models.Appeal, jurySize int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.ContentItem
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&item, appeal.ContentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Content", appeal.ContentID)
			}
			return models.NewInternalError(err)
		}
		if item.AuthorID != appeal.UserID {
			return models.NewForbiddenError("only the content owner may appeal")
		}
		if item.Status != models.ContentStatusFlagged {
			return models.NewPreconditionError("content is not under a contested moderation decision")
		}

		var rejected int64
		err := tx.Model(&models.Appeal{}).
			Where("content_id = ? AND user_id = ? AND status = ?",
				appeal.ContentID, appeal.UserID, models.AppealStatusRejected).
			Count(&rejected).Error
		if err != nil {
			return models.NewInternalError(err)
		}
		if rejected > 0 {
			return models.NewPreconditionError("a previous appeal for this content was already rejected")
		}

		appeal.Status = models.AppealStatusPending
		if err := tx.Create(appeal).Error; err != nil {
			if isDuplicateKey(err) {
				return models.NewPreconditionError("an appeal for this content is already pending")
			}
			return models.NewInternalError(err)
		}

		deliberation := models.JuryDeliberation{
			AppealID: appeal.ID,
			JurySize: jurySize,
		}
		if err := tx.Create(&deliberation).Error; err != nil {
			return models.NewInternalError(err)
		}
		appeal.DeliberationID = &deliberation.ID
		if err := tx.Model(appeal).Update("deliberation_id", deliberation.ID).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
}

func (r *appealRepository) RequestRevision(ctx context.Context, appealID uint, note string) (*models.Appeal, error) {
	var appeal models.Appeal
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&appeal, appealID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Appeal", appealID)
			}
			return models.NewInternalError(err)
		}
		if appeal.Status != models.AppealStatusPending {
			return models.NewPreconditionError("only a pending appeal can be sent back for revision")
		}
		updates := map[string]interface{}{
			"status":          models.AppealStatusRevisionRequested,
			"resolution_note": note,
		}
		if err := tx.Model(&appeal).Updates(updates).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &appeal, nil
}

// Resubmit applies the author's edits and returns the appeal to pending. The
// dispute reason is replaced by a system-generated note so jurors see that
// they are reviewing revised content.
func (r *appealRepository) Resubmit(ctx context.Context, appealID, userID uint, title, body string) (*models.Appeal, error) {
	var appeal models.Appeal
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&appeal, appealID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Appeal", appealID)
			}
			return models.NewInternalError(err)
		}
		if appeal.UserID != userID {
			return models.NewForbiddenError("only the appellant may resubmit")
		}
		if appeal.Status != models.AppealStatusRevisionRequested {
			return models.NewPreconditionError("appeal is not awaiting a revision")
		}

		contentUpdates := map[string]interface{}{"body": body}
		if title != "" {
			contentUpdates["title"] = title
		}
		if err := tx.Model(&models.ContentItem{}).
			Where("id = ?", appeal.ContentID).
			Updates(contentUpdates).Error; err != nil {
			return models.NewInternalError(err)
		}

		updates := map[string]interface{}{
			"status": models.AppealStatusPending,
			"reason": "content revised and resubmitted by the author after a revision request",
		}
		if err := tx.Model(&appeal).Updates(updates).Error; err != nil {
			return models.NewInternalError(err)
		}
		appeal.Status = models.AppealStatusPending
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &appeal, nil
}

func (r *appealRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Appeal, error) {
	var appeals []models.Appeal
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&appeals).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return appeals, nil
}
