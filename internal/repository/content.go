package repository

import (
	"context"
	"errors"

	"github.com/PluraGate/SyriaHub-sub004/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ContentRepository defines the interface for content data operations.
// RecordDecision is the write path of a moderation pass: the decision row and
// the content's status transition land in one transaction, keeping the
// decision chain consistent with the visible status.
type ContentRepository interface {
	Create(ctx context.Context, item *models.ContentItem) error
	GetByID(ctx context.Context, id uint) (*models.ContentItem, error)
	PublishedText(ctx context.Context, id uint) (string, error)
	RecordDecision(ctx context.Context, decision *models.ModerationDecision, status models.ContentStatus) error
	LatestDecision(ctx context.Context, contentID uint) (*models.ModerationDecision, error)
	ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]models.ContentItem, error)
}

type contentRepository struct {
	db *gorm.DB
}

// NewContentRepository creates a new content repository
func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) Create(ctx context.Context, item *models.ContentItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *contentRepository) GetByID(ctx context.Context, id uint) (*models.ContentItem, error) {
	var item models.ContentItem
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Content", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &item, nil
}

// PublishedText returns the full text of a published content item. It backs
// the originality confirmation call, which compares whole documents.
func (r *contentRepository) PublishedText(ctx context.Context, id uint) (string, error) {
	var item models.ContentItem
	err := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, models.ContentStatusPublished).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", models.NewNotFoundError("Content", id)
		}
		return "", models.NewInternalError(err)
	}
	if item.Title == "" {
		return item.Body, nil
	}
	return item.Title + "\n\n" + item.Body, nil
}

func (r *contentRepository) RecordDecision(ctx context.Context, decision *models.ModerationDecision, status models.ContentStatus) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.ContentItem
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&item, decision.ContentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Content", decision.ContentID)
			}
			return models.NewInternalError(err)
		}
		if err := tx.Create(decision).Error; err != nil {
			return models.NewInternalError(err)
		}
		updates := map[string]interface{}{
			"status":             status,
			"latest_decision_id": decision.ID,
		}
		if err := tx.Model(&item).Updates(updates).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	return err
}

func (r *contentRepository) LatestDecision(ctx context.Context, contentID uint) (*models.ModerationDecision, error) {
	var decision models.ModerationDecision
	err := r.db.WithContext(ctx).
		Where("content_id = ?", contentID).
		Order("id DESC").
		First(&decision).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Decision for content", contentID)
		}
		return nil, models.NewInternalError(err)
	}
	return &decision, nil
}

func (r *contentRepository) ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]models.ContentItem, error) {
	var items []models.ContentItem
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("id DESC").
		Limit(limit).Offset(offset).
		Find(&items).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}
