package repository

import (
	"context"

	"github.com/PluraGate/SyriaHub-sub004/internal/models"

	"gorm.io/gorm"
)

// AuditRepository defines the read interface over the audit log. Entries are
// written only by the promotion quorum transaction; this repository never
// updates or deletes them.
type AuditRepository interface {
	List(ctx context.Context, limit, offset int) ([]models.AuditEntry, int64, error)
	ListBySubject(ctx context.Context, subjectUserID uint, limit, offset int) ([]models.AuditEntry, error)
}

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

// List returns one page of audit entries, newest first, plus the total count
// so callers can report pagination metadata.
func (r *auditRepository) List(ctx context.Context, limit, offset int) ([]models.AuditEntry, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.AuditEntry{}).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var entries []models.AuditEntry
	err := r.db.WithContext(ctx).
		Preload("SubjectUser").
		Preload("ActorUser").
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return entries, total, nil
}

func (r *auditRepository) ListBySubject(ctx context.Context, subjectUserID uint, limit, offset int) ([]models.AuditEntry, error) {
	var entries []models.AuditEntry
	err := r.db.WithContext(ctx).
		Where("subject_user_id = ?", subjectUserID).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return entries, nil
}
