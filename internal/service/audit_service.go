package service

import (
	"context"

	"github.com/PluraGate/SyriaHub-sub004/internal/cache"
	"github.com/PluraGate/SyriaHub-sub004/internal/models"
	"github.com/PluraGate/SyriaHub-sub004/internal/repository"
)

// Audit log pagination bounds.
const (
	DefaultAuditPageSize = 20
	MaxAuditPageSize     = 100
)

// AuditPage is one page of the role-change audit log, newest entry first.
type AuditPage struct {
	Entries  []models.AuditEntry `json:"entries"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
	Total    int64               `json:"total"`
}

// AuditService reads the append-only role-change audit log.
type AuditService struct {
	auditRepo repository.AuditRepository
}

// NewAuditService returns a new AuditService.
func NewAuditService(auditRepo repository.AuditRepository) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// List returns one page of audit entries in descending creation order. Pages
// are 1-based; out-of-range values are clamped rather than rejected.
func (s *AuditService) List(ctx context.Context, page, pageSize int) (*AuditPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultAuditPageSize
	}
	if pageSize > MaxAuditPageSize {
		pageSize = MaxAuditPageSize
	}

	result := &AuditPage{Page: page, PageSize: pageSize}
	fetch := func() error {
		entries, total, err := s.auditRepo.List(ctx, pageSize, (page-1)*pageSize)
		if err != nil {
			return err
		}
		result.Entries = entries
		result.Total = total
		return nil
	}

	// Only the first pages are hot enough to cache; deep history reads go
	// straight to the store.
	if page <= 3 {
		if err := cache.Aside(ctx, cache.AuditPageKey(page, pageSize), result, cache.AuditPageTTL, fetch); err != nil {
			return nil, err
		}
		return result, nil
	}
	if err := fetch(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListForUser returns the role-change history of one subject user.
func (s *AuditService) ListForUser(ctx context.Context, subjectUserID uint, limit, offset int) ([]models.AuditEntry, error) {
	return s.auditRepo.ListBySubject(ctx, subjectUserID, limit, offset)
}
