package service

import (
	"context"
	"testing"

	"github.com/PluraGate/SyriaHub-sub004/internal/models"
)

func TestAuditServiceListClampsPagination(t *testing.T) {
	var gotLimit, gotOffset int
	repo := &auditRepoStub{
		listFn: func(_ context.Context, limit, offset int) ([]models.AuditEntry, int64, error) {
			gotLimit, gotOffset = limit, offset
			return []models.AuditEntry{}, 0, nil
		},
	}

	svc := NewAuditService(repo)
	page, err := svc.List(context.Background(), 0, 1000)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if page.Page != 1 || page.PageSize != MaxAuditPageSize {
		t.Fatalf("expected page 1 size %d, got page %d size %d", MaxAuditPageSize, page.Page, page.PageSize)
	}
	if gotLimit != MaxAuditPageSize || gotOffset != 0 {
		t.Fatalf("expected limit %d offset 0, got %d/%d", MaxAuditPageSize, gotLimit, gotOffset)
	}
}

func TestAuditServiceListDeepPageOffset(t *testing.T) {
	var gotOffset int
	repo := &auditRepoStub{
		listFn: func(_ context.Context, limit, offset int) ([]models.AuditEntry, int64, error) {
			gotOffset = offset
			return nil, 200, nil
		},
	}

	svc := NewAuditService(repo)
	page, err := svc.List(context.Background(), 10, 20)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if gotOffset != 180 {
		t.Fatalf("expected offset 180 for page 10, got %d", gotOffset)
	}
	if page.Total != 200 {
		t.Fatalf("expected total 200, got %d", page.Total)
	}
}
