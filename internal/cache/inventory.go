package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	DecisionKeyPrefix  = "decision:content:%d"
	AppealKeyPrefix    = "appeal:%d"
	AuditPageKeyPrefix = "audit:page:%d:%d"

	auditPagePattern = "audit:page:*"
)

const (
	DecisionTTL  = 10 * time.Minute
	AppealTTL    = 2 * time.Minute
	AuditPageTTL = 30 * time.Second
)

func DecisionKey(contentID uint) string {
	return fmt.Sprintf(DecisionKeyPrefix, contentID)
}

func AppealKey(appealID uint) string {
	return fmt.Sprintf(AppealKeyPrefix, appealID)
}

func AuditPageKey(page, pageSize int) string {
	return fmt.Sprintf(AuditPageKeyPrefix, page, pageSize)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateDecision(ctx context.Context, contentID uint) {
	Invalidate(ctx, DecisionKey(contentID))
}

func InvalidateAppeal(ctx context.Context, appealID uint) {
	Invalidate(ctx, AppealKey(appealID))
}

// InvalidateAuditPages drops every cached audit page, whatever page size the
// clients asked for, so a fresh role change is visible immediately.
func InvalidateAuditPages(ctx context.Context) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, auditPagePattern, 100).Iterator()
	for iter.Next(ctx) {
		client.Del(ctx, iter.Val())
	}
}
