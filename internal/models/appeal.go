package models

import "time"

// AppealStatus is the lifecycle state of a moderation appeal.
type AppealStatus string

const (
	AppealStatusPending           AppealStatus = "pending"
	AppealStatusApproved          AppealStatus = "approved"
	AppealStatusRejected          AppealStatus = "rejected"
	AppealStatusRevisionRequested AppealStatus = "revision_requested"
)

// MinAppealReasonLen is the minimum length of an appeal's dispute reason.
const MinAppealReasonLen = 20

// Appeal is a content owner's dispute of a moderation decision. The partial
// unique index lets the store, not application logic, guarantee at most one
// pending appeal per (content, user) under concurrent writers.
type Appeal struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	ContentID      uint         `gorm:"not null;uniqueIndex:idx_appeals_one_pending,where:status = 'pending'" json:"content_id"`
	UserID         uint         `gorm:"not null;uniqueIndex:idx_appeals_one_pending,where:status = 'pending';index" json:"user_id"`
	Reason         string       `gorm:"type:text;not null" json:"reason"`
	Status         AppealStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	DeliberationID *uint        `json:"deliberation_id,omitempty"`
	ResolutionNote string       `gorm:"type:text" json:"resolution_note,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// Resolved reports whether the appeal reached a terminal state.
func (a *Appeal) Resolved() bool {
	return a.Status == AppealStatusApproved || a.Status == AppealStatusRejected
}
