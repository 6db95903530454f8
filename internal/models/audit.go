package models

import "time"

// AuditEntry is the write-once record of a completed role transition. It is
// created in the same transaction as the role mutation and never updated or
// deleted by this engine.
type AuditEntry struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	SubjectUserID uint      `gorm:"not null;index" json:"subject_user_id"`
	SubjectUser   *User     `gorm:"foreignKey:SubjectUserID" json:"subject_user,omitempty"`
	ActorUserID   uint      `gorm:"not null" json:"actor_user_id"`
	ActorUser     *User     `gorm:"foreignKey:ActorUserID" json:"actor_user,omitempty"`
	OldRole       Role      `gorm:"type:varchar(20);not null" json:"old_role"`
	NewRole       Role      `gorm:"type:varchar(20);not null" json:"new_role"`
	Reason        string    `gorm:"type:text;not null" json:"reason"`
	CreatedAt     time.Time `gorm:"index:idx_audit_entries_created_at,sort:desc" json:"created_at"`
}
