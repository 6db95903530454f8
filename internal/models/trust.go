package models

import "time"

// Reasons a trust recalculation can be enqueued.
const (
	TrustReasonEndorsementCast  = "endorsement_cast"
	TrustReasonRoleChange       = "role_change"
	TrustReasonAppealResolution = "appeal_resolution"
)

// TrustRecalcTask is one entry in the trust-recalculation queue. Entries are
// claimed by a sweep (claim token + claim time) before processing so two
// concurrent sweeps never work the same entry, and recomputation is
// idempotent so a crashed sweep can safely be redone after the lease expires.
type TrustRecalcTask struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	SubjectUserID uint       `gorm:"not null;index" json:"subject_user_id"`
	Reason        string     `gorm:"size:50;not null" json:"reason"`
	EnqueuedAt    time.Time  `gorm:"not null" json:"enqueued_at"`
	Processed     bool       `gorm:"not null;default:false;index" json:"processed"`
	ClaimToken    string     `gorm:"size:36" json:"-"`
	ClaimedAt     *time.Time `json:"-"`
}
