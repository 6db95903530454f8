package models

import "time"

// PromotionStatus is the lifecycle state of a role-promotion request.
type PromotionStatus string

const (
	PromotionStatusPending  PromotionStatus = "pending"
	PromotionStatusApproved PromotionStatus = "approved"
	PromotionStatusRejected PromotionStatus = "rejected"
)

// EndorserTier is the quorum bucket an endorsement counts toward.
type EndorserTier string

const (
	TierModerator EndorserTier = "moderator"
	TierAdmin     EndorserTier = "admin"
)

// Minimum justification lengths enforced before any state mutation.
const (
	MinPromotionJustificationLen   = 50
	MinEndorsementJustificationLen = 20
)

// PromotionRequest is a user's request to raise their role. The required
// endorsement counts are copied from configuration at creation time so a
// later config change cannot retroactively alter an open request's quorum.
// The partial unique index enforces one pending request per user.
type PromotionRequest struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UserID        uint            `gorm:"not null;uniqueIndex:idx_promotions_one_pending,where:status = 'pending';index" json:"user_id"`
	User          *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CurrentRole   Role            `gorm:"type:varchar(20);not null" json:"current_role"`
	RequestedRole Role            `gorm:"type:varchar(20);not null" json:"requested_role"`
	Justification string          `gorm:"type:text;not null" json:"justification"`
	Status        PromotionStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	// Quorum thresholds, both >= 1.
	RequiredModeratorEndorsements int `gorm:"not null" json:"required_moderator_endorsements"`
	RequiredAdminEndorsements     int `gorm:"not null" json:"required_admin_endorsements"`

	ReviewedByUserID *uint         `json:"reviewed_by_user_id,omitempty"`
	ReviewNotes      string        `gorm:"type:text" json:"review_notes,omitempty"`
	Endorsements     []Endorsement `gorm:"foreignKey:RequestID" json:"endorsements,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// Endorsement is one qualifying account's backing of a promotion request.
// The composite unique index makes duplicate endorsements impossible at the
// store level; self-endorsement is rejected in the service layer.
type Endorsement struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	RequestID     uint         `gorm:"not null;uniqueIndex:idx_endorsements_once" json:"request_id"`
	EndorserID    uint         `gorm:"not null;uniqueIndex:idx_endorsements_once" json:"endorser_id"`
	Tier          EndorserTier `gorm:"type:varchar(20);not null" json:"tier"`
	Justification string       `gorm:"type:text;not null" json:"justification"`
	CreatedAt     time.Time    `json:"created_at"`
}
