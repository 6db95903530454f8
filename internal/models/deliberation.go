package models

import "time"

// JuryVote is a single juror's verdict on an appeal.
type JuryVote string

const (
	// VoteUphold keeps the original moderation decision in place.
	VoteUphold JuryVote = "uphold"
	// VoteOverturn reverses the original moderation decision.
	VoteOverturn JuryVote = "overturn"
)

// JuryDecision is the final outcome of a deliberation.
type JuryDecision string

const (
	JuryDecisionUphold   JuryDecision = "uphold"
	JuryDecisionOverturn JuryDecision = "overturn"
	// JuryDecisionSplit marks an exact tie: the original decision stands,
	// but the outcome is distinguishable from a reasoned rejection.
	JuryDecisionSplit JuryDecision = "split"
)

// JuryDeliberation resolves one appeal through independent juror votes.
// JurySize is fixed when the deliberation is created; once FinalDecision is
// set the deliberation is immutable and no further votes are accepted.
type JuryDeliberation struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	AppealID      uint         `gorm:"not null;uniqueIndex" json:"appeal_id"`
	JurySize      int          `gorm:"not null" json:"jury_size"`
	FinalDecision JuryDecision `gorm:"type:varchar(10);not null;default:''" json:"final_decision,omitempty"`
	DecidedAt     *time.Time   `json:"decided_at,omitempty"`
	Votes         []JurorVote  `gorm:"foreignKey:DeliberationID" json:"votes,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// Final reports whether the deliberation reached its terminal decision.
func (d *JuryDeliberation) Final() bool {
	return d.FinalDecision != ""
}

// JurorVote is one juror's vote within a deliberation. The composite unique
// index is the store-level guarantee that a juror cannot vote twice.
type JurorVote struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	DeliberationID uint      `gorm:"not null;uniqueIndex:idx_juror_votes_once" json:"deliberation_id"`
	JurorID        uint      `gorm:"not null;uniqueIndex:idx_juror_votes_once" json:"juror_id"`
	Vote           JuryVote  `gorm:"type:varchar(10);not null" json:"vote"`
	CreatedAt      time.Time `json:"created_at"`
}
