package models

import "time"

// DecisionOutcome is the composite result of one moderation pass.
type DecisionOutcome string

const (
	DecisionAllow DecisionOutcome = "allow"
	DecisionBlock DecisionOutcome = "block"
)

// ModerationDecision records one content-evaluation pass: the classification
// verdict, the originality verdict, and the composite outcome. Rows are
// immutable; a re-evaluation writes a new row so the full history is kept.
type ModerationDecision struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	ContentID uint            `gorm:"not null;index" json:"content_id"`
	Outcome   DecisionOutcome `gorm:"type:varchar(10);not null" json:"outcome"`

	// Classification verdict.
	Flagged    bool               `gorm:"not null;default:false" json:"flagged"`
	Categories map[string]bool    `gorm:"serializer:json" json:"categories,omitempty"`
	Scores     map[string]float64 `gorm:"serializer:json" json:"scores,omitempty"`

	// Originality verdict.
	Similarity       float64 `gorm:"not null;default:0" json:"similarity"`
	MatchedSourceIDs []uint  `gorm:"serializer:json" json:"matched_source_ids,omitempty"`
	Plagiarized      bool    `gorm:"not null;default:false" json:"plagiarized"`

	// Notes carries diagnostics, including fail-open reasons when an
	// upstream service was unavailable.
	Notes     string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
