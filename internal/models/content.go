package models

import "time"

// ContentStatus is the lifecycle state of a content item.
type ContentStatus string

const (
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusPublished ContentStatus = "published"
	ContentStatusFlagged   ContentStatus = "flagged"
	ContentStatusBlocked   ContentStatus = "blocked"
)

// ContentItem represents a piece of user-submitted content. Moderation
// decisions form an append-only version chain; LatestDecisionID points at the
// current head. Content is never deleted while an appeal references it, so no
// delete operation exists in this engine.
type ContentItem struct {
	ID               uint          `gorm:"primaryKey" json:"id"`
	AuthorID         uint          `gorm:"not null;index" json:"author_id"`
	Author           *User         `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Title            string        `gorm:"size:300" json:"title"`
	Body             string        `gorm:"type:text;not null" json:"body"`
	Status           ContentStatus `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	LatestDecisionID *uint         `json:"latest_decision_id,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// ContentEmbedding is the similarity-index row for one content item: a
// fixed-length semantic fingerprint of title + body. Only published content
// participates in originality searches.
type ContentEmbedding struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ContentID uint      `gorm:"not null;uniqueIndex" json:"content_id"`
	Vector    []float32 `gorm:"serializer:json;not null" json:"-"`
	Dim       int       `gorm:"not null" json:"dim"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
