package originality

import (
	"context"
	"math"
	"sort"

	"github.com/PluraGate/SyriaHub-sub004/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Match is one similarity-index hit.
type Match struct {
	ContentID  uint    `json:"content_id"`
	Similarity float64 `json:"similarity"`
}

// Index is the similarity index over published content.
type Index interface {
	// Search returns up to limit matches with similarity >= floor, best first.
	Search(ctx context.Context, vec []float32, floor float64, limit int) ([]Match, error)
	// Upsert stores or replaces the embedding for a content item.
	Upsert(ctx context.Context, contentID uint, vec []float32) error
}

// gormIndex ranks stored embeddings by cosine similarity. The candidate set
// is restricted to content that is currently published.
type gormIndex struct {
	db *gorm.DB
}

// NewIndex creates a similarity index backed by the content_embeddings table.
func NewIndex(db *gorm.DB) Index {
	return &gormIndex{db: db}
}

func (ix *gormIndex) Upsert(ctx context.Context, contentID uint, vec []float32) error {
	emb := models.ContentEmbedding{
		ContentID: contentID,
		Vector:    vec,
		Dim:       len(vec),
	}
	return ix.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "content_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"vector", "dim", "updated_at"}),
		}).
		Create(&emb).Error
}

func (ix *gormIndex) Search(ctx context.Context, vec []float32, floor float64, limit int) ([]Match, error) {
	var rows []models.ContentEmbedding
	err := ix.db.WithContext(ctx).
		Joins("JOIN content_items ON content_items.id = content_embeddings.content_id").
		Where("content_items.status = ?", models.ContentStatusPublished).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(rows))
	for _, row := range rows {
		sim := Cosine(vec, row.Vector)
		if sim >= floor {
			matches = append(matches, Match{ContentID: row.ContentID, Similarity: sim})
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Similarity > matches[j].Similarity })
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// Cosine returns the cosine similarity of two vectors, 0 when either is
// degenerate or the dimensions differ.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
