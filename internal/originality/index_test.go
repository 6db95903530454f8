package originality

import (
	"context"
	"testing"

	"github.com/PluraGate/SyriaHub-sub004/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newIndexDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.ContentItem{},
		&models.ContentEmbedding{},
	))
	return db
}

func indexContent(t *testing.T, db *gorm.DB, status models.ContentStatus, vec []float32) uint {
	t.Helper()
	item := models.ContentItem{AuthorID: 1, Title: "t", Body: "b", Status: status}
	require.NoError(t, db.Create(&item).Error)

	ix := NewIndex(db)
	require.NoError(t, ix.Upsert(context.Background(), item.ID, vec))
	return item.ID
}

func TestIndexSearchPublishedOnly(t *testing.T) {
	db := newIndexDB(t)
	ix := NewIndex(db)
	ctx := context.Background()

	published := indexContent(t, db, models.ContentStatusPublished, []float32{1, 0, 0})
	indexContent(t, db, models.ContentStatusFlagged, []float32{1, 0, 0})

	matches, err := ix.Search(ctx, []float32{1, 0, 0}, 0.5, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, published, matches[0].ContentID)
	assert.InDelta(t, 1.0, matches[0].Similarity, 1e-9)
}

func TestIndexSearchFloorAndOrder(t *testing.T) {
	db := newIndexDB(t)
	ix := NewIndex(db)
	ctx := context.Background()

	near := indexContent(t, db, models.ContentStatusPublished, []float32{1, 0.1, 0})
	indexContent(t, db, models.ContentStatusPublished, []float32{0, 1, 0}) // orthogonal, below floor
	exact := indexContent(t, db, models.ContentStatusPublished, []float32{1, 0, 0})

	matches, err := ix.Search(ctx, []float32{1, 0, 0}, 0.5, 10)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, exact, matches[0].ContentID, "best match first")
	assert.Equal(t, near, matches[1].ContentID)

	limited, err := ix.Search(ctx, []float32{1, 0, 0}, 0.5, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, exact, limited[0].ContentID)
}

func TestIndexUpsertReplaces(t *testing.T) {
	db := newIndexDB(t)
	ix := NewIndex(db)
	ctx := context.Background()

	id := indexContent(t, db, models.ContentStatusPublished, []float32{1, 0, 0})
	require.NoError(t, ix.Upsert(ctx, id, []float32{0, 1, 0}))

	var count int64
	db.Model(&models.ContentEmbedding{}).Where("content_id = ?", id).Count(&count)
	assert.EqualValues(t, 1, count, "one embedding row per content item")

	matches, err := ix.Search(ctx, []float32{0, 1, 0}, 0.9, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, id, matches[0].ContentID)
}
