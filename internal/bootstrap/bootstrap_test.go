package bootstrap

import (
	"context"
	"testing"

	"github.com/PluraGate/SyriaHub-sub004/internal/config"
	"github.com/PluraGate/SyriaHub-sub004/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newBootstrapDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return db
}

func TestEnsureRootAdminCreatesOnce(t *testing.T) {
	db := newBootstrapDB(t)
	cfg := &config.Config{
		RootAdminEmail:    "root@localhost",
		RootAdminPassword: "root-dev-password",
	}
	ctx := context.Background()

	require.NoError(t, EnsureRootAdmin(ctx, db, cfg))
	require.NoError(t, EnsureRootAdmin(ctx, db, cfg))

	var admins []models.User
	require.NoError(t, db.Where("role = ?", models.RoleAdmin).Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.Equal(t, "root", admins[0].Username)
	assert.Equal(t, "root@localhost", admins[0].Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admins[0].Password), []byte("root-dev-password")))
}

func TestEnsureRootAdminSkipsWhenAdminExists(t *testing.T) {
	db := newBootstrapDB(t)
	require.NoError(t, db.Create(&models.User{
		Username: "existing_admin",
		Email:    "admin@example.com",
		Password: "hashed",
		Role:     models.RoleAdmin,
	}).Error)

	cfg := &config.Config{
		RootAdminEmail:    "root@localhost",
		RootAdminPassword: "root-dev-password",
	}
	require.NoError(t, EnsureRootAdmin(context.Background(), db, cfg))

	var count int64
	db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)
	assert.EqualValues(t, 1, count, "an existing admin must not be duplicated")
}
