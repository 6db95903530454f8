// Package bootstrap establishes the server's runtime dependencies: database,
// cache, and in development a root admin account.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/PluraGate/SyriaHub-sub004/internal/cache"
	"github.com/PluraGate/SyriaHub-sub004/internal/config"
	"github.com/PluraGate/SyriaHub-sub004/internal/database"
	"github.com/PluraGate/SyriaHub-sub004/internal/models"
	"github.com/PluraGate/SyriaHub-sub004/internal/server"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Setup connects the database, initializes the cache, ensures the development
// root admin, and builds the server.
func Setup(cfg *config.Config) (*server.Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	isProduction := cfg.Env == "production" || cfg.Env == "prod"
	if !isProduction {
		if err := EnsureRootAdmin(context.Background(), db, cfg); err != nil {
			return nil, fmt.Errorf("root admin setup failed: %w", err)
		}
	}

	return server.NewServerWithDeps(cfg, db, cache.GetClient())
}

// EnsureRootAdmin creates the configured root admin account when no admin
// exists yet, so a fresh development database is usable without manual role
// surgery. A second call is a no-op.
func EnsureRootAdmin(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.RootAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	root := models.User{
		Username: "root",
		Email:    cfg.RootAdminEmail,
		Password: string(hash),
		Role:     models.RoleAdmin,
	}
	if err := db.WithContext(ctx).Create(&root).Error; err != nil {
		// A concurrent boot may have won the race; an admin existing is the
		// goal, not an error.
		var recheck int64
		if db.WithContext(ctx).Model(&models.User{}).
			Where("role = ?", models.RoleAdmin).
			Count(&recheck); recheck > 0 {
			return nil
		}
		return err
	}
	return nil
}
