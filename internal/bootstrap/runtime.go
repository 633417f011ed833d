// Package bootstrap connects the process to its backing stores.
package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"jobboard/internal/cache"
	"jobboard/internal/config"
	"jobboard/internal/database"
	"jobboard/internal/middleware"
	"jobboard/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// InitRuntime connects to the database and Redis. A nil Redis client means
// the process runs without cache, revocation or notifications.
func InitRuntime(cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return db, cache.GetClient(), nil
}

// AccountLookup finds accounts by email.
type AccountLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
}

// AdminCreator creates admin accounts.
type AdminCreator interface {
	CreateAdmin(ctx context.Context, email, password string) (*models.Account, error)
}

// EnsureDevRootAdmin creates the development admin named by
// DEV_ROOT_ADMIN_EMAIL when it does not exist yet. It does nothing outside
// development or when the email is unset.
func EnsureDevRootAdmin(ctx context.Context, cfg *config.Config, accounts AccountLookup, creator AdminCreator) error {
	if cfg == nil || cfg.Env != "development" {
		return nil
	}
	email := strings.ToLower(strings.TrimSpace(cfg.DevRootAdminEmail))
	if email == "" {
		return nil
	}
	if cfg.DevRootAdminPassword == "" {
		return fmt.Errorf("DEV_ROOT_ADMIN_PASSWORD must be set when DEV_ROOT_ADMIN_EMAIL is")
	}

	existing, err := accounts.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("look up root admin: %w", err)
	}
	if existing != nil {
		if existing.Role != models.RoleAdmin {
			return fmt.Errorf("account %s exists with role %s", email, existing.Role)
		}
		return nil
	}

	account, err := creator.CreateAdmin(ctx, email, cfg.DevRootAdminPassword)
	if err != nil {
		return fmt.Errorf("create root admin: %w", err)
	}
	middleware.Logger.InfoContext(ctx, "development root admin created", "account_id", account.ID, "email", email)
	return nil
}
