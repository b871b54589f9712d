package database

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/apperr"
	"backend/internal/model"
	"backend/internal/repository"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM and migrates
// the schema. A connection failure here is the only fatal error in the
// application: everything after startup degrades per request instead.
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.Material{},
		&model.Product{},
		&model.ProductMaterial{},
		&model.Order{},
		&model.OrderProduct{},
		&model.OrderLeftover{},
		&model.AuditLog{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// gormConfig enables TranslateError: Postgres reports unique violations as
// *pgconn.PgError, and translation maps them onto gorm.ErrDuplicatedKey for
// the errors.Is checks in the seed and the user service.
func gormConfig() *gorm.Config {
	return &gorm.Config{TranslateError: true}
}

// Ping reports whether the connection pool is reachable. Failures come back
// wrapped in the BackendUnavailable taxonomy error, which the health endpoint
// maps to 503.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return unavailable(err)
	}
	return unavailable(sqlDB.PingContext(ctx))
}

func unavailable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", apperr.ErrBackendUnavailable, err)
}

// Default admin credentials, created by SeedDefaultAdmin on an empty user
// table. Documented in README.md; the login flow depends on the stored
// plaintext password matching these values exactly.
const (
	DefaultAdminEmail    = "admin@fabrika.local"
	DefaultAdminPassword = "admin123"
)

// SeedDefaultAdmin inserts the bootstrap admin account when no users exist,
// so a fresh deployment is reachable through the login form.
func SeedDefaultAdmin(ctx context.Context, users repository.UserRepository) (bool, error) {
	total, err := users.Count(ctx)
	if err != nil {
		return false, err
	}
	if total > 0 {
		return false, nil
	}

	admin := &model.User{
		Email:    DefaultAdminEmail,
		Name:     "Admin",
		Surname:  "Admin",
		Phone:    "",
		Password: DefaultAdminPassword,
		Role:     model.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		// Tolerate a concurrent seed from another instance.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
