package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/emre/schoolhub/internal/app/models"
)

// CreateDefaultData creates the grade levels and a default admin account if
// they don't exist. Errors are collected so one failure does not block the
// remaining seed steps.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (grades, admin account)...")
	var finalErr error

	// Grade levels 1 through 12
	for level := 1; level <= 12; level++ {
		_, err := dbPool.Exec(ctx,
			`INSERT INTO grades (level) VALUES ($1) ON CONFLICT (level) DO NOTHING`, level)
		if err != nil {
			lgr.Error().Err(err).Int("level", level).Msg("Error creating grade level")
			finalErr = errors.Join(finalErr, err)
		}
	}

	// Default admin account
	var exists bool
	err := dbPool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, "admin").Scan(&exists)
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking if admin user exists")
		return errors.Join(finalErr, err)
	}

	if exists {
		lgr.Info().Msg("Admin user already exists, skipping creation")
		return finalErr
	}

	lgr.Info().Msg("Creating default admin user...")
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("Admin123!"), bcrypt.DefaultCost)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing admin password")
		return errors.Join(finalErr, err)
	}

	var adminID int64
	err = dbPool.QueryRow(ctx,
		`INSERT INTO users (username, email, password, role, is_active)
		 VALUES ($1, $2, $3, $4, TRUE) RETURNING id`,
		"admin", "admin@schoolhub.app", string(hashedPassword), models.RoleAdmin,
	).Scan(&adminID)
	if err != nil {
		lgr.Error().Err(err).Msg("Error creating admin user")
		return errors.Join(finalErr, fmt.Errorf("failed to create admin user: %w", err))
	}

	lgr.Info().Int64("adminID", adminID).Msg("Default admin user created successfully")
	return finalErr
}
