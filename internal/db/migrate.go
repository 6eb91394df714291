package db

import (
	"database/sql"
	"errors"
	"fmt"

	"sportshop-be/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

const MigrationsTable = "schema_migrations"

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection accepts the -mode flag of cmd/migrate.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Up, Down:
		return Direction(s), nil
	default:
		return "", fmt.Errorf("unknown mode: %s (use 'up' or 'down')", s)
	}
}

// Migrate applies every pending migration (Up) or rolls back the latest one (Down).
func Migrate(db *sql.DB, dir string, d Direction) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{
		MigrationsTable: MigrationsTable,
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	switch d {
	case Up:
		err = m.Up()
	case Down:
		err = m.Steps(-1)
	default:
		return fmt.Errorf("unknown direction: %s", d)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.L().Info("no migrations to apply", zap.String("direction", string(d)))
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not run migrations (%s): %w", d, err)
	}

	version, dirty, _ := m.Version()
	logger.L().Info("migrations applied",
		zap.String("direction", string(d)),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}
