package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	"sportshop-be/internal/config"
	"sportshop-be/internal/db"
	"sportshop-be/internal/logger"

	"go.uber.org/zap"
)

func main() {
	mode := flag.String("mode", "up", "migration mode: up or down")
	dir := flag.String("dir", "./migrations", "directory holding *.up.sql / *.down.sql files")
	flag.Parse()

	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database, err := db.NewDatabase(cfg)
	if err != nil {
		logger.L().Fatal("database init failed", zap.Error(err))
	}
	defer database.Close()

	if err := run(database, *mode, *dir); err != nil {
		logger.L().Fatal("migration failed", zap.Error(err))
	}
}

func run(database *sql.DB, mode, migrationsDir string) error {
	direction, err := db.ParseDirection(mode)
	if err != nil {
		return err
	}

	info, err := os.Stat(migrationsDir)
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("failed to read migrations: %s is not a directory", migrationsDir)
	}

	return db.Migrate(database, migrationsDir, direction)
}
