package main

import (
	"context"
	"flag"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-analyzer/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-analyzer/pkg/config"
	pkglogger "github.com/johnquangdev/meeting-analyzer/pkg/logger"
)

func main() {
	dir := flag.String("dir", database.DefaultMigrationsDir, "migrations directory")
	down := flag.Bool("down", false, "roll back applied migrations instead of applying pending ones")
	steps := flag.Int("steps", 1, "number of migrations to roll back with -down")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := pkglogger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.NewPostgresDB(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("❌ Failed to connect to warehouse", zap.Error(err))
		os.Exit(1)
	}
	defer database.CloseDB(db)

	if *down {
		err = database.Rollback(db, *dir, *steps, logger)
	} else {
		err = database.AutoMigrate(db, *dir, logger)
	}
	if err != nil {
		logger.Error("❌ Migration failed", zap.Bool("down", *down), zap.Error(err))
		database.CloseDB(db)
		os.Exit(1)
	}
}
