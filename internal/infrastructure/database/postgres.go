package database

import (
	"context"
	"fmt"
	"time"

	migrate "github.com/rubenv/sql-migrate"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/johnquangdev/meeting-analyzer/pkg/config"
)

// DefaultMigrationsDir is where the SQL migrations live relative to the working directory
const DefaultMigrationsDir = "migrations"

const (
	dialect      = "postgres"
	slowQuery    = time.Second
	connLifetime = time.Hour
	pingTimeout  = 5 * time.Second
)

// gormWriter routes gorm's printf-style output into zap
type gormWriter struct {
	logger *zap.SugaredLogger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.logger.Infof(format, args...)
}

// newGormLogger logs every statement in development and only errors and slow
// queries in production
func newGormLogger(environment string, logger *zap.Logger) gormlogger.Interface {
	level := gormlogger.Info
	if environment == "production" {
		level = gormlogger.Error
	}
	return gormlogger.New(gormWriter{logger: logger.Named("gorm").Sugar()}, gormlogger.Config{
		SlowThreshold:             slowQuery,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

// NewPostgresDB opens the warehouse connection pool and checks it is reachable
func NewPostgresDB(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := gorm.Open(postgres.Open(cfg.GetDatabaseDSN()), &gorm.Config{
		Logger: newGormLogger(cfg.Environment, logger),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to warehouse: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get warehouse connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Warehouse.MaxConns)
	sqlDB.SetMaxIdleConns(cfg.Warehouse.MinConns)
	sqlDB.SetConnMaxLifetime(connLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping warehouse: %w", err)
	}

	logger.Info("✅ Warehouse connected",
		zap.String("host", cfg.Warehouse.Host),
		zap.String("database", cfg.Warehouse.Name))
	return db, nil
}

// MigrationSource returns the sql-migrate source for dir
func MigrationSource(dir string) *migrate.FileMigrationSource {
	if dir == "" {
		dir = DefaultMigrationsDir
	}
	return &migrate.FileMigrationSource{Dir: dir}
}

// AutoMigrate applies pending migrations from dir
func AutoMigrate(db *gorm.DB, dir string, logger *zap.Logger) error {
	return execMigrations(db, dir, migrate.Up, 0, logger)
}

// Rollback reverts the last steps applied migrations from dir
func Rollback(db *gorm.DB, dir string, steps int, logger *zap.Logger) error {
	if steps <= 0 {
		return fmt.Errorf("rollback needs a positive step count, got %d", steps)
	}
	return execMigrations(db, dir, migrate.Down, steps, logger)
}

func execMigrations(db *gorm.DB, dir string, direction migrate.MigrationDirection, max int, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	source := MigrationSource(dir)
	name := directionName(direction)

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get warehouse connection for migrate %s: %w", name, err)
	}

	logger.Info("🔄 Running warehouse migrations",
		zap.String("direction", name),
		zap.String("dir", source.Dir))

	n, err := migrate.ExecMax(sqlDB, dialect, source, direction, max)
	if err != nil {
		return fmt.Errorf("failed to migrate %s: %w", name, err)
	}

	logger.Info("✅ Warehouse migrations finished", zap.String("direction", name), zap.Int("applied", n))
	return nil
}

func directionName(direction migrate.MigrationDirection) string {
	if direction == migrate.Down {
		return "down"
	}
	return "up"
}

// CloseDB closes the warehouse connection pool
func CloseDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get warehouse connection: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close warehouse: %w", err)
	}
	return nil
}
