package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-analyzer/internal/adapter/repository"
	domainrepo "github.com/johnquangdev/meeting-analyzer/internal/domain/repositories"
	"github.com/johnquangdev/meeting-analyzer/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-analyzer/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-analyzer/internal/infrastructure/external/gdrive"
	"github.com/johnquangdev/meeting-analyzer/internal/infrastructure/metrics"
	"github.com/johnquangdev/meeting-analyzer/internal/infrastructure/storage"
	aiuse "github.com/johnquangdev/meeting-analyzer/internal/usecase/ai"
	"github.com/johnquangdev/meeting-analyzer/internal/usecase/batch"
	pkgai "github.com/johnquangdev/meeting-analyzer/pkg/ai"
	"github.com/johnquangdev/meeting-analyzer/pkg/config"
)

// App holds the wired components shared by the batch and API binaries
type App struct {
	Analyzer *aiuse.Analyzer
	Batch    *batch.Service
	Metrics  *metrics.Metrics

	closers []func()
}

// NewAnalyzer wires the analysis pipeline. A missing or empty system
// instruction is returned as *ai.ConfigurationError.
func NewAnalyzer(cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) (*aiuse.Analyzer, error) {
	instruction, err := pkgai.LoadSystemInstruction(cfg.LLM.PromptPath)
	if err != nil {
		return nil, err
	}
	composer, err := pkgai.NewComposer(cfg.LLM.Model, instruction)
	if err != nil {
		return nil, err
	}

	client := pkgai.NewCompletionClient(cfg.LLM, logger)
	return aiuse.NewAnalyzer(composer, client, aiuse.NewParser(logger), m, logger), nil
}

// New wires the analyzer and, when withBatch is set, the Drive batch driver with its
// ledger, warehouse and archive. Call Close when done.
func New(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, withBatch bool, logger *zap.Logger) (*App, error) {
	a := &App{Metrics: metrics.New(reg)}

	analyzer, err := NewAnalyzer(cfg, a.Metrics, logger)
	if err != nil {
		return nil, err
	}
	a.Analyzer = analyzer

	if !withBatch {
		return a, nil
	}

	if err := a.wireBatch(ctx, cfg, logger); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) wireBatch(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("📁 Initializing Google Drive client...")
	store, err := gdrive.NewClient(ctx, cfg.Drive, logger)
	if err != nil {
		return fmt.Errorf("failed to create drive client: %w", err)
	}

	ledger, err := a.newLedger(ctx, cfg, logger)
	if err != nil {
		return err
	}

	warehouse, err := a.newWarehouse(ctx, cfg, logger)
	if err != nil {
		return err
	}

	var archive domainrepo.OutputArchive
	if cfg.Storage.Endpoint != "" {
		logger.Info("🗄️ Initializing output archive...", zap.String("endpoint", cfg.Storage.Endpoint))
		minioArchive, err := storage.NewMinIOArchive(ctx, cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to create output archive: %w", err)
		}
		archive = minioArchive
	}

	a.Batch = batch.NewService(store, a.Analyzer, warehouse, ledger, archive, a.Metrics, batch.OptionsFromConfig(cfg), logger)
	return nil
}

func (a *App) newLedger(ctx context.Context, cfg *config.Config, logger *zap.Logger) (domainrepo.ProcessedLedger, error) {
	if cfg.Redis.Addr == "" {
		logger.Info("📒 Using in-memory processed ledger")
		return cache.NewMemoryLedger(cache.NewMemoryStore(ctx), cfg.Redis.TTL), nil
	}

	logger.Info("📦 Connecting to Redis...", zap.String("addr", cfg.Redis.Addr))
	client, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = client.Close() })
	return cache.NewRedisLedger(client, cfg.Redis.TTL), nil
}

func (a *App) newWarehouse(ctx context.Context, cfg *config.Config, logger *zap.Logger) (domainrepo.AnalysisRepository, error) {
	if !cfg.Warehouse.Enabled {
		logger.Info("🔕 Warehouse disabled")
		return repository.NewNoopAnalysisRepository(), nil
	}

	logger.Info("📦 Connecting to warehouse...")
	db, err := database.NewPostgresDB(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = database.CloseDB(db) })

	if cfg.Warehouse.AutoMigrate {
		if err := database.AutoMigrate(db, database.DefaultMigrationsDir, logger); err != nil {
			return nil, err
		}
	}
	return repository.NewAnalysisRepository(db), nil
}

// Close releases connections in reverse order of creation
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
