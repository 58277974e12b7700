package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-analyzer/internal/app"
	"github.com/johnquangdev/meeting-analyzer/internal/domain/entities"
	pkgai "github.com/johnquangdev/meeting-analyzer/pkg/ai"
	"github.com/johnquangdev/meeting-analyzer/pkg/config"
	pkglogger "github.com/johnquangdev/meeting-analyzer/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 1
	}

	logger, err := pkglogger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Printf("Failed to initialize logger: %v", err)
		return 1
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("🔧 Initializing dependencies...")
	application, err := app.New(ctx, cfg, prometheus.NewRegistry(), true, logger)
	if err != nil {
		var cfgErr *pkgai.ConfigurationError
		if errors.As(err, &cfgErr) {
			logger.Error("❌ Analyzer is not configured", zap.String("resource", cfgErr.Resource), zap.Error(err))
		} else {
			logger.Error("❌ Failed to initialize dependencies", zap.Error(err))
		}
		return 1
	}
	defer application.Close()

	logger.Info("🚀 Starting batch run")
	summary, err := application.Batch.Run(ctx)
	if err != nil {
		logger.Error("❌ Scan failed", zap.Error(err))
		return 1
	}

	printSummary(os.Stdout, summary)
	return 0
}

func printSummary(w io.Writer, s entities.BatchSummary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "run\t%s\n", s.RunID)
	fmt.Fprintf(tw, "documents\t%d\n", s.Total)
	fmt.Fprintf(tw, "processed\t%d\n", s.Processed)
	fmt.Fprintf(tw, "skipped\t%d\n", s.Skipped)
	fmt.Fprintf(tw, "errors\t%d\n", s.Errors)

	kinds := make([]string, 0, len(s.ErrorsByKind))
	for kind := range s.ErrorsByKind {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		fmt.Fprintf(tw, "  %s\t%d\n", kind, s.ErrorsByKind[kind])
	}

	fmt.Fprintf(tw, "duration\t%s\n", s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond))
	_ = tw.Flush()
}
