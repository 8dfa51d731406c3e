// purge removes stored images of products that were soft deleted longer ago than the retention window.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"portal/internal/config"
	"portal/internal/database"
	"portal/internal/repository"
	"portal/internal/service"
	"portal/internal/storage"

	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var retention time.Duration
	var dryRun bool

	flagSet := pflag.NewFlagSet("purge", pflag.ContinueOnError)
	flagSet.DurationVar(&retention, "retention", cfg.ImageRetention, "only purge products deleted longer ago than this")
	flagSet.BoolVar(&dryRun, "dry-run", false, "list the products that would be purged without touching anything")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if retention < 0 {
		return fmt.Errorf("--retention must not be negative")
	}

	logger := config.NewLogger(cfg.LogLevel)

	db, err := database.NewConnection(cfg.DB, cfg.Production())
	if err != nil {
		return err
	}
	store, err := storage.NewLocal(cfg.UploadDir)
	if err != nil {
		return err
	}

	products := service.NewProductService(repository.New(db), store, logger)
	report, err := products.PurgeDeletedImages(context.Background(), retention, dryRun)
	if err != nil {
		return err
	}

	logger.Info("purge finished",
		slog.Time("cutoff", report.Cutoff),
		slog.Int("products", len(report.Products)),
		slog.Bool("dry_run", report.DryRun))
	return nil
}
