// Command invoicesync extracts product line items from vendor invoice PDFs
// into review spreadsheets, and syncs reviewed spreadsheets into the product
// catalog.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/FACorreiaa/invoice-catalog-sync/internal/domain/catalog/repository"
	"github.com/FACorreiaa/invoice-catalog-sync/internal/domain/invoice/extractor"
	"github.com/FACorreiaa/invoice-catalog-sync/internal/domain/invoice/normalizer"
	invoiceservice "github.com/FACorreiaa/invoice-catalog-sync/internal/domain/invoice/service"
	"github.com/FACorreiaa/invoice-catalog-sync/internal/domain/reconcile"
	"github.com/FACorreiaa/invoice-catalog-sync/pkg/audit"
	"github.com/FACorreiaa/invoice-catalog-sync/pkg/config"
	"github.com/FACorreiaa/invoice-catalog-sync/pkg/cron"
	"github.com/FACorreiaa/invoice-catalog-sync/pkg/db"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := run(logger); err != nil {
		logger.Error("run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	if len(os.Args) < 2 {
		return fmt.Errorf("usage: invoicesync <extract|sync> [flags]")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	switch os.Args[1] {
	case "extract":
		return runExtract(cfg, logger, os.Args[2:])
	case "sync":
		return runSync(cfg, logger, os.Args[2:])
	default:
		return fmt.Errorf("unknown command %q, expected extract or sync", os.Args[1])
	}
}

func runExtract(cfg *config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	invoiceDir := fs.String("in", cfg.Paths.InvoiceDir, "Directory of invoice PDFs")
	outputDir := fs.String("out", cfg.Paths.OutputDir, "Directory for review spreadsheets")
	if err := fs.Parse(args); err != nil {
		return err
	}

	svc := invoiceservice.NewService(
		extractor.New(),
		normalizer.New(normalizer.DefaultFamilies()),
		logger,
	)
	_, err := svc.ProcessDir(*invoiceDir, *outputDir)
	return err
}

func runSync(cfg *config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	reviewedDir := fs.String("in", cfg.Paths.ReviewedDir, "Directory of reviewed spreadsheets")
	schedule := fs.String("schedule", "", "Cron spec to run the sync on a schedule instead of once")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()

	database, err := db.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close()
	if err := database.Migrate(); err != nil {
		return err
	}

	catalogRepo := repository.NewPostgresCatalogRepository(database.Pool)
	providerRepo := repository.NewPostgresProviderRepository(database.Pool)

	// Each run gets a fresh audit trail: the logs are reset per run.
	job := func(ctx context.Context) error {
		trail, err := audit.NewWriter(cfg.Paths.AuditOKPath, cfg.Paths.AuditErrPath)
		if err != nil {
			return err
		}
		defer trail.Close()

		svc := reconcile.NewService(catalogRepo, providerRepo, trail, cfg.Pricing.MarginPercent, logger)
		_, err = svc.SyncDir(ctx, *reviewedDir)
		return err
	}

	if *schedule == "" {
		return job(ctx)
	}

	scheduler := cron.NewScheduler(job, logger)
	if err := scheduler.Start(*schedule); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	<-scheduler.Stop().Done()
	return nil
}
