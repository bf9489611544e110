package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/FACorreiaa/invoice-catalog-sync/internal/domain/export"
)

// SyncDir reconciles every reviewed workbook (*.xlsx) in dir against the
// catalogs. A workbook that cannot be opened or parsed is logged and skipped;
// database errors abort the run since nothing later could succeed either.
func (s *Service) SyncDir(ctx context.Context, dir string) (Summary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Summary{}, fmt.Errorf("read reviewed dir: %w", err)
	}

	var total Summary
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".xlsx") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		s.logger.Info("syncing workbook", slog.String("path", path))

		f, err := os.Open(path)
		if err != nil {
			s.logger.Error("workbook skipped", slog.String("path", path), slog.String("error", err.Error()))
			continue
		}
		batch, err := export.ReadWorkbook(f)
		f.Close()
		if err != nil {
			s.logger.Error("workbook skipped", slog.String("path", path), slog.String("error", err.Error()))
			continue
		}

		summary, err := s.ReconcileAll(ctx, batch)
		total.Updated += summary.Updated
		total.Inserted += summary.Inserted
		total.Skipped += summary.Skipped
		total.ConversionFailures += summary.ConversionFailures
		if err != nil {
			return total, fmt.Errorf("sync %s: %w", path, err)
		}
	}

	s.logger.Info("sync run finished",
		slog.Int("updated", total.Updated),
		slog.Int("inserted", total.Inserted),
		slog.Int("skipped", total.Skipped),
		slog.Int("conversion_failures", total.ConversionFailures),
	)
	return total, nil
}
