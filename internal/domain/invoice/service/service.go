// Package service orchestrates the invoice extraction pipeline: PDF text,
// line parsing, normalization and spreadsheet export.
package service

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/FACorreiaa/invoice-catalog-sync/internal/domain/export"
	"github.com/FACorreiaa/invoice-catalog-sync/internal/domain/invoice/normalizer"
	"github.com/FACorreiaa/invoice-catalog-sync/internal/domain/invoice/parser"
)

// PageExtractor yields per-page plain text for one PDF file.
type PageExtractor interface {
	ExtractPages(path string) ([]string, error)
}

// InvoiceResult is the outcome of processing one PDF.
type InvoiceResult struct {
	PDFPath        string
	OutputPath     string
	Records        []normalizer.Record
	Failures       []*normalizer.ConversionError
	Summary        export.Summary
	DiscardedLines int
	IgnoredLines   int
}

// BatchStats aggregates an extraction run over a directory.
type BatchStats struct {
	Processed int
	Failed    int
	Records   int
}

// Service runs the extraction pipeline.
type Service struct {
	extractor  PageExtractor
	parser     *parser.Parser
	normalizer *normalizer.Normalizer
	logger     *slog.Logger
}

// NewService creates an extraction service.
func NewService(extractor PageExtractor, norm *normalizer.Normalizer, logger *slog.Logger) *Service {
	return &Service{
		extractor:  extractor,
		parser:     parser.New(),
		normalizer: norm,
		logger:     logger,
	}
}

// ProcessFile extracts one invoice PDF and writes its review workbook into
// outputDir, named after the PDF.
func (s *Service) ProcessFile(pdfPath, outputDir string) (*InvoiceResult, error) {
	s.logger.Info("processing invoice", slog.String("pdf", pdfPath))

	pages, err := s.extractor.ExtractPages(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", pdfPath, err)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no text pages in %s", pdfPath)
	}

	parsed := s.parser.ParsePages(pages)
	batch := s.normalizer.NormalizeAll(parsed.Records)
	for _, f := range batch.Failures {
		s.logger.Warn("row dropped", slog.String("pdf", pdfPath), slog.String("error", f.Error()))
	}
	if len(batch.Records) == 0 {
		return nil, fmt.Errorf("no product records found in %s", pdfPath)
	}

	invoiceName := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	outputPath := filepath.Join(outputDir, invoiceName+".xlsx")

	out, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", outputPath, err)
	}
	defer out.Close()
	if err := export.WriteWorkbook(out, invoiceName, batch.Records, time.Now()); err != nil {
		return nil, fmt.Errorf("write %s: %w", outputPath, err)
	}

	summary := export.Summarize(batch.Records)
	s.logger.Info("invoice extracted",
		slog.String("pdf", pdfPath),
		slog.String("output", outputPath),
		slog.Int("records", summary.Records),
		slog.Int("units", summary.Units),
		slog.String("total_value", summary.TotalValue.StringFixed(2)),
		slog.Any("vat_rates", summary.VATRates),
		slog.Int("discarded_lines", parsed.DiscardedLines),
	)

	return &InvoiceResult{
		PDFPath:        pdfPath,
		OutputPath:     outputPath,
		Records:        batch.Records,
		Failures:       batch.Failures,
		Summary:        summary,
		DiscardedLines: parsed.DiscardedLines,
		IgnoredLines:   parsed.IgnoredLines,
	}, nil
}

// ProcessDir runs ProcessFile over every PDF in dir, in name order. A failure
// on one invoice never stops the rest of the batch.
func (s *Service) ProcessDir(dir, outputDir string) (BatchStats, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return BatchStats{}, fmt.Errorf("read invoice dir: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return BatchStats{}, fmt.Errorf("create output dir: %w", err)
	}

	var stats BatchStats
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		result, err := s.ProcessFile(filepath.Join(dir, entry.Name()), outputDir)
		if err != nil {
			stats.Failed++
			s.logger.Error("invoice failed", slog.String("error", err.Error()))
			continue
		}
		stats.Processed++
		stats.Records += len(result.Records)
	}

	s.logger.Info("extraction run finished",
		slog.Int("processed", stats.Processed),
		slog.Int("failed", stats.Failed),
		slog.Int("records", stats.Records),
	)
	return stats, nil
}
