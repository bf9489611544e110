// Package reconcile matches normalized invoice records against the product
// catalogs and applies price updates or inserts.
package reconcile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/FACorreiaa/invoice-catalog-sync/internal/domain/catalog/repository"
	"github.com/FACorreiaa/invoice-catalog-sync/internal/domain/invoice/normalizer"
	"github.com/FACorreiaa/invoice-catalog-sync/pkg/audit"
)

// OutcomeKind classifies what happened to one record.
type OutcomeKind string

const (
	OutcomeUpdated  OutcomeKind = "updated"
	OutcomeInserted OutcomeKind = "inserted"
	OutcomeSkipped  OutcomeKind = "skipped"
)

// Skip reasons.
const (
	ReasonMissingVAT = "missing VAT"
	ReasonNotFound   = "not found in provider"
)

// Outcome is the single result every reconciled record produces.
type Outcome struct {
	Kind      OutcomeKind
	Reason    string // set when Kind is OutcomeSkipped
	EntryID   int64  // target catalog row touched, for Updated/Inserted
	SalePrice string // computed price, empty for skips before pricing
}

// Summary aggregates the outcomes of one batch.
type Summary struct {
	Updated            int
	Inserted           int
	Skipped            int
	ConversionFailures int
}

// AuditTrail records every outcome exactly once. *audit.Writer satisfies it.
type AuditTrail interface {
	Success(audit.SuccessEntry) error
	Error(audit.ErrorEntry) error
}

// Service reconciles invoice records against the target and provider catalogs.
type Service struct {
	catalog  repository.CatalogRepository
	provider repository.ProviderRepository
	trail    AuditTrail
	margin   int
	logger   *slog.Logger
}

// NewService creates a reconciliation service with a fixed margin percentage.
func NewService(
	catalog repository.CatalogRepository,
	provider repository.ProviderRepository,
	trail AuditTrail,
	marginPercent int,
	logger *slog.Logger,
) *Service {
	return &Service{
		catalog:  catalog,
		provider: provider,
		trail:    trail,
		margin:   marginPercent,
		logger:   logger,
	}
}

// Reconcile processes a single record: price it, then update the target
// catalog entry, insert from the provider template, or skip. Returned errors
// are infrastructure failures only; business misses come back as outcomes.
func (s *Service) Reconcile(ctx context.Context, rec normalizer.Record) (Outcome, error) {
	if rec.VATRate == nil {
		if err := s.trail.Error(audit.ErrorEntry{
			Code:        rec.Code,
			Reference:   rec.Reference,
			Description: rec.Description,
			Cost:        rec.UnitPrice.String(),
			Reason:      ReasonMissingVAT,
		}); err != nil {
			return Outcome{}, err
		}
		s.logger.Warn("record skipped",
			slog.String("code", rec.Code),
			slog.String("reference", rec.Reference),
			slog.String("reason", ReasonMissingVAT),
		)
		return Outcome{Kind: OutcomeSkipped, Reason: ReasonMissingVAT}, nil
	}

	salePrice := SalePrice(rec.UnitPrice, *rec.VATRate, s.margin)

	entry, err := s.catalog.FindByKey(ctx, rec.Code, rec.Reference)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Outcome{}, fmt.Errorf("catalog lookup: %w", err)
	}

	if entry != nil {
		if err := s.catalog.UpdatePrices(ctx, entry.ID, rec.UnitPrice, salePrice); err != nil {
			return Outcome{}, fmt.Errorf("catalog update: %w", err)
		}
		if err := s.trail.Success(audit.SuccessEntry{
			Operation:   "UPDATE",
			Code:        rec.Code,
			Reference:   rec.Reference,
			Description: rec.Description,
			Cost:        rec.UnitPrice.String(),
			SalePrice:   salePrice.String(),
		}); err != nil {
			return Outcome{}, err
		}
		s.logger.Info("catalog entry updated",
			slog.String("code", rec.Code),
			slog.String("reference", rec.Reference),
			slog.String("pvp", salePrice.String()),
		)
		return Outcome{Kind: OutcomeUpdated, EntryID: entry.ID, SalePrice: salePrice.String()}, nil
	}

	template, err := s.provider.FindByKey(ctx, rec.Code, rec.Reference)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Outcome{}, fmt.Errorf("provider lookup: %w", err)
	}

	if template == nil {
		if err := s.trail.Error(audit.ErrorEntry{
			Code:        rec.Code,
			Reference:   rec.Reference,
			Description: rec.Description,
			Cost:        rec.UnitPrice.String(),
			VATRate:     fmt.Sprintf("%d", *rec.VATRate),
			Reason:      ReasonNotFound,
		}); err != nil {
			return Outcome{}, err
		}
		s.logger.Warn("record skipped",
			slog.String("code", rec.Code),
			slog.String("reference", rec.Reference),
			slog.String("reason", ReasonNotFound),
		)
		return Outcome{Kind: OutcomeSkipped, Reason: ReasonNotFound}, nil
	}

	// New entry copies the provider's descriptive/EAN/stock-template fields;
	// the sale price is the freshly computed one, the cost comes from the
	// invoice, and stock starts at zero.
	newEntry := &repository.Entry{
		UID:         template.UID,
		Code:        template.Code,
		Reference:   template.Reference,
		Subcategory: template.Subcategory,
		Description: template.Description,
		Net:         template.Net,
		VATRate:     template.VATRate,
		EANCRC:      template.EANCRC,
		EANUnit:     template.EANUnit,
		EANUnitary:  template.EANUnitary,
		EANPack:     template.EANPack,
		EANCase:     template.EANCase,
		SalePrice:   salePrice,
		Cost:        rec.UnitPrice,
		Stock:       0,
	}
	if err := s.catalog.Insert(ctx, newEntry); err != nil {
		return Outcome{}, fmt.Errorf("catalog insert: %w", err)
	}
	if err := s.trail.Success(audit.SuccessEntry{
		Operation:   "INSERT",
		Code:        rec.Code,
		Reference:   rec.Reference,
		Description: rec.Description,
		Cost:        rec.UnitPrice.String(),
		SalePrice:   salePrice.String(),
	}); err != nil {
		return Outcome{}, err
	}
	s.logger.Info("catalog entry inserted from provider",
		slog.String("code", rec.Code),
		slog.String("reference", rec.Reference),
		slog.String("pvp", salePrice.String()),
	)
	return Outcome{Kind: OutcomeInserted, EntryID: newEntry.ID, SalePrice: salePrice.String()}, nil
}

// ReconcileAll runs a whole normalized batch: conversion failures are logged
// to the error trail, every surviving record is reconciled in order, and no
// record-scoped failure aborts the batch.
func (s *Service) ReconcileAll(ctx context.Context, batch *normalizer.Result) (Summary, error) {
	summary := Summary{ConversionFailures: len(batch.Failures)}

	for _, f := range batch.Failures {
		if err := s.trail.Error(audit.ErrorEntry{
			Code:      f.Code,
			Reference: f.Reference,
			Reason:    fmt.Sprintf("row conversion: bad %s value %q", f.Field, f.Value),
		}); err != nil {
			return summary, err
		}
		s.logger.Warn("row dropped", slog.String("error", f.Error()))
	}

	for _, rec := range batch.Records {
		outcome, err := s.Reconcile(ctx, rec)
		if err != nil {
			return summary, err
		}
		switch outcome.Kind {
		case OutcomeUpdated:
			summary.Updated++
		case OutcomeInserted:
			summary.Inserted++
		case OutcomeSkipped:
			summary.Skipped++
		}
	}

	return summary, nil
}
