// Package repository provides database operations for the product catalogs.
package repository

import (
	"context"

	"github.com/shopspring/decimal"
)

// Entry is a row of the product catalog. Column names in the database keep
// the shop's original Spanish schema (codigo, referencia, pvp, pvcoste).
type Entry struct {
	ID          int64
	UID         string
	Code        string
	Reference   string
	Subcategory string
	Description string
	Net         decimal.Decimal
	VATRate     int
	EANCRC      string
	EANUnit     string
	EANUnitary  string
	EANPack     string
	EANCase     string
	SalePrice   decimal.Decimal // pvp
	Cost        decimal.Decimal // pvcoste
	Stock       int
}

// CatalogRepository is the writable target catalog, keyed by (codigo, referencia).
type CatalogRepository interface {
	// FindByKey returns the entry for the exact key, or sql.ErrNoRows.
	FindByKey(ctx context.Context, code, reference string) (*Entry, error)
	// UpdatePrices overwrites the cost and sale price of an existing entry.
	UpdatePrices(ctx context.Context, id int64, cost, salePrice decimal.Decimal) error
	// Insert adds a full new entry and fills in its ID.
	Insert(ctx context.Context, e *Entry) error
}

// ProviderRepository is the read-only provider catalog used as the template
// source for inserts.
type ProviderRepository interface {
	FindByKey(ctx context.Context, code, reference string) (*Entry, error)
}
