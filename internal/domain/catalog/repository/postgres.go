package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// DB is the subset of pgxpool.Pool the repositories use. pgxmock satisfies it.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const entryColumns = `id, uid, codigo, referencia, subcategoria, descripcion, neto, iva,
		ean_crc, ean_unidad, ean_unitario, ean_envase, ean_embalaje, pvp, pvcoste, stock`

// PostgresCatalogRepository implements CatalogRepository using PostgreSQL
type PostgresCatalogRepository struct {
	db DB
}

// NewPostgresCatalogRepository creates a new PostgreSQL catalog repository
func NewPostgresCatalogRepository(db DB) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{db: db}
}

// FindByKey retrieves the catalog entry with the exact (codigo, referencia) key
func (r *PostgresCatalogRepository) FindByKey(ctx context.Context, code, reference string) (*Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM products
		WHERE codigo = $1 AND referencia = $2`

	return scanEntry(r.db.QueryRow(ctx, query, code, reference))
}

// UpdatePrices overwrites the cost and sale price of an existing entry
func (r *PostgresCatalogRepository) UpdatePrices(ctx context.Context, id int64, cost, salePrice decimal.Decimal) error {
	query := `
		UPDATE products
		SET pvcoste = $1, pvp = $2, updated_at = now()
		WHERE id = $3`

	tag, err := r.db.Exec(ctx, query, cost, salePrice, id)
	if err != nil {
		return fmt.Errorf("failed to update prices: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Insert adds a new catalog entry and fills in its generated ID
func (r *PostgresCatalogRepository) Insert(ctx context.Context, e *Entry) error {
	query := `
		INSERT INTO products (uid, codigo, referencia, subcategoria, descripcion, neto, iva,
			ean_crc, ean_unidad, ean_unitario, ean_envase, ean_embalaje, pvp, pvcoste, stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		e.UID,
		e.Code,
		e.Reference,
		e.Subcategory,
		e.Description,
		e.Net,
		e.VATRate,
		e.EANCRC,
		e.EANUnit,
		e.EANUnitary,
		e.EANPack,
		e.EANCase,
		e.SalePrice,
		e.Cost,
		e.Stock,
	).Scan(&e.ID)

	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	return nil
}

// PostgresProviderRepository implements ProviderRepository using PostgreSQL
type PostgresProviderRepository struct {
	db DB
}

// NewPostgresProviderRepository creates a new PostgreSQL provider repository
func NewPostgresProviderRepository(db DB) *PostgresProviderRepository {
	return &PostgresProviderRepository{db: db}
}

// FindByKey retrieves the provider entry with the exact (codigo, referencia) key
func (r *PostgresProviderRepository) FindByKey(ctx context.Context, code, reference string) (*Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM provider_products
		WHERE codigo = $1 AND referencia = $2`

	return scanEntry(r.db.QueryRow(ctx, query, code, reference))
}

func scanEntry(row pgx.Row) (*Entry, error) {
	e := &Entry{}
	err := row.Scan(
		&e.ID,
		&e.UID,
		&e.Code,
		&e.Reference,
		&e.Subcategory,
		&e.Description,
		&e.Net,
		&e.VATRate,
		&e.EANCRC,
		&e.EANUnit,
		&e.EANUnitary,
		&e.EANPack,
		&e.EANCase,
		&e.SalePrice,
		&e.Cost,
		&e.Stock,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return e, nil
}
