package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var entryColumnNames = []string{
	"id", "uid", "codigo", "referencia", "subcategoria", "descripcion", "neto", "iva",
	"ean_crc", "ean_unidad", "ean_unitario", "ean_envase", "ean_embalaje", "pvp", "pvcoste", "stock",
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func sampleRow(mock pgxmock.PgxPoolIface) *pgxmock.Rows {
	return mock.NewRows(entryColumnNames).AddRow(
		int64(42), "uid-1", "0120", "LP541", "PAPELERIA", "AGENDA ESCOLAR",
		decimal.RequireFromString("3.10"), 4,
		"840000", "840001", "840002", "840003", "840004",
		decimal.RequireFromString("4.57"), decimal.RequireFromString("3.50"), 7,
	)
}

func TestPostgresCatalogRepository_FindByKey(t *testing.T) {
	t.Run("returns the matching entry", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery("SELECT (.+) FROM products").
			WithArgs("0120", "LP541").
			WillReturnRows(sampleRow(mock))

		repo := NewPostgresCatalogRepository(mock)
		entry, err := repo.FindByKey(context.Background(), "0120", "LP541")

		require.NoError(t, err)
		assert.Equal(t, int64(42), entry.ID)
		assert.Equal(t, "0120", entry.Code)
		assert.Equal(t, "LP541", entry.Reference)
		assert.Equal(t, 4, entry.VATRate)
		assert.True(t, entry.Cost.Equal(decimal.RequireFromString("3.50")))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps no rows to sql.ErrNoRows", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery("SELECT (.+) FROM products").
			WithArgs("9999", "NONE").
			WillReturnError(pgx.ErrNoRows)

		repo := NewPostgresCatalogRepository(mock)
		entry, err := repo.FindByKey(context.Background(), "9999", "NONE")

		assert.Nil(t, entry)
		assert.ErrorIs(t, err, sql.ErrNoRows)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresCatalogRepository_UpdatePrices(t *testing.T) {
	t.Run("updates cost and sale price", func(t *testing.T) {
		mock := newMockPool(t)
		cost := decimal.RequireFromString("3.50")
		pvp := decimal.RequireFromString("4.57")
		mock.ExpectExec("UPDATE products").
			WithArgs(cost, pvp, int64(42)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := NewPostgresCatalogRepository(mock)
		err := repo.UpdatePrices(context.Background(), 42, cost, pvp)

		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row yields sql.ErrNoRows", func(t *testing.T) {
		mock := newMockPool(t)
		cost := decimal.RequireFromString("3.50")
		pvp := decimal.RequireFromString("4.57")
		mock.ExpectExec("UPDATE products").
			WithArgs(cost, pvp, int64(7)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := NewPostgresCatalogRepository(mock)
		err := repo.UpdatePrices(context.Background(), 7, cost, pvp)

		assert.ErrorIs(t, err, sql.ErrNoRows)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresCatalogRepository_Insert(t *testing.T) {
	mock := newMockPool(t)

	entry := &Entry{
		UID:         "uid-1",
		Code:        "0120",
		Reference:   "LP541",
		Subcategory: "PAPELERIA",
		Description: "AGENDA ESCOLAR",
		Net:         decimal.RequireFromString("3.10"),
		VATRate:     4,
		EANCRC:      "840000",
		EANUnit:     "840001",
		EANUnitary:  "840002",
		EANPack:     "840003",
		EANCase:     "840004",
		SalePrice:   decimal.RequireFromString("4.57"),
		Cost:        decimal.RequireFromString("3.50"),
		Stock:       0,
	}

	mock.ExpectQuery("INSERT INTO products").
		WithArgs(
			entry.UID, entry.Code, entry.Reference, entry.Subcategory, entry.Description,
			entry.Net, entry.VATRate,
			entry.EANCRC, entry.EANUnit, entry.EANUnitary, entry.EANPack, entry.EANCase,
			entry.SalePrice, entry.Cost, entry.Stock,
		).
		WillReturnRows(mock.NewRows([]string{"id"}).AddRow(int64(99)))

	repo := NewPostgresCatalogRepository(mock)
	err := repo.Insert(context.Background(), entry)

	require.NoError(t, err)
	assert.Equal(t, int64(99), entry.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProviderRepository_FindByKey(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectQuery("SELECT (.+) FROM provider_products").
		WithArgs("0120", "LP541").
		WillReturnRows(sampleRow(mock))

	repo := NewPostgresProviderRepository(mock)
	entry, err := repo.FindByKey(context.Background(), "0120", "LP541")

	require.NoError(t, err)
	assert.Equal(t, "AGENDA ESCOLAR", entry.Description)
	require.NoError(t, mock.ExpectationsWereMet())
}
