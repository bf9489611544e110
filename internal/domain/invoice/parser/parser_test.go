package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "Código Referencia Descripción Cantidad Precio Importe IVA"

func TestParser_ParsePages(t *testing.T) {
	t.Run("parses a clean single-line record", func(t *testing.T) {
		page := header + "\n" +
			"0120 LP541 AGENDA ESCOLAR LIDERPAPEL 25-26 ESPIRAL 10 3,50 35,00 4\n" +
			"Forma de Pago: Recibo domiciliado"

		result := New().ParsePages([]string{page})

		require.Len(t, result.Records, 1)
		rec := result.Records[0]
		assert.Equal(t, "0120", rec.Code)
		assert.Equal(t, "LP541", rec.Reference)
		assert.Equal(t, "AGENDA ESCOLAR LIDERPAPEL 25-26 ESPIRAL", rec.Description)
		assert.Equal(t, "10", rec.Quantity)
		assert.Equal(t, "3,50", rec.UnitPrice)
		assert.Equal(t, "35,00", rec.Amount)
		assert.Equal(t, "4", rec.VATRate)
		assert.Zero(t, result.DiscardedLines)
		assert.Zero(t, result.IgnoredLines)
	})

	t.Run("joins a wrapped description onto its record", func(t *testing.T) {
		page := header + "\n" +
			"0200 KF18625 BOLIGRAFO Q-CONNECT RETRACTIL 5 1,20 6,00 21\n" +
			"BORRABLE COLOR AZUL\n" +
			"CONDICIONES DE VENTA"

		result := New().ParsePages([]string{page})

		require.Len(t, result.Records, 1)
		assert.Equal(t, "BOLIGRAFO Q-CONNECT RETRACTIL BORRABLE COLOR AZUL",
			result.Records[0].Description)
	})

	t.Run("a new row closes the previous open record", func(t *testing.T) {
		page := header + "\n" +
			"0120 LP541 AGENDA ESCOLAR 10 3,50 35,00 4\n" +
			"0121 LP542 AGENDA NEGRA 2 3,50 7,00 4\n" +
			"Empresa adherida al convenio"

		result := New().ParsePages([]string{page})

		require.Len(t, result.Records, 2)
		assert.Equal(t, "LP541", result.Records[0].Reference)
		assert.Equal(t, "LP542", result.Records[1].Reference)
	})

	t.Run("numeric-tail line closes the record and is dropped", func(t *testing.T) {
		// The second line resembles a row's numeric trailer but fails the
		// grammar. It must not end up in any record, and the open record is
		// emitted without it.
		page := header + "\n" +
			"0120 LP541 AGENDA ESCOLAR 10 3,50 35,00 4\n" +
			"12 34,00 56\n" +
			"Forma de Pago"

		result := New().ParsePages([]string{page})

		require.Len(t, result.Records, 1)
		assert.Equal(t, "AGENDA ESCOLAR", result.Records[0].Description)
		assert.Equal(t, 1, result.DiscardedLines)
	})

	t.Run("description line ending in digits is lost to the heuristic", func(t *testing.T) {
		// Known limitation: a genuine continuation that happens to end in
		// three numeric runs is indistinguishable from a malformed row.
		page := header + "\n" +
			"0120 LP541 CAJA ARCHIVADORES 10 3,50 35,00 4\n" +
			"PACK 3 UNIDADES REF 10 20 30\n" +
			"Forma de Pago"

		result := New().ParsePages([]string{page})

		require.Len(t, result.Records, 1)
		assert.Equal(t, "CAJA ARCHIVADORES", result.Records[0].Description)
		assert.Equal(t, 1, result.DiscardedLines)
	})

	t.Run("noise with no open record is ignored", func(t *testing.T) {
		page := header + "\n" +
			"Observaciones del pedido\n" +
			"0120 LP541 AGENDA ESCOLAR 10 3,50 35,00 4\n" +
			"Forma de Pago"

		result := New().ParsePages([]string{page})

		require.Len(t, result.Records, 1)
		assert.Equal(t, 1, result.IgnoredLines)
		assert.Zero(t, result.DiscardedLines)
	})

	t.Run("lines outside the section are skipped entirely", func(t *testing.T) {
		page := "FACTURA 003723567\n" +
			"0999 XX999 NO DEBE PARSEARSE 1 1,00 1,00 21\n" +
			header + "\n" +
			"0120 LP541 AGENDA ESCOLAR 10 3,50 35,00 4\n" +
			"Forma de Pago\n" +
			"0998 XX998 TAMPOCO 1 1,00 1,00 21"

		result := New().ParsePages([]string{page})

		require.Len(t, result.Records, 1)
		assert.Equal(t, "LP541", result.Records[0].Reference)
	})

	t.Run("blank lines inside the section are ignored", func(t *testing.T) {
		page := header + "\n" +
			"\n" +
			"0120 LP541 AGENDA ESCOLAR 10 3,50 35,00 4\n" +
			"   \n" +
			"ESPIRAL BASIC\n" +
			"Forma de Pago"

		result := New().ParsePages([]string{page})

		require.Len(t, result.Records, 1)
		assert.Equal(t, "AGENDA ESCOLAR ESPIRAL BASIC", result.Records[0].Description)
	})

	t.Run("end of page closes the open record", func(t *testing.T) {
		page := header + "\n" +
			"0120 LP541 AGENDA ESCOLAR 10 3,50 35,00 4"

		result := New().ParsePages([]string{page})

		require.Len(t, result.Records, 1)
	})

	t.Run("section state resets between pages", func(t *testing.T) {
		page1 := header + "\n" +
			"0120 LP541 AGENDA ESCOLAR 10 3,50 35,00 4"
		page2 := "0121 LP542 FUERA DE SECCION 2 3,50 7,00 4\n" +
			header + "\n" +
			"0122 LP543 AGENDA ROSA 1 3,50 3,50 4"

		result := New().ParsePages([]string{page1, page2})

		require.Len(t, result.Records, 2)
		assert.Equal(t, "LP541", result.Records[0].Reference)
		assert.Equal(t, "LP543", result.Records[1].Reference)
	})

	t.Run("reference accepts any non-space characters", func(t *testing.T) {
		page := header + "\n" +
			"0300 KF-18/625A GRAPADORA PETRUS 1 12,00 12,00 21\n" +
			"Forma de Pago"

		result := New().ParsePages([]string{page})

		require.Len(t, result.Records, 1)
		assert.Equal(t, "KF-18/625A", result.Records[0].Reference)
	})
}
