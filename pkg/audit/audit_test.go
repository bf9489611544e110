package audit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter(t *testing.T) {
	dir := t.TempDir()
	okPath := filepath.Join(dir, "log_ok.csv")
	errPath := filepath.Join(dir, "log_errores.csv")

	w, err := NewWriter(okPath, errPath)
	require.NoError(t, err)

	require.NoError(t, w.Success(SuccessEntry{
		Operation: "UPDATE", Code: "0120", Reference: "LP541",
		Description: "AGENDA ESCOLAR", Cost: "3.5", SalePrice: "4.57",
	}))
	require.NoError(t, w.Error(ErrorEntry{
		Code: "0121", Reference: "LP999", Description: "ROTULADOR",
		Cost: "1", VATRate: "", Reason: "missing VAT",
	}))
	require.NoError(t, w.Close())

	ok, err := os.ReadFile(okPath)
	require.NoError(t, err)
	assert.Equal(t,
		"Operacion,Codigo,Referencia,Descripcion,Coste,PVP\n"+
			"UPDATE,0120,LP541,AGENDA ESCOLAR,3.5,4.57\n",
		string(ok))

	errs, err := os.ReadFile(errPath)
	require.NoError(t, err)
	assert.Equal(t,
		"Codigo,Referencia,Descripcion,Coste,IVA,Motivo\n"+
			"0121,LP999,ROTULADOR,1,,missing VAT\n",
		string(errs))
}

func TestWriter_TruncatesPreviousRun(t *testing.T) {
	dir := t.TempDir()
	okPath := filepath.Join(dir, "log_ok.csv")
	errPath := filepath.Join(dir, "log_errores.csv")

	require.NoError(t, os.WriteFile(okPath, []byte("stale\ncontent\n"), 0o644))

	w, err := NewWriter(okPath, errPath)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	ok, err := os.ReadFile(okPath)
	require.NoError(t, err)
	assert.Equal(t, "Operacion,Codigo,Referencia,Descripcion,Coste,PVP\n", string(ok))
}
