// Package audit writes the per-run CSV trails that let a human reconcile
// exceptions after a batch. Both logs are reset at the start of a run and
// appended row by row, so a crash mid-batch keeps everything written so far.
package audit

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
)

// SuccessEntry is one row of the success log.
type SuccessEntry struct {
	Operation   string `csv:"Operacion"`
	Code        string `csv:"Codigo"`
	Reference   string `csv:"Referencia"`
	Description string `csv:"Descripcion"`
	Cost        string `csv:"Coste"`
	SalePrice   string `csv:"PVP"`
}

// ErrorEntry is one row of the error log.
type ErrorEntry struct {
	Code        string `csv:"Codigo"`
	Reference   string `csv:"Referencia"`
	Description string `csv:"Descripcion"`
	Cost        string `csv:"Coste"`
	VATRate     string `csv:"IVA"`
	Reason      string `csv:"Motivo"`
}

// Writer maintains the success and error logs for one run.
type Writer struct {
	ok   *os.File
	errs *os.File
}

// NewWriter truncates both log files and writes their headers.
func NewWriter(okPath, errPath string) (*Writer, error) {
	ok, err := os.Create(okPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create success log: %w", err)
	}
	errs, err := os.Create(errPath)
	if err != nil {
		ok.Close()
		return nil, fmt.Errorf("failed to create error log: %w", err)
	}

	// Marshaling empty slices emits the header rows only.
	if err := gocsv.Marshal(&[]SuccessEntry{}, ok); err != nil {
		ok.Close()
		errs.Close()
		return nil, fmt.Errorf("failed to write success log header: %w", err)
	}
	if err := gocsv.Marshal(&[]ErrorEntry{}, errs); err != nil {
		ok.Close()
		errs.Close()
		return nil, fmt.Errorf("failed to write error log header: %w", err)
	}

	return &Writer{ok: ok, errs: errs}, nil
}

// Success appends one row to the success log.
func (w *Writer) Success(e SuccessEntry) error {
	return gocsv.MarshalWithoutHeaders(&[]SuccessEntry{e}, w.ok)
}

// Error appends one row to the error log.
func (w *Writer) Error(e ErrorEntry) error {
	return gocsv.MarshalWithoutHeaders(&[]ErrorEntry{e}, w.errs)
}

// Close flushes and closes both logs.
func (w *Writer) Close() error {
	okErr := w.ok.Close()
	errErr := w.errs.Close()
	if okErr != nil {
		return okErr
	}
	return errErr
}
