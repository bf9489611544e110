package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/invoice-catalog-sync/internal/domain/invoice/normalizer"
	"github.com/FACorreiaa/invoice-catalog-sync/internal/domain/invoice/parser"
)

// ReadWorkbook reads a reviewed invoice workbook back into typed records.
// Descriptions are taken as-is: a reviewer may have corrected them by hand,
// so the family table is not re-applied. A blank IVA cell yields a nil VAT
// rate; other malformed rows become conversion failures, never aborting the
// batch.
func ReadWorkbook(r io.Reader) (*normalizer.Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := SheetName
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	headerIdx, colMap := findHeader(rows)
	if headerIdx < 0 {
		return nil, fmt.Errorf("no header row found in sheet %s", sheet)
	}

	col := func(name string) int {
		if idx, ok := colMap[name]; ok {
			return idx
		}
		return -1
	}

	result := &normalizer.Result{}
	for _, row := range rows[headerIdx+1:] {
		code := cellAt(row, col("Código"))
		if strings.TrimSpace(code) == "" {
			// Blank spacer rows and the totals block, which keeps its labels
			// in column C.
			continue
		}

		raw := parser.RawRecord{
			Code:        strings.TrimSpace(code),
			Reference:   strings.TrimSpace(cellAt(row, col("Referencia"))),
			Description: strings.TrimSpace(cellAt(row, col("Descripción"))),
			Quantity:    strings.TrimSpace(cellAt(row, col("Cantidad"))),
			UnitPrice:   strings.TrimSpace(cellAt(row, col("Precio"))),
			VATRate:     strings.TrimSpace(cellAt(row, col("IVA"))),
		}

		rec, convErr := normalizer.Convert(raw)
		if convErr != nil {
			result.Failures = append(result.Failures, convErr)
			continue
		}
		result.Records = append(result.Records, rec)
	}

	return result, nil
}

// findHeader locates the column header row and maps header names to indexes.
func findHeader(rows [][]string) (int, map[string]int) {
	for i, row := range rows {
		if len(row) > 0 && strings.TrimSpace(row[0]) == "Código" {
			colMap := make(map[string]int, len(row))
			for j, name := range row {
				colMap[strings.TrimSpace(name)] = j
			}
			return i, colMap
		}
	}
	return -1, nil
}

// cellAt returns the cell at idx, tolerating the short rows GetRows produces
// when trailing cells are empty.
func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
