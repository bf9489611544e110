// Package export renders normalized invoice records as styled review
// spreadsheets and reads reviewed spreadsheets back.
package export

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/invoice-catalog-sync/internal/domain/invoice/normalizer"
)

// SheetName is the worksheet every invoice workbook uses.
const SheetName = "Productos Factura"

var columnHeaders = []string{"Código", "Referencia", "Descripción", "Cantidad", "Precio", "IVA"}

// Summary aggregates a batch of records for the totals block and run logging.
type Summary struct {
	Records    int
	Units      int
	TotalValue decimal.Decimal // sum of quantity x unit price
	VATRates   []int           // distinct rates seen, ascending
}

// Summarize computes the aggregates for a record batch.
func Summarize(records []normalizer.Record) Summary {
	s := Summary{Records: len(records), TotalValue: decimal.Zero}
	rates := map[int]bool{}
	for _, r := range records {
		s.Units += r.Quantity
		s.TotalValue = s.TotalValue.Add(r.UnitPrice.Mul(decimal.NewFromInt(int64(r.Quantity))))
		if r.VATRate != nil {
			rates[*r.VATRate] = true
		}
	}
	for rate := range rates {
		s.VATRates = append(s.VATRates, rate)
	}
	sort.Ints(s.VATRates)
	return s
}

// WriteWorkbook renders one invoice's records into a styled workbook:
// merged title, generation timestamp, filled header row, bordered data rows
// and a totals block.
func WriteWorkbook(w io.Writer, invoiceName string, records []normalizer.Record, generatedAt time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := writeHeading(f, invoiceName, generatedAt); err != nil {
		return err
	}
	if err := writeRecords(f, records); err != nil {
		return err
	}
	if err := writeTotals(f, records); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeHeading(f *excelize.File, invoiceName string, generatedAt time.Time) error {
	if err := f.SetCellValue(SheetName, "A1", "DETALLE DE PRODUCTOS - "+invoiceName); err != nil {
		return err
	}
	if err := f.MergeCell(SheetName, "A1", "F1"); err != nil {
		return err
	}
	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", "A1", titleStyle); err != nil {
		return err
	}

	if err := f.SetCellValue(SheetName, "A2",
		"Generado el: "+generatedAt.Format("2006-01-02 15:04:05")); err != nil {
		return err
	}
	if err := f.MergeCell(SheetName, "A2", "F2"); err != nil {
		return err
	}
	centered, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	return f.SetCellStyle(SheetName, "A2", "A2", centered)
}

func thinBorders() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Style: 1, Color: "000000"},
		{Type: "right", Style: 1, Color: "000000"},
		{Type: "top", Style: 1, Color: "000000"},
		{Type: "bottom", Style: 1, Color: "000000"},
	}
}

func writeRecords(f *excelize.File, records []normalizer.Record) error {
	const headerRow = 4

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"366092"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thinBorders(),
	})
	if err != nil {
		return err
	}
	bordered, err := f.NewStyle(&excelize.Style{Border: thinBorders()})
	if err != nil {
		return err
	}
	rightAligned, err := f.NewStyle(&excelize.Style{
		Border:    thinBorders(),
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return err
	}
	centeredVAT, err := f.NewStyle(&excelize.Style{
		Border:    thinBorders(),
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}

	headerCells := make([]any, len(columnHeaders))
	for i, h := range columnHeaders {
		headerCells[i] = h
	}
	if err := f.SetSheetRow(SheetName, fmt.Sprintf("A%d", headerRow), &headerCells); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName,
		fmt.Sprintf("A%d", headerRow), fmt.Sprintf("F%d", headerRow), headerStyle); err != nil {
		return err
	}

	for i, rec := range records {
		row := headerRow + 1 + i
		var vatCell any
		if rec.VATRate != nil {
			vatCell = *rec.VATRate
		}
		cells := []any{
			rec.Code,
			rec.Reference,
			rec.Description,
			rec.Quantity,
			rec.UnitPrice.InexactFloat64(),
			vatCell,
		}
		if err := f.SetSheetRow(SheetName, fmt.Sprintf("A%d", row), &cells); err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetName,
			fmt.Sprintf("A%d", row), fmt.Sprintf("C%d", row), bordered); err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetName,
			fmt.Sprintf("D%d", row), fmt.Sprintf("E%d", row), rightAligned); err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetName,
			fmt.Sprintf("F%d", row), fmt.Sprintf("F%d", row), centeredVAT); err != nil {
			return err
		}
	}

	widths := []struct {
		col   string
		width float64
	}{
		{"A", 10}, {"B", 15}, {"C", 60}, {"D", 10}, {"E", 10}, {"F", 8},
	}
	for _, w := range widths {
		if err := f.SetColWidth(SheetName, w.col, w.col, w.width); err != nil {
			return err
		}
	}
	return nil
}

func writeTotals(f *excelize.File, records []normalizer.Record) error {
	summary := Summarize(records)
	startRow := len(records) + 6

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	euroFormat := "#,##0.00€"
	boldEuro, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true},
		CustomNumFmt: &euroFormat,
	})
	if err != nil {
		return err
	}

	totals := []struct {
		label string
		value any
		style int
	}{
		{"TOTAL PRODUCTOS:", summary.Records, bold},
		{"TOTAL UNIDADES:", summary.Units, bold},
		{"VALOR TOTAL:", summary.TotalValue.InexactFloat64(), boldEuro},
	}
	for i, total := range totals {
		row := startRow + i
		if err := f.SetCellValue(SheetName, fmt.Sprintf("C%d", row), total.label); err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetName,
			fmt.Sprintf("C%d", row), fmt.Sprintf("C%d", row), bold); err != nil {
			return err
		}
		if err := f.SetCellValue(SheetName, fmt.Sprintf("D%d", row), total.value); err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetName,
			fmt.Sprintf("D%d", row), fmt.Sprintf("D%d", row), total.style); err != nil {
			return err
		}
	}
	return nil
}
