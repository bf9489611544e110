// Package parser recovers structured product line items from invoice page text.
//
// The invoice layout has no reliable column delimiter, so the parser anchors
// on the only stable feature of a product row: exactly four numeric tokens
// (quantity, unit price, line amount, VAT rate) at the end of the line. Lines
// that fail the row grammar while a record is open are either description
// wraparound or malformed rows, told apart by whether their tail looks
// numeric.
package parser

import (
	"regexp"
	"strings"
)

// sectionHeader marks the start of the product table on a page.
const sectionHeader = "Código Referencia Descripción"

// sectionTrailers mark the terms/footer region that ends the product table.
var sectionTrailers = []string{
	"Empresa adherida",
	"Forma de Pago",
	"CONDICIONES DE VENTA",
}

var (
	// productLine matches a full product row: code, reference, description,
	// quantity, unit price, line amount, VAT rate, all whitespace-separated.
	// The description capture is lazy so the four trailing numeric fields
	// claim the end of the line.
	productLine = regexp.MustCompile(`^(\d+)\s+(\S+)\s+(.+?)\s+(\d+)\s+([\d,]+)\s+([\d,]+)\s+(\d+)$`)

	// numericTail detects lines ending in three numeric runs. Such a line is
	// treated as a malformed product row rather than description wraparound.
	numericTail = regexp.MustCompile(`\d+[\s,]+\d+[\s,]+\d+$`)
)

// RawRecord is a product row exactly as captured from the page text,
// before any type coercion.
type RawRecord struct {
	Code        string
	Reference   string
	Description string
	Quantity    string
	UnitPrice   string
	Amount      string
	VATRate     string
}

// Result accumulates the records and line counters for a parsed document.
type Result struct {
	Records []RawRecord

	// DiscardedLines counts lines inside the product section that ended in a
	// numeric tail but did not match the row grammar. They close the open
	// record and are dropped; a legitimate description line ending in digits
	// is lost the same way. That is inherent to the heuristic.
	DiscardedLines int

	// IgnoredLines counts non-blank section lines seen with no record open
	// and no grammar match, typically stray header or footer noise.
	IgnoredLines int
}

// Parser extracts product records from extracted page text.
type Parser struct{}

// New creates a Parser.
func New() *Parser {
	return &Parser{}
}

// ParsePages runs the line state machine over each page in order. Section
// state and any open record reset at page boundaries.
func (p *Parser) ParsePages(pages []string) *Result {
	res := &Result{}
	for _, page := range pages {
		st := pageState{result: res}
		for _, line := range strings.Split(page, "\n") {
			st.feed(line)
		}
		st.closeOpen()
	}
	return res
}

// pageState tracks the product-section flag and the open record for one page.
type pageState struct {
	inSection bool
	open      *RawRecord
	result    *Result
}

func (s *pageState) feed(line string) {
	if strings.Contains(line, sectionHeader) {
		s.inSection = true
		return
	}
	for _, trailer := range sectionTrailers {
		if strings.Contains(line, trailer) {
			s.inSection = false
			s.closeOpen()
			return
		}
	}
	if !s.inSection {
		return
	}

	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return
	}

	if m := productLine.FindStringSubmatch(trimmed); m != nil {
		s.closeOpen()
		s.open = &RawRecord{
			Code:        m[1],
			Reference:   m[2],
			Description: strings.TrimSpace(m[3]),
			Quantity:    m[4],
			UnitPrice:   m[5],
			Amount:      m[6],
			VATRate:     m[7],
		}
		return
	}

	if s.open == nil {
		s.result.IgnoredLines++
		return
	}

	if numericTail.MatchString(trimmed) {
		// Looks like another row's numeric trailer but the grammar did not
		// match: close what we have and drop the line.
		s.closeOpen()
		s.result.DiscardedLines++
		return
	}

	s.open.Description += " " + trimmed
}

func (s *pageState) closeOpen() {
	if s.open != nil {
		s.result.Records = append(s.result.Records, *s.open)
		s.open = nil
	}
}
