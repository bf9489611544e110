// Package normalizer turns raw parsed rows into typed invoice records and
// repairs truncated descriptions for known product families.
package normalizer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/invoice-catalog-sync/internal/domain/invoice/parser"
)

// Record is a fully typed invoice line item.
type Record struct {
	Code        string
	Reference   string
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	// VATRate is nil when the source row carried no usable VAT value, which
	// can happen on reviewed spreadsheets with a blanked IVA cell.
	VATRate *int
}

// ConversionError describes a row whose numeric fields could not be coerced.
// The row is dropped; the batch continues.
type ConversionError struct {
	Code      string
	Reference string
	Field     string
	Value     string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("row %s/%s: bad %s value %q", e.Code, e.Reference, e.Field, e.Value)
}

// Result holds the surviving records and the per-row failures of a batch.
type Result struct {
	Records  []Record
	Failures []*ConversionError
}

// Family is one known product family: a description prefix whose truncated
// variants can be replaced wholesale, keyed by exact reference.
type Family struct {
	Prefix      string
	ByReference map[string]string
}

// DefaultFamilies returns the correction table for the product families the
// vendor is known to truncate.
func DefaultFamilies() []Family {
	return []Family{
		{
			Prefix: "AGENDA ESCOLAR LIDERPAPEL 25-26 ESPIRAL",
			ByReference: map[string]string{
				"LP541": "AGENDA ESCOLAR LIDERPAPEL 25-26 ESPIRAL BASIC AZUL DIA PAGINA",
				"LP542": "AGENDA ESCOLAR LIDERPAPEL 25-26 ESPIRAL BASIC NEGRO DIA PAGINA",
				"LP543": "AGENDA ESCOLAR LIDERPAPEL 25-26 ESPIRAL BASIC ROSA DIA PAGINA",
				"LP544": "AGENDA ESCOLAR LIDERPAPEL 25-26 ESPIRAL BASIC ROJO DIA PAGINA",
				"LP546": "AGENDA ESCOLAR LIDERPAPEL 25-26 ESPIRAL BASIC VERDE MENTA DIA PAGINA",
			},
		},
		{
			Prefix: "BOLIGRAFO",
			ByReference: map[string]string{
				"8373602": "BOLIGRAFO BIC CRISTAL ORIGINAL TINTA AZUL",
				"KF18625": "BOLIGRAFO Q-CONNECT RETRACTIL BORRABLE 0,7 MM COLOR AZUL",
				"KF18626": "BOLIGRAFO Q-CONNECT RETRACTIL BORRABLE 0,7 MM COLOR ROJO",
			},
		},
	}
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalizer applies whitespace cleanup and the family correction table.
// The table is immutable after construction.
type Normalizer struct {
	families []Family
	matcher  *ahocorasick.Matcher
}

// New builds a Normalizer. Family order matters: the first family whose
// prefix appears in a description decides whether the lookup happens at all.
func New(families []Family) *Normalizer {
	n := &Normalizer{families: families}
	if len(families) > 0 {
		patterns := make([][]byte, len(families))
		for i, f := range families {
			patterns[i] = []byte(f.Prefix)
		}
		n.matcher = ahocorasick.NewMatcher(patterns)
	}
	return n
}

// Canonical collapses whitespace and, when the description contains a known
// family prefix and the reference is in that family's table, replaces the
// description with the canonical completed string.
func (n *Normalizer) Canonical(description, reference string) string {
	desc := strings.TrimSpace(whitespaceRun.ReplaceAllString(description, " "))
	if n.matcher == nil {
		return desc
	}

	hits := n.matcher.Match([]byte(desc))
	if len(hits) == 0 {
		return desc
	}
	matched := make(map[int]bool, len(hits))
	for _, h := range hits {
		matched[h] = true
	}

	// First matching family wins; an unknown reference within it means the
	// description passes through as-is.
	for i, f := range n.families {
		if !matched[i] {
			continue
		}
		if canonical, ok := f.ByReference[reference]; ok {
			return canonical
		}
		break
	}
	return desc
}

// NormalizeAll converts every raw row, applying the correction table to the
// survivors. A conversion failure drops that row only.
func (n *Normalizer) NormalizeAll(raw []parser.RawRecord) *Result {
	res := &Result{}
	for _, r := range raw {
		rec, err := Convert(r)
		if err != nil {
			res.Failures = append(res.Failures, err)
			continue
		}
		rec.Description = n.Canonical(rec.Description, rec.Reference)
		res.Records = append(res.Records, rec)
	}
	return res
}

// Convert coerces the numeric fields of a raw row. An empty VAT value yields
// a nil VATRate rather than an error; everything else malformed fails the row.
func Convert(r parser.RawRecord) (Record, *ConversionError) {
	quantity, err := strconv.Atoi(r.Quantity)
	if err != nil {
		return Record{}, &ConversionError{Code: r.Code, Reference: r.Reference, Field: "quantity", Value: r.Quantity}
	}

	price, err := parsePrice(r.UnitPrice)
	if err != nil {
		return Record{}, &ConversionError{Code: r.Code, Reference: r.Reference, Field: "price", Value: r.UnitPrice}
	}

	var vat *int
	if strings.TrimSpace(r.VATRate) != "" {
		v, err := strconv.Atoi(strings.TrimSpace(r.VATRate))
		if err != nil {
			return Record{}, &ConversionError{Code: r.Code, Reference: r.Reference, Field: "vat", Value: r.VATRate}
		}
		vat = &v
	}

	return Record{
		Code:        r.Code,
		Reference:   r.Reference,
		Description: r.Description,
		Quantity:    quantity,
		UnitPrice:   price,
		VATRate:     vat,
	}, nil
}

// parsePrice reads a decimal with a comma decimal separator ("3,50").
func parsePrice(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
}
