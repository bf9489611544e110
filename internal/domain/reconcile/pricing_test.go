package reconcile

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSalePrice(t *testing.T) {
	tests := []struct {
		name   string
		cost   string
		vat    int
		margin int
		want   string
	}{
		{"reduced VAT uses the 1.045 factor", "3.50", 4, 20, "4.57"},
		{"standard VAT uses the 1.262 factor", "10.00", 21, 20, "15.78"},
		{"other VAT leaves the base unchanged", "10.00", 10, 20, "12.50"},
		{"zero VAT leaves the base unchanged", "8.00", 0, 20, "10.00"},
		{"zero cost prices at zero", "0.00", 4, 20, "0.00"},
		{"margin other than 20 changes the divisor", "10.00", 10, 50, "20.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SalePrice(decimal.RequireFromString(tt.cost), tt.vat, tt.margin)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"got %s, want %s", got, tt.want)
		})
	}
}

func TestSalePrice_MonotonicInCost(t *testing.T) {
	for _, vat := range []int{4, 10, 21} {
		t.Run(fmt.Sprintf("vat %d", vat), func(t *testing.T) {
			prev := SalePrice(decimal.Zero, vat, 20)
			for cents := int64(25); cents <= 10000; cents += 25 {
				cost := decimal.New(cents, -2)
				price := SalePrice(cost, vat, 20)
				assert.True(t, price.GreaterThanOrEqual(prev),
					"price %s at cost %s below previous %s", price, cost, prev)
				prev = price
			}
		})
	}
}
