package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// allocateTax computes tax per tax category over the post-discount taxable
// base of each line.
//
// Every line absorbs its proportional share of all discounts: its own manual
// discount, the order-level discount prorated by lineTotal/eligibleSubtotal
// (eligible lines only), and the loyalty discount prorated by
// lineTotal/subtotal across every line. The remainder is the line's taxable
// base, taxed at the rate of its category. The sum of all taxable bases
// equals subtotal - totalDiscount up to decimal division precision.
//
// The breakdown is keyed by a display label embedding the category name and
// rate, e.g. "Standard Tax (15%)". Zero-rate and unknown categories
// contribute no entry.
func allocateTax(d discountState, rates map[string]decimal.Decimal) (decimal.Decimal, map[string]decimal.Decimal) {
	byCategory := make(map[string]decimal.Decimal)

	for _, lc := range d.lines {
		rate, ok := rates[lc.item.TaxCategory]
		if !ok || !rate.IsPositive() {
			continue
		}

		taxable := lc.lineTotal.Sub(lineDiscountShare(lc, d))
		if taxable.IsNegative() {
			taxable = decimal.Zero
		}

		tax := taxable.Mul(rate).Div(hundred)
		byCategory[lc.item.TaxCategory] = byCategory[lc.item.TaxCategory].Add(tax)
	}

	total := decimal.Zero
	breakdown := make(map[string]decimal.Decimal, len(byCategory))
	for category, tax := range byCategory {
		rounded := tax.Round(2)
		breakdown[taxLabel(category, rates[category])] = rounded
		total = total.Add(rounded)
	}
	return total, breakdown
}

// lineDiscountShare returns the portion of all discounts attributed to one
// line. Prorations guard their denominators so degenerate carts (zero
// subtotal) allocate nothing instead of dividing by zero.
func lineDiscountShare(lc lineCalc, d discountState) decimal.Decimal {
	share := lc.manual

	if lc.eligible && d.orderLevel.IsPositive() && d.eligibleSubtotal.IsPositive() {
		share = share.Add(d.orderLevel.Mul(lc.lineTotal).Div(d.eligibleSubtotal))
	}

	if d.loyalty.IsPositive() && d.subtotal.IsPositive() {
		share = share.Add(d.loyalty.Mul(lc.lineTotal).Div(d.subtotal))
	}

	return share
}

func taxLabel(category string, rate decimal.Decimal) string {
	return fmt.Sprintf("%s (%s%%)", category, rate.String())
}
