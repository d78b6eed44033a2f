package pricing

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/anasalhur/sufra-pos/internal/domain/menu"
	"github.com/anasalhur/sufra-pos/internal/domain/promo"
)

var hundred = decimal.NewFromInt(100)

// lineCalc carries the per-line figures shared between the discount passes
// and the tax allocation.
type lineCalc struct {
	item      menu.Item
	quantity  int
	unit      decimal.Decimal
	lineTotal decimal.Decimal
	// manual is the per-line manual discount amount, zero when the line
	// carries none.
	manual decimal.Decimal
	// eligible marks lines that can receive an order-level discount or
	// promotion: no manual discount and not flagged ineligible.
	eligible bool
}

// discountState is the outcome of the discount passes.
type discountState struct {
	lines            []lineCalc
	subtotal         decimal.Decimal
	eligibleSubtotal decimal.Decimal
	manualTotal      decimal.Decimal
	orderLevel       decimal.Decimal
	applied          AppliedDiscount
	loyalty          decimal.Decimal
}

func (d *discountState) totalDiscount() decimal.Decimal {
	return d.manualTotal.Add(d.orderLevel).Add(d.loyalty)
}

// applyDiscounts runs the two discount passes followed by the loyalty pass.
//
// Pass 1 computes line totals and per-line manual discounts. Pass 2 applies
// at most one order-level adjustment (explicit discount or promotion) over
// the eligible lines only, clamped to [0, eligibleSubtotal]. The loyalty
// pass converts redeemed points at the configured rate and clamps the result
// so redemption can never drive the order negative or discount value that
// pass 1 and 2 already removed.
func applyDiscounts(lines []Line, pctx Context) discountState {
	d := discountState{lines: make([]lineCalc, 0, len(lines))}

	for _, l := range lines {
		qty := l.Quantity
		if qty < 0 {
			qty = 0
		}

		lc := lineCalc{
			item:     l.Item,
			quantity: qty,
			unit:     UnitPrice(l, pctx),
		}
		lc.lineTotal = lc.unit.Mul(decimal.NewFromInt(int64(qty)))
		d.subtotal = d.subtotal.Add(lc.lineTotal)

		if l.ManualDiscountPct != nil {
			pct := clamp(*l.ManualDiscountPct, decimal.Zero, hundred)
			lc.manual = lc.lineTotal.Mul(pct).Div(hundred)
			d.manualTotal = d.manualTotal.Add(lc.manual)
		} else if !l.Item.DiscountIneligible {
			lc.eligible = true
			d.eligibleSubtotal = d.eligibleSubtotal.Add(lc.lineTotal)
		}

		d.lines = append(d.lines, lc)
	}

	switch pctx.Adjustment.kind {
	case AdjustmentManual:
		d.orderLevel = clamp(pctx.Adjustment.amount, decimal.Zero, d.eligibleSubtotal)
		d.applied = AppliedDiscount{Name: pctx.Adjustment.name, Amount: d.orderLevel}
	case AdjustmentPromotion:
		p := pctx.Adjustment.promotion
		d.orderLevel = clamp(promotionDiscount(p, d.lines), decimal.Zero, d.eligibleSubtotal)
		d.applied = AppliedDiscount{Name: p.Name, Amount: d.orderLevel}
	}

	d.loyalty = loyaltyDiscount(pctx, d.subtotal, d.manualTotal.Add(d.orderLevel))

	return d
}

// promotionDiscount computes the raw promotion discount over the applicable
// lines: eligible lines that also pass the promotion's allowlists.
func promotionDiscount(p *promo.Promotion, lines []lineCalc) decimal.Decimal {
	applicable := make([]lineCalc, 0, len(lines))
	applicableSubtotal := decimal.Zero
	for _, lc := range lines {
		if !lc.eligible || !p.AppliesTo(lc.item.ID, lc.item.Category) {
			continue
		}
		applicable = append(applicable, lc)
		applicableSubtotal = applicableSubtotal.Add(lc.lineTotal)
	}

	switch p.Type {
	case promo.TypePercentage:
		return applicableSubtotal.Mul(p.Value).Div(hundred)
	case promo.TypeFixed:
		return p.Value
	case promo.TypeBOGO:
		return bogoDiscount(applicable)
	default:
		return decimal.Zero
	}
}

// bogoDiscount flattens the applicable lines into one entry per unit, sorts
// the units by price ascending, and pairs them off from the cheapest up. The
// lower-priced unit of every pair is free; an odd unit out is never
// discounted.
func bogoDiscount(applicable []lineCalc) decimal.Decimal {
	var units []decimal.Decimal
	for _, lc := range applicable {
		for range lc.quantity {
			units = append(units, lc.unit)
		}
	}
	sort.Slice(units, func(i, j int) bool { return units[i].LessThan(units[j]) })

	discount := decimal.Zero
	for i := 0; i+1 < len(units); i += 2 {
		discount = discount.Add(units[i])
	}
	return discount
}

// loyaltyDiscount converts redeemed points into a discount amount, clamped
// to the subtotal remaining after the structural (manual + order-level)
// discounts.
func loyaltyDiscount(pctx Context, subtotal, structural decimal.Decimal) decimal.Decimal {
	loy := pctx.Settings.Loyalty
	if !loy.Enabled || pctx.RedeemedPoints <= 0 || !loy.RedemptionRate.IsPositive() {
		return decimal.Zero
	}

	potential := decimal.NewFromInt(pctx.RedeemedPoints).Div(loy.RedemptionRate)

	remaining := subtotal.Sub(structural)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	return clamp(potential, decimal.Zero, remaining)
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}
