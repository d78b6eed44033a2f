// Package pricing implements the order pricing engine: price resolution,
// discount and promotion application, proportional tax allocation, and
// order-type surcharges. Every function is a pure computation over its
// arguments; the engine never mutates its inputs and never retains state
// across calls, so identical inputs always produce identical totals.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/anasalhur/sufra-pos/internal/domain/customer"
	"github.com/anasalhur/sufra-pos/internal/domain/location"
	"github.com/anasalhur/sufra-pos/internal/domain/menu"
	"github.com/anasalhur/sufra-pos/internal/domain/promo"
)

// OrderType selects which price overrides and surcharges apply.
type OrderType string

const (
	OrderDineIn   OrderType = "dine_in"
	OrderTakeaway OrderType = "takeaway"
	OrderDelivery OrderType = "delivery"
)

// Line is one cart entry: a quantity of a menu item plus selected modifiers,
// an optional explicit unit price override, and an optional per-line manual
// discount percentage (0..100).
type Line struct {
	Item          menu.Item
	Quantity      int
	Modifiers     []menu.Modifier
	PriceOverride *decimal.Decimal
	// ManualDiscountPct is a cashier-applied percentage discount on this
	// line only. Lines carrying one are excluded from order-level
	// discounts and promotions.
	ManualDiscountPct *decimal.Decimal
}

// AdjustmentKind tags the order-level price adjustment variant.
type AdjustmentKind int

const (
	// AdjustmentNone means no order-level discount or promotion applies.
	AdjustmentNone AdjustmentKind = iota
	// AdjustmentManual is an explicit discount amount resolved by the
	// caller (e.g. a cashier-entered discount).
	AdjustmentManual
	// AdjustmentPromotion applies an active promotion's rule.
	AdjustmentPromotion
)

// Adjustment is the tagged order-level adjustment. An explicit discount and
// a promotion are mutually exclusive by construction: a value holds one kind
// only, so the exclusivity is structural rather than a first-non-nil
// convention.
type Adjustment struct {
	kind      AdjustmentKind
	name      string
	amount    decimal.Decimal
	promotion *promo.Promotion
}

// NoAdjustment returns the empty adjustment.
func NoAdjustment() Adjustment {
	return Adjustment{kind: AdjustmentNone}
}

// ManualAdjustment returns an explicit discount with a display name and a
// caller-resolved amount.
func ManualAdjustment(name string, amount decimal.Decimal) Adjustment {
	return Adjustment{kind: AdjustmentManual, name: name, amount: amount}
}

// PromotionAdjustment returns an adjustment applying the given promotion.
// A nil promotion degrades to NoAdjustment.
func PromotionAdjustment(p *promo.Promotion) Adjustment {
	if p == nil {
		return Adjustment{kind: AdjustmentNone}
	}
	return Adjustment{kind: AdjustmentPromotion, promotion: p}
}

// Kind returns the adjustment variant tag.
func (a Adjustment) Kind() AdjustmentKind { return a.kind }

// Context is the immutable per-calculation bundle: order type, optional
// customer, the location settings in force (tax table, surcharges, minimum
// charge, loyalty), the order-level adjustment, and the number of loyalty
// points the customer chose to redeem.
type Context struct {
	OrderType      OrderType
	Customer       *customer.Customer
	Settings       location.Settings
	Adjustment     Adjustment
	RedeemedPoints int64
}

// AppliedDiscount names the order-level discount or promotion that was
// applied, for receipt display. Manual per-line discounts and loyalty
// redemption are reported separately on Totals.
type AppliedDiscount struct {
	Name   string
	Amount decimal.Decimal
}

// Totals is the engine result. All monetary fields are rounded to two
// decimal places; Total is derived from the other reported fields so the
// identity Total = Subtotal - DiscountTotal + TaxTotal + Surcharge holds on
// the rounded values, before the minimum-charge floor.
type Totals struct {
	Subtotal        decimal.Decimal
	DiscountTotal   decimal.Decimal
	AppliedDiscount AppliedDiscount
	ManualDiscount  decimal.Decimal
	LoyaltyDiscount decimal.Decimal
	TaxTotal        decimal.Decimal
	TaxBreakdown    map[string]decimal.Decimal
	Surcharge       decimal.Decimal
	SurchargeName   string
	Total           decimal.Decimal
}

// Calculate prices a cart under the given context. Degenerate inputs (empty
// cart, zero rates, missing tax categories) produce well-defined zero-safe
// totals rather than errors.
func Calculate(lines []Line, pctx Context) Totals {
	d := applyDiscounts(lines, pctx)

	taxTotal, breakdown := allocateTax(d, pctx.Settings.Taxes)

	discounted := d.subtotal.Sub(d.totalDiscount())
	surcharge, surchargeName := applySurcharge(pctx, discounted)

	t := Totals{
		Subtotal:        d.subtotal.Round(2),
		DiscountTotal:   d.totalDiscount().Round(2),
		ManualDiscount:  d.manualTotal.Round(2),
		LoyaltyDiscount: d.loyalty.Round(2),
		TaxTotal:        taxTotal,
		TaxBreakdown:    breakdown,
		Surcharge:       surcharge.Round(2),
		SurchargeName:   surchargeName,
	}
	if d.applied.Name != "" {
		t.AppliedDiscount = AppliedDiscount{
			Name:   d.applied.Name,
			Amount: d.applied.Amount.Round(2),
		}
	}

	t.Total = t.Subtotal.Sub(t.DiscountTotal).Add(t.TaxTotal).Add(t.Surcharge)

	// Dine-in orders are silently raised to the minimum charge; the
	// shortfall is not itemized.
	mc := pctx.Settings.MinimumCharge
	if pctx.OrderType == OrderDineIn && mc.Enabled && t.Total.LessThan(mc.Amount) {
		t.Total = mc.Amount
	}

	return t
}
