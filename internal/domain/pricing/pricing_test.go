package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anasalhur/sufra-pos/internal/domain/location"
	"github.com/anasalhur/sufra-pos/internal/domain/menu"
	"github.com/anasalhur/sufra-pos/internal/domain/promo"
)

func TestCalculate_EmptyCart(t *testing.T) {
	got := Calculate(nil, Context{OrderType: OrderDineIn, Settings: settings()})

	assert.True(t, got.Subtotal.IsZero())
	assert.True(t, got.DiscountTotal.IsZero())
	assert.True(t, got.TaxTotal.IsZero())
	assert.True(t, got.Total.IsZero())
}

func TestCalculate_TotalIdentity(t *testing.T) {
	// Total = Subtotal - DiscountTotal + TaxTotal + Surcharge on the
	// reported (rounded) figures, before any minimum-charge floor.
	s := settings()
	s.Taxes = map[string]decimal.Decimal{"VAT": dec("15")}
	s.ServiceCharge = location.ServiceChargeRule{
		Enabled: true,
		Type:    location.ChargePercentage,
		Value:   dec("12.5"),
	}
	s.Loyalty = location.LoyaltySettings{Enabled: true, RedemptionRate: dec("100")}

	lines := []Line{
		taxedLine("a", "19.99", 3, "VAT"),
		taxedLine("b", "7.25", 2, "VAT"),
	}
	lines[1].ManualDiscountPct = decPtr("15")

	got := Calculate(lines, Context{
		OrderType:      OrderDineIn,
		Settings:       s,
		Adjustment:     ManualAdjustment("Manager", dec("5.55")),
		RedeemedPoints: 123,
	})

	want := got.Subtotal.Sub(got.DiscountTotal).Add(got.TaxTotal).Add(got.Surcharge)
	assert.True(t, want.Equal(got.Total), "identity: want %s, got %s", want, got.Total)
}

func TestCalculate_Idempotence(t *testing.T) {
	p := &promo.Promotion{ID: "p1", Name: "BOGO", Type: promo.TypeBOGO}
	s := settings()
	s.Taxes = map[string]decimal.Decimal{"VAT": dec("15")}

	lines := []Line{
		taxedLine("a", "10.50", 2, "VAT"),
		taxedLine("b", "4.25", 3, "VAT"),
	}
	pctx := Context{OrderType: OrderDineIn, Settings: s, Adjustment: PromotionAdjustment(p)}

	first := Calculate(lines, pctx)
	second := Calculate(lines, pctx)

	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.DiscountTotal.Equal(second.DiscountTotal))
	assert.True(t, first.TaxTotal.Equal(second.TaxTotal))
	assert.True(t, first.Surcharge.Equal(second.Surcharge))
	assert.True(t, first.Total.Equal(second.Total))
	require.Len(t, second.TaxBreakdown, len(first.TaxBreakdown))
	for k, v := range first.TaxBreakdown {
		assert.True(t, v.Equal(second.TaxBreakdown[k]), "breakdown %q", k)
	}
}

func TestCalculate_DoesNotMutateInputs(t *testing.T) {
	item := menu.Item{ID: "a", BasePrice: dec("10"), TierPrices: map[int]decimal.Decimal{1: dec("9")}}
	lines := []Line{{Item: item, Quantity: 2}}
	s := settings()
	s.Taxes["VAT"] = dec("15")

	_ = Calculate(lines, Context{OrderType: OrderDineIn, Settings: s})

	assert.Equal(t, 2, lines[0].Quantity)
	assert.True(t, dec("10").Equal(lines[0].Item.BasePrice))
	assert.True(t, dec("9").Equal(lines[0].Item.TierPrices[1]))
}

func TestCalculate_NegativeQuantityContributesNothing(t *testing.T) {
	got := Calculate([]Line{
		line("a", "10", 1),
		line("b", "99", -3),
	}, Context{OrderType: OrderDineIn, Settings: settings()})

	assert.True(t, dec("10").Equal(got.Subtotal), "subtotal %s", got.Subtotal)
}
