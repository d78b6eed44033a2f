package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/anasalhur/sufra-pos/internal/domain/location"
)

func TestCalculate_DineInServiceCharge(t *testing.T) {
	s := settings()
	s.ServiceCharge = location.ServiceChargeRule{
		Enabled: true,
		Type:    location.ChargePercentage,
		Value:   dec("10"),
	}

	got := Calculate([]Line{line("a", "50", 1)}, Context{OrderType: OrderDineIn, Settings: s})

	assert.True(t, dec("5").Equal(got.Surcharge), "surcharge %s", got.Surcharge)
	assert.Equal(t, "Service Charge", got.SurchargeName)
	assert.True(t, dec("55").Equal(got.Total), "total %s", got.Total)
}

func TestCalculate_ServiceChargeOnDiscountedSubtotal(t *testing.T) {
	s := settings()
	s.ServiceCharge = location.ServiceChargeRule{
		Enabled: true,
		Type:    location.ChargePercentage,
		Value:   dec("10"),
	}

	got := Calculate([]Line{line("a", "50", 1)}, Context{
		OrderType:  OrderDineIn,
		Settings:   s,
		Adjustment: ManualAdjustment("Ten off", dec("10")),
	})

	// 10% of the discounted 40, not the gross 50.
	assert.True(t, dec("4").Equal(got.Surcharge), "surcharge %s", got.Surcharge)
}

func TestCalculate_DeliverySurchargeByID(t *testing.T) {
	s := settings()
	s.Surcharges = []location.Surcharge{
		{ID: "zone-a", Name: "Zone A Delivery", Type: location.ChargeFixed, Value: dec("7")},
		{ID: "zone-b", Name: "Zone B Delivery", Type: location.ChargeFixed, Value: dec("12")},
	}
	s.DeliverySurcharge = location.DeliverySurchargeRule{Enabled: true, SurchargeID: "zone-b"}

	got := Calculate([]Line{line("a", "30", 1)}, Context{OrderType: OrderDelivery, Settings: s})

	assert.True(t, dec("12").Equal(got.Surcharge), "surcharge %s", got.Surcharge)
	assert.Equal(t, "Zone B Delivery", got.SurchargeName)
}

func TestCalculate_NoSurchargeCases(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*location.Settings)
		ot    OrderType
	}{
		{
			name:  "takeaway never pays a surcharge",
			setup: func(s *location.Settings) {},
			ot:    OrderTakeaway,
		},
		{
			name:  "dine-in with service charge disabled",
			setup: func(s *location.Settings) {},
			ot:    OrderDineIn,
		},
		{
			name: "delivery rule enabled but surcharge id missing from catalog",
			setup: func(s *location.Settings) {
				s.DeliverySurcharge = location.DeliverySurchargeRule{Enabled: true, SurchargeID: "gone"}
			},
			ot: OrderDelivery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := settings()
			tt.setup(&s)

			got := Calculate([]Line{line("a", "30", 1)}, Context{OrderType: tt.ot, Settings: s})

			assert.True(t, got.Surcharge.IsZero(), "surcharge %s", got.Surcharge)
			assert.Empty(t, got.SurchargeName)
		})
	}
}

func TestCalculate_MinimumChargeFloor(t *testing.T) {
	// Dine-in order of 2.00 with 8% tax computes to 2.16 and is silently
	// raised to the 5.00 minimum.
	s := settings()
	s.Taxes = map[string]decimal.Decimal{"Standard Tax": dec("8")}
	s.MinimumCharge = location.MinimumChargeRule{Enabled: true, Amount: dec("5")}

	got := Calculate([]Line{taxedLine("a", "2", 1, "Standard Tax")}, Context{
		OrderType: OrderDineIn,
		Settings:  s,
	})

	assert.True(t, dec("0.16").Equal(got.TaxTotal), "tax %s", got.TaxTotal)
	assert.True(t, dec("5").Equal(got.Total), "total must be exactly the minimum, got %s", got.Total)
}

func TestCalculate_MinimumChargeNotAppliedToTakeaway(t *testing.T) {
	s := settings()
	s.MinimumCharge = location.MinimumChargeRule{Enabled: true, Amount: dec("5")}

	got := Calculate([]Line{line("a", "2", 1)}, Context{OrderType: OrderTakeaway, Settings: s})

	assert.True(t, dec("2").Equal(got.Total), "total %s", got.Total)
}

func TestCalculate_MinimumChargeNotAppliedAboveFloor(t *testing.T) {
	s := settings()
	s.MinimumCharge = location.MinimumChargeRule{Enabled: true, Amount: dec("5")}

	got := Calculate([]Line{line("a", "8", 1)}, Context{OrderType: OrderDineIn, Settings: s})

	assert.True(t, dec("8").Equal(got.Total), "total %s", got.Total)
}
