package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/anasalhur/sufra-pos/internal/domain/location"
)

// applySurcharge returns the single surcharge for the order, selected by
// order type, computed over the discounted subtotal. Order types without a
// configured surcharge pay none.
func applySurcharge(pctx Context, discountedSubtotal decimal.Decimal) (decimal.Decimal, string) {
	if discountedSubtotal.IsNegative() {
		discountedSubtotal = decimal.Zero
	}

	switch pctx.OrderType {
	case OrderDineIn:
		sc := pctx.Settings.ServiceCharge
		if !sc.Enabled {
			return decimal.Zero, ""
		}
		return chargeAmount(sc.Type, sc.Value, discountedSubtotal), "Service Charge"

	case OrderDelivery:
		rule := pctx.Settings.DeliverySurcharge
		if !rule.Enabled || rule.SurchargeID == "" {
			return decimal.Zero, ""
		}
		sc, ok := pctx.Settings.FindSurcharge(rule.SurchargeID)
		if !ok {
			return decimal.Zero, ""
		}
		return chargeAmount(sc.Type, sc.Value, discountedSubtotal), sc.Name
	}

	return decimal.Zero, ""
}

func chargeAmount(typ location.ChargeType, value, base decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch typ {
	case location.ChargeFixed:
		amount = value
	default:
		amount = base.Mul(value).Div(hundred)
	}
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}
