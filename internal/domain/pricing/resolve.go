package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/anasalhur/sufra-pos/internal/domain/customer"
	"github.com/anasalhur/sufra-pos/internal/domain/menu"
)

// ResolvePrice returns the unit price of a menu item for the given order
// type and customer. Precedence, first match wins:
//
//  1. membership tier override for the customer's tier
//  2. takeaway override, for takeaway orders
//  3. delivery override, for delivery orders
//  4. base (dine-in) price
//
// Absence of an override simply falls through; there are no error paths.
func ResolvePrice(item menu.Item, orderType OrderType, cust *customer.Customer) decimal.Decimal {
	if cust != nil && cust.Tier >= menu.TierMin && cust.Tier <= menu.TierMax {
		if p, ok := item.TierPrices[cust.Tier]; ok {
			return p
		}
	}

	switch orderType {
	case OrderTakeaway:
		if item.TakeawayPrice != nil {
			return *item.TakeawayPrice
		}
	case OrderDelivery:
		if item.DeliveryPrice != nil {
			return *item.DeliveryPrice
		}
	}

	return item.BasePrice
}

// UnitPrice returns the full per-unit charge for a line: the explicit price
// override when present, otherwise the resolved price, plus all modifier
// deltas.
func UnitPrice(l Line, pctx Context) decimal.Decimal {
	price := ResolvePrice(l.Item, pctx.OrderType, pctx.Customer)
	if l.PriceOverride != nil {
		price = *l.PriceOverride
	}
	for _, m := range l.Modifiers {
		price = price.Add(m.Price)
	}
	return price
}
