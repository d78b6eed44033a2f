package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anasalhur/sufra-pos/internal/domain/menu"
	"github.com/anasalhur/sufra-pos/internal/domain/pricing"
)

// LineInput is one cart entry as submitted by the POS front end.
type LineInput struct {
	ItemID            string
	Quantity          int
	Modifiers         []menu.Modifier
	PriceOverride     *decimal.Decimal
	ManualDiscountPct *decimal.Decimal
}

// DiscountInput is an explicit order-level discount already resolved by the
// caller (e.g. a manager override), mutually exclusive with a promotion.
type DiscountInput struct {
	Name   string
	Amount decimal.Decimal
}

// QuoteRequest asks for an authoritative pricing of a cart.
type QuoteRequest struct {
	LocationID   string
	OrderType    pricing.OrderType
	CustomerID   string
	Lines        []LineInput
	Discount     *DiscountInput
	PromotionID  string
	RedeemPoints int64
}

// QuotedLine reports the priced line together with whether one more unit of
// the item could still be sold given the rest of the cart.
type QuotedLine struct {
	Item       menu.Item
	Quantity   int
	UnitPrice  decimal.Decimal
	LineTotal  decimal.Decimal
	OutOfStock bool
}

// QuoteResult is the engine output plus the per-line detail the order
// summary UI renders.
type QuoteResult struct {
	Totals pricing.Totals
	Lines  []QuotedLine
}

// Invoice is the persisted record of a placed order, carrying the totals
// and the compliance QR payload rendered on the printed invoice.
type Invoice struct {
	ID            string
	LocationID    string
	CustomerID    string
	OrderType     pricing.OrderType
	Subtotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	TaxTotal      decimal.Decimal
	Surcharge     decimal.Decimal
	Total         decimal.Decimal
	QRPayload     string
	CreatedAt     time.Time
}

// PlaceResult is a finalized order: the quote it was priced from and the
// invoice written for it.
type PlaceResult struct {
	Quote   QuoteResult
	Invoice *Invoice
}

// Repository defines persistence operations for invoices.
type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
}
