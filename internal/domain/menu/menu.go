package menu

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested menu item does not exist.
var ErrNotFound = errors.New("menu item not found")

// Membership tiers recognised by the pricing engine. Tier 0 means the
// customer has no membership.
const (
	TierNone = 0
	TierMin  = 1
	TierMax  = 3
)

// Item is a sellable menu item together with every pricing attribute the
// engine needs: the base (dine-in) price, optional per-order-type overrides,
// optional per-membership-tier overrides, the tax category the item belongs
// to, and flags controlling discount eligibility and stock enforcement.
type Item struct {
	ID       string
	Name     string
	Category string

	// BasePrice is the dine-in price and the fallback for every order type
	// and tier without an override.
	BasePrice     decimal.Decimal
	TakeawayPrice *decimal.Decimal
	DeliveryPrice *decimal.Decimal

	// TierPrices maps membership tier (1..3) to an override price.
	TierPrices map[int]decimal.Decimal

	// TaxCategory names the row of the location tax table that applies to
	// this item. An empty or unknown category is taxed at zero.
	TaxCategory string

	// DiscountIneligible excludes the item from order-level discounts and
	// promotions. Per-line manual discounts still apply.
	DiscountIneligible bool

	// TrackStock opts the item into availability checks. Items without a
	// recipe are checked against Stock directly.
	TrackStock bool
	Stock      int
}

// Modifier is a selected option on a cart line (e.g. "extra cheese") with
// its price delta. Modifiers are provided by the caller per line; they are
// not catalog entities.
type Modifier struct {
	Name  string
	Price decimal.Decimal
}

// Repository defines read operations for the menu catalog.
type Repository interface {
	List(ctx context.Context) ([]Item, error)
	GetByID(ctx context.Context, id string) (*Item, error)
	GetByIDs(ctx context.Context, ids []string) ([]Item, error)
}
