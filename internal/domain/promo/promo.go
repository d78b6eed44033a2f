package promo

import (
	"context"
	"slices"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Type enumerates the supported promotion strategies.
type Type string

const (
	// TypePercentage discounts the applicable subtotal by Value percent.
	TypePercentage Type = "percentage"
	// TypeFixed discounts a flat Value, capped at the applicable subtotal.
	TypeFixed Type = "fixed"
	// TypeBOGO pairs applicable units and makes the cheaper unit of every
	// pair free.
	TypeBOGO Type = "bogo"
)

var (
	// ErrNotFound is returned when a requested promotion does not exist.
	ErrNotFound = errors.New("promotion not found")
	// ErrInactive is returned when a promotion is disabled or outside its
	// validity window.
	ErrInactive = errors.New("promotion is not active")
)

// Promotion defines an order-level promotion and its eligibility filters.
// Empty Categories and ProductIDs allowlists mean the promotion applies to
// every eligible line.
type Promotion struct {
	ID         string
	Name       string
	Type       Type
	Value      decimal.Decimal
	Categories []string
	ProductIDs []string
	Active     bool
	ValidFrom  *time.Time
	ValidUntil *time.Time
}

// AppliesTo reports whether a line with the given product id and category
// passes the promotion's allowlists.
func (p *Promotion) AppliesTo(productID, category string) bool {
	if len(p.Categories) > 0 && !slices.Contains(p.Categories, category) {
		return false
	}
	if len(p.ProductIDs) > 0 && !slices.Contains(p.ProductIDs, productID) {
		return false
	}
	return true
}

// ActiveAt reports whether the promotion is enabled and inside its validity
// window at the given instant.
func (p *Promotion) ActiveAt(now time.Time) bool {
	if !p.Active {
		return false
	}
	if p.ValidFrom != nil && now.Before(*p.ValidFrom) {
		return false
	}
	if p.ValidUntil != nil && now.After(*p.ValidUntil) {
		return false
	}
	return true
}

// Repository provides lookup of promotions.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Promotion, error)
	ListActive(ctx context.Context, at time.Time) ([]Promotion, error)
}
