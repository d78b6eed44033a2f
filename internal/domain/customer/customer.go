package customer

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested customer does not exist.
var ErrNotFound = errors.New("customer not found")

// Customer is a registered customer. Tier is the membership tier (1..3,
// 0 when the customer has no membership) used for tier price overrides.
// Points is the current loyalty point balance.
type Customer struct {
	ID         string
	Name       string
	CardNumber string
	Tier       int
	Points     int64
}

// Repository defines persistence operations for customers.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Customer, error)
	FindByCard(ctx context.Context, cardNumber string) (*Customer, error)
}
