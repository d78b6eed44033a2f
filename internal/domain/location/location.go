package location

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested location does not exist.
var ErrNotFound = errors.New("location not found")

// Location identifies a restaurant branch together with the seller identity
// printed on compliance invoices.
type Location struct {
	ID         string
	Name       string
	SellerName string
	VATNumber  string
	Settings   Settings
}

// Repository defines read operations for locations.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Location, error)
}
