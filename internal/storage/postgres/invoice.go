package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anasalhur/sufra-pos/internal/domain/order"
)

const createInvoiceSQL = `INSERT INTO invoices
	(id, location_id, customer_id, order_type, subtotal, discount_total, tax_total, surcharge, total, qr_payload, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

var _ order.Repository = (*InvoiceRepository)(nil)

// InvoiceRepository implements order.Repository backed by PostgreSQL.
type InvoiceRepository struct {
	pool *pgxpool.Pool
}

// NewInvoiceRepository returns an InvoiceRepository that uses the given pool.
func NewInvoiceRepository(pool *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{pool: pool}
}

// Create persists a finalized invoice. CustomerID is stored as NULL for
// walk-in orders.
func (r *InvoiceRepository) Create(ctx context.Context, inv *order.Invoice) error {
	var customerID *string
	if inv.CustomerID != "" {
		customerID = &inv.CustomerID
	}

	_, err := r.pool.Exec(ctx, createInvoiceSQL,
		inv.ID, inv.LocationID, customerID, string(inv.OrderType),
		inv.Subtotal, inv.DiscountTotal, inv.TaxTotal, inv.Surcharge, inv.Total,
		inv.QRPayload, inv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating invoice %q: %w", inv.ID, err)
	}
	return nil
}
