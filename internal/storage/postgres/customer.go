package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anasalhur/sufra-pos/internal/domain/customer"
)

const (
	getCustomerByIDSQL = `SELECT id, name, card_number, tier, points
		FROM customers WHERE id = $1`

	findCustomerByCardSQL = `SELECT id, name, card_number, tier, points
		FROM customers WHERE card_number = $1`
)

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository backed by PostgreSQL.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a CustomerRepository that uses the given pool.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// GetByID returns a customer by its identifier.
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*customer.Customer, error) {
	return r.one(ctx, getCustomerByIDSQL, id)
}

// FindByCard returns the customer holding the given loyalty card number.
func (r *CustomerRepository) FindByCard(ctx context.Context, cardNumber string) (*customer.Customer, error) {
	return r.one(ctx, findCustomerByCardSQL, cardNumber)
}

func (r *CustomerRepository) one(ctx context.Context, sql, arg string) (*customer.Customer, error) {
	rows, err := r.pool.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("querying customer: %w", err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCustomer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, fmt.Errorf("querying customer: %w", err)
	}
	return &c, nil
}

func scanCustomer(row pgx.CollectableRow) (customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(&c.ID, &c.Name, &c.CardNumber, &c.Tier, &c.Points)
	return c, err
}
