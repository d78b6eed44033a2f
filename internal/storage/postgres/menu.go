package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/anasalhur/sufra-pos/internal/domain/menu"
)

const (
	menuColumns = `id, name, category, base_price, takeaway_price, delivery_price,
		price_tier1, price_tier2, price_tier3,
		tax_category, discount_ineligible, track_stock, stock`

	listMenuItemsSQL = `SELECT ` + menuColumns + ` FROM menu_items ORDER BY category, id`

	getMenuItemByIDSQL = `SELECT ` + menuColumns + ` FROM menu_items WHERE id = $1`

	getMenuItemsByIDsSQL = `SELECT ` + menuColumns + ` FROM menu_items WHERE id = ANY($1)`
)

var _ menu.Repository = (*MenuRepository)(nil)

// MenuRepository implements menu.Repository backed by PostgreSQL.
type MenuRepository struct {
	pool *pgxpool.Pool
}

// NewMenuRepository returns a MenuRepository that uses the given pool.
func NewMenuRepository(pool *pgxpool.Pool) *MenuRepository {
	return &MenuRepository{pool: pool}
}

// List returns the full menu ordered by category then id.
func (r *MenuRepository) List(ctx context.Context) ([]menu.Item, error) {
	rows, err := r.pool.Query(ctx, listMenuItemsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing menu items: %w", err)
	}
	return pgx.CollectRows(rows, scanMenuItem)
}

// GetByID returns a single menu item by its identifier.
func (r *MenuRepository) GetByID(ctx context.Context, id string) (*menu.Item, error) {
	rows, err := r.pool.Query(ctx, getMenuItemByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting menu item %q: %w", id, err)
	}

	it, err := pgx.CollectExactlyOneRow(rows, scanMenuItem)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, menu.ErrNotFound
		}
		return nil, fmt.Errorf("getting menu item %q: %w", id, err)
	}
	return &it, nil
}

// GetByIDs returns menu items matching any of the given IDs.
func (r *MenuRepository) GetByIDs(ctx context.Context, ids []string) ([]menu.Item, error) {
	rows, err := r.pool.Query(ctx, getMenuItemsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting menu items by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanMenuItem)
}

func scanMenuItem(row pgx.CollectableRow) (menu.Item, error) {
	var (
		it    menu.Item
		tiers [3]*decimal.Decimal
	)
	err := row.Scan(
		&it.ID, &it.Name, &it.Category, &it.BasePrice, &it.TakeawayPrice, &it.DeliveryPrice,
		&tiers[0], &tiers[1], &tiers[2],
		&it.TaxCategory, &it.DiscountIneligible, &it.TrackStock, &it.Stock,
	)
	if err != nil {
		return it, err
	}

	for i, p := range tiers {
		if p == nil {
			continue
		}
		if it.TierPrices == nil {
			it.TierPrices = make(map[int]decimal.Decimal, len(tiers))
		}
		it.TierPrices[i+1] = *p
	}
	return it, nil
}
