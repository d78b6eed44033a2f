package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anasalhur/sufra-pos/internal/domain/promo"
)

const (
	promoColumns = `id, name, type, value, categories, product_ids, active, valid_from, valid_until`

	getPromotionByIDSQL = `SELECT ` + promoColumns + ` FROM promotions WHERE id = $1`

	listActivePromotionsSQL = `SELECT ` + promoColumns + ` FROM promotions
		WHERE active
		  AND (valid_from IS NULL OR valid_from <= $1)
		  AND (valid_until IS NULL OR valid_until > $1)
		ORDER BY id`
)

var _ promo.Repository = (*PromoRepository)(nil)

// PromoRepository implements promo.Repository backed by PostgreSQL.
type PromoRepository struct {
	pool *pgxpool.Pool
}

// NewPromoRepository returns a PromoRepository that uses the given pool.
func NewPromoRepository(pool *pgxpool.Pool) *PromoRepository {
	return &PromoRepository{pool: pool}
}

// GetByID returns a single promotion by its identifier.
func (r *PromoRepository) GetByID(ctx context.Context, id string) (*promo.Promotion, error) {
	rows, err := r.pool.Query(ctx, getPromotionByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting promotion %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanPromotion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, promo.ErrNotFound
		}
		return nil, fmt.Errorf("getting promotion %q: %w", id, err)
	}
	return &p, nil
}

// ListActive returns the promotions valid at the given instant.
func (r *PromoRepository) ListActive(ctx context.Context, at time.Time) ([]promo.Promotion, error) {
	rows, err := r.pool.Query(ctx, listActivePromotionsSQL, at)
	if err != nil {
		return nil, fmt.Errorf("listing active promotions: %w", err)
	}
	return pgx.CollectRows(rows, scanPromotion)
}

func scanPromotion(row pgx.CollectableRow) (promo.Promotion, error) {
	var p promo.Promotion
	err := row.Scan(
		&p.ID, &p.Name, &p.Type, &p.Value,
		&p.Categories, &p.ProductIDs, &p.Active,
		&p.ValidFrom, &p.ValidUntil,
	)
	return p, err
}
