package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anasalhur/sufra-pos/internal/domain/stock"
)

const (
	getIngredientsSQL = `SELECT id, name, stock, unit_cost
		FROM ingredients WHERE id = ANY($1)`

	getRecipesSQL = `SELECT item_id, ingredient_id, quantity
		FROM recipes WHERE item_id = ANY($1)
		ORDER BY item_id, ingredient_id`
)

var _ stock.Repository = (*StockRepository)(nil)

// StockRepository implements stock.Repository backed by PostgreSQL.
type StockRepository struct {
	pool *pgxpool.Pool
}

// NewStockRepository returns a StockRepository that uses the given pool.
func NewStockRepository(pool *pgxpool.Pool) *StockRepository {
	return &StockRepository{pool: pool}
}

// Ingredients returns the ingredient rows for the given ids, keyed by id.
func (r *StockRepository) Ingredients(ctx context.Context, ids []string) (map[string]stock.Ingredient, error) {
	out := make(map[string]stock.Ingredient, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.pool.Query(ctx, getIngredientsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting ingredients: %w", err)
	}

	ingredients, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (stock.Ingredient, error) {
		var ing stock.Ingredient
		err := row.Scan(&ing.ID, &ing.Name, &ing.Stock, &ing.UnitCost)
		return ing, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning ingredients: %w", err)
	}

	for _, ing := range ingredients {
		out[ing.ID] = ing
	}
	return out, nil
}

// Recipes returns the recipe for each of the given menu item ids that has
// one. Items without a recipe are absent from the result.
func (r *StockRepository) Recipes(ctx context.Context, itemIDs []string) (map[string]stock.Recipe, error) {
	out := make(map[string]stock.Recipe)
	if len(itemIDs) == 0 {
		return out, nil
	}

	rows, err := r.pool.Query(ctx, getRecipesSQL, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("getting recipes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			itemID string
			c      stock.Component
		)
		if err := rows.Scan(&itemID, &c.IngredientID, &c.Quantity); err != nil {
			return nil, fmt.Errorf("scanning recipe row: %w", err)
		}
		out[itemID] = append(out[itemID], c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading recipes: %w", err)
	}
	return out, nil
}
