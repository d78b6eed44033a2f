// Package stock decides whether one more unit of a menu item can be sold
// given the demand the rest of the cart already places on shared
// ingredients. It is a pure read over its inputs: decrementing stock at
// order commit time is the caller's responsibility.
package stock

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/anasalhur/sufra-pos/internal/domain/menu"
)

// Ingredient is an inventory unit with its current stock level and unit
// cost. Stock is a decimal because ingredients are measured in fractional
// units (kg, litres).
type Ingredient struct {
	ID       string
	Name     string
	Stock    decimal.Decimal
	UnitCost decimal.Decimal
}

// Component is one ingredient requirement of a recipe: the quantity
// consumed per unit of the menu item sold.
type Component struct {
	IngredientID string
	Quantity     decimal.Decimal
}

// Recipe lists the ingredient requirements of one menu item.
type Recipe []Component

// CartLine is the minimal view of a cart entry the checker needs.
type CartLine struct {
	Item     menu.Item
	Quantity int
}

// Repository provides the ingredient catalog and recipes for availability
// checks.
type Repository interface {
	Ingredients(ctx context.Context, ids []string) (map[string]Ingredient, error)
	// Recipes returns the recipe for each of the given menu item ids that
	// has one. Items without a recipe are absent from the result.
	Recipes(ctx context.Context, itemIDs []string) (map[string]Recipe, error)
}

// IsOutOfStock reports whether one additional unit of item cannot be sold.
//
// Items that do not opt into stock enforcement are always available. Items
// with a recipe are checked against the aggregate ingredient demand of the
// whole cart, so two different items competing for the same ingredient both
// see accurate availability. Items without a recipe are checked against
// their direct unit stock. A recipe ingredient missing from the catalog
// fails closed: the item is reported out of stock rather than oversold.
func IsOutOfStock(item menu.Item, cart []CartLine, ingredients map[string]Ingredient, recipes map[string]Recipe) bool {
	if !item.TrackStock {
		return false
	}

	recipe, hasRecipe := recipes[item.ID]
	if hasRecipe {
		return recipeOutOfStock(recipe, cart, ingredients, recipes)
	}

	return item.Stock <= unitsInCart(item.ID, cart)
}

// recipeOutOfStock checks every ingredient one more unit of the recipe
// needs against the stock remaining after the whole cart's demand.
func recipeOutOfStock(recipe Recipe, cart []CartLine, ingredients map[string]Ingredient, recipes map[string]Recipe) bool {
	demand := aggregateDemand(cart, recipes)

	for _, c := range recipe {
		ing, ok := ingredients[c.IngredientID]
		if !ok {
			return true
		}
		required := demand[c.IngredientID].Add(c.Quantity)
		if ing.Stock.LessThan(required) {
			return true
		}
	}
	return false
}

// aggregateDemand sums the ingredient demand of every recipe-bearing line
// in the cart: quantity-per-unit times line quantity, keyed by ingredient
// id. The explicit map keeps the whole-cart contention rule auditable.
func aggregateDemand(cart []CartLine, recipes map[string]Recipe) map[string]decimal.Decimal {
	demand := make(map[string]decimal.Decimal)
	for _, line := range cart {
		recipe, ok := recipes[line.Item.ID]
		if !ok || line.Quantity <= 0 {
			continue
		}
		qty := decimal.NewFromInt(int64(line.Quantity))
		for _, c := range recipe {
			demand[c.IngredientID] = demand[c.IngredientID].Add(c.Quantity.Mul(qty))
		}
	}
	return demand
}

// unitsInCart counts how many units of the given item the cart already
// holds.
func unitsInCart(itemID string, cart []CartLine) int {
	total := 0
	for _, line := range cart {
		if line.Item.ID == itemID && line.Quantity > 0 {
			total += line.Quantity
		}
	}
	return total
}
