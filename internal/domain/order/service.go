package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/anasalhur/sufra-pos/internal/domain/customer"
	"github.com/anasalhur/sufra-pos/internal/domain/location"
	"github.com/anasalhur/sufra-pos/internal/domain/menu"
	"github.com/anasalhur/sufra-pos/internal/domain/pricing"
	"github.com/anasalhur/sufra-pos/internal/domain/promo"
	"github.com/anasalhur/sufra-pos/internal/domain/stock"
	"github.com/anasalhur/sufra-pos/internal/domain/zatca"
)

// Sentinel errors for quote validation.
var (
	ErrEmptyLines = errors.New("lines required")
	// ErrConflictingAdjustments is returned when both an explicit discount
	// and a promotion are supplied. The two are mutually exclusive and the
	// conflict is rejected rather than silently resolved.
	ErrConflictingAdjustments = errors.New("discount and promotion are mutually exclusive")
)

// ItemNotFoundError indicates a requested menu item does not exist.
type ItemNotFoundError struct {
	ItemID string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("menu item %s not found", e.ItemID)
}

// InvalidQuantityError indicates a line has a non-positive quantity.
type InvalidQuantityError struct {
	ItemID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for item %s", e.ItemID)
}

// Service prices carts and finalizes them into invoices. The pricing engine
// itself is pure; the service owns everything around it: loading the
// catalog, building the pricing context, stock annotation, and persistence.
type Service struct {
	menus     menu.Repository
	customers customer.Repository
	locations location.Repository
	promos    promo.Repository
	stocks    stock.Repository
	invoices  Repository
	now       func() time.Time
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	menus menu.Repository,
	customers customer.Repository,
	locations location.Repository,
	promos promo.Repository,
	stocks stock.Repository,
	invoices Repository,
) *Service {
	return &Service{
		menus:     menus,
		customers: customers,
		locations: locations,
		promos:    promos,
		stocks:    stocks,
		invoices:  invoices,
		now:       time.Now,
	}
}

// Quote validates the request, loads the catalog data the engine needs,
// runs the pricing calculation, and annotates each line with stock
// availability.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (*QuoteResult, error) {
	if len(req.Lines) == 0 {
		return nil, ErrEmptyLines
	}

	ids := make([]string, len(req.Lines))
	for i, l := range req.Lines {
		if l.Quantity <= 0 {
			return nil, &InvalidQuantityError{ItemID: l.ItemID}
		}
		ids[i] = l.ItemID
	}

	loc, err := s.locations.GetByID(ctx, req.LocationID)
	if err != nil {
		return nil, errors.Wrap(err, "get location")
	}

	var cust *customer.Customer
	if req.CustomerID != "" {
		cust, err = s.customers.GetByID(ctx, req.CustomerID)
		if err != nil {
			return nil, errors.Wrap(err, "get customer")
		}
	}

	items, err := s.fetchItems(ctx, ids)
	if err != nil {
		return nil, err
	}

	adjustment, err := s.resolveAdjustment(ctx, req)
	if err != nil {
		return nil, err
	}

	lines := make([]pricing.Line, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = pricing.Line{
			Item:              items[i],
			Quantity:          l.Quantity,
			Modifiers:         l.Modifiers,
			PriceOverride:     l.PriceOverride,
			ManualDiscountPct: l.ManualDiscountPct,
		}
	}

	pctx := pricing.Context{
		OrderType:      req.OrderType,
		Customer:       cust,
		Settings:       loc.Settings,
		Adjustment:     adjustment,
		RedeemedPoints: req.RedeemPoints,
	}
	totals := pricing.Calculate(lines, pctx)

	quoted, err := s.quoteLines(ctx, lines, pctx)
	if err != nil {
		return nil, err
	}

	return &QuoteResult{Totals: totals, Lines: quoted}, nil
}

// Place prices the cart, writes the invoice, and attaches the compliance QR
// payload built from the location's seller identity and the final totals.
func (s *Service) Place(ctx context.Context, req QuoteRequest) (*PlaceResult, error) {
	quote, err := s.Quote(ctx, req)
	if err != nil {
		return nil, err
	}

	loc, err := s.locations.GetByID(ctx, req.LocationID)
	if err != nil {
		return nil, errors.Wrap(err, "get location")
	}

	now := s.now()
	qr, err := zatca.EncodeQR(zatca.Invoice{
		SellerName: loc.SellerName,
		VATNumber:  loc.VATNumber,
		Timestamp:  now,
		Total:      quote.Totals.Total,
		TaxTotal:   quote.Totals.TaxTotal,
	})
	if err != nil {
		return nil, errors.Wrap(err, "encode compliance qr")
	}

	inv := &Invoice{
		ID:            uuid.New().String(),
		LocationID:    req.LocationID,
		CustomerID:    req.CustomerID,
		OrderType:     req.OrderType,
		Subtotal:      quote.Totals.Subtotal,
		DiscountTotal: quote.Totals.DiscountTotal,
		TaxTotal:      quote.Totals.TaxTotal,
		Surcharge:     quote.Totals.Surcharge,
		Total:         quote.Totals.Total,
		QRPayload:     qr,
		CreatedAt:     now,
	}
	if err := s.invoices.Create(ctx, inv); err != nil {
		return nil, errors.Wrap(err, "create invoice")
	}

	return &PlaceResult{Quote: *quote, Invoice: inv}, nil
}

// CheckStock reports whether one more unit of the given item can be sold on
// top of the submitted cart.
func (s *Service) CheckStock(ctx context.Context, itemID string, cartLines []LineInput) (bool, error) {
	item, err := s.menus.GetByID(ctx, itemID)
	if err != nil {
		return false, errors.Wrapf(err, "get item %s", itemID)
	}
	if !item.TrackStock {
		return false, nil
	}

	ids := make([]string, 0, len(cartLines)+1)
	ids = append(ids, itemID)
	for _, l := range cartLines {
		ids = append(ids, l.ItemID)
	}

	items, err := s.fetchItems(ctx, ids[1:])
	if err != nil {
		return false, err
	}
	cart := make([]stock.CartLine, len(cartLines))
	for i, l := range cartLines {
		cart[i] = stock.CartLine{Item: items[i], Quantity: l.Quantity}
	}

	ingredients, recipes, err := s.loadInventory(ctx, ids)
	if err != nil {
		return false, err
	}

	return stock.IsOutOfStock(*item, cart, ingredients, recipes), nil
}

// fetchItems batch-loads the items for the given ids, preserving request
// order and verifying every id resolved.
func (s *Service) fetchItems(ctx context.Context, ids []string) ([]menu.Item, error) {
	fetched, err := s.menus.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get menu items")
	}

	byID := make(map[string]menu.Item, len(fetched))
	for _, it := range fetched {
		byID[it.ID] = it
	}

	items := make([]menu.Item, len(ids))
	for i, id := range ids {
		it, ok := byID[id]
		if !ok {
			return nil, &ItemNotFoundError{ItemID: id}
		}
		items[i] = it
	}
	return items, nil
}

// resolveAdjustment maps the request's discount/promotion fields to the
// engine's tagged adjustment, enforcing mutual exclusivity and promotion
// validity.
func (s *Service) resolveAdjustment(ctx context.Context, req QuoteRequest) (pricing.Adjustment, error) {
	if req.Discount != nil && req.PromotionID != "" {
		return pricing.NoAdjustment(), ErrConflictingAdjustments
	}

	if req.Discount != nil {
		return pricing.ManualAdjustment(req.Discount.Name, req.Discount.Amount), nil
	}

	if req.PromotionID != "" {
		p, err := s.promos.GetByID(ctx, req.PromotionID)
		if err != nil {
			return pricing.NoAdjustment(), errors.Wrap(err, "get promotion")
		}
		if !p.ActiveAt(s.now()) {
			return pricing.NoAdjustment(), promo.ErrInactive
		}
		return pricing.PromotionAdjustment(p), nil
	}

	return pricing.NoAdjustment(), nil
}

// quoteLines builds the per-line detail, including whether one more unit of
// each line's item is still available given the whole cart.
func (s *Service) quoteLines(ctx context.Context, lines []pricing.Line, pctx pricing.Context) ([]QuotedLine, error) {
	ids := make([]string, len(lines))
	cart := make([]stock.CartLine, len(lines))
	for i, l := range lines {
		ids[i] = l.Item.ID
		cart[i] = stock.CartLine{Item: l.Item, Quantity: l.Quantity}
	}

	ingredients, recipes, err := s.loadInventory(ctx, ids)
	if err != nil {
		return nil, err
	}

	quoted := make([]QuotedLine, len(lines))
	for i, l := range lines {
		unit := pricing.UnitPrice(l, pctx)
		quoted[i] = QuotedLine{
			Item:       l.Item,
			Quantity:   l.Quantity,
			UnitPrice:  unit.Round(2),
			LineTotal:  unit.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2),
			OutOfStock: stock.IsOutOfStock(l.Item, cart, ingredients, recipes),
		}
	}
	return quoted, nil
}

// loadInventory fetches the recipes for the given items and the ingredient
// rows those recipes reference.
func (s *Service) loadInventory(ctx context.Context, itemIDs []string) (map[string]stock.Ingredient, map[string]stock.Recipe, error) {
	recipes, err := s.stocks.Recipes(ctx, itemIDs)
	if err != nil {
		return nil, nil, errors.Wrap(err, "get recipes")
	}

	seen := make(map[string]struct{})
	var ingredientIDs []string
	for _, recipe := range recipes {
		for _, c := range recipe {
			if _, ok := seen[c.IngredientID]; ok {
				continue
			}
			seen[c.IngredientID] = struct{}{}
			ingredientIDs = append(ingredientIDs, c.IngredientID)
		}
	}

	ingredients, err := s.stocks.Ingredients(ctx, ingredientIDs)
	if err != nil {
		return nil, nil, errors.Wrap(err, "get ingredients")
	}
	return ingredients, recipes, nil
}
