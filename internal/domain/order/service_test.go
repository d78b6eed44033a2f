package order

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anasalhur/sufra-pos/internal/domain/customer"
	"github.com/anasalhur/sufra-pos/internal/domain/location"
	"github.com/anasalhur/sufra-pos/internal/domain/menu"
	"github.com/anasalhur/sufra-pos/internal/domain/pricing"
	"github.com/anasalhur/sufra-pos/internal/domain/promo"
	"github.com/anasalhur/sufra-pos/internal/domain/stock"
)

type mockMenuRepo struct {
	items map[string]menu.Item
}

func (m *mockMenuRepo) List(context.Context) ([]menu.Item, error) {
	out := make([]menu.Item, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, it)
	}
	return out, nil
}

func (m *mockMenuRepo) GetByID(_ context.Context, id string) (*menu.Item, error) {
	it, ok := m.items[id]
	if !ok {
		return nil, menu.ErrNotFound
	}
	return &it, nil
}

func (m *mockMenuRepo) GetByIDs(_ context.Context, ids []string) ([]menu.Item, error) {
	var out []menu.Item
	for _, id := range ids {
		if it, ok := m.items[id]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

type mockCustomerRepo struct {
	customers map[string]customer.Customer
}

func (m *mockCustomerRepo) GetByID(_ context.Context, id string) (*customer.Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return nil, customer.ErrNotFound
	}
	return &c, nil
}

func (m *mockCustomerRepo) FindByCard(_ context.Context, card string) (*customer.Customer, error) {
	for _, c := range m.customers {
		if c.CardNumber == card {
			return &c, nil
		}
	}
	return nil, customer.ErrNotFound
}

type mockLocationRepo struct {
	loc *location.Location
}

func (m *mockLocationRepo) GetByID(context.Context, string) (*location.Location, error) {
	return m.loc, nil
}

type mockPromoRepo struct {
	promos map[string]promo.Promotion
}

func (m *mockPromoRepo) GetByID(_ context.Context, id string) (*promo.Promotion, error) {
	p, ok := m.promos[id]
	if !ok {
		return nil, promo.ErrNotFound
	}
	return &p, nil
}

func (m *mockPromoRepo) ListActive(_ context.Context, at time.Time) ([]promo.Promotion, error) {
	var out []promo.Promotion
	for _, p := range m.promos {
		if p.ActiveAt(at) {
			out = append(out, p)
		}
	}
	return out, nil
}

type mockStockRepo struct {
	ingredients map[string]stock.Ingredient
	recipes     map[string]stock.Recipe
}

func (m *mockStockRepo) Ingredients(_ context.Context, ids []string) (map[string]stock.Ingredient, error) {
	out := make(map[string]stock.Ingredient)
	for _, id := range ids {
		if ing, ok := m.ingredients[id]; ok {
			out[id] = ing
		}
	}
	return out, nil
}

func (m *mockStockRepo) Recipes(_ context.Context, itemIDs []string) (map[string]stock.Recipe, error) {
	out := make(map[string]stock.Recipe)
	for _, id := range itemIDs {
		if r, ok := m.recipes[id]; ok {
			out[id] = r
		}
	}
	return out, nil
}

type mockInvoiceRepo struct {
	created []*Invoice
}

func (m *mockInvoiceRepo) Create(_ context.Context, inv *Invoice) error {
	m.created = append(m.created, inv)
	return nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func timePtr(t time.Time) *time.Time { return &t }

// newTestService wires a service over in-memory repos: a two-item menu with
// 15% VAT, and an active 20% promotion on everything.
func newTestService() (*Service, *mockInvoiceRepo) {
	menus := &mockMenuRepo{items: map[string]menu.Item{
		"burger": {ID: "burger", Name: "Burger", Category: "Food", BasePrice: dec("25"), TaxCategory: "VAT"},
		"cola":   {ID: "cola", Name: "Cola", Category: "Drinks", BasePrice: dec("5"), TaxCategory: "VAT"},
	}}
	locs := &mockLocationRepo{loc: &location.Location{
		ID:         "loc-1",
		Name:       "Sufra Downtown",
		SellerName: "Sufra Trading Co",
		VATNumber:  "310122393500003",
		Settings: location.Settings{
			Version: location.SettingsVersion,
			Taxes:   map[string]decimal.Decimal{"VAT": dec("15")},
			Loyalty: location.LoyaltySettings{Enabled: true, RedemptionRate: dec("100")},
		},
	}}
	promos := &mockPromoRepo{promos: map[string]promo.Promotion{
		"summer": {ID: "summer", Name: "Summer 20", Type: promo.TypePercentage, Value: dec("20"), Active: true},
		"expired": {
			ID: "expired", Name: "Gone", Type: promo.TypePercentage, Value: dec("50"), Active: true,
			ValidUntil: timePtr(fixedNow.Add(-time.Hour)),
		},
	}}
	customers := &mockCustomerRepo{customers: map[string]customer.Customer{
		"c-1": {ID: "c-1", Name: "Huda", Tier: 0, Points: 500},
	}}
	invoices := &mockInvoiceRepo{}

	svc := NewService(menus, customers, locs, promos, &mockStockRepo{}, invoices)
	svc.now = func() time.Time { return fixedNow }
	return svc, invoices
}

func TestQuote_BasicCart(t *testing.T) {
	svc, _ := newTestService()

	got, err := svc.Quote(context.Background(), QuoteRequest{
		LocationID: "loc-1",
		OrderType:  pricing.OrderTakeaway,
		Lines: []LineInput{
			{ItemID: "burger", Quantity: 2},
			{ItemID: "cola", Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.True(t, dec("55").Equal(got.Totals.Subtotal), "subtotal %s", got.Totals.Subtotal)
	assert.True(t, dec("8.25").Equal(got.Totals.TaxTotal), "tax %s", got.Totals.TaxTotal)
	assert.True(t, dec("63.25").Equal(got.Totals.Total), "total %s", got.Totals.Total)

	require.Len(t, got.Lines, 2)
	assert.Equal(t, "burger", got.Lines[0].Item.ID)
	assert.True(t, dec("50").Equal(got.Lines[0].LineTotal), "line total %s", got.Lines[0].LineTotal)
	assert.False(t, got.Lines[0].OutOfStock)
}

func TestQuote_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	t.Run("empty lines", func(t *testing.T) {
		_, err := svc.Quote(ctx, QuoteRequest{LocationID: "loc-1", OrderType: pricing.OrderDineIn})
		assert.ErrorIs(t, err, ErrEmptyLines)
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		_, err := svc.Quote(ctx, QuoteRequest{
			LocationID: "loc-1",
			OrderType:  pricing.OrderDineIn,
			Lines:      []LineInput{{ItemID: "burger", Quantity: 0}},
		})
		var qerr *InvalidQuantityError
		require.ErrorAs(t, err, &qerr)
		assert.Equal(t, "burger", qerr.ItemID)
	})

	t.Run("unknown item", func(t *testing.T) {
		_, err := svc.Quote(ctx, QuoteRequest{
			LocationID: "loc-1",
			OrderType:  pricing.OrderDineIn,
			Lines:      []LineInput{{ItemID: "sushi", Quantity: 1}},
		})
		var nferr *ItemNotFoundError
		require.ErrorAs(t, err, &nferr)
		assert.Equal(t, "sushi", nferr.ItemID)
	})

	t.Run("discount and promotion together", func(t *testing.T) {
		amount := dec("5")
		_, err := svc.Quote(ctx, QuoteRequest{
			LocationID:  "loc-1",
			OrderType:   pricing.OrderDineIn,
			Lines:       []LineInput{{ItemID: "burger", Quantity: 1}},
			Discount:    &DiscountInput{Name: "Manager", Amount: amount},
			PromotionID: "summer",
		})
		assert.ErrorIs(t, err, ErrConflictingAdjustments)
	})
}

func TestQuote_PromotionApplied(t *testing.T) {
	svc, _ := newTestService()

	got, err := svc.Quote(context.Background(), QuoteRequest{
		LocationID:  "loc-1",
		OrderType:   pricing.OrderTakeaway,
		Lines:       []LineInput{{ItemID: "burger", Quantity: 1}},
		PromotionID: "summer",
	})
	require.NoError(t, err)

	// 25 - 20% = 20 taxable, 15% VAT = 3.
	assert.True(t, dec("5").Equal(got.Totals.DiscountTotal), "discount %s", got.Totals.DiscountTotal)
	assert.Equal(t, "Summer 20", got.Totals.AppliedDiscount.Name)
	assert.True(t, dec("23").Equal(got.Totals.Total), "total %s", got.Totals.Total)
}

func TestQuote_ExpiredPromotionRejected(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Quote(context.Background(), QuoteRequest{
		LocationID:  "loc-1",
		OrderType:   pricing.OrderTakeaway,
		Lines:       []LineInput{{ItemID: "burger", Quantity: 1}},
		PromotionID: "expired",
	})

	assert.ErrorIs(t, err, promo.ErrInactive)
}

func TestQuote_LoyaltyRedemption(t *testing.T) {
	svc, _ := newTestService()

	got, err := svc.Quote(context.Background(), QuoteRequest{
		LocationID:   "loc-1",
		OrderType:    pricing.OrderTakeaway,
		CustomerID:   "c-1",
		Lines:        []LineInput{{ItemID: "cola", Quantity: 1}},
		RedeemPoints: 300,
	})
	require.NoError(t, err)

	// 300 points at rate 100 are worth 3.00 against the 5.00 cola.
	assert.True(t, dec("3").Equal(got.Totals.LoyaltyDiscount), "loyalty %s", got.Totals.LoyaltyDiscount)
	assert.True(t, dec("2.3").Equal(got.Totals.Total), "total %s", got.Totals.Total)
}

func TestPlace_WritesInvoiceWithQR(t *testing.T) {
	svc, invoices := newTestService()

	got, err := svc.Place(context.Background(), QuoteRequest{
		LocationID: "loc-1",
		OrderType:  pricing.OrderDineIn,
		Lines:      []LineInput{{ItemID: "burger", Quantity: 1}},
	})
	require.NoError(t, err)
	require.Len(t, invoices.created, 1)

	inv := invoices.created[0]
	assert.Same(t, got.Invoice, inv)
	assert.NotEmpty(t, inv.ID)
	assert.Equal(t, "loc-1", inv.LocationID)
	assert.Equal(t, pricing.OrderDineIn, inv.OrderType)
	assert.True(t, got.Quote.Totals.Total.Equal(inv.Total))
	assert.Equal(t, fixedNow, inv.CreatedAt)

	// The QR payload is valid Base64 carrying the seller identity.
	raw, err := base64.StdEncoding.DecodeString(inv.QRPayload)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Sufra Trading Co")
	assert.Contains(t, string(raw), "310122393500003")
}

func TestCheckStock(t *testing.T) {
	menus := &mockMenuRepo{items: map[string]menu.Item{
		"kabsa":    {ID: "kabsa", Name: "Kabsa", BasePrice: dec("30"), TrackStock: true},
		"shawarma": {ID: "shawarma", Name: "Shawarma", BasePrice: dec("12"), TrackStock: true},
	}}
	stocks := &mockStockRepo{
		ingredients: map[string]stock.Ingredient{
			"chicken": {ID: "chicken", Name: "Chicken", Stock: dec("10")},
		},
		recipes: map[string]stock.Recipe{
			"kabsa":    {{IngredientID: "chicken", Quantity: dec("6")}},
			"shawarma": {{IngredientID: "chicken", Quantity: dec("6")}},
		},
	}
	locs := &mockLocationRepo{loc: &location.Location{ID: "loc-1"}}
	svc := NewService(menus, &mockCustomerRepo{}, locs, &mockPromoRepo{}, stocks, &mockInvoiceRepo{})

	ctx := context.Background()

	// One shawarma in the cart leaves 4 chicken; a kabsa needs 6.
	out, err := svc.CheckStock(ctx, "kabsa", []LineInput{{ItemID: "shawarma", Quantity: 1}})
	require.NoError(t, err)
	assert.True(t, out)

	// Against an empty cart the kabsa fits.
	out, err = svc.CheckStock(ctx, "kabsa", nil)
	require.NoError(t, err)
	assert.False(t, out)
}
