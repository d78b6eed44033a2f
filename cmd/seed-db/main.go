package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/anasalhur/sufra-pos/internal/domain/location"
	"github.com/anasalhur/sufra-pos/internal/storage/postgres"
)

type recipeJSON struct {
	IngredientID string          `json:"ingredientId"`
	Quantity     decimal.Decimal `json:"quantity"`
}

type menuItemJSON struct {
	ID                 string                     `json:"id"`
	Name               string                     `json:"name"`
	Category           string                     `json:"category"`
	BasePrice          decimal.Decimal            `json:"basePrice"`
	TakeawayPrice      *decimal.Decimal           `json:"takeawayPrice"`
	DeliveryPrice      *decimal.Decimal           `json:"deliveryPrice"`
	TierPrices         map[string]decimal.Decimal `json:"tierPrices"`
	TaxCategory        string                     `json:"taxCategory"`
	DiscountIneligible bool                       `json:"discountIneligible"`
	TrackStock         bool                       `json:"trackStock"`
	Stock              int                        `json:"stock"`
	Recipe             []recipeJSON               `json:"recipe"`
}

type ingredientJSON struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Stock    decimal.Decimal `json:"stock"`
	UnitCost decimal.Decimal `json:"unitCost"`
}

type seedFileJSON struct {
	Items       []menuItemJSON   `json:"items"`
	Ingredients []ingredientJSON `json:"ingredients"`
}

func main() {
	var (
		databaseURL  string
		menuFile     string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&menuFile, "menu-file", "db/seed/menu.json", "path to menu JSON file")
	flag.StringVar(&apiKey, "api-key", "", "API key to seed (or SUFRA_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or SUFRA_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("SUFRA_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or SUFRA_SEED_API_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("SUFRA_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, menuFile, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, menuFile, apiKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedMenu(ctx, pool, menuFile); err != nil {
		return errors.Wrap(err, "seed menu")
	}

	if err := seedLocation(ctx, pool); err != nil {
		return errors.Wrap(err, "seed location")
	}

	if err := seedPromotions(ctx, pool); err != nil {
		return errors.Wrap(err, "seed promotions")
	}

	if err := seedAPIKey(ctx, pool, apiKey, pepper); err != nil {
		return errors.Wrap(err, "seed api key")
	}

	return nil
}

const (
	upsertMenuItemSQL = `INSERT INTO menu_items
		(id, name, category, base_price, takeaway_price, delivery_price,
		 price_tier1, price_tier2, price_tier3,
		 tax_category, discount_ineligible, track_stock, stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
		 name = EXCLUDED.name, category = EXCLUDED.category,
		 base_price = EXCLUDED.base_price, takeaway_price = EXCLUDED.takeaway_price,
		 delivery_price = EXCLUDED.delivery_price,
		 price_tier1 = EXCLUDED.price_tier1, price_tier2 = EXCLUDED.price_tier2,
		 price_tier3 = EXCLUDED.price_tier3,
		 tax_category = EXCLUDED.tax_category,
		 discount_ineligible = EXCLUDED.discount_ineligible,
		 track_stock = EXCLUDED.track_stock, stock = EXCLUDED.stock`

	upsertIngredientSQL = `INSERT INTO ingredients (id, name, stock, unit_cost)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
		 name = EXCLUDED.name, stock = EXCLUDED.stock, unit_cost = EXCLUDED.unit_cost`

	upsertRecipeSQL = `INSERT INTO recipes (item_id, ingredient_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (item_id, ingredient_id) DO UPDATE SET quantity = EXCLUDED.quantity`

	upsertLocationSQL = `INSERT INTO locations (id, name, seller_name, vat_number, settings)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
		 name = EXCLUDED.name, seller_name = EXCLUDED.seller_name,
		 vat_number = EXCLUDED.vat_number, settings = EXCLUDED.settings`

	upsertPromotionSQL = `INSERT INTO promotions
		(id, name, type, value, categories, product_ids, active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		ON CONFLICT (id) DO UPDATE SET
		 name = EXCLUDED.name, type = EXCLUDED.type, value = EXCLUDED.value,
		 categories = EXCLUDED.categories, product_ids = EXCLUDED.product_ids,
		 active = EXCLUDED.active`

	upsertAPIKeySQL = `INSERT INTO api_keys (id, key_hash, name, scopes, active)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT (id) DO UPDATE SET
		 key_hash = EXCLUDED.key_hash, name = EXCLUDED.name,
		 scopes = EXCLUDED.scopes, active = EXCLUDED.active`
)

func seedMenu(ctx context.Context, pool *pgxpool.Pool, menuFile string) error {
	slog.Info("reading menu file", slog.String("path", menuFile))

	data, err := os.ReadFile(menuFile)
	if err != nil {
		return errors.Wrap(err, "read menu file")
	}

	var seed seedFileJSON
	if err := json.Unmarshal(data, &seed); err != nil {
		return errors.Wrap(err, "parse menu JSON")
	}

	slog.Info("upserting ingredients", slog.Int("count", len(seed.Ingredients)))

	for _, ing := range seed.Ingredients {
		if _, err := pool.Exec(ctx, upsertIngredientSQL, ing.ID, ing.Name, ing.Stock, ing.UnitCost); err != nil {
			return errors.Wrapf(err, "upsert ingredient %s", ing.ID)
		}
	}

	slog.Info("upserting menu items", slog.Int("count", len(seed.Items)))

	for _, it := range seed.Items {
		tiers := [3]*decimal.Decimal{}
		for k, i := range map[string]int{"1": 0, "2": 1, "3": 2} {
			if p, ok := it.TierPrices[k]; ok {
				tiers[i] = &p
			}
		}

		if _, err := pool.Exec(ctx, upsertMenuItemSQL,
			it.ID, it.Name, it.Category, it.BasePrice, it.TakeawayPrice, it.DeliveryPrice,
			tiers[0], tiers[1], tiers[2],
			it.TaxCategory, it.DiscountIneligible, it.TrackStock, it.Stock,
		); err != nil {
			return errors.Wrapf(err, "upsert menu item %s", it.ID)
		}

		for _, c := range it.Recipe {
			if _, err := pool.Exec(ctx, upsertRecipeSQL, it.ID, c.IngredientID, c.Quantity); err != nil {
				return errors.Wrapf(err, "upsert recipe %s/%s", it.ID, c.IngredientID)
			}
		}

		slog.Info("upserted menu item", slog.String("id", it.ID), slog.String("name", it.Name))
	}

	return nil
}

func seedLocation(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding demo location")

	settings := location.DefaultSettings()
	settings.Taxes = map[string]decimal.Decimal{
		"Standard Tax": decimal.NewFromInt(15),
		"Reduced Tax":  decimal.NewFromInt(5),
	}
	settings.ServiceCharge = location.ServiceChargeRule{
		Enabled: true,
		Type:    location.ChargePercentage,
		Value:   decimal.NewFromInt(10),
	}
	settings.Surcharges = []location.Surcharge{
		{ID: "delivery-city", Name: "City Delivery", Type: location.ChargeFixed, Value: decimal.NewFromInt(8)},
	}
	settings.DeliverySurcharge = location.DeliverySurchargeRule{
		Enabled:     true,
		SurchargeID: "delivery-city",
	}
	settings.MinimumCharge = location.MinimumChargeRule{
		Enabled: true,
		Amount:  decimal.NewFromInt(10),
	}
	settings.Loyalty = location.LoyaltySettings{
		Enabled:        true,
		RedemptionRate: decimal.NewFromInt(100),
	}

	blob, err := json.Marshal(settings)
	if err != nil {
		return errors.Wrap(err, "marshal settings")
	}

	_, err = pool.Exec(ctx, upsertLocationSQL,
		"downtown", "Sufra Downtown", "Sufra Trading Co", "310122393500003", blob)
	if err != nil {
		return errors.Wrap(err, "upsert location")
	}

	slog.Info("upserted location", slog.String("id", "downtown"))
	return nil
}

func seedPromotions(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding demo promotions")

	promos := []struct {
		id, name, typ string
		value         decimal.Decimal
		categories    []string
		productIDs    []string
	}{
		{id: "happy-hours", name: "Happy Hours", typ: "percentage", value: decimal.NewFromInt(18)},
		{id: "five-off", name: "5 Off", typ: "fixed", value: decimal.NewFromInt(5)},
		{id: "bogo-drinks", name: "Buy One Get One: Drinks", typ: "bogo", categories: []string{"Drinks"}},
	}

	for _, p := range promos {
		if p.categories == nil {
			p.categories = []string{}
		}
		if p.productIDs == nil {
			p.productIDs = []string{}
		}
		if _, err := pool.Exec(ctx, upsertPromotionSQL,
			p.id, p.name, p.typ, p.value, p.categories, p.productIDs); err != nil {
			return errors.Wrapf(err, "upsert promotion %s", p.id)
		}

		slog.Info("upserted promotion", slog.String("id", p.id), slog.String("name", p.name))
	}

	return nil
}

func seedAPIKey(ctx context.Context, pool *pgxpool.Pool, apiKey, pepper string) error {
	slog.Info("seeding default API key")

	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(apiKey))
	keyHash := hex.EncodeToString(mac.Sum(nil))

	_, err := pool.Exec(ctx, upsertAPIKeySQL,
		"default", keyHash, "Default test key", []string{"place_order"})
	if err != nil {
		return errors.Wrap(err, "upsert default API key")
	}

	slog.Info("upserted API key", slog.String("id", "default"))
	return nil
}
