package location

import (
	"github.com/shopspring/decimal"
)

// SettingsVersion is the current schema version of the persisted settings
// blob. Older blobs are upgraded by WithDefaults at load time.
const SettingsVersion = 2

// ChargeType selects how a surcharge value is interpreted.
type ChargeType string

const (
	// ChargePercentage applies the value as a percentage of the discounted
	// subtotal.
	ChargePercentage ChargeType = "percentage"
	// ChargeFixed applies the value as a flat amount.
	ChargeFixed ChargeType = "fixed"
)

// Settings is the per-location configuration consumed by the pricing engine.
// It replaces the old free-form settings blob with an explicit, versioned
// struct: every optional sub-struct is merged with its default field by
// field when a location is loaded, never at calculation time.
type Settings struct {
	Version int `json:"version"`

	// Taxes maps tax category name to its percentage rate (e.g. "Standard
	// Tax" -> 15). Lines whose category is absent are taxed at zero.
	Taxes map[string]decimal.Decimal `json:"taxes"`

	ServiceCharge     ServiceChargeRule     `json:"serviceCharge"`
	DeliverySurcharge DeliverySurchargeRule `json:"deliverySurcharge"`

	// Surcharges is the catalog referenced by DeliverySurcharge.SurchargeID.
	Surcharges []Surcharge `json:"surcharges"`

	MinimumCharge MinimumChargeRule `json:"minimumCharge"`
	Loyalty       LoyaltySettings   `json:"loyalty"`
}

// ServiceChargeRule configures the dine-in service charge.
type ServiceChargeRule struct {
	Enabled bool            `json:"enabled"`
	Type    ChargeType      `json:"type"`
	Value   decimal.Decimal `json:"value"`
}

// DeliverySurchargeRule selects which catalog surcharge applies to delivery
// orders.
type DeliverySurchargeRule struct {
	Enabled     bool   `json:"enabled"`
	SurchargeID string `json:"surchargeId"`
}

// Surcharge is a named catalog entry applied by id.
type Surcharge struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Type  ChargeType      `json:"type"`
	Value decimal.Decimal `json:"value"`
}

// MinimumChargeRule floors the grand total of dine-in orders.
type MinimumChargeRule struct {
	Enabled bool            `json:"enabled"`
	Amount  decimal.Decimal `json:"amount"`
}

// LoyaltySettings controls loyalty point redemption. RedemptionRate is the
// number of points worth one unit of currency.
type LoyaltySettings struct {
	Enabled        bool            `json:"enabled"`
	RedemptionRate decimal.Decimal `json:"redemptionRate"`
}

// DefaultSettings returns the settings applied to a location with no stored
// configuration.
func DefaultSettings() Settings {
	return Settings{
		Version: SettingsVersion,
		Taxes:   map[string]decimal.Decimal{},
		ServiceCharge: ServiceChargeRule{
			Type: ChargePercentage,
		},
		MinimumCharge: MinimumChargeRule{},
		Loyalty: LoyaltySettings{
			RedemptionRate: decimal.NewFromInt(100),
		},
	}
}

// WithDefaults merges a persisted settings blob with the defaults, field by
// field. Blobs written by older versions may miss whole sub-structs; each
// one is filled independently so a partial blob never zeroes out unrelated
// configuration.
func (s Settings) WithDefaults() Settings {
	def := DefaultSettings()

	if s.Version == 0 {
		s.Version = def.Version
	}
	if s.Taxes == nil {
		s.Taxes = def.Taxes
	}
	if s.ServiceCharge.Type == "" {
		s.ServiceCharge.Type = def.ServiceCharge.Type
	}
	if s.Loyalty.RedemptionRate.IsZero() {
		s.Loyalty.RedemptionRate = def.Loyalty.RedemptionRate
	}
	for i := range s.Surcharges {
		if s.Surcharges[i].Type == "" {
			s.Surcharges[i].Type = ChargePercentage
		}
	}
	return s
}

// FindSurcharge looks up a catalog surcharge by id.
func (s Settings) FindSurcharge(id string) (Surcharge, bool) {
	for _, sc := range s.Surcharges {
		if sc.ID == id {
			return sc, true
		}
	}
	return Surcharge{}, false
}
