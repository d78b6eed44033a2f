package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anasalhur/sufra-pos/internal/domain/location"
)

const getLocationByIDSQL = `SELECT id, name, seller_name, vat_number, settings
	FROM locations WHERE id = $1`

var _ location.Repository = (*LocationRepository)(nil)

// LocationRepository implements location.Repository backed by PostgreSQL.
// Settings are stored as a JSONB blob and merged with defaults at load time,
// so callers always see a fully populated Settings value.
type LocationRepository struct {
	pool *pgxpool.Pool
}

// NewLocationRepository returns a LocationRepository that uses the given pool.
func NewLocationRepository(pool *pgxpool.Pool) *LocationRepository {
	return &LocationRepository{pool: pool}
}

// GetByID returns a location with its settings upgraded via WithDefaults.
func (r *LocationRepository) GetByID(ctx context.Context, id string) (*location.Location, error) {
	rows, err := r.pool.Query(ctx, getLocationByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting location %q: %w", id, err)
	}

	loc, err := pgx.CollectExactlyOneRow(rows, scanLocation)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, location.ErrNotFound
		}
		return nil, fmt.Errorf("getting location %q: %w", id, err)
	}
	return &loc, nil
}

func scanLocation(row pgx.CollectableRow) (location.Location, error) {
	var (
		loc      location.Location
		settings []byte
	)
	if err := row.Scan(&loc.ID, &loc.Name, &loc.SellerName, &loc.VATNumber, &settings); err != nil {
		return loc, err
	}

	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &loc.Settings); err != nil {
			return loc, fmt.Errorf("decoding settings for location %q: %w", loc.ID, err)
		}
	}
	loc.Settings = loc.Settings.WithDefaults()
	return loc, nil
}
