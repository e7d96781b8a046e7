package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/folioworks/folio/internal/domain"
)

// ErrNotFound indicates that no mapping is stored for the symbol.
var ErrNotFound = errors.New("catalog: mapping not found")

// Mapping relates an internal symbol to the identifier its asset-class
// provider understands.
type Mapping struct {
	Symbol     string           `json:"symbol"`
	AssetClass domain.AssetClass `json:"assetClass"`
	ProviderID string           `json:"providerId"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// Repository defines persistent storage for symbol mappings.
type Repository interface {
	Get(ctx context.Context, symbol string, class domain.AssetClass) (Mapping, error)
	Put(ctx context.Context, m Mapping) error
	All(ctx context.Context) ([]Mapping, error)
}

// PgRepository implements Repository with PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL mapping repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Get(ctx context.Context, symbol string, class domain.AssetClass) (Mapping, error) {
	var m Mapping
	err := r.pool.QueryRow(ctx,
		`SELECT symbol, asset_class, provider_id, updated_at
		 FROM symbol_mappings
		 WHERE symbol = $1 AND asset_class = $2`,
		symbol, string(class)).Scan(&m.Symbol, &m.AssetClass, &m.ProviderID, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Mapping{}, ErrNotFound
		}
		return Mapping{}, fmt.Errorf("getting mapping for %s: %w", symbol, err)
	}
	return m, nil
}

func (r *PgRepository) Put(ctx context.Context, m Mapping) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO symbol_mappings (symbol, asset_class, provider_id, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (symbol, asset_class)
		 DO UPDATE SET provider_id = $3, updated_at = NOW()`,
		m.Symbol, string(m.AssetClass), m.ProviderID)
	if err != nil {
		return fmt.Errorf("saving mapping for %s: %w", m.Symbol, err)
	}
	return nil
}

func (r *PgRepository) All(ctx context.Context) ([]Mapping, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT symbol, asset_class, provider_id, updated_at
		 FROM symbol_mappings ORDER BY symbol, asset_class`)
	if err != nil {
		return nil, fmt.Errorf("listing mappings: %w", err)
	}
	defer rows.Close()

	var mappings []Mapping
	for rows.Next() {
		var m Mapping
		if err := rows.Scan(&m.Symbol, &m.AssetClass, &m.ProviderID, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning mapping: %w", err)
		}
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}
