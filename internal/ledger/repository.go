package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/folioworks/folio/internal/domain"
)

// ErrNotFound indicates that no position exists for the grouping key.
var ErrNotFound = errors.New("position not found")

// Filters narrows a position listing. Zero values mean no filter.
type Filters struct {
	AssetClass domain.AssetClass
	Symbol     string
}

// Repository defines persistent storage for positions.
type Repository interface {
	FindByKey(ctx context.Context, key domain.GroupingKey) (domain.Position, error)
	Save(ctx context.Context, p domain.Position) (domain.Position, error)
	ListByUser(ctx context.Context, userID int64, f Filters) ([]domain.Position, error)
}

// PgRepository implements Repository with PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a new PostgreSQL position repository.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const positionColumns = `id, user_id, symbol, asset_class, platform_id, strategy_tag,
	quantity, invested_amount, average_unit_cost, currency, created_at, updated_at`

func scanPosition(row pgx.Row) (domain.Position, error) {
	var p domain.Position
	err := row.Scan(&p.ID, &p.UserID, &p.Symbol, &p.AssetClass, &p.PlatformID, &p.StrategyTag,
		&p.Quantity, &p.InvestedAmount, &p.AverageUnitCost, &p.Currency, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// FindByKey looks up the single open position for a grouping key. A null
// platform or strategy matches only rows where that column is null.
func (r *PgRepository) FindByKey(ctx context.Context, key domain.GroupingKey) (domain.Position, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+positionColumns+`
		 FROM positions
		 WHERE user_id = $1 AND symbol = $2
		   AND platform_id IS NOT DISTINCT FROM $3
		   AND strategy_tag IS NOT DISTINCT FROM $4`,
		key.UserID, key.Symbol, key.PlatformID, key.StrategyTag)

	p, err := scanPosition(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Position{}, ErrNotFound
		}
		return domain.Position{}, fmt.Errorf("finding position by key: %w", err)
	}
	return p, nil
}

// Save inserts a new position (ID zero) or updates the merged state of an
// existing one. Either way it is a single statement, so a failure leaves no
// partial mutation behind.
func (r *PgRepository) Save(ctx context.Context, p domain.Position) (domain.Position, error) {
	if p.ID == 0 {
		row := r.pool.QueryRow(ctx,
			`INSERT INTO positions (user_id, symbol, asset_class, platform_id, strategy_tag,
			                        quantity, invested_amount, average_unit_cost, currency)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 RETURNING `+positionColumns,
			p.UserID, p.Symbol, string(p.AssetClass), p.PlatformID, p.StrategyTag,
			p.Quantity, p.InvestedAmount, p.AverageUnitCost, p.Currency)
		saved, err := scanPosition(row)
		if err != nil {
			return domain.Position{}, fmt.Errorf("inserting position: %w", err)
		}
		return saved, nil
	}

	row := r.pool.QueryRow(ctx,
		`UPDATE positions
		 SET quantity = $2, invested_amount = $3, average_unit_cost = $4, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+positionColumns,
		p.ID, p.Quantity, p.InvestedAmount, p.AverageUnitCost)
	saved, err := scanPosition(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Position{}, ErrNotFound
		}
		return domain.Position{}, fmt.Errorf("updating position %d: %w", p.ID, err)
	}
	return saved, nil
}

// ListByUser returns the user's positions, oldest first.
func (r *PgRepository) ListByUser(ctx context.Context, userID int64, f Filters) ([]domain.Position, error) {
	query := `SELECT ` + positionColumns + ` FROM positions WHERE user_id = $1`
	args := []any{userID}
	if f.AssetClass != "" {
		args = append(args, string(f.AssetClass))
		query += fmt.Sprintf(" AND asset_class = $%d", len(args))
	}
	if f.Symbol != "" {
		args = append(args, f.Symbol)
		query += fmt.Sprintf(" AND symbol = $%d", len(args))
	}
	query += " ORDER BY created_at, id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing positions: %w", err)
	}
	defer rows.Close()

	var positions []domain.Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning position: %w", err)
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}
