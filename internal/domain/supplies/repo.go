package supplies

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) List(ctx context.Context, activeOnly bool) ([]Supply, error) {
	q := `SELECT id, name, unit, unit_cost, stock, active FROM supplies`
	if activeOnly {
		q += ` WHERE active = TRUE`
	}
	q += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list supplies: %w", err)
	}
	defer rows.Close()

	var out []Supply
	for rows.Next() {
		var s Supply
		if err := rows.Scan(&s.ID, &s.Name, &s.Unit, &s.UnitCost, &s.Stock, &s.Active); err != nil {
			return nil, fmt.Errorf("scan supply: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Supply, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, unit, unit_cost, stock, active FROM supplies WHERE id = $1`, id)
	var s Supply
	err := row.Scan(&s.ID, &s.Name, &s.Unit, &s.UnitCost, &s.Stock, &s.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get supply: %w", err)
	}
	return &s, nil
}

func (r *Repo) Add(ctx context.Context, s Supply) (*Supply, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO supplies (id, name, unit, unit_cost, stock, active) VALUES ($1,$2,$3,$4,$5,$6)`,
		s.ID, s.Name, s.Unit, s.UnitCost, s.Stock, s.Active)
	if err != nil {
		return nil, fmt.Errorf("insert supply: %w", err)
	}
	return &s, nil
}

func (r *Repo) Update(ctx context.Context, s Supply) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE supplies SET name=$2, unit=$3, unit_cost=$4, stock=$5, active=$6 WHERE id=$1`,
		s.ID, s.Name, s.Unit, s.UnitCost, s.Stock, s.Active)
	if err != nil {
		return fmt.Errorf("update supply: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// RecordUsage stores the consumption row and debits stock in one
// transaction.
func (r *Repo) RecordUsage(ctx context.Context, u Usage) (*Usage, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`INSERT INTO session_supplies (id, session_id, supply_id, quantity) VALUES ($1,$2,$3,$4)`,
		u.ID, u.SessionID, u.SupplyID, u.Quantity); err != nil {
		return nil, fmt.Errorf("insert usage: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE supplies SET stock = stock - $2 WHERE id = $1`,
		u.SupplyID, u.Quantity); err != nil {
		return nil, fmt.Errorf("debit stock: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &u, nil
}

func (r *Repo) UsageBySession(ctx context.Context, sessionID string) ([]Usage, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, supply_id, quantity, created_at
		 FROM session_supplies WHERE session_id = $1 ORDER BY created_at`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list usage: %w", err)
	}
	defer rows.Close()

	var out []Usage
	for rows.Next() {
		var u Usage
		if err := rows.Scan(&u.ID, &u.SessionID, &u.SupplyID, &u.Quantity, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
