package pricing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrRuleInUse is returned by Delete when historical sessions still
// reference the rule; the caller should deactivate instead.
var ErrRuleInUse = errors.New("pricing rule referenced by sessions")

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const ruleCols = `id, label, duration_minutes, regular_price, loyalty_price, regular_commission, loyalty_commission, active, valid_from, valid_until, created_at`

func scanRule(row pgx.Row) (*PricingRule, error) {
	var r PricingRule
	if err := row.Scan(&r.ID, &r.Label, &r.DurationMinutes, &r.RegularPrice, &r.LoyaltyPrice,
		&r.RegularCommission, &r.LoyaltyCommission, &r.Active, &r.ValidFrom, &r.ValidUntil, &r.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

func (r *Repo) List(ctx context.Context) ([]PricingRule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+ruleCols+`
		FROM pricing_rules
		ORDER BY duration_minutes, valid_from
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PricingRule
	for rows.Next() {
		var p PricingRule
		if err := rows.Scan(&p.ID, &p.Label, &p.DurationMinutes, &p.RegularPrice, &p.LoyaltyPrice,
			&p.RegularCommission, &p.LoyaltyCommission, &p.Active, &p.ValidFrom, &p.ValidUntil, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Load returns the current rule set as a resolvable catalog.
func (r *Repo) Load(ctx context.Context) (Catalog, error) {
	rules, err := r.List(ctx)
	if err != nil {
		return Catalog{}, err
	}
	return NewCatalog(rules), nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*PricingRule, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+ruleCols+`
		FROM pricing_rules WHERE id=$1
	`, id)
	return scanRule(row)
}

func (r *Repo) Add(ctx context.Context, p PricingRule) (*PricingRule, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO pricing_rules
			(id, label, duration_minutes, regular_price, loyalty_price, regular_commission, loyalty_commission, active, valid_from, valid_until)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING `+ruleCols+`
	`, p.ID, p.Label, p.DurationMinutes, p.RegularPrice, p.LoyaltyPrice,
		p.RegularCommission, p.LoyaltyCommission, p.Active, p.ValidFrom, p.ValidUntil)
	return scanRule(row)
}

func (r *Repo) Update(ctx context.Context, p PricingRule) (*PricingRule, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE pricing_rules SET
			label=$2, duration_minutes=$3, regular_price=$4, loyalty_price=$5,
			regular_commission=$6, loyalty_commission=$7, active=$8, valid_from=$9, valid_until=$10
		WHERE id=$1
		RETURNING `+ruleCols+`
	`, p.ID, p.Label, p.DurationMinutes, p.RegularPrice, p.LoyaltyPrice,
		p.RegularCommission, p.LoyaltyCommission, p.Active, p.ValidFrom, p.ValidUntil)
	return scanRule(row)
}

func (r *Repo) SetActive(ctx context.Context, id string, active bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE pricing_rules SET active=$2 WHERE id=$1`, id, active)
	return err
}

// Delete removes an unreferenced rule. Rules snapshotted into sessions are
// protected: deletion is refused so historical charges stay explainable.
func (r *Repo) Delete(ctx context.Context, id string) error {
	var inUse bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM sessions WHERE price_rule_id=$1)
	`, id).Scan(&inUse)
	if err != nil {
		return err
	}
	if inUse {
		return ErrRuleInUse
	}
	_, err = r.pool.Exec(ctx, `DELETE FROM pricing_rules WHERE id=$1`, id)
	return err
}
