package ledger

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/sessions"
)

// DailyClosure is the end-of-day cash reconciliation record.
type DailyClosure struct {
	ID               string                             `json:"id"`
	Date             string                             `json:"date"`
	TotalRevenue     float64                            `json:"totalRevenue"`
	NetProfit        float64                            `json:"netProfit"`
	PaymentBreakdown map[sessions.PaymentMethod]float64 `json:"paymentBreakdown"`
	ClosedBy         string                             `json:"closedBy"`
	ClosedAt         time.Time                          `json:"closedAt"`
}

// ComputeClosure reconciles one day's paid sessions into a closure record.
func ComputeClosure(date string, sess []sessions.Session, closedBy string) DailyClosure {
	c := DailyClosure{
		Date:             date,
		PaymentBreakdown: make(map[sessions.PaymentMethod]float64),
		ClosedBy:         closedBy,
	}
	var commissions float64
	for _, s := range sess {
		if s.Status != sessions.StatusPaid || s.Date != date {
			continue
		}
		c.TotalRevenue += s.TotalValue
		c.PaymentBreakdown[s.PaymentMethod] += s.TotalValue
		for _, comm := range s.Commissions {
			commissions += comm.Value
		}
	}
	c.TotalRevenue = math.Round(c.TotalRevenue)
	c.NetProfit = math.Round(c.TotalRevenue - commissions)
	return c
}

type ClosureRepo struct{ pool *pgxpool.Pool }

func NewClosureRepo(pool *pgxpool.Pool) *ClosureRepo { return &ClosureRepo{pool: pool} }

func (r *ClosureRepo) Save(ctx context.Context, c DailyClosure) (*DailyClosure, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	breakdown, err := json.Marshal(c.PaymentBreakdown)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO daily_closures (id, date, total_revenue, net_profit, payment_breakdown, closed_by)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (date) DO UPDATE SET
			total_revenue=EXCLUDED.total_revenue, net_profit=EXCLUDED.net_profit,
			payment_breakdown=EXCLUDED.payment_breakdown, closed_by=EXCLUDED.closed_by,
			closed_at=now()
		RETURNING id, date, total_revenue, net_profit, payment_breakdown, closed_by, closed_at
	`, c.ID, c.Date, c.TotalRevenue, c.NetProfit, breakdown, c.ClosedBy)
	return scanClosure(row)
}

func (r *ClosureRepo) GetByDate(ctx context.Context, date string) (*DailyClosure, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, date, total_revenue, net_profit, payment_breakdown, closed_by, closed_at
		FROM daily_closures WHERE date=$1
	`, date)
	c, err := scanClosure(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func scanClosure(row pgx.Row) (*DailyClosure, error) {
	var c DailyClosure
	var breakdown []byte
	if err := row.Scan(&c.ID, &c.Date, &c.TotalRevenue, &c.NetProfit, &breakdown, &c.ClosedBy, &c.ClosedAt); err != nil {
		return nil, err
	}
	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &c.PaymentBreakdown); err != nil {
			return nil, err
		}
	}
	return &c, nil
}
