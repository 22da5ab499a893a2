package sessions

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo is the pgx-backed Store. Commission entries and rule snapshots live
// as JSONB on the session row; camelCase model fields map to snake_case
// columns here and nowhere else.
type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

var _ Store = (*Repo)(nil)

const sessionCols = `id, customer_id, provider_ids, date, start_time, end_time, duration_minutes,
	billed_duration_minutes, room, total_value, payment_method, status, is_finished,
	recorded_by, created_at, commissions, price_rule_id, price_snapshot, commission_snapshot`

type sessionRow struct {
	endTime     *string
	billed      *int
	commissions []byte
	priceSnap   []byte
	commSnap    []byte
}

func scanSession(row pgx.Row) (*Session, error) {
	var s Session
	var aux sessionRow
	var createdAt time.Time
	err := row.Scan(&s.ID, &s.CustomerID, &s.ProviderIDs, &s.Date, &s.StartTime, &aux.endTime,
		&s.DurationMinutes, &aux.billed, &s.Room, &s.TotalValue, &s.PaymentMethod, &s.Status,
		&s.IsFinished, &s.RecordedBy, &createdAt, &aux.commissions, &s.PriceRuleID,
		&aux.priceSnap, &aux.commSnap)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.CreatedAt = createdAt
	s.EndTime = aux.endTime
	s.BilledDurationMinutes = aux.billed
	if len(aux.commissions) > 0 {
		if err := json.Unmarshal(aux.commissions, &s.Commissions); err != nil {
			return nil, err
		}
	}
	if len(aux.priceSnap) > 0 {
		s.PriceSnapshot = &Snapshot{}
		if err := json.Unmarshal(aux.priceSnap, s.PriceSnapshot); err != nil {
			return nil, err
		}
	}
	if len(aux.commSnap) > 0 {
		s.CommissionSnapshot = &Snapshot{}
		if err := json.Unmarshal(aux.commSnap, s.CommissionSnapshot); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

func marshalJSON(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func (r *Repo) Insert(ctx context.Context, s Session) (*Session, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	comms, err := marshalJSON(s.Commissions)
	if err != nil {
		return nil, err
	}
	var priceSnap, commSnap []byte
	if s.PriceSnapshot != nil {
		if priceSnap, err = json.Marshal(s.PriceSnapshot); err != nil {
			return nil, err
		}
	}
	if s.CommissionSnapshot != nil {
		if commSnap, err = json.Marshal(s.CommissionSnapshot); err != nil {
			return nil, err
		}
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO sessions
			(id, customer_id, provider_ids, date, start_time, end_time, duration_minutes,
			 billed_duration_minutes, room, total_value, payment_method, status, is_finished,
			 recorded_by, commissions, price_rule_id, price_snapshot, commission_snapshot)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		RETURNING `+sessionCols+`
	`, s.ID, s.CustomerID, s.ProviderIDs, s.Date, s.StartTime, s.EndTime, s.DurationMinutes,
		s.BilledDurationMinutes, s.Room, s.TotalValue, s.PaymentMethod, s.Status, s.IsFinished,
		s.RecordedBy, comms, s.PriceRuleID, priceSnap, commSnap)
	return scanSession(row)
}

func (r *Repo) Update(ctx context.Context, s Session) error {
	comms, err := marshalJSON(s.Commissions)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE sessions SET
			customer_id=$2, provider_ids=$3, date=$4, start_time=$5, end_time=$6,
			duration_minutes=$7, billed_duration_minutes=$8, room=$9, total_value=$10,
			payment_method=$11, status=$12, is_finished=$13, commissions=$14
		WHERE id=$1
	`, s.ID, s.CustomerID, s.ProviderIDs, s.Date, s.StartTime, s.EndTime,
		s.DurationMinutes, s.BilledDurationMinutes, s.Room, s.TotalValue,
		s.PaymentMethod, s.Status, s.IsFinished, comms)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Session, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+sessionCols+` FROM sessions WHERE id=$1`, id)
	return scanSession(row)
}

func (r *Repo) list(ctx context.Context, q string, args ...any) ([]Session, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *Repo) List(ctx context.Context) ([]Session, error) {
	return r.list(ctx, `SELECT `+sessionCols+` FROM sessions ORDER BY date DESC, start_time DESC`)
}

func (r *Repo) ListByDate(ctx context.Context, date string) ([]Session, error) {
	return r.list(ctx, `SELECT `+sessionCols+` FROM sessions WHERE date=$1 ORDER BY start_time`, date)
}

// ListPaidBetween feeds the reporting aggregator; bounds are inclusive
// YYYY-MM-DD strings.
func (r *Repo) ListPaidBetween(ctx context.Context, from, to string) ([]Session, error) {
	return r.list(ctx, `
		SELECT `+sessionCols+` FROM sessions
		WHERE status='PAID' AND date >= $1 AND date <= $2
		ORDER BY date, start_time
	`, from, to)
}
