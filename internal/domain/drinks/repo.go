package drinks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ OrderStore = (*Repo)(nil)

func (r *Repo) ListProducts(ctx context.Context, activeOnly bool) ([]Product, error) {
	q := `SELECT id, name, price, category, active FROM drink_products`
	if activeOnly {
		q += ` WHERE active = TRUE`
	}
	q += ` ORDER BY category, name`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list drink products: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Category, &p.Active); err != nil {
			return nil, fmt.Errorf("scan drink product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) AddProduct(ctx context.Context, p Product) (*Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO drink_products (id, name, price, category, active) VALUES ($1,$2,$3,$4,$5)`,
		p.ID, p.Name, p.Price, p.Category, p.Active)
	if err != nil {
		return nil, fmt.Errorf("insert drink product: %w", err)
	}
	return &p, nil
}

func (r *Repo) UpdateProduct(ctx context.Context, p Product) error {
	ct, err := r.pool.Exec(ctx,
		`UPDATE drink_products SET name=$2, price=$3, category=$4, active=$5 WHERE id=$1`,
		p.ID, p.Name, p.Price, p.Category, p.Active)
	if err != nil {
		return fmt.Errorf("update drink product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

const orderCols = `id, customer_id, customer_name, items, total_value, status, payment_method, date, created_at, closed_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var items []byte
	err := row.Scan(&o.ID, &o.CustomerID, &o.CustomerName, &items, &o.TotalValue,
		&o.Status, &o.PaymentMethod, &o.Date, &o.CreatedAt, &o.ClosedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan drink order: %w", err)
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return nil, fmt.Errorf("decode order items: %w", err)
		}
	}
	return &o, nil
}

func (r *Repo) InsertOrder(ctx context.Context, o Order) (*Order, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	items, err := json.Marshal(o.Items)
	if err != nil {
		return nil, fmt.Errorf("encode order items: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO drink_orders (`+orderCols+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		o.ID, o.CustomerID, o.CustomerName, items, o.TotalValue,
		o.Status, o.PaymentMethod, o.Date, o.CreatedAt, o.ClosedAt)
	if err != nil {
		return nil, fmt.Errorf("insert drink order: %w", err)
	}
	return &o, nil
}

func (r *Repo) UpdateOrder(ctx context.Context, o Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("encode order items: %w", err)
	}
	ct, err := r.pool.Exec(ctx,
		`UPDATE drink_orders SET customer_id=$2, customer_name=$3, items=$4, total_value=$5,
			status=$6, payment_method=$7, date=$8, closed_at=$9 WHERE id=$1`,
		o.ID, o.CustomerID, o.CustomerName, items, o.TotalValue,
		o.Status, o.PaymentMethod, o.Date, o.ClosedAt)
	if err != nil {
		return fmt.Errorf("update drink order: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *Repo) GetOrder(ctx context.Context, id string) (*Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderCols+` FROM drink_orders WHERE id = $1`, id)
	return scanOrder(row)
}

func (r *Repo) ListOrdersBetween(ctx context.Context, from, to string) ([]Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderCols+` FROM drink_orders WHERE date >= $1 AND date <= $2 ORDER BY created_at DESC`,
		from, to)
	if err != nil {
		return nil, fmt.Errorf("list drink orders: %w", err)
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}
