package customers

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) GetByID(ctx context.Context, id string) (*Customer, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, phone, is_loyalty, loyalty_nickname, observations
		FROM customers WHERE id=$1
	`, id)
	var c Customer
	if err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.IsLoyalty, &c.LoyaltyNickname, &c.Observations); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// GetByName matches case-insensitively; the booking form reuses an existing
// customer when the typed name already exists.
func (r *Repo) GetByName(ctx context.Context, name string) (*Customer, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, phone, is_loyalty, loyalty_nickname, observations
		FROM customers WHERE lower(name)=lower($1)
	`, strings.TrimSpace(name))
	var c Customer
	if err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.IsLoyalty, &c.LoyaltyNickname, &c.Observations); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *Repo) List(ctx context.Context) ([]Customer, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, phone, is_loyalty, loyalty_nickname, observations
		FROM customers ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.IsLoyalty, &c.LoyaltyNickname, &c.Observations); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) Add(ctx context.Context, c Customer) (*Customer, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO customers (id, name, phone, is_loyalty, loyalty_nickname, observations)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, name, phone, is_loyalty, loyalty_nickname, observations
	`, c.ID, c.Name, c.Phone, c.IsLoyalty, c.LoyaltyNickname, c.Observations)
	var out Customer
	if err := row.Scan(&out.ID, &out.Name, &out.Phone, &out.IsLoyalty, &out.LoyaltyNickname, &out.Observations); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Repo) Update(ctx context.Context, c Customer) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE customers SET name=$2, phone=$3, is_loyalty=$4, loyalty_nickname=$5, observations=$6
		WHERE id=$1
	`, c.ID, c.Name, c.Phone, c.IsLoyalty, c.LoyaltyNickname, c.Observations)
	return err
}
