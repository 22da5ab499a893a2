package providers

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

const providerCols = `id, name, specialty, active, real_name, pix_key, phone, bank_details`

func (r *Repo) GetByName(ctx context.Context, name string) (*Provider, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+providerCols+` FROM providers WHERE name=$1
	`, name)
	var p Provider
	if err := row.Scan(&p.ID, &p.Name, &p.Specialty, &p.Active, &p.RealName, &p.PixKey, &p.Phone, &p.BankDetails); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repo) List(ctx context.Context, activeOnly bool) ([]Provider, error) {
	q := `SELECT ` + providerCols + ` FROM providers ORDER BY name`
	if activeOnly {
		q = `SELECT ` + providerCols + ` FROM providers WHERE active ORDER BY name`
	}
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Provider
	for rows.Next() {
		var p Provider
		if err := rows.Scan(&p.ID, &p.Name, &p.Specialty, &p.Active, &p.RealName, &p.PixKey, &p.Phone, &p.BankDetails); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) Add(ctx context.Context, p Provider) (*Provider, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO providers (id, name, specialty, active, real_name, pix_key, phone, bank_details)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING `+providerCols+`
	`, p.ID, p.Name, p.Specialty, p.Active, p.RealName, p.PixKey, p.Phone, p.BankDetails)
	var out Provider
	if err := row.Scan(&out.ID, &out.Name, &out.Specialty, &out.Active, &out.RealName, &out.PixKey, &out.Phone, &out.BankDetails); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Repo) Update(ctx context.Context, p Provider) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE providers SET name=$2, specialty=$3, active=$4, real_name=$5, pix_key=$6, phone=$7, bank_details=$8
		WHERE id=$1
	`, p.ID, p.Name, p.Specialty, p.Active, p.RealName, p.PixKey, p.Phone, p.BankDetails)
	return err
}

func (r *Repo) SetActive(ctx context.Context, id string, active bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE providers SET active=$2 WHERE id=$1`, id, active)
	return err
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM providers WHERE id=$1`, id)
	return err
}
