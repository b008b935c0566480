package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jumparoo/bounce-bookings/internal/catalog"
)

// ProductRepo serves the rental catalog from Postgres. It satisfies
// catalog.Store so the flow can resolve product snapshots from it.
type ProductRepo struct{ pool *pgxpool.Pool }

func NewProductRepo(pool *pgxpool.Pool) *ProductRepo { return &ProductRepo{pool: pool} }

const productCols = `ref, name, description, category, status`

func (r *ProductRepo) List(ctx context.Context) ([]catalog.Product, error) {
	const q = `SELECT ` + productCols + ` FROM products ORDER BY name`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []catalog.Product
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.Ref, &p.Name, &p.Description, &p.Category, &p.Status); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *ProductRepo) Get(ctx context.Context, ref string) (*catalog.Product, error) {
	const q = `SELECT ` + productCols + ` FROM products WHERE ref=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var p catalog.Product
	err := r.pool.QueryRow(ctx, q, ref).Scan(&p.Ref, &p.Name, &p.Description, &p.Category, &p.Status)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

var _ catalog.Store = (*ProductRepo)(nil)
