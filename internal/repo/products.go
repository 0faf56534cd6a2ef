package repo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-bangunan/internal/pricing"
)

// Product is a catalog entry used to seed line defaults. Stock clamping at
// entry time happens in the UI; the stored stock is re-checked when a
// settlement is submitted.
type Product struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Unit      string        `json:"unit"`
	UnitPrice pricing.Money `json:"unitPrice"`
	Stock     int           `json:"stock"`
	IsActive  bool          `json:"isActive"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Products provides access to the products table.
type Products struct {
	Pool *pgxpool.Pool
}

const productColumns = "id, name, unit, unit_price, stock, is_active, created_at, updated_at"

// List returns active products ordered by name.
func (p *Products) List(ctx context.Context) ([]Product, error) {
	rows, err := p.Pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE is_active = TRUE
		ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]Product, 0, 64)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

// Get returns the product by id.
func (p *Products) Get(ctx context.Context, id string) (Product, error) {
	row := p.Pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return product, nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var product Product
	err := row.Scan(&product.ID, &product.Name, &product.Unit, &product.UnitPrice,
		&product.Stock, &product.IsActive, &product.CreatedAt, &product.UpdatedAt)
	return product, err
}
