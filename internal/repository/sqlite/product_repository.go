package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"catalog-api/internal/domain"
	"catalog-api/internal/repository"
)

const createProductsTable = `
CREATE TABLE IF NOT EXISTS products (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	sku TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	price_cents INTEGER NOT NULL DEFAULT 0,
	stock INTEGER NOT NULL DEFAULT 0,
	image_key TEXT NOT NULL DEFAULT '',
	owner_id INTEGER NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_products_owner ON products(owner_id);
`

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) repository.ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createProductsTable); err != nil {
		return fmt.Errorf("create products table: %w", err)
	}
	return nil
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) (int64, error) {
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO products (sku, name, description, price_cents, stock, image_key, owner_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.SKU,
		product.Name,
		product.Description,
		product.PriceCents,
		product.Stock,
		product.ImageKey,
		product.OwnerID,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("insert product: %w", repository.ErrDuplicate)
		}
		return 0, fmt.Errorf("insert product: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("product last insert id: %w", err)
	}
	product.ID = id
	return id, nil
}

func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	product.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
UPDATE products
SET name = ?, description = ?, price_cents = ?, stock = ?, updated_at = ?
WHERE id = ?`,
		product.Name,
		product.Description,
		product.PriceCents,
		product.Stock,
		product.UpdatedAt,
		product.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return requireRowAffected(res, "product")
}

func (r *ProductRepository) UpdateImageKey(ctx context.Context, id int64, imageKey string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE products
SET image_key = ?, updated_at = ?
WHERE id = ?`,
		imageKey,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("update product image key: %w", err)
	}
	return requireRowAffected(res, "product")
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return requireRowAffected(res, "product")
}

func (r *ProductRepository) Get(ctx context.Context, id int64) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, sku, name, description, price_cents, stock, image_key, owner_id, created_at, updated_at
FROM products
WHERE id = ?`,
		id,
	)
	return scanProduct(row)
}

func (r *ProductRepository) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, sku, name, description, price_cents, stock, image_key, owner_id, created_at, updated_at
FROM products
WHERE sku = ?`,
		sku,
	)
	return scanProduct(row)
}

func (r *ProductRepository) List(ctx context.Context, limit, offset int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, sku, name, description, price_cents, stock, image_key, owner_id, created_at, updated_at
FROM products
ORDER BY id
LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return collectProducts(rows)
}

func (r *ProductRepository) ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, sku, name, description, price_cents, stock, image_key, owner_id, created_at, updated_at
FROM products
WHERE owner_id = ?
ORDER BY id
LIMIT ? OFFSET ?`,
		ownerID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list products by owner: %w", err)
	}
	return collectProducts(rows)
}

func collectProducts(rows *sql.Rows) ([]domain.Product, error) {
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID,
			&p.SKU,
			&p.Name,
			&p.Description,
			&p.PriceCents,
			&p.Stock,
			&p.ImageKey,
			&p.OwnerID,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

func scanProduct(row *sql.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(
		&p.ID,
		&p.SKU,
		&p.Name,
		&p.Description,
		&p.PriceCents,
		&p.Stock,
		&p.ImageKey,
		&p.OwnerID,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return &p, nil
}
