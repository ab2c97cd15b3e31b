package repository

import (
	"context"

	"catalog-api/internal/domain"
)

// ProductRepository exposes persistence operations for Product records.
type ProductRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, product *domain.Product) (int64, error)
	Update(ctx context.Context, product *domain.Product) error
	UpdateImageKey(ctx context.Context, id int64, imageKey string) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*domain.Product, error)
	GetBySKU(ctx context.Context, sku string) (*domain.Product, error)
	List(ctx context.Context, limit, offset int) ([]domain.Product, error)
	ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]domain.Product, error)
}
