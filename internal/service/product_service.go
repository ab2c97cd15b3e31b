package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"catalog-api/internal/domain"
	"catalog-api/internal/repository"
	"catalog-api/internal/validate"
)

// ProductInput carries the caller-supplied product fields.
type ProductInput struct {
	Name        string
	Description string
	PriceCents  int64
	Stock       int
}

// ProductService coordinates product level operations backed by repositories.
type ProductService interface {
	Create(ctx context.Context, ownerID int64, input ProductInput) (*domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, limit, offset int) ([]domain.Product, error)
	ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]domain.Product, error)
	Update(ctx context.Context, actorID int64, actorIsAdmin bool, id int64, input ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, actorID int64, actorIsAdmin bool, id int64) (*domain.Product, error)
	SetImageKey(ctx context.Context, actorID int64, actorIsAdmin bool, id int64, imageKey string) (*domain.Product, error)
}

type productService struct {
	products repository.ProductRepository
}

func NewProductService(products repository.ProductRepository) ProductService {
	return &productService{products: products}
}

func validateProductInput(input ProductInput) error {
	v := validate.New()
	v.String("name", strings.TrimSpace(input.Name), validate.Required(), validate.MinLength(2), validate.MaxLength(120))
	v.String("description", input.Description, validate.MaxLength(2000))
	v.Int("price_cents", input.PriceCents, validate.Min(0))
	v.Int("stock", int64(input.Stock), validate.Min(0))
	return v.Err()
}

func (s *productService) Create(ctx context.Context, ownerID int64, input ProductInput) (*domain.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product := &domain.Product{
		SKU:         uuid.NewString(),
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		PriceCents:  input.PriceCents,
		Stock:       input.Stock,
		OwnerID:     ownerID,
	}

	if _, err := s.products.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.products.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) List(ctx context.Context, limit, offset int) ([]domain.Product, error) {
	return s.products.List(ctx, limit, offset)
}

func (s *productService) ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]domain.Product, error) {
	return s.products.ListByOwner(ctx, ownerID, limit, offset)
}

func (s *productService) Update(ctx context.Context, actorID int64, actorIsAdmin bool, id int64, input ProductInput) (*domain.Product, error) {
	product, err := s.ownedProduct(ctx, actorID, actorIsAdmin, id)
	if err != nil {
		return nil, err
	}
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product.Name = strings.TrimSpace(input.Name)
	product.Description = input.Description
	product.PriceCents = input.PriceCents
	product.Stock = input.Stock

	if err := s.products.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) Delete(ctx context.Context, actorID int64, actorIsAdmin bool, id int64) (*domain.Product, error) {
	product, err := s.ownedProduct(ctx, actorID, actorIsAdmin, id)
	if err != nil {
		return nil, err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) SetImageKey(ctx context.Context, actorID int64, actorIsAdmin bool, id int64, imageKey string) (*domain.Product, error) {
	product, err := s.ownedProduct(ctx, actorID, actorIsAdmin, id)
	if err != nil {
		return nil, err
	}
	if err := s.products.UpdateImageKey(ctx, id, imageKey); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	product.ImageKey = imageKey
	return product, nil
}

// ownedProduct loads the product and enforces the owner-or-admin rule.
func (s *productService) ownedProduct(ctx context.Context, actorID int64, actorIsAdmin bool, id int64) (*domain.Product, error) {
	product, err := s.products.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if product.OwnerID != actorID && !actorIsAdmin {
		return nil, ErrForbidden
	}
	return product, nil
}
