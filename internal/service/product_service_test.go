package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"catalog-api/internal/repository/sqlite"
	"catalog-api/internal/validate"
)

func newProductService(t *testing.T, name string) ProductService {
	t.Helper()
	db, err := sqlite.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := sqlite.NewProductRepository(db)
	if err := repo.Init(context.Background()); err != nil {
		t.Fatalf("init repo: %v", err)
	}
	return NewProductService(repo)
}

func validInput() ProductInput {
	return ProductInput{
		Name:        "Espresso Machine",
		Description: "9 bar pump",
		PriceCents:  24900,
		Stock:       12,
	}
}

func TestProductCreateAssignsSKU(t *testing.T) {
	svc := newProductService(t, "prod_create")
	ctx := context.Background()

	p, err := svc.Create(ctx, 1, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == 0 || p.SKU == "" || p.OwnerID != 1 {
		t.Fatalf("unexpected product: %+v", p)
	}

	q, err := svc.Create(ctx, 1, validInput())
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if q.SKU == p.SKU {
		t.Fatal("SKUs must be unique per product")
	}
}

func TestProductCreateValidation(t *testing.T) {
	svc := newProductService(t, "prod_validate")
	ctx := context.Background()

	input := ProductInput{
		Name:        "x",
		Description: strings.Repeat("d", 2001),
		PriceCents:  -1,
		Stock:       -2,
	}
	_, err := svc.Create(ctx, 1, input)
	var verrs validate.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validate.Errors, got %v", err)
	}
	fields := verrs.Fields()
	for _, f := range []string{"name", "description", "price_cents", "stock"} {
		if _, ok := fields[f]; !ok {
			t.Fatalf("missing violation for %s: %v", f, fields)
		}
	}
}

func TestProductUpdateOwnership(t *testing.T) {
	svc := newProductService(t, "prod_ownership")
	ctx := context.Background()

	p, err := svc.Create(ctx, 1, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	in := validInput()
	in.Name = "Renamed"

	if _, err := svc.Update(ctx, 2, false, p.ID, in); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner, got %v", err)
	}

	updated, err := svc.Update(ctx, 1, false, p.ID, in)
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Name != "Renamed" {
		t.Fatalf("update not applied: %+v", updated)
	}

	in.Name = "Admin Renamed"
	if _, err := svc.Update(ctx, 99, true, p.ID, in); err != nil {
		t.Fatalf("admin update: %v", err)
	}
}

func TestProductDeleteReturnsRecord(t *testing.T) {
	svc := newProductService(t, "prod_delete")
	ctx := context.Background()

	p, _ := svc.Create(ctx, 1, validInput())

	if _, err := svc.Delete(ctx, 2, false, p.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	deleted, err := svc.Delete(ctx, 1, false, p.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted.SKU != p.SKU {
		t.Fatalf("delete returned wrong record: %+v", deleted)
	}
	if _, err := svc.Get(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := svc.Delete(ctx, 1, false, p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestProductSetImageKey(t *testing.T) {
	svc := newProductService(t, "prod_image")
	ctx := context.Background()

	p, _ := svc.Create(ctx, 1, validInput())

	if _, err := svc.SetImageKey(ctx, 2, false, p.ID, "k"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	updated, err := svc.SetImageKey(ctx, 1, false, p.ID, "product-images/"+p.SKU+"/a.png")
	if err != nil {
		t.Fatalf("set image key: %v", err)
	}
	if updated.ImageKey == "" {
		t.Fatalf("image key not set: %+v", updated)
	}

	got, _ := svc.Get(ctx, p.ID)
	if got.ImageKey != updated.ImageKey {
		t.Fatalf("image key not persisted: %+v", got)
	}
}

func TestProductListByOwner(t *testing.T) {
	svc := newProductService(t, "prod_listowner")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := svc.Create(ctx, 1, validInput()); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, err := svc.Create(ctx, 2, validInput()); err != nil {
		t.Fatalf("create: %v", err)
	}

	owned, err := svc.ListByOwner(ctx, 1, 10, 0)
	if err != nil || len(owned) != 2 {
		t.Fatalf("list by owner: %v len=%d", err, len(owned))
	}
	all, err := svc.List(ctx, 10, 0)
	if err != nil || len(all) != 3 {
		t.Fatalf("list: %v len=%d", err, len(all))
	}
}
