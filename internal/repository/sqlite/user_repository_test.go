package sqlite

import (
	"context"
	"errors"
	"testing"

	"catalog-api/internal/domain"
	"catalog-api/internal/repository"
)

func openTestDB(t *testing.T, name string) *UserRepository {
	t.Helper()
	db, err := Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := NewUserRepository(db).(*UserRepository)
	if err := repo.Init(context.Background()); err != nil {
		t.Fatalf("init repo: %v", err)
	}
	return repo
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	repo := openTestDB(t, "users_create")
	ctx := context.Background()

	user := &domain.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
	}
	id, err := repo.Create(ctx, user)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == 0 || user.ID != id {
		t.Fatalf("bad id: %d / %d", id, user.ID)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("expected default role, got %q", user.Role)
	}
	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
		t.Fatal("timestamps not set")
	}

	got, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got.Username != "alice" || got.Email != "alice@example.com" || got.PasswordHash != "hash" {
		t.Fatalf("unexpected user: %+v", got)
	}

	byName, err := repo.GetByUsername(ctx, "alice")
	if err != nil || byName.ID != id {
		t.Fatalf("get by username: %v %+v", err, byName)
	}
	byEmail, err := repo.GetByEmail(ctx, "alice@example.com")
	if err != nil || byEmail.ID != id {
		t.Fatalf("get by email: %v %+v", err, byEmail)
	}
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	repo := openTestDB(t, "users_dup")
	ctx := context.Background()

	if _, err := repo.Create(ctx, &domain.User{Username: "bob", Email: "bob@example.com", PasswordHash: "h"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := repo.Create(ctx, &domain.User{Username: "bob", Email: "other@example.com", PasswordHash: "h"})
	if !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	_, err = repo.Create(ctx, &domain.User{Username: "carol", Email: "bob@example.com", PasswordHash: "h"})
	if !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for email, got %v", err)
	}
}

func TestUserRepository_NotFound(t *testing.T) {
	repo := openTestDB(t, "users_missing")
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, 999); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, 999); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on delete, got %v", err)
	}
	if err := repo.Update(ctx, &domain.User{ID: 999, Email: "x@y.zz"}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
}

func TestUserRepository_UpdateDeleteList(t *testing.T) {
	repo := openTestDB(t, "users_udl")
	ctx := context.Background()

	var ids []int64
	for _, name := range []string{"u1", "u2", "u3"} {
		u := &domain.User{Username: name, Email: name + "@example.com", PasswordHash: "h"}
		id, err := repo.Create(ctx, u)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		ids = append(ids, id)
	}

	u, err := repo.GetByID(ctx, ids[0])
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	u.Email = "new@example.com"
	u.Role = domain.RoleAdmin
	if err := repo.Update(ctx, u); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := repo.GetByID(ctx, ids[0])
	if got.Email != "new@example.com" || got.Role != domain.RoleAdmin {
		t.Fatalf("update not persisted: %+v", got)
	}

	list, err := repo.List(ctx, 10, 0)
	if err != nil || len(list) != 3 {
		t.Fatalf("list: %v len=%d", err, len(list))
	}
	page, err := repo.List(ctx, 2, 2)
	if err != nil || len(page) != 1 {
		t.Fatalf("paged list: %v len=%d", err, len(page))
	}

	if err := repo.Delete(ctx, ids[1]); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, ids[1]); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected user gone, got %v", err)
	}
}
