package service

import (
	"context"
	"errors"
	"testing"

	"catalog-api/internal/repository"
	"catalog-api/internal/repository/sqlite"
	"catalog-api/internal/validate"
)

const testRegisterSecret = "let-me-in"

func newUserService(t *testing.T, name string) UserService {
	t.Helper()
	db, err := sqlite.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := sqlite.NewUserRepository(db)
	if err := repo.Init(context.Background()); err != nil {
		t.Fatalf("init repo: %v", err)
	}
	return NewUserService(repo, testRegisterSecret)
}

func newUserServiceWithRepo(t *testing.T, name string) (UserService, repository.UserRepository) {
	t.Helper()
	db, err := sqlite.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := sqlite.NewUserRepository(db)
	if err := repo.Init(context.Background()); err != nil {
		t.Fatalf("init repo: %v", err)
	}
	return NewUserService(repo, testRegisterSecret), repo
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := newUserService(t, "svc_register")
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "alice@example.com", "hunter2hunter2", testRegisterSecret)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == 0 || user.Username != "alice" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.PasswordHash != "" {
		t.Fatal("password hash leaked from service")
	}

	authed, err := svc.Authenticate(ctx, "alice", "hunter2hunter2")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if authed.ID != user.ID || authed.PasswordHash != "" {
		t.Fatalf("unexpected authenticated user: %+v", authed)
	}

	if _, err := svc.Authenticate(ctx, "alice", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody", "hunter2hunter2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newUserService(t, "svc_validation")
	ctx := context.Background()

	_, err := svc.Register(ctx, "al", "not-an-email", "short", testRegisterSecret)
	var verrs validate.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validate.Errors, got %v", err)
	}
	fields := verrs.Fields()
	for _, f := range []string{"username", "email", "password"} {
		if _, ok := fields[f]; !ok {
			t.Fatalf("missing violation for %s: %v", f, fields)
		}
	}
}

func TestRegisterGate(t *testing.T) {
	svc := newUserService(t, "svc_gate")
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "alice@example.com", "hunter2hunter2", "wrong-secret")
	if !errors.Is(err, ErrInvalidRegistrationPassword) {
		t.Fatalf("expected ErrInvalidRegistrationPassword, got %v", err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	svc := newUserService(t, "svc_dup")
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "alice@example.com", "hunter2hunter2", testRegisterSecret); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := svc.Register(ctx, "alice", "other@example.com", "hunter2hunter2", testRegisterSecret)
	if !errors.Is(err, ErrUserAlreadyExists) {
		t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
	}
}

func TestUpdateRehashesPassword(t *testing.T) {
	svc, repo := newUserServiceWithRepo(t, "svc_update")
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "alice@example.com", "firstpassword", testRegisterSecret)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	before, _ := repo.GetByID(ctx, user.ID)

	newPassword := "secondpassword"
	if _, err := svc.Update(ctx, user.ID, false, user.ID, UpdateUserInput{Password: &newPassword}); err != nil {
		t.Fatalf("update: %v", err)
	}

	after, _ := repo.GetByID(ctx, user.ID)
	if after.PasswordHash == before.PasswordHash {
		t.Fatal("password hash unchanged after password update")
	}

	if _, err := svc.Authenticate(ctx, "alice", "secondpassword"); err != nil {
		t.Fatalf("authenticate with new password: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "alice", "firstpassword"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password still accepted: %v", err)
	}
}

func TestUpdateAuthorization(t *testing.T) {
	svc := newUserService(t, "svc_authz")
	ctx := context.Background()

	alice, _ := svc.Register(ctx, "alice", "alice@example.com", "hunter2hunter2", testRegisterSecret)
	bob, _ := svc.Register(ctx, "bob", "bob@example.com", "hunter2hunter2", testRegisterSecret)

	email := "hijack@example.com"
	if _, err := svc.Update(ctx, bob.ID, false, alice.ID, UpdateUserInput{Email: &email}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	// admin may update anyone
	if _, err := svc.Update(ctx, bob.ID, true, alice.ID, UpdateUserInput{Email: &email}); err != nil {
		t.Fatalf("admin update: %v", err)
	}
}

func TestDeleteRequiresAdmin(t *testing.T) {
	svc := newUserService(t, "svc_delete")
	ctx := context.Background()

	alice, _ := svc.Register(ctx, "alice", "alice@example.com", "hunter2hunter2", testRegisterSecret)

	if err := svc.Delete(ctx, false, alice.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(ctx, true, alice.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if _, err := svc.GetByID(ctx, alice.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := svc.Delete(ctx, true, alice.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing user, got %v", err)
	}
}
