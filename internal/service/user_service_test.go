package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mercatto/marketplace-api/internal/domain"
	"github.com/mercatto/marketplace-api/internal/repository"
)

func TestUserServiceGetByID(t *testing.T) {
	users := newStubUserRepo()
	if err := users.Create(&domain.User{Email: "seller@example.com", Name: "Seller", PasswordHash: "x"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	svc := NewUserService(users, nil)
	ctx := context.Background()

	user, err := svc.GetByID(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if user.Email != "seller@example.com" {
		t.Fatalf("unexpected user %+v", user)
	}

	if _, err := svc.GetByID(ctx, 999); !errors.Is(err, repository.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserServiceDeleteAccountInvalidatesSearchCache(t *testing.T) {
	users := newStubUserRepo()
	if err := users.Create(&domain.User{Email: "seller@example.com", Name: "Seller", PasswordHash: "x"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	cache := NewInMemorySearchCacheStore()
	ctx := context.Background()
	if err := cache.Set(ctx, searchCacheNamespace, "some-page", []byte("{}"), time.Minute); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	svc := NewUserService(users, cache)
	if err := svc.DeleteAccount(ctx, 1); err != nil {
		t.Fatalf("delete account: %v", err)
	}

	if _, err := users.FindByID(1); !errors.Is(err, repository.ErrUserNotFound) {
		t.Fatalf("expected user removed, got %v", err)
	}
	if _, ok, _ := cache.Get(ctx, searchCacheNamespace, "some-page"); ok {
		t.Fatal("expected search cache namespace dropped after account deletion")
	}
}

func TestUserServiceDeleteAccountMissingUser(t *testing.T) {
	svc := NewUserService(newStubUserRepo(), nil)
	if err := svc.DeleteAccount(context.Background(), 404); !errors.Is(err, repository.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
