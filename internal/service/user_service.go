package service

import (
	"context"
	"errors"

	"github.com/mercatto/marketplace-api/internal/domain"
	"github.com/mercatto/marketplace-api/internal/observability"
	"github.com/mercatto/marketplace-api/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepository
	cache    SearchCacheStore
}

func NewUserService(userRepo repository.UserRepository, cache SearchCacheStore) *UserService {
	if cache == nil {
		cache = NewNoopSearchCacheStore()
	}
	return &UserService{userRepo: userRepo, cache: cache}
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			observability.RecordUserProfileEvent(ctx, "not_found")
		} else {
			observability.RecordUserProfileEvent(ctx, "error")
		}
		return nil, err
	}
	observability.RecordUserProfileEvent(ctx, "fetched")
	return user, nil
}

// DeleteAccount removes the user together with owned products and sessions.
// Cached search pages may still reference the removed products, so the
// search cache namespace is dropped as well.
func (s *UserService) DeleteAccount(ctx context.Context, id uint) error {
	if err := s.userRepo.DeleteByID(id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			observability.RecordUserProfileEvent(ctx, "not_found")
		} else {
			observability.RecordUserProfileEvent(ctx, "error")
		}
		return err
	}
	if err := s.cache.InvalidateNamespace(ctx, searchCacheNamespace); err != nil {
		observability.RecordSearchCacheEvent(ctx, "invalidate_error")
	}
	observability.RecordUserProfileEvent(ctx, "deleted")
	return nil
}
