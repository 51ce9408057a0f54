package service

import (
	"context"

	"github.com/mercatto/marketplace-api/internal/domain"
	"github.com/mercatto/marketplace-api/internal/repository"
)

type ProductServiceInterface interface {
	Create(ctx context.Context, ownerID uint, input CreateProductInput) (*domain.Product, error)
	GetByID(ctx context.Context, id uint) (*domain.Product, error)
	Search(ctx context.Context, criteria domain.SearchCriteria, page repository.PageRequest) (repository.PageResult[domain.Product], error)
	Update(ctx context.Context, actorID, id uint, input UpdateProductInput) (*domain.Product, error)
	DeleteByID(ctx context.Context, actorID, id uint) error
}

type AuthServiceInterface interface {
	Register(ctx context.Context, email, name, password, ua, ip string) (*LoginResult, error)
	Login(ctx context.Context, email, password, ua, ip string) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken, ua, ip string) (*LoginResult, error)
	Logout(ctx context.Context, userID uint) error
}

type UserServiceInterface interface {
	GetByID(ctx context.Context, id uint) (*domain.User, error)
	DeleteAccount(ctx context.Context, id uint) error
}
