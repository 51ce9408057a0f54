package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mercatto/marketplace-api/internal/domain"
	"github.com/mercatto/marketplace-api/internal/observability"
)

var ErrProductNotFound = errors.New("product not found")

type ProductRepository interface {
	Create(product *domain.Product) error
	FindByID(id uint) (*domain.Product, error)
	Search(criteria domain.SearchCriteria, page PageRequest) (PageResult[domain.Product], error)
	Update(id uint, updates map[string]any) error
	DeleteByID(id uint) error
	DeleteByOwner(userID uint) error
}

type GormProductRepository struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) Create(product *domain.Product) error {
	if err := r.db.Create(product).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "product", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "product", "create", "success")
	return nil
}

func (r *GormProductRepository) FindByID(id uint) (*domain.Product, error) {
	var product domain.Product
	if err := r.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "product", "find_by_id", "not_found")
			return nil, ErrProductNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "product", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "product", "find_by_id", "success")
	return &product, nil
}

// Search composes the filter pipeline over the product set and materializes
// one page. An explicit ID subset uses strict lookup semantics: the whole
// search fails with ErrProductNotFound when any requested ID is missing.
// Every other absent or degenerate criterion is simply skipped.
func (r *GormProductRepository) Search(criteria domain.SearchCriteria, page PageRequest) (PageResult[domain.Product], error) {
	if len(criteria.ProductIDs) > 0 {
		if err := r.verifyIDsExist(criteria.ProductIDs); err != nil {
			return PageResult[domain.Product]{}, err
		}
	}

	normalized := normalizePageRequest(page)
	result := PageResult[domain.Product]{
		Page:     normalized.Page,
		PageSize: normalized.PageSize,
	}

	base := r.db.Model(&domain.Product{}).Scopes(searchScopes(criteria)...)
	if err := base.Count(&result.Total).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "product", "search", "error")
		return PageResult[domain.Product]{}, err
	}

	offset := (normalized.Page - 1) * normalized.PageSize
	query := base.Offset(offset).Limit(normalized.PageSize)
	if !criteria.Recent {
		query = query.Order("id desc")
	}
	if err := query.Find(&result.Items).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "product", "search", "error")
		return PageResult[domain.Product]{}, err
	}
	result.TotalPages = calcTotalPages(result.Total, normalized.PageSize)
	observability.RecordRepositoryOperation(context.Background(), "product", "search", "success")
	return result, nil
}

func (r *GormProductRepository) verifyIDsExist(ids []uint) error {
	unique := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	var count int64
	if err := r.db.Model(&domain.Product{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "product", "search", "error")
		return err
	}
	if count != int64(len(unique)) {
		observability.RecordRepositoryOperation(context.Background(), "product", "search", "not_found")
		return ErrProductNotFound
	}
	return nil
}

func (r *GormProductRepository) Update(id uint, updates map[string]any) error {
	res := r.db.Model(&domain.Product{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "product", "update", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "product", "update", "not_found")
		return ErrProductNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "product", "update", "success")
	return nil
}

func (r *GormProductRepository) DeleteByID(id uint) error {
	res := r.db.Delete(&domain.Product{}, id)
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "product", "delete_by_id", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "product", "delete_by_id", "not_found")
		return ErrProductNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "product", "delete_by_id", "success")
	return nil
}

// DeleteByOwner removes every product owned by a user. Zero rows is fine,
// account deletion must succeed for users without products.
func (r *GormProductRepository) DeleteByOwner(userID uint) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&domain.Product{}).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "product", "delete_by_owner", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "product", "delete_by_owner", "success")
	return nil
}
