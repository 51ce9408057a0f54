package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mercatto/marketplace-api/internal/domain"
	"github.com/mercatto/marketplace-api/internal/observability"
	"github.com/mercatto/marketplace-api/internal/repository"
)

var (
	ErrProductInvalidTitle = errors.New("title must be between 1 and 120 characters")
	ErrProductInvalidPrice = errors.New("price must be greater than 0")
	ErrProductNoUpdates    = errors.New("no updates provided")
	ErrProductForbidden    = errors.New("product belongs to another user")
)

const searchCacheNamespace = "product_search"

type CreateProductInput struct {
	Title     string
	Price     float64
	Published bool
}

type UpdateProductInput struct {
	Title     *string
	Price     *float64
	Published *bool
}

type ProductServiceImpl struct {
	repo     repository.ProductRepository
	cache    SearchCacheStore
	cacheTTL time.Duration
	group    singleflight.Group
}

func NewProductService(repo repository.ProductRepository, cache SearchCacheStore, cacheTTL time.Duration) *ProductServiceImpl {
	if cache == nil {
		cache = NewNoopSearchCacheStore()
	}
	return &ProductServiceImpl{repo: repo, cache: cache, cacheTTL: cacheTTL}
}

func (s *ProductServiceImpl) Create(ctx context.Context, ownerID uint, input CreateProductInput) (*domain.Product, error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordProductOperation(ctx, "create", outcome, time.Since(start)) }()

	title := strings.TrimSpace(input.Title)
	if title == "" || len(title) > 120 {
		outcome = "bad_request"
		return nil, ErrProductInvalidTitle
	}
	if input.Price <= 0 {
		outcome = "bad_request"
		return nil, ErrProductInvalidPrice
	}

	product := &domain.Product{Title: title, Price: input.Price, Published: input.Published, UserID: ownerID}
	if err := s.repo.Create(product); err != nil {
		outcome = "error"
		return nil, err
	}
	s.invalidateSearchCache(ctx)
	return product, nil
}

func (s *ProductServiceImpl) GetByID(ctx context.Context, id uint) (*domain.Product, error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordProductOperation(ctx, "get", outcome, time.Since(start)) }()

	product, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			outcome = "not_found"
		} else {
			outcome = "error"
		}
		return nil, err
	}
	return product, nil
}

// Search runs the composed filter pipeline. Successful pages are cached
// under a canonical criteria fingerprint; concurrent identical searches
// collapse into one repository call.
func (s *ProductServiceImpl) Search(ctx context.Context, criteria domain.SearchCriteria, page repository.PageRequest) (repository.PageResult[domain.Product], error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordProductOperation(ctx, "search", outcome, time.Since(start)) }()

	recordAppliedFilters(ctx, criteria)

	key := searchCacheKey(criteria, page)
	if s.cacheTTL > 0 {
		payload, ok, err := s.cache.Get(ctx, searchCacheNamespace, key)
		if err != nil {
			observability.RecordSearchCacheEvent(ctx, "error")
		} else if ok {
			var cached repository.PageResult[domain.Product]
			if err := json.Unmarshal(payload, &cached); err == nil {
				observability.RecordSearchCacheEvent(ctx, "hit")
				observability.RecordSearchResultSize(ctx, cached.Total)
				return cached, nil
			}
			observability.RecordSearchCacheEvent(ctx, "error")
		} else {
			observability.RecordSearchCacheEvent(ctx, "miss")
		}
	}

	raw, err, _ := s.group.Do(key, func() (any, error) {
		result, err := s.repo.Search(criteria, page)
		if err != nil {
			return nil, err
		}
		if s.cacheTTL > 0 {
			if payload, marshalErr := json.Marshal(result); marshalErr == nil {
				if setErr := s.cache.Set(ctx, searchCacheNamespace, key, payload, s.cacheTTL); setErr != nil {
					observability.RecordSearchCacheEvent(ctx, "error")
				}
			}
		}
		return result, nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			outcome = "not_found"
		} else {
			outcome = "error"
		}
		return repository.PageResult[domain.Product]{}, err
	}

	result := raw.(repository.PageResult[domain.Product])
	observability.RecordSearchResultSize(ctx, result.Total)
	return result, nil
}

func (s *ProductServiceImpl) Update(ctx context.Context, actorID, id uint, input UpdateProductInput) (*domain.Product, error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordProductOperation(ctx, "update", outcome, time.Since(start)) }()

	existing, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			outcome = "not_found"
		} else {
			outcome = "error"
		}
		return nil, err
	}
	if existing.UserID != actorID {
		outcome = "forbidden"
		return nil, ErrProductForbidden
	}

	updates := map[string]any{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" || len(title) > 120 {
			outcome = "bad_request"
			return nil, ErrProductInvalidTitle
		}
		updates["title"] = title
	}
	if input.Price != nil {
		if *input.Price <= 0 {
			outcome = "bad_request"
			return nil, ErrProductInvalidPrice
		}
		updates["price"] = *input.Price
	}
	if input.Published != nil {
		updates["published"] = *input.Published
	}
	if len(updates) == 0 {
		outcome = "bad_request"
		return nil, ErrProductNoUpdates
	}

	if err := s.repo.Update(id, updates); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			outcome = "not_found"
		} else {
			outcome = "error"
		}
		return nil, err
	}
	s.invalidateSearchCache(ctx)
	product, err := s.repo.FindByID(id)
	if err != nil {
		outcome = "error"
		return nil, err
	}
	return product, nil
}

func (s *ProductServiceImpl) DeleteByID(ctx context.Context, actorID, id uint) error {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordProductOperation(ctx, "delete", outcome, time.Since(start)) }()

	existing, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			outcome = "not_found"
		} else {
			outcome = "error"
		}
		return err
	}
	if existing.UserID != actorID {
		outcome = "forbidden"
		return ErrProductForbidden
	}

	if err := s.repo.DeleteByID(id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			outcome = "not_found"
		} else {
			outcome = "error"
		}
		return err
	}
	s.invalidateSearchCache(ctx)
	return nil
}

func (s *ProductServiceImpl) invalidateSearchCache(ctx context.Context) {
	if s.cacheTTL <= 0 {
		return
	}
	if err := s.cache.InvalidateNamespace(ctx, searchCacheNamespace); err != nil {
		observability.RecordSearchCacheEvent(ctx, "invalidate_error")
		return
	}
	observability.RecordSearchCacheEvent(ctx, "invalidated")
}

func recordAppliedFilters(ctx context.Context, criteria domain.SearchCriteria) {
	if criteria.IsZero() {
		observability.RecordSearchFilter(ctx, "none")
		return
	}
	if len(criteria.ProductIDs) > 0 {
		observability.RecordSearchFilter(ctx, "product_ids")
	}
	if criteria.Keyword != "" {
		observability.RecordSearchFilter(ctx, "keyword")
	}
	if criteria.MinPrice != nil {
		observability.RecordSearchFilter(ctx, "min_price")
	}
	if criteria.MaxPrice != nil {
		observability.RecordSearchFilter(ctx, "max_price")
	}
	if criteria.Recent {
		observability.RecordSearchFilter(ctx, "recent")
	}
}

// searchCacheKey produces a canonical fingerprint of one search invocation.
// Field order is fixed so equal criteria always map to the same key.
func searchCacheKey(criteria domain.SearchCriteria, page repository.PageRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "kw=%s|", strings.ToLower(criteria.Keyword))
	if criteria.MinPrice != nil {
		fmt.Fprintf(&b, "min=%g|", *criteria.MinPrice)
	}
	if criteria.MaxPrice != nil {
		fmt.Fprintf(&b, "max=%g|", *criteria.MaxPrice)
	}
	if len(criteria.ProductIDs) > 0 {
		b.WriteString("ids=")
		for i, id := range criteria.ProductIDs {
			if i > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "%d", id)
		}
		b.WriteByte('|')
	}
	fmt.Fprintf(&b, "recent=%t|page=%d|size=%d", criteria.Recent, page.Page, page.PageSize)
	return b.String()
}
