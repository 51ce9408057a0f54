package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mercatto/marketplace-api/internal/domain"
	"github.com/mercatto/marketplace-api/internal/repository"
)

type stubProductRepo struct {
	items       map[uint]domain.Product
	nextID      uint
	searchCalls int
}

func (s *stubProductRepo) Create(product *domain.Product) error {
	if s.items == nil {
		s.items = map[uint]domain.Product{}
	}
	if s.nextID == 0 {
		s.nextID = 1
	}
	product.ID = s.nextID
	s.nextID++
	s.items[product.ID] = *product
	return nil
}

func (s *stubProductRepo) FindByID(id uint) (*domain.Product, error) {
	product, ok := s.items[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	cp := product
	return &cp, nil
}

func (s *stubProductRepo) Search(criteria domain.SearchCriteria, page repository.PageRequest) (repository.PageResult[domain.Product], error) {
	s.searchCalls++
	for _, id := range criteria.ProductIDs {
		if _, ok := s.items[id]; !ok {
			return repository.PageResult[domain.Product]{}, repository.ErrProductNotFound
		}
	}
	items := make([]domain.Product, 0, len(s.items))
	for _, p := range s.items {
		items = append(items, p)
	}
	return repository.PageResult[domain.Product]{
		Items:      items,
		Page:       1,
		PageSize:   repository.DefaultPageSize,
		Total:      int64(len(items)),
		TotalPages: 1,
	}, nil
}

func (s *stubProductRepo) Update(id uint, updates map[string]any) error {
	product, ok := s.items[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	if v, ok := updates["title"].(string); ok {
		product.Title = v
	}
	if v, ok := updates["price"].(float64); ok {
		product.Price = v
	}
	if v, ok := updates["published"].(bool); ok {
		product.Published = v
	}
	s.items[id] = product
	return nil
}

func (s *stubProductRepo) DeleteByID(id uint) error {
	if _, ok := s.items[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *stubProductRepo) DeleteByOwner(userID uint) error {
	for id, p := range s.items {
		if p.UserID == userID {
			delete(s.items, id)
		}
	}
	return nil
}

func TestProductServiceValidation(t *testing.T) {
	svc := NewProductService(&stubProductRepo{items: map[uint]domain.Product{}}, nil, 0)

	_, err := svc.Create(context.Background(), 1, CreateProductInput{Title: "   ", Price: 10})
	if !errors.Is(err, ErrProductInvalidTitle) {
		t.Fatalf("expected ErrProductInvalidTitle, got %v", err)
	}

	long := make([]byte, 121)
	for i := range long {
		long[i] = 'a'
	}
	_, err = svc.Create(context.Background(), 1, CreateProductInput{Title: string(long), Price: 10})
	if !errors.Is(err, ErrProductInvalidTitle) {
		t.Fatalf("expected ErrProductInvalidTitle for long title, got %v", err)
	}

	_, err = svc.Create(context.Background(), 1, CreateProductInput{Title: "Valid Title", Price: 0})
	if !errors.Is(err, ErrProductInvalidPrice) {
		t.Fatalf("expected ErrProductInvalidPrice, got %v", err)
	}
}

func TestProductServiceCRUDFlowWithOwnership(t *testing.T) {
	repo := &stubProductRepo{items: map[uint]domain.Product{}}
	svc := NewProductService(repo, nil, 0)

	created, err := svc.Create(context.Background(), 7, CreateProductInput{Title: "Sample Product", Price: 12.5})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.UserID != 7 {
		t.Fatalf("expected owner 7, got %d", created.UserID)
	}

	loaded, err := svc.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if loaded.Title != "Sample Product" {
		t.Fatalf("unexpected loaded product: %+v", loaded)
	}

	title := "Updated Product"
	price := 18.75
	updated, err := svc.Update(context.Background(), 7, created.ID, UpdateProductInput{Title: &title, Price: &price})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Updated Product" || updated.Price != 18.75 {
		t.Fatalf("unexpected updated product: %+v", updated)
	}

	if _, err := svc.Update(context.Background(), 8, created.ID, UpdateProductInput{Title: &title}); !errors.Is(err, ErrProductForbidden) {
		t.Fatalf("expected ErrProductForbidden for other user's update, got %v", err)
	}
	if err := svc.DeleteByID(context.Background(), 8, created.ID); !errors.Is(err, ErrProductForbidden) {
		t.Fatalf("expected ErrProductForbidden for other user's delete, got %v", err)
	}

	if _, err := svc.Update(context.Background(), 7, created.ID, UpdateProductInput{}); !errors.Is(err, ErrProductNoUpdates) {
		t.Fatalf("expected ErrProductNoUpdates, got %v", err)
	}

	if err := svc.DeleteByID(context.Background(), 7, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), created.ID); !errors.Is(err, repository.ErrProductNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestProductServiceSearchUsesCache(t *testing.T) {
	repo := &stubProductRepo{items: map[uint]domain.Product{}}
	cache := NewInMemorySearchCacheStore()
	svc := NewProductService(repo, cache, time.Minute)

	if _, err := svc.Create(context.Background(), 1, CreateProductInput{Title: "Cached Thing", Price: 5}); err != nil {
		t.Fatalf("create: %v", err)
	}

	criteria := domain.SearchCriteria{Keyword: "cached"}
	page := repository.PageRequest{Page: 1, PageSize: 20}

	first, err := svc.Search(context.Background(), criteria, page)
	if err != nil {
		t.Fatalf("first search: %v", err)
	}
	second, err := svc.Search(context.Background(), criteria, page)
	if err != nil {
		t.Fatalf("second search: %v", err)
	}
	if first.Total != second.Total {
		t.Fatalf("cache should not change results: %d vs %d", first.Total, second.Total)
	}
	if repo.searchCalls != 1 {
		t.Fatalf("expected single repository search, got %d", repo.searchCalls)
	}

	// Any write drops the cached pages.
	if _, err := svc.Create(context.Background(), 1, CreateProductInput{Title: "Another Cached Thing", Price: 6}); err != nil {
		t.Fatalf("create second: %v", err)
	}
	refreshed, err := svc.Search(context.Background(), criteria, page)
	if err != nil {
		t.Fatalf("search after write: %v", err)
	}
	if repo.searchCalls != 2 {
		t.Fatalf("expected repository hit after invalidation, got %d calls", repo.searchCalls)
	}
	if refreshed.Total != 2 {
		t.Fatalf("expected refreshed total 2, got %d", refreshed.Total)
	}
}

func TestProductServiceSearchPropagatesNotFound(t *testing.T) {
	repo := &stubProductRepo{items: map[uint]domain.Product{}}
	svc := NewProductService(repo, nil, 0)

	_, err := svc.Search(context.Background(), domain.SearchCriteria{ProductIDs: []uint{99}}, repository.PageRequest{})
	if !errors.Is(err, repository.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestSearchCacheKeyIsCanonical(t *testing.T) {
	min := 10.0
	a := searchCacheKey(domain.SearchCriteria{Keyword: "TV", MinPrice: &min}, repository.PageRequest{Page: 1, PageSize: 20})
	b := searchCacheKey(domain.SearchCriteria{Keyword: "tv", MinPrice: &min}, repository.PageRequest{Page: 1, PageSize: 20})
	if a != b {
		t.Fatalf("case-folded keywords should share a key: %q vs %q", a, b)
	}
	c := searchCacheKey(domain.SearchCriteria{Keyword: "tv"}, repository.PageRequest{Page: 2, PageSize: 20})
	if a == c {
		t.Fatalf("different pages must not share a key: %q", c)
	}
}
