package repository

import (
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/mercatto/marketplace-api/internal/domain"
)

func seedCatalogForTest(t *testing.T, repo ProductRepository, owner uint) map[string]*domain.Product {
	t.Helper()
	catalog := map[string]float64{
		"A plasma TV":        100,
		"LCD TV":             50,
		"Fastest Laptop":     150,
		"Videogame console":  99,
		"Comfortable chairs": 70,
	}
	out := make(map[string]*domain.Product, len(catalog))
	for title, price := range catalog {
		p := &domain.Product{Title: title, Price: price, Published: true, UserID: owner}
		if err := repo.Create(p); err != nil {
			t.Fatalf("create %q: %v", title, err)
		}
		out[title] = p
	}
	return out
}

func searchTitles(t *testing.T, repo ProductRepository, criteria domain.SearchCriteria) []string {
	t.Helper()
	page, err := repo.Search(criteria, PageRequest{Page: 1, PageSize: 50})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	titles := make([]string, 0, len(page.Items))
	for _, p := range page.Items {
		titles = append(titles, p.Title)
	}
	sort.Strings(titles)
	return titles
}

func floatPtr(v float64) *float64 { return &v }

func TestProductSearchKeywordIsCaseInsensitive(t *testing.T) {
	db := newRepositoryDBForTest(t)
	migrateAllForTest(t, db)
	owner := createUserForTest(t, db, "seller@example.com")
	repo := NewProductRepository(db)
	seedCatalogForTest(t, repo, owner.ID)

	titles := searchTitles(t, repo, domain.SearchCriteria{Keyword: "TV"})
	want := []string{"A plasma TV", "LCD TV"}
	if len(titles) != len(want) || titles[0] != want[0] || titles[1] != want[1] {
		t.Fatalf("keyword TV mismatch: got %v want %v", titles, want)
	}

	lower := searchTitles(t, repo, domain.SearchCriteria{Keyword: "tv"})
	if len(lower) != 2 {
		t.Fatalf("lowercase keyword should match same rows, got %v", lower)
	}
}

func TestProductSearchPriceBoundsAreInclusive(t *testing.T) {
	db := newRepositoryDBForTest(t)
	migrateAllForTest(t, db)
	owner := createUserForTest(t, db, "seller@example.com")
	repo := NewProductRepository(db)
	seedCatalogForTest(t, repo, owner.ID)

	atLeast := searchTitles(t, repo, domain.SearchCriteria{MinPrice: floatPtr(100)})
	if len(atLeast) != 2 || atLeast[0] != "A plasma TV" || atLeast[1] != "Fastest Laptop" {
		t.Fatalf("min price 100 mismatch: got %v", atLeast)
	}

	atMost := searchTitles(t, repo, domain.SearchCriteria{MaxPrice: floatPtr(99)})
	want := []string{"Comfortable chairs", "LCD TV", "Videogame console"}
	if len(atMost) != 3 {
		t.Fatalf("max price 99 mismatch: got %v want %v", atMost, want)
	}
	for i := range want {
		if atMost[i] != want[i] {
			t.Fatalf("max price 99 mismatch: got %v want %v", atMost, want)
		}
	}
}

func TestProductSearchFiltersIntersect(t *testing.T) {
	db := newRepositoryDBForTest(t)
	migrateAllForTest(t, db)
	owner := createUserForTest(t, db, "seller@example.com")
	repo := NewProductRepository(db)
	seedCatalogForTest(t, repo, owner.ID)

	titles := searchTitles(t, repo, domain.SearchCriteria{Keyword: "videogame", MinPrice: floatPtr(100)})
	if len(titles) != 0 {
		t.Fatalf("expected empty intersection, got %v", titles)
	}

	titles = searchTitles(t, repo, domain.SearchCriteria{Keyword: "tv", MinPrice: floatPtr(60), MaxPrice: floatPtr(120)})
	if len(titles) != 1 || titles[0] != "A plasma TV" {
		t.Fatalf("expected single intersection hit, got %v", titles)
	}
}

func TestProductSearchEmptyCriteriaReturnsEverything(t *testing.T) {
	db := newRepositoryDBForTest(t)
	migrateAllForTest(t, db)
	owner := createUserForTest(t, db, "seller@example.com")
	repo := NewProductRepository(db)
	seedCatalogForTest(t, repo, owner.ID)

	page, err := repo.Search(domain.SearchCriteria{}, PageRequest{Page: 1, PageSize: 50})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.Total != 5 || len(page.Items) != 5 {
		t.Fatalf("expected full catalog, got total=%d items=%d", page.Total, len(page.Items))
	}
}

func TestProductSearchStrictIDSubset(t *testing.T) {
	db := newRepositoryDBForTest(t)
	migrateAllForTest(t, db)
	owner := createUserForTest(t, db, "seller@example.com")
	repo := NewProductRepository(db)
	seeded := seedCatalogForTest(t, repo, owner.ID)

	tv := seeded["A plasma TV"]
	laptop := seeded["Fastest Laptop"]

	page, err := repo.Search(domain.SearchCriteria{ProductIDs: []uint{tv.ID, laptop.ID}}, PageRequest{Page: 1, PageSize: 50})
	if err != nil {
		t.Fatalf("search by ids: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("expected both requested products, got total=%d", page.Total)
	}

	_, err = repo.Search(domain.SearchCriteria{ProductIDs: []uint{tv.ID, 99999}}, PageRequest{Page: 1, PageSize: 50})
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound for missing id, got %v", err)
	}

	// Duplicate IDs count once against the existence check.
	page, err = repo.Search(domain.SearchCriteria{ProductIDs: []uint{tv.ID, tv.ID}}, PageRequest{Page: 1, PageSize: 50})
	if err != nil {
		t.Fatalf("search with duplicate ids: %v", err)
	}
	if page.Total != 1 {
		t.Fatalf("expected single row for duplicate ids, got total=%d", page.Total)
	}
}

func TestProductSearchIDSubsetIntersectsOtherFilters(t *testing.T) {
	db := newRepositoryDBForTest(t)
	migrateAllForTest(t, db)
	owner := createUserForTest(t, db, "seller@example.com")
	repo := NewProductRepository(db)
	seeded := seedCatalogForTest(t, repo, owner.ID)

	tv := seeded["A plasma TV"]
	laptop := seeded["Fastest Laptop"]

	page, err := repo.Search(domain.SearchCriteria{
		ProductIDs: []uint{tv.ID, laptop.ID},
		Keyword:    "tv",
	}, PageRequest{Page: 1, PageSize: 50})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.Total != 1 || page.Items[0].ID != tv.ID {
		t.Fatalf("expected intersection to keep only the TV, got %+v", page.Items)
	}
}

func TestProductSearchRecentOrdersByUpdatedAtDesc(t *testing.T) {
	db := newRepositoryDBForTest(t)
	migrateAllForTest(t, db)
	owner := createUserForTest(t, db, "seller@example.com")
	repo := NewProductRepository(db)
	seeded := seedCatalogForTest(t, repo, owner.ID)

	base := time.Now().Add(-time.Hour)
	stamps := map[string]time.Time{
		"LCD TV":             base,
		"A plasma TV":        base.Add(10 * time.Minute),
		"Videogame console":  base.Add(30 * time.Minute),
		"Fastest Laptop":     base.Add(20 * time.Minute),
		"Comfortable chairs": base.Add(5 * time.Minute),
	}
	for title, ts := range stamps {
		err := db.Model(&domain.Product{}).
			Where("id = ?", seeded[title].ID).
			UpdateColumn("updated_at", ts).Error
		if err != nil {
			t.Fatalf("stamp %q: %v", title, err)
		}
	}

	page, err := repo.Search(domain.SearchCriteria{Recent: true}, PageRequest{Page: 1, PageSize: 50})
	if err != nil {
		t.Fatalf("search recent: %v", err)
	}
	want := []string{"Videogame console", "Fastest Laptop", "A plasma TV", "Comfortable chairs", "LCD TV"}
	if len(page.Items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(page.Items))
	}
	for i, title := range want {
		if page.Items[i].Title != title {
			t.Fatalf("position %d: got %q want %q", i, page.Items[i].Title, title)
		}
	}
}

func TestProductSearchPagination(t *testing.T) {
	db := newRepositoryDBForTest(t)
	migrateAllForTest(t, db)
	owner := createUserForTest(t, db, "seller@example.com")
	repo := NewProductRepository(db)
	seedCatalogForTest(t, repo, owner.ID)

	page, err := repo.Search(domain.SearchCriteria{}, PageRequest{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("search page 1: %v", err)
	}
	if page.Total != 5 || page.TotalPages != 3 || len(page.Items) != 2 {
		t.Fatalf("unexpected page 1 result: total=%d pages=%d items=%d", page.Total, page.TotalPages, len(page.Items))
	}

	last, err := repo.Search(domain.SearchCriteria{}, PageRequest{Page: 3, PageSize: 2})
	if err != nil {
		t.Fatalf("search page 3: %v", err)
	}
	if len(last.Items) != 1 {
		t.Fatalf("expected 1 item on last page, got %d", len(last.Items))
	}
}

func TestProductRepositoryCRUD(t *testing.T) {
	db := newRepositoryDBForTest(t)
	migrateAllForTest(t, db)
	owner := createUserForTest(t, db, "seller@example.com")
	repo := NewProductRepository(db)

	p := &domain.Product{Title: "Mechanical keyboard", Price: 120, UserID: owner.ID}
	if err := repo.Create(p); err != nil {
		t.Fatalf("create: %v", err)
	}

	loaded, err := repo.FindByID(p.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if loaded.Title != p.Title || loaded.Price != p.Price {
		t.Fatalf("loaded product mismatch: %+v", loaded)
	}

	if err := repo.Update(p.ID, map[string]any{"title": "Renamed", "price": 99.5, "published": true}); err != nil {
		t.Fatalf("update: %v", err)
	}
	updated, err := repo.FindByID(p.ID)
	if err != nil {
		t.Fatalf("find updated: %v", err)
	}
	if updated.Title != "Renamed" || updated.Price != 99.5 || !updated.Published {
		t.Fatalf("unexpected updated product: %+v", updated)
	}

	if err := repo.DeleteByID(p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.FindByID(p.ID); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestProductRepositoryNotFoundCases(t *testing.T) {
	db := newRepositoryDBForTest(t)
	migrateAllForTest(t, db)
	repo := NewProductRepository(db)

	if _, err := repo.FindByID(999); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if err := repo.Update(999, map[string]any{"title": "x"}); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound on update, got %v", err)
	}
	if err := repo.DeleteByID(999); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound on delete, got %v", err)
	}
}

func TestProductRepositoryDeleteByOwner(t *testing.T) {
	db := newRepositoryDBForTest(t)
	migrateAllForTest(t, db)
	owner := createUserForTest(t, db, "seller@example.com")
	other := createUserForTest(t, db, "other@example.com")
	repo := NewProductRepository(db)

	for _, spec := range []struct {
		title string
		uid   uint
	}{
		{"Owned A", owner.ID},
		{"Owned B", owner.ID},
		{"Not mine", other.ID},
	} {
		if err := repo.Create(&domain.Product{Title: spec.title, Price: 10, UserID: spec.uid}); err != nil {
			t.Fatalf("create %q: %v", spec.title, err)
		}
	}

	if err := repo.DeleteByOwner(owner.ID); err != nil {
		t.Fatalf("delete by owner: %v", err)
	}

	page, err := repo.Search(domain.SearchCriteria{}, PageRequest{Page: 1, PageSize: 50})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if page.Total != 1 || page.Items[0].Title != "Not mine" {
		t.Fatalf("expected only the other seller's product, got %+v", page.Items)
	}

	// No products is not an error.
	if err := repo.DeleteByOwner(owner.ID); err != nil {
		t.Fatalf("delete by owner with no rows: %v", err)
	}
}
