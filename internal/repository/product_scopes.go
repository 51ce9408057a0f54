package repository

import (
	"strings"

	"gorm.io/gorm"

	"github.com/mercatto/marketplace-api/internal/domain"
)

// Product search is a pipeline of independent narrowing steps over a lazy
// GORM query. Each scope is applied only when its criterion is set, always in
// the same order, and steps only ever intersect the running result.

func TitleContains(keyword string) func(*gorm.DB) *gorm.DB {
	pattern := "%" + strings.ToLower(keyword) + "%"
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("LOWER(title) LIKE ?", pattern)
	}
}

func PriceAtLeast(min float64) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("price >= ?", min)
	}
}

func PriceAtMost(max float64) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("price <= ?", max)
	}
}

func IDIn(ids []uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id IN ?", ids)
	}
}

// RecentlyUpdated orders most recently touched products first. Clients poll
// the catalog for fresh records, so newest-first is the useful direction.
func RecentlyUpdated() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order("updated_at DESC")
	}
}

func searchScopes(criteria domain.SearchCriteria) []func(*gorm.DB) *gorm.DB {
	scopes := make([]func(*gorm.DB) *gorm.DB, 0, 5)
	if len(criteria.ProductIDs) > 0 {
		scopes = append(scopes, IDIn(criteria.ProductIDs))
	}
	if criteria.Keyword != "" {
		scopes = append(scopes, TitleContains(criteria.Keyword))
	}
	if criteria.MinPrice != nil {
		scopes = append(scopes, PriceAtLeast(*criteria.MinPrice))
	}
	if criteria.MaxPrice != nil {
		scopes = append(scopes, PriceAtMost(*criteria.MaxPrice))
	}
	if criteria.Recent {
		scopes = append(scopes, RecentlyUpdated())
	}
	return scopes
}
