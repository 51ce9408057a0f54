package service

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/mercatto/marketplace-api/internal/domain"
)

// ParseSearchCriteria maps raw query parameters onto SearchCriteria.
// Filtering is best effort: an ill-typed value never fails the request,
// it just loses that filter's narrowing effect. Prices coerce permissively
// (non-numeric input becomes 0), `recent` is a presence flag, and any
// unrecognized key is ignored.
func ParseSearchCriteria(values url.Values) domain.SearchCriteria {
	criteria := domain.SearchCriteria{}

	if keyword := strings.TrimSpace(values.Get("keyword")); keyword != "" {
		criteria.Keyword = keyword
	}
	if raw, ok := firstValue(values, "min_price"); ok {
		v := coercePrice(raw)
		criteria.MinPrice = &v
	}
	if raw, ok := firstValue(values, "max_price"); ok {
		v := coercePrice(raw)
		criteria.MaxPrice = &v
	}
	if _, ok := values["recent"]; ok {
		criteria.Recent = true
	}
	criteria.ProductIDs = parseProductIDs(values)

	return criteria
}

func firstValue(values url.Values, key string) (string, bool) {
	vs, ok := values[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

func coercePrice(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return v
}

// parseProductIDs accepts repeated product_ids params, the bracketed array
// form, and comma separated lists. Unparsable entries are skipped.
func parseProductIDs(values url.Values) []uint {
	raw := values["product_ids"]
	raw = append(raw, values["product_ids[]"]...)

	var ids []uint
	for _, entry := range raw {
		for _, part := range strings.Split(entry, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id64, err := strconv.ParseUint(part, 10, 64)
			if err != nil {
				continue
			}
			ids = append(ids, uint(id64))
		}
	}
	return ids
}
