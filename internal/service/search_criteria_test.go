package service

import (
	"net/url"
	"testing"
)

func TestParseSearchCriteriaRecognizedKeys(t *testing.T) {
	values := url.Values{}
	values.Set("keyword", "  TV ")
	values.Set("min_price", "50")
	values.Set("max_price", "150.5")
	values.Add("product_ids", "1,2")
	values.Add("product_ids", "3")
	values.Set("recent", "")
	values.Set("unknown_key", "ignored")

	criteria := ParseSearchCriteria(values)

	if criteria.Keyword != "TV" {
		t.Fatalf("expected trimmed keyword, got %q", criteria.Keyword)
	}
	if criteria.MinPrice == nil || *criteria.MinPrice != 50 {
		t.Fatalf("unexpected min price: %v", criteria.MinPrice)
	}
	if criteria.MaxPrice == nil || *criteria.MaxPrice != 150.5 {
		t.Fatalf("unexpected max price: %v", criteria.MaxPrice)
	}
	if len(criteria.ProductIDs) != 3 || criteria.ProductIDs[0] != 1 || criteria.ProductIDs[2] != 3 {
		t.Fatalf("unexpected product ids: %v", criteria.ProductIDs)
	}
	if !criteria.Recent {
		t.Fatal("expected recent flag set by presence")
	}
}

func TestParseSearchCriteriaPermissiveCoercion(t *testing.T) {
	values := url.Values{}
	values.Set("min_price", "not-a-number")

	criteria := ParseSearchCriteria(values)
	if criteria.MinPrice == nil || *criteria.MinPrice != 0 {
		t.Fatalf("expected non-numeric min_price to coerce to 0, got %v", criteria.MinPrice)
	}
	if criteria.MaxPrice != nil {
		t.Fatalf("absent max_price must stay unset, got %v", criteria.MaxPrice)
	}
}

func TestParseSearchCriteriaRecentAbsent(t *testing.T) {
	criteria := ParseSearchCriteria(url.Values{"keyword": {"tv"}})
	if criteria.Recent {
		t.Fatal("recent must be false when the key is absent")
	}
}

func TestParseSearchCriteriaSkipsBadIDs(t *testing.T) {
	values := url.Values{"product_ids[]": {"7", "abc", " 9 ", ""}}
	criteria := ParseSearchCriteria(values)
	if len(criteria.ProductIDs) != 2 || criteria.ProductIDs[0] != 7 || criteria.ProductIDs[1] != 9 {
		t.Fatalf("unexpected product ids: %v", criteria.ProductIDs)
	}
}

func TestParseSearchCriteriaEmptyIsZero(t *testing.T) {
	criteria := ParseSearchCriteria(url.Values{})
	if !criteria.IsZero() {
		t.Fatalf("expected zero criteria, got %+v", criteria)
	}
}
