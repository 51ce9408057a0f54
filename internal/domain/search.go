package domain

// SearchCriteria carries the optional product filters for one search call.
// It is built per request and never persisted. Nil/empty fields mean the
// corresponding filter is skipped; set fields narrow the result by AND.
type SearchCriteria struct {
	Keyword    string
	MinPrice   *float64
	MaxPrice   *float64
	ProductIDs []uint
	Recent     bool
}

func (c SearchCriteria) IsZero() bool {
	return c.Keyword == "" && c.MinPrice == nil && c.MaxPrice == nil &&
		len(c.ProductIDs) == 0 && !c.Recent
}
