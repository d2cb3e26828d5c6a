// internal/models/query_types.go
package models

import (
	"fmt"
	"strings"
)

// PriceRange is an inclusive price band in VND. Max == 0 means no upper bound.
type PriceRange struct {
	Label string `json:"label,omitempty"`
	Min   int64  `json:"min"`
	Max   int64  `json:"max"`
}

const (
	PriceLabelAll     = "Tất cả"
	PriceLabelUnder   = "Dưới 500K"
	PriceLabelMid     = "500K - 1 triệu"
	PriceLabelAbove1M = "Trên 1 triệu"
)

// PriceRanges are the presets offered by the catalog filter.
var PriceRanges = []PriceRange{
	{Label: PriceLabelAll},
	{Label: PriceLabelUnder, Min: 0, Max: 500000},
	{Label: PriceLabelMid, Min: 500000, Max: 1000000},
	{Label: PriceLabelAbove1M, Min: 1000000},
}

// PriceRangeByLabel looks up a preset.
func PriceRangeByLabel(label string) (PriceRange, bool) {
	for _, r := range PriceRanges {
		if r.Label == label {
			return r, true
		}
	}
	return PriceRange{}, false
}

// Unbounded reports whether the range filters nothing.
func (r PriceRange) Unbounded() bool {
	return r.Min <= 0 && r.Max <= 0
}

func (r PriceRange) Contains(price int64) bool {
	if price < r.Min {
		return false
	}
	return r.Max <= 0 || price <= r.Max
}

// CatalogQuery is the filter tuple a catalog browse session is bound to.
type CatalogQuery struct {
	SearchTerm string     `json:"searchTerm,omitempty"`
	Category   string     `json:"category,omitempty"`
	PriceRange PriceRange `json:"priceRange"`
}

// Normalize trims the search term, folds "all" selections to their zero
// values and resolves a preset label to its bounds.
func (q CatalogQuery) Normalize() CatalogQuery {
	q.SearchTerm = strings.TrimSpace(q.SearchTerm)
	q.Category = strings.TrimSpace(q.Category)
	if q.Category == CategoryAll {
		q.Category = ""
	}
	if q.PriceRange.Label != "" {
		if preset, ok := PriceRangeByLabel(q.PriceRange.Label); ok {
			q.PriceRange = preset
		}
	}
	if q.PriceRange.Label == PriceLabelAll || q.PriceRange.Unbounded() {
		q.PriceRange = PriceRange{}
	}
	return q
}

// Key identifies the query context; two queries with the same key share a cursor.
func (q CatalogQuery) Key() string {
	n := q.Normalize()
	return fmt.Sprintf("%s|%s|%d-%d",
		strings.ToLower(n.SearchTerm), n.Category, n.PriceRange.Min, n.PriceRange.Max)
}

func (q CatalogQuery) Equal(other CatalogQuery) bool {
	return q.Key() == other.Key()
}
