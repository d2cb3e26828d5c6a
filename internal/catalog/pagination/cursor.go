// internal/catalog/pagination/cursor.go
package pagination

import (
	"context"

	"course-workers/internal/common/errors"
	"course-workers/internal/models"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

// Cursor tracks how far a query context has been loaded. Page is the last
// loaded page, 0 before the first load.
type Cursor struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"pageSize"`
	HasMore    bool `json:"hasMore"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
}

// NewCursor returns a cursor positioned before the first page.
func NewCursor(pageSize int) Cursor {
	return Cursor{PageSize: ClampPageSize(pageSize), HasMore: true}
}

// Advance records a loaded page and the latest upstream total.
func (c Cursor) Advance(total int) Cursor {
	c.Page++
	c.Total = total
	c.TotalPages = (total + c.PageSize - 1) / c.PageSize
	c.HasMore = c.Page*c.PageSize < total
	return c
}

// ClampPageSize folds out-of-range sizes to the default or the maximum.
func ClampPageSize(size int) int {
	switch {
	case size <= 0:
		return DefaultPageSize
	case size > MaxPageSize:
		return MaxPageSize
	}
	return size
}

// Page is one page of catalog results.
type Page struct {
	Items []models.Course
	Total int
}

// Fetcher loads one 1-based page of a query.
type Fetcher interface {
	FetchPage(ctx context.Context, query models.CatalogQuery, page, pageSize int) (*Page, error)
}

// GetPage loads the page after cursor. An exhausted cursor is returned
// unchanged with no items.
func GetPage(ctx context.Context, f Fetcher, query models.CatalogQuery, cursor Cursor) ([]models.Course, Cursor, error) {
	if !cursor.HasMore {
		return nil, cursor, nil
	}
	if cursor.PageSize <= 0 {
		cursor.PageSize = DefaultPageSize
	}

	next := cursor.Page + 1
	page, err := f.FetchPage(ctx, query, next, cursor.PageSize)
	if err != nil {
		if _, ok := errors.AsStandardError(err); ok {
			return nil, cursor, err
		}
		return nil, cursor, errors.NewPageFetchFailedError(next, err)
	}
	if page == nil {
		page = &Page{}
	}
	return page.Items, cursor.Advance(page.Total), nil
}
