// internal/workers/catalog/get-course-page/models.go
package getcoursepage

import (
	"course-workers/internal/catalog/pagination"
	"course-workers/internal/models"
)

type Input struct {
	SessionID  string             `json:"sessionId,omitempty"`
	SearchTerm string             `json:"searchTerm,omitempty"`
	Category   string             `json:"category,omitempty"`
	PriceRange *models.PriceRange `json:"priceRange,omitempty"`
	Page       int                `json:"page,omitempty"`
	PageSize   int                `json:"pageSize,omitempty"`
}

type Output struct {
	SessionID   string              `json:"sessionId"`
	Items       []models.Course     `json:"items"`
	Cursor      pagination.Cursor   `json:"cursor"`
	LoadedCount int                 `json:"loadedCount"`
	Query       models.CatalogQuery `json:"query"`
}
