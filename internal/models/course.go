// internal/models/course.go
package models

import (
	"errors"
	"fmt"
)

// Level is the difficulty label used by the catalog.
type Level string

const (
	LevelBasic        Level = "Cơ bản"
	LevelIntermediate Level = "Trung cấp"
	LevelAdvanced     Level = "Nâng cao"
)

// Levels lists the known levels from easiest to hardest.
var Levels = []Level{LevelBasic, LevelIntermediate, LevelAdvanced}

// Valid reports whether l is one of the known levels.
func (l Level) Valid() bool {
	switch l {
	case LevelBasic, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// Catalog categories shown in the course browser.
const (
	CategoryAll         = "Tất cả"
	CategoryProgramming = "Lập trình"
	CategoryLanguages   = "Ngoại ngữ"
	CategoryDesign      = "Thiết kế"
	CategoryMarketing   = "Marketing"
	CategoryHealth      = "Sức khỏe"
	CategoryFinance     = "Tài chính"
)

var ErrInvalidCourse = errors.New("INVALID_COURSE")

type Course struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	Image        string  `json:"image,omitempty"`
	Price        int64   `json:"price"`
	Category     string  `json:"category"`
	Level        Level   `json:"level"`
	Rating       float64 `json:"rating"`
	StudentCount int     `json:"students"`
	Duration     string  `json:"duration"`
	Instructor   string  `json:"instructor"`
}

// Validate rejects entries that cannot be scored or displayed.
func (c *Course) Validate() error {
	switch {
	case c.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidCourse)
	case c.Price < 0:
		return fmt.Errorf("%w: course %s has negative price %d", ErrInvalidCourse, c.ID, c.Price)
	case c.Rating < 0 || c.Rating > 5:
		return fmt.Errorf("%w: course %s has rating %.2f outside 0-5", ErrInvalidCourse, c.ID, c.Rating)
	case c.StudentCount < 0:
		return fmt.Errorf("%w: course %s has negative student count", ErrInvalidCourse, c.ID)
	}
	return nil
}

// Factor records one heuristic that contributed to a score.
type Factor struct {
	Heuristic string `json:"heuristic"`
	Points    int    `json:"points"`
}

type ScoredCourse struct {
	Course
	Score        int      `json:"score"`
	MatchReason  string   `json:"matchReason"`
	IsSuggestion bool     `json:"isSuggestion"`
	Factors      []Factor `json:"factors,omitempty"`
}
