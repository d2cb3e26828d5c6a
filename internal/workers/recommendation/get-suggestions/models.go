// internal/workers/recommendation/get-suggestions/models.go
package getsuggestions

import (
	"time"

	"course-workers/internal/models"
	"course-workers/internal/recommendation/signals"
)

type Input struct {
	UserID   string            `json:"userId"`
	Snapshot *signals.Snapshot `json:"snapshot,omitempty"`
}

type Output struct {
	RequestID   string                `json:"requestId"`
	UserID      string                `json:"userId"`
	Suggestions []models.ScoredCourse `json:"suggestions"`
	Count       int                   `json:"count"`
	GeneratedAt time.Time             `json:"generatedAt"`
}

// GeneratedPayload is the body of the suggestions-generated event.
type GeneratedPayload struct {
	RequestID string   `json:"requestId"`
	UserID    string   `json:"userId"`
	CourseIDs []string `json:"courseIds"`
	Count     int      `json:"count"`
}
