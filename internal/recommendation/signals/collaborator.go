package signals

import (
	"context"
	"errors"

	"course-workers/internal/models"
)

// ErrUserNotFound is returned by collaborators that have no record for a user.
var ErrUserNotFound = errors.New("user not found")

type History struct {
	ViewedCategories    []string       `json:"viewedCategories"`
	TimeSpentByCategory map[string]int `json:"timeSpentByCategory,omitempty"`
}

type Favorites struct {
	PreferredCategories []string `json:"preferredCategories"`
}

// CartItem is a course in the cart. Price is nil when the cart service did
// not report one.
type CartItem struct {
	CourseID string `json:"courseId"`
	Category string `json:"category"`
	Price    *int64 `json:"price,omitempty"`
}

type Cart struct {
	Items []CartItem `json:"items"`
}

type Profile struct {
	CurrentLevel  models.Level `json:"currentLevel"`
	CurrentSkills []string     `json:"currentSkills"`
}

// Collaborator supplies the raw per-user records signals are derived from.
// Implementations return ErrUserNotFound, or a nil record, for unknown users.
type Collaborator interface {
	GetUserHistory(ctx context.Context, userID string) (*History, error)
	GetUserFavorites(ctx context.Context, userID string) (*Favorites, error)
	GetUserCart(ctx context.Context, userID string) (*Cart, error)
	GetUserProfile(ctx context.Context, userID string) (*Profile, error)
}
