package signals

import (
	"context"
)

// Snapshot is a Collaborator over records passed in with the request. A nil
// field means the caller had nothing for that source.
type Snapshot struct {
	History   *History   `json:"history,omitempty"`
	Favorites *Favorites `json:"favorites,omitempty"`
	Cart      *Cart      `json:"cart,omitempty"`
	Profile   *Profile   `json:"profile,omitempty"`
}

func (s *Snapshot) GetUserHistory(_ context.Context, _ string) (*History, error) {
	if s == nil || s.History == nil {
		return nil, ErrUserNotFound
	}
	return s.History, nil
}

func (s *Snapshot) GetUserFavorites(_ context.Context, _ string) (*Favorites, error) {
	if s == nil || s.Favorites == nil {
		return nil, ErrUserNotFound
	}
	return s.Favorites, nil
}

func (s *Snapshot) GetUserCart(_ context.Context, _ string) (*Cart, error) {
	if s == nil || s.Cart == nil {
		return nil, ErrUserNotFound
	}
	return s.Cart, nil
}

func (s *Snapshot) GetUserProfile(_ context.Context, _ string) (*Profile, error) {
	if s == nil || s.Profile == nil {
		return nil, ErrUserNotFound
	}
	return s.Profile, nil
}
