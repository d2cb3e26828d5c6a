// internal/models/user.go
package models

import (
	"encoding/json"
	"sort"
)

// CategorySet is an unordered set of category or skill tags.
type CategorySet map[string]struct{}

func NewCategorySet(values ...string) CategorySet {
	s := make(CategorySet, len(values))
	for _, v := range values {
		if v != "" {
			s[v] = struct{}{}
		}
	}
	return s
}

// Has never matches the empty category.
func (s CategorySet) Has(category string) bool {
	if category == "" || s == nil {
		return false
	}
	_, ok := s[category]
	return ok
}

func (s CategorySet) Add(category string) {
	if category != "" {
		s[category] = struct{}{}
	}
}

func (s CategorySet) Len() int { return len(s) }

// Sorted returns the members in lexical order.
func (s CategorySet) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s CategorySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *CategorySet) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*s = NewCategorySet(values...)
	return nil
}

// UserSignals is the normalized, read-only view of a user's interests built
// once per recommendation request.
type UserSignals struct {
	UserID             string      `json:"userId"`
	ViewedCategories   CategorySet `json:"viewedCategories"`
	FavoriteCategories CategorySet `json:"favoriteCategories"`
	CartCategories     CategorySet `json:"cartCategories"`
	CartItemCount      int         `json:"cartItemCount"`
	CartTotal          int64       `json:"cartTotal"`
	CartPriceRange     PriceRange  `json:"cartPriceRange"`
	CurrentLevel       Level       `json:"currentLevel"`
	CurrentSkills      CategorySet `json:"currentSkills"`
	Defaulted          []string    `json:"defaulted,omitempty"`
}

// CartEmpty reports whether the user has nothing in the cart.
func (s *UserSignals) CartEmpty() bool {
	return s.CartItemCount == 0
}
