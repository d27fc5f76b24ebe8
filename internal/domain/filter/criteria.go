// Package filter implements the recipe filter pipeline: independent criteria
// matchers, their fixed composition order, and the pending/applied criteria
// store that drives them.
package filter

import (
	"github.com/alchemorsel/discovery/internal/domain/recipe"
)

// Criteria is the user-editable filter selection of a discovery session.
// Empty optional fields mean "no restriction".
type Criteria struct {
	TimeBucket    recipe.TimeBucket    `json:"timeBucket"`
	Category      string               `json:"category,omitempty"`
	DietaryTag    string               `json:"dietaryTag,omitempty"`
	Difficulty    string               `json:"difficulty,omitempty"`
	CalorieBucket recipe.CalorieBucket `json:"calorieBucket,omitempty"`
	Search        string               `json:"search,omitempty"`
	FavoritesOnly bool                 `json:"favoritesOnly"`
}

// DefaultCriteria returns the criteria of a fresh session
func DefaultCriteria() Criteria {
	return Criteria{TimeBucket: recipe.TimeBucketAll}
}

// IsDefault reports whether c restricts nothing
func (c Criteria) IsDefault() bool {
	return c.normalized() == DefaultCriteria()
}

func (c Criteria) normalized() Criteria {
	if c.TimeBucket == "" {
		c.TimeBucket = recipe.TimeBucketAll
	}
	return c
}

// FavoriteSet is the caller-owned set of favorite recipe ids
type FavoriteSet interface {
	Contains(id string) bool
	IDs() []string
}

type noFavorites struct{}

func (noFavorites) Contains(string) bool { return false }
func (noFavorites) IDs() []string        { return nil }

// NoFavorites is an empty FavoriteSet
var NoFavorites FavoriteSet = noFavorites{}
