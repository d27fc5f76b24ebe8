package testutils

import (
	"testing"

	"github.com/alchemorsel/discovery/internal/domain/recipe"
	"github.com/stretchr/testify/assert"
)

// RecipeAssertions provides recipe-specific assertion methods
type RecipeAssertions struct {
	t *testing.T
}

// NewRecipeAssertions creates a new recipe assertions helper
func NewRecipeAssertions(t *testing.T) *RecipeAssertions {
	return &RecipeAssertions{t: t}
}

// Subset asserts every recipe of sub appears in super
func (ra *RecipeAssertions) Subset(super, sub []recipe.Recipe, msgAndArgs ...interface{}) bool {
	ra.t.Helper()
	return assert.Subset(ra.t, IDs(super), IDs(sub), msgAndArgs...)
}

// Prefix asserts prefix is a leading slice of full, compared by id
func (ra *RecipeAssertions) Prefix(full, prefix []recipe.Recipe, msgAndArgs ...interface{}) bool {
	ra.t.Helper()
	if !assert.LessOrEqual(ra.t, len(prefix), len(full), msgAndArgs...) {
		return false
	}
	return assert.Equal(ra.t, IDs(full[:len(prefix)]), IDs(prefix), msgAndArgs...)
}

// SameIDs asserts both collections hold the same ids in the same order
func (ra *RecipeAssertions) SameIDs(expected, actual []recipe.Recipe, msgAndArgs ...interface{}) bool {
	ra.t.Helper()
	return assert.Equal(ra.t, IDs(expected), IDs(actual), msgAndArgs...)
}

// IDs extracts recipe ids in order
func IDs(recipes []recipe.Recipe) []string {
	ids := make([]string, len(recipes))
	for i, r := range recipes {
		ids[i] = r.ID
	}
	return ids
}
