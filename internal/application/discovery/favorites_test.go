package discovery

import (
	"testing"

	"github.com/alchemorsel/discovery/internal/domain/filter"
	"github.com/stretchr/testify/assert"
)

func TestFavorites(t *testing.T) {
	favs := NewFavorites("r03")

	assert.True(t, favs.Toggle("r01"))
	assert.True(t, favs.Contains("r01"))
	assert.Equal(t, []string{"r01", "r03"}, favs.IDs())

	assert.False(t, favs.Toggle("r03"))
	assert.False(t, favs.Contains("r03"))
	assert.Equal(t, 1, favs.Len())
}

func TestValidateFavoriteSelection(t *testing.T) {
	ok, msg := ValidateFavoriteSelection(NewFavorites())
	assert.False(t, ok)
	assert.NotEmpty(t, msg)

	ok, msg = ValidateFavoriteSelection(filter.NoFavorites)
	assert.False(t, ok)
	assert.NotEmpty(t, msg)

	ok, msg = ValidateFavoriteSelection(NewFavorites("r01"))
	assert.True(t, ok)
	assert.Empty(t, msg)
}
