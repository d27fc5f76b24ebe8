package discovery

import (
	"fmt"
	"testing"

	"github.com/alchemorsel/discovery/internal/domain/recipe"
	"github.com/alchemorsel/discovery/test/testutils"
	"github.com/stretchr/testify/assert"
)

func recipes(n int, prefix string) []recipe.Recipe {
	out := make([]recipe.Recipe, n)
	for i := range out {
		out[i] = recipe.Recipe{ID: fmt.Sprintf("%s%02d", prefix, i)}
	}
	return out
}

func TestPaginator(t *testing.T) {
	t.Run("TwoLoadMoreCapsAtLength", func(t *testing.T) {
		filtered := recipes(20, "r")
		p := NewPaginator(8)
		p.Sync(filtered)

		assert.Len(t, p.Visible(filtered), 8)
		p.LoadMore()
		assert.Len(t, p.Visible(filtered), 16)
		p.LoadMore()
		assert.Len(t, p.Visible(filtered), 20)
		assert.False(t, p.HasMore(filtered))
	})

	t.Run("VisibleIsPrefix", func(t *testing.T) {
		ra := testutils.NewRecipeAssertions(t)
		filtered := recipes(13, "r")
		p := NewPaginator(5)
		for n := 1; n <= 4; n++ {
			visible := p.Visible(filtered)
			ra.Prefix(filtered, visible)
			assert.Len(t, visible, min(5*n, len(filtered)))
			p.LoadMore()
		}
	})

	t.Run("ContentChangeResetsCursor", func(t *testing.T) {
		p := NewPaginator(8)
		first := recipes(20, "a")
		assert.True(t, p.Sync(first))
		p.LoadMore()

		assert.False(t, p.Sync(first), "same collection keeps the cursor")
		assert.Equal(t, 2, p.Cursor())

		// Same length, different contents
		assert.True(t, p.Sync(recipes(20, "b")))
		assert.Equal(t, 1, p.Cursor())
	})

	t.Run("OrderMatters", func(t *testing.T) {
		in := recipes(3, "r")
		swapped := []recipe.Recipe{in[1], in[0], in[2]}
		assert.NotEqual(t, Identity(in), Identity(swapped))
	})

	t.Run("EmptyCollection", func(t *testing.T) {
		p := NewPaginator(0)
		assert.Equal(t, 1, p.PageSize())
		assert.Empty(t, p.Visible(nil))
		assert.False(t, p.HasMore(nil))
	})
}
