package filter

import (
	"context"
	"slices"
	"testing"

	"github.com/alchemorsel/discovery/internal/domain/recipe"
	"github.com/alchemorsel/discovery/internal/domain/user"
	"github.com/alchemorsel/discovery/internal/infrastructure/catalogue"
	"github.com/alchemorsel/discovery/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type countingObserver struct {
	hits, misses int
}

func (o *countingObserver) PipelineCacheHit()  { o.hits++ }
func (o *countingObserver) PipelineCacheMiss() { o.misses++ }

// PipelineTestSuite runs the pipeline against the sample catalogue
type PipelineTestSuite struct {
	suite.Suite
	catalogue *recipe.Catalogue
	kitchen   user.Profile
	ra        *testutils.RecipeAssertions
}

func (s *PipelineTestSuite) SetupTest() {
	s.catalogue = catalogue.Sample()
	s.kitchen = testutils.FullKitchen()
	s.ra = testutils.NewRecipeAssertions(s.T())
}

func (s *PipelineTestSuite) TestVeganQuickCategory() {
	out := Filter(Input{
		Catalogue: s.catalogue,
		Profile:   testutils.FullKitchen("vegan"),
		Criteria:  Criteria{TimeBucket: recipe.TimeBucketAll, Category: "rapide"},
	})

	s.Equal([]string{"r01", "r04", "r09", "r13", "r15", "r21"}, testutils.IDs(out))
	for _, r := range out {
		s.Contains(r.DietaryTags, "vegan")
		s.LessOrEqual(r.CookingTime, 15)
	}
}

func (s *PipelineTestSuite) TestSearchPoulet() {
	out := Filter(Input{
		Catalogue: s.catalogue,
		Profile:   s.kitchen,
		Criteria:  Criteria{Search: "Poulet"},
	})
	s.Equal([]string{"r02", "r05", "r10", "r17", "r20", "r24"}, testutils.IDs(out))
}

func (s *PipelineTestSuite) TestDefaultCriteria_ReturnsWholeCatalogue() {
	out := Filter(Input{Catalogue: s.catalogue, Profile: s.kitchen, Criteria: DefaultCriteria()})
	s.ra.SameIDs(s.catalogue.Recipes(), out)
}

func (s *PipelineTestSuite) TestResetThenApply_MatchesUnfiltered() {
	store := NewStore()
	store.Dispatch(EditPending{Edit: func(c *Criteria) {
		c.Category = "dessert"
		c.CalorieBucket = recipe.CalorieBucketHigh
	}})
	store.Dispatch(Commit{})
	store.Dispatch(Reset{})
	state := store.Dispatch(Commit{})

	profile := testutils.FullKitchen("vegetarian")
	unfiltered := Filter(Input{Catalogue: s.catalogue, Profile: profile, Criteria: DefaultCriteria()})
	applied := Filter(Input{Catalogue: s.catalogue, Profile: profile, Criteria: state.Applied})
	s.ra.SameIDs(unfiltered, applied)
}

func (s *PipelineTestSuite) TestProfileTimeAndBucketIntersect() {
	profile := s.kitchen
	profile.CookingTime = user.CookingTimeModerate

	out := Filter(Input{
		Catalogue: s.catalogue,
		Profile:   profile,
		Criteria:  Criteria{TimeBucket: recipe.TimeBucketLong},
	})
	s.Empty(out, "moderate profile caps at 30 min while long starts above 30")
}

func (s *PipelineTestSuite) TestEquipmentExcludesMissingTools() {
	profile := user.Profile{KitchenEquipment: []string{"four"}}
	out := Filter(Input{Catalogue: s.catalogue, Profile: profile, Criteria: DefaultCriteria()})

	for _, r := range out {
		s.True(!r.HasEquipment() || (len(r.Equipment) == 1 && r.Equipment[0] == "four"), r.ID)
	}
	s.Contains(testutils.IDs(out), "r13")
	s.NotContains(testutils.IDs(out), "r04")
}

func (s *PipelineTestSuite) TestFavoritesOnly() {
	favs := favSet{"r03": true, "r22": true}
	out := Filter(Input{
		Catalogue: s.catalogue,
		Profile:   s.kitchen,
		Criteria:  Criteria{FavoritesOnly: true},
		Favorites: favs,
	})
	s.Equal([]string{"r03", "r22"}, testutils.IDs(out))
}

func TestPipelineTestSuite(t *testing.T) {
	suite.Run(t, new(PipelineTestSuite))
}

func TestFilter_Properties(t *testing.T) {
	factory := testutils.NewRecipeFactory(42)
	cat := factory.Catalogue(60)
	ra := testutils.NewRecipeAssertions(t)

	criteria := []Criteria{
		DefaultCriteria(),
		{TimeBucket: recipe.TimeBucketQuick},
		{TimeBucket: recipe.TimeBucketMedium, Category: "monde"},
		{Category: "dessert", DietaryTag: "vegan"},
		{Difficulty: "facile", CalorieBucket: recipe.CalorieBucketLight},
		{DietaryTag: "high-protein", CalorieBucket: recipe.CalorieBucketHigh},
		{Search: "a"},
	}

	for i := 0; i < 10; i++ {
		profile := factory.Profile()
		for _, c := range criteria {
			in := Input{Catalogue: cat, Profile: profile, Criteria: c}
			out := Filter(in)

			ra.Subset(cat.Recipes(), out, "filter only removes")

			again := Filter(Input{Catalogue: recipe.MustCatalogue(out), Profile: profile, Criteria: c})
			ra.SameIDs(out, again, "filter is idempotent")

			ra.SameIDs(out, Filter(in), "filter is deterministic")
		}
	}
}

func TestKey(t *testing.T) {
	cat := catalogue.Sample()
	base := Input{Catalogue: cat, Criteria: DefaultCriteria()}

	k1, err := Key(base)
	require.NoError(t, err)

	t.Run("EmptyBucketEqualsAll", func(t *testing.T) {
		k2, err := Key(Input{Catalogue: cat})
		require.NoError(t, err)
		assert.Equal(t, k1, k2)
	})

	t.Run("FavoritesIgnoredUnlessActive", func(t *testing.T) {
		withFavs := base
		withFavs.Favorites = favSet{"r01": true}
		k2, err := Key(withFavs)
		require.NoError(t, err)
		assert.Equal(t, k1, k2)

		withFavs.Criteria.FavoritesOnly = true
		k3, err := Key(withFavs)
		require.NoError(t, err)
		assert.NotEqual(t, k1, k3)
	})

	t.Run("CatalogueChangesKey", func(t *testing.T) {
		recipes := cat.Recipes()
		k2, err := Key(Input{Catalogue: recipe.MustCatalogue(recipes[:10]), Criteria: DefaultCriteria()})
		require.NoError(t, err)
		assert.NotEqual(t, k1, k2)
	})
}

func TestPipeline_Memoizes(t *testing.T) {
	observer := &countingObserver{}
	p, err := NewPipeline(4, observer, nil)
	require.NoError(t, err)

	ctx := context.Background()
	in := Input{Catalogue: catalogue.Sample(), Profile: testutils.FullKitchen(), Criteria: Criteria{Category: "dessert"}}

	first := p.Run(ctx, in)
	require.Equal(t, []string{"r12", "r22"}, testutils.IDs(first))
	assert.Equal(t, 1, observer.misses)

	// Callers may scribble on results without corrupting the cache
	first[0].Name = "changed"
	first = first[:1]

	second := p.Run(ctx, in)
	assert.Equal(t, 1, observer.hits)
	assert.Equal(t, []string{"r12", "r22"}, testutils.IDs(second))
	assert.Equal(t, "Mousse au chocolat", second[0].Name)

	in.Criteria.Category = "entree"
	p.Run(ctx, in)
	assert.Equal(t, 2, observer.misses)

	p.Purge()
	in.Criteria.Category = "dessert"
	p.Run(ctx, in)
	assert.Equal(t, 3, observer.misses)
}

func TestPipeline_ResultsDoNotShareNestedSlices(t *testing.T) {
	p, err := NewPipeline(4, nil, nil)
	require.NoError(t, err)

	ctx := context.Background()
	in := Input{Catalogue: catalogue.Sample(), Profile: testutils.FullKitchen(), Criteria: Criteria{Category: "dessert"}}

	miss := p.Run(ctx, in)
	require.NotEmpty(t, miss)
	require.NotEmpty(t, miss[0].Categories)
	require.NotEmpty(t, miss[0].Ingredients)
	wantCategories := slices.Clone(miss[0].Categories)
	wantIngredients := slices.Clone(miss[0].Ingredients)

	miss[0].Categories[0] = "changed"
	miss[0].Ingredients[0] = "changed"

	hit := p.Run(ctx, in)
	assert.Equal(t, wantCategories, hit[0].Categories)
	assert.Equal(t, wantIngredients, hit[0].Ingredients)

	hit[0].Categories[0] = "changed again"
	again := p.Run(ctx, in)
	assert.Equal(t, wantCategories, again[0].Categories)

	// The catalogue itself stays intact
	stored, ok := in.Catalogue.Get(again[0].ID)
	require.True(t, ok)
	assert.Equal(t, wantCategories, stored.Categories)
}
