package filter

import (
	"testing"

	"github.com/alchemorsel/discovery/internal/domain/recipe"
	"github.com/alchemorsel/discovery/internal/domain/user"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func TestDietaryPreference(t *testing.T) {
	vegan := recipe.Recipe{ID: "v", DietaryTags: []string{"vegan", "vegetarian"}}
	meat := recipe.Recipe{ID: "m", DietaryTags: []string{"high-protein"}}
	untagged := recipe.Recipe{ID: "u"}

	t.Run("Omnivore_NotFiltered", func(t *testing.T) {
		assert.Nil(t, DietaryPreference(user.Profile{DietaryPreferences: []string{"Omnivore", "vegan"}}))
		assert.Nil(t, DietaryPreference(user.Profile{}))
	})

	t.Run("AnyOverlapMatches", func(t *testing.T) {
		m := DietaryPreference(user.Profile{DietaryPreferences: []string{"Vegetarian", "gluten-free"}})
		assert.True(t, m(vegan))
		assert.False(t, m(meat))
		assert.False(t, m(untagged))
	})
}

func TestEquipment(t *testing.T) {
	m := Equipment(user.Profile{KitchenEquipment: []string{"Four", "poele"}})

	assert.True(t, m(recipe.Recipe{}), "no equipment needed")
	assert.True(t, m(recipe.Recipe{Equipment: []string{"four"}}))
	assert.True(t, m(recipe.Recipe{Equipment: []string{"poêle", "four"}}))
	assert.False(t, m(recipe.Recipe{Equipment: []string{"four", "wok"}}))
}

func TestProfileTime(t *testing.T) {
	assert.Nil(t, ProfileTime(user.Profile{CookingTime: user.CookingTimeRelaxed}))
	assert.Nil(t, ProfileTime(user.Profile{}))

	quick := ProfileTime(user.Profile{CookingTime: user.CookingTimeQuick})
	assert.True(t, quick(recipe.Recipe{CookingTime: 15}))
	assert.False(t, quick(recipe.Recipe{CookingTime: 16}))

	moderate := ProfileTime(user.Profile{CookingTime: user.CookingTimeModerate})
	assert.True(t, moderate(recipe.Recipe{CookingTime: 30}))
	assert.False(t, moderate(recipe.Recipe{CookingTime: 31}))
}

func TestTimeBucketMatcher(t *testing.T) {
	assert.Nil(t, TimeBucket(recipe.TimeBucketAll))
	assert.Nil(t, TimeBucket(""))

	medium := TimeBucket(recipe.TimeBucketMedium)
	assert.False(t, medium(recipe.Recipe{CookingTime: 15}))
	assert.True(t, medium(recipe.Recipe{CookingTime: 16}))
	assert.True(t, medium(recipe.Recipe{CookingTime: 30}))
}

func TestCategory(t *testing.T) {
	tests := []struct {
		name string
		key  string
		r    recipe.Recipe
		want bool
	}{
		{"Rapide_ByTime", "rapide", recipe.Recipe{CookingTime: 15, Categories: []string{"Dessert"}}, true},
		{"Rapide_TooSlow", "rapide", recipe.Recipe{CookingTime: 20}, false},
		{"Monde_Cuisine", "monde", recipe.Recipe{Categories: []string{"Thaï"}}, true},
		{"Monde_NotListed", "monde", recipe.Recipe{Categories: []string{"Dessert"}}, false},
		{"Entree_FoldsAccents", "entree", recipe.Recipe{Categories: []string{"ENTRÉE"}}, true},
		{"Entree_IncludesSoupe", "entree", recipe.Recipe{Categories: []string{"Soupe"}}, true},
		{"PlatPrincipal", "plat-principal", recipe.Recipe{Categories: []string{"Plat unique"}}, true},
		{"PetitDejeuner_Brunch", "petit-dejeuner", recipe.Recipe{Categories: []string{"Brunch"}}, true},
		{"Dessert_NoCategories", "dessert", recipe.Recipe{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Category(tt.key)
			if assert.NotNil(t, m) {
				assert.Equal(t, tt.want, m(tt.r))
			}
		})
	}

	t.Run("UnknownKey_Passes", func(t *testing.T) {
		assert.Nil(t, Category("brunch-du-dimanche"))
		assert.Nil(t, Category(""))
	})
}

func TestDietaryTag(t *testing.T) {
	t.Run("MappedKey", func(t *testing.T) {
		m := DietaryTag("sans-gluten")
		assert.True(t, m(recipe.Recipe{DietaryTags: []string{"gluten-free"}}))
		assert.False(t, m(recipe.Recipe{DietaryTags: []string{"vegan"}}))
	})

	t.Run("HighProtein_ByTagOrGrams", func(t *testing.T) {
		m := DietaryTag("high-protein")
		assert.True(t, m(recipe.Recipe{DietaryTags: []string{"high-protein"}}))
		assert.True(t, m(recipe.Recipe{Protein: floatPtr(20)}))
		assert.False(t, m(recipe.Recipe{Protein: floatPtr(19.5)}))
		assert.False(t, m(recipe.Recipe{}))
	})

	t.Run("UnknownKey_IsLiteralTag", func(t *testing.T) {
		m := DietaryTag("paleo")
		assert.True(t, m(recipe.Recipe{DietaryTags: []string{"Paleo"}}))
		assert.False(t, m(recipe.Recipe{DietaryTags: []string{"vegan"}}))
	})
}

func TestDifficulty(t *testing.T) {
	tests := []struct {
		name     string
		selected string
		recipe   string
		want     bool
	}{
		{"Synonym", "facile", "easy", true},
		{"Accented", "avance", "Avancé", true},
		{"OtherLevel", "facile", "moyen", false},
		{"MissingOnRecipe_Passes", "facile", "", true},
		{"UnknownOnRecipe_ComparedLiterally", "facile", "tricky", false},
		{"UnknownOnRecipe_SameLiteral", "tricky", "Tricky", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Difficulty(tt.selected)
			if m == nil {
				assert.True(t, tt.want)
				return
			}
			assert.Equal(t, tt.want, m(recipe.Recipe{Difficulty: tt.recipe}))
		})
	}

	t.Run("UnknownSelection_Passes", func(t *testing.T) {
		assert.Nil(t, Difficulty("tricky"))
	})
}

func TestCalories(t *testing.T) {
	assert.Nil(t, Calories(recipe.CalorieBucketNone))

	light := Calories(recipe.CalorieBucketLight)
	assert.True(t, light(recipe.Recipe{Calories: intPtr(210)}))
	assert.False(t, light(recipe.Recipe{Calories: intPtr(300)}))
	assert.True(t, light(recipe.Recipe{}), "missing calories pass")
}

func TestSearch(t *testing.T) {
	r := recipe.Recipe{
		Name:        "Pad thaï au poulet",
		Ingredients: []string{"nouilles de riz", "cacahuètes"},
		Categories:  []string{"Plat principal"},
	}

	assert.Nil(t, SearchTerm("   "))
	assert.True(t, SearchTerm("POULET")(r), "name")
	assert.True(t, SearchTerm("cacahu")(r), "ingredient")
	assert.True(t, SearchTerm("principal")(r), "category")
	assert.False(t, SearchTerm("boeuf")(r))
}

type favSet map[string]bool

func (f favSet) Contains(id string) bool { return f[id] }
func (f favSet) IDs() []string {
	ids := make([]string, 0, len(f))
	for id := range f {
		ids = append(ids, id)
	}
	return ids
}

func TestFavoritesOnly(t *testing.T) {
	assert.Nil(t, FavoritesOnly(false, favSet{"a": true}))

	m := FavoritesOnly(true, favSet{"a": true})
	assert.True(t, m(recipe.Recipe{ID: "a"}))
	assert.False(t, m(recipe.Recipe{ID: "b"}))

	none := FavoritesOnly(true, nil)
	assert.False(t, none(recipe.Recipe{ID: "a"}))
}

func TestKeep_PreservesOrder(t *testing.T) {
	in := []recipe.Recipe{{ID: "a", CookingTime: 5}, {ID: "b", CookingTime: 50}, {ID: "c", CookingTime: 1}}
	out := Keep(in, TimeBucket(recipe.TimeBucketQuick))

	assert.Equal(t, []string{"a", "c"}, []string{out[0].ID, out[1].ID})
	assert.Len(t, Keep(in, nil), 3)
}
