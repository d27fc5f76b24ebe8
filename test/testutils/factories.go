// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"fmt"

	"github.com/alchemorsel/discovery/internal/domain/recipe"
	"github.com/alchemorsel/discovery/internal/domain/user"
	"github.com/brianvoe/gofakeit/v6"
)

var (
	factoryCategories = []string{"Plat principal", "Dessert", "Salade", "Soupe", "Italien", "Asiatique", "Petit-déjeuner", "Mexicain"}
	factoryTags       = []string{"vegan", "vegetarian", "gluten-free", "lactose-free", "high-protein"}
	factoryEquipment  = []string{"four", "wok", "blender", "poêle", "cocotte"}
	factoryDifficulty = []string{"facile", "easy", "moyen", "intermediate", "avancé", "hard"}
)

// RecipeFactory provides methods to create test recipes
type RecipeFactory struct {
	faker *gofakeit.Faker
	seq   int
}

// NewRecipeFactory creates a new recipe factory with seeded faker
func NewRecipeFactory(seed int64) *RecipeFactory {
	return &RecipeFactory{
		faker: gofakeit.New(seed),
	}
}

// Recipe builds a random recipe. Optional fields are set about half the time.
func (f *RecipeFactory) Recipe() recipe.Recipe {
	f.seq++
	r := recipe.Recipe{
		ID:          fmt.Sprintf("fake-%03d", f.seq),
		Name:        f.faker.Dinner(),
		ImageURL:    f.faker.URL() + "/image.jpg",
		Ingredients: []string{f.faker.Vegetable(), f.faker.Fruit(), f.faker.Noun()},
		CookingTime: f.faker.Number(0, 120),
		Categories:  f.pick(factoryCategories, 1, 2),
		DietaryTags: f.pick(factoryTags, 0, 3),
	}

	if f.faker.Bool() {
		r.Equipment = f.pick(factoryEquipment, 1, 2)
	}
	if f.faker.Bool() {
		kcal := f.faker.Number(80, 900)
		r.Calories = &kcal
	}
	if f.faker.Bool() {
		protein := f.faker.Float64Range(0, 60)
		r.Protein = &protein
	}
	if f.faker.Bool() {
		r.Difficulty = factoryDifficulty[f.faker.Number(0, len(factoryDifficulty)-1)]
	}
	return r
}

// Recipes builds n random recipes
func (f *RecipeFactory) Recipes(n int) []recipe.Recipe {
	out := make([]recipe.Recipe, n)
	for i := range out {
		out[i] = f.Recipe()
	}
	return out
}

// Catalogue builds a catalogue of n random recipes
func (f *RecipeFactory) Catalogue(n int) *recipe.Catalogue {
	return recipe.MustCatalogue(f.Recipes(n))
}

// Profile builds a random profile
func (f *RecipeFactory) Profile() user.Profile {
	buckets := []user.CookingTime{user.CookingTimeUnset, user.CookingTimeQuick, user.CookingTimeModerate, user.CookingTimeRelaxed}
	return user.Profile{
		DietaryPreferences: f.pick(append([]string{user.OmnivorePreference}, factoryTags...), 0, 2),
		CookingTime:        buckets[f.faker.Number(0, len(buckets)-1)],
		KitchenEquipment:   f.pick(factoryEquipment, 0, len(factoryEquipment)),
	}
}

// Faker exposes the underlying generator
func (f *RecipeFactory) Faker() *gofakeit.Faker {
	return f.faker
}

func (f *RecipeFactory) pick(from []string, min, max int) []string {
	n := f.faker.Number(min, max)
	if n == 0 {
		return nil
	}
	shuffled := make([]string, len(from))
	copy(shuffled, from)
	f.faker.ShuffleStrings(shuffled)
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}

// FullKitchen is a profile owning every piece of equipment used by the sample catalogue
func FullKitchen(preferences ...string) user.Profile {
	return user.Profile{
		DietaryPreferences: preferences,
		CookingTime:        user.CookingTimeRelaxed,
		KitchenEquipment: []string{
			"four", "casserole", "blender", "wok", "poêle", "cocotte", "batteur", "tajine", "barbecue",
		},
	}
}
