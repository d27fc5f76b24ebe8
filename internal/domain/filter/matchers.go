package filter

import (
	"strings"

	"github.com/alchemorsel/discovery/internal/domain/recipe"
	"github.com/alchemorsel/discovery/internal/domain/user"
)

// Matcher is a single filter criterion. A nil Matcher keeps everything.
type Matcher func(r recipe.Recipe) bool

// Keep returns the recipes accepted by m, preserving order
func Keep(recipes []recipe.Recipe, m Matcher) []recipe.Recipe {
	if m == nil {
		return recipes
	}
	out := make([]recipe.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if m(r) {
			out = append(out, r)
		}
	}
	return out
}

// DietaryPreference keeps recipes sharing at least one dietary tag with the
// profile. Omnivores and empty preference lists are not filtered.
func DietaryPreference(p user.Profile) Matcher {
	if p.IsOmnivore() {
		return nil
	}
	prefs := make(map[string]struct{}, len(p.DietaryPreferences))
	for _, pref := range p.DietaryPreferences {
		prefs[recipe.Fold(pref)] = struct{}{}
	}
	return func(r recipe.Recipe) bool {
		for _, tag := range r.DietaryTags {
			if _, ok := prefs[recipe.Fold(tag)]; ok {
				return true
			}
		}
		return false
	}
}

// Equipment keeps recipes the profile's kitchen can produce
func Equipment(p user.Profile) Matcher {
	return func(r recipe.Recipe) bool {
		return !r.HasEquipment() || p.OwnsEquipment(r.Equipment)
	}
}

// ProfileTime bounds cooking time by the profile's declared budget
func ProfileTime(p user.Profile) Matcher {
	limit, bounded := p.CookingTime.MaxMinutes()
	if !bounded {
		return nil
	}
	return func(r recipe.Recipe) bool {
		return r.CookingTime <= limit
	}
}

// TimeBucket keeps recipes inside the selected preparation time bucket
func TimeBucket(b recipe.TimeBucket) Matcher {
	if b == "" || b == recipe.TimeBucketAll {
		return nil
	}
	return func(r recipe.Recipe) bool {
		return b.Contains(r.CookingTime)
	}
}

// Category keeps recipes matching the category key. Unknown keys pass.
func Category(key string) Matcher {
	if key == "" {
		return nil
	}
	rule, ok := LookupCategory(key)
	if !ok {
		return nil
	}
	return rule.Match
}

// DietaryTag keeps recipes matching the dietary selector
func DietaryTag(key string) Matcher {
	if key == "" {
		return nil
	}
	return LookupDietary(key).Match
}

// Difficulty matches any spelling of the selected level. Recipes without a
// difficulty always pass, as do unrecognised selections.
func Difficulty(selected string) Matcher {
	if selected == "" {
		return nil
	}
	want, ok := recipe.ParseDifficulty(selected)
	if !ok {
		return nil
	}
	return func(r recipe.Recipe) bool {
		if r.Difficulty == "" {
			return true
		}
		got, known := recipe.ParseDifficulty(r.Difficulty)
		if !known {
			return recipe.Fold(r.Difficulty) == recipe.Fold(selected)
		}
		return got == want
	}
}

// Calories keeps recipes in the calorie bucket. Recipes without a calorie
// value always pass.
func Calories(b recipe.CalorieBucket) Matcher {
	if b == recipe.CalorieBucketNone {
		return nil
	}
	return func(r recipe.Recipe) bool {
		if r.Calories == nil {
			return true
		}
		return b.Contains(*r.Calories)
	}
}

// SearchTerm is a case-insensitive substring match on name, ingredients and
// categories.
func SearchTerm(term string) Matcher {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}
	return func(r recipe.Recipe) bool {
		if strings.Contains(strings.ToLower(r.Name), term) {
			return true
		}
		for _, ing := range r.Ingredients {
			if strings.Contains(strings.ToLower(ing), term) {
				return true
			}
		}
		for _, c := range r.Categories {
			if strings.Contains(strings.ToLower(c), term) {
				return true
			}
		}
		return false
	}
}

// FavoritesOnly keeps favorites when active
func FavoritesOnly(active bool, favorites FavoriteSet) Matcher {
	if !active {
		return nil
	}
	if favorites == nil {
		favorites = NoFavorites
	}
	return func(r recipe.Recipe) bool {
		return favorites.Contains(r.ID)
	}
}
