package filter

import (
	"github.com/alchemorsel/discovery/internal/domain/recipe"
)

// CategoryRule decides whether a recipe belongs to a category key.
// A recipe matches when any of its categories is listed in Names, or when
// MaxMinutes is set and its cooking time does not exceed it.
type CategoryRule struct {
	Names      []string
	MaxMinutes int
}

// Match applies the rule to r
func (rule CategoryRule) Match(r recipe.Recipe) bool {
	if rule.MaxMinutes > 0 && r.CookingTime <= rule.MaxMinutes {
		return true
	}
	if len(rule.Names) == 0 {
		return false
	}
	for _, c := range r.Categories {
		folded := recipe.Fold(c)
		for _, name := range rule.Names {
			if folded == recipe.Fold(name) {
				return true
			}
		}
	}
	return false
}

// categoryTable maps the category keys exposed to the UI to their rules
var categoryTable = map[string]CategoryRule{
	"rapide": {MaxMinutes: 15},
	"monde": {Names: []string{
		"Asiatique", "Italien", "Mexicain", "Indien", "Japonais", "Thaï",
		"Libanais", "Marocain", "Grec", "Espagnol", "Coréen", "Vietnamien", "Monde",
	}},
	"plat-principal": {Names: []string{"Plat principal", "Plat", "Plats", "Plat unique"}},
	"entree":         {Names: []string{"Entrée", "Salade", "Soupe", "Apéritif"}},
	"dessert":        {Names: []string{"Dessert", "Pâtisserie", "Goûter"}},
	"petit-dejeuner": {Names: []string{"Petit-déjeuner", "Brunch"}},
	"vegetal":        {Names: []string{"Végétarien", "Vegan", "Végétal"}},
}

// LookupCategory returns the rule registered under key
func LookupCategory(key string) (CategoryRule, bool) {
	rule, ok := categoryTable[recipe.Fold(key)]
	if !ok {
		rule, ok = categoryTable[key]
	}
	return rule, ok
}

// CategoryKeys lists the known category keys
func CategoryKeys() []string {
	keys := make([]string, 0, len(categoryTable))
	for k := range categoryTable {
		keys = append(keys, k)
	}
	return keys
}

// DietaryRule maps a dietary selector to a tag, with an optional numeric
// alternative on protein grams.
type DietaryRule struct {
	Tag        string
	MinProtein float64
}

// Match applies the rule to r
func (rule DietaryRule) Match(r recipe.Recipe) bool {
	if hasTag(r.DietaryTags, rule.Tag) {
		return true
	}
	return rule.MinProtein > 0 && r.Protein != nil && *r.Protein >= rule.MinProtein
}

var dietaryTable = map[string]DietaryRule{
	"vegan":        {Tag: "vegan"},
	"vegetarien":   {Tag: "vegetarian"},
	"sans-gluten":  {Tag: "gluten-free"},
	"sans-lactose": {Tag: "lactose-free"},
	"high-protein": {Tag: "high-protein", MinProtein: 20},
}

// LookupDietary returns the rule for key. Unknown keys are treated as a
// literal dietary tag.
func LookupDietary(key string) DietaryRule {
	if rule, ok := dietaryTable[recipe.Fold(key)]; ok {
		return rule
	}
	return DietaryRule{Tag: key}
}

func hasTag(tags []string, want string) bool {
	want = recipe.Fold(want)
	for _, t := range tags {
		if recipe.Fold(t) == want {
			return true
		}
	}
	return false
}
