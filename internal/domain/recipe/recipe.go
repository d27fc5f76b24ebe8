// Package recipe contains the catalogue side of the discovery domain.
// Recipes are immutable values; the only sanctioned rewrite is the image of
// a working copy, done through WithImage.
package recipe

import (
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"
	json "github.com/goccy/go-json"
)

// Recipe represents a single catalogue entry.
type Recipe struct {
	ID          string   `json:"id" yaml:"id" validate:"required"`
	Name        string   `json:"name" yaml:"name" validate:"required"`
	ImageURL    string   `json:"image" yaml:"image" validate:"omitempty,url"`
	Ingredients []string `json:"mainIngredients" yaml:"mainIngredients"`
	CookingTime int      `json:"cookingTime" yaml:"cookingTime" validate:"gte=0"`
	Categories  []string `json:"categories" yaml:"categories"`
	DietaryTags []string `json:"dietaryTags" yaml:"dietaryTags"`

	// Optional attributes. Absent values pass every filter that reads them.
	Equipment  []string `json:"equipment,omitempty" yaml:"equipment,omitempty"`
	Calories   *int     `json:"calories,omitempty" yaml:"calories,omitempty" validate:"omitempty,gte=0"`
	Protein    *float64 `json:"protein,omitempty" yaml:"protein,omitempty" validate:"omitempty,gte=0"`
	Difficulty string   `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
}

// HasImage reports whether the recipe carries an image URL
func (r Recipe) HasImage() bool {
	return r.ImageURL != ""
}

// HasEquipment reports whether the recipe declares required equipment
func (r Recipe) HasEquipment() bool {
	return len(r.Equipment) > 0
}

// WithImage returns a working copy of the recipe pointing at url.
// The receiver and the catalogue it came from are left untouched.
func (r Recipe) WithImage(url string) Recipe {
	c := r.clone()
	c.ImageURL = url
	return c
}

// PrimaryCategory returns the first category, or "" when the recipe has none
func (r Recipe) PrimaryCategory() string {
	if len(r.Categories) == 0 {
		return ""
	}
	return r.Categories[0]
}

func (r Recipe) clone() Recipe {
	c := r
	c.Ingredients = slices.Clone(r.Ingredients)
	c.Categories = slices.Clone(r.Categories)
	c.DietaryTags = slices.Clone(r.DietaryTags)
	c.Equipment = slices.Clone(r.Equipment)
	if r.Calories != nil {
		v := *r.Calories
		c.Calories = &v
	}
	if r.Protein != nil {
		v := *r.Protein
		c.Protein = &v
	}
	return c
}

// Catalogue is the ordered, read-only collection of recipes available to a
// discovery session. Its fingerprint identifies the content, so two
// catalogues built from the same records compare equal.
type Catalogue struct {
	recipes     []Recipe
	index       map[string]int
	fingerprint uint64
}

// NewCatalogue validates identifiers and builds a catalogue
func NewCatalogue(recipes []Recipe) (*Catalogue, error) {
	index := make(map[string]int, len(recipes))
	owned := make([]Recipe, len(recipes))

	for i, r := range recipes {
		if r.ID == "" {
			return nil, fmt.Errorf("recipe at position %d: %w", i, ErrEmptyID)
		}
		if r.CookingTime < 0 {
			return nil, fmt.Errorf("recipe %q: %w", r.ID, ErrNegativeCookingTime)
		}
		if _, dup := index[r.ID]; dup {
			return nil, fmt.Errorf("recipe %q: %w", r.ID, ErrDuplicateID)
		}
		index[r.ID] = i
		owned[i] = r.clone()
	}

	payload, err := json.Marshal(owned)
	if err != nil {
		return nil, fmt.Errorf("fingerprint catalogue: %w", err)
	}

	return &Catalogue{
		recipes:     owned,
		index:       index,
		fingerprint: xxhash.Sum64(payload),
	}, nil
}

// MustCatalogue is NewCatalogue for static data known to be valid
func MustCatalogue(recipes []Recipe) *Catalogue {
	c, err := NewCatalogue(recipes)
	if err != nil {
		panic(err)
	}
	return c
}

// Recipes returns a copy of the catalogue entries in catalogue order
func (c *Catalogue) Recipes() []Recipe {
	if c == nil {
		return nil
	}
	out := make([]Recipe, len(c.recipes))
	for i, r := range c.recipes {
		out[i] = r.clone()
	}
	return out
}

// Len returns the number of recipes
func (c *Catalogue) Len() int {
	if c == nil {
		return 0
	}
	return len(c.recipes)
}

// Get looks a recipe up by id
func (c *Catalogue) Get(id string) (Recipe, bool) {
	if c == nil {
		return Recipe{}, false
	}
	i, ok := c.index[id]
	if !ok {
		return Recipe{}, false
	}
	return c.recipes[i].clone(), true
}

// Fingerprint identifies the catalogue content
func (c *Catalogue) Fingerprint() uint64 {
	if c == nil {
		return 0
	}
	return c.fingerprint
}
