package imaging

import (
	"github.com/alchemorsel/discovery/internal/domain/recipe"
)

// DefaultFallbackURL is used when no category matches and no default is configured
const DefaultFallbackURL = "https://images.unsplash.com/photo-1546069901-ba9599a7e63c?w=800"

// FallbackTable maps recipe categories to shared placeholder images
type FallbackTable struct {
	byCategory map[string]string
	def        string
}

// NewFallbackTable builds a table. Category keys are matched accent and
// case insensitively.
func NewFallbackTable(byCategory map[string]string, def string) *FallbackTable {
	if def == "" {
		def = DefaultFallbackURL
	}
	folded := make(map[string]string, len(byCategory))
	for category, url := range byCategory {
		if url == "" {
			continue
		}
		folded[recipe.Fold(category)] = url
	}
	return &FallbackTable{byCategory: folded, def: def}
}

// For returns the fallback of the first recipe category with an entry, or
// the default. The result is never empty.
func (t *FallbackTable) For(r recipe.Recipe) string {
	if t == nil {
		return DefaultFallbackURL
	}
	for _, category := range r.Categories {
		if url, ok := t.byCategory[recipe.Fold(category)]; ok {
			return url
		}
	}
	return t.def
}
