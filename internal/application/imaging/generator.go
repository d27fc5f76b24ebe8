package imaging

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/alchemorsel/discovery/internal/domain/recipe"
)

// DefaultGeneratorBaseURL serves a random image matching the query keywords
const DefaultGeneratorBaseURL = "https://source.unsplash.com/800x600/"

// Generator derives replacement image URLs from a recipe name
type Generator struct {
	base *url.URL
}

// NewGenerator creates a generator over base
func NewGenerator(base string) (*Generator, error) {
	if base == "" {
		base = DefaultGeneratorBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse generator base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("generator base url %q must be absolute", base)
	}
	return &Generator{base: u}, nil
}

// Candidate returns the replacement URL for attempt. The sig parameter makes
// every (recipe, attempt) pair a distinct URL.
func (g *Generator) Candidate(r recipe.Recipe, attempt int) string {
	u := *g.base
	q := u.Query()
	q.Set("q", keywords(r.Name))
	q.Set("sig", fmt.Sprintf("%s-%d", r.ID, attempt))
	u.RawQuery = q.Encode()
	return u.String()
}

// keywords keeps the meaningful words of a recipe name
func keywords(name string) string {
	words := strings.FieldsFunc(recipe.Fold(name), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
	kept := words[:0]
	for _, w := range words {
		if len(w) > 2 {
			kept = append(kept, w)
		}
	}
	if len(kept) == 0 {
		return "food"
	}
	return strings.Join(kept, ",") + ",food"
}
