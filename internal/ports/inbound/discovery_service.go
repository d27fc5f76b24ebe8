// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"

	"github.com/alchemorsel/discovery/internal/domain/filter"
	"github.com/alchemorsel/discovery/internal/domain/recipe"
	"github.com/alchemorsel/discovery/internal/domain/user"
)

// DiscoveryService is the read model the UI collaborates with.
// HTTP handlers and the CLI drive it.
type DiscoveryService interface {
	// Session lifecycle
	StartSession(ctx context.Context, profile user.Profile, applied filter.Criteria) string
	ReplaceCatalogue(ctx context.Context, cat *recipe.Catalogue)
	Close()

	// Search input, debounced before it reaches the pipeline
	SetSearchInput(term string)
	FlushSearch() bool

	// Pending edits
	EditPending(edit func(c *filter.Criteria))
	SetTimeBucket(b recipe.TimeBucket)
	SetCategory(key string)
	SetDietaryTag(key string)
	SetDifficulty(level string)
	SetCalorieBucket(b recipe.CalorieBucket)
	SetFavoritesOnly(active bool)

	// Commands
	Apply(ctx context.Context)
	Reset(ctx context.Context)
	LoadMore(ctx context.Context) bool
	ResolveImages(ctx context.Context) error

	// Queries
	Lookup(id string) (recipe.Recipe, error)
	FilteredRecipes(ctx context.Context) []recipe.Recipe
	VisibleRecipes(ctx context.Context) []recipe.Recipe
	ImagesLoaded() map[string]bool
	IsLoading() bool
	Snapshot(ctx context.Context) Snapshot
}

// Snapshot is the full read model at one instant
type Snapshot struct {
	SessionID    string          `json:"sessionId"`
	SearchInput  string          `json:"searchInput"`
	Pending      filter.Criteria `json:"pending"`
	Applied      filter.Criteria `json:"applied"`
	Ready        bool            `json:"ready"`
	Filtered     int             `json:"filtered"`
	Visible      []recipe.Recipe `json:"visible"`
	Page         int             `json:"page"`
	PageSize     int             `json:"pageSize"`
	HasMore      bool            `json:"hasMore"`
	ImagesLoaded map[string]bool `json:"imagesLoaded"`
	IsLoading    bool            `json:"isLoading"`
}
