// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"

	"github.com/alchemorsel/discovery/internal/domain/recipe"
)

// CatalogueSource supplies the static recipe catalogue
type CatalogueSource interface {
	Load(path string) (*recipe.Catalogue, error)
}

// ImageProber checks that an image URL is reachable.
// A nil error means the URL is safe to render.
type ImageProber interface {
	Probe(ctx context.Context, url string) error
}

// ClaimStore records which recipe owns an image URL. It backs the image
// dedup cache and may be shared between processes.
type ClaimStore interface {
	// Claim assigns url to recipeID unless another recipe already owns it.
	// It returns the owner after the call.
	Claim(ctx context.Context, url, recipeID string) (owner string, err error)

	// Owner returns the recipe owning url, if any
	Owner(ctx context.Context, url string) (owner string, found bool, err error)

	// Count returns the number of claimed URLs
	Count(ctx context.Context) (int, error)

	// Reset forgets every claim
	Reset(ctx context.Context) error
}
