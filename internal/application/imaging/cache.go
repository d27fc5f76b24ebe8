package imaging

import (
	"context"
	"fmt"
	"sync"

	"github.com/alchemorsel/discovery/internal/ports/outbound"
)

type entry struct {
	status  Status
	url     string
	retries int
}

// Cache is the dedup cache of one discovery facade: the URL claims (held by
// a ClaimStore so they can be shared) plus per-recipe status, retry counter
// and resolved URL.
type Cache struct {
	claims outbound.ClaimStore

	mu      sync.RWMutex
	entries map[string]*entry
}

// NewCache creates an empty cache over claims
func NewCache(claims outbound.ClaimStore) *Cache {
	return &Cache{
		claims:  claims,
		entries: make(map[string]*entry),
	}
}

// Status returns the current state for recipeID
func (c *Cache) Status(recipeID string) Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e, ok := c.entries[recipeID]; ok {
		return e.status
	}
	return StatusUnresolved
}

// Retries returns how many replacement attempts recipeID consumed
func (c *Cache) Retries(recipeID string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e, ok := c.entries[recipeID]; ok {
		return e.retries
	}
	return 0
}

// Resolved returns the URL settled for recipeID
func (c *Cache) Resolved(recipeID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[recipeID]
	if !ok || !e.status.Final() {
		return "", false
	}
	return e.url, true
}

// Ready reports whether recipeID has a settled image
func (c *Cache) Ready(recipeID string) bool {
	_, ok := c.Resolved(recipeID)
	return ok
}

// ImagesLoaded returns readiness for every recipe the cache has seen
func (c *Cache) ImagesLoaded() map[string]bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]bool, len(c.entries))
	for id, e := range c.entries {
		out[id] = e.status.Final()
	}
	return out
}

// Reset forgets every claim and every recipe state
func (c *Cache) Reset(ctx context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]*entry)
	c.mu.Unlock()

	if err := c.claims.Reset(ctx); err != nil {
		return fmt.Errorf("reset image claims: %w", err)
	}
	return nil
}

// claimedByOther reports whether url belongs to a recipe other than recipeID
func (c *Cache) claimedByOther(ctx context.Context, url, recipeID string) (bool, error) {
	owner, found, err := c.claims.Owner(ctx, url)
	if err != nil {
		return false, err
	}
	return found && owner != recipeID, nil
}

// claim registers url for recipeID and reports whether recipeID won it
func (c *Cache) claim(ctx context.Context, url, recipeID string) (bool, error) {
	owner, err := c.claims.Claim(ctx, url, recipeID)
	if err != nil {
		return false, err
	}
	return owner == recipeID, nil
}

func (c *Cache) transition(recipeID string, status Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookup(recipeID).status = status
}

func (c *Cache) retry(recipeID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.lookup(recipeID)
	e.status = StatusRetrying
	e.retries++
	return e.retries
}

func (c *Cache) settle(recipeID, url string, status Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.lookup(recipeID)
	e.status = status
	e.url = url
}

// lookup must be called with mu held
func (c *Cache) lookup(recipeID string) *entry {
	e, ok := c.entries[recipeID]
	if !ok {
		e = &entry{}
		c.entries[recipeID] = e
	}
	return e
}
