package discovery

import (
	"slices"
	"sync"

	"github.com/alchemorsel/discovery/internal/domain/filter"
)

// Favorites is an in-memory favorite recipe set
type Favorites struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

var _ filter.FavoriteSet = (*Favorites)(nil)

// NewFavorites creates a set holding ids
func NewFavorites(ids ...string) *Favorites {
	f := &Favorites{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		f.ids[id] = struct{}{}
	}
	return f
}

// Toggle flips membership of id and reports whether it is now a favorite
func (f *Favorites) Toggle(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.ids[id]; ok {
		delete(f.ids, id)
		return false
	}
	f.ids[id] = struct{}{}
	return true
}

// Contains implements filter.FavoriteSet
func (f *Favorites) Contains(id string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.ids[id]
	return ok
}

// IDs implements filter.FavoriteSet. The result is sorted.
func (f *Favorites) IDs() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	ids := make([]string, 0, len(f.ids))
	for id := range f.ids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of favorites
func (f *Favorites) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.ids)
}

// MinFavoriteSelection is the number of favorites onboarding asks for
const MinFavoriteSelection = 1

// ValidateFavoriteSelection tells the presentation layer whether the user may
// continue, and what to show otherwise.
func ValidateFavoriteSelection(favorites filter.FavoriteSet) (bool, string) {
	if favorites == nil || len(favorites.IDs()) < MinFavoriteSelection {
		return false, "Select at least one favorite recipe to continue"
	}
	return true, ""
}
