// Package memory provides in-memory implementations of outbound ports
package memory

import (
	"context"
	"sync"

	"github.com/alchemorsel/discovery/internal/ports/outbound"
)

// ClaimStore keeps image claims in a process-local map
type ClaimStore struct {
	owners map[string]string
	mutex  sync.RWMutex
}

// NewClaimStore creates an empty in-memory claim store
func NewClaimStore() *ClaimStore {
	return &ClaimStore{owners: make(map[string]string)}
}

var _ outbound.ClaimStore = (*ClaimStore)(nil)

// Claim assigns url to recipeID unless already owned
func (s *ClaimStore) Claim(ctx context.Context, url, recipeID string) (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if owner, exists := s.owners[url]; exists {
		return owner, nil
	}
	s.owners[url] = recipeID
	return recipeID, nil
}

// Owner returns the recipe owning url
func (s *ClaimStore) Owner(ctx context.Context, url string) (string, bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	owner, exists := s.owners[url]
	return owner, exists, nil
}

// Count returns the number of claimed URLs
func (s *ClaimStore) Count(ctx context.Context) (int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.owners), nil
}

// Reset forgets every claim
func (s *ClaimStore) Reset(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.owners = make(map[string]string)
	return nil
}
