package testutils

import (
	"context"
	"sync"

	"github.com/alchemorsel/discovery/internal/ports/outbound"
	"github.com/stretchr/testify/mock"
)

// MockImageProber mocks outbound.ImageProber
type MockImageProber struct {
	mock.Mock
}

var _ outbound.ImageProber = (*MockImageProber)(nil)

// NewMockImageProber creates a mock prober
func NewMockImageProber() *MockImageProber {
	return &MockImageProber{}
}

// Probe records the call and returns the configured error
func (m *MockImageProber) Probe(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

// StubProber answers probes from a fixed set of reachable URLs and records
// every probed URL.
type StubProber struct {
	mu        sync.Mutex
	reachable map[string]bool
	// ReachableByDefault makes URLs absent from the set succeed
	ReachableByDefault bool
	probed             []string
}

// NewStubProber creates a prober where only urls are reachable
func NewStubProber(urls ...string) *StubProber {
	s := &StubProber{reachable: make(map[string]bool)}
	for _, u := range urls {
		s.reachable[u] = true
	}
	return s
}

// Block marks url unreachable
func (s *StubProber) Block(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reachable[url] = false
}

// Probe implements outbound.ImageProber
func (s *StubProber) Probe(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.probed = append(s.probed, url)

	ok, known := s.reachable[url]
	if (known && ok) || (!known && s.ReachableByDefault) {
		return nil
	}
	return ErrUnreachable
}

// Probed returns every URL probed so far
func (s *StubProber) Probed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.probed))
	copy(out, s.probed)
	return out
}
