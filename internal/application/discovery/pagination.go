package discovery

import (
	"github.com/alchemorsel/discovery/internal/domain/recipe"
	"github.com/cespare/xxhash/v2"
)

// Paginator reveals the filtered collection one page at a time. It is not
// safe for concurrent use; the Service serializes access.
type Paginator struct {
	pageSize int
	cursor   int
	identity uint64
	synced   bool
}

// NewPaginator creates a paginator on its first page
func NewPaginator(pageSize int) *Paginator {
	if pageSize < 1 {
		pageSize = 1
	}
	return &Paginator{pageSize: pageSize, cursor: 1}
}

// Identity fingerprints the ordered recipe ids of a collection
func Identity(recipes []recipe.Recipe) uint64 {
	d := xxhash.New()
	for _, r := range recipes {
		_, _ = d.WriteString(r.ID)
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}

// Sync resets the cursor when filtered differs from the collection last
// seen. It reports whether a reset happened.
func (p *Paginator) Sync(filtered []recipe.Recipe) bool {
	id := Identity(filtered)
	if p.synced && id == p.identity {
		return false
	}
	p.identity = id
	p.synced = true
	p.cursor = 1
	return true
}

// Visible returns the revealed prefix of filtered
func (p *Paginator) Visible(filtered []recipe.Recipe) []recipe.Recipe {
	return filtered[:min(p.pageSize*p.cursor, len(filtered))]
}

// HasMore reports whether LoadMore would reveal anything
func (p *Paginator) HasMore(filtered []recipe.Recipe) bool {
	return p.pageSize*p.cursor < len(filtered)
}

// LoadMore reveals one more page
func (p *Paginator) LoadMore() {
	p.cursor++
}

// Reset returns to the first page
func (p *Paginator) Reset() {
	p.cursor = 1
}

// Cursor returns the number of revealed pages
func (p *Paginator) Cursor() int {
	return p.cursor
}

// PageSize returns the page size
func (p *Paginator) PageSize() int {
	return p.pageSize
}
