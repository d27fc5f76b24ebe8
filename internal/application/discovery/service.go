// Package discovery provides the application layer for recipe discovery.
// It wires the filter pipeline, the pending/applied criteria store, search
// debouncing, pagination and image resolution into one read model.
package discovery

import (
	"context"
	"sync"
	"time"

	"github.com/alchemorsel/discovery/internal/application/imaging"
	"github.com/alchemorsel/discovery/internal/domain/filter"
	"github.com/alchemorsel/discovery/internal/domain/recipe"
	"github.com/alchemorsel/discovery/internal/domain/user"
	"github.com/alchemorsel/discovery/internal/ports/inbound"
	"github.com/alchemorsel/discovery/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config tunes the read model
type Config struct {
	PageSize       int
	SearchDebounce time.Duration
	SettleDelay    time.Duration
	// Clock defaults to time.Now
	Clock func() time.Time
}

// DefaultConfig returns the standard tuning
func DefaultConfig() Config {
	return Config{
		PageSize:       8,
		SearchDebounce: 300 * time.Millisecond,
		SettleDelay:    400 * time.Millisecond,
	}
}

// Service implements inbound.DiscoveryService
type Service struct {
	pipeline  *filter.Pipeline
	resolver  *imaging.Resolver
	images    *imaging.Cache
	favorites filter.FavoriteSet
	cfg       Config
	now       func() time.Time
	logger    *zap.Logger

	search *Debouncer[string]

	mu           sync.Mutex
	sessionID    string
	catalogue    *recipe.Catalogue
	profile      user.Profile
	store        *filter.Store
	paginator    *Paginator
	searchInput  string
	filtered     []recipe.Recipe
	loadingUntil time.Time
}

var _ inbound.DiscoveryService = (*Service)(nil)

// NewDiscoveryService creates the facade and starts a session for profile
// with default criteria. favorites is owned by the caller; images is the
// dedup cache this facade resolves into.
func NewDiscoveryService(
	cat *recipe.Catalogue,
	profile user.Profile,
	favorites filter.FavoriteSet,
	pipeline *filter.Pipeline,
	resolver *imaging.Resolver,
	images *imaging.Cache,
	cfg Config,
	logger *zap.Logger,
) *Service {
	if favorites == nil {
		favorites = filter.NoFavorites
	}
	if cfg.PageSize < 1 {
		cfg.PageSize = DefaultConfig().PageSize
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{
		pipeline:  pipeline,
		resolver:  resolver,
		images:    images,
		favorites: favorites,
		cfg:       cfg,
		now:       now,
		logger:    logger.Named("discovery-service"),
		catalogue: cat,
		store:     filter.NewStore(),
		paginator: NewPaginator(cfg.PageSize),
	}
	s.search = NewDebouncer(cfg.SearchDebounce, s.commitSearch)
	s.StartSession(context.Background(), profile, filter.DefaultCriteria())
	return s
}

// StartSession replaces the profile and applied criteria, re-seeding
// pending from them. Image resolution state is kept.
func (s *Service) StartSession(ctx context.Context, profile user.Profile, applied filter.Criteria) string {
	s.search.Cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessionID = uuid.NewString()
	s.profile = profile.Clone()
	state := s.store.Dispatch(filter.Seed{Applied: applied})
	s.searchInput = state.Applied.Search
	s.paginator.Reset()
	s.refresh(ctx)

	s.logger.Info("Discovery session started",
		zap.String("session_id", s.sessionID),
		zap.Strings("dietary_preferences", profile.DietaryPreferences),
		zap.String("cooking_time", string(profile.CookingTime)),
		zap.Int("catalogue", s.catalogue.Len()),
	)
	return s.sessionID
}

// ReplaceCatalogue swaps in a reloaded catalogue. Memoized results and image
// state of the previous catalogue are dropped.
func (s *Service) ReplaceCatalogue(ctx context.Context, cat *recipe.Catalogue) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cat.Fingerprint() == s.catalogue.Fingerprint() {
		return
	}
	s.catalogue = cat
	s.pipeline.Purge()
	if err := s.images.Reset(ctx); err != nil {
		s.logger.Warn("Failed to reset image cache", zap.Error(err))
	}
	s.paginator.Reset()
	s.refresh(ctx)

	s.logger.Info("Catalogue replaced", zap.Int("recipes", cat.Len()))
}

// Close stops the search debouncer
func (s *Service) Close() {
	s.search.Stop()
}

// SetSearchInput records a keystroke. The term reaches the pipeline once
// input has been quiet for the debounce window.
func (s *Service) SetSearchInput(term string) {
	s.mu.Lock()
	s.searchInput = term
	s.mu.Unlock()

	s.search.Push(term)
}

// FlushSearch propagates a pending search term immediately
func (s *Service) FlushSearch() bool {
	return s.search.Flush()
}

func (s *Service) commitSearch(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.Dispatch(filter.Search{Term: term})
	s.refresh(context.Background())
	s.logger.Debug("Search term applied", zap.String("term", term))
}

// EditPending mutates pending criteria; applied is untouched
func (s *Service) EditPending(edit func(c *filter.Criteria)) {
	s.store.Dispatch(filter.EditPending{Edit: edit})
}

// SetTimeBucket edits the pending time bucket
func (s *Service) SetTimeBucket(b recipe.TimeBucket) {
	s.EditPending(func(c *filter.Criteria) { c.TimeBucket = b })
}

// SetCategory edits the pending category key
func (s *Service) SetCategory(key string) {
	s.EditPending(func(c *filter.Criteria) { c.Category = key })
}

// SetDietaryTag edits the pending dietary selector
func (s *Service) SetDietaryTag(key string) {
	s.EditPending(func(c *filter.Criteria) { c.DietaryTag = key })
}

// SetDifficulty edits the pending difficulty
func (s *Service) SetDifficulty(level string) {
	s.EditPending(func(c *filter.Criteria) { c.Difficulty = level })
}

// SetCalorieBucket edits the pending calorie bucket
func (s *Service) SetCalorieBucket(b recipe.CalorieBucket) {
	s.EditPending(func(c *filter.Criteria) { c.CalorieBucket = b })
}

// SetFavoritesOnly edits the pending favorites-only flag
func (s *Service) SetFavoritesOnly(active bool) {
	s.EditPending(func(c *filter.Criteria) { c.FavoritesOnly = active })
}

// Apply commits pending criteria and returns to the first page
func (s *Service) Apply(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.store.Dispatch(filter.Commit{})
	s.paginator.Reset()
	s.refresh(ctx)

	s.logger.Debug("Criteria applied",
		zap.Uint64("revision", state.Revision),
		zap.Int("results", len(s.filtered)),
	)
}

// Reset clears pending, applied and the search input
func (s *Service) Reset(ctx context.Context) {
	s.search.Cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.Dispatch(filter.Reset{})
	s.searchInput = ""
	s.paginator.Reset()
	s.refresh(ctx)
}

// LoadMore reveals the next page. It reports whether anything was added.
func (s *Service) LoadMore(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refresh(ctx)
	if !s.paginator.HasMore(s.filtered) {
		return false
	}
	s.paginator.LoadMore()
	return true
}

// ResolveImages settles images for the visible slice first, then the rest
// of the filtered collection. Results are keyed by recipe id, so a filter
// change while this runs only leaves extra entries behind.
func (s *Service) ResolveImages(ctx context.Context) error {
	s.mu.Lock()
	s.refresh(ctx)
	filtered := s.filtered
	visible := s.paginator.Visible(filtered)
	s.mu.Unlock()

	if err := s.resolver.ResolveAll(ctx, s.images, visible, filtered); err != nil {
		return errors.Wrap(err, "resolve images")
	}
	return nil
}

// Lookup returns a catalogue recipe by id
func (s *Service) Lookup(id string) (recipe.Recipe, error) {
	s.mu.Lock()
	cat := s.catalogue
	s.mu.Unlock()

	r, ok := cat.Get(id)
	if !ok {
		return recipe.Recipe{}, errors.NewRecipeNotFoundError(id)
	}
	return r, nil
}

// FilteredRecipes returns the full filtered collection
func (s *Service) FilteredRecipes(ctx context.Context) []recipe.Recipe {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh(ctx)
	return cloneRecipes(s.filtered)
}

// VisibleRecipes returns the revealed page prefix with resolved images
func (s *Service) VisibleRecipes(ctx context.Context) []recipe.Recipe {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh(ctx)
	return s.visible()
}

// ImagesLoaded returns image readiness for every filtered recipe and every
// recipe resolved earlier
func (s *Service) ImagesLoaded() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.imagesLoaded()
}

// IsLoading is true for the settle delay after the filtered collection changed
func (s *Service) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now().Before(s.loadingUntil)
}

// Snapshot returns the whole read model at once
func (s *Service) Snapshot(ctx context.Context) inbound.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh(ctx)

	state := s.store.State()
	return inbound.Snapshot{
		SessionID:    s.sessionID,
		SearchInput:  s.searchInput,
		Pending:      state.Pending,
		Applied:      state.Applied,
		Ready:        state.Ready,
		Filtered:     len(s.filtered),
		Visible:      s.visible(),
		Page:         s.paginator.Cursor(),
		PageSize:     s.paginator.PageSize(),
		HasMore:      s.paginator.HasMore(s.filtered),
		ImagesLoaded: s.imagesLoaded(),
		IsLoading:    s.now().Before(s.loadingUntil),
	}
}

// refresh reruns the pipeline and resets pagination when the result set
// changed. Must be called with mu held.
func (s *Service) refresh(ctx context.Context) {
	s.filtered = s.pipeline.Run(ctx, filter.Input{
		Catalogue: s.catalogue,
		Profile:   s.profile,
		Criteria:  s.store.State().Applied,
		Favorites: s.favorites,
	})
	if s.paginator.Sync(s.filtered) {
		s.loadingUntil = s.now().Add(s.cfg.SettleDelay)
	}
}

// visible must be called with mu held
func (s *Service) visible() []recipe.Recipe {
	page := s.paginator.Visible(s.filtered)
	out := make([]recipe.Recipe, len(page))
	for i, r := range page {
		if url, ok := s.images.Resolved(r.ID); ok && url != r.ImageURL {
			out[i] = r.WithImage(url)
			continue
		}
		out[i] = r.WithImage(r.ImageURL)
	}
	return out
}

// imagesLoaded must be called with mu held
func (s *Service) imagesLoaded() map[string]bool {
	loaded := s.images.ImagesLoaded()
	for _, r := range s.filtered {
		if _, ok := loaded[r.ID]; !ok {
			loaded[r.ID] = false
		}
	}
	return loaded
}

func cloneRecipes(in []recipe.Recipe) []recipe.Recipe {
	out := make([]recipe.Recipe, len(in))
	for i, r := range in {
		out[i] = r.WithImage(r.ImageURL)
	}
	return out
}
