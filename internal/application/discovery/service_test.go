package discovery

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alchemorsel/discovery/internal/application/imaging"
	"github.com/alchemorsel/discovery/internal/domain/filter"
	"github.com/alchemorsel/discovery/internal/domain/recipe"
	"github.com/alchemorsel/discovery/internal/domain/user"
	"github.com/alchemorsel/discovery/internal/infrastructure/catalogue"
	"github.com/alchemorsel/discovery/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/discovery/pkg/errors"
	"github.com/alchemorsel/discovery/test/testutils"
	"github.com/stretchr/testify/suite"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// ServiceTestSuite drives the facade over the sample catalogue
type ServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	clock     *fakeClock
	favorites *Favorites
	prober    *testutils.StubProber
	service   *Service
}

func (s *ServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	s.favorites = NewFavorites()
	s.prober = testutils.NewStubProber()
	s.prober.ReachableByDefault = true
	s.service = s.newService(catalogue.Sample(), testutils.FullKitchen(), 0)
}

func (s *ServiceTestSuite) TearDownTest() {
	s.service.Close()
}

func (s *ServiceTestSuite) newService(cat *recipe.Catalogue, profile user.Profile, debounce time.Duration) *Service {
	pipeline, err := filter.NewPipeline(16, nil, nil)
	s.Require().NoError(err)

	gen, err := imaging.NewGenerator("https://gen.example.com/")
	s.Require().NoError(err)
	resolver := imaging.NewResolver(s.prober, imaging.NewFallbackTable(nil, ""), gen, imaging.Config{MaxAttempts: 2, BatchSize: 5}, nil, nil)

	return NewDiscoveryService(cat, profile, s.favorites, pipeline, resolver,
		imaging.NewCache(memory.NewClaimStore()),
		Config{
			PageSize:       8,
			SearchDebounce: debounce,
			SettleDelay:    400 * time.Millisecond,
			Clock:          s.clock.Now,
		},
		nil,
	)
}

func (s *ServiceTestSuite) TestInitialSession() {
	snap := s.service.Snapshot(s.ctx)

	s.NotEmpty(snap.SessionID)
	s.True(snap.Ready)
	s.Equal(24, snap.Filtered)
	s.Len(snap.Visible, 8)
	s.True(snap.HasMore)
	s.Equal(1, snap.Page)
	s.Equal(filter.DefaultCriteria(), snap.Applied)
	s.Len(snap.ImagesLoaded, 24)
	s.False(snap.ImagesLoaded["r01"])
}

func (s *ServiceTestSuite) TestVeganQuickSession() {
	first := s.service.Snapshot(s.ctx).SessionID
	id := s.service.StartSession(s.ctx, testutils.FullKitchen("vegan"), filter.Criteria{Category: "rapide"})

	s.NotEqual(first, id)
	s.Equal([]string{"r01", "r04", "r09", "r13", "r15", "r21"}, testutils.IDs(s.service.FilteredRecipes(s.ctx)))
	s.Equal("rapide", s.service.Snapshot(s.ctx).Pending.Category, "pending re-seeded from applied")
}

func (s *ServiceTestSuite) TestLoadMore_CapsAtFilteredLength() {
	factory := testutils.NewRecipeFactory(7)
	recipes := factory.Recipes(20)
	for i := range recipes {
		recipes[i].Equipment = nil
	}
	svc := s.newService(recipe.MustCatalogue(recipes), user.Profile{}, 0)
	defer svc.Close()

	s.Len(svc.VisibleRecipes(s.ctx), 8)
	s.True(svc.LoadMore(s.ctx))
	s.True(svc.LoadMore(s.ctx))
	s.Len(svc.VisibleRecipes(s.ctx), 20)
	s.False(svc.LoadMore(s.ctx))
	s.Equal(3, svc.Snapshot(s.ctx).Page)
}

func (s *ServiceTestSuite) TestPendingEditsWaitForApply() {
	s.service.SetCategory("dessert")
	s.service.SetDifficulty("facile")

	snap := s.service.Snapshot(s.ctx)
	s.Equal(24, snap.Filtered)
	s.Equal("dessert", snap.Pending.Category)
	s.Empty(snap.Applied.Category)

	s.service.Apply(s.ctx)
	s.Equal([]string{"r12", "r22"}, testutils.IDs(s.service.FilteredRecipes(s.ctx)))
}

func (s *ServiceTestSuite) TestApply_ReturnsToFirstPage() {
	s.service.LoadMore(s.ctx)
	s.Equal(2, s.service.Snapshot(s.ctx).Page)

	// Same result set, pagination still resets on apply
	s.service.Apply(s.ctx)
	s.Equal(1, s.service.Snapshot(s.ctx).Page)
}

func (s *ServiceTestSuite) TestTypedSetters() {
	s.service.SetTimeBucket(recipe.TimeBucketMedium)
	s.service.SetDietaryTag("high-protein")
	s.service.SetCalorieBucket(recipe.CalorieBucketMedium)
	s.service.Apply(s.ctx)

	for _, r := range s.service.FilteredRecipes(s.ctx) {
		s.Greater(r.CookingTime, 15, r.ID)
		s.LessOrEqual(r.CookingTime, 30, r.ID)
		if r.Calories != nil {
			s.GreaterOrEqual(*r.Calories, 300, r.ID)
			s.LessOrEqual(*r.Calories, 600, r.ID)
		}
	}
	s.Equal([]string{"r10", "r14", "r24"}, testutils.IDs(s.service.FilteredRecipes(s.ctx)))
}

func (s *ServiceTestSuite) TestSearchIsDebounced() {
	svc := s.newService(catalogue.Sample(), testutils.FullKitchen(), 30*time.Millisecond)
	defer svc.Close()

	svc.SetSearchInput("pou")
	svc.SetSearchInput("Poulet")
	s.Equal(24, len(svc.FilteredRecipes(s.ctx)), "nothing propagated inside the window")
	s.Equal("Poulet", svc.Snapshot(s.ctx).SearchInput)

	s.Eventually(func() bool {
		return svc.Snapshot(s.ctx).Applied.Search == "Poulet"
	}, time.Second, 5*time.Millisecond)
	s.Equal([]string{"r02", "r05", "r10", "r17", "r20", "r24"}, testutils.IDs(svc.FilteredRecipes(s.ctx)))
}

func (s *ServiceTestSuite) TestFlushSearch() {
	svc := s.newService(catalogue.Sample(), testutils.FullKitchen(), time.Hour)
	defer svc.Close()

	svc.SetSearchInput("chocolat")
	s.True(svc.FlushSearch())
	s.Equal([]string{"r12"}, testutils.IDs(svc.FilteredRecipes(s.ctx)))
}

func (s *ServiceTestSuite) TestReset() {
	s.service.SetSearchInput("poulet")
	s.service.SetCategory("plat-principal")
	s.service.Apply(s.ctx)
	s.Less(len(s.service.FilteredRecipes(s.ctx)), 24)

	s.service.Reset(s.ctx)
	snap := s.service.Snapshot(s.ctx)
	s.Equal(24, snap.Filtered)
	s.Empty(snap.SearchInput)
	s.Equal(filter.DefaultCriteria(), snap.Applied)
	s.Equal(filter.DefaultCriteria(), snap.Pending)
}

func (s *ServiceTestSuite) TestFavoritesChangeResetsPagination() {
	for _, id := range []string{"r01", "r02", "r03", "r04", "r05", "r06", "r07", "r08", "r09", "r10"} {
		s.favorites.Toggle(id)
	}
	s.service.SetFavoritesOnly(true)
	s.service.Apply(s.ctx)
	s.True(s.service.LoadMore(s.ctx))
	s.Len(s.service.VisibleRecipes(s.ctx), 10)

	s.favorites.Toggle("r11")
	snap := s.service.Snapshot(s.ctx)
	s.Equal(11, snap.Filtered)
	s.Equal(1, snap.Page)
}

func (s *ServiceTestSuite) TestIsLoading_FollowsSettleDelay() {
	s.clock.Advance(time.Second)
	s.False(s.service.IsLoading())

	s.service.SetCategory("dessert")
	s.service.Apply(s.ctx)
	s.True(s.service.IsLoading())

	s.clock.Advance(399 * time.Millisecond)
	s.True(s.service.IsLoading())
	s.clock.Advance(time.Millisecond)
	s.False(s.service.IsLoading())

	// Unchanged result set does not restart the delay
	s.service.Apply(s.ctx)
	s.False(s.service.IsLoading())
}

func (s *ServiceTestSuite) TestResolveImages() {
	s.Require().NoError(s.service.ResolveImages(s.ctx))

	loaded := s.service.ImagesLoaded()
	for id, ready := range loaded {
		s.True(ready, id)
	}

	for s.service.LoadMore(s.ctx) {
		continue
	}
	visible := s.service.VisibleRecipes(s.ctx)
	s.Len(visible, 24)

	images := make(map[string]string, len(visible))
	for _, r := range visible {
		s.NotEmpty(r.ImageURL, r.ID)
		images[r.ID] = r.ImageURL
	}
	s.NotEqual(images["r09"], images["r18"])
	s.Equal(imaging.DefaultFallbackURL, images["r24"])

	original, err := s.service.Lookup("r24")
	s.Require().NoError(err)
	s.Empty(original.ImageURL, "catalogue is never rewritten")
}

func (s *ServiceTestSuite) TestReplaceCatalogue() {
	s.service.LoadMore(s.ctx)

	recipes := catalogue.Sample().Recipes()[:10]
	s.service.ReplaceCatalogue(s.ctx, recipe.MustCatalogue(recipes))

	snap := s.service.Snapshot(s.ctx)
	s.Equal(10, snap.Filtered)
	s.Equal(1, snap.Page)
}

func (s *ServiceTestSuite) TestLookup_Unknown() {
	_, err := s.service.Lookup("nope")
	s.True(errors.Is(err, errors.CodeRecipeNotFound))
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}
