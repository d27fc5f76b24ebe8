// Package integration exercises adapters against real backing services
//go:build integration
// +build integration

package integration

import (
	"context"
	"sync"
	"testing"

	"github.com/alchemorsel/discovery/internal/application/imaging"
	"github.com/alchemorsel/discovery/internal/infrastructure/catalogue"
	redisstore "github.com/alchemorsel/discovery/internal/infrastructure/persistence/redis"
	"github.com/alchemorsel/discovery/pkg/healthcheck"
	"github.com/alchemorsel/discovery/test/testutils"
	"github.com/stretchr/testify/suite"
)

// ClaimStoreIntegrationTestSuite runs the Redis claim store against a container
type ClaimStoreIntegrationTestSuite struct {
	suite.Suite
	redis *testutils.TestRedis
	store *redisstore.ClaimStore
	ctx   context.Context
}

func (s *ClaimStoreIntegrationTestSuite) SetupSuite() {
	s.ctx = context.Background()
	s.redis = testutils.SetupTestRedis(s.T())
}

func (s *ClaimStoreIntegrationTestSuite) SetupTest() {
	s.store = redisstore.NewClaimStore(s.redis.Client, "discovery-test", nil)
	s.Require().NoError(s.store.Reset(s.ctx))
}

func (s *ClaimStoreIntegrationTestSuite) TestPing() {
	s.NoError(s.store.Ping(s.ctx))
}

func (s *ClaimStoreIntegrationTestSuite) TestRedisChecker() {
	health := healthcheck.New("test", nil)
	health.Register("redis", healthcheck.NewRedisChecker(s.redis.Client))

	report := health.Check(s.ctx)
	s.Equal(healthcheck.StatusHealthy, report.Status)
	check, ok := report.Find("redis")
	s.Require().True(ok)
	s.Contains(check.Metadata, "total_conns")
}

func (s *ClaimStoreIntegrationTestSuite) TestFirstClaimWins() {
	owner, err := s.store.Claim(s.ctx, "https://img/a.jpg", "r1")
	s.Require().NoError(err)
	s.Equal("r1", owner)

	owner, err = s.store.Claim(s.ctx, "https://img/a.jpg", "r2")
	s.Require().NoError(err)
	s.Equal("r1", owner)

	got, found, err := s.store.Owner(s.ctx, "https://img/a.jpg")
	s.Require().NoError(err)
	s.True(found)
	s.Equal("r1", got)

	_, found, err = s.store.Owner(s.ctx, "https://img/b.jpg")
	s.Require().NoError(err)
	s.False(found)
}

func (s *ClaimStoreIntegrationTestSuite) TestConcurrentClaims_SingleOwner() {
	var wg sync.WaitGroup
	owners := make([]string, 20)
	for i := range owners {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			owner, err := s.store.Claim(s.ctx, "https://img/shared.jpg", catalogueID(i))
			s.NoError(err)
			owners[i] = owner
		}()
	}
	wg.Wait()

	for _, owner := range owners {
		s.Equal(owners[0], owner)
	}
	n, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *ClaimStoreIntegrationTestSuite) TestReset() {
	_, err := s.store.Claim(s.ctx, "u1", "r1")
	s.Require().NoError(err)
	s.Require().NoError(s.store.Reset(s.ctx))

	n, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Zero(n)
}

// Two resolvers sharing one Redis never hand the same image to two recipes
func (s *ClaimStoreIntegrationTestSuite) TestSharedStore_DedupsAcrossCaches() {
	gen, err := imaging.NewGenerator(imaging.DefaultGeneratorBaseURL)
	s.Require().NoError(err)
	prober := testutils.NewStubProber()
	prober.ReachableByDefault = true
	resolver := imaging.NewResolver(prober, imaging.NewFallbackTable(nil, ""), gen, imaging.DefaultConfig(), nil, nil)

	cat := catalogue.Sample()
	r09, _ := cat.Get("r09")
	r18, _ := cat.Get("r18")

	first := imaging.NewCache(redisstore.NewClaimStore(s.redis.Client, "discovery-test", nil))
	second := imaging.NewCache(redisstore.NewClaimStore(s.redis.Client, "discovery-test", nil))

	a, err := resolver.Resolve(s.ctx, first, r09)
	s.Require().NoError(err)
	b, err := resolver.Resolve(s.ctx, second, r18)
	s.Require().NoError(err)

	s.Equal(r09.ImageURL, a)
	s.NotEqual(a, b)
}

func catalogueID(i int) string {
	return "r" + string(rune('a'+i))
}

func TestClaimStoreIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(ClaimStoreIntegrationTestSuite))
}
