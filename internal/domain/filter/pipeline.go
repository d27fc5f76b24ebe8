package filter

import (
	"context"
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/alchemorsel/discovery/internal/domain/recipe"
	"github.com/alchemorsel/discovery/internal/domain/user"
	"github.com/cespare/xxhash/v2"
	json "github.com/goccy/go-json"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Input groups everything the pipeline reads
type Input struct {
	Catalogue *recipe.Catalogue
	Profile   user.Profile
	Criteria  Criteria
	Favorites FavoriteSet
}

// Stage is a named step of the pipeline
type Stage struct {
	Name  string
	Match Matcher
}

// Stages returns the pipeline steps for in, in execution order: profile
// constraints first, then user criteria, then free text, then favorites.
// Inactive steps carry a nil Matcher.
func Stages(in Input) []Stage {
	c := in.Criteria.normalized()
	return []Stage{
		{"dietary-preference", DietaryPreference(in.Profile)},
		{"equipment", Equipment(in.Profile)},
		{"profile-time", ProfileTime(in.Profile)},
		{"time-bucket", TimeBucket(c.TimeBucket)},
		{"category", Category(c.Category)},
		{"dietary-tag", DietaryTag(c.DietaryTag)},
		{"difficulty", Difficulty(c.Difficulty)},
		{"calories", Calories(c.CalorieBucket)},
		{"search", SearchTerm(c.Search)},
		{"favorites", FavoritesOnly(c.FavoritesOnly, in.Favorites)},
	}
}

// Filter runs every stage over the catalogue. It never fails and only ever
// removes entries.
func Filter(in Input) []recipe.Recipe {
	out := in.Catalogue.Recipes()
	for _, stage := range Stages(in) {
		out = Keep(out, stage.Match)
	}
	return out
}

// Key fingerprints an input. Equal keys imply equal Filter results.
func Key(in Input) (uint64, error) {
	favs := []string(nil)
	if in.Favorites != nil && in.Criteria.FavoritesOnly {
		favs = slices.Clone(in.Favorites.IDs())
		slices.Sort(favs)
	}

	payload, err := json.Marshal(struct {
		Profile   user.Profile `json:"p"`
		Criteria  Criteria     `json:"c"`
		Favorites []string     `json:"f"`
	}{in.Profile, in.Criteria.normalized(), favs})
	if err != nil {
		return 0, fmt.Errorf("encode pipeline input: %w", err)
	}

	var prefix [8]byte
	binary.LittleEndian.PutUint64(prefix[:], in.Catalogue.Fingerprint())

	d := xxhash.New()
	_, _ = d.Write(prefix[:])
	_, _ = d.Write(payload)
	return d.Sum64(), nil
}

// CacheObserver is notified of memoization outcomes
type CacheObserver interface {
	PipelineCacheHit()
	PipelineCacheMiss()
}

// Pipeline memoizes Filter on its inputs
type Pipeline struct {
	cache    *lru.Cache[uint64, []recipe.Recipe]
	observer CacheObserver
	logger   *zap.Logger
}

// NewPipeline creates a pipeline that remembers the last size results
func NewPipeline(size int, observer CacheObserver, logger *zap.Logger) (*Pipeline, error) {
	if size <= 0 {
		size = 32
	}
	cache, err := lru.New[uint64, []recipe.Recipe](size)
	if err != nil {
		return nil, fmt.Errorf("create pipeline cache: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		cache:    cache,
		observer: observer,
		logger:   logger.Named("filter-pipeline"),
	}, nil
}

// Run returns the filtered collection for in, reusing a previous result
// when the inputs are unchanged.
func (p *Pipeline) Run(ctx context.Context, in Input) []recipe.Recipe {
	_, span := otel.Tracer("discovery/filter").Start(ctx, "filter.Pipeline.Run")
	defer span.End()

	key, err := Key(in)
	if err != nil {
		p.logger.Warn("Pipeline input not hashable, filtering without cache", zap.Error(err))
		return Filter(in)
	}

	if cached, ok := p.cache.Get(key); ok {
		span.SetAttributes(attribute.Bool("cache_hit", true), attribute.Int("results", len(cached)))
		if p.observer != nil {
			p.observer.PipelineCacheHit()
		}
		return cloneRecipes(cached)
	}

	result := Filter(in)
	p.cache.Add(key, cloneRecipes(result))
	if p.observer != nil {
		p.observer.PipelineCacheMiss()
	}

	span.SetAttributes(attribute.Bool("cache_hit", false), attribute.Int("results", len(result)))
	p.logger.Debug("Filtered catalogue",
		zap.Int("catalogue", in.Catalogue.Len()),
		zap.Int("results", len(result)),
	)
	return result
}

// cloneRecipes copies the recipes and their slices so callers cannot
// reach a memoized result.
func cloneRecipes(in []recipe.Recipe) []recipe.Recipe {
	out := make([]recipe.Recipe, len(in))
	for i, r := range in {
		out[i] = r.WithImage(r.ImageURL)
	}
	return out
}

// Purge drops every memoized result
func (p *Pipeline) Purge() {
	p.cache.Purge()
}
