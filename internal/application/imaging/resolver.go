package imaging

import (
	"context"
	"errors"
	"time"

	"github.com/alchemorsel/discovery/internal/domain/recipe"
	"github.com/alchemorsel/discovery/internal/ports/outbound"
	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("discovery/imaging")

var (
	errDuplicate   = errors.New("image already claimed by another recipe")
	errClaimLost   = errors.New("image claimed concurrently by another recipe")
	errNoCandidate = errors.New("no replacement attempts configured")
)

// Config bounds the resolver
type Config struct {
	MaxAttempts   int
	BatchSize     int
	RetryInterval time.Duration
}

// DefaultConfig returns the standard limits
func DefaultConfig() Config {
	return Config{
		MaxAttempts:   3,
		BatchSize:     5,
		RetryInterval: 200 * time.Millisecond,
	}
}

// Observer is notified of settled resolutions
type Observer interface {
	ImageResolved(status Status, retries int)
}

// Resolver settles a safe image URL per recipe. It holds no per-recipe
// state; all of it lives in the Cache passed to each call.
type Resolver struct {
	prober    outbound.ImageProber
	fallbacks *FallbackTable
	generator *Generator
	cfg       Config
	observer  Observer
	logger    *zap.Logger
}

// NewResolver creates a resolver
func NewResolver(
	prober outbound.ImageProber,
	fallbacks *FallbackTable,
	generator *Generator,
	cfg Config,
	observer Observer,
	logger *zap.Logger,
) *Resolver {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	if cfg.MaxAttempts < 0 {
		cfg.MaxAttempts = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		prober:    prober,
		fallbacks: fallbacks,
		generator: generator,
		cfg:       cfg,
		observer:  observer,
		logger:    logger.Named("image-resolver"),
	}
}

// Resolve returns a URL safe to render for r. The URL is never empty: when
// ctx ends first the category fallback is returned together with ctx.Err()
// and the recipe stays unresolved in cache.
func (res *Resolver) Resolve(ctx context.Context, cache *Cache, r recipe.Recipe) (string, error) {
	if url, ok := cache.Resolved(r.ID); ok {
		return url, nil
	}

	ctx, span := tracer.Start(ctx, "imaging.Resolver.Resolve")
	defer span.End()
	span.SetAttributes(attribute.String("recipe.id", r.ID))

	fallback := res.fallbacks.For(r)

	if !r.HasImage() {
		res.settle(cache, r, fallback, StatusFallbackAssigned)
		span.SetAttributes(attribute.String("outcome", StatusFallbackAssigned.String()))
		return fallback, nil
	}

	cache.transition(r.ID, StatusVerifying)
	err := res.verify(ctx, cache, r.ID, r.ImageURL)
	if err == nil {
		res.settle(cache, r, r.ImageURL, StatusValid)
		span.SetAttributes(attribute.String("outcome", "original"))
		return r.ImageURL, nil
	}
	cache.transition(r.ID, StatusInvalid)
	res.logger.Debug("Image rejected",
		zap.String("recipe_id", r.ID),
		zap.String("url", r.ImageURL),
		zap.Error(err),
	)

	url, err := res.replace(ctx, cache, r)
	if err == nil {
		res.settle(cache, r, url, StatusValid)
		span.SetAttributes(attribute.String("outcome", "replacement"))
		return url, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		cache.transition(r.ID, StatusUnresolved)
		span.RecordError(ctxErr)
		span.SetStatus(codes.Error, "resolution interrupted")
		return fallback, ctxErr
	}

	res.logger.Warn("Falling back to category image",
		zap.String("recipe_id", r.ID),
		zap.Int("retries", cache.Retries(r.ID)),
		zap.Error(err),
	)
	res.settle(cache, r, fallback, StatusFallbackAssigned)
	span.SetAttributes(attribute.String("outcome", StatusFallbackAssigned.String()))
	return fallback, nil
}

// replace tries at most MaxAttempts generated candidates. A candidate owned
// by another recipe counts as a failed attempt, so duplicates cannot loop.
func (res *Resolver) replace(ctx context.Context, cache *Cache, r recipe.Recipe) (string, error) {
	if res.cfg.MaxAttempts == 0 || res.generator == nil {
		return "", errNoCandidate
	}

	var accepted string
	operation := func() error {
		attempt := cache.retry(r.ID)
		candidate := res.generator.Candidate(r, attempt)

		if err := res.verify(ctx, cache, r.ID, candidate); err != nil {
			res.logger.Debug("Replacement rejected",
				zap.String("recipe_id", r.ID),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			cache.transition(r.ID, StatusInvalid)
			return err
		}
		accepted = candidate
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(res.cfg.RetryInterval), uint64(res.cfg.MaxAttempts-1)),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return "", err
	}
	return accepted, nil
}

// verify checks url is free for recipeID, reachable, and then claims it
func (res *Resolver) verify(ctx context.Context, cache *Cache, recipeID, url string) error {
	taken, err := cache.claimedByOther(ctx, url, recipeID)
	if err != nil {
		return backoff.Permanent(err)
	}
	if taken {
		return errDuplicate
	}

	if err := res.prober.Probe(ctx, url); err != nil {
		return err
	}

	won, err := cache.claim(ctx, url, recipeID)
	if err != nil {
		return backoff.Permanent(err)
	}
	if !won {
		return errClaimLost
	}
	return nil
}

func (res *Resolver) settle(cache *Cache, r recipe.Recipe, url string, status Status) {
	cache.settle(r.ID, url, status)
	if res.observer != nil {
		res.observer.ImageResolved(status, cache.Retries(r.ID))
	}
}

// ResolveAll resolves visible first, then remainder, in batches of
// Config.BatchSize. A batch starts only once the previous one has settled.
// Recipes already settled in cache are skipped.
func (res *Resolver) ResolveAll(ctx context.Context, cache *Cache, visible, remainder []recipe.Recipe) error {
	ctx, span := tracer.Start(ctx, "imaging.Resolver.ResolveAll")
	defer span.End()

	queue := make([]recipe.Recipe, 0, len(visible)+len(remainder))
	seen := make(map[string]struct{}, cap(queue))
	for _, list := range [][]recipe.Recipe{visible, remainder} {
		for _, r := range list {
			if _, dup := seen[r.ID]; dup || cache.Ready(r.ID) {
				continue
			}
			seen[r.ID] = struct{}{}
			queue = append(queue, r)
		}
	}
	span.SetAttributes(
		attribute.Int("queued", len(queue)),
		attribute.Int("batch_size", res.cfg.BatchSize),
	)

	for start := 0; start < len(queue); start += res.cfg.BatchSize {
		end := min(start+res.cfg.BatchSize, len(queue))

		g, gctx := errgroup.WithContext(ctx)
		for _, r := range queue[start:end] {
			r := r
			g.Go(func() error {
				_, err := res.Resolve(gctx, cache, r)
				return err
			})
		}
		if err := g.Wait(); err != nil {
			span.RecordError(err)
			return err
		}
	}

	res.logger.Debug("Resolved images", zap.Int("count", len(queue)))
	return nil
}
