// Package container provides dependency injection using Uber FX
package container

import (
	"context"
	"fmt"

	"github.com/alchemorsel/discovery/internal/application/discovery"
	"github.com/alchemorsel/discovery/internal/application/imaging"
	"github.com/alchemorsel/discovery/internal/domain/filter"
	"github.com/alchemorsel/discovery/internal/domain/recipe"
	"github.com/alchemorsel/discovery/internal/domain/user"
	"github.com/alchemorsel/discovery/internal/infrastructure/catalogue"
	"github.com/alchemorsel/discovery/internal/infrastructure/config"
	"github.com/alchemorsel/discovery/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/discovery/internal/infrastructure/http/server"
	"github.com/alchemorsel/discovery/internal/infrastructure/imageprobe"
	"github.com/alchemorsel/discovery/internal/infrastructure/monitoring"
	"github.com/alchemorsel/discovery/internal/infrastructure/persistence/memory"
	redisstore "github.com/alchemorsel/discovery/internal/infrastructure/persistence/redis"
	"github.com/alchemorsel/discovery/internal/ports/inbound"
	"github.com/alchemorsel/discovery/internal/ports/outbound"
	"github.com/alchemorsel/discovery/pkg/healthcheck"
	"github.com/alchemorsel/discovery/pkg/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ConfigPath locates the configuration file. Empty searches the default paths.
type ConfigPath string

// Core wires everything needed to run discovery queries
func Core(path string) fx.Option {
	return fx.Options(
		fx.Supply(ConfigPath(path)),
		ConfigModule,
		LoggerModule,
		HealthModule,
		MonitoringModule,
		CatalogueModule,
		ClaimStoreModule,
		ImagingModule,
		DiscoveryModule,
	)
}

// Module wires the HTTP service
func Module(path string) fx.Option {
	return fx.Options(
		Core(path),
		HTTPModule,
		LifecycleModule,
	)
}

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func(path ConfigPath) (*config.Config, error) {
		return config.Load(string(path))
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	},
)

// HealthModule provides the health registry. Dependencies register their
// own checkers when they are built.
var HealthModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) *healthcheck.HealthCheck {
		return healthcheck.New(cfg.App.Version, log)
	},
)

// MonitoringModule provides tracing, the metrics collector and its observer views
var MonitoringModule = fx.Provide(
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*monitoring.TracingProvider, error) {
		tp, err := monitoring.NewTracingProvider(context.Background(), cfg.App, cfg.Monitoring.Tracing, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: tp.Shutdown})
		return tp, nil
	},
	monitoring.NewMetricsCollector,
	func(m *monitoring.MetricsCollector) filter.CacheObserver { return m },
	func(m *monitoring.MetricsCollector) imaging.Observer { return m },
	func(m *monitoring.MetricsCollector) imageprobe.LatencyObserver { return m },
)

// CatalogueModule provides the recipe catalogue and the active profile
var CatalogueModule = fx.Provide(
	catalogue.NewLoader,
	func(cfg *config.Config, loader *catalogue.Loader, metrics *monitoring.MetricsCollector, log *zap.Logger) (*recipe.Catalogue, error) {
		if cfg.Catalogue.Path == "" {
			cat := catalogue.Sample()
			log.Info("Using embedded sample catalogue", zap.Int("recipes", cat.Len()))
			metrics.CatalogueLoaded(cat.Len())
			return cat, nil
		}
		cat, err := loader.Load(cfg.Catalogue.Path)
		if err != nil {
			return nil, err
		}
		log.Info("Loaded catalogue",
			zap.String("path", cfg.Catalogue.Path),
			zap.Int("recipes", cat.Len()),
		)
		metrics.CatalogueLoaded(cat.Len())
		return cat, nil
	},
	func(cfg *config.Config, loader *catalogue.Loader) (user.Profile, error) {
		if cfg.Discovery.ProfilePath == "" {
			return user.Profile{}, nil
		}
		return loader.LoadProfile(cfg.Discovery.ProfilePath)
	},
)

// ClaimStoreModule provides the image claim store selected by configuration
var ClaimStoreModule = fx.Provide(
	func(lc fx.Lifecycle, cfg *config.Config, health *healthcheck.HealthCheck, log *zap.Logger) outbound.ClaimStore {
		if cfg.Images.ClaimStore != "redis" {
			log.Info("Using in-memory image claims")
			return memory.NewClaimStore()
		}

		client := redisstore.NewClient(cfg.Redis)
		store := redisstore.NewClaimStore(client, cfg.Images.ClaimKeyPrefix, log)
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := store.Ping(ctx); err != nil {
					return fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr(), err)
				}
				log.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr()))
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return client.Close()
			},
		})
		health.Register("redis", healthcheck.NewRedisChecker(client))
		return store
	},
)

// ImagingModule provides image verification and resolution
var ImagingModule = fx.Provide(
	func(cfg *config.Config, observer imageprobe.LatencyObserver, health *healthcheck.HealthCheck, log *zap.Logger) *imageprobe.Prober {
		prober := imageprobe.NewProber(cfg.Images, observer, log)
		health.Register("image_host", prober.Checker())
		return prober
	},
	func(p *imageprobe.Prober) outbound.ImageProber { return p },
	func(cfg *config.Config) *imaging.FallbackTable {
		return imaging.NewFallbackTable(cfg.Images.Fallbacks, cfg.Images.DefaultFallback)
	},
	func(cfg *config.Config) (*imaging.Generator, error) {
		return imaging.NewGenerator(cfg.Images.GeneratorBaseURL)
	},
	func(
		cfg *config.Config,
		prober outbound.ImageProber,
		fallbacks *imaging.FallbackTable,
		generator *imaging.Generator,
		observer imaging.Observer,
		log *zap.Logger,
	) *imaging.Resolver {
		return imaging.NewResolver(prober, fallbacks, generator, imaging.Config{
			MaxAttempts:   cfg.Images.MaxAttempts,
			BatchSize:     cfg.Images.BatchSize,
			RetryInterval: cfg.Images.RetryInterval,
		}, observer, log)
	},
	imaging.NewCache,
)

// DiscoveryModule provides the discovery facade
var DiscoveryModule = fx.Provide(
	func(cfg *config.Config, observer filter.CacheObserver, log *zap.Logger) (*filter.Pipeline, error) {
		return filter.NewPipeline(cfg.Discovery.PipelineCacheSize, observer, log)
	},
	discovery.NewFavorites,
	func(
		lc fx.Lifecycle,
		cfg *config.Config,
		cat *recipe.Catalogue,
		profile user.Profile,
		favorites *discovery.Favorites,
		pipeline *filter.Pipeline,
		resolver *imaging.Resolver,
		images *imaging.Cache,
		log *zap.Logger,
	) *discovery.Service {
		svc := discovery.NewDiscoveryService(cat, profile, favorites, pipeline, resolver, images, discovery.Config{
			PageSize:       cfg.Discovery.PageSize,
			SearchDebounce: cfg.Discovery.SearchDebounce,
			SettleDelay:    cfg.Discovery.SettleDelay,
		}, log)
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				svc.Close()
				return nil
			},
		})
		return svc
	},
	func(svc *discovery.Service) inbound.DiscoveryService { return svc },
)

// HTTPModule provides HTTP server and handlers
var HTTPModule = fx.Provide(
	func(
		svc inbound.DiscoveryService,
		favorites *discovery.Favorites,
		loader *catalogue.Loader,
		health *healthcheck.HealthCheck,
		log *zap.Logger,
	) *handlers.DiscoveryHandlers {
		return handlers.NewDiscoveryHandlers(svc, favorites, loader, health, log)
	},
	server.NewServer,
)

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// RegisterLifecycleHooks starts the HTTP server and the catalogue watcher
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	loader *catalogue.Loader,
	svc *discovery.Service,
	metrics *monitoring.MetricsCollector,
	tracing *monitoring.TracingProvider,
	srv *server.Server,
) {
	runCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting discovery service",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
				zap.String("addr", cfg.Server.Addr()),
				zap.Bool("tracing", tracing.Enabled()),
			)

			if cfg.Monitoring.EnableMetrics {
				go metrics.StartUptimeCounter(runCtx)
			}

			if cfg.Catalogue.Watch && cfg.Catalogue.Path != "" {
				watcher := catalogue.NewWatcher(cfg.Catalogue.Path, loader, cfg.Catalogue.Delay, func(cat *recipe.Catalogue) {
					svc.ReplaceCatalogue(runCtx, cat)
					metrics.CatalogueLoaded(cat.Len())
				}, log)
				watcher.OnError(func(error) { metrics.CatalogueReloadFailed() })
				go func() {
					if err := watcher.Run(runCtx); err != nil {
						log.Error("Catalogue watcher stopped", zap.Error(err))
					}
				}()
			}

			go func() {
				if err := srv.Start(); err != nil {
					log.Fatal("Failed to start HTTP server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Stopping discovery service")
			cancel()
			return srv.Shutdown(ctx)
		},
	})
}
