package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/khrees2412/jobmatch/internal/config"
	"github.com/khrees2412/jobmatch/internal/database"
	"github.com/khrees2412/jobmatch/internal/geo"
	"github.com/khrees2412/jobmatch/internal/logger"
	"github.com/khrees2412/jobmatch/internal/matcher"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// App is the dependency container for the CLI application
type App struct {
	Store      *database.Store
	Config     *config.Config
	Logger     *zap.Logger
	HTTPClient *http.Client
	Redis      *redis.Client
	Engine     *matcher.Engine
}

// NewApp initializes and returns a new App instance
func NewApp(ctx context.Context) (*App, error) {
	// Initialize config
	if err := config.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}
	cfg := config.AppConfig

	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	store, err := database.Open(ctx, database.Options{
		Driver: cfg.Database.Driver,
		Path:   cfg.Database.Path,
		URL:    cfg.Database.URL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	a := &App{
		Store:  store,
		Config: cfg,
		Logger: log,
		// Create HTTP client with timeout
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	if err := a.initEngine(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) initEngine(ctx context.Context) error {
	algorithm, err := matcher.LoadAlgorithm(ctx, a.Store)
	if err != nil {
		return fmt.Errorf("failed to load matching algorithm: %w", err)
	}

	opts := []matcher.Option{matcher.WithWorkers(a.Config.Matching.Workers)}
	if estimator := a.distanceEstimator(ctx); estimator != nil {
		opts = append(opts, matcher.WithDistance(estimator))
	}

	a.Engine = matcher.New(a.Store, algorithm, a.Logger, opts...)
	a.Logger.Debug("matching engine ready",
		zap.String("algorithm", algorithm.Name),
		zap.String("database", string(a.Store.Dialect())),
	)
	return nil
}

// distanceEstimator builds Nominatim, optionally behind the Redis cache. Without a
// geocoder the engine scores non-remote locations as neutral.
func (a *App) distanceEstimator(ctx context.Context) *geo.Estimator {
	gc := a.Config.Geocoder
	if !gc.Enabled {
		a.Logger.Debug("geocoder disabled, location scores will be neutral")
		return nil
	}

	var geocoder geo.Geocoder = geo.NewNominatim(a.HTTPClient, gc.URL, gc.UserAgent)

	if url := a.Config.Redis.URL; url != "" {
		rdb, err := geo.NewRedisClient(ctx, url)
		if err != nil {
			a.Logger.Warn("redis unavailable, geocoding without cache", zap.Error(err))
		} else {
			a.Redis = rdb
			geocoder = geo.NewCachedGeocoder(geocoder, rdb, a.Config.Redis.TTL, a.Logger)
		}
	}

	return geo.NewEstimator(geocoder, gc.Timeout)
}

// Close closes all resources
func (a *App) Close() error {
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// DefaultLimit returns the configured result count for finder commands
func (a *App) DefaultLimit() int {
	if a.Config != nil && a.Config.Matching.DefaultLimit > 0 {
		return a.Config.Matching.DefaultLimit
	}
	return matcher.DefaultFindLimit
}
