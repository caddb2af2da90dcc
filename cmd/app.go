package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/itinera/internal/config"
	"github.com/UnknownOlympus/itinera/internal/itinerary"
	"github.com/UnknownOlympus/itinera/internal/metrics"
	"github.com/UnknownOlympus/itinera/internal/models"
	"github.com/UnknownOlympus/itinera/internal/places"
	"github.com/UnknownOlympus/itinera/internal/readiness"
	"github.com/UnknownOlympus/itinera/internal/repository"
	"github.com/UnknownOlympus/itinera/internal/service"
	"github.com/UnknownOlympus/itinera/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// placeKeyField is the JSON field holding the key of a stored place.
const placeKeyField = "placeId"

// app is the wired service shared by the commands.
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	registry *prometheus.Registry
	store    store.Store
	service  *service.ItineraryService
	closers  []func()
}

// newApp loads the configuration and connects the store. The places provider and
// its cache are only built withPlaces; otherwise the service gets a disabled client
// and no API key is needed.
func newApp(ctx context.Context, withPlaces bool) (*app, error) {
	cfg := config.MustLoad(envFile)
	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	a := &app{cfg: cfg, log: logger, registry: reg}

	opened, err := store.Open(ctx, storeConfig(cfg, logger))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	a.closers = append(a.closers, opened.Close)

	if err = opened.Migrate(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to migrate store: %w", err)
	}
	a.store = store.NewInstrumented(opened.Store, cfg.Store.Type, appMetrics)

	client, err := a.placesClient(ctx, appMetrics, withPlaces)
	if err != nil {
		a.Close()
		return nil, err
	}

	repo := repository.New[models.Place](a.store, cfg.Collection, placeKeyField, logger)
	grouper := itinerary.NewGrouper(itinerary.ResolveLocale(cfg.Locale), cfg.Timezone)
	a.service = service.NewItineraryService(logger, repo, client, grouper, appMetrics)

	return a, nil
}

// placesClient builds the instrumented provider, cached when redis is configured.
func (a *app) placesClient(ctx context.Context, m *metrics.Metrics, enabled bool) (places.Client, error) {
	if !enabled {
		return places.NewDisabled(), nil
	}

	// Create places client using factory pattern based on configuration
	client, err := places.NewClient(places.ClientConfig{
		Type:      places.ClientType(a.cfg.Places.Provider),
		APIKey:    a.cfg.Places.APIKey,
		RateLimit: a.cfg.Places.RateLimit,
		Language:  a.cfg.Places.Language,
		Logger:    a.log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create places client: %w", err)
	}
	client = places.NewInstrumented(client, a.cfg.Places.Provider, m)
	a.log.InfoContext(ctx, "Places provider initialized", "type", a.cfg.Places.Provider)

	if a.cfg.Cache.Addr != "" {
		return a.withCache(ctx, client, m)
	}

	return client, nil
}

func storeConfig(cfg *config.Config, logger *slog.Logger) store.Config {
	return store.Config{
		Type:    store.Type(cfg.Store.Type),
		Project: cfg.ProjectID,
		Postgres: store.PostgresConfig{
			Host:     cfg.Store.Database.Host,
			Port:     cfg.Store.Database.Port,
			User:     cfg.Store.Database.User,
			Password: cfg.Store.Database.Password,
			Name:     cfg.Store.Database.Name,
		},
		MongoURI:       cfg.Store.MongoURI,
		PollInterval:   cfg.PollInterval,
		StartupTimeout: cfg.StartupTimeout,
		Logger:         logger,
	}
}

// withCache puts the redis details cache in front of client.
func (a *app) withCache(ctx context.Context, client places.Client, m *metrics.Metrics) (places.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: a.cfg.Cache.Addr,
		DB:   a.cfg.Cache.DB,
	})

	ping := func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	if err := readiness.WaitTimeout(ctx, a.cfg.PollInterval, a.cfg.StartupTimeout, ping); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}
	a.closers = append(a.closers, func() { _ = rdb.Close() })
	a.log.InfoContext(ctx, "Place details cache enabled", "addr", a.cfg.Cache.Addr, "ttl", a.cfg.Cache.TTL)

	return places.NewCached(client, rdb, a.cfg.Cache.TTL, m, a.log), nil
}

// Close releases the connections in reverse order of opening.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
