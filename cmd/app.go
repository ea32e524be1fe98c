package cmd

import (
	"context"
	"fmt"
	"log"

	"clearfeed/aggregator"
	"clearfeed/api"
	"clearfeed/cache"
	"clearfeed/cleaner"
	"clearfeed/config"
	"clearfeed/orchestrator"
	"clearfeed/rssfeeds"
)

// loadConfig reads the environment and applies command-line overrides.
func loadConfig() config.Config {
	cfg := config.Load()
	if flagFeeds != "" {
		cfg.FeedsConfig = flagFeeds
	}
	return cfg
}

// newAggregator builds the fetch pipeline: gofeed fetcher, optional AI
// cleaner and readability fill-in, fanned out over the source table.
// The returned model name is empty when AI cleaning is disabled.
func newAggregator(cfg config.Config) (*aggregator.Aggregator, *config.Sources, string, error) {
	sources, err := config.LoadSources(cfg.FeedsConfig)
	if err != nil {
		return nil, nil, "", err
	}

	opts := rssfeeds.Options{
		MaxItems:  cfg.MaxItemsPerSource,
		Timeout:   cfg.FeedTimeout,
		StableIDs: cfg.StableIDs,
		Throttle:  cleaner.FixedIntervalFactory(cfg.AIDelay),
	}

	var model string
	if completer := cleaner.NewCompleterFromConfig(cfg); completer != nil {
		opts.Cleaner = cleaner.New(completer)
		model = completer.ModelName()
		log.Printf("✓ AI cleaning enabled (model: %s)", model)
	} else {
		log.Println("⚠️  AI cleaning disabled (no GROQ_API_KEY or COHERE_API_KEY)")
	}

	if cfg.FullTextExtraction {
		opts.Extractor = rssfeeds.NewReadabilityExtractor(nil)
		log.Println("✓ Full-text extraction enabled")
	}

	return aggregator.New(sources, rssfeeds.NewFetcher(opts)), sources, model, nil
}

// cacheBackend names the store newStore will pick.
func cacheBackend(cfg config.Config) string {
	if cfg.RedisAddr == "" {
		return "memory"
	}
	return "redis"
}

// newStore picks Redis when REDIS_ADDR is set, otherwise the in-memory cache.
func newStore(cfg config.Config) (cache.Store, func() error, error) {
	if cacheBackend(cfg) == "memory" {
		log.Printf("✓ Using in-memory cache (TTL %s)", cfg.CacheTTL)
		return cache.NewMemory(cfg.CacheTTL), func() error { return nil }, nil
	}

	r, err := cache.NewRedis(cache.RedisConfigFrom(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize redis cache: %w", err)
	}
	log.Printf("✓ Using redis cache at %s (TTL %s, prefix %q)", cfg.RedisAddr, cfg.CacheTTL, cfg.CachePrefix)
	return r, r.Close, nil
}

// newService wires the cached feed service with its optional snapshot archive
// and reports the configuration the health endpoint exposes.
func newService(ctx context.Context, cfg config.Config) (*orchestrator.Service, api.Status, func() error, error) {
	agg, sources, model, err := newAggregator(cfg)
	if err != nil {
		return nil, api.Status{}, nil, err
	}
	store, closeStore, err := newStore(cfg)
	if err != nil {
		return nil, api.Status{}, nil, err
	}
	status := api.Status{Cache: cacheBackend(cfg), AIEnabled: model != "", AIModel: model}

	var archiver orchestrator.Archiver
	if a := orchestrator.NewSnapshotArchiveFromConfig(ctx, cfg); a != nil {
		archiver = a
	}
	return orchestrator.NewService(agg, store, sources, archiver), status, closeStore, nil
}
