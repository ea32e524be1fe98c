package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"clearfeed/cache"
	"clearfeed/types"
)

// ErrUnknownCategory is returned for categories absent from the source table.
var ErrUnknownCategory = errors.New("category not found")

// Aggregator produces fresh article lists.
type Aggregator interface {
	FetchAll(ctx context.Context) []*types.Article
	FetchCategory(ctx context.Context, category string) []*types.Article
}

// Catalog describes the configured categories.
type Catalog interface {
	Has(category string) bool
	Info() []types.CategoryInfo
}

// Archiver persists a copy of a freshly fetched global aggregate.
type Archiver interface {
	Archive(ctx context.Context, articles []*types.Article) error
}

// Service serves article lists from the cache, fetching on a miss.
type Service struct {
	agg      Aggregator
	store    cache.Store
	catalog  Catalog
	archiver Archiver

	uploads sync.WaitGroup
}

// NewService wires the service. archiver may be nil.
func NewService(agg Aggregator, store cache.Store, catalog Catalog, archiver Archiver) *Service {
	return &Service{agg: agg, store: store, catalog: catalog, archiver: archiver}
}

// AllArticles returns the global aggregate of every category, newest first.
func (s *Service) AllArticles(ctx context.Context) ([]*types.Article, error) {
	articles, hit, err := s.store.Get(ctx, cache.AllFeedsKey)
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}
	if hit {
		log.Printf("📦 Cache hit: %s (%d articles)", cache.AllFeedsKey, len(articles))
		return articles, nil
	}

	log.Printf("🔄 Cache miss: %s, fetching all feeds", cache.AllFeedsKey)
	articles = s.agg.FetchAll(ctx)
	if err := ctx.Err(); err != nil {
		// Partial results from an aborted fetch are not cached
		return nil, fmt.Errorf("fetching all feeds: %w", err)
	}
	s.put(ctx, cache.AllFeedsKey, articles)
	s.archive(articles)
	return articles, nil
}

// CategoryArticles returns the articles of one category. Unknown categories
// return ErrUnknownCategory without any fetch.
func (s *Service) CategoryArticles(ctx context.Context, category string) ([]*types.Article, error) {
	if !s.catalog.Has(category) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}

	key := cache.CategoryKey(category)
	articles, hit, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}
	if hit {
		log.Printf("📦 Cache hit: %s (%d articles)", key, len(articles))
		return articles, nil
	}

	log.Printf("🔄 Cache miss: %s", key)
	return s.fetchCategory(ctx, category)
}

// Refresh drops every cached entry and rebuilds the global aggregate.
func (s *Service) Refresh(ctx context.Context) ([]*types.Article, error) {
	if err := s.store.FlushAll(ctx); err != nil {
		return nil, fmt.Errorf("flushing cache: %w", err)
	}
	log.Println("🗑️  Cache flushed")
	return s.AllArticles(ctx)
}

// RefreshCategory re-fetches one category and replaces its cache entry.
func (s *Service) RefreshCategory(ctx context.Context, category string) ([]*types.Article, error) {
	if !s.catalog.Has(category) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	return s.fetchCategory(ctx, category)
}

// Categories lists the configured categories with their sources.
func (s *Service) Categories() []types.CategoryInfo {
	return s.catalog.Info()
}

// Close waits for pending snapshot uploads.
func (s *Service) Close() {
	s.uploads.Wait()
}

func (s *Service) fetchCategory(ctx context.Context, category string) ([]*types.Article, error) {
	articles := s.agg.FetchCategory(ctx, category)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", category, err)
	}
	s.put(ctx, cache.CategoryKey(category), articles)
	return articles, nil
}

// put stores a fresh list. A failed write still serves the fetched articles.
func (s *Service) put(ctx context.Context, key string, articles []*types.Article) {
	if err := s.store.Set(ctx, key, articles); err != nil {
		log.Printf("⚠️  Failed to cache %s: %v", key, err)
		return
	}
	log.Printf("✓ Cached %s (%d articles)", key, len(articles))
}

func (s *Service) archive(articles []*types.Article) {
	if s.archiver == nil {
		return
	}
	s.uploads.Add(1)
	go func() {
		defer s.uploads.Done()
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()
		if err := s.archiver.Archive(ctx, articles); err != nil {
			log.Printf("❌ Snapshot upload failed: %v", err)
		}
	}()
}
