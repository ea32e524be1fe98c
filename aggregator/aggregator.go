package aggregator

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"clearfeed/types"
)

// SourceFetcher retrieves the articles of one source.
type SourceFetcher interface {
	FetchSource(ctx context.Context, src types.Source, category string) ([]*types.Article, error)
}

// SourceTable resolves categories to their configured sources.
type SourceTable interface {
	Categories() []string
	Lookup(category string) ([]types.Source, bool)
}

// SourceOutcome is the result of one fan-out branch. Err is nil on success.
type SourceOutcome struct {
	Source   types.Source
	Category string
	Articles []*types.Article
	Err      error
}

// Failed reports whether the branch produced an error.
func (o SourceOutcome) Failed() bool { return o.Err != nil }

type panicError struct{ value any }

func (p panicError) Error() string { return fmt.Sprintf("fetcher panic: %v", p.value) }

// Aggregator fans out over sources and categories and merges the results.
type Aggregator struct {
	sources SourceTable
	fetcher SourceFetcher
}

// New creates an Aggregator.
func New(sources SourceTable, fetcher SourceFetcher) *Aggregator {
	return &Aggregator{sources: sources, fetcher: fetcher}
}

// CategoryOutcomes fetches every source of category concurrently and returns one
// outcome per source in configured order. Unknown categories yield no outcomes.
func (a *Aggregator) CategoryOutcomes(ctx context.Context, category string) []SourceOutcome {
	srcs, ok := a.sources.Lookup(category)
	if !ok {
		return nil
	}

	outcomes := make([]SourceOutcome, len(srcs))
	var wg sync.WaitGroup
	for i, src := range srcs {
		wg.Add(1)
		go func(i int, src types.Source) {
			defer wg.Done()
			outcomes[i] = a.fetchOne(ctx, src, category)
		}(i, src)
	}
	wg.Wait()

	return outcomes
}

func (a *Aggregator) fetchOne(ctx context.Context, src types.Source, category string) (out SourceOutcome) {
	out = SourceOutcome{Source: src, Category: category}

	// A panicking fetcher must not take sibling sources down with it
	defer func() {
		if r := recover(); r != nil {
			out.Articles = nil
			out.Err = panicError{value: r}
			log.Printf("❌ Error fetching %s: %v", src.Name, out.Err)
		}
	}()

	articles, err := a.fetcher.FetchSource(ctx, src, category)
	if err != nil {
		out.Err = err
		log.Printf("❌ Error fetching %s: %v", src.Name, err)
		return out
	}
	out.Articles = articles
	log.Printf("✓ Fetched %d articles from %s", len(articles), src.Name)
	return out
}

// FetchCategory returns all articles of a category, flattened in source order.
// Failed sources contribute nothing.
func (a *Aggregator) FetchCategory(ctx context.Context, category string) []*types.Article {
	return Flatten(a.CategoryOutcomes(ctx, category))
}

// FetchAll fetches every category concurrently and returns the merged articles
// sorted newest first. Articles with equal timestamps keep their fetch order.
func (a *Aggregator) FetchAll(ctx context.Context) []*types.Article {
	categories := a.sources.Categories()
	results := make([][]*types.Article, len(categories))

	var wg sync.WaitGroup
	for i, category := range categories {
		wg.Add(1)
		go func(i int, category string) {
			defer wg.Done()
			results[i] = a.FetchCategory(ctx, category)
		}(i, category)
	}
	wg.Wait()

	all := make([]*types.Article, 0)
	for _, r := range results {
		all = append(all, r...)
	}
	SortNewestFirst(all)
	return all
}

// Flatten collapses outcomes into one list, skipping failed branches.
func Flatten(outcomes []SourceOutcome) []*types.Article {
	articles := make([]*types.Article, 0)
	for _, o := range outcomes {
		if o.Failed() {
			continue
		}
		articles = append(articles, o.Articles...)
	}
	return articles
}

// SortNewestFirst orders articles by publication time descending, stably.
func SortNewestFirst(articles []*types.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PubDate.After(articles[j].PubDate)
	})
}
