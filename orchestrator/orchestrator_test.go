package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"clearfeed/cache"
	"clearfeed/types"
)

type fakeAggregator struct {
	mu            sync.Mutex
	allCalls      int
	categoryCalls map[string]int
}

func newFakeAggregator() *fakeAggregator {
	return &fakeAggregator{categoryCalls: make(map[string]int)}
}

func (f *fakeAggregator) FetchAll(ctx context.Context) []*types.Article {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.allCalls++
	return []*types.Article{{ID: "all-1"}, {ID: "all-2"}}
}

func (f *fakeAggregator) FetchCategory(ctx context.Context, category string) []*types.Article {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.categoryCalls[category]++
	return []*types.Article{{ID: category + "-1", Category: category}}
}

type fakeCatalog map[string][]string

func (c fakeCatalog) Has(category string) bool {
	_, ok := c[category]
	return ok
}

func (c fakeCatalog) Info() []types.CategoryInfo {
	return []types.CategoryInfo{{ID: "technology", Name: "Technology", Sources: c["technology"]}}
}

type brokenStore struct {
	getErr, setErr, flushErr error
}

func (b brokenStore) Get(context.Context, string) ([]*types.Article, bool, error) {
	return nil, false, b.getErr
}
func (b brokenStore) Set(context.Context, string, []*types.Article) error { return b.setErr }
func (b brokenStore) FlushAll(context.Context) error                      { return b.flushErr }

type fakeArchiver struct {
	mu       sync.Mutex
	archived [][]*types.Article
	err      error
}

func (f *fakeArchiver) Archive(ctx context.Context, articles []*types.Article) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.archived = append(f.archived, articles)
	return f.err
}

var catalog = fakeCatalog{"technology": {"Hacker News"}, "science": {"NASA"}}

func newTestService() (*Service, *fakeAggregator, *fakeArchiver) {
	agg := newFakeAggregator()
	arch := &fakeArchiver{}
	return NewService(agg, cache.NewMemory(time.Minute), catalog, arch), agg, arch
}

func TestAllArticlesCachesResult(t *testing.T) {
	svc, agg, _ := newTestService()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		articles, err := svc.AllArticles(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(articles) != 2 {
			t.Fatalf("expected 2 articles, got %d", len(articles))
		}
	}
	if agg.allCalls != 1 {
		t.Errorf("expected 1 fetch, got %d", agg.allCalls)
	}
}

func TestRefreshForcesFreshFetch(t *testing.T) {
	svc, agg, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.AllArticles(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CategoryArticles(ctx, "science"); err != nil {
		t.Fatal(err)
	}

	articles, err := svc.Refresh(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(articles) != 2 {
		t.Errorf("refresh returned %d articles", len(articles))
	}
	if agg.allCalls != 2 {
		t.Errorf("expected refresh to refetch, got %d global fetches", agg.allCalls)
	}

	if _, err := svc.AllArticles(ctx); err != nil {
		t.Fatal(err)
	}
	if agg.allCalls != 2 {
		t.Errorf("read after refresh should hit the cache, got %d fetches", agg.allCalls)
	}

	// Category entries were flushed too
	if _, err := svc.CategoryArticles(ctx, "science"); err != nil {
		t.Fatal(err)
	}
	if agg.categoryCalls["science"] != 2 {
		t.Errorf("expected category refetch after flush, got %d", agg.categoryCalls["science"])
	}
}

func TestCategoryArticles(t *testing.T) {
	svc, agg, _ := newTestService()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		articles, err := svc.CategoryArticles(ctx, "technology")
		if err != nil {
			t.Fatal(err)
		}
		if len(articles) != 1 || articles[0].Category != "technology" {
			t.Fatalf("unexpected articles %v", articles)
		}
	}
	if agg.categoryCalls["technology"] != 1 {
		t.Errorf("expected one fetch, got %d", agg.categoryCalls["technology"])
	}
	if agg.allCalls != 0 {
		t.Error("category request should not trigger a global fetch")
	}
}

func TestUnknownCategory(t *testing.T) {
	svc, agg, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.CategoryArticles(ctx, "sports"); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("expected ErrUnknownCategory, got %v", err)
	}
	if _, err := svc.RefreshCategory(ctx, "sports"); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("expected ErrUnknownCategory from RefreshCategory, got %v", err)
	}
	if len(agg.categoryCalls) != 0 || agg.allCalls != 0 {
		t.Error("unknown category must not fetch")
	}
}

func TestRefreshCategoryReplacesEntry(t *testing.T) {
	svc, agg, _ := newTestService()
	ctx := context.Background()

	_, _ = svc.CategoryArticles(ctx, "science")
	if _, err := svc.RefreshCategory(ctx, "science"); err != nil {
		t.Fatal(err)
	}
	_, _ = svc.CategoryArticles(ctx, "science")
	if agg.categoryCalls["science"] != 2 {
		t.Errorf("expected 2 fetches, got %d", agg.categoryCalls["science"])
	}
}

func TestCacheFailures(t *testing.T) {
	boom := errors.New("redis unreachable")
	ctx := context.Background()

	t.Run("get fails", func(t *testing.T) {
		svc := NewService(newFakeAggregator(), brokenStore{getErr: boom}, catalog, nil)
		if _, err := svc.AllArticles(ctx); !errors.Is(err, boom) {
			t.Errorf("AllArticles err = %v", err)
		}
		if _, err := svc.CategoryArticles(ctx, "technology"); !errors.Is(err, boom) {
			t.Errorf("CategoryArticles err = %v", err)
		}
	})

	t.Run("flush fails", func(t *testing.T) {
		agg := newFakeAggregator()
		svc := NewService(agg, brokenStore{flushErr: boom}, catalog, nil)
		if _, err := svc.Refresh(ctx); !errors.Is(err, boom) {
			t.Errorf("Refresh err = %v", err)
		}
		if agg.allCalls != 0 {
			t.Error("failed flush should not fetch")
		}
	})

	t.Run("set fails", func(t *testing.T) {
		svc := NewService(newFakeAggregator(), brokenStore{setErr: boom}, catalog, nil)
		articles, err := svc.AllArticles(ctx)
		if err != nil || len(articles) != 2 {
			t.Errorf("expected fetched articles despite write failure, got %v, %v", articles, err)
		}
	})
}

func TestCanceledFetchIsNotCached(t *testing.T) {
	svc, agg, arch := newTestService()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.AllArticles(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := svc.AllArticles(context.Background()); err != nil {
		t.Fatal(err)
	}
	if agg.allCalls != 2 {
		t.Errorf("aborted fetch should not populate the cache, got %d fetches", agg.allCalls)
	}
	svc.Close()
	if len(arch.archived) != 1 {
		t.Errorf("expected 1 snapshot, got %d", len(arch.archived))
	}
}

func TestSnapshotOnlyForFreshGlobalFetch(t *testing.T) {
	svc, _, arch := newTestService()
	ctx := context.Background()

	_, _ = svc.AllArticles(ctx)
	_, _ = svc.AllArticles(ctx)
	_, _ = svc.CategoryArticles(ctx, "technology")
	_, _ = svc.Refresh(ctx)
	svc.Close()

	if len(arch.archived) != 2 {
		t.Errorf("expected 2 snapshots, got %d", len(arch.archived))
	}
}

func TestArchiveFailureIsNotSurfaced(t *testing.T) {
	agg := newFakeAggregator()
	arch := &fakeArchiver{err: errors.New("access denied")}
	svc := NewService(agg, cache.NewMemory(time.Minute), catalog, arch)

	if _, err := svc.AllArticles(context.Background()); err != nil {
		t.Errorf("archive failure leaked: %v", err)
	}
	svc.Close()
}

func TestCategories(t *testing.T) {
	svc, _, _ := newTestService()
	info := svc.Categories()
	if len(info) != 1 || info[0].ID != "technology" || info[0].Sources[0] != "Hacker News" {
		t.Errorf("unexpected categories %+v", info)
	}
}
