package aggregator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"clearfeed/config"
	"clearfeed/types"
)

type fakeFetcher struct {
	mu      sync.Mutex
	calls   map[string]int
	fail    map[string]bool
	panics  map[string]bool
	perItem int
	base    time.Time
	times   map[string][]time.Time
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		calls:   make(map[string]int),
		fail:    make(map[string]bool),
		panics:  make(map[string]bool),
		times:   make(map[string][]time.Time),
		perItem: 2,
		base:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeFetcher) FetchSource(ctx context.Context, src types.Source, category string) ([]*types.Article, error) {
	f.mu.Lock()
	f.calls[src.Name]++
	fail, panics := f.fail[src.Name], f.panics[src.Name]
	times := f.times[src.Name]
	f.mu.Unlock()

	if panics {
		panic("feed exploded")
	}
	if fail {
		return nil, errors.New("connection refused")
	}

	n := f.perItem
	if times != nil {
		n = len(times)
	}
	out := make([]*types.Article, 0, n)
	for i := 0; i < n; i++ {
		pub := f.base
		if times != nil {
			pub = times[i]
		}
		out = append(out, &types.Article{
			ID:       fmt.Sprintf("%s-%s-%d", category, src.Name, i),
			Source:   src.Name,
			Category: category,
			PubDate:  pub,
		})
	}
	return out, nil
}

func (f *fakeFetcher) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func testSources(t *testing.T) *config.Sources {
	t.Helper()
	s, err := config.NewSources([]config.Category{
		{ID: "technology", Sources: []types.Source{
			{Name: "A", URL: "http://a"}, {Name: "B", URL: "http://b"}, {Name: "C", URL: "http://c"},
		}},
		{ID: "science", Sources: []types.Source{{Name: "D", URL: "http://d"}}},
		{ID: "empty"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestFetchCategoryOnlyThatCategory(t *testing.T) {
	f := newFakeFetcher()
	agg := New(testSources(t), f)

	articles := agg.FetchCategory(context.Background(), "technology")
	if len(articles) != 6 {
		t.Fatalf("expected 6 articles, got %d", len(articles))
	}
	for _, a := range articles {
		if a.Category != "technology" {
			t.Errorf("article %s has category %q", a.ID, a.Category)
		}
	}
	// Each source keeps its own order, and sources keep configured order.
	want := []string{"A", "A", "B", "B", "C", "C"}
	for i, a := range articles {
		if a.Source != want[i] {
			t.Errorf("article %d from %s, want %s", i, a.Source, want[i])
		}
	}
	if f.calls["D"] != 0 {
		t.Error("science source should not be fetched")
	}
}

func TestFetchCategoryUnknown(t *testing.T) {
	f := newFakeFetcher()
	agg := New(testSources(t), f)

	articles := agg.FetchCategory(context.Background(), "sports")
	if articles == nil || len(articles) != 0 {
		t.Errorf("expected empty non-nil list, got %v", articles)
	}
	if f.totalCalls() != 0 {
		t.Errorf("no fetch should be attempted, got %d calls", f.totalCalls())
	}
}

func TestOneFailingSourceDoesNotBlockOthers(t *testing.T) {
	f := newFakeFetcher()
	f.fail["B"] = true
	agg := New(testSources(t), f)

	outcomes := agg.CategoryOutcomes(context.Background(), "technology")
	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}
	if outcomes[0].Failed() || !outcomes[1].Failed() || outcomes[2].Failed() {
		t.Errorf("unexpected failure pattern: %v %v %v", outcomes[0].Err, outcomes[1].Err, outcomes[2].Err)
	}
	if outcomes[1].Source.Name != "B" || outcomes[1].Category != "technology" {
		t.Errorf("outcome should identify its source: %+v", outcomes[1])
	}

	articles := agg.FetchCategory(context.Background(), "technology")
	if len(articles) != 4 {
		t.Fatalf("expected 4 articles from A and C, got %d", len(articles))
	}
	for _, a := range articles {
		if a.Source == "B" {
			t.Error("failed source contributed articles")
		}
	}
}

func TestPanickingSourceIsContained(t *testing.T) {
	f := newFakeFetcher()
	f.panics["A"] = true
	agg := New(testSources(t), f)

	outcomes := agg.CategoryOutcomes(context.Background(), "technology")
	if !outcomes[0].Failed() {
		t.Fatal("panicking source should be reported as failed")
	}
	if got := len(Flatten(outcomes)); got != 4 {
		t.Errorf("expected 4 articles from B and C, got %d", got)
	}
}

func TestFetchAllSortedNewestFirst(t *testing.T) {
	f := newFakeFetcher()
	base := f.base
	f.times["A"] = []time.Time{base.Add(1 * time.Hour), base.Add(5 * time.Hour)}
	f.times["B"] = []time.Time{base.Add(3 * time.Hour)}
	f.times["C"] = []time.Time{}
	f.times["D"] = []time.Time{base.Add(4 * time.Hour), base.Add(2 * time.Hour)}
	agg := New(testSources(t), f)

	articles := agg.FetchAll(context.Background())
	if len(articles) != 5 {
		t.Fatalf("expected 5 articles, got %d", len(articles))
	}
	for i := 1; i < len(articles); i++ {
		if articles[i].PubDate.After(articles[i-1].PubDate) {
			t.Errorf("articles not sorted descending at %d", i)
		}
	}
	if articles[0].ID != "technology-A-1" || articles[4].ID != "technology-A-0" {
		t.Errorf("unexpected order: first %s last %s", articles[0].ID, articles[4].ID)
	}
}

func TestFetchAllStableForEqualTimestamps(t *testing.T) {
	f := newFakeFetcher()
	agg := New(testSources(t), f)

	articles := agg.FetchAll(context.Background())
	want := []string{
		"technology-A-0", "technology-A-1",
		"technology-B-0", "technology-B-1",
		"technology-C-0", "technology-C-1",
		"science-D-0", "science-D-1",
	}
	if len(articles) != len(want) {
		t.Fatalf("expected %d articles, got %d", len(want), len(articles))
	}
	for i, a := range articles {
		if a.ID != want[i] {
			t.Errorf("position %d = %s, want %s", i, a.ID, want[i])
		}
	}
}

func TestFetchAllNoSources(t *testing.T) {
	s, err := config.NewSources(nil)
	if err != nil {
		t.Fatal(err)
	}
	articles := New(s, newFakeFetcher()).FetchAll(context.Background())
	if articles == nil || len(articles) != 0 {
		t.Errorf("expected empty non-nil list, got %v", articles)
	}
}

func TestSortNewestFirst(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	in := []*types.Article{
		{ID: "old", PubDate: t0},
		{ID: "tie-1", PubDate: t0.Add(time.Hour)},
		{ID: "new", PubDate: t0.Add(2 * time.Hour)},
		{ID: "tie-2", PubDate: t0.Add(time.Hour)},
	}
	SortNewestFirst(in)
	want := []string{"new", "tie-1", "tie-2", "old"}
	for i, a := range in {
		if a.ID != want[i] {
			t.Errorf("position %d = %s, want %s", i, a.ID, want[i])
		}
	}
}
