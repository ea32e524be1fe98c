package rssfeeds

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"clearfeed/cleaner"
	"clearfeed/config"
	"clearfeed/types"

	"github.com/mmcdole/gofeed"
)

// ContentCleaner rewrites one article. Implementations must never fail.
type ContentCleaner interface {
	Clean(ctx context.Context, title, content string) types.CleanResult
}

// Options configures a Fetcher. Zero values select the defaults.
type Options struct {
	MaxItems  int
	Timeout   time.Duration
	StableIDs bool

	// Cleaner is optional; without it articles keep their original text.
	Cleaner  ContentCleaner
	Throttle cleaner.ThrottleFactory

	// Extractor is optional and fills in content for items whose feed text is too short.
	Extractor Extractor

	Client *http.Client
	Now    func() time.Time
}

// Fetcher downloads one feed and maps its entries into articles.
type Fetcher struct {
	parser    *gofeed.Parser
	maxItems  int
	timeout   time.Duration
	stableIDs bool
	cleaner   ContentCleaner
	throttle  cleaner.ThrottleFactory
	extractor Extractor
	now       func() time.Time
}

// NewFetcher creates a Fetcher with the given options.
func NewFetcher(opts Options) *Fetcher {
	parser := gofeed.NewParser()
	parser.UserAgent = config.FeedUserAgent
	if opts.Client != nil {
		parser.Client = opts.Client
	}
	if opts.MaxItems <= 0 {
		opts.MaxItems = config.MaxItemsPerSource
	}
	if opts.Timeout <= 0 {
		opts.Timeout = config.FeedTimeout
	}
	if opts.Throttle == nil {
		opts.Throttle = cleaner.FixedIntervalFactory(config.AIRequestDelay)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Fetcher{
		parser:    parser,
		maxItems:  opts.MaxItems,
		timeout:   opts.Timeout,
		stableIDs: opts.StableIDs,
		cleaner:   opts.Cleaner,
		throttle:  opts.Throttle,
		extractor: opts.Extractor,
		now:       opts.Now,
	}
}

// FetchSource retrieves and parses a feed, returning at most maxItems articles in feed order.
// Cleaning calls inside the batch run one at a time, spaced by the throttle.
func (f *Fetcher) FetchSource(ctx context.Context, src types.Source, category string) ([]*types.Article, error) {
	fctx, cancel := context.WithTimeout(ctx, f.timeout)
	feed, err := f.parser.ParseURLWithContext(src.URL, fctx)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed %s: %w", src.Name, err)
	}

	count := min(len(feed.Items), f.maxItems)
	articles := make([]*types.Article, 0, count)

	var throttle cleaner.Throttle
	if f.cleaner != nil {
		throttle = f.throttle()
	}

	for i := 0; i < count; i++ {
		item := feed.Items[i]
		if item == nil {
			continue
		}

		article := f.mapItem(ctx, item, feed.FeedType, src, category, i)

		if f.cleaner != nil {
			if err := throttle.Wait(ctx); err != nil {
				return nil, fmt.Errorf("cleaning %s interrupted: %w", src.Name, err)
			}
			applyCleaning(article, f.cleaner.Clean(ctx, article.OriginalTitle, article.Content))
		} else {
			applyCleaning(article, cleaner.Skipped(article.OriginalTitle, article.Content))
		}

		articles = append(articles, article)
	}

	return articles, nil
}

// itemBody picks the raw text for an entry. RSS items carry their text in
// <description> and only fall back to content:encoded; Atom and JSON feeds
// prefer the full content over the summary.
func itemBody(item *gofeed.Item, feedType string) string {
	first, second := item.Content, item.Description
	if feedType == "rss" {
		first, second = item.Description, item.Content
	}
	if strings.TrimSpace(first) != "" {
		return first
	}
	return second
}

// mapItem normalizes a raw feed entry; cleaning fields are filled in afterwards.
func (f *Fetcher) mapItem(ctx context.Context, item *gofeed.Item, feedType string, src types.Source, category string, index int) *types.Article {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		title = "Untitled"
	}

	content := StripHTML(itemBody(item, feedType))

	link := strings.TrimSpace(item.Link)
	if f.extractor != nil && link != "" && CharCount(content) < config.MinCleanLength {
		if text, err := f.extractor.Extract(ctx, link); err != nil {
			log.Printf("⚠️  Full-text extraction failed for %s: %v", link, err)
		} else if text != "" {
			content = text
		}
	}

	now := f.now()
	published := now
	timeStr := "Recently"
	if item.PublishedParsed != nil {
		published = *item.PublishedParsed
		timeStr = TimeAgo(published, now)
	} else if item.UpdatedParsed != nil {
		published = *item.UpdatedParsed
		timeStr = TimeAgo(published, now)
	}

	id := PositionID(category, src.Name, index)
	if f.stableIDs {
		id = StableID(link, title)
	}
	if link == "" {
		link = "#"
	}

	return &types.Article{
		ID:             id,
		OriginalTitle:  title,
		Content:        content,
		Source:         src.Name,
		SourceIcon:     src.Icon,
		Category:       category,
		Time:           timeStr,
		PubDate:        published,
		Link:           link,
		ReadingTime:    ReadingTime(content),
		OriginalLength: CharCount(content),
	}
}

func applyCleaning(a *types.Article, res types.CleanResult) {
	a.Title = res.CleanedTitle
	a.Excerpt = res.Summary
	a.CleanedContent = res.CleanedContent
	a.CleanedLength = CharCount(res.CleanedContent)
	a.ClarityScore = cleaner.ClampClarity(res.ClarityScore)
	a.KeyPoints = res.KeyPoints
	if a.KeyPoints == nil {
		a.KeyPoints = []string{}
	}
	a.BiasRemoved = res.BiasRemoved
}
