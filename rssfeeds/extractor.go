package rssfeeds

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"clearfeed/config"

	readability "github.com/go-shiori/go-readability"
)

const extractorTimeout = 30 * time.Second

// Extractor fetches an article page and returns its readable plain text.
type Extractor interface {
	Extract(ctx context.Context, pageURL string) (string, error)
}

// ReadabilityExtractor pulls full article text with go-readability.
type ReadabilityExtractor struct {
	client *http.Client
}

// NewReadabilityExtractor creates an extractor. A nil client gets a 30s timeout.
func NewReadabilityExtractor(client *http.Client) *ReadabilityExtractor {
	if client == nil {
		client = &http.Client{Timeout: extractorTimeout}
	}
	return &ReadabilityExtractor{client: client}
}

func (e *ReadabilityExtractor) Extract(ctx context.Context, pageURL string) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid article URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", config.FeedUserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching article page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching article page: status %d", resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return "", fmt.Errorf("readability extraction failed: %w", err)
	}

	return strings.Join(strings.Fields(article.TextContent), " "), nil
}
