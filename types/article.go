package types

import (
	"time"
)

// Source describes a single RSS/Atom endpoint contributing to a category.
type Source struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
	Icon string `json:"icon" yaml:"icon"`
}

// Article represents a normalized feed item, optionally cleaned by the AI rewriter
type Article struct {
	ID             string    `json:"id"`
	OriginalTitle  string    `json:"originalTitle"`
	Title          string    `json:"title"`
	Excerpt        string    `json:"excerpt"`
	Content        string    `json:"content"`
	CleanedContent string    `json:"cleanedContent"`
	Source         string    `json:"source"`
	SourceIcon     string    `json:"sourceIcon"`
	Category       string    `json:"category"`
	Time           string    `json:"time"`
	PubDate        time.Time `json:"pubDate"`
	Link           string    `json:"link"`
	ReadingTime    int       `json:"readingTime"`
	OriginalLength int       `json:"originalLength"`
	CleanedLength  int       `json:"cleanedLength"`
	ClarityScore   int       `json:"clarityScore"`
	KeyPoints      []string  `json:"keyPoints"`
	BiasRemoved    bool      `json:"biasRemoved"`
}

// CleanResult is the output of the text cleaner for one article.
// Every code path of the cleaner produces a valid CleanResult.
type CleanResult struct {
	CleanedTitle   string   `json:"cleanedTitle"`
	Summary        string   `json:"summary"`
	CleanedContent string   `json:"cleanedContent"`
	ClarityScore   int      `json:"clarityScore"`
	KeyPoints      []string `json:"keyPoints"`
	BiasRemoved    bool     `json:"biasRemoved"`
}

// CategoryInfo is the public description of a configured category
type CategoryInfo struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Sources []string `json:"sources"`
}

// FeedResult is the top-level wrapper for JSON output of a fetch cycle
type FeedResult struct {
	Category     string     `json:"category,omitempty"`
	FetchedAt    time.Time  `json:"fetched_at"`
	ArticleCount int        `json:"article_count"`
	Articles     []*Article `json:"articles"`
}
