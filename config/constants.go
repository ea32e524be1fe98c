package config

import "time"

// Feed Fetching Constants
const (
	// MaxItemsPerSource caps how many entries are taken from each feed
	MaxItemsPerSource = 5

	// FeedTimeout bounds a single feed download
	FeedTimeout = 10 * time.Second

	// FeedUserAgent is sent with every feed request
	FeedUserAgent = "ClearFeed/1.0 (RSS Reader)"

	// WordsPerMinute is the reading speed used for reading time estimates
	WordsPerMinute = 200
)

// AI Cleaning Constants
const (
	// MinCleanLength is the shortest content worth sending to the rewriter
	MinCleanLength = 50

	// MaxPromptContent truncates article content inside the prompt
	MaxPromptContent = 2000

	// SummaryFallbackLength is used when the rewriter gives no summary
	SummaryFallbackLength = 200

	// AIRequestDelay spaces successive rewriter calls within one source batch
	AIRequestDelay = 1 * time.Second

	// AIRequestTimeout bounds a single rewriter call
	AIRequestTimeout = 60 * time.Second

	// AITemperature and AIMaxTokens are passed to the completion backend
	AITemperature = 0.3
	AIMaxTokens   = 1000
)

// Clarity Score Constants
const (
	ClarityMin = 1
	ClarityMax = 100

	// ClaritySkipped is reported when content is too short to clean
	ClaritySkipped = 75

	// ClarityFailed is reported when the rewriter call fails
	ClarityFailed = 70

	// ClarityDefault is assumed when the rewriter omits a score
	ClarityDefault = 85
)

// Cache Constants
const (
	// CacheTTL is how long an aggregate stays fresh
	CacheTTL = 300 * time.Second

	// DefaultCachePrefix namespaces keys in shared backends such as Redis
	DefaultCachePrefix = "clearfeed:"
)

// Server Constants
const (
	DefaultPort     = "3000"
	ShutdownTimeout = 10 * time.Second
)
