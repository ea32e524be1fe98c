package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting read from the environment.
// Optional integrations stay disabled while their required variables are empty.
type Config struct {
	Port string

	// AI rewriting
	AIEnabled    bool
	GroqAPIKey   string
	CohereAPIKey string
	AIModel      string
	AIDelay      time.Duration

	// Fetching
	FeedsConfig        string
	MaxItemsPerSource  int
	FeedTimeout        time.Duration
	FullTextExtraction bool
	StableIDs          bool

	// Cache
	CacheTTL    time.Duration
	CachePrefix string
	RedisAddr   string
	RedisPass   string
	RedisDB     int

	// S3 snapshot archive
	S3Bucket       string
	S3Region       string
	S3Profile      string
	S3Prefix       string
	S3UsePathStyle bool

	// Kafka refresh consumer
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	// Cron cache warming
	RefreshCron string
}

// Load reads configuration from the environment, loading .env first if present.
func Load() Config {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	prefix := strings.TrimSpace(os.Getenv("S3_PREFIX"))
	if prefix != "" {
		prefix = strings.Trim(prefix, "/") + "/"
	}

	var brokers []string
	for _, b := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}

	return Config{
		Port: getEnvOrDefault("PORT", DefaultPort),

		AIEnabled:    getEnvBoolOrDefault("AI_ENABLED", true),
		GroqAPIKey:   strings.TrimSpace(os.Getenv("GROQ_API_KEY")),
		CohereAPIKey: strings.TrimSpace(os.Getenv("COHERE_API_KEY")),
		AIModel:      strings.TrimSpace(os.Getenv("AI_MODEL")),
		AIDelay:      time.Duration(getEnvIntOrDefault("AI_DELAY_MS", int(AIRequestDelay/time.Millisecond))) * time.Millisecond,

		FeedsConfig:        strings.TrimSpace(os.Getenv("FEEDS_CONFIG")),
		MaxItemsPerSource:  getEnvIntOrDefault("MAX_ITEMS_PER_SOURCE", MaxItemsPerSource),
		FeedTimeout:        time.Duration(getEnvIntOrDefault("FETCH_TIMEOUT_SECONDS", int(FeedTimeout/time.Second))) * time.Second,
		FullTextExtraction: getEnvBoolOrDefault("FULL_TEXT_EXTRACTION", false),
		StableIDs:          getEnvBoolOrDefault("STABLE_IDS", false),

		CacheTTL:    time.Duration(getEnvIntOrDefault("CACHE_TTL_SECONDS", int(CacheTTL/time.Second))) * time.Second,
		CachePrefix: getEnvOrDefault("CACHE_PREFIX", DefaultCachePrefix),
		RedisAddr:   strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPass:   os.Getenv("REDIS_PASS"),
		RedisDB:     getEnvIntOrDefault("REDIS_DB", 0),

		S3Bucket:       strings.TrimSpace(os.Getenv("S3_BUCKET")),
		S3Region:       strings.TrimSpace(os.Getenv("S3_REGION")),
		S3Profile:      strings.TrimSpace(os.Getenv("S3_PROFILE")),
		S3Prefix:       prefix,
		S3UsePathStyle: strings.EqualFold(strings.TrimSpace(os.Getenv("S3_USE_PATH_STYLE")), "true"),

		KafkaBrokers: brokers,
		KafkaTopic:   getEnvOrDefault("KAFKA_REFRESH_TOPIC", "feed-refresh-requests"),
		KafkaGroupID: getEnvOrDefault("KAFKA_GROUP_ID", "clearfeed-refresh"),

		RefreshCron: strings.TrimSpace(os.Getenv("REFRESH_CRON")),
	}
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(val)); err == nil && n >= 0 {
			return n
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(val)); err == nil {
			return b
		}
	}
	return defaultVal
}
