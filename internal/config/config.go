package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Common contains Elasticsearch parameters shared by every service.
type Common struct {
	ElasticsearchAddr  string
	ElasticsearchIndex string
}

// LLM selects the generative model backend.
type LLM struct {
	Provider     string
	Model        string
	GeminiAPIKey string
	OpenAIAPIKey string
	Timeout      time.Duration
}

// News configures the feed source.
type News struct {
	FeedURL      string
	FetchTimeout time.Duration
}

// Incidents locates the country incident table. An empty DSN disables it.
type Incidents struct {
	DSN   string
	Table string
}

// Worker holds configuration for the Kafka -> Elasticsearch worker.
type Worker struct {
	Common
	KafkaBrokers     []string
	KafkaTopic       string
	KafkaConsumer    string
	KeywordLimit     int
	KeywordMinLength int
	DedupeCapacity   int
	DedupeTTL        time.Duration
	BatchSize        int
}

// API describes HTTP-layer configuration.
type API struct {
	Common
	LLM
	News
	Incidents
	BindAddr       string
	DefaultPage    int
	MaxPage        int
	RateLimitRPS   float64
	RateLimitBurst int
}

// Collector configures the watchlist poller.
type Collector struct {
	News
	KafkaBrokers []string
	KafkaTopic   string
	Watchlist    string
	Interval     time.Duration
	Concurrency  int
}

// Retention configures the cleanup loop.
type Retention struct {
	Common
	Interval  time.Duration
	MaxAge    time.Duration
	BatchSize int
}

func loadCommon() Common {
	return Common{
		ElasticsearchAddr:  getEnv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200"),
		ElasticsearchIndex: getEnv("ELASTICSEARCH_INDEX", "articles"),
	}
}

// LoadLLM reads the model backend settings.
func LoadLLM() (LLM, error) {
	c := LLM{
		Provider:     strings.ToLower(getEnv("LLM_PROVIDER", "gemini")),
		Model:        getEnv("LLM_MODEL", ""),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		Timeout:      getDuration("LLM_TIMEOUT", "60s"),
	}

	if c.Provider != "gemini" && c.Provider != "openai" {
		return LLM{}, fmt.Errorf("LLM_PROVIDER must be gemini or openai, got %q", c.Provider)
	}
	if c.Timeout <= 0 {
		return LLM{}, fmt.Errorf("LLM_TIMEOUT must be positive")
	}

	return c, nil
}

// LoadNews reads the feed source settings.
func LoadNews() (News, error) {
	c := News{
		FeedURL:      getEnv("NEWS_FEED_URL", ""),
		FetchTimeout: getDuration("NEWS_FETCH_TIMEOUT", "10s"),
	}

	if c.FeedURL != "" && strings.Count(c.FeedURL, "%s") != 1 {
		return News{}, fmt.Errorf("NEWS_FEED_URL must contain exactly one %%s placeholder")
	}
	if c.FetchTimeout <= 0 {
		return News{}, fmt.Errorf("NEWS_FETCH_TIMEOUT must be positive")
	}

	return c, nil
}

// LoadIncidents reads the incident table location.
func LoadIncidents() Incidents {
	return Incidents{
		DSN:   getEnv("INCIDENTS_DSN", ""),
		Table: getEnv("INCIDENTS_TABLE", "uhri_incidents"),
	}
}

// LoadWorker builds a Worker config from environment variables.
func LoadWorker() (*Worker, error) {
	c := &Worker{
		Common:           loadCommon(),
		KafkaBrokers:     splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		KafkaTopic:       getEnv("KAFKA_TOPIC", "news_raw"),
		KafkaConsumer:    getEnv("KAFKA_CONSUMER_GROUP", "esg-worker"),
		KeywordLimit:     getInt("WORKER_KEYWORD_LIMIT", 8),
		KeywordMinLength: getInt("WORKER_KEYWORD_MIN_LEN", 4),
		DedupeCapacity:   getInt("WORKER_DEDUPE_CAPACITY", 20000),
		DedupeTTL:        getDuration("WORKER_DEDUPE_TTL", "24h"),
		BatchSize:        getInt("WORKER_BATCH_SIZE", 10),
	}

	if len(c.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}

	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("WORKER_BATCH_SIZE must be positive")
	}
	if c.DedupeCapacity <= 0 {
		return nil, fmt.Errorf("WORKER_DEDUPE_CAPACITY must be positive")
	}
	if c.KeywordLimit <= 0 {
		return nil, fmt.Errorf("WORKER_KEYWORD_LIMIT must be positive")
	}
	if c.KeywordMinLength < 0 {
		return nil, fmt.Errorf("WORKER_KEYWORD_MIN_LEN cannot be negative")
	}

	return c, nil
}

// LoadAPI builds an API config from environment variables.
func LoadAPI() (*API, error) {
	llm, err := LoadLLM()
	if err != nil {
		return nil, err
	}
	news, err := LoadNews()
	if err != nil {
		return nil, err
	}

	c := &API{
		Common:         loadCommon(),
		LLM:            llm,
		News:           news,
		Incidents:      LoadIncidents(),
		BindAddr:       getEnv("API_BIND_ADDR", "0.0.0.0:8080"),
		DefaultPage:    getInt("API_PAGE_SIZE", 20),
		MaxPage:        getInt("API_MAX_PAGE_SIZE", 100),
		RateLimitRPS:   getFloat("API_RATE_LIMIT_RPS", 2),
		RateLimitBurst: getInt("API_RATE_LIMIT_BURST", 5),
	}

	if c.DefaultPage <= 0 {
		return nil, fmt.Errorf("API_PAGE_SIZE must be positive")
	}
	if c.MaxPage <= 0 {
		return nil, fmt.Errorf("API_MAX_PAGE_SIZE must be positive")
	}
	if c.DefaultPage > c.MaxPage {
		return nil, fmt.Errorf("API_PAGE_SIZE cannot exceed API_MAX_PAGE_SIZE")
	}
	if c.RateLimitRPS <= 0 {
		return nil, fmt.Errorf("API_RATE_LIMIT_RPS must be positive")
	}
	if c.RateLimitBurst <= 0 {
		return nil, fmt.Errorf("API_RATE_LIMIT_BURST must be positive")
	}

	return c, nil
}

// LoadCollector builds a Collector config from environment variables.
func LoadCollector() (*Collector, error) {
	news, err := LoadNews()
	if err != nil {
		return nil, err
	}

	c := &Collector{
		News:         news,
		KafkaBrokers: splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "news_raw"),
		Watchlist:    getEnv("COLLECTOR_WATCHLIST", "watchlist.yaml"),
		Interval:     getDuration("COLLECTOR_INTERVAL", "30m"),
		Concurrency:  getInt("COLLECTOR_CONCURRENCY", 4),
	}

	if len(c.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	if c.Interval <= 0 {
		return nil, fmt.Errorf("COLLECTOR_INTERVAL must be positive")
	}
	if c.Concurrency <= 0 {
		return nil, fmt.Errorf("COLLECTOR_CONCURRENCY must be positive")
	}

	return c, nil
}

// LoadRetention builds a Retention config from environment variables.
func LoadRetention() (*Retention, error) {
	c := &Retention{
		Common:    loadCommon(),
		Interval:  getDuration("RETENTION_CRON", "24h"),
		MaxAge:    getDuration("RETENTION_MAX_AGE", "720h"),
		BatchSize: getInt("RETENTION_BATCH_SIZE", 500),
	}

	if c.MaxAge <= 0 {
		return nil, fmt.Errorf("RETENTION_MAX_AGE must be positive")
	}

	if c.Interval <= 0 {
		return nil, fmt.Errorf("RETENTION_CRON must be positive")
	}

	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("RETENTION_BATCH_SIZE must be positive")
	}

	return c, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
