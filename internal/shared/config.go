package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string
	Variant     string

	StorageBackend string // memory | mysql
	MySQLDSN       string
	SessionBackend string // memory | redis
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	CacheTTL       time.Duration
	SessionTTL     time.Duration

	FeedBase    string
	FeedKey     string
	FeedRPS     int
	Workers     int
	ReviewCount int

	CORSOrigins  []string
	ShareBaseURL string
	ReplyDelay   time.Duration

	PullThreshold  float64
	PullResistance float64
	RefreshDelay   time.Duration
}

// Load reads the environment. A .env file in the working directory is
// applied first when present; real environment variables win.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}

	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		LogLevel:    env("LOG_LEVEL", ""),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ""),
		Variant:     strings.ToLower(env("VARIANT", "general")),

		StorageBackend: strings.ToLower(env("STORAGE_BACKEND", "memory")),
		MySQLDSN:       env("MYSQL_DSN", "root:root@tcp(localhost:3306)/marketpaline?parseTime=true&charset=utf8mb4&loc=UTC"),
		SessionBackend: strings.ToLower(env("SESSION_BACKEND", "memory")),
		RedisAddr:      env("REDIS_ADDR", "localhost:6379"),
		RedisDB:        atoi("REDIS_DB", 0),
		RedisPass:      env("REDIS_PASSWORD", ""),
		CacheTTL:       time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		SessionTTL:     time.Duration(atoi("SESSION_TTL_SECONDS", 86400)) * time.Second,

		FeedBase:    env("FEED_BASE_URL", ""),
		FeedKey:     env("FEED_API_KEY", ""),
		FeedRPS:     atoi("FEED_RPS", 5),
		Workers:     atoi("SEED_WORKERS", 8),
		ReviewCount: atoi("SEED_REVIEW_COUNT", 100),

		CORSOrigins:  list("CORS_ORIGINS", []string{"*"}),
		ShareBaseURL: env("SHARE_BASE_URL", "https://marketpaline.app"),
		ReplyDelay:   time.Duration(atoi("REPLY_DELAY_MS", 2000)) * time.Millisecond,

		PullThreshold:  atof("PULL_THRESHOLD", 80),
		PullResistance: atof("PULL_RESISTANCE", 0.5),
		RefreshDelay:   time.Duration(atoi("REFRESH_DELAY_MS", 1500)) * time.Millisecond,
	}
	if c.FeedBase != "" && c.FeedKey == "" {
		log.Warn().Msg("FEED_API_KEY is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoi(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-integer env value")
	}
	return def
}

func atof(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-numeric env value")
	}
	return def
}

func list(k string, def []string) []string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
