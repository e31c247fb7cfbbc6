package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr             string
	DatabaseURL          string
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	// Lesson-engine webhook. Empty disables event delivery.
	LessonEngineURL string

	CatchUpMax    int
	RetryMax      int
	RetryBackoff  time.Duration
	ApplyTimeout  time.Duration
	Concurrency   int
	SweepInterval time.Duration
}

// Load reads configuration from the environment, with .env overrides for
// local runs. Missing DATABASE_URL panics; everything else has defaults.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		DatabaseURL:          mustGetenv("DATABASE_URL"),
		CORSAllowCredentials: getenv("CORS_ALLOW_CREDENTIALS", "false") == "true",
		LessonEngineURL:      getenv("LESSON_ENGINE_URL", ""),

		CatchUpMax:    getenvInt("SCHEDULER_CATCHUP_MAX", 12),
		RetryMax:      getenvInt("SCHEDULER_RETRY_MAX", 5),
		RetryBackoff:  getenvDuration("SCHEDULER_RETRY_BACKOFF", 30*time.Second),
		ApplyTimeout:  getenvDuration("SCHEDULER_APPLY_TIMEOUT", 15*time.Second),
		Concurrency:   getenvInt("SCHEDULER_CONCURRENCY", 16),
		SweepInterval: getenvDuration("SCHEDULER_SWEEP_INTERVAL", time.Minute),
	}

	origins := strings.Split(getenv("CORS_ALLOWED_ORIGINS", ""), ",")
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	return cfg
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func mustGetenv(key string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		panic("missing env: " + key)
	}
	return v
}
