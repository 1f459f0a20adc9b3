package config

import (
	"os"
	"strings"
	"time"
)

type Config struct {
	Port string

	// Snapshot store backend: memory, file or postgres.
	StoreBackend string
	DataDir      string
	DBDSN        string

	// Optional collaborators.
	RabbitURL   string
	FeedURL     string
	FeedTimeout time.Duration

	CORSAllowOrigins []string
}

func Load() Config {
	return Config{
		Port: getenv("PORT", "8081"),

		StoreBackend: strings.ToLower(getenv("STORE_BACKEND", "memory")),
		DataDir:      getenv("CART_DATA_DIR", "./data/carts"),
		DBDSN:        os.Getenv("CART_DB_DSN"),

		RabbitURL:   os.Getenv("RABBITMQ_URL"),
		FeedURL:     os.Getenv("FEED_URL"),
		FeedTimeout: parseDuration(getenv("FEED_TIMEOUT", "10s"), 10*time.Second),

		CORSAllowOrigins: splitCSV(getenv("CORS_ALLOW_ORIGINS", "*")),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func parseDuration(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
