package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	TrustpilotBase string
	AppStoreBase   string
	PlayStoreBase  string
	Country        string

	PageDelay   time.Duration // polite delay between page fetches
	SourceDelay time.Duration // pause between one source and the next
	MaxPages    int           // page cap for the store connectors

	SnapshotDir string

	// BillingPolicy selects how billing-dominance is judged. Recognized
	// values: "distinct_terms" (more than BillingThreshold distinct billing
	// terms present) and "comparative" (billing-term count exceeds
	// product-term count by more than BillingMargin). The two rules disagree
	// on purpose; picking one is a product decision, not a default to hide.
	BillingPolicy    string
	BillingThreshold int
	BillingMargin    int

	CacheTTL time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", "root:root@tcp(localhost:3306)/reviewscope?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisPass:   env("REDIS_PASSWORD", ""),
		RedisDB:     atoi("REDIS_DB", 0),

		TrustpilotBase: env("TRUSTPILOT_BASE_URL", "https://ie.trustpilot.com/review"),
		AppStoreBase:   env("APPSTORE_BASE_URL", "https://itunes.apple.com"),
		PlayStoreBase:  env("PLAYSTORE_BASE_URL", "https://play.google.com"),
		Country:        env("STORE_COUNTRY", "us"),

		PageDelay:   time.Duration(atoi("PAGE_DELAY_MS", 1000)) * time.Millisecond,
		SourceDelay: time.Duration(atoi("SOURCE_DELAY_MS", 2000)) * time.Millisecond,
		MaxPages:    atoi("MAX_PAGES", 10),

		SnapshotDir: env("SNAPSHOT_DIR", "."),

		BillingPolicy:    env("BILLING_POLICY", "distinct_terms"),
		BillingThreshold: atoi("BILLING_THRESHOLD", 3),
		BillingMargin:    atoi("BILLING_MARGIN", 2),

		CacheTTL: time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
	}
	if c.BillingPolicy != "distinct_terms" && c.BillingPolicy != "comparative" {
		log.Warn().Str("policy", c.BillingPolicy).Msg("unknown BILLING_POLICY, falling back to distinct_terms")
		c.BillingPolicy = "distinct_terms"
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
