package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string
	HTTPTimeout time.Duration

	DataSource string // csv | mysql
	CSVPath    string
	MySQLDSN   string

	RedisAddr string
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration

	MissingFieldMode string // lenient | strict
	DeltaPrecision   int
	NegativeRating   int
	StopwordsPath    string

	NLPBase string
	NLPKey  string
	NLPRPS  int

	ImportWorkers int
	ImportBatch   int
}

func Load() Config {
	c := Config{
		AppEnv:           env("APP_ENV", "prod"),
		LogLevel:         env("LOG_LEVEL", "info"),
		HTTPAddr:         env("HTTP_ADDR", ":8080"),
		MetricsAddr:      env("METRICS_ADDR", ""),
		HTTPTimeout:      time.Duration(atoi("HTTP_TIMEOUT_SECONDS", 15)) * time.Second,
		DataSource:       strings.ToLower(env("DATA_SOURCE", "csv")),
		CSVPath:          env("CSV_PATH", "Reviews.csv"),
		MySQLDSN:         env("MYSQL_DSN", "root:root@tcp(localhost:3306)/reviews?parseTime=true&charset=utf8mb4&loc=UTC"),
		RedisAddr:        env("REDIS_ADDR", ""),
		RedisPass:        env("REDIS_PASSWORD", ""),
		RedisDB:          atoi("REDIS_DB", 0),
		CacheTTL:         time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
		MissingFieldMode: env("MISSING_FIELD_MODE", "lenient"),
		DeltaPrecision:   atoi("DELTA_PRECISION", 0),
		NegativeRating:   atoi("NEGATIVE_RATING", 1),
		StopwordsPath:    env("STOPWORDS_PATH", ""),
		NLPBase:          env("NLP_BASE_URL", ""),
		NLPKey:           env("NLP_API_KEY", ""),
		NLPRPS:           atoi("NLP_RPS", 5),
		ImportWorkers:    atoi("IMPORT_WORKERS", 4),
		ImportBatch:      atoi("IMPORT_BATCH", 500),
	}
	if c.NLPBase == "" {
		log.Warn().Msg("NLP_BASE_URL is empty; sentiment and word cloud disabled")
	}
	if c.DeltaPrecision < 0 {
		c.DeltaPrecision = 0
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
	}
	return def
}
