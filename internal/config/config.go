package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(NewPolicyHolder),
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string
	NodeID      int64

	OTLPEndpoint string
	LogFile      string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBPath            string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int
	DBAutoMigrate     bool

	Redis     RedisConfig
	RateLimit RateLimitConfig
	Rating    RatingConfig
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RateLimitConfig throttles rating calls per client. It needs Redis.
type RateLimitConfig struct {
	Enabled       bool
	QuoteRate     float64
	QuoteBurst    int
	CommitLockTTL time.Duration
}

// RatingConfig carries the static defaults used when a request leaves a field out.
type RatingConfig struct {
	Currency            string
	DefaultEquipment    string
	DefaultFreightClass int
	EdiStandard         string
	PolicyFile          string
}

// Equipment returns the requested equipment type, or the configured default
// when the request leaves it out.
func (r RatingConfig) Equipment(requested string) string {
	if equipment := strings.ToUpper(strings.TrimSpace(requested)); equipment != "" {
		return equipment
	}
	if equipment := strings.ToUpper(strings.TrimSpace(r.DefaultEquipment)); equipment != "" {
		return equipment
	}
	return "VAN"
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:           getenv("APP_SERVICE", "freightrate"),
		AppVersion:        getenv("APP_VERSION", "0.1.0"),
		Environment:       getenv("ENVIRONMENT", "development"),
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		NodeID:            int64(getenvInt("SNOWFLAKE_NODE_ID", 1)),
		OTLPEndpoint:      getenv("OTLP_ENDPOINT", "localhost:4317"),
		LogFile:           strings.TrimSpace(getenv("LOG_FILE", "")),
		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "freightrate"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBPath:            getenv("DATABASE_PATH", "freightrate.db"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),
		DBAutoMigrate:     getenvBool("DATABASE_AUTO_MIGRATE", true),
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
			Password: strings.TrimSpace(getenv("REDIS_PASSWORD", "")),
			DB:       getenvInt("REDIS_DB", 0),
			TTL:      time.Duration(getenvInt("REFERENCE_CACHE_TTL_SECONDS", 600)) * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled:       getenvBool("RATE_LIMIT_ENABLED", false),
			QuoteRate:     getenvFloat("RATE_LIMIT_QUOTE_RATE", 10),
			QuoteBurst:    getenvInt("RATE_LIMIT_QUOTE_BURST", 20),
			CommitLockTTL: time.Duration(getenvInt("RATE_LIMIT_COMMIT_LOCK_SECONDS", 30)) * time.Second,
		},
		Rating: RatingConfig{
			Currency:            strings.ToUpper(getenv("RATING_CURRENCY", "USD")),
			DefaultEquipment:    strings.ToUpper(getenv("RATING_DEFAULT_EQUIPMENT", "VAN")),
			DefaultFreightClass: getenvInt("RATING_DEFAULT_FREIGHT_CLASS", 55),
			EdiStandard:         strings.ToUpper(getenv("RATING_EDI_STANDARD", "X12")),
			PolicyFile:          strings.TrimSpace(getenv("RATING_POLICY_FILE", "")),
		},
	}

	return cfg
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("[config] invalid %s=%q, using %d", key, value, def)
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("[config] invalid %s=%q, using %g", key, value, def)
		return def
	}
	return parsed
}
