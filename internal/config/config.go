package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds runtime configuration parsed from environment variables.
type Config struct {
	HTTPAddr        string
	DBDriver        string
	DBConnString    string
	ShutdownTimeout time.Duration
	TaxRate         decimal.Decimal
	ReportTimezone  string
	CartStore       string
	RedisAddr       string
	CORSOrigins     []string
	TokenTTL        time.Duration
	AdminEmail      string
	AdminPassword   string
	SeedOnStart     bool
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	CartStoreSQL   = "sql"
	CartStoreRedis = "redis"
)

// FromEnv builds Config with defaults, overridden by environment variables.
func FromEnv() Config {
	return Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		DBDriver:        strings.ToLower(envOrDefault("DB_DRIVER", DriverSQLite)),
		DBConnString:    envOrDefault("DB_DSN", "file:bookshop.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT_SECONDS", 10*time.Second),
		TaxRate:         envDecimal("TAX_RATE", decimal.NewFromFloat(0.10)),
		ReportTimezone:  envOrDefault("REPORT_TIMEZONE", "UTC"),
		CartStore:       strings.ToLower(envOrDefault("CART_STORE", CartStoreSQL)),
		RedisAddr:       envOrDefault("REDIS_ADDR", "localhost:6379"),
		CORSOrigins:     envList("CORS_ORIGINS", []string{"*"}),
		TokenTTL:        envHours("TOKEN_TTL_HOURS", 48*time.Hour),
		AdminEmail:      envOrDefault("ADMIN_EMAIL", "admin@bookshop.com"),
		AdminPassword:   envOrDefault("ADMIN_PASSWORD", "admin123"),
		SeedOnStart:     envBool("SEED_ON_START", true),
	}
}

// Location resolves ReportTimezone, falling back to UTC for unknown zones.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		seconds, err := strconv.Atoi(v)
		if err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return def
}

func envHours(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		hours, err := strconv.Atoi(v)
		if err == nil && hours > 0 {
			return time.Duration(hours) * time.Hour
		}
	}
	return def
}

func envDecimal(key string, def decimal.Decimal) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		d, err := decimal.NewFromString(v)
		if err == nil && !d.IsNegative() {
			return d
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
