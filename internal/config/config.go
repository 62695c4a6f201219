// Package config loads service configuration from the environment, with
// an optional .env file for development.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/foodfast/services/pkg/logging"
)

type db struct {
	DSN string
}

type deps struct {
	UsersBase    string
	ProductsBase string
	OrdersBase   string
	Timeout      time.Duration
}

type resolver struct {
	SuccessTTL time.Duration
	FailureTTL time.Duration
	MaxWorkers int
}

type logcfg struct {
	Level  logging.LogLevel
	Pretty bool
}

// Config holds everything a service binary needs to start.
type Config struct {
	Service      string
	Port         string
	AllowOrigins string
	DB           db
	Deps         deps
	Resolver     resolver
	Log          logcfg

	// RedisAddr enables the optional Redis-backed resolver cache when
	// non-empty. The default (empty) keeps the process-local store.
	RedisAddr string
}

// Load reads the configuration for one service. A missing .env file is
// not an error.
func Load(service, defaultPort string) *Config {
	_ = godotenv.Load()

	var cfg Config
	cfg.Service = service

	portKey := strings.ToUpper(service) + "_PORT"
	cfg.Port = def(os.Getenv(portKey), def(os.Getenv("PORT"), defaultPort))
	cfg.AllowOrigins = def(os.Getenv("ALLOWED_ORIGINS"), "*")

	cfg.DB.DSN = def(os.Getenv("DB_DSN"),
		"host=localhost user=foodfast password=foodfast dbname=foodfast port=5432 sslmode=disable")

	cfg.Deps.UsersBase = def(os.Getenv("USERS_BASE"), "http://localhost:5001")
	cfg.Deps.ProductsBase = def(os.Getenv("PRODUCTS_BASE"), "http://localhost:5002")
	cfg.Deps.OrdersBase = def(os.Getenv("ORDERS_BASE"), "http://localhost:5003")
	cfg.Deps.Timeout = seconds("LOOKUP_TIMEOUT_SECONDS", 2)

	cfg.Resolver.SuccessTTL = seconds("RESOLVER_SUCCESS_TTL_SECONDS", 30)
	cfg.Resolver.FailureTTL = seconds("RESOLVER_FAILURE_TTL_SECONDS", 10)
	cfg.Resolver.MaxWorkers = envInt("RESOLVER_MAX_WORKERS", 8)

	cfg.Log.Level = logging.LogLevel(def(os.Getenv("LOG_LEVEL"), string(logging.LevelInfo)))
	cfg.Log.Pretty = envBool("LOG_PRETTY", false)

	cfg.RedisAddr = os.Getenv("CACHE_REDIS_ADDR")

	return &cfg
}

func def(v, d string) string {
	if v == "" {
		return d
	}
	return v
}

func envInt(key string, d int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func envBool(key string, d bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return d
}

func seconds(key string, d int) time.Duration {
	return time.Duration(envInt(key, d)) * time.Second
}
