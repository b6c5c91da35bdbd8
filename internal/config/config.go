package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port string
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MigrationsPath  string
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
}

// New loads configuration from the environment, reading an optional .env
// file first. Database connection values are required.
func New() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.App.Port = getEnv("APP_PORT", "8080")

	cfg.Postgres.Host = os.Getenv("DB_HOST")
	cfg.Postgres.Port = getEnv("DB_PORT", "5432")
	cfg.Postgres.User = os.Getenv("DB_USER")
	cfg.Postgres.Password = os.Getenv("DB_PASSWORD")
	cfg.Postgres.DBName = os.Getenv("DB_NAME")
	cfg.Postgres.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Postgres.MigrationsPath = getEnv("DB_MIGRATIONS_PATH", "migrations")

	for name, value := range map[string]string{
		"DB_HOST":     cfg.Postgres.Host,
		"DB_USER":     cfg.Postgres.User,
		"DB_PASSWORD": cfg.Postgres.Password,
		"DB_NAME":     cfg.Postgres.DBName,
	} {
		if value == "" {
			return nil, fmt.Errorf("%s is required", name)
		}
	}

	maxConns, err := intEnv("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, err
	}
	minConns, err := intEnv("DB_MIN_CONNS", 2)
	if err != nil {
		return nil, err
	}
	cfg.Postgres.MaxConns = int32(maxConns)
	cfg.Postgres.MinConns = int32(minConns)
	cfg.Postgres.MaxConnLifetime = 30 * time.Minute

	cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
	cfg.Redis.Enabled = cfg.Redis.Addr != ""
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	redisDB, err := intEnv("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	cfg.Redis.DB = redisDB

	return cfg, nil
}

func getEnv(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func intEnv(name string, fallback int) (int, error) {
	value := os.Getenv(name)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", name, err)
	}
	return n, nil
}
