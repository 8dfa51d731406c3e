// Package config loads runtime settings from configs/.env and the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devJWTSecret = "default_super_secret_key"

type Config struct {
	Env            string
	Port           string
	DB             DBConfig
	JWT            JWTConfig
	BcryptCost     int
	UploadDir      string
	CORSOrigins    []string
	Redis          RedisConfig
	RateLimit      RateLimitConfig
	ImageRetention time.Duration
	LogLevel       string
}

type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN builds the postgres connection URL.
func (d DBConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

type JWTConfig struct {
	Secret        string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Production reports whether APP_ENV is production.
func (c *Config) Production() bool {
	return c.Env == "production"
}

// Load reads configs/.env when present, then the environment. A missing JWT_SECRET is fatal in production.
func Load() (*Config, error) {
	if err := godotenv.Load("configs/.env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load configs/.env: %w", err)
	}

	cfg := &Config{
		Env:  envStr("APP_ENV", "development"),
		Port: envStr("PORT", "8080"),
		DB: DBConfig{
			Host:            envStr("DB_HOST", "localhost"),
			Port:            envStr("DB_PORT", "5432"),
			User:            envStr("DB_USER", "postgres"),
			Password:        envStr("DB_PASSWORD", "postgres"),
			Name:            envStr("DB_NAME", "portal"),
			SSLMode:         envStr("DB_SSLMODE", "disable"),
			MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDur("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		JWT: JWTConfig{
			Secret:        os.Getenv("JWT_SECRET"),
			RefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
			AccessTTL:     envDur("ACCESS_TOKEN_TTL", 15*time.Minute),
			RefreshTTL:    envDur("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		},
		BcryptCost:  envInt("BCRYPT_COST", 10),
		UploadDir:   envStr("UPLOAD_DIR", "uploads"),
		CORSOrigins: envList("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       envInt("REDIS_DB", 0),
		},
		RateLimit:      LoadRateLimitConfig(),
		ImageRetention: envDur("IMAGE_RETENTION", 30*24*time.Hour),
		LogLevel:       envStr("LOG_LEVEL", "info"),
	}

	if cfg.JWT.Secret == "" {
		if cfg.Production() {
			return nil, errors.New("JWT_SECRET environment variable is required in production")
		}
		cfg.JWT.Secret = devJWTSecret // development fallback only
	}

	return cfg, nil
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return d
	}
	return b
}

func envInt(k string, d int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	if dur, err := time.ParseDuration(os.Getenv(k)); err == nil {
		return dur
	}
	return d
}

func envList(k string, d []string) []string {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
