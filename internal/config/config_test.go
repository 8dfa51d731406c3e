package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ACCESS_TOKEN_TTL", "")
	t.Setenv("REFRESH_TOKEN_TTL", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Production() {
		t.Error("default env should not be production")
	}
	if cfg.JWT.Secret != devJWTSecret {
		t.Errorf("secret = %q, want development fallback", cfg.JWT.Secret)
	}
	if cfg.JWT.AccessTTL != 15*time.Minute || cfg.JWT.RefreshTTL != 7*24*time.Hour {
		t.Errorf("ttls = %v/%v", cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	}
	if cfg.ImageRetention != 30*24*time.Hour {
		t.Errorf("retention = %v", cfg.ImageRetention)
	}
}

func TestLoadProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without JWT_SECRET in production")
	}

	t.Setenv("JWT_SECRET", "s3cret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Production() || cfg.JWT.Secret != "s3cret" {
		t.Errorf("cfg = %+v", cfg.JWT)
	}
}

func TestEnvParsing(t *testing.T) {
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("ACCESS_TOKEN_TTL", "5m")
	t.Setenv("BCRYPT_COST", "nope")
	t.Setenv("RATE_LIMIT_CAPACITY", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("origins = %v", cfg.CORSOrigins)
	}
	if cfg.JWT.AccessTTL != 5*time.Minute {
		t.Errorf("access ttl = %v", cfg.JWT.AccessTTL)
	}
	if cfg.BcryptCost != 10 {
		t.Errorf("bcrypt cost = %d, want fallback 10", cfg.BcryptCost)
	}
	if cfg.RateLimit.Capacity != 1 {
		t.Errorf("capacity = %d, want clamp to 1", cfg.RateLimit.Capacity)
	}
}

func TestDSN(t *testing.T) {
	d := DBConfig{Host: "db", Port: "5432", User: "app", Password: "p@ss", Name: "portal", SSLMode: "disable"}
	want := "postgres://app:p%40ss@db:5432/portal?sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}
