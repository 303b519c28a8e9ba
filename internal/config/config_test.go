package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("BOOKING_HOLD_TTL", "")
	t.Setenv("BOOKING_SEAT_PRICE_CENTS", "")
	t.Setenv("REDIS_ADDRESS", "")
	t.Setenv("WORKER_PORT", "")

	cfg := Load()

	if cfg.Server.Port != "5000" {
		t.Errorf("Expected default port 5000, got %s", cfg.Server.Port)
	}
	if cfg.Server.WorkerPort != "5001" {
		t.Errorf("Expected default worker port 5001, got %s", cfg.Server.WorkerPort)
	}
	if cfg.Booking.HoldTTL != 5*time.Minute {
		t.Errorf("Expected hold TTL 5m, got %s", cfg.Booking.HoldTTL)
	}
	if cfg.Booking.SeatPriceCents != 1299 {
		t.Errorf("Expected seat price 1299, got %d", cfg.Booking.SeatPriceCents)
	}
	if cfg.Booking.ServiceChargeCents != 199 {
		t.Errorf("Expected service charge 199, got %d", cfg.Booking.ServiceChargeCents)
	}
	if cfg.Redis.Enabled() {
		t.Error("Expected Redis to be disabled without REDIS_ADDRESS")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("BOOKING_HOLD_TTL", "90s")
	t.Setenv("BOOKING_DEFAULT_ROWS", "12")
	t.Setenv("AWS_USE_SSL", "true")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")
	t.Setenv("WORKER_PORT", "9101")

	cfg := Load()

	if cfg.Server.Port != "9000" {
		t.Errorf("Expected port 9000, got %s", cfg.Server.Port)
	}
	if cfg.Server.WorkerPort != "9101" {
		t.Errorf("Expected worker port 9101, got %s", cfg.Server.WorkerPort)
	}
	if cfg.Booking.HoldTTL != 90*time.Second {
		t.Errorf("Expected hold TTL 90s, got %s", cfg.Booking.HoldTTL)
	}
	if cfg.Booking.DefaultRows != 12 {
		t.Errorf("Expected 12 rows, got %d", cfg.Booking.DefaultRows)
	}
	if !cfg.MinIO.UseSSL {
		t.Error("Expected UseSSL to be true")
	}
	if !cfg.Redis.Enabled() {
		t.Error("Expected Redis to be enabled")
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "many")
	t.Setenv("JWT_TTL", "forever")

	cfg := Load()

	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("Expected fallback 25, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("Expected fallback 24h, got %s", cfg.Auth.TokenTTL)
	}
}

func TestValidate(t *testing.T) {
	cfg := Load()
	cfg.Auth.JWTSecret = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("Expected error for missing JWT secret")
	}

	cfg.Auth.JWTSecret = "secret"
	cfg.Booking.DefaultRows = 30
	if err := cfg.Validate(); err == nil {
		t.Fatal("Expected error for too many rows")
	}

	cfg.Booking.DefaultRows = 8
	cfg.MinIO.AccessKeyID = "key"
	cfg.MinIO.SecretAccessKey = "secret"
	cfg.TMDB.APIKey = "tmdb"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected valid config, got %v", err)
	}
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{
		Host: "db", Port: "5433", User: "booking", Password: "pw", DBName: "cinema", SSLMode: "require",
	}
	want := "host=db port=5433 user=booking password=pw dbname=cinema sslmode=require"
	if got := db.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestIsDevelopment(t *testing.T) {
	for env, want := range map[string]bool{"dev": true, "development": true, "production": false, "": false} {
		if got := (&Config{Env: env}).IsDevelopment(); got != want {
			t.Errorf("IsDevelopment(%q) = %v, want %v", env, got, want)
		}
	}
}
