package config

import (
	"reflect"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("DATABASE_PATH", "")
	t.Setenv("GIN_MODE", "")
	t.Setenv("GEMINI_MODEL", "")
	t.Setenv("CORS_ALLOW_ORIGINS", "")

	cfg := Load()

	if cfg.ListenAddr != ":8080" {
		t.Fatalf("expected listen addr :8080, got %s", cfg.ListenAddr)
	}
	if cfg.DatabasePath != "opensourcetutor.db" {
		t.Fatalf("unexpected database path: %s", cfg.DatabasePath)
	}
	if cfg.GinMode != "release" {
		t.Fatalf("unexpected gin mode: %s", cfg.GinMode)
	}
	if cfg.GeminiModel != "gemini-1.5-flash-latest" {
		t.Fatalf("unexpected model: %s", cfg.GeminiModel)
	}
	if !reflect.DeepEqual(cfg.CORSAllowOrigins, []string{"http://localhost:3000"}) {
		t.Fatalf("unexpected cors origins: %v", cfg.CORSAllowOrigins)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("DATABASE_PATH", "/tmp/tutor.db")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg := Load()

	if cfg.ListenAddr != ":9000" {
		t.Fatalf("expected listen addr :9000, got %s", cfg.ListenAddr)
	}
	if cfg.DatabasePath != "/tmp/tutor.db" {
		t.Fatalf("unexpected database path: %s", cfg.DatabasePath)
	}
	if !reflect.DeepEqual(cfg.CORSAllowOrigins, []string{"https://a.example.com", "https://b.example.com"}) {
		t.Fatalf("unexpected cors origins: %v", cfg.CORSAllowOrigins)
	}
}
