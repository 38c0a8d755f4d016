package config

import (
	"testing"
	"time"

	"github.com/astatracker/fantacalcio-api/internal/platform/logging"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.AppEnv != EnvDev {
		t.Fatalf("expected default env dev, got %s", cfg.AppEnv)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTPAddr)
	}
	if cfg.TokenTTL != 168*time.Hour {
		t.Fatalf("unexpected token ttl: %s", cfg.TokenTTL)
	}
	if cfg.ImportBatchSize != 100 {
		t.Fatalf("unexpected import batch size: %d", cfg.ImportBatchSize)
	}
	if cfg.LogLevel != logging.LevelInfo {
		t.Fatalf("unexpected log level: %s", cfg.LogLevel)
	}
}

func TestLoad_InvalidAppEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production-ish")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid APP_ENV")
	}
}

func TestLoad_ProdRequiresTokenSecret(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("TOKEN_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when TOKEN_SECRET missing in prod")
	}
}

func TestLoad_ImageStoreRequiresBucket(t *testing.T) {
	t.Setenv("IMAGE_STORE_ENABLED", "true")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when IMAGE_STORE_BUCKET missing")
	}
}

func TestParseLogLevel(t *testing.T) {
	if parseLogLevel("debug") != logging.LevelDebug {
		t.Fatal("expected debug level")
	}
	if parseLogLevel("warning") != logging.LevelWarn {
		t.Fatal("expected warn level")
	}
	if parseLogLevel("nonsense") != logging.LevelInfo {
		t.Fatal("expected info fallback")
	}
}
