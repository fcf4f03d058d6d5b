package config

import (
	"testing"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/registry")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "8000" {
		t.Errorf("Port = %q, want 8000", cfg.Port)
	}
	if cfg.DefaultLanguage != "ru" {
		t.Errorf("DefaultLanguage = %q, want ru", cfg.DefaultLanguage)
	}
	if len(cfg.SupportedLocales) != 3 {
		t.Errorf("SupportedLocales = %v", cfg.SupportedLocales)
	}
	if !cfg.IsDev() {
		t.Error("default env should be development")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/registry")
	t.Setenv("PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "broker2:9092" {
		t.Errorf("KafkaBrokers = %v", cfg.KafkaBrokers)
	}
}

func TestValidate_ProductionNeedsSecret(t *testing.T) {
	cfg := &Config{
		Env:              "production",
		DefaultLanguage:  "ru",
		SupportedLocales: []string{"ru", "kk"},
		KafkaBrokers:     []string{"broker:9092"},
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error: production without JWT_SECRET")
	}
	cfg.JWTSecret = "secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_LocaleFormat(t *testing.T) {
	cfg := &Config{
		Env:              "development",
		DefaultLanguage:  "ru",
		SupportedLocales: []string{"russian"},
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for non two-letter locale")
	}
}
