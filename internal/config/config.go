package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port             string   `mapstructure:"PORT"`
	Env              string   `mapstructure:"ENV"`
	DatabaseURL      string   `mapstructure:"DATABASE_URL"`
	DBMaxConns       int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns       int32    `mapstructure:"DB_MIN_CONNS"`
	RedisURL         string   `mapstructure:"REDIS_URL"`
	DefaultLanguage  string   `mapstructure:"DEFAULT_LANGUAGE"`
	SupportedLocales []string `mapstructure:"SUPPORTED_LOCALES"`
	JWTSecret        string   `mapstructure:"JWT_SECRET"`
	AuthServiceURL   string   `mapstructure:"AUTH_SERVICE_URL"`
	RPNServiceURL    string   `mapstructure:"RPN_SERVICE_URL"`
	KafkaBrokers     []string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic       string   `mapstructure:"KAFKA_TOPIC"`
	KafkaGroup       string   `mapstructure:"KAFKA_GROUP"`
	KafkaSource      string   `mapstructure:"KAFKA_SOURCE"`
	ServiceName      string   `mapstructure:"SERVICE_NAME"`
	CORSOrigins      []string `mapstructure:"CORS_ORIGINS"`
	BGFilePath       string   `mapstructure:"BG_FILE_PATH"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("DEFAULT_LANGUAGE", "ru")
	v.SetDefault("SUPPORTED_LOCALES", "ru,kk,en")
	v.SetDefault("KAFKA_TOPIC", "registry.catalog.sync")
	v.SetDefault("KAFKA_GROUP", "registry-service")
	v.SetDefault("SERVICE_NAME", "registry-service")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("BG_FILE_PATH", "./data/bg_assets.json")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range []string{
		"PORT", "ENV", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
		"REDIS_URL", "DEFAULT_LANGUAGE", "SUPPORTED_LOCALES", "JWT_SECRET",
		"AUTH_SERVICE_URL", "RPN_SERVICE_URL", "KAFKA_BROKERS", "KAFKA_TOPIC",
		"KAFKA_GROUP", "KAFKA_SOURCE", "SERVICE_NAME", "CORS_ORIGINS", "BG_FILE_PATH",
	} {
		v.BindEnv(key)
	}

	// Try reading .env, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.SupportedLocales == nil {
		cfg.SupportedLocales = splitList(v.GetString("SUPPORTED_LOCALES"))
	}
	if cfg.CORSOrigins == nil {
		cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))
	}
	if cfg.KafkaBrokers == nil {
		cfg.KafkaBrokers = splitList(v.GetString("KAFKA_BROKERS"))
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is safe to run. Outside development
// the JWT secret must be present so real authentication is enforced, and the
// Kafka brokers must be configured for catalog synchronization.
func (c *Config) Validate() error {
	if !c.IsDev() {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when ENV is not development")
		}
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS is required when ENV is not development")
		}
	}
	if c.DefaultLanguage == "" {
		return fmt.Errorf("DEFAULT_LANGUAGE must not be empty")
	}
	for _, loc := range c.SupportedLocales {
		if len(loc) != 2 {
			return fmt.Errorf("SUPPORTED_LOCALES entries must be two-letter codes, got %q", loc)
		}
	}
	return nil
}
