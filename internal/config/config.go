// Package config loads runtime configuration from .env, an optional config.yaml and
// environment variables. Invalid values fail at startup.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port         string
	Database     DatabaseConfig
	LLM          LLMConfig
	RedisURL     string
	Gmail        GmailConfig
	MatchMode    string // "query" or "memory"
	FetchTimeout time.Duration
}

type DatabaseConfig struct {
	Driver string // postgres, mysql or sqlite
	DSN    string
	Debug  bool
}

type LLMConfig struct {
	APIKey string
	Model  string
}

type GmailConfig struct {
	Enabled         bool
	CredentialsFile string
	TokenFile       string
	From            string
}

const (
	MatchModeQuery  = "query"
	MatchModeMemory = "memory"
)

// Load reads .env (if present) and then the environment. Keys use dots in config.yaml
// and underscores in the environment, e.g. database.dsn / DATABASE_DSN.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] no .env file, using process environment")
	}
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.debug", false)
	v.SetDefault("llm.model", "gemini-2.5-flash")
	v.SetDefault("gmail.enabled", false)
	v.SetDefault("gmail.credentials_file", "credential.json")
	v.SetDefault("gmail.token_file", "token.json")
	v.SetDefault("matching.mode", MatchModeQuery)
	v.SetDefault("fetch.timeout", "15s")

	// The original deployment used several names for the Gemini key.
	if err := v.BindEnv("llm.api_key", "LLM_API_KEY", "GEMINI_API_KEY", "GEMINI_API_KEY_1", "GOOGLE_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind llm.api_key: %w", err)
	}
	if err := v.BindEnv("redis.url", "REDIS_URL"); err != nil {
		return nil, fmt.Errorf("bind redis.url: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		Port: v.GetString("port"),
		Database: DatabaseConfig{
			Driver: strings.ToLower(v.GetString("database.driver")),
			DSN:    v.GetString("database.dsn"),
			Debug:  v.GetBool("database.debug"),
		},
		LLM: LLMConfig{
			APIKey: v.GetString("llm.api_key"),
			Model:  v.GetString("llm.model"),
		},
		RedisURL: v.GetString("redis.url"),
		Gmail: GmailConfig{
			Enabled:         v.GetBool("gmail.enabled"),
			CredentialsFile: v.GetString("gmail.credentials_file"),
			TokenFile:       v.GetString("gmail.token_file"),
			From:            v.GetString("gmail.from"),
		},
		MatchMode:    strings.ToLower(v.GetString("matching.mode")),
		FetchTimeout: v.GetDuration("fetch.timeout"),
	}

	switch cfg.Database.Driver {
	case "postgres", "mysql":
		if cfg.Database.DSN == "" {
			return nil, fmt.Errorf("DATABASE_DSN is required for driver %q", cfg.Database.Driver)
		}
	case "sqlite":
		if cfg.Database.DSN == "" {
			cfg.Database.DSN = "placement.db?_pragma=foreign_keys(1)"
		}
	default:
		return nil, fmt.Errorf("DATABASE_DRIVER must be postgres, mysql or sqlite, got %q", cfg.Database.Driver)
	}

	if cfg.MatchMode != MatchModeQuery && cfg.MatchMode != MatchModeMemory {
		return nil, fmt.Errorf("MATCHING_MODE must be %q or %q, got %q", MatchModeQuery, MatchModeMemory, cfg.MatchMode)
	}
	if cfg.FetchTimeout <= 0 {
		return nil, fmt.Errorf("FETCH_TIMEOUT must be a positive duration")
	}
	if cfg.Gmail.Enabled && cfg.Gmail.From == "" {
		return nil, fmt.Errorf("GMAIL_FROM is required when GMAIL_ENABLED is set")
	}

	return cfg, nil
}
