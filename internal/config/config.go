package config

import (
	"fmt"
	"net/url"
	"os"
)

type Config struct {
	AppEnv          string
	Port            string
	DatabaseURL     string
	SupabaseURL     string
	SupabaseAnonKey string
	WuzapiURL       string
	LogLevel        string
	LogFormat       string
}

func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:          getEnv("APP_ENV", "development"),
		Port:            getEnv("PORT", "8080"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		SupabaseURL:     getEnv("SUPABASE_URL", ""),
		SupabaseAnonKey: getEnv("SUPABASE_ANON_KEY", ""),
		WuzapiURL:       getEnv("WUZAPI_URL", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.SupabaseURL == "" {
		return nil, fmt.Errorf("SUPABASE_URL is required")
	}
	if cfg.SupabaseAnonKey == "" {
		return nil, fmt.Errorf("SUPABASE_ANON_KEY is required")
	}
	if cfg.WuzapiURL == "" {
		return nil, fmt.Errorf("WUZAPI_URL is required")
	}

	if _, err := url.ParseRequestURI(cfg.SupabaseURL); err != nil {
		return nil, fmt.Errorf("SUPABASE_URL must be a valid URL: %w", err)
	}
	if _, err := url.ParseRequestURI(cfg.WuzapiURL); err != nil {
		return nil, fmt.Errorf("WUZAPI_URL must be a valid URL: %w", err)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
