// Package config loads server settings from an optional YAML file with
// environment overrides. Env wins over file, file wins over defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	yaml "gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr      string  `yaml:"listenAddr"`
	DatabaseURL     string  `yaml:"databaseUrl"`
	RedisURL        string  `yaml:"redisUrl"`
	CacheTTLMinutes int     `yaml:"cacheTtlMinutes"`
	RateRPS         float64 `yaml:"rateRps"`
	RateBurst       int     `yaml:"rateBurst"`
	Migrate         bool    `yaml:"migrate"`
}

func defaults() Config {
	return Config{
		ListenAddr:      ":8080",
		CacheTTLMinutes: 30,
		RateRPS:         50,
		RateBurst:       100,
		Migrate:         true,
	}
}

// Load reads path (skipped when empty or missing) and applies env overrides.
func Load(path string) (Config, error) {
	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.ListenAddr = ":" + v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("CACHE_TTL_MIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheTTLMinutes = n
		}
	}
	if v := os.Getenv("RATE_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.RateRPS = f
		}
	}
	if v := os.Getenv("RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RateBurst = n
		}
	}
	if v := os.Getenv("DB_MIGRATE"); v == "false" {
		cfg.Migrate = false
	}
	return cfg, nil
}

func (c Config) CacheTTL() time.Duration { return time.Duration(c.CacheTTLMinutes) * time.Minute }
