package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all server configuration
type Config struct {
	Server ServerConfig `yaml:"server"`
	JWT    JWTConfig    `yaml:"jwt"`
	Redis  RedisConfig  `yaml:"redis"`
	Shops  ShopsConfig  `yaml:"shops"`
}

// ServerConfig holds server-specific settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// JWTConfig holds JWT authentication settings
type JWTConfig struct {
	Issuer              string `yaml:"issuer"`
	PublicKeyURL        string `yaml:"public_key_url"`
	PublicKeyRefreshHrs int    `yaml:"public_key_refresh_hours"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Address         string `yaml:"address"`
	Password        string `yaml:"password"`
	DB              int    `yaml:"db"`
	BlacklistPrefix string `yaml:"blacklist_prefix"`
	StockPrefix     string `yaml:"stock_prefix"`
	StockTTLHrs     int    `yaml:"stock_ttl_hours"`
}

// ShopsConfig holds content and stock generation settings
type ShopsConfig struct {
	ContentPacks   []string `yaml:"content_packs"`
	WorldStatePath string   `yaml:"world_state_path"`
	VerboseLogging bool     `yaml:"verbose_logging"`
	// DebugOpen skips shop conditions when opening, for testing packs.
	DebugOpen bool `yaml:"debug_open"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if not provided
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8090
	}
	if cfg.JWT.PublicKeyRefreshHrs == 0 {
		cfg.JWT.PublicKeyRefreshHrs = 24
	}
	if cfg.Redis.Address == "" {
		cfg.Redis.Address = "localhost:6379"
	}
	if cfg.Redis.BlacklistPrefix == "" {
		cfg.Redis.BlacklistPrefix = "jwt:blacklist:"
	}
	if cfg.Redis.StockPrefix == "" {
		cfg.Redis.StockPrefix = "shoptiles:stock:"
	}
	if cfg.Redis.StockTTLHrs == 0 {
		cfg.Redis.StockTTLHrs = 48
	}
	if len(cfg.Shops.ContentPacks) == 0 {
		cfg.Shops.ContentPacks = []string{"./packs"}
	}

	return &cfg, nil
}
