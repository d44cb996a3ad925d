// Package config assembles startup configuration from an optional YAML file
// and environment overrides. The signing secret has no default: a service
// without one refuses to start.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultAddr       = ":8080"
	defaultAccessTTL  = 900
	defaultRefreshTTL = 86400
	defaultMFATTL     = 300
)

// Config holds the service configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Auth struct {
		Secret            string `yaml:"secret"`
		AccessTTLSeconds  int    `yaml:"access_ttl_seconds"`
		RefreshTTLSeconds int    `yaml:"refresh_ttl_seconds"`
		MFATTLSeconds     int    `yaml:"mfa_ttl_seconds"`
		// LegacySeedPassword enables the bcrypt seed-data shim; leave
		// empty everywhere but development.
		LegacySeedPassword string `yaml:"legacy_seed_password"`
	} `yaml:"auth"`
	Database struct {
		DSN string `yaml:"dsn"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
}

// Load reads path when non-empty, applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Server.Addr = defaultAddr
	cfg.Auth.AccessTTLSeconds = defaultAccessTTL
	cfg.Auth.RefreshTTLSeconds = defaultRefreshTTL
	cfg.Auth.MFATTLSeconds = defaultMFATTL

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config file: %w", err)
		}
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config file: %w", err)
		}
	}

	applyEnv(cfg)

	if cfg.Auth.Secret == "" {
		return nil, errors.New("auth secret is not configured")
	}
	if cfg.Auth.AccessTTLSeconds <= 0 {
		cfg.Auth.AccessTTLSeconds = defaultAccessTTL
	}
	if cfg.Auth.RefreshTTLSeconds <= 0 {
		cfg.Auth.RefreshTTLSeconds = defaultRefreshTTL
	}
	if cfg.Auth.MFATTLSeconds <= 0 {
		cfg.Auth.MFATTLSeconds = defaultMFATTL
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultAddr
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Addr, "DHAMEN_ADDR")
	setString(&cfg.Auth.Secret, "DHAMEN_JWT_SECRET")
	setInt(&cfg.Auth.AccessTTLSeconds, "DHAMEN_JWT_EXPIRES_IN")
	setInt(&cfg.Auth.RefreshTTLSeconds, "DHAMEN_REFRESH_EXPIRES_IN")
	setInt(&cfg.Auth.MFATTLSeconds, "DHAMEN_MFA_EXPIRES_IN")
	setString(&cfg.Auth.LegacySeedPassword, "DHAMEN_LEGACY_SEED_PASSWORD")
	setString(&cfg.Database.DSN, "DHAMEN_PG_DSN")
	setString(&cfg.Redis.Addr, "DHAMEN_REDIS_ADDR")
	setString(&cfg.Redis.Password, "DHAMEN_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "DHAMEN_REDIS_DB")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// AccessTTL returns the access token lifetime as a duration.
func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.Auth.AccessTTLSeconds) * time.Second
}

// RefreshTTL returns the refresh token lifetime as a duration.
func (c *Config) RefreshTTL() time.Duration {
	return time.Duration(c.Auth.RefreshTTLSeconds) * time.Second
}

// MFATTL returns the MFA challenge token lifetime as a duration.
func (c *Config) MFATTL() time.Duration {
	return time.Duration(c.Auth.MFATTLSeconds) * time.Second
}
