// Package config loads startup configuration from YAML with environment
// overrides.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 2333
	defaultEnv        = "development"
	defaultRedisURL   = "redis://localhost:6379/0"
	defaultSnapshot   = "data.json"
	defaultExportDir  = "export"
)

// AppConfig holds runtime startup configuration.
type AppConfig struct {
	Port           int      `yaml:"port"`
	Env            string   `yaml:"env"` // "development" | "production"
	RedisURL       string   `yaml:"redis_url"`
	SnapshotPath   string   `yaml:"snapshot_path"`
	ExportDir      string   `yaml:"export_dir"`
	OAuthExchange  string   `yaml:"oauth_exchange_url"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	S3             S3Config `yaml:"s3"`
}

// S3Config configures the optional export mirror.
type S3Config struct {
	Enable          bool   `yaml:"enable"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	Key             string `yaml:"key"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Endpoint        string `yaml:"endpoint"`
}

type rawAppConfig struct {
	Port           int      `yaml:"port"`
	Env            string   `yaml:"env"`
	NodeEnv        string   `yaml:"node_env"`
	RedisURL       string   `yaml:"redis_url"`
	SnapshotPath   string   `yaml:"snapshot_path"`
	DataPath       string   `yaml:"data_path"`
	ExportDir      string   `yaml:"export_dir"`
	OAuthExchange  string   `yaml:"oauth_exchange_url"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	S3             S3Config `yaml:"s3"`
}

// Load reads the config file, applies defaults and env overrides. A
// missing file is fine; defaults and the environment still apply.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	cfg := defaultAppConfig()

	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		raw := rawAppConfig{}
		if err := decoder.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parse config file %q: %w", path, err)
		}
		applyRawAppConfig(&cfg, raw)
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	applyEnvOverrides(&cfg)

	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d, expected 1-65535", cfg.Port)
	}
	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port:         defaultPort,
		Env:          defaultEnv,
		RedisURL:     defaultRedisURL,
		SnapshotPath: defaultSnapshot,
		ExportDir:    defaultExportDir,
	}
}

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.Env); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(raw.NodeEnv); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(raw.RedisURL); v != "" {
		cfg.RedisURL = v
	}
	if v := strings.TrimSpace(raw.SnapshotPath); v != "" {
		cfg.SnapshotPath = v
	}
	if v := strings.TrimSpace(raw.DataPath); v != "" {
		cfg.SnapshotPath = v
	}
	if v := strings.TrimSpace(raw.ExportDir); v != "" {
		cfg.ExportDir = v
	}
	if v := strings.TrimSpace(raw.OAuthExchange); v != "" {
		cfg.OAuthExchange = v
	}
	if raw.AllowedOrigins != nil {
		cfg.AllowedOrigins = normalizeOrigins(raw.AllowedOrigins)
	}
	cfg.S3 = raw.S3

	cfg.Env = normalizeEnv(cfg.Env)
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_URL")); v != "" {
		cfg.RedisURL = v
	}
	if v := strings.TrimSpace(os.Getenv("SNAPSHOT_PATH")); v != "" {
		cfg.SnapshotPath = v
	}
	if v := strings.TrimSpace(os.Getenv("EXPORT_DIR")); v != "" {
		cfg.ExportDir = v
	}
	if v := strings.TrimSpace(os.Getenv("OAUTH_EXCHANGE_URL")); v != "" {
		cfg.OAuthExchange = v
	}
	if v := strings.TrimSpace(os.Getenv("S3_BUCKET")); v != "" {
		cfg.S3.Enable = true
		cfg.S3.Bucket = v
	}
	if v := strings.TrimSpace(os.Getenv("S3_REGION")); v != "" {
		cfg.S3.Region = v
	}
	if v := strings.TrimSpace(os.Getenv("S3_ACCESS_KEY_ID")); v != "" {
		cfg.S3.AccessKeyID = v
	}
	if v := strings.TrimSpace(os.Getenv("S3_SECRET_ACCESS_KEY")); v != "" {
		cfg.S3.SecretAccessKey = v
	}
	if v := strings.TrimSpace(os.Getenv("S3_ENDPOINT")); v != "" {
		cfg.S3.Endpoint = v
	}
	cfg.Env = normalizeEnv(cfg.Env)
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(env string) string {
	trimmed := strings.ToLower(strings.TrimSpace(env))
	if trimmed == "" {
		return defaultEnv
	}
	return trimmed
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, defaultEnv)
}
