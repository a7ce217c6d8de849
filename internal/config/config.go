package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Store   StoreConfig   `yaml:"store"`
	Mistral MistralConfig `yaml:"mistral"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// Transport is "http" or "stdio".
	Transport string `yaml:"transport"`
}

// StoreConfig selects the object store backend. Backend is "s3",
// "sqlite", or "memory".
type StoreConfig struct {
	Backend   string `yaml:"backend"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Endpoint  string `yaml:"endpoint"`
	Path      string `yaml:"path"`
}

type MistralConfig struct {
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host:      "0.0.0.0",
			Port:      8080,
			Transport: "http",
		},
		Store: StoreConfig{
			Backend: "sqlite",
			Path:    "opendaw.db",
			Region:  "us-east-1",
		},
		Mistral: MistralConfig{
			Model: "mistral-small-latest",
		},
		Log: LogConfig{
			Level: "info",
		},
	}

	if path := os.Getenv("OPENDAW_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("OPENDAW_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("OPENDAW_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid OPENDAW_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if transport := os.Getenv("OPENDAW_TRANSPORT"); transport != "" {
		cfg.Server.Transport = transport
	}
	if backend := os.Getenv("OPENDAW_STORE_BACKEND"); backend != "" {
		cfg.Store.Backend = backend
	}
	if bucket := os.Getenv("OPENDAW_S3_BUCKET"); bucket != "" {
		cfg.Store.Bucket = bucket
	}
	if region := os.Getenv("OPENDAW_S3_REGION"); region != "" {
		cfg.Store.Region = region
	}
	if key := os.Getenv("OPENDAW_S3_ACCESS_KEY"); key != "" {
		cfg.Store.AccessKey = key
	}
	if secret := os.Getenv("OPENDAW_S3_SECRET_KEY"); secret != "" {
		cfg.Store.SecretKey = secret
	}
	if endpoint := os.Getenv("OPENDAW_S3_ENDPOINT"); endpoint != "" {
		cfg.Store.Endpoint = endpoint
	}
	if path := os.Getenv("OPENDAW_STORE_PATH"); path != "" {
		cfg.Store.Path = path
	}
	if apiKey := os.Getenv("MISTRAL_API_KEY"); apiKey != "" {
		cfg.Mistral.APIKey = apiKey
	}
	if model := os.Getenv("OPENDAW_MISTRAL_MODEL"); model != "" {
		cfg.Mistral.Model = model
	}
	if timeoutStr := os.Getenv("OPENDAW_MISTRAL_TIMEOUT"); timeoutStr != "" {
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid OPENDAW_MISTRAL_TIMEOUT: %w", err)
		}
		cfg.Mistral.Timeout = timeout
	}
	if level := os.Getenv("OPENDAW_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Server.Transport {
	case "http", "stdio":
	default:
		return fmt.Errorf("invalid transport %q: must be http or stdio", c.Server.Transport)
	}
	switch c.Store.Backend {
	case "sqlite", "memory":
	case "s3":
		if c.Store.Bucket == "" {
			return fmt.Errorf("s3 backend requires a bucket")
		}
	default:
		return fmt.Errorf("invalid store backend %q: must be s3, sqlite, or memory", c.Store.Backend)
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
