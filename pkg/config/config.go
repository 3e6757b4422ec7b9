package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		// Legacy deployments exposed every route twice under a platform
		// prefix; requests arriving with one of these prefixes are rewritten
		// to the canonical path instead of duplicating registrations.
		PathAliases []string `yaml:"path_aliases"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`
	Deepgram struct {
		APIKey  string        `yaml:"api_key"`
		BaseURL string        `yaml:"base_url"`
		Model   string        `yaml:"model"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"deepgram"`
	Anthropic struct {
		APIKey    string        `yaml:"api_key"`
		Model     string        `yaml:"model"`
		MaxTokens int           `yaml:"max_tokens"`
		Timeout   time.Duration `yaml:"timeout"`
	} `yaml:"anthropic"`
	Classifier struct {
		// When no API key is configured: degraded_mode=true serves a
		// deterministic mock analysis labeled as such; false hard-fails.
		DegradedMode bool `yaml:"degraded_mode"`
	} `yaml:"classifier"`
	Market struct {
		BasePrice     float64       `yaml:"base_price"`
		IndexScale    float64       `yaml:"index_scale"`
		LockTTL       time.Duration `yaml:"lock_ttl"`
		LockRetries   int           `yaml:"lock_retries"`
		LockRetryWait time.Duration `yaml:"lock_retry_wait"`
	} `yaml:"market"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled      bool          `yaml:"enabled"`
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Database     string        `yaml:"database"`
		User         string        `yaml:"user"`
		Password     string        `yaml:"password"`
		DialTimeout  time.Duration `yaml:"dial_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"clickhouse"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("DEEPGRAM_API_KEY"); v != "" {
		c.Deepgram.APIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		c.Anthropic.APIKey = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Deepgram.BaseURL == "" {
		c.Deepgram.BaseURL = "https://api.deepgram.com"
	}
	if c.Deepgram.Model == "" {
		c.Deepgram.Model = "nova-2"
	}
	if c.Deepgram.Timeout == 0 {
		c.Deepgram.Timeout = 60 * time.Second
	}
	if c.Anthropic.Model == "" {
		c.Anthropic.Model = "claude-sonnet-4-5"
	}
	if c.Anthropic.MaxTokens == 0 {
		c.Anthropic.MaxTokens = 1024
	}
	if c.Anthropic.Timeout == 0 {
		c.Anthropic.Timeout = 45 * time.Second
	}
	if c.Market.BasePrice == 0 {
		c.Market.BasePrice = 50
	}
	if c.Market.IndexScale == 0 {
		c.Market.IndexScale = 75
	}
	if c.Market.LockTTL == 0 {
		c.Market.LockTTL = 10 * time.Second
	}
	if c.Market.LockRetries == 0 {
		c.Market.LockRetries = 5
	}
	if c.Market.LockRetryWait == 0 {
		c.Market.LockRetryWait = 200 * time.Millisecond
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when clickhouse is enabled")
	}
	return nil
}
