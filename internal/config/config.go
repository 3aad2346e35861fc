package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Model    ModelConfig    `yaml:"model"`
	Email    EmailConfig    `yaml:"email"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	API      APIConfig      `yaml:"api"`
	Feeds    []FeedConfig   `yaml:"feeds"`
	LogLevel string         `yaml:"log_level"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Addr string `yaml:"addr"`
}

type RabbitMQConfig struct {
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
	QueueName  string `yaml:"queue_name"`
}

// ModelConfig drives the generative-model client. MinInterval spaces calls
// to stay under the provider's per-minute quota.
type ModelConfig struct {
	Provider    string        `yaml:"provider"` // "openai" or "anthropic"
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	MinInterval time.Duration `yaml:"min_interval"`
	MaxRetries  int           `yaml:"max_retries"`
	BaseDelay   time.Duration `yaml:"base_delay"`
}

type EmailConfig struct {
	SMTPHost      string `yaml:"smtp_host"`
	SMTPPort      int    `yaml:"smtp_port"`
	From          string `yaml:"from"`
	Password      string `yaml:"password"`
	DisplayOffset string `yaml:"display_offset"` // e.g. "+05:30"
}

type PipelineConfig struct {
	Hours           int           `yaml:"hours"`
	TopN            int           `yaml:"top_n"`
	MaxContentChars int           `yaml:"max_content_chars"`
	Interval        time.Duration `yaml:"interval"`
}

type APIConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// FeedConfig describes one RSS/Atom source. Name doubles as the
// article_type half of digest identities.
type FeedConfig struct {
	Name      string        `yaml:"name"`
	URL       string        `yaml:"url"`
	FetchBody bool          `yaml:"fetch_body"`
	Timeout   time.Duration `yaml:"timeout"`
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Model.Provider == "" {
		c.Model.Provider = "openai"
	}
	if c.Model.MinInterval == 0 {
		c.Model.MinInterval = 6500 * time.Millisecond
	}
	if c.Model.MaxRetries == 0 {
		c.Model.MaxRetries = 3
	}
	if c.Model.BaseDelay == 0 {
		c.Model.BaseDelay = 10 * time.Second
	}
	if c.Email.SMTPHost == "" {
		c.Email.SMTPHost = "smtp.gmail.com"
	}
	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}
	if c.Email.DisplayOffset == "" {
		c.Email.DisplayOffset = "+05:30"
	}
	if c.Pipeline.Hours == 0 {
		c.Pipeline.Hours = 24
	}
	if c.Pipeline.TopN == 0 {
		c.Pipeline.TopN = 10
	}
	if c.Pipeline.MaxContentChars == 0 {
		c.Pipeline.MaxContentChars = 8000
	}
	if c.Pipeline.Interval == 0 {
		c.Pipeline.Interval = 24 * time.Hour
	}
	if c.API.Addr == "" {
		c.API.Addr = ":8080"
	}
	for i := range c.Feeds {
		if c.Feeds[i].Timeout == 0 {
			c.Feeds[i].Timeout = 30 * time.Second
		}
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// DisplayLocation resolves the configured fixed UTC offset used only for
// human-readable dates in greetings. Internal comparisons stay UTC.
func (e EmailConfig) DisplayLocation() *time.Location {
	offset := strings.TrimSpace(e.DisplayOffset)
	sign := 1
	switch {
	case strings.HasPrefix(offset, "-"):
		sign = -1
		offset = offset[1:]
	case strings.HasPrefix(offset, "+"):
		offset = offset[1:]
	}

	parts := strings.SplitN(offset, ":", 2)
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.UTC
	}
	minutes := 0
	if len(parts) == 2 {
		minutes, err = strconv.Atoi(parts[1])
		if err != nil {
			return time.UTC
		}
	}

	seconds := sign * (hours*3600 + minutes*60)
	if seconds == 0 {
		return time.UTC
	}
	return time.FixedZone(e.DisplayOffset, seconds)
}
