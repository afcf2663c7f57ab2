// Package config holds the bot's runtime settings. Values come from a YAML file, then the
// environment, then command line flags.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Session store kinds.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config is the full bot configuration.
type Config struct {
	LLM      LLMConfig     `yaml:"llm"`
	Skills   SkillsConfig  `yaml:"skills"`
	Discord  DiscordConfig `yaml:"discord"`
	Store    StoreConfig   `yaml:"store"`
	Metrics  MetricsConfig `yaml:"metrics"`
	Health   HealthConfig  `yaml:"health"`
	LogLevel string        `yaml:"log_level"`
}

// LLMConfig selects the generation provider.
type LLMConfig struct {
	// openai, anthropic or gemini
	Provider    string        `yaml:"provider"`
	// Model empty means the provider's default model.
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
	// Role is the job title questions are written for.
	Role     string `yaml:"role"`
	Audience string `yaml:"audience"`
}

// SkillsConfig points at the skill matrix.
type SkillsConfig struct {
	Path        string `yaml:"path"`
	SessionSize int    `yaml:"session_size"`
}

type DiscordConfig struct {
	MessageLimit int `yaml:"message_limit"`
}

// StoreConfig picks where sessions live.
type StoreConfig struct {
	Kind        string        `yaml:"kind"`
	RedisAddr   string        `yaml:"redis_addr"`
	RedisTTL    time.Duration `yaml:"redis_ttl"`
	PostgresURL string        `yaml:"postgres_url"`
	// RecordEvaluations stores every graded answer when the postgres store is used.
	RecordEvaluations bool `yaml:"record_evaluations"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// HealthConfig controls the dependency monitor.
type HealthConfig struct {
	Interval      time.Duration `yaml:"interval"`
	AlertInterval time.Duration `yaml:"alert_interval"`
	// AlertChannelID is a Discord channel for outage alerts. Empty logs them instead.
	AlertChannelID string `yaml:"alert_channel_id"`
	// LLMHealthURL is polled when the model runs on a local llama.cpp server.
	LLMHealthURL string `yaml:"llm_health_url"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    "openai",
			Temperature: 0.7,
			Timeout:     60 * time.Second,
			Role:        "Project Manager in Software/IT",
			Audience:    "Project Managers in IT/Software",
		},
		Skills: SkillsConfig{
			Path:        "skill_matrix.csv",
			SessionSize: 10,
		},
		Discord: DiscordConfig{
			MessageLimit: 2000,
		},
		Store: StoreConfig{
			Kind:              StoreMemory,
			RedisTTL:          24 * time.Hour,
			RecordEvaluations: true,
		},
		Metrics: MetricsConfig{
			Addr: ":6060",
		},
		Health: HealthConfig{
			Interval:      30 * time.Second,
			AlertInterval: time.Hour,
		},
		LogLevel: "info",
	}
}

// Load reads the YAML file at path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	config := Default()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return config, nil
}

// ApplyEnv overrides fields from environment variables. getenv is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	setString := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	setString("LLM_PROVIDER", &c.LLM.Provider)
	setString("LLM_MODEL", &c.LLM.Model)
	setString("LLAMA_CPP_PATH", &c.LLM.BaseURL)
	setString("LLM_BASE_URL", &c.LLM.BaseURL)
	setString("INTERVIEW_ROLE", &c.LLM.Role)
	setString("SKILLS_PATH", &c.Skills.Path)
	setString("SESSION_STORE", &c.Store.Kind)
	setString("REDIS_ADDR", &c.Store.RedisAddr)
	setString("POSTGRES_URL", &c.Store.PostgresURL)
	setString("METRICS_ADDR", &c.Metrics.Addr)
	setString("LOG_LEVEL", &c.LogLevel)
	setString("ALERT_CHANNEL_ID", &c.Health.AlertChannelID)
	setString("LLM_HEALTH_URL", &c.Health.LLMHealthURL)

	if v := getenv("LLM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid LLM_TIMEOUT %q: %w", v, err)
		}
		c.LLM.Timeout = d
	}
	if v := getenv("LLM_TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid LLM_TEMPERATURE %q: %w", v, err)
		}
		c.LLM.Temperature = f
	}
	return nil
}

// Validate checks the values the bot cannot start without.
func (c *Config) Validate() error {
	var problems []string

	switch c.LLM.Provider {
	case "openai", "anthropic", "gemini":
	default:
		problems = append(problems, fmt.Sprintf("unknown llm provider %q", c.LLM.Provider))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		problems = append(problems, "llm temperature must be between 0 and 2")
	}
	if c.LLM.Timeout < 0 {
		problems = append(problems, "llm timeout must not be negative")
	}
	if c.Skills.Path == "" {
		problems = append(problems, "skills path is required")
	}
	if c.Skills.SessionSize <= 0 {
		problems = append(problems, "skills session size must be positive")
	}
	if c.Discord.MessageLimit <= 0 {
		problems = append(problems, "discord message limit must be positive")
	}
	if c.Health.Interval <= 0 {
		problems = append(problems, "health interval must be positive")
	}

	switch c.Store.Kind {
	case StoreMemory, StorePostgres:
	case StoreRedis:
		if c.Store.RedisAddr == "" {
			problems = append(problems, "redis_addr is required for the redis store")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown store kind %q", c.Store.Kind))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// ValidateStore checks the postgres url. Call it after secrets are loaded, the url may come from 1Password.
func (c *Config) ValidateStore() error {
	if c.Store.Kind == StorePostgres && c.Store.PostgresURL == "" {
		return fmt.Errorf("invalid config: postgres_url is required for the postgres store")
	}
	return nil
}
