package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string `yaml:"log_level"`
	JSONLog  bool   `yaml:"json_log"`

	// HTTP
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	UserAgent   string        `yaml:"user_agent"`
	ListenAddr  string        `yaml:"listen_addr"`

	// Rate limiting (per domain)
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`

	// Browser pool
	BrowserPoolSize int           `yaml:"browser_pool_size"`
	BrowserHeadless bool          `yaml:"browser_headless"`
	ChromePath      string        `yaml:"chrome_path"`
	PoolAcquireTTL  time.Duration `yaml:"pool_acquire_ttl"`
	RunTimeout      time.Duration `yaml:"run_timeout"`

	// Model fallback. An empty API key disables it.
	LLMBaseURL     string        `yaml:"llm_base_url"`
	LLMAPIKey      string        `yaml:"llm_api_key"`
	LLMModel       string        `yaml:"llm_model"`
	LLMTemperature float64       `yaml:"llm_temperature"`
	LLMTimeout     time.Duration `yaml:"llm_timeout"`
	LLMMaxRetries  int           `yaml:"llm_max_retries"`
}

// Load builds a Config from defaults, an optional YAML file, environment
// variables and CLI flags, in increasing precedence. Caller passes the root
// *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := &Config{
		LogLevel:        DefaultLogLevel,
		JSONLog:         DefaultJSONLog,
		HTTPTimeout:     DefaultHTTPTimeout,
		UserAgent:       DefaultUserAgent,
		ListenAddr:      DefaultListenAddr,
		RateLimitRPS:    DefaultRateLimitRPS,
		RateLimitBurst:  DefaultRateLimitBurst,
		BrowserPoolSize: DefaultBrowserPoolSize,
		BrowserHeadless: DefaultBrowserHeadless,
		PoolAcquireTTL:  DefaultPoolAcquireTTL,
		RunTimeout:      DefaultRunTimeout,
		LLMBaseURL:      DefaultLLMBaseURL,
		LLMModel:        DefaultLLMModel,
		LLMTemperature:  DefaultLLMTemperature,
		LLMTimeout:      DefaultLLMTimeout,
		LLMMaxRetries:   DefaultLLMMaxRetries,
	}

	if path := configFilePath(cmd); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)
	applyFlags(cfg, cmd)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func configFilePath(cmd *cobra.Command) string {
	if cmd != nil {
		if f := cmd.Flags().Lookup("config"); f != nil && f.Value.String() != "" {
			return f.Value.String()
		}
	}
	return os.Getenv("HARVEST_CONFIG")
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("HARVEST_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("HARVEST_CHROME_PATH"); v != "" {
		cfg.ChromePath = v
	}
	if v := os.Getenv("HARVEST_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("HARVEST_BROWSER_POOL_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.BrowserPoolSize = n
		}
	}
	if v := os.Getenv("HARVEST_RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = f
		}
	}
	// The OpenAI-style variable is honored alongside the prefixed one so a
	// stock environment works unchanged.
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.LLMAPIKey = v
	}
	if v := os.Getenv("HARVEST_LLM_API_KEY"); v != "" {
		cfg.LLMAPIKey = v
	}
	if v := os.Getenv("HARVEST_LLM_BASE_URL"); v != "" {
		cfg.LLMBaseURL = v
	}
	if v := os.Getenv("HARVEST_LLM_MODEL"); v != "" {
		cfg.LLMModel = v
	}
}

func applyFlags(cfg *Config, cmd *cobra.Command) {
	if cmd == nil {
		return
	}
	if f := cmd.Flags().Lookup("user-agent"); f != nil && f.Value.String() != "" {
		cfg.UserAgent = f.Value.String()
	}
	if f := cmd.Flags().Lookup("timeout"); f != nil && f.Value.String() != "" {
		if d, err := time.ParseDuration(f.Value.String()); err == nil {
			cfg.HTTPTimeout = d
		}
	}
	if f := cmd.Flags().Lookup("json"); f != nil && f.Value.String() == "true" {
		cfg.JSONLog = true
	}
	if f := cmd.Flags().Lookup("verbose"); f != nil && f.Value.String() == "true" {
		cfg.LogLevel = "debug"
	}
	if f := cmd.Flags().Lookup("quiet"); f != nil && f.Value.String() == "true" {
		cfg.LogLevel = "error"
	}
	if f := cmd.Flags().Lookup("headful"); f != nil && f.Value.String() == "true" {
		cfg.BrowserHeadless = false
	}
}
