package config

import (
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Product struct {
		Name     string `yaml:"name"`
		Category string `yaml:"category"`
		ImageURL string `yaml:"image_url"`
	} `yaml:"product"`
	DataSource struct {
		BaseURL string        `yaml:"base_url"`
		APIKey  string        `yaml:"api_key"`
		Latency time.Duration `yaml:"latency"`
		Seed    uint64        `yaml:"seed"`
	} `yaml:"data_source"`
	Analysis struct {
		APIKey  string        `yaml:"api_key"`
		Model   string        `yaml:"model"`
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"analysis"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
		ReportCron  string `yaml:"report_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	State struct {
		File string `yaml:"file"`
	} `yaml:"state"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("API_KEY"); v != "" {
		cfg.Analysis.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Analysis.APIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.Analysis.Model = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("DATA_SOURCE_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_SOURCE_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_REFRESH"); v != "" {
		cfg.Schedule.RefreshCron = v
	}
	if v := os.Getenv("CRON_REPORT"); v != "" {
		cfg.Schedule.ReportCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("STATE_FILE"); v != "" {
		cfg.State.File = v
	}
	if v := os.Getenv("MOCK_LATENCY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.DataSource.Latency = d
		}
	}

	// Defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Product.Name == "" {
		cfg.Product.Name = "Siux Electra ST4 Pro"
	}
	if cfg.Product.Category == "" {
		cfg.Product.Category = "padel racket"
	}
	if cfg.Product.ImageURL == "" {
		cfg.Product.ImageURL = "https://picsum.photos/400/500"
	}
	if cfg.DataSource.Latency == 0 {
		cfg.DataSource.Latency = 800 * time.Millisecond
	}
	if cfg.Analysis.Model == "" {
		cfg.Analysis.Model = "gemini-3-flash-preview"
	}
	if cfg.Analysis.Timeout == 0 {
		cfg.Analysis.Timeout = 2 * time.Minute
	}
	if cfg.Schedule.RefreshCron == "" {
		cfg.Schedule.RefreshCron = "0 0 7 * * *"
	}

	return cfg, nil
}

// Validate checks field consistency. Analysis and Telegram are optional.
func (c *Config) Validate() error {
	if c.DataSource.Latency < 0 {
		return fmt.Errorf("data_source.latency must not be negative")
	}
	if c.Analysis.Timeout <= 0 {
		return fmt.Errorf("analysis.timeout must be positive")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.Schedule.ReportCron != "" && c.Telegram.BotToken == "" {
		return fmt.Errorf("schedule.report_cron requires telegram to be configured")
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.Schedule.RefreshCron); err != nil {
		return fmt.Errorf("schedule.refresh_cron: %w", err)
	}
	if c.Schedule.ReportCron != "" {
		if _, err := parser.Parse(c.Schedule.ReportCron); err != nil {
			return fmt.Errorf("schedule.report_cron: %w", err)
		}
	}
	return nil
}

// AnalysisEnabled reports whether a Gemini credential is configured.
func (c *Config) AnalysisEnabled() bool { return c.Analysis.APIKey != "" }

// TelegramEnabled reports whether Telegram reporting is configured.
func (c *Config) TelegramEnabled() bool { return c.Telegram.BotToken != "" }
