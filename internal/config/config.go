package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"SignalSentinel/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Instruments []model.Instrument `yaml:"instruments" validate:"required,min=1,dive"`
	Strategy    StrategyConfig     `yaml:"strategy"`
	DataSource  DataSourceConfig   `yaml:"data_source"`
	Telegram    TelegramConfig     `yaml:"telegram"`
	Sentiment   SentimentConfig    `yaml:"sentiment"`
	News        NewsConfig         `yaml:"news"`
	State       StateConfig        `yaml:"state"`
	Digest      DigestConfig       `yaml:"digest"`
	Schedule    ScheduleConfig     `yaml:"schedule"`
	Database    DatabaseConfig     `yaml:"database"`
	Server      ServerConfig       `yaml:"server"`
	Log         LogConfig          `yaml:"log"`
	Proxy       string             `yaml:"proxy"`
}

type StrategyConfig struct {
	RSIPeriod         int     `yaml:"rsi_period" default:"14" validate:"gte=1"`
	BBPeriod          int     `yaml:"bb_period" default:"20" validate:"gte=2"`
	BBMultiplier      float64 `yaml:"bb_multiplier" default:"2" validate:"gte=0"`
	DistanceThreshold float64 `yaml:"distance_threshold" default:"1" validate:"gte=0"`
}

type DataSourceConfig struct {
	Provider      string   `yaml:"provider" default:"twelvedata" validate:"oneof=twelvedata yahoo mock"`
	BaseURL       string   `yaml:"base_url"`
	APIKeys       []string `yaml:"api_keys"`
	ShortInterval string   `yaml:"short_interval" default:"1h" validate:"required"`
	ShortLimit    int      `yaml:"short_limit" default:"100" validate:"gte=1"`
	LongInterval  string   `yaml:"long_interval" default:"1day" validate:"required"`
	LongLimit     int      `yaml:"long_limit" default:"50" validate:"gte=1"`
	MockPrice     float64  `yaml:"mock_price" default:"2000"`
}

type TelegramConfig struct {
	BotToken   string `yaml:"bot_token"`
	ChatID     string `yaml:"chat_id"`
	MaxRetries int    `yaml:"max_retries" default:"2" validate:"gte=0,lte=5"`
}

type SentimentConfig struct {
	Enabled   bool   `yaml:"enabled" default:"true"`
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	BatchSize int    `yaml:"batch_size" default:"15" validate:"gte=1,lte=50"`
}

type NewsConfig struct {
	BaseURL string `yaml:"base_url"`
}

type StateConfig struct {
	Backend       string `yaml:"backend" default:"file" validate:"oneof=file sqlite redis memory"`
	KeyScope      string `yaml:"key_scope" default:"instrument" validate:"oneof=instrument strategy"`
	FilePath      string `yaml:"file_path" default:"data/signal_state.json"`
	SQLitePath    string `yaml:"sqlite_path" default:"data/signal_state.db"`
	RedisURL      string `yaml:"redis_url" default:"redis://localhost:6379/0"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	RedisPrefix   string `yaml:"redis_prefix" default:"signalsentinel"`
}

type DigestConfig struct {
	Policy         string `yaml:"policy" default:"always" validate:"oneof=always once_per_day"`
	RecordIdentity bool   `yaml:"record_identity" default:"true"`
	WindowHour     int    `yaml:"window_hour" default:"1" validate:"gte=0,lte=23"`
	WindowMinute   int    `yaml:"window_minute" validate:"gte=0,lte=59"`
	WindowMinutes  int    `yaml:"window_minutes" default:"20" validate:"gte=1,lte=1440"`
	RangeBars      int    `yaml:"range_bars" default:"24" validate:"gte=0"`
}

// ScheduleConfig holds six-field cron expressions evaluated in UTC+1.
type ScheduleConfig struct {
	NormalCron string `yaml:"normal_cron" default:"0 */20 * * * *" validate:"required"`
	DigestCron string `yaml:"digest_cron" default:"0 5 1 * * *" validate:"required"`
}

type DatabaseConfig struct {
	SQLitePath string `yaml:"sqlite_path" default:"data/signal_sentinel.db"`
}

type ServerConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Addr    string `yaml:"addr" default:":8080"`
}

type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" default:"console" validate:"oneof=json console"`
	Output string `yaml:"output" default:"stdout"`
}

var validate = validator.New()

// DefaultInstruments is used when the config names none.
func DefaultInstruments() []model.Instrument {
	return []model.Instrument{{Symbol: "XAU/USD", NewsQuery: "gold market"}}
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)

	if len(cfg.Instruments) == 0 {
		cfg.Instruments = DefaultInstruments()
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("TD_API_KEYS"); v != "" {
		cfg.DataSource.APIKeys = splitList(v)
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Sentiment.APIKey = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.State.RedisURL = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks field constraints and cross-field requirements.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.DataSource.Provider == "twelvedata" && len(c.DataSource.APIKeys) == 0 {
		return fmt.Errorf("data_source.api_keys (or TD_API_KEYS) is required for twelvedata")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// TelegramEnabled reports whether alerts go to Telegram rather than the log.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// SentimentEnabled reports whether headline sentiment can be computed.
func (c *Config) SentimentEnabled() bool {
	return c.Sentiment.Enabled && c.Sentiment.APIKey != ""
}
