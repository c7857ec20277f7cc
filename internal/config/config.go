package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/amishk599/offerhound/internal/ai"
	"github.com/amishk599/offerhound/internal/filter"
	"github.com/amishk599/offerhound/internal/model"
	"github.com/amishk599/offerhound/internal/scheduler"
)

// Source types accepted in the sources list.
const (
	SourceHackerNews     = "hackernews"
	SourceRemoteOK       = "remoteok"
	SourceWeWorkRemotely = "weworkremotely"
	SourceYCJobs         = "ycjobs"
	SourceWellfound      = "wellfound"
	SourceAdzuna         = "adzuna"
	SourceGreenhouse     = "greenhouse"
	SourceLever          = "lever"
	SourceAshby          = "ashby"
)

var sourceTypes = []string{
	SourceHackerNews, SourceRemoteOK, SourceWeWorkRemotely, SourceYCJobs, SourceWellfound,
	SourceAdzuna, SourceGreenhouse, SourceLever, SourceAshby,
}

// Notification channels.
const (
	ChannelLog      = "log"
	ChannelSlack    = "slack"
	ChannelTelegram = "telegram"
)

// Config is the root configuration for offerhound.
type Config struct {
	Schedule     string
	History      HistoryConfig
	Strategy     model.SearchStrategy
	Filters      filter.Overrides
	Sources      []SourceConfig
	Concurrency  ConcurrencyConfig
	RateLimit    RateLimitConfig
	Retry        RetryConfig
	Notification NotificationConfig
	AI           AIConfig
}

// HistoryConfig selects the history backend. Path is resolved relative to
// the config file.
type HistoryConfig struct {
	Backend   string `yaml:"backend"` // file, sqlite, postgres, redis, memory
	Path      string `yaml:"path"`
	DSN       string `yaml:"dsn"`
	RedisURL  string `yaml:"redis_url"`
	KeyPrefix string `yaml:"key_prefix"`
}

// SourceConfig describes one source. Fields beyond Type apply to specific
// source types only.
type SourceConfig struct {
	Type       string
	Enabled    bool
	Name       string // company display name (ATS sources)
	BoardToken string // greenhouse, lever, ashby
	Feeds      []string
	Role       string // wellfound
	Country    string // adzuna
	AppID      string
	AppKey     string
	SkipStages []string
	Timeout    time.Duration // zero uses Concurrency.SourceTimeout
}

// Key is the rate-limit key: sources sharing an upstream share a key.
func (s SourceConfig) Key() string {
	if s.Type == SourceYCJobs {
		return SourceHackerNews
	}
	return s.Type
}

type ConcurrencyConfig struct {
	SourceWorkers int
	SourceTimeout time.Duration
	HNWorkers     int
	HNItemTimeout time.Duration
	HTTPTimeout   time.Duration
}

// RateLimitConfig controls per-upstream spacing and the sequential pacer.
type RateLimitConfig struct {
	MinDelay  time.Duration
	Overrides map[string]time.Duration // keyed by source type
	PacerMin  time.Duration
	PacerMax  time.Duration
}

type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// NotificationConfig lists the channels new offers are sent to.
type NotificationConfig struct {
	Channels         []string
	WebhookURL       string // slack
	TelegramToken    string
	TelegramChatID   int64
	TelegramEndpoint string // defaults to the public Bot API
}

// AIConfig controls the optional viability check.
type AIConfig struct {
	Enabled bool
	BaseURL string        // defaults to https://api.openai.com/v1
	Model   string        // e.g. "gpt-4o-mini"
	APIKey  string        // expanded from env var by Load
	Timeout time.Duration // per-request timeout
	Profile ai.Profile
}

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultSchedule      = "@every 6h"
	defaultHistoryFile   = "history.json"
	defaultHistoryDB     = "history.db"
	slackWebhookPrefix   = "https://hooks.slack.com/"
)

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	Schedule     string                `yaml:"schedule"`
	History      HistoryConfig         `yaml:"history"`
	Strategy     *model.SearchStrategy `yaml:"strategy"`
	StrategyFile string                `yaml:"strategy_file"`
	Filters      filter.Overrides      `yaml:"filters"`
	Sources      []rawSourceConfig     `yaml:"sources"`
	Concurrency  rawConcurrencyConfig  `yaml:"concurrency"`
	RateLimit    rawRateLimitConfig    `yaml:"rate_limit"`
	Retry        rawRetryConfig        `yaml:"retry"`
	Notification rawNotificationConfig `yaml:"notification"`
	AI           rawAIConfig           `yaml:"ai"`
}

type rawSourceConfig struct {
	Type       string   `yaml:"type"`
	Enabled    *bool    `yaml:"enabled"`
	Name       string   `yaml:"name"`
	BoardToken string   `yaml:"board_token"`
	Feeds      []string `yaml:"feeds"`
	Role       string   `yaml:"role"`
	Country    string   `yaml:"country"`
	AppID      string   `yaml:"app_id"`
	AppKey     string   `yaml:"app_key"`
	SkipStages []string `yaml:"skip_stages"`
	Timeout    string   `yaml:"timeout"`
}

type rawConcurrencyConfig struct {
	SourceWorkers int    `yaml:"source_workers"`
	SourceTimeout string `yaml:"source_timeout"`
	HNWorkers     int    `yaml:"hn_workers"`
	HNItemTimeout string `yaml:"hn_item_timeout"`
	HTTPTimeout   string `yaml:"http_timeout"`
}

type rawRateLimitConfig struct {
	MinDelay  string            `yaml:"min_delay"`
	Overrides map[string]string `yaml:"overrides"`
	PacerMin  string            `yaml:"pacer_min"`
	PacerMax  string            `yaml:"pacer_max"`
}

type rawRetryConfig struct {
	MaxRetries *int   `yaml:"max_retries"`
	BaseDelay  string `yaml:"base_delay"`
}

type rawNotificationConfig struct {
	Channels         []string `yaml:"channels"`
	WebhookURL       string   `yaml:"webhook_url"`
	TelegramToken    string   `yaml:"telegram_token"`
	TelegramChatID   int64    `yaml:"telegram_chat_id"`
	TelegramEndpoint string   `yaml:"telegram_endpoint"`
}

type rawAIConfig struct {
	Enabled bool       `yaml:"enabled"`
	BaseURL string     `yaml:"base_url"`
	Model   string     `yaml:"model"`
	APIKey  string     `yaml:"api_key"`
	Timeout string     `yaml:"timeout"`
	Profile ai.Profile `yaml:"profile"`
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
// A .env file next to the config is loaded first so ${VAR} references can use
// it; variables already set in the environment win.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	dir := filepath.Dir(path)

	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := &Config{
		Schedule: raw.Schedule,
		History:  raw.History,
		Filters:  raw.Filters,
	}
	if cfg.Schedule == "" {
		cfg.Schedule = defaultSchedule
	}
	if cfg.History.Path == "" {
		cfg.History.Path = defaultHistoryFile
		if cfg.History.Backend == "sqlite" {
			cfg.History.Path = defaultHistoryDB
		}
	}
	cfg.History.Path = resolve(dir, cfg.History.Path)

	switch {
	case raw.Strategy != nil && raw.StrategyFile != "":
		return nil, fmt.Errorf("strategy and strategy_file are mutually exclusive")
	case raw.Strategy != nil:
		cfg.Strategy = *raw.Strategy
	case raw.StrategyFile != "":
		if cfg.Strategy, err = LoadStrategy(resolve(dir, raw.StrategyFile)); err != nil {
			return nil, err
		}
	}

	for i, rs := range raw.Sources {
		sc, err := parseSource(rs)
		if err != nil {
			return nil, fmt.Errorf("sources[%d]: %w", i, err)
		}
		cfg.Sources = append(cfg.Sources, sc)
	}

	if cfg.Concurrency, err = parseConcurrency(raw.Concurrency); err != nil {
		return nil, err
	}
	if cfg.RateLimit, err = parseRateLimit(raw.RateLimit); err != nil {
		return nil, err
	}
	if cfg.Retry, err = parseRetry(raw.Retry); err != nil {
		return nil, err
	}

	cfg.Notification = NotificationConfig{
		Channels:         raw.Notification.Channels,
		WebhookURL:       raw.Notification.WebhookURL,
		TelegramToken:    raw.Notification.TelegramToken,
		TelegramChatID:   raw.Notification.TelegramChatID,
		TelegramEndpoint: raw.Notification.TelegramEndpoint,
	}
	if len(cfg.Notification.Channels) == 0 {
		cfg.Notification.Channels = []string{ChannelLog}
	}

	aiTimeout, err := parseDuration("ai.timeout", raw.AI.Timeout, 30*time.Second)
	if err != nil {
		return nil, err
	}
	aiBaseURL := raw.AI.BaseURL
	if aiBaseURL == "" {
		aiBaseURL = defaultOpenAIBaseURL
	}
	cfg.AI = AIConfig{
		Enabled: raw.AI.Enabled,
		BaseURL: aiBaseURL,
		Model:   raw.AI.Model,
		APIKey:  raw.AI.APIKey,
		Timeout: aiTimeout,
		Profile: raw.AI.Profile,
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadStrategy reads a search strategy file. JSON is accepted as well as YAML.
func LoadStrategy(path string) (model.SearchStrategy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.SearchStrategy{}, fmt.Errorf("read strategy: %w", err)
	}
	var s model.SearchStrategy
	if err := yaml.Unmarshal(data, &s); err != nil {
		return model.SearchStrategy{}, fmt.Errorf("parse strategy %s: %w", path, err)
	}
	return s, nil
}

// EnabledSources returns the sources with enabled set, in configured order.
func (c *Config) EnabledSources() []SourceConfig {
	var out []SourceConfig
	for _, s := range c.Sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

func parseSource(rs rawSourceConfig) (SourceConfig, error) {
	timeout, err := parseDuration("timeout", rs.Timeout, 0)
	if err != nil {
		return SourceConfig{}, err
	}
	enabled := true
	if rs.Enabled != nil {
		enabled = *rs.Enabled
	}
	return SourceConfig{
		Type:       strings.ToLower(strings.TrimSpace(rs.Type)),
		Enabled:    enabled,
		Name:       rs.Name,
		BoardToken: rs.BoardToken,
		Feeds:      rs.Feeds,
		Role:       rs.Role,
		Country:    rs.Country,
		AppID:      rs.AppID,
		AppKey:     rs.AppKey,
		SkipStages: rs.SkipStages,
		Timeout:    timeout,
	}, nil
}

func parseConcurrency(raw rawConcurrencyConfig) (ConcurrencyConfig, error) {
	var (
		c   = ConcurrencyConfig{SourceWorkers: raw.SourceWorkers, HNWorkers: raw.HNWorkers}
		err error
	)
	if c.SourceTimeout, err = parseDuration("concurrency.source_timeout", raw.SourceTimeout, 5*time.Minute); err != nil {
		return c, err
	}
	if c.HNItemTimeout, err = parseDuration("concurrency.hn_item_timeout", raw.HNItemTimeout, 10*time.Second); err != nil {
		return c, err
	}
	if c.HTTPTimeout, err = parseDuration("concurrency.http_timeout", raw.HTTPTimeout, 30*time.Second); err != nil {
		return c, err
	}
	if c.HNWorkers == 0 {
		c.HNWorkers = 20
	}
	return c, nil
}

func parseRateLimit(raw rawRateLimitConfig) (RateLimitConfig, error) {
	var (
		r   = RateLimitConfig{Overrides: make(map[string]time.Duration)}
		err error
	)
	if r.MinDelay, err = parseDuration("rate_limit.min_delay", raw.MinDelay, 2*time.Second); err != nil {
		return r, err
	}
	for key, v := range raw.Overrides {
		d, err := parseDuration(fmt.Sprintf("rate_limit.overrides[%q]", key), v, 0)
		if err != nil {
			return r, err
		}
		r.Overrides[key] = d
	}
	if r.PacerMin, err = parseDuration("rate_limit.pacer_min", raw.PacerMin, 5*time.Second); err != nil {
		return r, err
	}
	if r.PacerMax, err = parseDuration("rate_limit.pacer_max", raw.PacerMax, 8*time.Second); err != nil {
		return r, err
	}
	return r, nil
}

func parseRetry(raw rawRetryConfig) (RetryConfig, error) {
	r := RetryConfig{MaxRetries: 2}
	if raw.MaxRetries != nil {
		r.MaxRetries = *raw.MaxRetries
	}
	var err error
	r.BaseDelay, err = parseDuration("retry.base_delay", raw.BaseDelay, 5*time.Second)
	return r, err
}

func parseDuration(field, value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, value, err)
	}
	return d, nil
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func validate(cfg *Config) error {
	if err := scheduler.Validate(cfg.Schedule); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}

	switch cfg.History.Backend {
	case "", "file", "sqlite", "memory":
	case "postgres":
		if cfg.History.DSN == "" {
			return fmt.Errorf("history.dsn is required when history.backend is \"postgres\"")
		}
	case "redis":
		if cfg.History.RedisURL == "" {
			return fmt.Errorf("history.redis_url is required when history.backend is \"redis\"")
		}
	default:
		return fmt.Errorf("unknown history.backend %q", cfg.History.Backend)
	}

	enabled := 0
	for i, s := range cfg.Sources {
		if !slices.Contains(sourceTypes, s.Type) {
			return fmt.Errorf("sources[%d]: unknown type %q", i, s.Type)
		}
		switch s.Type {
		case SourceGreenhouse, SourceLever, SourceAshby:
			if s.BoardToken == "" || s.Name == "" {
				return fmt.Errorf("sources[%d]: %s requires name and board_token", i, s.Type)
			}
		}
		for _, stage := range s.SkipStages {
			if !slices.Contains(filter.StageOrder, stage) {
				return fmt.Errorf("sources[%d]: unknown filter stage %q in skip_stages", i, stage)
			}
		}
		if s.Timeout < 0 {
			return fmt.Errorf("sources[%d]: timeout must not be negative", i)
		}
		if s.Enabled {
			enabled++
		}
	}
	if enabled == 0 {
		return fmt.Errorf("at least one source must be enabled")
	}

	if cfg.Concurrency.SourceWorkers < 0 || cfg.Concurrency.HNWorkers < 0 {
		return fmt.Errorf("concurrency workers must not be negative")
	}
	if cfg.RateLimit.PacerMax < cfg.RateLimit.PacerMin {
		return fmt.Errorf("rate_limit.pacer_max (%v) must not be below pacer_min (%v)", cfg.RateLimit.PacerMax, cfg.RateLimit.PacerMin)
	}
	if cfg.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must not be negative")
	}

	for _, ch := range cfg.Notification.Channels {
		switch ch {
		case ChannelLog:
		case ChannelSlack:
			if !strings.HasPrefix(cfg.Notification.WebhookURL, slackWebhookPrefix) {
				return fmt.Errorf("notification.webhook_url must start with %s", slackWebhookPrefix)
			}
		case ChannelTelegram:
			if cfg.Notification.TelegramToken == "" || cfg.Notification.TelegramChatID == 0 {
				return fmt.Errorf("notification.telegram_token and telegram_chat_id are required for the telegram channel")
			}
		default:
			return fmt.Errorf("unknown notification channel %q", ch)
		}
	}

	if cfg.AI.Enabled {
		if cfg.AI.APIKey == "" {
			return fmt.Errorf("ai.api_key is required when ai.enabled is true")
		}
		if cfg.AI.Model == "" {
			return fmt.Errorf("ai.model is required when ai.enabled is true")
		}
	}

	return nil
}
