package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
schedule: "0 */6 * * *"
history:
  backend: sqlite
  path: data/history.db
strategy:
  role_keywords: [backend engineer]
  skill_keywords: [go, postgres]
  target_locations: [LATAM, Worldwide]
  hours_old: 48
filters:
  extra_red_flags: ["clearance required"]
sources:
  - type: hackernews
  - type: remoteok
    skip_stages: [skill]
    timeout: 2m
  - type: greenhouse
    name: Acme
    board_token: acme
    enabled: false
concurrency:
  source_workers: 3
  hn_workers: 10
rate_limit:
  min_delay: 1s
  overrides:
    greenhouse: 3s
retry:
  max_retries: 0
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Schedule != "0 */6 * * *" {
		t.Errorf("Schedule = %q", cfg.Schedule)
	}
	if cfg.History.Backend != "sqlite" || cfg.History.Path != filepath.Join(filepath.Dir(path), "data/history.db") {
		t.Errorf("History = %+v, want path resolved next to the config", cfg.History)
	}
	if len(cfg.Strategy.RoleKeywords) != 1 || cfg.Strategy.HoursOld != 48 || len(cfg.Strategy.TargetLocations) != 2 {
		t.Errorf("Strategy = %+v", cfg.Strategy)
	}
	if len(cfg.Filters.ExtraRedFlags) != 1 {
		t.Errorf("Filters = %+v", cfg.Filters)
	}
	if len(cfg.Sources) != 3 {
		t.Fatalf("Sources = %+v", cfg.Sources)
	}
	if !cfg.Sources[0].Enabled {
		t.Error("sources default to enabled")
	}
	if cfg.Sources[1].Timeout != 2*time.Minute || cfg.Sources[1].SkipStages[0] != "skill" {
		t.Errorf("remoteok = %+v", cfg.Sources[1])
	}
	if got := cfg.EnabledSources(); len(got) != 2 {
		t.Errorf("EnabledSources = %d, want 2", len(got))
	}
	if cfg.Concurrency.SourceWorkers != 3 || cfg.Concurrency.HNWorkers != 10 {
		t.Errorf("Concurrency = %+v", cfg.Concurrency)
	}
	if cfg.Concurrency.SourceTimeout != 5*time.Minute || cfg.Concurrency.HNItemTimeout != 10*time.Second {
		t.Errorf("Concurrency defaults = %+v", cfg.Concurrency)
	}
	if cfg.RateLimit.MinDelay != time.Second || cfg.RateLimit.Overrides["greenhouse"] != 3*time.Second {
		t.Errorf("RateLimit = %+v", cfg.RateLimit)
	}
	if cfg.RateLimit.PacerMin != 5*time.Second || cfg.RateLimit.PacerMax != 8*time.Second {
		t.Errorf("pacer defaults = %v..%v", cfg.RateLimit.PacerMin, cfg.RateLimit.PacerMax)
	}
	if cfg.Retry.MaxRetries != 0 {
		t.Errorf("explicit max_retries: 0 overwritten: %d", cfg.Retry.MaxRetries)
	}
	if len(cfg.Notification.Channels) != 1 || cfg.Notification.Channels[0] != ChannelLog {
		t.Errorf("Channels = %v, want [log]", cfg.Notification.Channels)
	}
	if cfg.AI.BaseURL != defaultOpenAIBaseURL || cfg.AI.Timeout != 30*time.Second {
		t.Errorf("AI = %+v", cfg.AI)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "sources:\n  - type: weworkremotely\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Schedule != defaultSchedule {
		t.Errorf("Schedule = %q", cfg.Schedule)
	}
	if filepath.Base(cfg.History.Path) != defaultHistoryFile {
		t.Errorf("History.Path = %q", cfg.History.Path)
	}
	if cfg.Retry.MaxRetries != 2 || cfg.Retry.BaseDelay != 5*time.Second {
		t.Errorf("Retry = %+v", cfg.Retry)
	}
}

func TestLoad_StrategyFile(t *testing.T) {
	path := writeConfig(t, "strategy_file: strategy.json\nsources:\n  - type: remoteok\n")
	strategy := `{"role_keywords": ["data engineer"], "skill_keywords": ["python"], "is_remote": false}`
	if err := os.WriteFile(filepath.Join(filepath.Dir(path), "strategy.json"), []byte(strategy), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Strategy.RoleKeywords) != 1 || cfg.Strategy.RoleKeywords[0] != "data engineer" {
		t.Errorf("Strategy = %+v", cfg.Strategy)
	}
	if cfg.Strategy.Remote() {
		t.Error("is_remote: false not honored")
	}
}

func TestLoad_EnvExpansionAndDotEnv(t *testing.T) {
	path := writeConfig(t, `
sources:
  - type: adzuna
    app_id: ${OFFERHOUND_TEST_ADZUNA_ID}
    app_key: ${OFFERHOUND_TEST_ADZUNA_KEY}
`)
	dotenv := "OFFERHOUND_TEST_ADZUNA_ID=from-dotenv\nOFFERHOUND_TEST_ADZUNA_KEY=key-from-dotenv\n"
	if err := os.WriteFile(filepath.Join(filepath.Dir(path), ".env"), []byte(dotenv), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OFFERHOUND_TEST_ADZUNA_ID", "from-env")
	// registered so t cleans up the variable godotenv sets
	t.Setenv("OFFERHOUND_TEST_ADZUNA_KEY", "")
	os.Unsetenv("OFFERHOUND_TEST_ADZUNA_KEY")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Sources[0].AppID != "from-env" {
		t.Errorf("AppID = %q, existing env must win over .env", cfg.Sources[0].AppID)
	}
	if cfg.Sources[0].AppKey != "key-from-dotenv" {
		t.Errorf("AppKey = %q, want value from .env", cfg.Sources[0].AppKey)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil {
		t.Fatal("Load: expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "schedule: [broken")); err == nil {
		t.Fatal("Load: expected error for invalid YAML")
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"no sources", "schedule: \"@every 1h\"\n", "at least one source"},
		{"all disabled", "sources:\n  - type: remoteok\n    enabled: false\n", "at least one source"},
		{"unknown source", "sources:\n  - type: monster\n", "unknown type"},
		{"bad schedule", "schedule: sometimes\nsources:\n  - type: remoteok\n", "schedule"},
		{"ats without token", "sources:\n  - type: lever\n    name: Acme\n", "board_token"},
		{"unknown stage", "sources:\n  - type: remoteok\n    skip_stages: [salary]\n", "unknown filter stage"},
		{"bad timeout", "sources:\n  - type: remoteok\n    timeout: soon\n", "timeout"},
		{"unknown backend", "history:\n  backend: mongo\nsources:\n  - type: remoteok\n", "history.backend"},
		{"postgres without dsn", "history:\n  backend: postgres\nsources:\n  - type: remoteok\n", "history.dsn"},
		{"redis without url", "history:\n  backend: redis\nsources:\n  - type: remoteok\n", "history.redis_url"},
		{"pacer inverted", "rate_limit:\n  pacer_min: 9s\n  pacer_max: 1s\nsources:\n  - type: adzuna\n", "pacer_max"},
		{"slack bad webhook", "notification:\n  channels: [slack]\n  webhook_url: https://example.com\nsources:\n  - type: remoteok\n", "hooks.slack.com"},
		{"telegram incomplete", "notification:\n  channels: [telegram]\n  telegram_token: abc\nsources:\n  - type: remoteok\n", "telegram_chat_id"},
		{"unknown channel", "notification:\n  channels: [email]\nsources:\n  - type: remoteok\n", "unknown notification channel"},
		{"ai without key", "ai:\n  enabled: true\n  model: gpt-4o-mini\nsources:\n  - type: remoteok\n", "ai.api_key"},
		{"strategy twice", "strategy: {}\nstrategy_file: s.json\nsources:\n  - type: remoteok\n", "mutually exclusive"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tc.wantErr)
			}
		})
	}
}

func TestSourceConfig_Key(t *testing.T) {
	if got := (SourceConfig{Type: SourceYCJobs}).Key(); got != SourceHackerNews {
		t.Errorf("ycjobs key = %q, want shared hackernews key", got)
	}
	if got := (SourceConfig{Type: SourceLever}).Key(); got != SourceLever {
		t.Errorf("lever key = %q", got)
	}
}
