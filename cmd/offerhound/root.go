package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/offerhound/internal/adapter"
	"github.com/amishk599/offerhound/internal/aggregator"
	"github.com/amishk599/offerhound/internal/ai"
	"github.com/amishk599/offerhound/internal/config"
	"github.com/amishk599/offerhound/internal/history"
	"github.com/amishk599/offerhound/internal/model"
	"github.com/amishk599/offerhound/internal/notifier"
	"github.com/amishk599/offerhound/internal/ratelimit"
	"github.com/amishk599/offerhound/internal/retry"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "offerhound",
	Short: "Job offer aggregator",
	Long:  "offerhound pulls job offers from boards, feeds and ATS APIs, filters them against a search strategy and reports the ones you have not seen.",
	// Bare `offerhound` runs the daemon, same as `offerhound start`.
	RunE:         runStart,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: OFFERHOUND_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > OFFERHOUND_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("OFFERHOUND_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) (model.Notifier, error) {
	var multi notifier.Multi
	for _, ch := range cfg.Notification.Channels {
		switch ch {
		case config.ChannelSlack:
			logger.Info("using slack notifier")
			multi = append(multi, notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger))
		case config.ChannelTelegram:
			logger.Info("using telegram notifier", "chat_id", cfg.Notification.TelegramChatID)
			tg, err := notifier.NewTelegramNotifier(
				cfg.Notification.TelegramToken,
				cfg.Notification.TelegramChatID,
				cfg.Notification.TelegramEndpoint,
				httpClient,
				logger,
			)
			if err != nil {
				return nil, err
			}
			multi = append(multi, tg)
		default:
			multi = append(multi, notifier.NewLogNotifier(logger))
		}
	}
	if len(multi) == 1 {
		return multi[0], nil
	}
	return multi, nil
}

// setupScorer returns nil when the AI check is disabled.
func setupScorer(cfg *config.Config, logger *slog.Logger) aggregator.Scorer {
	if !cfg.AI.Enabled {
		return nil
	}
	logger.Info("ai viability check enabled", "model", cfg.AI.Model)
	var provider ai.Provider = ai.NewOpenAIProvider(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, &http.Client{Timeout: cfg.AI.Timeout})
	provider = ai.WithRetry(provider, retryPolicy(cfg), logger)
	return ai.NewViabilityScorer(provider, ai.ViabilityTemplate, cfg.AI.Profile, logger)
}

func createSource(sc config.SourceConfig, cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Source {
	switch sc.Type {
	case config.SourceHackerNews:
		return adapter.NewHackerNewsSource(httpClient, cfg.Concurrency.HNWorkers, cfg.Concurrency.HNItemTimeout, logger)
	case config.SourceRemoteOK:
		return adapter.NewRemoteOKSource(httpClient)
	case config.SourceWeWorkRemotely:
		return adapter.NewWeWorkRemotelySource(sc.Feeds, httpClient)
	case config.SourceYCJobs:
		return adapter.NewYCJobsSource(httpClient)
	case config.SourceWellfound:
		return adapter.NewWellfoundSource(sc.Role, httpClient)
	case config.SourceAdzuna:
		return adapter.NewAdzunaSource(adapter.AdzunaConfig{
			AppID:    sc.AppID,
			AppKey:   sc.AppKey,
			Country:  sc.Country,
			MinDelay: cfg.RateLimit.PacerMin,
			MaxDelay: cfg.RateLimit.PacerMax,
			Retry:    retryPolicy(cfg),
		}, httpClient, logger)
	case config.SourceGreenhouse:
		return adapter.NewGreenhouseSource(sc.BoardToken, sc.Name, httpClient)
	case config.SourceLever:
		return adapter.NewLeverSource(sc.BoardToken, sc.Name, httpClient)
	case config.SourceAshby:
		return adapter.NewAshbySource(sc.BoardToken, sc.Name, httpClient)
	default:
		logger.Warn("unsupported source, skipping", "type", sc.Type)
		return nil
	}
}

func retryPolicy(cfg *config.Config) retry.Policy {
	return retry.Policy{MaxRetries: cfg.Retry.MaxRetries, BaseDelay: cfg.Retry.BaseDelay}
}

// buildSources wraps every enabled source in retry and per-upstream spacing,
// in configured order.
func buildSources(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) []aggregator.SourceSpec {
	logger.Info("rate limit min_delay", "min_delay", cfg.RateLimit.MinDelay.String())
	limiter := ratelimit.NewLimiter(cfg.RateLimit.MinDelay, cfg.RateLimit.Overrides)

	var specs []aggregator.SourceSpec
	for _, sc := range cfg.EnabledSources() {
		src := createSource(sc, cfg, httpClient, logger)
		if src == nil {
			continue
		}
		// Adzuna retries each page itself.
		if sc.Type != config.SourceAdzuna {
			src = retry.NewSource(src, retryPolicy(cfg), logger)
		}
		src = ratelimit.NewSource(src, limiter, sc.Key())

		specs = append(specs, aggregator.SourceSpec{
			Source:     src,
			SkipStages: sc.SkipStages,
			Timeout:    sc.Timeout,
		})
		logger.Debug("registered source", "source", src.Name(), "type", sc.Type)
	}
	return specs
}

func historyConfig(cfg *config.Config) history.Config {
	return history.Config{
		Backend:   cfg.History.Backend,
		Path:      cfg.History.Path,
		DSN:       cfg.History.DSN,
		RedisURL:  cfg.History.RedisURL,
		KeyPrefix: cfg.History.KeyPrefix,
	}
}

// app is everything one aggregation needs. Close releases the history store.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	store  history.Store
	agg    *aggregator.Aggregator
}

type appOptions struct {
	store  history.Store // nil opens the configured backend
	dryRun bool
	notify bool
}

func newApp(ctx context.Context, cfg *config.Config, opts appOptions, logger *slog.Logger) (*app, error) {
	httpClient := &http.Client{Timeout: cfg.Concurrency.HTTPTimeout}

	var n model.Notifier
	if opts.notify {
		var err error
		if n, err = setupNotifier(cfg, httpClient, logger); err != nil {
			return nil, err
		}
	}

	specs := buildSources(cfg, httpClient, logger)
	if len(specs) == 0 {
		return nil, fmt.Errorf("no sources to fetch")
	}

	store := opts.store
	if store == nil {
		var err error
		if store, err = history.Open(ctx, historyConfig(cfg)); err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
	}

	agg := aggregator.New(specs, store, setupScorer(cfg, logger), aggregator.Options{
		SourceWorkers: cfg.Concurrency.SourceWorkers,
		SourceTimeout: cfg.Concurrency.SourceTimeout,
		Overrides:     cfg.Filters,
		DryRun:        opts.dryRun,
		Notifier:      n,
	}, logger)

	return &app{cfg: cfg, logger: logger, store: store, agg: agg}, nil
}

func (a *app) Close() error { return a.store.Close() }
