package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/offerhound/internal/model"
	"github.com/amishk599/offerhound/internal/ratelimit"
	"github.com/amishk599/offerhound/internal/retry"
)

const (
	adzunaBaseURL  = "https://api.adzuna.com/v1/api/jobs"
	adzunaPageSize = 50
	adzunaMaxPages = 3 // at most 150 results per location

	DefaultAdzunaMinDelay = 5 * time.Second
	DefaultAdzunaMaxDelay = 8 * time.Second
)

type adzunaResponse struct {
	Results []adzunaResult `json:"results"`
	Count   int            `json:"count"`
}

type adzunaResult struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Company      adzunaName     `json:"company"`
	Location     adzunaName     `json:"location"`
	Category     adzunaCategory `json:"category"`
	RedirectURL  string         `json:"redirect_url"`
	Created      string         `json:"created"`
	ContractTime string         `json:"contract_time"`
	ContractType string         `json:"contract_type"`
}

type adzunaName struct {
	DisplayName string `json:"display_name"`
}

type adzunaCategory struct {
	Label string `json:"label"`
}

// AdzunaConfig holds credentials and pacing for AdzunaSource.
type AdzunaConfig struct {
	AppID    string
	AppKey   string
	Country  string // "us", "gb", "fr", ...
	MinDelay time.Duration
	MaxDelay time.Duration
	Retry    retry.Policy
}

// AdzunaSource runs one search per target location against the Adzuna API.
// Locations are searched one after another with a jittered pause between
// them; they are never queried concurrently.
type AdzunaSource struct {
	cfg    AdzunaConfig
	client *http.Client
	logger *slog.Logger
}

func NewAdzunaSource(cfg AdzunaConfig, client *http.Client, logger *slog.Logger) *AdzunaSource {
	if cfg.Country == "" {
		cfg.Country = "us"
	}
	if cfg.MinDelay <= 0 && cfg.MaxDelay <= 0 {
		cfg.MinDelay, cfg.MaxDelay = DefaultAdzunaMinDelay, DefaultAdzunaMaxDelay
	}
	return &AdzunaSource{cfg: cfg, client: client, logger: logger}
}

func (s *AdzunaSource) Name() string { return "adzuna:" + s.cfg.Country }

// Fetch returns nil without fetching when credentials are missing. A failing
// location is recorded and the remaining locations are still searched.
func (s *AdzunaSource) Fetch(ctx context.Context, strategy model.SearchStrategy, emit model.Emit) error {
	if s.cfg.AppID == "" || s.cfg.AppKey == "" {
		s.logger.Warn("adzuna credentials not set, skipping", "source", s.Name())
		return nil
	}
	strategy = strategy.WithDefaults()

	pacer := ratelimit.NewPacer(s.cfg.MinDelay, s.cfg.MaxDelay)
	var errs []error
	for _, location := range strategy.TargetLocations {
		if err := pacer.Wait(ctx); err != nil {
			errs = append(errs, err)
			break
		}
		n, err := s.searchLocation(ctx, strategy, location, emit)
		s.logger.Debug("adzuna location searched", "source", s.Name(), "location", location, "results", n, "error", err)
		if err != nil {
			errs = append(errs, fmt.Errorf("location %q: %w", location, err))
		}
	}
	return errors.Join(errs...)
}

func (s *AdzunaSource) searchLocation(ctx context.Context, strategy model.SearchStrategy, location string, emit model.Emit) (int, error) {
	pages := min((strategy.ResultsWanted+adzunaPageSize-1)/adzunaPageSize, adzunaMaxPages)
	total := 0
	for page := 1; page <= pages; page++ {
		var resp adzunaResponse
		err := retry.Do(ctx, s.cfg.Retry, s.logger, func(ctx context.Context) error {
			resp = adzunaResponse{}
			return getJSON(ctx, s.client, s.pageURL(strategy, location, page), "adzuna search", &resp)
		})
		if err != nil {
			return total, fmt.Errorf("page %d: %w", page, err)
		}

		for _, r := range resp.Results {
			if total >= strategy.ResultsWanted {
				return total, nil
			}
			emit(model.RawOffer{
				Title:       r.Title,
				Company:     r.Company.DisplayName,
				Location:    r.Location.DisplayName,
				Description: r.Description,
				URL:         r.RedirectURL,
				Tags:        nonEmpty(r.Category.Label, r.ContractTime, r.ContractType),
				PostedAt:    parseRFC3339(r.Created),
			})
			total++
		}
		if len(resp.Results) < adzunaPageSize {
			break
		}
	}
	return total, nil
}

func (s *AdzunaSource) pageURL(strategy model.SearchStrategy, location string, page int) string {
	params := url.Values{}
	params.Set("app_id", s.cfg.AppID)
	params.Set("app_key", s.cfg.AppKey)
	params.Set("results_per_page", strconv.Itoa(min(strategy.ResultsWanted, adzunaPageSize)))
	params.Set("sort_by", "date")
	params.Set("max_days_old", strconv.Itoa(max(1, (strategy.HoursOld+23)/24)))
	if len(strategy.RoleKeywords) > 0 {
		params.Set("what_or", strings.Join(strategy.RoleKeywords, " "))
	}
	if strings.EqualFold(strings.TrimSpace(location), "remote") {
		params.Set("what_and", "remote")
	} else {
		params.Set("where", location)
		if strategy.Remote() {
			params.Set("what_and", "remote")
		}
	}
	switch strategy.JobType {
	case "fulltime":
		params.Set("full_time", "1")
	case "parttime":
		params.Set("part_time", "1")
	case "contract":
		params.Set("contract", "1")
	}
	return fmt.Sprintf("%s/%s/search/%d?%s", adzunaBaseURL, s.cfg.Country, page, params.Encode())
}
