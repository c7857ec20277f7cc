package adapter

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/amishk599/offerhound/internal/model"
)

const leverBaseURL = "https://api.lever.co/v0/postings"

type leverCategories struct {
	Team         string   `json:"team"`
	Department   string   `json:"department"`
	Location     string   `json:"location"`
	Commitment   string   `json:"commitment"`
	AllLocations []string `json:"allLocations"`
}

type leverJob struct {
	ID               string          `json:"id"`
	Text             string          `json:"text"`
	Description      string          `json:"description"`
	DescriptionPlain string          `json:"descriptionPlain"`
	Categories       leverCategories `json:"categories"`
	CreatedAt        int64           `json:"createdAt"` // unix millis
	WorkplaceType    string          `json:"workplaceType"`
	HostedURL        string          `json:"hostedUrl"`
	ApplyURL         string          `json:"applyUrl"`
}

// LeverSource fetches a company board from the Lever public postings API.
type LeverSource struct {
	companySlug string
	companyName string
	client      *http.Client
}

func NewLeverSource(companySlug, companyName string, client *http.Client) *LeverSource {
	return &LeverSource{
		companySlug: companySlug,
		companyName: companyName,
		client:      client,
	}
}

func (a *LeverSource) Name() string { return "lever:" + a.companySlug }

func (a *LeverSource) Fetch(ctx context.Context, _ model.SearchStrategy, emit model.Emit) error {
	url := fmt.Sprintf("%s/%s?mode=json", leverBaseURL, a.companySlug)

	var leverJobs []leverJob
	if err := getJSON(ctx, a.client, url, "lever fetch for "+a.companySlug, &leverJobs); err != nil {
		return err
	}

	for _, lj := range leverJobs {
		// prefer allLocations, fall back to location
		location := lj.Categories.Location
		if len(lj.Categories.AllLocations) > 0 {
			location = strings.Join(lj.Categories.AllLocations, ", ")
		}
		if lj.WorkplaceType == "remote" && !strings.Contains(strings.ToLower(location), "remote") {
			location = strings.TrimPrefix(location+", Remote", ", ")
		}

		var postedAt *time.Time
		if lj.CreatedAt > 0 {
			t := time.UnixMilli(lj.CreatedAt).UTC()
			postedAt = &t
		}

		description := lj.DescriptionPlain
		if description == "" {
			description = lj.Description
		}

		url := lj.HostedURL
		if url == "" {
			url = lj.ApplyURL
		}

		emit(model.RawOffer{
			Title:       lj.Text,
			Company:     a.companyName,
			Location:    location,
			Description: description,
			URL:         url,
			PostedAt:    postedAt,
			Tags:        nonEmpty(lj.Categories.Team, lj.Categories.Department, lj.Categories.Commitment, lj.WorkplaceType),
		})
	}
	return nil
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
