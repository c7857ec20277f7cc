package adapter

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/amishk599/offerhound/internal/model"
)

const ashbyBaseURL = "https://api.ashbyhq.com/posting-api/job-board"

type ashbyJob struct {
	Title            string `json:"title"`
	Location         string `json:"location"`
	Department       string `json:"department"`
	Team             string `json:"team"`
	EmploymentType   string `json:"employmentType"`
	IsRemote         bool   `json:"isRemote"`
	DescriptionPlain string `json:"descriptionPlain"`
	JobURL           string `json:"jobUrl"`
	PublishedAt      string `json:"publishedAt"`
	IsListed         bool   `json:"isListed"`
}

type ashbyResponse struct {
	Jobs []ashbyJob `json:"jobs"`
}

// AshbySource fetches a company board from the Ashby public job board API.
type AshbySource struct {
	boardToken  string
	companyName string
	client      *http.Client
}

func NewAshbySource(boardToken, companyName string, client *http.Client) *AshbySource {
	return &AshbySource{
		boardToken:  boardToken,
		companyName: companyName,
		client:      client,
	}
}

func (a *AshbySource) Name() string { return "ashby:" + a.boardToken }

// Fetch emits listed jobs only; unlisted postings are hidden on the public board.
func (a *AshbySource) Fetch(ctx context.Context, _ model.SearchStrategy, emit model.Emit) error {
	url := fmt.Sprintf("%s/%s", ashbyBaseURL, a.boardToken)

	var ashbyResp ashbyResponse
	if err := getJSON(ctx, a.client, url, "ashby fetch for "+a.boardToken, &ashbyResp); err != nil {
		return err
	}

	for _, aj := range ashbyResp.Jobs {
		if !aj.IsListed {
			continue
		}
		location := aj.Location
		if aj.IsRemote && !strings.Contains(strings.ToLower(location), "remote") {
			location = strings.TrimPrefix(location+", Remote", ", ")
		}
		emit(model.RawOffer{
			Title:       aj.Title,
			Company:     a.companyName,
			Location:    location,
			Description: aj.DescriptionPlain,
			URL:         aj.JobURL,
			PostedAt:    parseRFC3339(aj.PublishedAt),
			Tags:        nonEmpty(aj.Department, aj.Team, aj.EmploymentType),
		})
	}
	return nil
}
