package adapter

import (
	"context"
	"fmt"
	"net/http"

	"github.com/amishk599/offerhound/internal/model"
)

const greenhouseBaseURL = "https://boards-api.greenhouse.io/v1/boards"

type greenhouseJob struct {
	ID             int64                `json:"id"`
	Title          string               `json:"title"`
	Location       greenhouseLocation   `json:"location"`
	AbsoluteURL    string               `json:"absolute_url"`
	UpdatedAt      string               `json:"updated_at"`
	FirstPublished string               `json:"first_published"`
	Content        string               `json:"content"` // double-encoded HTML
	Departments    []greenhouseCategory `json:"departments"`
}

type greenhouseLocation struct {
	Name string `json:"name"`
}

type greenhouseCategory struct {
	Name string `json:"name"`
}

type greenhouseResponse struct {
	Jobs []greenhouseJob `json:"jobs"`
}

// GreenhouseSource fetches a company board from the Greenhouse public boards API.
type GreenhouseSource struct {
	boardToken  string
	companyName string
	client      *http.Client
}

func NewGreenhouseSource(boardToken, companyName string, client *http.Client) *GreenhouseSource {
	return &GreenhouseSource{
		boardToken:  boardToken,
		companyName: companyName,
		client:      client,
	}
}

func (a *GreenhouseSource) Name() string { return "greenhouse:" + a.boardToken }

// Fetch retrieves every job on the board, descriptions included.
func (a *GreenhouseSource) Fetch(ctx context.Context, _ model.SearchStrategy, emit model.Emit) error {
	url := fmt.Sprintf("%s/%s/jobs?content=true", greenhouseBaseURL, a.boardToken)

	var ghResp greenhouseResponse
	if err := getJSON(ctx, a.client, url, "greenhouse fetch for "+a.boardToken, &ghResp); err != nil {
		return err
	}

	for _, gj := range ghResp.Jobs {
		raw := model.RawOffer{
			Title:       gj.Title,
			Company:     a.companyName,
			Location:    gj.Location.Name,
			Description: gj.Content,
			URL:         gj.AbsoluteURL,
			PostedAt:    parseRFC3339(gj.FirstPublished),
		}
		if raw.PostedAt == nil {
			raw.PostedAt = parseRFC3339(gj.UpdatedAt)
		}
		for _, d := range gj.Departments {
			raw.Tags = append(raw.Tags, d.Name)
		}
		emit(raw)
	}
	return nil
}
