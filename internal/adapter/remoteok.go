package adapter

import (
	"context"
	"net/http"
	"strings"

	"github.com/amishk599/offerhound/internal/model"
)

const remoteOKURL = "https://remoteok.com/api"

// remoteOKJob covers both listing entries and the leading legal notice, which
// carries no position and is skipped.
type remoteOKJob struct {
	Position    string   `json:"position"`
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Tags        []string `json:"tags"`
	URL         string   `json:"url"`
	ApplyURL    string   `json:"apply_url"`
	Date        string   `json:"date"`
	Legal       string   `json:"legal"`
}

// RemoteOKSource reads the RemoteOK public API. Every listing is remote.
type RemoteOKSource struct {
	client *http.Client
}

func NewRemoteOKSource(client *http.Client) *RemoteOKSource {
	return &RemoteOKSource{client: client}
}

func (s *RemoteOKSource) Name() string     { return "remoteok" }
func (s *RemoteOKSource) RemoteOnly() bool { return true }

func (s *RemoteOKSource) Fetch(ctx context.Context, _ model.SearchStrategy, emit model.Emit) error {
	var jobs []remoteOKJob
	if err := getJSON(ctx, s.client, remoteOKURL, "remoteok fetch", &jobs); err != nil {
		return err
	}

	for _, j := range jobs {
		title := j.Position
		if title == "" {
			title = j.Title
		}
		if j.Legal != "" || title == "" {
			continue
		}

		location := strings.TrimSpace(j.Location)
		if location == "" {
			location = "Worldwide"
		}
		url := j.URL
		if url == "" {
			url = j.ApplyURL
		}

		emit(model.RawOffer{
			Title:       title,
			Company:     j.Company,
			Location:    "Remote (" + location + ")",
			Description: j.Description,
			URL:         url,
			Tags:        j.Tags,
			PostedAt:    parseRFC3339(j.Date),
		})
	}
	return nil
}
