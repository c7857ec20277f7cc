package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/amishk599/offerhound/internal/model"
)

// DefaultWWRFeeds are the programming and ops category feeds.
var DefaultWWRFeeds = []string{
	"https://weworkremotely.com/categories/remote-back-end-programming-jobs.rss",
	"https://weworkremotely.com/categories/remote-full-stack-programming-jobs.rss",
	"https://weworkremotely.com/categories/remote-devops-sysadmin-jobs.rss",
}

// WeWorkRemotelySource reads one or more WeWorkRemotely category RSS feeds.
// A failing feed does not stop the others.
type WeWorkRemotelySource struct {
	feeds  []string
	client *http.Client
	parser *gofeed.Parser
}

func NewWeWorkRemotelySource(feeds []string, client *http.Client) *WeWorkRemotelySource {
	if len(feeds) == 0 {
		feeds = DefaultWWRFeeds
	}
	return &WeWorkRemotelySource{
		feeds:  feeds,
		client: client,
		parser: gofeed.NewParser(),
	}
}

func (s *WeWorkRemotelySource) Name() string     { return "weworkremotely" }
func (s *WeWorkRemotelySource) RemoteOnly() bool { return true }

func (s *WeWorkRemotelySource) Fetch(ctx context.Context, _ model.SearchStrategy, emit model.Emit) error {
	var errs []error
	for _, url := range s.feeds {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := s.fetchFeed(ctx, url, emit); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *WeWorkRemotelySource) fetchFeed(ctx context.Context, url string, emit model.Emit) error {
	resp, err := get(ctx, s.client, url, "application/rss+xml, application/xml", "wwr feed "+url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	feed, err := s.parser.Parse(resp.Body)
	if err != nil {
		return fmt.Errorf("wwr feed %s: parsing: %w", url, err)
	}

	for _, item := range feed.Items {
		company, title := splitWWRTitle(item.Title)
		if company == "" && len(item.Authors) > 0 && item.Authors[0] != nil {
			company = item.Authors[0].Name
		}

		description := item.Description
		if description == "" {
			description = item.Content
		}

		link := item.Link
		if link == "" {
			link = item.GUID
		}

		emit(model.RawOffer{
			Title:       title,
			Company:     company,
			Location:    "Remote",
			Description: description,
			URL:         link,
			Tags:        item.Categories,
			PostedAt:    item.PublishedParsed,
		})
	}
	return nil
}

// splitWWRTitle splits WWR's "Company: Role" item titles.
func splitWWRTitle(s string) (company, title string) {
	company, title, ok := strings.Cut(s, ":")
	if !ok {
		return "", strings.TrimSpace(s)
	}
	return strings.TrimSpace(company), strings.TrimSpace(title)
}
