package adapter

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/offerhound/internal/model"
)

const (
	wellfoundBase        = "https://wellfound.com"
	DefaultWellfoundRole = "software-engineer"
	wellfoundMinTitle    = 5
	wellfoundDescription = "See details on Wellfound"
)

// WellfoundSource scrapes the remote listing page for one role. The page is
// server-rendered, so job anchors are present without running scripts.
// Wellfound blocks most non-browser clients with 403; that surfaces as a
// regular source error.
type WellfoundSource struct {
	role   string
	client *http.Client
}

func NewWellfoundSource(role string, client *http.Client) *WellfoundSource {
	if role == "" {
		role = DefaultWellfoundRole
	}
	return &WellfoundSource{role: role, client: client}
}

func (s *WellfoundSource) Name() string     { return "wellfound" }
func (s *WellfoundSource) RemoteOnly() bool { return true }

func (s *WellfoundSource) Fetch(ctx context.Context, _ model.SearchStrategy, emit model.Emit) error {
	url := fmt.Sprintf("%s/role/r/%s", wellfoundBase, s.role)
	resp, err := get(ctx, s.client, url, "text/html,application/xhtml+xml", "wellfound fetch")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return fmt.Errorf("wellfound: parsing html: %w", err)
	}

	seen := make(map[string]bool)
	doc.Find(`a[href^="/jobs/"]`).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		title := strings.TrimSpace(a.Text())
		if seen[href] || len(title) < wellfoundMinTitle {
			return
		}
		seen[href] = true

		emit(model.RawOffer{
			Title:       title,
			Company:     wellfoundCompany(a),
			Location:    "Remote",
			Description: wellfoundDescription,
			URL:         wellfoundBase + href,
		})
	})
	return nil
}

// wellfoundCompany walks up from a job anchor to the nearest card that also
// links a company profile.
func wellfoundCompany(a *goquery.Selection) string {
	var name string
	a.ParentsUntil("body").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		c := p.Find(`a[href^="/company/"]`).First()
		if c.Length() == 0 {
			return true
		}
		name = strings.TrimSpace(c.Text())
		return false
	})
	return name
}
