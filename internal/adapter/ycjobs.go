package adapter

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/offerhound/internal/model"
)

const (
	ycJobsURL   = "https://news.ycombinator.com/jobs"
	ycItemBase  = "https://news.ycombinator.com/"
	ycMinTitle  = 10
	ycAgeLayout = "2006-01-02T15:04:05"
)

// "Acme (YC W21) Is Hiring a Senior Engineer"
var ycCompanyRe = regexp.MustCompile(`^(.+?)\s*\(YC [^)]*\)`)

// YCJobsSource scrapes the Hacker News jobs page, where YC startups post.
type YCJobsSource struct {
	client *http.Client
}

func NewYCJobsSource(client *http.Client) *YCJobsSource {
	return &YCJobsSource{client: client}
}

func (s *YCJobsSource) Name() string { return "ycjobs" }

// Fetch emits one offer per listing row. The listing headline doubles as the
// description because the page carries nothing else.
func (s *YCJobsSource) Fetch(ctx context.Context, _ model.SearchStrategy, emit model.Emit) error {
	resp, err := get(ctx, s.client, ycJobsURL, "text/html", "ycjobs fetch")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return fmt.Errorf("ycjobs: parsing html: %w", err)
	}

	doc.Find("tr.athing").Each(func(_ int, row *goquery.Selection) {
		link := row.Find(".titleline > a").First()
		title := strings.TrimSpace(link.Text())
		href, ok := link.Attr("href")
		if !ok || len(title) < ycMinTitle {
			return
		}
		if strings.HasPrefix(href, "item?id=") {
			href = ycItemBase + href
		}

		raw := model.RawOffer{
			Title:       title,
			Description: title,
			URL:         href,
		}
		if m := ycCompanyRe.FindStringSubmatch(title); m != nil {
			raw.Company = m[1]
		}
		if age, ok := row.Next().Find("span.age").Attr("title"); ok {
			stamp, _, _ := strings.Cut(age, " ")
			if t, err := time.Parse(ycAgeLayout, stamp); err == nil {
				raw.PostedAt = &t
			}
		}
		emit(raw)
	})
	return nil
}
