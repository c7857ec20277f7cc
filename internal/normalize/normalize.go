// Package normalize maps raw adapter records onto the canonical Offer.
package normalize

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"

	"github.com/amishk599/offerhound/internal/model"
)

// Placeholders used when a source omits a field. Filters always receive a
// complete Offer.
const (
	PlaceholderTitle    = "Untitled offer"
	PlaceholderCompany  = "Unknown company"
	PlaceholderLocation = "Unspecified"
	UnknownSource       = "unknown"
)

// Normalize converts raw into a canonical Offer tagged with source. It never
// fails. An empty URL is kept empty; the history store refuses such offers.
func Normalize(raw model.RawOffer, source string) model.Offer {
	return model.Offer{
		Title:       orDefault(PlainText(raw.Title), PlaceholderTitle),
		Company:     orDefault(PlainText(raw.Company), PlaceholderCompany),
		Location:    orDefault(PlainText(raw.Location), PlaceholderLocation),
		Description: PlainText(raw.Description),
		JobURL:      strings.TrimSpace(raw.URL),
		Source:      orDefault(strings.TrimSpace(source), UnknownSource),
		Tags:        cleanTags(raw.Tags),
		PostedAt:    raw.PostedAt,
	}
}

// PlainText converts an HTML or HTML-encoded string to plain text. Entities are
// unescaped before tokenizing so double-encoded markup (Greenhouse content) is
// stripped too. Script and style bodies are dropped.
func PlainText(content string) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}

	z := html.NewTokenizer(strings.NewReader(html.UnescapeString(content)))
	var b strings.Builder
	skip := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		switch tt {
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken:
			if name, _ := z.TagName(); isRawTextTag(name) {
				skip++
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			if name, _ := z.TagName(); isRawTextTag(name) && skip > 0 {
				skip--
			}
			b.WriteByte(' ')
		case html.SelfClosingTagToken:
			b.WriteByte(' ')
		}
	}

	return strings.Join(strings.Fields(norm.NFC.String(b.String())), " ")
}

func isRawTextTag(name []byte) bool {
	n := string(name)
	return n == "script" || n == "style"
}

func cleanTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = PlainText(t)
		key := strings.ToLower(t)
		if t == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
