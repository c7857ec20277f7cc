package adapter

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/amishk599/offerhound/internal/model"
)

const ycJobsPage = `<html><body><table>
<tr class="athing submission" id="1">
  <td class="title"><span class="titleline"><a href="https://acme.example/careers">Acme (YC W21) Is Hiring a Senior Backend Engineer</a></span></td>
</tr>
<tr><td class="subtext"><span class="age" title="2026-03-01T17:00:04 1772384404"><a href="item?id=1">2 hours ago</a></span></td></tr>
<tr class="athing submission" id="2">
  <td class="title"><span class="titleline"><a href="item?id=2">Beta is hiring founding engineers (remote)</a></span></td>
</tr>
<tr><td class="subtext"></td></tr>
<tr class="athing submission" id="3">
  <td class="title"><span class="titleline"><a href="item?id=3">Short</a></span></td>
</tr>
</table></body></html>`

func TestYCJobsSource_Fetch(t *testing.T) {
	srv := httptest.NewServer(serveString("text/html", ycJobsPage))
	defer srv.Close()

	offers, err := collect(context.Background(), NewYCJobsSource(rewriteClient(srv)), model.SearchStrategy{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(offers) != 2 {
		t.Fatalf("expected short title to be skipped, got %d offers", len(offers))
	}

	a := offers[0]
	if a.Company != "Acme" {
		t.Errorf("Company = %q", a.Company)
	}
	if a.URL != "https://acme.example/careers" || a.Description != a.Title {
		t.Errorf("unexpected offer: %+v", a)
	}
	if a.PostedAt == nil || a.PostedAt.Hour() != 17 {
		t.Errorf("PostedAt = %v", a.PostedAt)
	}

	b := offers[1]
	if b.URL != "https://news.ycombinator.com/item?id=2" {
		t.Errorf("relative link not resolved: %q", b.URL)
	}
	if b.Company != "" || b.PostedAt != nil {
		t.Errorf("unexpected offer: %+v", b)
	}
}
