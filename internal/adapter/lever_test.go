package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amishk599/offerhound/internal/model"
)

func TestLeverSource_Fetch(t *testing.T) {
	payload := `[
		{
			"id": "ff7ef527",
			"text": "Software Engineer",
			"description": "<div>Full HTML description</div>",
			"descriptionPlain": "Plain text job description",
			"categories": {
				"team": "Engineering",
				"department": "Platform",
				"location": "San Francisco, CA",
				"commitment": "Full-time",
				"allLocations": ["San Francisco, CA", "Remote"]
			},
			"createdAt": 1769784074110,
			"workplaceType": "hybrid",
			"hostedUrl": "https://jobs.lever.co/acme/ff7ef527",
			"applyUrl": "https://jobs.lever.co/acme/ff7ef527/apply"
		},
		{
			"id": "a1b2c3d4",
			"text": "Backend Engineer",
			"description": "<div>Backend job description</div>",
			"categories": {"location": "Berlin"},
			"workplaceType": "remote",
			"applyUrl": "https://jobs.lever.co/acme/a1b2c3d4/apply"
		}
	]`
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		serveString("application/json", payload)(w, r)
	}))
	defer srv.Close()

	src := NewLeverSource("acme", "Acme Corp", rewriteClient(srv))
	offers, err := collect(context.Background(), src, model.SearchStrategy{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/v0/postings/acme" {
		t.Errorf("path = %q", gotPath)
	}
	if len(offers) != 2 {
		t.Fatalf("expected 2 offers, got %d", len(offers))
	}

	o := offers[0]
	if o.Location != "San Francisco, CA, Remote" {
		t.Errorf("Location = %q, want allLocations joined", o.Location)
	}
	if o.Description != "Plain text job description" {
		t.Errorf("Description = %q, want descriptionPlain", o.Description)
	}
	if o.URL != "https://jobs.lever.co/acme/ff7ef527" {
		t.Errorf("URL = %q, want hostedUrl", o.URL)
	}
	want := time.UnixMilli(1769784074110).UTC()
	if o.PostedAt == nil || !o.PostedAt.Equal(want) {
		t.Errorf("PostedAt = %v, want %v", o.PostedAt, want)
	}
	if len(o.Tags) != 4 {
		t.Errorf("Tags = %v", o.Tags)
	}

	b := offers[1]
	if b.Location != "Berlin, Remote" {
		t.Errorf("Location = %q, want remote workplace appended", b.Location)
	}
	if b.Description != "<div>Backend job description</div>" {
		t.Errorf("Description = %q, want HTML fallback", b.Description)
	}
	if b.URL != "https://jobs.lever.co/acme/a1b2c3d4/apply" {
		t.Errorf("URL = %q, want applyUrl fallback", b.URL)
	}
	if b.PostedAt != nil {
		t.Errorf("PostedAt = %v, want nil", b.PostedAt)
	}
}

func TestLeverSource_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := collect(context.Background(), NewLeverSource("gone", "Gone", rewriteClient(srv)), model.SearchStrategy{})
	if err == nil {
		t.Fatal("expected error for HTTP 404, got nil")
	}
}
