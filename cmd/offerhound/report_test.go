package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/offerhound/internal/aggregator"
	"github.com/amishk599/offerhound/internal/model"
)

func TestPrintReport(t *testing.T) {
	res := aggregator.Result{
		RunID: "run-1",
		Offers: []model.Offer{
			{Title: "Backend Engineer", Company: "Acme", Location: "Remote (LATAM)", JobURL: "https://acme.test/jobs/1"},
			{Title: "Platform Engineer", Company: "Globex", Location: "Worldwide", JobURL: "https://globex.test/jobs/2"},
		},
		Sources: []aggregator.SourceStats{
			{Name: "remoteok", Fetched: 10, Rejected: map[string]int{"skill": 2, "role": 5}, New: 2, Persisted: 2, Duration: 1500 * time.Millisecond},
			{Name: "hackernews", Err: errors.New("fetch whoishiring: status 503")},
		},
		Warnings: []error{errors.New("source hackernews: status 503")},
	}

	var buf bytes.Buffer
	printReport(&buf, res)
	out := buf.String()

	for _, want := range []string{
		"Total offers found: 2",
		"Backend Engineer",
		"Acme",
		"Remote (LATAM)",
		"https://acme.test/jobs/1",
		"Platform Engineer",
		"remoteok",
		"role=5 skill=2",
		"1.5s",
		"1 warnings",
		"source hackernews: status 503",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q\n%s", want, out)
		}
	}

	if strings.Index(out, "Backend Engineer") > strings.Index(out, "Platform Engineer") {
		t.Error("offers must keep result order")
	}
}

func TestPrintReport_NoOffers(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, aggregator.Result{RunID: "run-2"})
	if !strings.Contains(buf.String(), "Total offers found: 0") {
		t.Errorf("unexpected report:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "warnings") {
		t.Error("no warnings section expected")
	}
}

func TestRejections(t *testing.T) {
	if got := rejections(nil); got != "0" {
		t.Errorf("rejections(nil) = %q", got)
	}
	if got := rejections(map[string]int{"remote": 1, "dealbreaker": 4}); got != "dealbreaker=4 remote=1" {
		t.Errorf("rejections = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abcdefghij", 5); got != "abcd…" {
		t.Errorf("truncate = %q", got)
	}
}
