package geo

import (
	"regexp"
	"testing"

	"github.com/amishk599/offerhound/internal/model"
)

func defaultGuard() *Guard {
	return NewGuard(mustCompile(DefaultGreen), mustCompile(DefaultRed))
}

func mustCompile(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile("(?i)" + p)
	}
	return out
}

func TestGuard_Classify(t *testing.T) {
	g := defaultGuard()
	tests := []struct {
		text       string
		wantOK     bool
		wantReason string
	}{
		{"Engineer - Remote (US only)", false, ReasonRed},
		{"Engineer - Remote (LATAM or US)", true, ReasonGreen},
		{"Engineer - Berlin", true, ReasonNeutral},
		{"Engineer Worldwide, US preferred", true, ReasonGreen},
		{"Backend Developer United States", false, ReasonRed},
		{"Backend Developer - U.S. remote", false, ReasonRed},
		{"Data Engineer Anywhere in the United States", true, ReasonGreen},
		{"Platform Engineer Europe only", false, ReasonRed},
		{"Busy only in mornings", true, ReasonNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			d := g.Classify(tt.text)
			if d.Accepted != tt.wantOK || d.Reason != tt.wantReason {
				t.Errorf("Classify = %+v, want accepted=%v reason=%s", d, tt.wantOK, tt.wantReason)
			}
			if tt.wantReason != ReasonNeutral && d.Pattern == "" {
				t.Error("expected deciding pattern to be reported")
			}
		})
	}
}

func TestGuard_Filter(t *testing.T) {
	g := NewGuard(
		[]*regexp.Regexp{regexp.MustCompile(`(?i)\blatam\b`)},
		[]*regexp.Regexp{regexp.MustCompile(`(?i)\bus only\b`)},
	)
	offers := []model.Offer{
		{Title: "A", Location: "US only", JobURL: "a"},
		{Title: "B", Location: "LATAM", JobURL: "b"},
		{Title: "C", Location: "Remote", Description: "US only", JobURL: "c"},
		{Title: "D", Location: "LATAM, US only", JobURL: "d"},
	}
	kept, rejected := g.Filter(offers)

	var keptURLs []string
	for _, o := range kept {
		keptURLs = append(keptURLs, o.JobURL)
	}
	if len(keptURLs) != 3 || keptURLs[0] != "b" || keptURLs[1] != "c" || keptURLs[2] != "d" {
		t.Errorf("kept = %v, want [b c d]", keptURLs)
	}
	if len(rejected) != 1 || rejected[0].JobURL != "a" {
		t.Errorf("rejected = %v, want [a]", rejected)
	}
}

func TestGuard_EmptyAcceptsAll(t *testing.T) {
	g := NewGuard(nil, nil)
	if d := g.Classify("US only"); !d.Accepted {
		t.Errorf("empty guard rejected: %+v", d)
	}
}
