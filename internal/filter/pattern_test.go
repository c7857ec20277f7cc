package filter

import (
	"testing"

	"github.com/amishk599/offerhound/internal/model"
)

func TestPattern_Match(t *testing.T) {
	tests := []struct {
		pattern string
		text    string
		want    bool
	}{
		{"citizen", "remote, us citizens only", true},
		{"citizen", "remote position, no us citizenship required", false},
		{"citizen", "no u.s. citizenship required, remote", false},
		{"citizen", "without citizenship necessary", false},
		{"citizen", "applicants who are not us citizens will not be considered.", true},
		{"citizen", "we cannot hire non us citizens.", true},
		{"citizen", "non-citizen applicants will not be considered", true},
		{"citizen", "never hire non-citizens", true},
		{"citizen", "no exceptions. us citizenship required", true},
		{"citizen", "no sponsorship; citizens only, remote", true},
		{"citizen", "no us citizenship needed; citizens of the eu preferred", true},
		{"citizen", "no visa sponsorship for us citizenship required roles", true},
		{"security clearance", "no security clearance required", false},
		{"security clearance", "without security clearance", true},
		{"Top Secret", "requires top secret access", true},
		{"re:gmt[+-]\\d only", "hours: GMT-3 only", true},
		{"re:gmt[+-]\\d only", "gmt-3 preferred", false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.text, func(t *testing.T) {
			p, err := ParsePattern(tt.pattern)
			if err != nil {
				t.Fatalf("ParsePattern: %v", err)
			}
			if got := p.Match(tt.text); got != tt.want {
				t.Errorf("Match = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParsePattern_Errors(t *testing.T) {
	for _, raw := range []string{"", "   ", "re:(unclosed"} {
		if _, err := ParsePattern(raw); err == nil {
			t.Errorf("ParsePattern(%q) returned nil error", raw)
		}
	}
}

func TestBuildConfig_InvalidPatternsAreDropped(t *testing.T) {
	cfg, warnings := BuildConfig(model.SearchStrategy{SkillKeywords: []string{"c", "go"}}, Overrides{
		ExtraRedFlags:     []string{"re:[", "visa sponsorship unavailable"},
		ExtraDealbreakers: []string{"(bad"},
		GeoRed:            []string{"us only", "*nope"},
	})
	if len(warnings) != 4 {
		t.Fatalf("warnings = %v, want 4 (short skill, bad red flag, bad dealbreaker, bad geo)", warnings)
	}
	if len(cfg.RedFlags) != len(DefaultRedFlags)+1 {
		t.Errorf("red flags = %d, want %d", len(cfg.RedFlags), len(DefaultRedFlags)+1)
	}
	if len(cfg.Dealbreakers) != len(DefaultDealbreakers) {
		t.Errorf("dealbreakers = %d, want %d", len(cfg.Dealbreakers), len(DefaultDealbreakers))
	}
	if len(cfg.GeoRed) != 1 {
		t.Errorf("geo red = %d, want 1 (override replaces defaults)", len(cfg.GeoRed))
	}
	if len(cfg.SkillKeywords) != 1 || cfg.SkillKeywords[0] != "go" {
		t.Errorf("skills = %v, want [go]", cfg.SkillKeywords)
	}
}

func TestBuildConfig_OverrideReplacesDefaults(t *testing.T) {
	cfg, warnings := BuildConfig(model.SearchStrategy{}, Overrides{RedFlags: []string{"clearance"}})
	if len(warnings) != 0 {
		t.Fatalf("warnings: %v", warnings)
	}
	if len(cfg.RedFlags) != 1 || cfg.RedFlags[0].String() != "clearance" {
		t.Errorf("red flags = %v", cfg.RedFlags)
	}
}
