package filter

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/amishk599/offerhound/internal/geo"
	"github.com/amishk599/offerhound/internal/model"
)

// DefaultDealbreakers are regexes for explicitly on-site or office-bound offers.
var DefaultDealbreakers = []string{
	`\bno remote\b`,
	`\bnot remote\b`,
	`\bonsite only\b`,
	`\bon-site only\b`,
	`\boffice based\b`,
	`\bhybrid only\b`,
	`\bmust be in\b`,
}

// DefaultRedFlags are phrases that indicate the offer is closed to the candidate.
var DefaultRedFlags = []string{
	"citizen",
	"citizenship required",
	"security clearance",
	"top secret",
	"must reside in",
	"must live in",
	"onsite in",
	"on-site in",
	"gmt-5 only",
	"location: united states",
	"location: us",
}

// Config holds everything the pipeline and geography guard need. It is
// rebuilt from the search strategy on every run.
type Config struct {
	RoleKeywords  []string
	SkillKeywords []string
	RedFlags      []Pattern
	Dealbreakers  []*regexp.Regexp
	GeoGreen      []*regexp.Regexp
	GeoRed        []*regexp.Regexp
}

// Overrides replace (or extend) the built-in pattern lists. A non-empty
// replacement list discards the defaults entirely.
type Overrides struct {
	RedFlags          []string `yaml:"red_flags"`
	ExtraRedFlags     []string `yaml:"extra_red_flags"`
	Dealbreakers      []string `yaml:"dealbreakers"`
	ExtraDealbreakers []string `yaml:"extra_dealbreakers"`
	GeoGreen          []string `yaml:"geo_green"`
	GeoRed            []string `yaml:"geo_red"`
}

// BuildConfig compiles the filter configuration. Invalid patterns are dropped
// and returned as warnings so a bad entry only makes filtering more permissive.
func BuildConfig(strategy model.SearchStrategy, o Overrides) (Config, []error) {
	var warnings []error

	cfg := Config{
		RoleKeywords: dedupeLower(strategy.RoleKeywords),
	}

	for _, kw := range dedupeLower(strategy.SkillKeywords) {
		if utf8.RuneCountInString(kw) < 2 {
			warnings = append(warnings, fmt.Errorf("skill keyword %q ignored: too short", kw))
			continue
		}
		cfg.SkillKeywords = append(cfg.SkillKeywords, kw)
	}

	for _, raw := range pick(o.RedFlags, DefaultRedFlags, o.ExtraRedFlags) {
		p, err := ParsePattern(raw)
		if err != nil {
			warnings = append(warnings, err)
			continue
		}
		cfg.RedFlags = append(cfg.RedFlags, p)
	}

	var errs []error
	cfg.Dealbreakers, errs = compileAll("dealbreaker", pick(o.Dealbreakers, DefaultDealbreakers, o.ExtraDealbreakers))
	warnings = append(warnings, errs...)
	cfg.GeoGreen, errs = compileAll("geo green", pick(o.GeoGreen, geo.DefaultGreen, nil))
	warnings = append(warnings, errs...)
	cfg.GeoRed, errs = compileAll("geo red", pick(o.GeoRed, geo.DefaultRed, nil))
	warnings = append(warnings, errs...)

	return cfg, warnings
}

// DefaultConfig is BuildConfig with no keywords and no overrides.
func DefaultConfig() Config {
	cfg, _ := BuildConfig(model.SearchStrategy{}, Overrides{})
	return cfg
}

func pick(override, defaults, extra []string) []string {
	base := defaults
	if len(override) > 0 {
		base = override
	}
	out := make([]string, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}

func compileAll(kind string, patterns []string) ([]*regexp.Regexp, []error) {
	var (
		out  []*regexp.Regexp
		errs []error
	)
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			errs = append(errs, fmt.Errorf("compile %s pattern %q: %w", kind, p, err))
			continue
		}
		out = append(out, re)
	}
	return out, errs
}

func dedupeLower(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range lowerAll(in) {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
