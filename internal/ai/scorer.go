package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"text/template"
	"unicode/utf8"

	"github.com/amishk599/offerhound/internal/model"
)

const (
	// MinDescriptionLen is the shortest description worth sending to the model.
	// Shorter descriptions are judged eligible without a call.
	MinDescriptionLen = 50
	// maxPromptDescription bounds the description excerpt in the prompt.
	maxPromptDescription = 3000
)

// Verdict is the scorer's judgement on one offer.
type Verdict struct {
	Eligible bool
	Reason   string
}

// Profile describes the candidate to the model.
type Profile struct {
	Summary    string   `yaml:"summary"`
	Exclusions []string `yaml:"exclusions"`
}

// DefaultProfile is a remote candidate based in Latin America without US or EU work authorization.
var DefaultProfile = Profile{
	Summary: "Based in Latin America, looking for remote roles open to LATAM or worldwide, or roles offering relocation. Holds no US or EU work visa.",
	Exclusions: []string{
		"requires a specific citizenship",
		"requires physical residence outside the candidate's country with no relocation offered",
	},
}

// ViabilityScorer asks an LLM whether the candidate can apply to an offer.
type ViabilityScorer struct {
	provider Provider
	tmpl     *template.Template
	profile  Profile
	logger   *slog.Logger
}

func NewViabilityScorer(provider Provider, tmpl *template.Template, profile Profile, logger *slog.Logger) *ViabilityScorer {
	if profile.Summary == "" {
		profile = DefaultProfile
	}
	return &ViabilityScorer{
		provider: provider,
		tmpl:     tmpl,
		profile:  profile,
		logger:   logger,
	}
}

type promptData struct {
	Profile     Profile
	Offer       model.Offer
	Description string
}

// Score returns the model's verdict. Errors are returned as-is; callers decide
// how to treat an unavailable scorer.
func (s *ViabilityScorer) Score(ctx context.Context, offer model.Offer) (Verdict, error) {
	if utf8.RuneCountInString(offer.Description) < MinDescriptionLen {
		return Verdict{Eligible: true, Reason: "description too short to judge"}, nil
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, promptData{
		Profile:     s.profile,
		Offer:       offer,
		Description: truncateRunes(offer.Description, maxPromptDescription),
	}); err != nil {
		return Verdict{}, fmt.Errorf("render prompt: %w", err)
	}

	raw, err := s.provider.Complete(ctx, buf.String())
	if err != nil {
		return Verdict{}, fmt.Errorf("llm complete: %w", err)
	}

	v, err := parseVerdict(raw)
	if err != nil {
		return Verdict{}, err
	}
	if s.logger != nil {
		s.logger.Debug("offer scored", "url", offer.JobURL, "eligible", v.Eligible, "reason", v.Reason)
	}
	return v, nil
}

// rawVerdict is the JSON shape returned by the LLM (matches viabilitySchema).
type rawVerdict struct {
	Eligible *bool  `json:"eligible"`
	Reason   string `json:"reason"`
}

func parseVerdict(raw string) (Verdict, error) {
	var rv rawVerdict
	if err := json.Unmarshal([]byte(raw), &rv); err != nil {
		return Verdict{}, fmt.Errorf("unmarshal verdict JSON: %w", err)
	}
	if rv.Eligible == nil {
		return Verdict{}, fmt.Errorf("verdict missing eligible field")
	}
	return Verdict{Eligible: *rv.Eligible, Reason: rv.Reason}, nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
