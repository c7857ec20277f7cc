package filter

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Stage names in canonical order. Reordering changes observable behaviour.
const (
	StageDealbreaker = "dealbreaker"
	StageRemote      = "remote"
	StageRedFlag     = "red_flag"
	StageRole        = "role"
	StageSkill       = "skill"
)

// StageOrder is the canonical evaluation order: cheap, strong signals first.
var StageOrder = []string{StageDealbreaker, StageRemote, StageRedFlag, StageRole, StageSkill}

// Stage is one independent accept/reject predicate. Implementations are pure.
type Stage interface {
	Name() string
	Accept(c Candidate) bool
}

// DealbreakerStage rejects offers matching any explicit on-site pattern. It runs
// before the remote check: "no remote" contains the word remote.
type DealbreakerStage struct {
	patterns []*regexp.Regexp
}

func NewDealbreakerStage(patterns []*regexp.Regexp) *DealbreakerStage {
	return &DealbreakerStage{patterns: patterns}
}

func (s *DealbreakerStage) Name() string { return StageDealbreaker }

func (s *DealbreakerStage) Accept(c Candidate) bool {
	for _, re := range s.patterns {
		if re.MatchString(c.Text) {
			return false
		}
	}
	return true
}

// RemoteStage requires the literal word "remote" somewhere in the text.
type RemoteStage struct{}

func (RemoteStage) Name() string { return StageRemote }

func (RemoteStage) Accept(c Candidate) bool {
	return strings.Contains(c.Text, "remote")
}

// RedFlagStage rejects offers containing any configured red-flag phrase.
type RedFlagStage struct {
	flags []Pattern
}

func NewRedFlagStage(flags []Pattern) *RedFlagStage {
	return &RedFlagStage{flags: flags}
}

func (s *RedFlagStage) Name() string { return StageRedFlag }

func (s *RedFlagStage) Accept(c Candidate) bool {
	for _, f := range s.flags {
		if f.Match(c.Text) {
			return false
		}
	}
	return true
}

// KeywordGate accepts when any keyword is a substring of the text. An empty
// keyword set accepts everything. Keywords shorter than minLen runes are
// ignored so single letters like "c" or "r" do not match every offer.
type KeywordGate struct {
	name     string
	keywords []string
	minLen   int
}

// NewRoleGate gates on role identity terms ("engineer", "product manager").
func NewRoleGate(keywords []string) *KeywordGate {
	return &KeywordGate{name: StageRole, keywords: lowerAll(keywords)}
}

// NewSkillGate gates on tools and technologies. Single-character keywords never match.
func NewSkillGate(keywords []string) *KeywordGate {
	return &KeywordGate{name: StageSkill, keywords: lowerAll(keywords), minLen: 2}
}

func (g *KeywordGate) Name() string { return g.name }

func (g *KeywordGate) Accept(c Candidate) bool {
	if len(g.keywords) == 0 {
		return true
	}
	for _, kw := range g.keywords {
		if utf8.RuneCountInString(kw) < g.minLen {
			continue
		}
		if strings.Contains(c.Text, kw) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
