package filter

import (
	"slices"

	"github.com/amishk599/offerhound/internal/model"
)

// Candidate is what a stage sees: the offer plus its lowercased search text,
// computed once per evaluation.
type Candidate struct {
	Offer model.Offer
	Text  string
}

// Verdict is the outcome of a pipeline run. Stage names the rejecting stage and
// is empty when the offer was accepted.
type Verdict struct {
	Accepted bool
	Stage    string
}

// Pipeline runs stages in order and stops at the first rejection.
type Pipeline struct {
	stages []Stage
}

type pipelineOptions struct {
	skip map[string]bool
}

// Option configures NewPipeline.
type Option func(*pipelineOptions)

// WithoutStages disables the named stages. Unknown names are ignored.
func WithoutStages(names ...string) Option {
	return func(o *pipelineOptions) {
		for _, n := range names {
			o.skip[n] = true
		}
	}
}

// NewPipeline builds the canonical stages from cfg in StageOrder.
func NewPipeline(cfg Config, opts ...Option) *Pipeline {
	o := pipelineOptions{skip: make(map[string]bool)}
	for _, opt := range opts {
		opt(&o)
	}

	all := map[string]Stage{
		StageDealbreaker: NewDealbreakerStage(cfg.Dealbreakers),
		StageRemote:      RemoteStage{},
		StageRedFlag:     NewRedFlagStage(cfg.RedFlags),
		StageRole:        NewRoleGate(cfg.RoleKeywords),
		StageSkill:       NewSkillGate(cfg.SkillKeywords),
	}
	stages := make([]Stage, 0, len(StageOrder))
	for _, name := range StageOrder {
		if o.skip[name] {
			continue
		}
		stages = append(stages, all[name])
	}
	return &Pipeline{stages: stages}
}

// NewPipelineFromStages builds a pipeline from explicit stages, kept in the given order.
func NewPipelineFromStages(stages ...Stage) *Pipeline {
	return &Pipeline{stages: slices.Clone(stages)}
}

// Evaluate runs the offer through every stage until one rejects it.
func (p *Pipeline) Evaluate(offer model.Offer) Verdict {
	c := Candidate{Offer: offer, Text: offer.SearchText()}
	for _, s := range p.stages {
		if !s.Accept(c) {
			return Verdict{Accepted: false, Stage: s.Name()}
		}
	}
	return Verdict{Accepted: true}
}

// Match reports whether the offer passes every stage.
func (p *Pipeline) Match(offer model.Offer) bool {
	return p.Evaluate(offer).Accepted
}

// Stages returns the active stage names in evaluation order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}
