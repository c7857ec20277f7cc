package ai

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/viability.md
var viabilityPromptRaw string

// ViabilityTemplate is the prompt used by ViabilityScorer. Parsed once at init.
var ViabilityTemplate = template.Must(template.New("viability").Parse(viabilityPromptRaw))
