// Package geo decides whether an offer's stated geography is compatible with
// a candidate outside the US and EU.
package geo

import (
	"regexp"

	"github.com/amishk599/offerhound/internal/model"
)

// DefaultGreen patterns mark an offer as open to the candidate's region.
var DefaultGreen = []string{
	`\blatam\b`,
	`\bworldwide\b`,
	`\banywhere\b`,
	`\bglobal\b`,
	`\bremote worker\b`,
	`\blatin america\b`,
}

// DefaultRed patterns mark an offer as geographically closed.
var DefaultRed = []string{
	`\bus only\b`,
	`\busa only\b`,
	`\bcitizenship\b`,
	`\bmust reside in\b`,
	`\bunited states\b`,
	`\bu\.s\.`,
	`\beurope only\b`,
	`\buk only\b`,
}

// Decision explains a classification. Pattern is the expression that decided
// it, empty when no pattern matched.
type Decision struct {
	Accepted bool
	Reason   string
	Pattern  string
}

const (
	ReasonGreen   = "green"
	ReasonRed     = "red"
	ReasonNeutral = "neutral"
)

// Guard applies green-over-red geography rules.
type Guard struct {
	green []*regexp.Regexp
	red   []*regexp.Regexp
}

func NewGuard(green, red []*regexp.Regexp) *Guard {
	return &Guard{green: green, red: red}
}

// Classify checks green patterns first; any hit accepts regardless of red
// patterns. Otherwise a red hit rejects, and no hit accepts.
func (g *Guard) Classify(text string) Decision {
	for _, re := range g.green {
		if re.MatchString(text) {
			return Decision{Accepted: true, Reason: ReasonGreen, Pattern: re.String()}
		}
	}
	for _, re := range g.red {
		if re.MatchString(text) {
			return Decision{Accepted: false, Reason: ReasonRed, Pattern: re.String()}
		}
	}
	return Decision{Accepted: true, Reason: ReasonNeutral}
}

// Allow classifies an offer by its title and location.
func (g *Guard) Allow(o model.Offer) Decision {
	return g.Classify(o.GeoText())
}

// Filter splits offers into kept and rejected, preserving order.
func (g *Guard) Filter(offers []model.Offer) (kept, rejected []model.Offer) {
	for _, o := range offers {
		if g.Allow(o).Accepted {
			kept = append(kept, o)
		} else {
			rejected = append(rejected, o)
		}
	}
	return kept, rejected
}
