package ai

import (
	"context"

	"github.com/amishk599/offerhound/internal/model"
)

// NopScorer is used when ai.enabled is false. Every offer is eligible.
type NopScorer struct{}

func NewNopScorer() *NopScorer {
	return &NopScorer{}
}

func (n *NopScorer) Score(_ context.Context, _ model.Offer) (Verdict, error) {
	return Verdict{Eligible: true}, nil
}
