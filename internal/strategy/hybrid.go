package strategy

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/cosmasken/kaspa402/internal/model"
)

const (
	ageWeight    = 0.40
	amountWeight = 0.30
	massWeight   = 0.30

	// hybridAgeCeilingBlocks is the fixed upper bound the age axis uses to
	// reach a 100 score; left independent of config.MinUTXOAgeBlocks per
	// the spec's own framing of this as an unresolved, not-to-guess detail.
	hybridAgeCeilingBlocks = 10
	maxMassScoreBytes      = 300
)

// ScoredUTXO is Hybrid's per-candidate breakdown, exposed for diagnostics.
type ScoredUTXO struct {
	UTXO        model.EnrichedUTXO
	AgeScore    float64
	AmountScore float64
	MassScore   float64
	Weighted    float64
}

// Hybrid scores each candidate across three axes (age, amount, mass) and
// runs greedy selection over the resulting descending order. MinUTXOAgeBlocks
// anchors the low end of the age-score interpolation at construction time —
// it is the same threshold the Selector used to classify a candidate mature
// in the first place, so every candidate Hybrid ever sees has age in
// [MinUTXOAgeBlocks, hybridAgeCeilingBlocks) unless it already scores 100.
type Hybrid struct {
	MinUTXOAgeBlocks uint64
}

func (Hybrid) Name() string { return "hybrid" }

func (h Hybrid) Select(candidates []model.EnrichedUTXO, target decimal.Decimal, maxInputs, maxMass uint32) *model.SelectionResult {
	scored := h.DetailedScores(candidates, target)

	sorted := make([]model.EnrichedUTXO, len(scored))
	// Ties broken by original order: sort.SliceStable preserves the input
	// order (already stable from DetailedScores) for equal weighted scores.
	for i, s := range scored {
		sorted[i] = s.UTXO
	}
	idx := make([]int, len(scored))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return scored[idx[i]].Weighted > scored[idx[j]].Weighted
	})
	for pos, i := range idx {
		sorted[pos] = scored[i].UTXO
	}

	return greedySelect(sorted, target, maxInputs, maxMass, "hybrid")
}

// DetailedScores exposes each candidate's score breakdown; consumed by
// diagnostic tooling, per spec.
func (h Hybrid) DetailedScores(candidates []model.EnrichedUTXO, target decimal.Decimal) []ScoredUTXO {
	out := make([]ScoredUTXO, len(candidates))
	for i, u := range candidates {
		age := h.ageScore(u)
		amount := amountScore(u, target)
		massS := massScore(u)
		out[i] = ScoredUTXO{
			UTXO:        u,
			AgeScore:    age,
			AmountScore: amount,
			MassScore:   massS,
			Weighted:    ageWeight*age + amountWeight*amount + massWeight*massS,
		}
	}
	return out
}

func (h Hybrid) ageScore(u model.EnrichedUTXO) float64 {
	if u.Metadata.IsFresh {
		return 0
	}
	age := float64(u.Metadata.AgeInBlocks)
	if age >= hybridAgeCeilingBlocks {
		return 100
	}
	minAge := float64(h.MinUTXOAgeBlocks)
	if age <= minAge {
		return 0
	}
	span := hybridAgeCeilingBlocks - minAge
	if span <= 0 {
		return 100
	}
	return (age - minAge) / span * 100
}

func amountScore(u model.EnrichedUTXO, target decimal.Decimal) float64 {
	if target.IsZero() {
		return 100
	}
	if u.Amount.GreaterThanOrEqual(target) {
		return 100
	}
	ratio := u.Amount.Mul(decimal.NewFromInt(100)).Div(target)
	score, _ := ratio.Float64()
	score = float64(int64(score)) // truncate, per spec's "floor" wording
	if score > 99 {
		score = 99
	}
	if score < 0 {
		score = 0
	}
	return score
}

func massScore(u model.EnrichedUTXO) float64 {
	contribution := float64(u.Metadata.EstimatedMassContribution)
	if contribution < 0 {
		contribution = 0
	}
	if contribution > maxMassScoreBytes {
		contribution = maxMassScoreBytes
	}
	return (1 - contribution/maxMassScoreBytes) * 100
}
