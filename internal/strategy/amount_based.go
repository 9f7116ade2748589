package strategy

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/cosmasken/kaspa402/internal/model"
)

// AmountBased favors fewer inputs: it first looks for a single UTXO that
// already covers the target, and only falls back to greedy accumulation
// over the amount-sorted list if no single UTXO qualifies.
type AmountBased struct{}

func (AmountBased) Name() string { return "amount_based" }

func (AmountBased) Select(candidates []model.EnrichedUTXO, target decimal.Decimal, maxInputs, maxMass uint32) *model.SelectionResult {
	sorted := make([]model.EnrichedUTXO, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Amount.GreaterThan(sorted[j].Amount)
	})

	if single := findOptimalSingle(sorted, target); single != nil {
		mass := uint32(overheadMass) + single.Metadata.EstimatedMassContribution + perOutputMass
		return &model.SelectionResult{
			UTXOs:         []model.EnrichedUTXO{*single},
			TotalAmount:   single.Amount,
			EstimatedMass: mass,
			StrategyName:  "amount_based",
			Warnings:      nil,
		}
	}

	return greedySelect(sorted, target, maxInputs, maxMass, "amount_based")
}

// findOptimalSingle returns the smallest single UTXO that still covers
// target, if one exists in the (already descending-sorted) list.
func findOptimalSingle(sortedDesc []model.EnrichedUTXO, target decimal.Decimal) *model.EnrichedUTXO {
	var best *model.EnrichedUTXO
	for i := range sortedDesc {
		u := &sortedDesc[i]
		if u.Amount.GreaterThanOrEqual(target) {
			if best == nil || u.Amount.LessThan(best.Amount) {
				best = u
			}
		}
	}
	return best
}
