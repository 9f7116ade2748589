package strategy

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/cosmasken/kaspa402/internal/model"
)

// AgeBased keeps the storage-mass penalty off the hot path whenever
// possible: it tries mature candidates first, and only reaches for fresh
// ones if mature alone cannot cover the target.
type AgeBased struct{}

func (AgeBased) Name() string { return "age_based" }

func (AgeBased) Select(candidates []model.EnrichedUTXO, target decimal.Decimal, maxInputs, maxMass uint32) *model.SelectionResult {
	mature, fresh := partitionByFreshness(candidates)
	sortByAgeDesc(mature)
	sortByAgeDesc(fresh)

	if result := greedySelect(mature, target, maxInputs, maxMass, "age_based"); result != nil {
		return result
	}

	combined := make([]model.EnrichedUTXO, 0, len(mature)+len(fresh))
	combined = append(combined, mature...)
	combined = append(combined, fresh...)

	result := greedySelect(combined, target, maxInputs, maxMass, "age_based")
	if result == nil {
		return nil
	}
	result.Warnings = append(result.Warnings, "Had to use fresh UTXOs due to insufficient mature balance")
	return result
}

func partitionByFreshness(candidates []model.EnrichedUTXO) (mature, fresh []model.EnrichedUTXO) {
	for _, u := range candidates {
		if u.Metadata.IsFresh {
			fresh = append(fresh, u)
		} else {
			mature = append(mature, u)
		}
	}
	return mature, fresh
}

func sortByAgeDesc(utxos []model.EnrichedUTXO) {
	sort.SliceStable(utxos, func(i, j int) bool {
		return utxos[i].Metadata.AgeInBlocks > utxos[j].Metadata.AgeInBlocks
	})
}
