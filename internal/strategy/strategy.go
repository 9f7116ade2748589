// Package strategy implements the UTXO core's C4: three interchangeable
// coin-selection policies sharing one surface, dispatched by the Selector.
package strategy

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cosmasken/kaspa402/internal/model"
)

// Strategy is the common surface for AgeBased, AmountBased, and Hybrid.
// Modeled as an interface with three implementations, per spec §9's
// "tagged variant or trait/interface" guidance — the Selector holds an
// ordered slice of these and that order is part of the public contract.
type Strategy interface {
	Name() string
	Select(candidates []model.EnrichedUTXO, target decimal.Decimal, maxInputs uint32, maxMass uint32) *model.SelectionResult
}

const overheadMass = 100
const perInputMass = model.EstimatedMassContributionBytes
const perOutputMass = 50

// greedySelect accumulates from sorted candidates until target is covered,
// respecting maxInputs and maxMass. The +50 added per iteration anticipates
// the downstream change-output increment; it is a safety margin applied on
// top of whatever max-mass the caller already computed with outputs in mind.
func greedySelect(sorted []model.EnrichedUTXO, target decimal.Decimal, maxInputs, maxMass uint32, name string) *model.SelectionResult {
	runningMass := uint32(overheadMass)
	total := decimal.Zero
	selected := make([]model.EnrichedUTXO, 0, maxInputs)
	var warnings []string

	for _, u := range sorted {
		if uint32(len(selected)) >= maxInputs {
			warnings = append(warnings, "max inputs reached before target covered")
			break
		}
		newMass := runningMass + u.Metadata.EstimatedMassContribution + perOutputMass
		if newMass > maxMass {
			warnings = append(warnings, "mass limit reached before target covered")
			break
		}
		selected = append(selected, u)
		total = total.Add(u.Amount)
		runningMass = newMass

		if total.GreaterThanOrEqual(target) {
			if n := countFresh(selected); n > 0 {
				warnings = append(warnings, fmt.Sprintf("using %d fresh UTXOs", n))
			}
			return &model.SelectionResult{
				UTXOs:         selected,
				TotalAmount:   total,
				EstimatedMass: runningMass,
				StrategyName:  name,
				Warnings:      warnings,
			}
		}
	}
	return nil
}

func countFresh(utxos []model.EnrichedUTXO) int {
	n := 0
	for _, u := range utxos {
		if u.Metadata.IsFresh {
			n++
		}
	}
	return n
}
