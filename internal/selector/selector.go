// Package selector implements the UTXO core's C5: maturity filtering and a
// fixed fallback chain over the three strategies.
package selector

import (
	"sort"
	"time"

	"github.com/scylladb/go-set/strset"
	"github.com/shopspring/decimal"

	"github.com/cosmasken/kaspa402/internal/model"
	"github.com/cosmasken/kaspa402/internal/strategy"
	"github.com/cosmasken/kaspa402/internal/xerrors"
)

// Selector runs the fixed Hybrid -> AgeBased -> AmountBased fallback chain
// over the mature subset of its candidates. The ordering is part of the
// public contract: changing it changes observable behavior.
type Selector struct {
	strategies []strategy.Strategy
}

func New(cfg model.UTXOManagerConfig) *Selector {
	return &Selector{
		strategies: []strategy.Strategy{
			strategy.Hybrid{MinUTXOAgeBlocks: cfg.MinUTXOAgeBlocks},
			strategy.AgeBased{},
			strategy.AmountBased{},
		},
	}
}

// SelectOptimal partitions candidates into mature/fresh, then tries each
// strategy, in order, against the mature set only, returning the first
// success with provenance.
func (s *Selector) SelectOptimal(candidates []model.EnrichedUTXO, target decimal.Decimal, maxInputs, maxMass uint32) (*model.SelectedUTXOs, error) {
	start := time.Now()

	mature := make([]model.EnrichedUTXO, 0, len(candidates))
	var freshAges []uint64
	for _, u := range candidates {
		if u.Metadata.IsFresh {
			freshAges = append(freshAges, u.Metadata.AgeInBlocks)
		} else {
			mature = append(mature, u)
		}
	}

	if len(mature) == 0 {
		return nil, &xerrors.InsufficientMatureUtxosError{
			Total:               len(candidates),
			Mature:              len(mature),
			EstimatedWaitBlocks: estimatedMaturityWaitBlocks(minAgeFromStrategies(s.strategies), freshAges),
		}
	}

	attempted := make([]string, 0, len(s.strategies))
	for _, strat := range s.strategies {
		attempted = append(attempted, strat.Name())
		result := strat.Select(mature, target, maxInputs, maxMass)
		if result == nil {
			continue
		}
		assertNoDuplicateOutpoints(result.UTXOs)

		return &model.SelectedUTXOs{
			SelectionResult:     *result,
			SelectionTimeMs:     time.Since(start).Milliseconds(),
			StrategiesAttempted: attempted,
			FreshUTXOsUsed:      0, // always 0: fresh UTXOs are filtered above
		}, nil
	}

	totalMature := decimal.Zero
	for _, u := range mature {
		totalMature = totalMature.Add(u.Amount)
	}
	return nil, &xerrors.NoStrategySatisfiesError{
		TotalMature: totalMature,
		Target:      target,
		Strategies:  attempted,
	}
}

// Validate is a static pre-flight predicate used by UIs to produce
// actionable error messages before a real selection is attempted.
func Validate(candidates []model.EnrichedUTXO, target decimal.Decimal, maxInputs int) model.ValidationResult {
	if len(candidates) == 0 {
		return model.ValidationResult{
			Possible: false,
			Reason:   "no UTXOs available",
		}
	}

	total := decimal.Zero
	for _, u := range candidates {
		total = total.Add(u.Amount)
	}
	if total.LessThan(target) {
		return model.ValidationResult{
			Possible: false,
			Reason:   "total balance is less than target",
			Suggestions: []string{
				"wait for additional incoming UTXOs",
				"reduce the payment amount",
			},
		}
	}

	sorted := make([]model.EnrichedUTXO, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Amount.GreaterThan(sorted[j].Amount)
	})

	n := maxInputs
	if n > len(sorted) {
		n = len(sorted)
	}
	topSum := decimal.Zero
	for i := 0; i < n; i++ {
		topSum = topSum.Add(sorted[i].Amount)
	}
	if topSum.LessThan(target) {
		return model.ValidationResult{
			Possible: false,
			Reason:   "top candidates by amount cannot cover target within max_inputs_per_tx",
			Suggestions: []string{
				"raise max_inputs_per_tx",
				"consolidate small UTXOs first",
			},
		}
	}

	return model.ValidationResult{Possible: true}
}

func assertNoDuplicateOutpoints(utxos []model.EnrichedUTXO) {
	seen := strset.New()
	for _, u := range utxos {
		key := u.Outpoint.Key()
		if seen.Has(key) {
			panic("selector: strategy returned duplicate outpoint " + key)
		}
		seen.Add(key)
	}
}

func minAgeFromStrategies(strategies []strategy.Strategy) uint64 {
	for _, s := range strategies {
		if h, ok := s.(strategy.Hybrid); ok {
			return h.MinUTXOAgeBlocks
		}
	}
	return 0
}

// estimatedMaturityWaitBlocks estimates how many more blocks must pass
// before the closest-to-mature fresh UTXO (if any) crosses minAge.
func estimatedMaturityWaitBlocks(minAge uint64, observedFreshAges []uint64) uint64 {
	if len(observedFreshAges) == 0 {
		return minAge
	}
	maxFreshAge := observedFreshAges[0]
	for _, age := range observedFreshAges[1:] {
		if age > maxFreshAge {
			maxFreshAge = age
		}
	}
	if maxFreshAge >= minAge {
		return 0
	}
	return minAge - maxFreshAge
}
