// Package consolidator implements the UTXO core's C7: fragmentation scoring
// and the self-send that sweeps small, mature UTXOs into one.
package consolidator

import (
	"context"
	"math"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cosmasken/kaspa402/internal/fetcher"
	"github.com/cosmasken/kaspa402/internal/mass"
	"github.com/cosmasken/kaspa402/internal/model"
)

// consolidationMinAgeBlocks is a hardcoded, stricter maturity bar than
// config.MinUTXOAgeBlocks: consolidation is discretionary, so it stays
// conservative independent of whatever the payment path is configured with.
const consolidationMinAgeBlocks = 10

// smallUTXOThresholdSompi is 1 KAS.
const smallUTXOThresholdSompi = 100_000_000

// baseFeeSompi is the flat fee subtracted from a consolidation sweep.
const baseFeeSompi = 10_000

type Consolidator struct {
	fetcher   *fetcher.Fetcher
	estimator *mass.Estimator
	cfg       model.UTXOManagerConfig
	log       *zap.Logger
}

func New(f *fetcher.Fetcher, estimator *mass.Estimator, cfg model.UTXOManagerConfig, log *zap.Logger) *Consolidator {
	return &Consolidator{fetcher: f, estimator: estimator, cfg: cfg, log: log}
}

// candidates selects mature, small UTXOs at address, sorted by descending
// age, reduced to fit within the mass budget for a (n, 1) transaction.
func (c *Consolidator) candidates(ctx context.Context, address string, network model.Network) ([]model.EnrichedUTXO, error) {
	utxos, err := c.fetcher.Fetch(ctx, address, network, false)
	if err != nil {
		return nil, err
	}

	small := decimal.NewFromInt(smallUTXOThresholdSompi)
	var eligible []model.EnrichedUTXO
	for _, u := range utxos {
		if u.Metadata.AgeInBlocks >= consolidationMinAgeBlocks && u.Amount.LessThan(small) {
			eligible = append(eligible, u)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Metadata.AgeInBlocks > eligible[j].Metadata.AgeInBlocks
	})

	if len(eligible) > c.cfg.MaxInputsPerTx {
		eligible = eligible[:c.cfg.MaxInputsPerTx]
	}

	for n := len(eligible); n > 0; n-- {
		estimate := c.estimator.Estimate(uint32(n), 1)
		if estimate.IsWithinLimit {
			return eligible[:n], nil
		}
	}
	return nil, nil
}

// ShouldConsolidate reports whether address currently has enough small,
// mature UTXOs to be worth sweeping.
func (c *Consolidator) ShouldConsolidate(ctx context.Context, address string, network model.Network) (bool, error) {
	utxos, err := c.fetcher.Fetch(ctx, address, network, false)
	if err != nil {
		return false, err
	}
	return countSmallMature(utxos) >= c.cfg.ConsolidationThreshold, nil
}

// countSmallMature counts every small, mature UTXO, before the
// MaxInputsPerTx cap that candidates applies to a single sweep.
func countSmallMature(utxos []model.EnrichedUTXO) int {
	small := decimal.NewFromInt(smallUTXOThresholdSompi)
	n := 0
	for _, u := range utxos {
		if u.Metadata.AgeInBlocks >= consolidationMinAgeBlocks && u.Amount.LessThan(small) {
			n++
		}
	}
	return n
}

// Consolidate sweeps the eligible candidates into a single self-send via
// buildTx, invalidating the cache for address on success.
func (c *Consolidator) Consolidate(ctx context.Context, address, privateKey string, network model.Network, buildTx model.BuildTxFunc) (*model.ConsolidationResult, error) {
	eligible, err := c.candidates(ctx, address, network)
	if err != nil {
		return nil, err
	}
	if len(eligible) == 0 {
		return &model.ConsolidationResult{Success: false, Reason: "no eligible UTXOs"}, nil
	}

	total := decimal.Zero
	for _, u := range eligible {
		total = total.Add(u.Amount)
	}
	amount := total.Sub(decimal.NewFromInt(baseFeeSompi))
	if amount.Sign() <= 0 {
		return &model.ConsolidationResult{Success: false, Reason: "amount after fee is non-positive"}, nil
	}

	txID, err := buildTx(privateKey, address, amount, eligible)
	if err != nil {
		c.log.Warn("consolidation build_tx failed", zap.String("address", address), zap.Error(err))
		return &model.ConsolidationResult{Success: false, Reason: err.Error()}, nil
	}

	c.fetcher.Invalidate(address, network)
	c.log.Info("consolidated utxos",
		zap.String("address", address),
		zap.Int("count", len(eligible)),
		zap.String("tx_id", txID))

	return &model.ConsolidationResult{
		Success:            true,
		UTXOsConsolidated:  len(eligible),
		TransactionID:      txID,
		AmountConsolidated: amount,
	}, nil
}

// FragmentationScore computes a 0..100 fragmentation score across three
// weighted signals: how many UTXOs there are, how many are small, and how
// unevenly their amounts are distributed.
func FragmentationScore(utxos []model.EnrichedUTXO) int {
	n := len(utxos)
	if n == 0 {
		return 0
	}

	countScore := math.Min(float64(n)/20, 1) * 40

	small := 0
	smallThreshold := decimal.NewFromInt(smallUTXOThresholdSompi)
	amounts := make([]float64, n)
	for i, u := range utxos {
		if u.Amount.LessThan(smallThreshold) {
			small++
		}
		scaled, _ := u.Amount.Div(decimal.NewFromInt(1_000_000)).Float64()
		amounts[i] = scaled
	}
	smallScore := (float64(small) / float64(n)) * 30

	mean := 0.0
	for _, a := range amounts {
		mean += a
	}
	mean /= float64(n)

	variance := 0.0
	for _, a := range amounts {
		d := a - mean
		variance += d * d
	}
	variance /= float64(n)
	stddev := math.Sqrt(variance)

	varianceRatio := 0.0
	if mean > 0 {
		varianceRatio = stddev / mean
	}
	varianceScore := math.Min(varianceRatio, 1) * 30

	return int(math.Round(countScore + smallScore + varianceScore))
}

// Recommendations summarizes whether address should consolidate and what it
// stands to save by doing so.
func (c *Consolidator) Recommendations(ctx context.Context, address string, network model.Network) (*model.ConsolidationRecommendation, error) {
	utxos, err := c.fetcher.Fetch(ctx, address, network, false)
	if err != nil {
		return nil, err
	}

	eligible, err := c.candidates(ctx, address, network)
	if err != nil {
		return nil, err
	}

	score := FragmentationScore(utxos)
	should := countSmallMature(utxos) >= c.cfg.ConsolidationThreshold

	// Each consolidated UTXO removes one future input from a would-be
	// payment transaction; approximate the saving as a fraction of the
	// flat base fee per input avoided.
	perInputSaving := decimal.NewFromInt(baseFeeSompi).Div(decimal.NewFromInt(10))
	savings := perInputSaving.Mul(decimal.NewFromInt(int64(len(eligible))))

	recommendation := "no action needed"
	switch {
	case should:
		recommendation = "consolidate: wallet is fragmented enough to raise future selection costs"
	case score >= 50:
		recommendation = "monitor: fragmentation is elevated but below the consolidation threshold"
	}

	return &model.ConsolidationRecommendation{
		ShouldConsolidate:   should,
		FragmentationScore:  score,
		CandidateCount:      len(eligible),
		EstimatedSavings:    savings,
		Recommendation:      recommendation,
	}, nil
}
