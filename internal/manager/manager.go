// Package manager implements the UTXO core's C6: the single entry point
// composing the cache, fetcher, mass estimator, selector, and consolidator
// behind a lock table.
package manager

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cosmasken/kaspa402/internal/config"
	"github.com/cosmasken/kaspa402/internal/consolidator"
	"github.com/cosmasken/kaspa402/internal/fetcher"
	"github.com/cosmasken/kaspa402/internal/mass"
	"github.com/cosmasken/kaspa402/internal/model"
	"github.com/cosmasken/kaspa402/internal/selector"
	"github.com/cosmasken/kaspa402/internal/xerrors"
	"github.com/shopspring/decimal"
)

// Manager is the UTXO management core's public entry point.
type Manager struct {
	cfg       model.UTXOManagerConfig
	fetcher   *fetcher.Fetcher
	estimator *mass.Estimator
	selector  *selector.Selector
	consol    *consolidator.Consolidator
	locks     *lockTable
	log       *zap.Logger
}

// New validates cfg (fatal at construction) and wires every component.
// chainClient only needs to satisfy fetcher.ChainClient, so tests can supply
// a fake instead of a real *chain.Client.
func New(cfg model.UTXOManagerConfig, chainClient fetcher.ChainClient, log *zap.Logger) (*Manager, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	f := fetcher.New(chainClient, time.Duration(cfg.CacheExpiryMs)*time.Millisecond, cfg.MinUTXOAgeBlocks, log)
	est := mass.NewEstimator(cfg)

	return &Manager{
		cfg:       cfg,
		fetcher:   f,
		estimator: est,
		selector:  selector.New(cfg),
		consol:    consolidator.New(f, est, cfg, log),
		locks:     newLockTable(),
		log:       log,
	}, nil
}

// Defaults advertises the spec's documented defaults, independent of
// whatever this Manager was actually constructed with.
func (m *Manager) Defaults() model.UTXOManagerConfig {
	return model.DefaultConfig()
}

// Config returns the live configuration this Manager was constructed with.
func (m *Manager) Config() model.UTXOManagerConfig {
	return m.cfg
}

// SelectForPayment runs the full payment-selection flow: sweep expired
// locks, fetch, drop locked outpoints, derive limits, delegate to the
// selector, and lock the winning set.
func (m *Manager) SelectForPayment(ctx context.Context, address string, amount decimal.Decimal, network model.Network) (*model.SelectedUTXOs, error) {
	expired := m.locks.cleanupExpiredLocks()
	if expired > 0 {
		m.log.Debug("locks expired", zap.Int("count", expired))
	}

	utxos, err := m.fetcher.Fetch(ctx, address, network, false)
	if err != nil {
		return nil, err
	}
	if len(utxos) == 0 {
		return nil, &xerrors.NoUTXOsError{}
	}

	live := m.locks.liveKeys()
	available := make([]model.EnrichedUTXO, 0, len(utxos))
	for _, u := range utxos {
		if _, locked := live[u.Key()]; !locked {
			available = append(available, u)
		}
	}
	if len(available) == 0 {
		return nil, &xerrors.AllLockedError{}
	}

	// Limits account for a recipient output plus a change output.
	const outputsPerPayment = 2
	maxInputs := m.estimator.MaxInputs(outputsPerPayment)
	maxMass := uint32(float64(m.estimator.Estimate(maxInputs, outputsPerPayment).MaxAllowedMass) * 0.9)

	selected, err := m.selector.SelectOptimal(available, amount, maxInputs, maxMass)
	if err != nil {
		m.log.Debug("selection failed", zap.Error(err))
		return nil, err
	}

	for _, u := range selected.UTXOs {
		m.locks.lock(u.Key(), model.LockReasonPayment)
	}
	m.log.Debug("selection succeeded",
		zap.String("strategy", selected.StrategyName),
		zap.Int("inputs", len(selected.UTXOs)),
		zap.Uint32("fresh_utxos_used", selected.FreshUTXOsUsed))

	return selected, nil
}

// WalletHealth summarizes an address's current UTXO set for diagnostics.
func (m *Manager) WalletHealth(ctx context.Context, address string, network model.Network) (*model.WalletHealth, error) {
	utxos, err := m.fetcher.Fetch(ctx, address, network, false)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	var oldest, newest, sumAge uint64
	for i, u := range utxos {
		total = total.Add(u.Amount)
		age := u.Metadata.AgeInBlocks
		sumAge += age
		if i == 0 {
			oldest, newest = age, age
			continue
		}
		if age > oldest {
			oldest = age
		}
		if age < newest {
			newest = age
		}
	}
	var avgAge uint64
	if len(utxos) > 0 {
		avgAge = sumAge / uint64(len(utxos))
	}

	score := consolidator.FragmentationScore(utxos)
	needsConsolidation, err := m.consol.ShouldConsolidate(ctx, address, network)
	if err != nil {
		return nil, err
	}

	maxInputs := m.cfg.MaxInputsPerTx
	estimatedMax := estimateMaxPayment(utxos, maxInputs)

	return &model.WalletHealth{
		Address:             address,
		Network:             network,
		TotalBalance:        total,
		UTXOCount:           len(utxos),
		FragmentationScore:  score,
		OldestAgeBlocks:     oldest,
		NewestAgeBlocks:     newest,
		AverageAgeBlocks:    avgAge,
		NeedsConsolidation:  needsConsolidation,
		EstimatedMaxPayment: estimatedMax,
	}, nil
}

// ListUTXOs returns the address's current enriched UTXO set, for debug and
// operator listing endpoints.
func (m *Manager) ListUTXOs(ctx context.Context, address string, network model.Network) ([]model.EnrichedUTXO, error) {
	return m.fetcher.Fetch(ctx, address, network, false)
}

// estimateMaxPayment sums the largest maxInputs UTXOs by amount, a rough
// upper bound on what a single payment could spend.
func estimateMaxPayment(utxos []model.EnrichedUTXO, maxInputs int) decimal.Decimal {
	amounts := make([]decimal.Decimal, len(utxos))
	for i, u := range utxos {
		amounts[i] = u.Amount
	}
	sortDescending(amounts)

	n := maxInputs
	if n > len(amounts) {
		n = len(amounts)
	}
	total := decimal.Zero
	for i := 0; i < n; i++ {
		total = total.Add(amounts[i])
	}
	return total
}

func sortDescending(amounts []decimal.Decimal) {
	for i := 1; i < len(amounts); i++ {
		for j := i; j > 0 && amounts[j].GreaterThan(amounts[j-1]); j-- {
			amounts[j], amounts[j-1] = amounts[j-1], amounts[j]
		}
	}
}

// ConsolidationRecommendations exposes the Consolidator's advisory inspector
// for operator tooling, without triggering a real consolidation.
func (m *Manager) ConsolidationRecommendations(ctx context.Context, address string, network model.Network) (*model.ConsolidationRecommendation, error) {
	return m.consol.Recommendations(ctx, address, network)
}

// ConsolidateIfNeeded triggers a consolidation sweep when the wallet is
// fragmented enough, locking the swept outpoints for the duration of the
// build so a concurrent payment can't race them.
func (m *Manager) ConsolidateIfNeeded(ctx context.Context, address, privateKey string, network model.Network, buildTx model.BuildTxFunc) (*model.ConsolidationResult, error) {
	should, err := m.consol.ShouldConsolidate(ctx, address, network)
	if err != nil {
		return nil, err
	}
	if !should {
		return &model.ConsolidationResult{Success: false, Reason: "consolidation not needed"}, nil
	}
	return m.consol.Consolidate(ctx, address, privateKey, network, buildTx)
}

// WaitForMaturity polls with force_refresh every 2s until some UTXO reaches
// minAge, or timeoutMs elapses.
func (m *Manager) WaitForMaturity(ctx context.Context, address string, network model.Network, minAge uint64, timeoutMs int64) (bool, error) {
	deadline := time.Now().Add(time.Duration(timeoutMs) * time.Millisecond)
	for {
		utxos, err := m.fetcher.Fetch(ctx, address, network, true)
		if err != nil {
			return false, err
		}
		for _, u := range utxos {
			if u.Metadata.AgeInBlocks >= minAge {
				return true, nil
			}
		}
		if time.Now().After(deadline) {
			return false, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

func (m *Manager) InvalidateCache(address string, network model.Network) {
	m.fetcher.Invalidate(address, network)
}

func (m *Manager) ClearCache() {
	m.fetcher.Clear()
}

func (m *Manager) Lock(outpointKey string, reason model.LockReason) {
	m.locks.lock(outpointKey, reason)
}

func (m *Manager) Unlock(outpointKey string) {
	m.locks.unlock(outpointKey)
}

func (m *Manager) UnlockMany(outpointKeys []string) {
	m.locks.unlockMany(outpointKeys)
}

func (m *Manager) IsLocked(outpointKey string) bool {
	return m.locks.isLocked(outpointKey)
}

func (m *Manager) CleanupExpiredLocks() int {
	return m.locks.cleanupExpiredLocks()
}

// ClassifySubmitError inspects a chain-submit failure and decides whether
// the Manager's caller should retry automatically, per spec's per-layer
// failure policy for post-submit errors.
func ClassifySubmitError(err error) xerrors.SubmitErrorKind {
	if err == nil {
		return xerrors.SubmitErrorUnknown
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "storage mass exceeded") || strings.Contains(msg, "mass limit"):
		return xerrors.SubmitErrorMass
	case strings.Contains(msg, "orphan") || strings.Contains(msg, "missing outpoint"):
		return xerrors.SubmitErrorOrphan
	case strings.Contains(msg, "insufficient funds") || strings.Contains(msg, "insufficient balance"):
		return xerrors.SubmitErrorInsufficientFunds
	case strings.Contains(msg, "econnrefused") || strings.Contains(msg, "econnaborted") ||
		strings.Contains(msg, "connection") || strings.Contains(msg, "websocket") || strings.Contains(msg, "timeout"):
		return xerrors.SubmitErrorNetwork
	default:
		return xerrors.SubmitErrorUnknown
	}
}

// massErrorSuggestedActions are the concrete remediations spec §7 requires
// alongside a storage-mass-exceeded submit failure.
var massErrorSuggestedActions = []string{
	"wait for utxo maturity",
	"reduce input count",
	"consolidate small utxos",
}

// HandleSubmitError classifies a chain-submit failure and, for the
// mass-exceeded case, wraps it into a *xerrors.TransactionMassError carrying
// a concrete mass estimate and suggested remediations instead of surfacing
// just the kind enum. inputsUsed/outputsUsed describe the transaction that
// was rejected, so the estimate reflects what was actually submitted.
func (m *Manager) HandleSubmitError(err error, inputsUsed, outputsUsed uint32) (xerrors.SubmitErrorKind, error) {
	kind := ClassifySubmitError(err)
	if kind != xerrors.SubmitErrorMass {
		return kind, err
	}
	return kind, &xerrors.TransactionMassError{
		Estimate:         m.estimator.Estimate(inputsUsed, outputsUsed),
		SuggestedActions: massErrorSuggestedActions,
	}
}

// ShouldRetrySubmit reports whether ClassifySubmitError's kind warrants the
// automatic single retry spec §7 describes: invalidate cache, back off, and
// let the caller re-enter the payment flow once.
func ShouldRetrySubmit(kind xerrors.SubmitErrorKind) bool {
	return kind == xerrors.SubmitErrorOrphan || kind == xerrors.SubmitErrorNetwork
}

// SubmitRetryBackoff returns the fixed backoff before the single automatic
// retry, per kind (orphan: 2s, network: 3s, per spec §7).
func SubmitRetryBackoff(kind xerrors.SubmitErrorKind) time.Duration {
	switch kind {
	case xerrors.SubmitErrorOrphan:
		return 2 * time.Second
	case xerrors.SubmitErrorNetwork:
		return 3 * time.Second
	default:
		return 0
	}
}
