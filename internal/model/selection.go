package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MassEstimate is the output of the mass estimator.
type MassEstimate struct {
	EstimatedMass     uint32
	MaxAllowedMass    uint32
	Breakdown         MassBreakdown
	IsWithinLimit     bool
	UtilizationPercent float64
}

// MassBreakdown decomposes an estimate into its three contributing terms.
type MassBreakdown struct {
	Inputs   uint32
	Outputs  uint32
	Overhead uint32
}

// SelectionResult is produced directly by a Strategy.
type SelectionResult struct {
	UTXOs         []EnrichedUTXO
	TotalAmount   decimal.Decimal
	EstimatedMass uint32
	StrategyName  string
	Warnings      []string
}

// SelectedUTXOs wraps a SelectionResult with Selector-level provenance.
type SelectedUTXOs struct {
	SelectionResult
	SelectionTimeMs     int64
	StrategiesAttempted []string
	FreshUTXOsUsed      uint32
}

// ValidationResult is the Selector's static pre-flight predicate output.
type ValidationResult struct {
	Possible    bool
	Reason      string
	Suggestions []string
}

// WalletHealth is the Manager's wallet-level diagnostic summary.
type WalletHealth struct {
	Address              string
	Network               Network
	TotalBalance          decimal.Decimal
	UTXOCount             int
	FragmentationScore    int
	OldestAgeBlocks       uint64
	NewestAgeBlocks       uint64
	AverageAgeBlocks      uint64
	NeedsConsolidation    bool
	EstimatedMaxPayment   decimal.Decimal
}

// ConsolidationResult is the outcome of a consolidation attempt.
type ConsolidationResult struct {
	Success           bool
	UTXOsConsolidated int
	TransactionID     string
	AmountConsolidated decimal.Decimal
	Reason            string
}

// ConsolidationRecommendation is returned by the Consolidator's advisory
// inspector used by UIs/operators before triggering a real consolidation.
type ConsolidationRecommendation struct {
	ShouldConsolidate bool
	FragmentationScore int
	CandidateCount    int
	EstimatedSavings  decimal.Decimal
	Recommendation    string
}

// BuildTxFunc is the injected transaction-builder callback. The core never
// signs or serializes transactions; it only ever calls this and reads back a
// transaction id or error.
type BuildTxFunc func(privateKey string, recipientAddr string, amountSompi decimal.Decimal, selected []EnrichedUTXO) (transactionID string, err error)

// NowMs returns the current wall-clock time in Unix milliseconds, used for
// FetchedAtMs and lock timestamps.
func NowMs() int64 {
	return time.Now().UnixMilli()
}
