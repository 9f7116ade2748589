// Package xerrors declares the UTXO core's stable, typed error taxonomy
// (spec §6/§7). Each type implements error so callers can use errors.As
// against a stable name instead of matching on message text; FetchError also
// implements Unwrap to expose its underlying cause.
package xerrors

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cosmasken/kaspa402/internal/model"
)

// FetchError wraps a chain-fetch failure after retries are exhausted.
type FetchError struct {
	Attempts int
	Cause    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("utxo fetch failed after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *FetchError) Unwrap() error { return e.Cause }

// InsufficientMatureUtxosError is raised when the Selector finds no mature
// candidates at all.
type InsufficientMatureUtxosError struct {
	Total               int
	Mature              int
	EstimatedWaitBlocks uint64
}

func (e *InsufficientMatureUtxosError) Error() string {
	return fmt.Sprintf("no mature utxos: %d/%d mature, estimated wait %d blocks",
		e.Mature, e.Total, e.EstimatedWaitBlocks)
}

// NoStrategySatisfiesError summarizes a total selection failure.
type NoStrategySatisfiesError struct {
	TotalMature decimal.Decimal
	Target      decimal.Decimal
	Strategies  []string
}

func (e *NoStrategySatisfiesError) Error() string {
	return fmt.Sprintf("no strategy could satisfy target %s with %s mature available (tried: %v)",
		e.Target.String(), e.TotalMature.String(), e.Strategies)
}

// UtxoFragmentationError reports a wallet state that needs attention before
// a payment of the requested size can be attempted.
type UtxoFragmentationError struct {
	Score  int
	Action FragmentationAction
}

type FragmentationAction string

const (
	FragmentationActionConsolidate FragmentationAction = "consolidate"
	FragmentationActionWait        FragmentationAction = "wait"
)

func (e *UtxoFragmentationError) Error() string {
	return fmt.Sprintf("wallet fragmentation score %d requires action %q", e.Score, e.Action)
}

// TransactionMassError is surfaced when a caller reports a chain-rejected
// "storage mass exceeded" submission back into the core for classification.
type TransactionMassError struct {
	Estimate         model.MassEstimate
	SuggestedActions []string
}

func (e *TransactionMassError) Error() string {
	return fmt.Sprintf("transaction storage mass %d exceeds allowed %d (suggestions: %v)",
		e.Estimate.EstimatedMass, e.Estimate.MaxAllowedMass, e.SuggestedActions)
}

// ConfigError is a fatal, synchronous construction-time error.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config field %q: %s", e.Field, e.Reason)
}

// AllLockedError is the generic "all UTXOs are locked" condition.
type AllLockedError struct{}

func (e *AllLockedError) Error() string { return "all UTXOs are locked" }

// NoUTXOsError is the generic "no UTXOs available" condition.
type NoUTXOsError struct{}

func (e *NoUTXOsError) Error() string { return "no UTXOs available" }

// SubmitErrorKind classifies a chain-submit error reported back to the
// Manager by the caller, per spec §6/§7.
type SubmitErrorKind string

const (
	SubmitErrorMass              SubmitErrorKind = "mass"
	SubmitErrorOrphan            SubmitErrorKind = "orphan"
	SubmitErrorInsufficientFunds SubmitErrorKind = "insufficient_funds"
	SubmitErrorNetwork           SubmitErrorKind = "network"
	SubmitErrorUnknown           SubmitErrorKind = "unknown"
)
