package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Outpoint is the globally unique identity of a UTXO.
type Outpoint struct {
	TransactionID string `json:"transactionId"`
	Index         uint32 `json:"index"`
}

// Key returns the "{tx_id}:{index}" string used by the lock table and as the
// cache/dedup identity for an outpoint.
func (o Outpoint) Key() string {
	return fmt.Sprintf("%s:%d", o.TransactionID, o.Index)
}

// ScriptPublicKey mirrors the chain API's utxo_entry.script_public_key shape.
type ScriptPublicKey struct {
	Version uint16 `json:"version"`
	Script  string `json:"scriptPublicKey"`
}

// UTXOEntry mirrors the chain API's utxo_entry shape. Amount is the
// decimal-string-encoded sompi value; it is parsed to decimal.Decimal at
// enrichment and never demoted to a float64.
type UTXOEntry struct {
	Amount          string          `json:"amount"`
	ScriptPublicKey ScriptPublicKey `json:"scriptPublicKey"`
	BlockDAAScore   string          `json:"blockDaaScore"`
	IsCoinbase      bool            `json:"isCoinbase"`
}

// RawUTXO is the chain API's representation of a single UTXO, before
// enrichment.
type RawUTXO struct {
	Outpoint  Outpoint  `json:"outpoint"`
	UTXOEntry UTXOEntry `json:"utxoEntry"`
	// IndexMissing is set by the chain client when the wire payload omitted
	// "index" outright, rather than defaulting it to zero in the conversion.
	// Outpoint.Index is a bare uint32, so a dropped index field and a
	// legitimate index 0 would otherwise be indistinguishable here.
	IndexMissing bool `json:"-"`
}

// Valid reports whether the raw UTXO carries the minimum fields the fetcher
// requires to enrich it; malformed entries are filtered before enrichment.
func (r RawUTXO) Valid() bool {
	return r.Outpoint.TransactionID != "" && r.UTXOEntry.Amount != "" && !r.IndexMissing
}

// Metadata augments a RawUTXO with maturity/mass information derived at
// enrichment time.
type Metadata struct {
	FetchedAtMs               int64
	AgeInBlocks               uint64
	IsFresh                   bool
	EstimatedMassContribution uint32
}

// EstimatedMassContributionBytes is the fixed per-input mass contribution:
// outpoint (36) + schnorr sig script (65) + sequence (8) + overhead (~91).
const EstimatedMassContributionBytes = 200

// EnrichedUTXO is a RawUTXO augmented with Metadata. Amount is parsed once,
// here, and carried as decimal.Decimal for every subsequent computation.
type EnrichedUTXO struct {
	Outpoint        Outpoint
	Amount          decimal.Decimal
	ScriptPublicKey ScriptPublicKey
	BlockDAAScore   uint64
	IsCoinbase      bool
	Metadata        Metadata
}

// Key returns the identity key of the underlying outpoint.
func (e EnrichedUTXO) Key() string {
	return e.Outpoint.Key()
}

// IsFresh is a pure function of age and the configured maturity threshold.
// It is never stored independently of this derivation.
func IsFresh(ageInBlocks uint64, minUtxoAgeBlocks uint64) bool {
	return ageInBlocks < minUtxoAgeBlocks
}

// AgeInBlocks computes max(0, virtual-block), clamped at 0 because the
// virtual score observed by a caller may occasionally lag the block's own
// score under REST-endpoint inconsistency.
func AgeInBlocks(virtualDAAScore, blockDAAScore uint64) uint64 {
	if virtualDAAScore < blockDAAScore {
		return 0
	}
	return virtualDAAScore - blockDAAScore
}
