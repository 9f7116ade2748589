package model

// UTXOManagerConfig holds the tunables for the UTXO management core. Field
// comments document the effect of raising/lowering each one, per spec.
type UTXOManagerConfig struct {
	// MinUTXOAgeBlocks is the threshold for IsFresh; raise to avoid the
	// storage-mass penalty on young outputs.
	MinUTXOAgeBlocks uint64
	// MaxInputsPerTx is a hard ceiling honored by strategies and the mass
	// estimator.
	MaxInputsPerTx int
	// ConsolidationThreshold is the count of small UTXOs above which the
	// consolidator recommends action.
	ConsolidationThreshold int
	// MassLimitBuffer scales MaxMassBytes down to an effective ceiling;
	// must be in (0, 1].
	MassLimitBuffer float64
	// MaxMassBytes is the chain's hard mass limit.
	MaxMassBytes uint32
	// CacheExpiryMs is the TTL applied to cache entries.
	CacheExpiryMs int64
}

// DefaultConfig returns the spec's documented defaults.
func DefaultConfig() UTXOManagerConfig {
	return UTXOManagerConfig{
		MinUTXOAgeBlocks:       10,
		MaxInputsPerTx:         5,
		ConsolidationThreshold: 10,
		MassLimitBuffer:        0.9,
		MaxMassBytes:           100_000,
		CacheExpiryMs:          10_000,
	}
}

// EffectiveMaxMass returns MaxMassBytes scaled by MassLimitBuffer.
func (c UTXOManagerConfig) EffectiveMaxMass() uint32 {
	return uint32(float64(c.MaxMassBytes) * c.MassLimitBuffer)
}
