// Package mass implements the UTXO core's byte-mass estimator (C3). It is
// deliberately pure and stateless so strategies can call it many times per
// selection without worrying about shared state.
package mass

import (
	"github.com/cosmasken/kaspa402/internal/model"
)

const (
	perInputMass  = 200
	perOutputMass = 50
	overheadMass  = 100
)

// Estimator computes byte mass against a fixed configuration.
type Estimator struct {
	cfg model.UTXOManagerConfig
}

func NewEstimator(cfg model.UTXOManagerConfig) *Estimator {
	return &Estimator{cfg: cfg}
}

// Estimate computes the estimated mass of a hypothetical transaction with
// the given input/output counts: mass = inputs*200 + outputs*50 + 100.
func (e *Estimator) Estimate(inputs, outputs uint32) model.MassEstimate {
	estimated := inputs*perInputMass + outputs*perOutputMass + overheadMass
	maxAllowed := e.cfg.EffectiveMaxMass()

	var utilization float64
	if e.cfg.MaxMassBytes > 0 {
		utilization = float64(estimated) / float64(e.cfg.MaxMassBytes) * 100
	}

	return model.MassEstimate{
		EstimatedMass:  estimated,
		MaxAllowedMass: maxAllowed,
		Breakdown: model.MassBreakdown{
			Inputs:   inputs * perInputMass,
			Outputs:  outputs * perOutputMass,
			Overhead: overheadMass,
		},
		IsWithinLimit:      estimated <= maxAllowed,
		UtilizationPercent: utilization,
	}
}

// MaxInputs solves for the largest input count that keeps a transaction with
// the given output count within the effective mass ceiling, clamped to the
// configured MaxInputsPerTx.
func (e *Estimator) MaxInputs(outputs uint32) uint32 {
	maxAllowed := e.cfg.EffectiveMaxMass()
	budget := int64(maxAllowed) - int64(outputs)*perOutputMass - overheadMass
	if budget < 0 {
		return 0
	}

	solved := uint32(budget / perInputMass)
	cap := uint32(e.cfg.MaxInputsPerTx)
	if solved > cap {
		return cap
	}
	return solved
}

// WithinLimit is a convenience boolean form of Estimate(...).IsWithinLimit.
func (e *Estimator) WithinLimit(inputs, outputs uint32) bool {
	return e.Estimate(inputs, outputs).IsWithinLimit
}
