package mass

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cosmasken/kaspa402/internal/model"
)

func testConfig() model.UTXOManagerConfig {
	return model.UTXOManagerConfig{
		MinUTXOAgeBlocks:       10,
		MaxInputsPerTx:         5,
		ConsolidationThreshold: 10,
		MassLimitBuffer:        0.9,
		MaxMassBytes:           100_000,
		CacheExpiryMs:          10_000,
	}
}

func TestEstimateFormula(t *testing.T) {
	e := NewEstimator(testConfig())
	got := e.Estimate(3, 2)
	assert.EqualValues(t, 3*200+2*50+100, got.EstimatedMass)
	assert.EqualValues(t, 90_000, got.MaxAllowedMass)
	assert.True(t, got.IsWithinLimit)
}

func TestEstimateZeroInputsOutputs(t *testing.T) {
	e := NewEstimator(testConfig())
	got := e.Estimate(0, 0)
	assert.EqualValues(t, 100, got.EstimatedMass)
	assert.True(t, got.IsWithinLimit)
}

func TestEstimateOverLimit(t *testing.T) {
	cfg := testConfig()
	cfg.MaxMassBytes = 500
	e := NewEstimator(cfg)
	got := e.Estimate(10, 2)
	assert.False(t, got.IsWithinLimit)
}

func TestMaxInputsRespectsConfiguredCap(t *testing.T) {
	cfg := testConfig()
	cfg.MaxMassBytes = 1_000_000
	cfg.MaxInputsPerTx = 3
	e := NewEstimator(cfg)
	assert.EqualValues(t, 3, e.MaxInputs(2))
}

func TestMaxInputsZeroWhenBudgetNegative(t *testing.T) {
	cfg := testConfig()
	cfg.MaxMassBytes = 10
	e := NewEstimator(cfg)
	assert.EqualValues(t, 0, e.MaxInputs(2))
}

func TestWithinLimit(t *testing.T) {
	e := NewEstimator(testConfig())
	assert.True(t, e.WithinLimit(1, 1))
}
