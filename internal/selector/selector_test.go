package selector

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmasken/kaspa402/internal/model"
	"github.com/cosmasken/kaspa402/internal/xerrors"
)

func mkUTXO(txID string, amountSompi int64, age uint64, fresh bool) model.EnrichedUTXO {
	return model.EnrichedUTXO{
		Outpoint: model.Outpoint{TransactionID: txID, Index: 0},
		Amount:   decimal.NewFromInt(amountSompi),
		Metadata: model.Metadata{
			AgeInBlocks:               age,
			IsFresh:                   fresh,
			EstimatedMassContribution: model.EstimatedMassContributionBytes,
		},
	}
}

func testCfg() model.UTXOManagerConfig {
	return model.UTXOManagerConfig{MinUTXOAgeBlocks: 10, MaxInputsPerTx: 5}
}

func TestSelectOptimalSucceedsWithHybridFirst(t *testing.T) {
	s := New(testCfg())
	candidates := []model.EnrichedUTXO{
		mkUTXO("a", 150, 20, false),
		mkUTXO("b", 50, 15, false),
	}
	result, err := s.SelectOptimal(candidates, decimal.NewFromInt(100), 5, 100_000)
	require.NoError(t, err)
	assert.Equal(t, "hybrid", result.StrategyName)
	assert.Equal(t, []string{"hybrid"}, result.StrategiesAttempted)
	assert.EqualValues(t, 0, result.FreshUTXOsUsed)
}

func TestSelectOptimalNoMatureFails(t *testing.T) {
	s := New(testCfg())
	candidates := []model.EnrichedUTXO{
		mkUTXO("a", 150, 5, true),
	}
	_, err := s.SelectOptimal(candidates, decimal.NewFromInt(100), 5, 100_000)
	require.Error(t, err)
	var noMature *xerrors.InsufficientMatureUtxosError
	assert.ErrorAs(t, err, &noMature)
	assert.Equal(t, 1, noMature.Total)
	assert.Equal(t, 0, noMature.Mature)
}

func TestSelectOptimalNoStrategySatisfies(t *testing.T) {
	s := New(testCfg())
	candidates := []model.EnrichedUTXO{
		mkUTXO("a", 10, 20, false),
	}
	_, err := s.SelectOptimal(candidates, decimal.NewFromInt(1_000_000), 5, 100_000)
	require.Error(t, err)
	var noStrategy *xerrors.NoStrategySatisfiesError
	assert.ErrorAs(t, err, &noStrategy)
}

func TestValidateEmptyCandidates(t *testing.T) {
	result := Validate(nil, decimal.NewFromInt(100), 5)
	assert.False(t, result.Possible)
}

func TestValidateInsufficientTotal(t *testing.T) {
	candidates := []model.EnrichedUTXO{mkUTXO("a", 10, 20, false)}
	result := Validate(candidates, decimal.NewFromInt(100), 5)
	assert.False(t, result.Possible)
}

func TestValidateMaxInputsTooLow(t *testing.T) {
	candidates := []model.EnrichedUTXO{
		mkUTXO("a", 60, 20, false),
		mkUTXO("b", 60, 20, false),
	}
	result := Validate(candidates, decimal.NewFromInt(100), 1)
	assert.False(t, result.Possible)
}

func TestValidatePossible(t *testing.T) {
	candidates := []model.EnrichedUTXO{
		mkUTXO("a", 60, 20, false),
		mkUTXO("b", 60, 20, false),
	}
	result := Validate(candidates, decimal.NewFromInt(100), 2)
	assert.True(t, result.Possible)
}
