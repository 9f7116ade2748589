package consolidator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/cosmasken/kaspa402/internal/model"
)

func mkUTXO(amountSompi int64) model.EnrichedUTXO {
	return model.EnrichedUTXO{Amount: decimal.NewFromInt(amountSompi)}
}

func TestFragmentationScoreEmptyIsZero(t *testing.T) {
	assert.Equal(t, 0, FragmentationScore(nil))
}

func TestFragmentationScoreManySmallEvenUTXOsIsHigh(t *testing.T) {
	var utxos []model.EnrichedUTXO
	for i := 0; i < 25; i++ {
		utxos = append(utxos, mkUTXO(1_000_000)) // 0.01 KAS, well under the 1 KAS threshold
	}
	score := FragmentationScore(utxos)
	assert.GreaterOrEqual(t, score, 60)
	assert.LessOrEqual(t, score, 100)
}

func TestFragmentationScoreFewLargeUTXOsIsLow(t *testing.T) {
	utxos := []model.EnrichedUTXO{mkUTXO(500_000_000_000), mkUTXO(500_000_000_000)}
	score := FragmentationScore(utxos)
	assert.LessOrEqual(t, score, 30)
}

func TestFragmentationScoreWithinBounds(t *testing.T) {
	utxos := []model.EnrichedUTXO{mkUTXO(1), mkUTXO(1_000_000_000), mkUTXO(5)}
	score := FragmentationScore(utxos)
	assert.GreaterOrEqual(t, score, 0)
	assert.LessOrEqual(t, score, 100)
}
