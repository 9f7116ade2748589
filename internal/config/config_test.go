package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmasken/kaspa402/internal/model"
)

func TestValidateRejectsEachInvalidField(t *testing.T) {
	base := model.DefaultConfig()

	cfg := base
	cfg.MaxInputsPerTx = 0
	assert.Error(t, Validate(cfg))

	cfg = base
	cfg.ConsolidationThreshold = 1
	assert.Error(t, Validate(cfg))

	cfg = base
	cfg.MassLimitBuffer = 0
	assert.Error(t, Validate(cfg))

	cfg = base
	cfg.MaxMassBytes = 0
	assert.Error(t, Validate(cfg))

	cfg = base
	cfg.CacheExpiryMs = -1
	assert.Error(t, Validate(cfg))
}

func TestValidateAcceptsDefaults(t *testing.T) {
	assert.NoError(t, Validate(model.DefaultConfig()))
}

func TestLoadFallsBackToDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load("/nonexistent/config.yaml", "/nonexistent/.env")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultConfig(), cfg.UTXO)
}

func TestLoadAppliesEnvOverride(t *testing.T) {
	os.Setenv("MAX_INPUTS_PER_TX", "7")
	defer os.Unsetenv("MAX_INPUTS_PER_TX")

	cfg, err := Load("/nonexistent/config.yaml", "/nonexistent/.env")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.UTXO.MaxInputsPerTx)
}

func TestLoadAppliesAPIBaseURLOverride(t *testing.T) {
	os.Setenv("KASPA_API_BASE_URL", "http://localhost:9999")
	defer os.Unsetenv("KASPA_API_BASE_URL")

	cfg, err := Load("/nonexistent/config.yaml", "/nonexistent/.env")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9999", cfg.APIBaseURL)
}
