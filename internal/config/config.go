// Package config loads the UTXO core's configuration: a YAML file, layered
// with environment variable overrides, layered with an optional .env file.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/cosmasken/kaspa402/internal/model"
	"github.com/cosmasken/kaspa402/internal/xerrors"
)

// Config is the top-level file shape; Manager holds only its UTXO field.
type Config struct {
	LogLevel string                  `yaml:"log_level"`
	Network  string                  `yaml:"network"`
	// APIBaseURL overrides the chain REST client's base URL for the
	// configured network, e.g. to point at a local devnet mirror.
	APIBaseURL string                  `yaml:"api_base_url"`
	Server     ServerConfig            `yaml:"server"`
	UTXO       model.UTXOManagerConfig `yaml:"-"`
	UTXOYAML   utxoManagerConfigYAML   `yaml:"utxo"`
}

// ServerConfig holds the debug HTTP surface's listen address.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// utxoManagerConfigYAML mirrors model.UTXOManagerConfig with yaml tags;
// kept separate so internal/model stays free of a serialization dependency.
type utxoManagerConfigYAML struct {
	MinUTXOAgeBlocks       uint64  `yaml:"min_utxo_age_blocks"`
	MaxInputsPerTx         int     `yaml:"max_inputs_per_tx"`
	ConsolidationThreshold int     `yaml:"consolidation_threshold"`
	MassLimitBuffer        float64 `yaml:"mass_limit_buffer"`
	MaxMassBytes           uint32  `yaml:"max_mass_bytes"`
	CacheExpiryMs          int64   `yaml:"cache_expiry_ms"`
}

// Load reads configPath (if it exists), an optional .env file alongside it,
// then applies environment variable overrides, starting from the spec's
// documented defaults.
func Load(configPath, envPath string) (*Config, error) {
	_ = godotenv.Load(envPath) // optional; missing .env is not an error

	cfg := &Config{
		LogLevel: "info",
		Network:  "mainnet",
		Server:   ServerConfig{Host: "0.0.0.0", Port: 8080},
	}
	cfg.UTXO = model.DefaultConfig()

	if data, err := os.Open(configPath); err == nil {
		defer data.Close()
		if err := yaml.NewDecoder(data).Decode(cfg); err != nil {
			return nil, err
		}
		applyYAMLOverride(cfg)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyYAMLOverride(cfg *Config) {
	y := cfg.UTXOYAML
	if y.MinUTXOAgeBlocks != 0 {
		cfg.UTXO.MinUTXOAgeBlocks = y.MinUTXOAgeBlocks
	}
	if y.MaxInputsPerTx != 0 {
		cfg.UTXO.MaxInputsPerTx = y.MaxInputsPerTx
	}
	if y.ConsolidationThreshold != 0 {
		cfg.UTXO.ConsolidationThreshold = y.ConsolidationThreshold
	}
	if y.MassLimitBuffer != 0 {
		cfg.UTXO.MassLimitBuffer = y.MassLimitBuffer
	}
	if y.MaxMassBytes != 0 {
		cfg.UTXO.MaxMassBytes = y.MaxMassBytes
	}
	if y.CacheExpiryMs != 0 {
		cfg.UTXO.CacheExpiryMs = y.CacheExpiryMs
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MIN_UTXO_AGE_BLOCKS"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.UTXO.MinUTXOAgeBlocks = n
		}
	}
	if v := os.Getenv("MAX_INPUTS_PER_TX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.UTXO.MaxInputsPerTx = n
		}
	}
	if v := os.Getenv("CONSOLIDATION_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.UTXO.ConsolidationThreshold = n
		}
	}
	if v := os.Getenv("MASS_LIMIT_BUFFER"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.UTXO.MassLimitBuffer = f
		}
	}
	if v := os.Getenv("MAX_MASS_BYTES"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			cfg.UTXO.MaxMassBytes = uint32(n)
		}
	}
	if v := os.Getenv("CACHE_EXPIRY_MS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.UTXO.CacheExpiryMs = n
		}
	}
	if v := os.Getenv("KASPA_NETWORK"); v != "" {
		cfg.Network = v
	}
	if v := os.Getenv("KASPA_API_BASE_URL"); v != "" {
		cfg.APIBaseURL = v
	}
}

// Validate checks the UTXO config bounds the Manager requires at
// construction, returning a typed error rather than panicking.
func Validate(cfg model.UTXOManagerConfig) error {
	switch {
	case cfg.MaxInputsPerTx < 1:
		return &xerrors.ConfigError{Field: "max_inputs_per_tx", Reason: "must be >= 1"}
	case cfg.ConsolidationThreshold < 2:
		return &xerrors.ConfigError{Field: "consolidation_threshold", Reason: "must be >= 2"}
	case cfg.MassLimitBuffer <= 0 || cfg.MassLimitBuffer > 1:
		return &xerrors.ConfigError{Field: "mass_limit_buffer", Reason: "must be in (0, 1]"}
	case cfg.MaxMassBytes == 0:
		return &xerrors.ConfigError{Field: "max_mass_bytes", Reason: "must be > 0"}
	case cfg.CacheExpiryMs < 0:
		return &xerrors.ConfigError{Field: "cache_expiry_ms", Reason: "must be >= 0"}
	}
	return nil
}
