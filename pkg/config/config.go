// Package config loads and validates the modguard configuration.
package config

// Config is the root configuration for the scoring and redaction pipeline.
type Config struct {
	Policy     PolicyConfig     `yaml:"policy"`
	Escalation EscalationConfig `yaml:"escalation"`
	Oracle     OracleConfig     `yaml:"oracle"`
	PII        PIIConfig        `yaml:"pii"`
	Batch      BatchConfig      `yaml:"batch"`
	Server     ServerConfig     `yaml:"server"`
}

// OracleConfig points at the classifier stages. Models are loaded and
// served outside this process; only the transport is configured here.
type OracleConfig struct {
	BaselineURL string `yaml:"baseline_url"`
	// SecondaryURL enables escalation when non-empty; empty disables the
	// secondary stage regardless of escalation.enabled.
	SecondaryURL string `yaml:"secondary_url"`
	TimeoutMs    int    `yaml:"timeout_ms"`
	// SerializeSecondary serializes secondary-stage calls for single-device
	// inference backends.
	SerializeSecondary bool `yaml:"serialize_secondary"`
	// Calibration is the secondary stage's isotonic table, exported at
	// training time. Empty means identity calibration.
	Calibration []CalibrationKnot `yaml:"calibration"`
}

// CalibrationKnot is one point of the calibration table.
type CalibrationKnot struct {
	Raw        float64 `yaml:"raw"`
	Calibrated float64 `yaml:"calibrated"`
}

// PolicyConfig holds the tier thresholds. Thresholds are strictly
// decreasing: high > medium > low >= 0, all within [0, 1].
type PolicyConfig struct {
	High   float64 `yaml:"high"`
	Medium float64 `yaml:"medium"`
	Low    float64 `yaml:"low"`
}

// EscalationConfig controls the secondary-classifier gray zone. A baseline
// probability p escalates when gray_low <= p < gray_high.
type EscalationConfig struct {
	Enabled  bool    `yaml:"enabled"`
	GrayLow  float64 `yaml:"gray_low"`
	GrayHigh float64 `yaml:"gray_high"`
}

// PIIConfig controls PII detection behavior.
type PIIConfig struct {
	// PhoneValidation enables the phone-number capability. When false the
	// PHONE kind is skipped entirely.
	PhoneValidation bool `yaml:"phone_validation"`
	// PhoneDefaultRegion is an optional ISO region hint (e.g. "US") for
	// parsing nationally formatted numbers. Empty accepts only numbers
	// carrying an explicit country code.
	PhoneDefaultRegion string `yaml:"phone_default_region"`
}

// BatchConfig bounds batch scoring concurrency.
type BatchConfig struct {
	MaxConcurrency int `yaml:"max_concurrency"`
}

// ServerConfig holds the HTTP listener ports.
type ServerConfig struct {
	APIPort     int `yaml:"api_port"`
	MetricsPort int `yaml:"metrics_port"`
}

// Default returns a configuration populated with the stock thresholds and
// the original cascade gray zone.
func Default() *Config {
	return &Config{
		Policy:     PolicyConfig{High: 0.85, Medium: 0.60, Low: 0.30},
		Escalation: EscalationConfig{Enabled: true, GrayLow: 0.10, GrayHigh: 0.60},
		Oracle:     OracleConfig{TimeoutMs: 5000},
		PII:        PIIConfig{PhoneValidation: true},
		Batch:      BatchConfig{MaxConcurrency: 8},
		Server:     ServerConfig{APIPort: 8080, MetricsPort: 9190},
	}
}

// applyDefaults fills zero-valued fields that have non-zero defaults.
// Policy thresholds are deliberately not defaulted field-by-field: a policy
// block that is present but partial is a configuration error, while a fully
// absent one falls back to the stock policy.
func (c *Config) applyDefaults() {
	d := Default()
	if c.Policy == (PolicyConfig{}) {
		c.Policy = d.Policy
	}
	if c.Escalation.GrayLow == 0 && c.Escalation.GrayHigh == 0 {
		c.Escalation.GrayLow = d.Escalation.GrayLow
		c.Escalation.GrayHigh = d.Escalation.GrayHigh
	}
	if c.Batch.MaxConcurrency == 0 {
		c.Batch.MaxConcurrency = d.Batch.MaxConcurrency
	}
	if c.Oracle.TimeoutMs == 0 {
		c.Oracle.TimeoutMs = 5000
	}
	if c.Server.APIPort == 0 {
		c.Server.APIPort = d.Server.APIPort
	}
	if c.Server.MetricsPort == 0 {
		c.Server.MetricsPort = d.Server.MetricsPort
	}
}
