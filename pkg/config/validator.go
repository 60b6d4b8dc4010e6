package config

import "fmt"

// validate checks structural invariants that would otherwise surface as
// undefined pipeline behavior at request time. Any violation is fatal at
// startup.
func validate(cfg *Config) error {
	p := cfg.Policy
	for name, v := range map[string]float64{"high": p.High, "medium": p.Medium, "low": p.Low} {
		if v < 0 || v > 1 {
			return fmt.Errorf("policy.%s must be within [0, 1], got %v", name, v)
		}
	}
	if !(p.High > p.Medium && p.Medium > p.Low) {
		return fmt.Errorf("policy thresholds must be strictly decreasing (high > medium > low), got high=%v medium=%v low=%v",
			p.High, p.Medium, p.Low)
	}

	e := cfg.Escalation
	if e.GrayLow < 0 || e.GrayHigh > 1 || e.GrayLow >= e.GrayHigh {
		return fmt.Errorf("escalation gray zone must satisfy 0 <= gray_low < gray_high <= 1, got [%v, %v)",
			e.GrayLow, e.GrayHigh)
	}

	if cfg.Batch.MaxConcurrency < 1 {
		return fmt.Errorf("batch.max_concurrency must be >= 1, got %d", cfg.Batch.MaxConcurrency)
	}

	if len(cfg.Oracle.Calibration) == 1 {
		return fmt.Errorf("oracle.calibration needs at least 2 knots, got 1")
	}
	for i, k := range cfg.Oracle.Calibration {
		if k.Raw < 0 || k.Raw > 1 || k.Calibrated < 0 || k.Calibrated > 1 {
			return fmt.Errorf("oracle.calibration[%d] out of range [0, 1]: raw=%v calibrated=%v", i, k.Raw, k.Calibrated)
		}
	}
	return nil
}
