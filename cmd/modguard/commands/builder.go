// Package commands implements the modguard CLI subcommands.
package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/modguard/modguard/pkg/config"
	"github.com/modguard/modguard/pkg/observability/logging"
	"github.com/modguard/modguard/pkg/pii"
	"github.com/modguard/modguard/pkg/risk"
	"github.com/modguard/modguard/pkg/scoring"
	"github.com/modguard/modguard/pkg/services"
)

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return cfg, nil
}

// buildDetector wires the PII detector from config. Phone validation is an
// explicit capability: disabling it skips PHONE detection, it never fails
// silently.
func buildDetector(cfg *config.Config) *pii.Detector {
	var opts []pii.Option
	if cfg.PII.PhoneValidation {
		opts = append(opts, pii.WithPhoneValidator(pii.NewPhoneValidator(cfg.PII.PhoneDefaultRegion)))
	} else {
		logging.Warnf("Phone validation disabled; PHONE PII will not be detected")
	}
	return pii.NewDetector(opts...)
}

// buildService assembles the full analysis service from config. The
// classifier stages are remote; only their transport is constructed here.
func buildService(cfg *config.Config) (*services.AnalysisService, error) {
	if cfg.Oracle.BaselineURL == "" {
		return nil, fmt.Errorf("oracle.baseline_url is required for scoring")
	}

	policy, err := risk.NewPolicy(cfg.Policy.High, cfg.Policy.Medium, cfg.Policy.Low)
	if err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}

	timeout := time.Duration(cfg.Oracle.TimeoutMs) * time.Millisecond
	baseline := scoring.NewHTTPOracle(cfg.Oracle.BaselineURL, timeout)

	opts := []scoring.ScorerOption{
		scoring.WithGrayZone(cfg.Escalation.GrayLow, cfg.Escalation.GrayHigh),
	}
	if cfg.Escalation.Enabled && cfg.Oracle.SecondaryURL != "" {
		secondary := scoring.NewHTTPOracle(cfg.Oracle.SecondaryURL, timeout)
		var calibrator scoring.Calibrator = scoring.IdentityCalibrator{}
		if len(cfg.Oracle.Calibration) > 0 {
			knots := make([]scoring.Knot, len(cfg.Oracle.Calibration))
			for i, k := range cfg.Oracle.Calibration {
				knots[i] = scoring.Knot{Raw: k.Raw, Calibrated: k.Calibrated}
			}
			calibrator, err = scoring.NewTableCalibrator(knots)
			if err != nil {
				return nil, fmt.Errorf("invalid calibration table: %w", err)
			}
		}
		opts = append(opts, scoring.WithSecondary(secondary, calibrator))
		if cfg.Oracle.SerializeSecondary {
			opts = append(opts, scoring.WithSerializedSecondary())
		}
	}

	scorer := scoring.NewCascadeScorer(baseline, policy, opts...)
	return services.NewAnalysisService(scorer, buildDetector(cfg), cfg.Batch.MaxConcurrency), nil
}
