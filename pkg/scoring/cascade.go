// Copyright 2025 The ModGuard Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package scoring orchestrates the decision cascade: normalization,
// escalation-gated scoring across two classifier stages, tier mapping, and
// the override rule engine.
package scoring

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/modguard/modguard/pkg/normalize"
	"github.com/modguard/modguard/pkg/observability/logging"
	"github.com/modguard/modguard/pkg/observability/metrics"
	"github.com/modguard/modguard/pkg/overrides"
	"github.com/modguard/modguard/pkg/risk"
)

// Default escalation gray zone, matching the original cascade tuning.
const (
	DefaultGrayLow  = 0.10
	DefaultGrayHigh = 0.60
)

// Result is one comment's final decision.
type Result struct {
	Probability float64   `json:"probability"`
	Tier        risk.Tier `json:"tier"`
	Escalated   bool      `json:"escalated"`
}

// CascadeScorer scores comments through the baseline oracle, escalates
// gray-zone probabilities to an optional secondary stage, maps the final
// probability to a tier, and applies the override rule engine. It holds no
// per-request state and is safe for concurrent use.
type CascadeScorer struct {
	baseline   Oracle
	secondary  Oracle
	calibrator Calibrator
	policy     risk.Policy
	engine     *overrides.Engine

	grayLow  float64
	grayHigh float64

	// serializeSecondary guards secondary Predict calls when the stage runs
	// on a single compute device; baseline scoring is never blocked by it.
	serializeSecondary bool
	secondaryMu        sync.Mutex
}

// ScorerOption configures a CascadeScorer.
type ScorerOption func(*CascadeScorer)

// WithSecondary wires the optional secondary stage and its calibrator. A
// nil calibrator means identity. Escalation is disabled entirely when this
// option is absent.
func WithSecondary(oracle Oracle, calibrator Calibrator) ScorerOption {
	return func(s *CascadeScorer) {
		s.secondary = oracle
		if calibrator == nil {
			calibrator = IdentityCalibrator{}
		}
		s.calibrator = calibrator
	}
}

// WithGrayZone overrides the escalation bounds. A baseline probability p
// escalates when low <= p < high.
func WithGrayZone(low, high float64) ScorerOption {
	return func(s *CascadeScorer) {
		s.grayLow = low
		s.grayHigh = high
	}
}

// WithSerializedSecondary serializes secondary-stage calls so one slow
// escalation cannot oversubscribe a single inference device.
func WithSerializedSecondary() ScorerOption {
	return func(s *CascadeScorer) { s.serializeSecondary = true }
}

// NewCascadeScorer builds a scorer over the baseline oracle and tier policy.
func NewCascadeScorer(baseline Oracle, policy risk.Policy, opts ...ScorerOption) *CascadeScorer {
	s := &CascadeScorer{
		baseline: baseline,
		policy:   policy,
		engine:   overrides.NewEngine(),
		grayLow:  DefaultGrayLow,
		grayHigh: DefaultGrayHigh,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.secondary == nil {
		logging.Infof("Secondary classifier not configured; escalation disabled, baseline probability is final")
	}
	return s
}

// SecondaryAvailable reports whether the escalation stage is configured.
func (s *CascadeScorer) SecondaryAvailable() bool {
	return s.secondary != nil
}

// Score runs the full decision cascade for one comment. Empty or
// all-whitespace input short-circuits without invoking any classifier.
// Oracle failures propagate; a comment that fails scoring yields no result.
func (s *CascadeScorer) Score(ctx context.Context, rawText string) (*Result, error) {
	start := time.Now()
	defer func() {
		metrics.RecordScoringDuration(time.Since(start).Seconds())
	}()

	if strings.TrimSpace(rawText) == "" {
		return &Result{Probability: 0.0, Tier: risk.VeryLow, Escalated: false}, nil
	}

	normalized := normalize.Normalize(rawText)

	pBase, err := s.baseline.Predict(ctx, normalized)
	if err != nil {
		metrics.RecordOracleError("baseline")
		return nil, &OracleError{Stage: "baseline", Err: err}
	}
	if err := checkProbability("baseline", pBase); err != nil {
		metrics.RecordOracleError("baseline")
		return nil, err
	}

	pFinal := pBase
	escalated := false
	if s.secondary != nil && pBase >= s.grayLow && pBase < s.grayHigh {
		escalated = true
		metrics.RecordEscalation()
		logging.Debugf("Baseline probability %.4f in gray zone [%.2f, %.2f), escalating", pBase, s.grayLow, s.grayHigh)

		raw, err := s.predictSecondary(ctx, normalized)
		if err != nil {
			metrics.RecordOracleError("secondary")
			return nil, &OracleError{Stage: "secondary", Err: err}
		}
		if err := checkProbability("secondary", raw); err != nil {
			metrics.RecordOracleError("secondary")
			return nil, err
		}
		pFinal = s.calibrator.Calibrate(raw)
		if err := checkProbability("secondary", pFinal); err != nil {
			metrics.RecordOracleError("secondary")
			return nil, err
		}
	}

	tier := s.policy.TierFor(pFinal)
	pFinal, tier = s.engine.Apply(rawText, pFinal, tier)

	metrics.RecordCommentScored(tier.String())
	return &Result{Probability: pFinal, Tier: tier, Escalated: escalated}, nil
}

func (s *CascadeScorer) predictSecondary(ctx context.Context, normalized string) (float64, error) {
	if s.serializeSecondary {
		s.secondaryMu.Lock()
		defer s.secondaryMu.Unlock()
	}
	return s.secondary.Predict(ctx, normalized)
}
