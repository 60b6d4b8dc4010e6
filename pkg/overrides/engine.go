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

// Package overrides implements the deterministic rule engine that can force
// a final tier regardless of model score. Rules evaluate the original raw
// text, not the normalized form, so exact literal phrases (including casing
// and punctuation) match as written; case-insensitivity is declared per
// pattern.
package overrides

import (
	"regexp"

	"github.com/modguard/modguard/pkg/observability/logging"
	"github.com/modguard/modguard/pkg/observability/metrics"
	"github.com/modguard/modguard/pkg/risk"
)

// Forced probabilities for override outcomes.
const (
	forcedSafeProb  = 0.01
	forcedToxicProb = 0.99
)

// Action is what a matched stage forces.
type Action int

const (
	// ForceSafe overrides to (0.01, OVERRIDE_SAFE).
	ForceSafe Action = iota
	// ForceToxic overrides to (0.99, OVERRIDE_TOXIC).
	ForceToxic
)

// Stage is one ordered rule category: a named pattern set with its action
// and an optional gate on the incoming model-derived tier. Stages are
// evaluated in order and the first match is terminal.
type Stage struct {
	Name     string
	Patterns []*regexp.Regexp
	Action   Action
	// GateTiers restricts the stage to inputs whose incoming tier is in the
	// set. Nil means the stage always runs.
	GateTiers []risk.Tier
}

func (s *Stage) gated(tier risk.Tier) bool {
	if s.GateTiers == nil {
		return false
	}
	for _, t := range s.GateTiers {
		if t == tier {
			return false
		}
	}
	return true
}

// Engine evaluates an ordered list of stages.
type Engine struct {
	stages []Stage
}

// NewEngine returns an engine with the default stage list: meta-discussion
// safelist, then blocklist, then the tier-gated general safelist.
func NewEngine() *Engine {
	return &Engine{stages: defaultStages}
}

// Apply evaluates the stages against the raw text. The incoming tier gate
// uses the model-derived tier as passed in, never a recomputed one. If no
// stage matches, the input probability and tier are returned unchanged.
func (e *Engine) Apply(rawText string, prob float64, tier risk.Tier) (float64, risk.Tier) {
	for i := range e.stages {
		stage := &e.stages[i]
		if stage.gated(tier) {
			continue
		}
		for _, pattern := range stage.Patterns {
			if pattern.MatchString(rawText) {
				logging.Debugf("Override stage %q matched pattern %q", stage.Name, pattern.String())
				metrics.RecordOverrideMatch(stage.Name)
				if stage.Action == ForceSafe {
					return forcedSafeProb, risk.OverrideSafe
				}
				return forcedToxicProb, risk.OverrideToxic
			}
		}
	}
	return prob, tier
}
