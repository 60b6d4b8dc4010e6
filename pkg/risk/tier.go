// Package risk defines the ordinal risk tiers and the threshold policy that
// maps calibrated probabilities onto them.
package risk

import (
	"encoding/json"
	"fmt"
)

// Tier is the risk classification of a comment. VeryLow through High form
// an ordered scale; OverrideSafe and OverrideToxic sit outside the ordering
// and are terminal classifications produced by the override rule engine.
type Tier int

const (
	VeryLow Tier = iota
	Low
	Medium
	High
	OverrideSafe
	OverrideToxic
)

// String returns the wire name of the tier.
func (t Tier) String() string {
	switch t {
	case VeryLow:
		return "VERY_LOW"
	case Low:
		return "LOW"
	case Medium:
		return "MEDIUM"
	case High:
		return "HIGH"
	case OverrideSafe:
		return "OVERRIDE_SAFE"
	case OverrideToxic:
		return "OVERRIDE_TOXIC"
	default:
		return fmt.Sprintf("Tier(%d)", int(t))
	}
}

// MarshalJSON encodes the tier as its wire name.
func (t Tier) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// ParseTier maps a wire name back to its tier.
func ParseTier(name string) (Tier, error) {
	for _, t := range []Tier{VeryLow, Low, Medium, High, OverrideSafe, OverrideToxic} {
		if t.String() == name {
			return t, nil
		}
	}
	return VeryLow, fmt.Errorf("unknown tier %q", name)
}

// UnmarshalJSON decodes a tier from its wire name.
func (t *Tier) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseTier(name)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Overridden reports whether the tier was forced by a rule override rather
// than derived from a model probability.
func (t Tier) Overridden() bool {
	return t == OverrideSafe || t == OverrideToxic
}

// Policy holds the decreasing tier thresholds. Comparisons are inclusive:
// a probability exactly equal to a threshold takes the higher tier.
type Policy struct {
	High   float64
	Medium float64
	Low    float64
}

// NewPolicy validates and returns a threshold policy. Thresholds must be
// strictly decreasing and within [0, 1]; violations are startup-fatal for
// callers.
func NewPolicy(high, medium, low float64) (Policy, error) {
	for name, v := range map[string]float64{"high": high, "medium": medium, "low": low} {
		if v < 0 || v > 1 {
			return Policy{}, fmt.Errorf("threshold %s out of range [0, 1]: %v", name, v)
		}
	}
	if !(high > medium && medium > low) {
		return Policy{}, fmt.Errorf("thresholds must be strictly decreasing, got high=%v medium=%v low=%v", high, medium, low)
	}
	return Policy{High: high, Medium: medium, Low: low}, nil
}

// TierFor maps a probability to a tier by descending threshold comparison.
func (p Policy) TierFor(prob float64) Tier {
	switch {
	case prob >= p.High:
		return High
	case prob >= p.Medium:
		return Medium
	case prob >= p.Low:
		return Low
	default:
		return VeryLow
	}
}
