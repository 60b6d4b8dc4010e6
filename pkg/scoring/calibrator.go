package scoring

import (
	"fmt"
	"sort"
)

// IdentityCalibrator passes raw probabilities through unchanged.
type IdentityCalibrator struct{}

// Calibrate returns raw as-is.
func (IdentityCalibrator) Calibrate(raw float64) float64 { return raw }

// Knot is one point of a calibration table.
type Knot struct {
	Raw        float64
	Calibrated float64
}

// TableCalibrator interpolates linearly between the knots of an isotonic
// calibration table exported at training time. It is monotonic as long as
// the table is, which NewTableCalibrator enforces.
type TableCalibrator struct {
	knots []Knot
}

// NewTableCalibrator validates the table: at least two knots, strictly
// increasing raw coordinates, non-decreasing calibrated coordinates, all
// within [0, 1].
func NewTableCalibrator(knots []Knot) (*TableCalibrator, error) {
	if len(knots) < 2 {
		return nil, fmt.Errorf("calibration table needs at least 2 knots, got %d", len(knots))
	}
	sorted := make([]Knot, len(knots))
	copy(sorted, knots)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Raw < sorted[j].Raw })

	for i, k := range sorted {
		if k.Raw < 0 || k.Raw > 1 || k.Calibrated < 0 || k.Calibrated > 1 {
			return nil, fmt.Errorf("calibration knot %d out of range [0, 1]: %+v", i, k)
		}
		if i > 0 {
			if k.Raw == sorted[i-1].Raw {
				return nil, fmt.Errorf("duplicate raw coordinate %v in calibration table", k.Raw)
			}
			if k.Calibrated < sorted[i-1].Calibrated {
				return nil, fmt.Errorf("calibration table not monotonic at knot %d: %v < %v",
					i, k.Calibrated, sorted[i-1].Calibrated)
			}
		}
	}
	return &TableCalibrator{knots: sorted}, nil
}

// Calibrate interpolates raw against the table, clamping outside its domain.
func (c *TableCalibrator) Calibrate(raw float64) float64 {
	first, last := c.knots[0], c.knots[len(c.knots)-1]
	if raw <= first.Raw {
		return first.Calibrated
	}
	if raw >= last.Raw {
		return last.Calibrated
	}
	idx := sort.Search(len(c.knots), func(i int) bool { return c.knots[i].Raw >= raw })
	lo, hi := c.knots[idx-1], c.knots[idx]
	t := (raw - lo.Raw) / (hi.Raw - lo.Raw)
	return lo.Calibrated + t*(hi.Calibrated-lo.Calibrated)
}
