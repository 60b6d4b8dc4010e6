package scoring

import (
	"math"
	"testing"
)

func TestTableCalibratorInterpolation(t *testing.T) {
	cal, err := NewTableCalibrator([]Knot{
		{Raw: 0.0, Calibrated: 0.0},
		{Raw: 0.5, Calibrated: 0.2},
		{Raw: 1.0, Calibrated: 1.0},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		raw, want float64
	}{
		{0.0, 0.0},
		{0.25, 0.1},
		{0.5, 0.2},
		{0.75, 0.6},
		{1.0, 1.0},
		{-0.3, 0.0}, // clamped below the domain
		{1.3, 1.0},  // clamped above the domain
	}
	for _, tt := range tests {
		if got := cal.Calibrate(tt.raw); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Calibrate(%v) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestTableCalibratorMonotonic(t *testing.T) {
	cal, err := NewTableCalibrator([]Knot{
		{Raw: 0.0, Calibrated: 0.05},
		{Raw: 0.3, Calibrated: 0.05},
		{Raw: 0.7, Calibrated: 0.8},
		{Raw: 1.0, Calibrated: 0.95},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prev := -1.0
	for raw := 0.0; raw <= 1.0; raw += 0.01 {
		got := cal.Calibrate(raw)
		if got < prev {
			t.Fatalf("calibration not monotonic: f(%v)=%v < %v", raw, got, prev)
		}
		prev = got
	}
}

func TestTableCalibratorValidation(t *testing.T) {
	cases := []struct {
		name  string
		knots []Knot
	}{
		{"too few knots", []Knot{{Raw: 0, Calibrated: 0}}},
		{"decreasing calibrated", []Knot{{Raw: 0, Calibrated: 0.5}, {Raw: 1, Calibrated: 0.2}}},
		{"duplicate raw", []Knot{{Raw: 0.5, Calibrated: 0.2}, {Raw: 0.5, Calibrated: 0.4}}},
		{"out of range", []Knot{{Raw: 0, Calibrated: 0}, {Raw: 1.5, Calibrated: 1}}},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTableCalibrator(tt.knots); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestIdentityCalibrator(t *testing.T) {
	cal := IdentityCalibrator{}
	for _, v := range []float64{0, 0.25, 0.99, 1} {
		if got := cal.Calibrate(v); got != v {
			t.Errorf("Calibrate(%v) = %v", v, got)
		}
	}
}
