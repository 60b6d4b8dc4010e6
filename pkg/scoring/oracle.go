package scoring

import (
	"context"
	"fmt"
	"math"
)

// Oracle is a classifier stage. Predict returns a probability for the given
// normalized text; implementations are deterministic for identical input
// and identical loaded model state. Model loading and inference live
// outside this module.
type Oracle interface {
	Predict(ctx context.Context, normalizedText string) (float64, error)
}

// Calibrator maps a secondary stage's raw probability onto a calibrated
// probability in [0, 1]. Implementations must be monotonic.
type Calibrator interface {
	Calibrate(raw float64) float64
}

// OracleError reports a classifier invocation failure: the call errored or
// returned an out-of-range value. It is surfaced per comment and never
// coerced to a default tier.
type OracleError struct {
	Stage string // "baseline" or "secondary"
	Err   error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("%s oracle: %v", e.Stage, e.Err)
}

func (e *OracleError) Unwrap() error {
	return e.Err
}

// checkProbability rejects NaN and out-of-range oracle output.
func checkProbability(stage string, p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return &OracleError{Stage: stage, Err: fmt.Errorf("probability out of range [0, 1]: %v", p)}
	}
	return nil
}
