package scoring

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/modguard/modguard/pkg/risk"
)

// flakyOracle fails for one specific input and scores the rest.
type flakyOracle struct {
	mu       sync.Mutex
	failFor  string
	received []string
}

func (o *flakyOracle) Predict(ctx context.Context, normalizedText string) (float64, error) {
	o.mu.Lock()
	o.received = append(o.received, normalizedText)
	o.mu.Unlock()
	if normalizedText == o.failFor {
		return 0, errors.New("transient failure")
	}
	return 0.05, nil
}

func newTestScorer(t *testing.T, oracle Oracle) *CascadeScorer {
	t.Helper()
	policy, err := risk.NewPolicy(0.85, 0.60, 0.30)
	if err != nil {
		t.Fatalf("policy: %v", err)
	}
	return NewCascadeScorer(oracle, policy)
}

func TestScoreBatchPreservesInputOrder(t *testing.T) {
	scorer := newTestScorer(t, &flakyOracle{})

	texts := []string{"first comment", "second comment", "third comment", "fourth comment"}
	results := scorer.ScoreBatch(context.Background(), texts, 2)

	if len(results) != len(texts) {
		t.Fatalf("expected %d results, got %d", len(texts), len(results))
	}
	for i, br := range results {
		if br.Index != i {
			t.Errorf("result %d has index %d", i, br.Index)
		}
		if br.Err != nil {
			t.Errorf("result %d unexpectedly failed: %v", i, br.Err)
		}
		if br.Result == nil || br.Result.Tier != risk.VeryLow {
			t.Errorf("result %d: unexpected result %+v", i, br.Result)
		}
	}
}

func TestScoreBatchIsolatesFailures(t *testing.T) {
	scorer := newTestScorer(t, &flakyOracle{failFor: "bad comment"})

	texts := []string{"good one", "bad comment", "another good one"}
	results := scorer.ScoreBatch(context.Background(), texts, 4)

	if results[0].Err != nil || results[2].Err != nil {
		t.Fatalf("sibling comments must not fail: %v, %v", results[0].Err, results[2].Err)
	}
	if results[1].Err == nil {
		t.Fatal("expected the failing comment to report an error")
	}
	var oracleErr *OracleError
	if !errors.As(results[1].Err, &oracleErr) {
		t.Fatalf("expected OracleError, got %T", results[1].Err)
	}
}

func TestScoreBatchRespectsCancellation(t *testing.T) {
	scorer := newTestScorer(t, &flakyOracle{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := scorer.ScoreBatch(ctx, []string{"one", "two"}, 2)
	for i, br := range results {
		if br.Err == nil {
			t.Errorf("result %d: expected cancellation error", i)
		}
	}
}

func TestScoreBatchEmptyInput(t *testing.T) {
	scorer := newTestScorer(t, &flakyOracle{})

	results := scorer.ScoreBatch(context.Background(), nil, 4)
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}

func TestScoreBatchClampsConcurrency(t *testing.T) {
	scorer := newTestScorer(t, &flakyOracle{})

	// A non-positive bound must still score everything.
	results := scorer.ScoreBatch(context.Background(), []string{"a comment", "b comment"}, 0)
	for i, br := range results {
		if br.Err != nil {
			t.Errorf("result %d failed: %v", i, br.Err)
		}
	}
}
