package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modguard/modguard/pkg/pii"
	"github.com/modguard/modguard/pkg/risk"
	"github.com/modguard/modguard/pkg/scoring"
)

type stubOracle struct {
	prob float64
	err  error
}

func (o *stubOracle) Predict(ctx context.Context, text string) (float64, error) {
	return o.prob, o.err
}

func newTestService(t *testing.T, baseline scoring.Oracle) *AnalysisService {
	t.Helper()
	policy, err := risk.NewPolicy(0.85, 0.60, 0.30)
	require.NoError(t, err)
	scorer := scoring.NewCascadeScorer(baseline, policy)
	return NewAnalysisService(scorer, pii.NewDetector(), 4)
}

func TestAnalyzeCommentBenign(t *testing.T) {
	svc := newTestService(t, &stubOracle{prob: 0.02})

	res, err := svc.AnalyzeComment(context.Background(), "Have a nice day!")
	require.NoError(t, err)

	assert.Equal(t, 0.02, res.Probability)
	assert.Equal(t, risk.VeryLow, res.Tier)
	assert.False(t, res.Escalated)
	assert.Empty(t, res.PIIHits)
	assert.Equal(t, "Have a nice day!", res.Redacted)
}

func TestAnalyzeCommentWithPII(t *testing.T) {
	svc := newTestService(t, &stubOracle{prob: 0.02})

	res, err := svc.AnalyzeComment(context.Background(), "write to alice@example.com please")
	require.NoError(t, err)

	require.Len(t, res.PIIHits, 1)
	assert.Equal(t, pii.KindEmail, res.PIIHits[0].Kind)
	assert.Equal(t, "write to al***@example.com please", res.Redacted)
	assert.Equal(t, risk.VeryLow, res.Tier)
}

func TestAnalyzeCommentRedactsRawFormatting(t *testing.T) {
	// Detection runs on the raw text: normalization would lowercase and
	// reshape the input, breaking span offsets for redaction.
	svc := newTestService(t, &stubOracle{prob: 0.02})

	res, err := svc.AnalyzeComment(context.Background(), "Mail Bob.Smith@Corp.IO today")
	require.NoError(t, err)

	require.Len(t, res.PIIHits, 1)
	assert.Equal(t, "Mail Bo***@Corp.IO today", res.Redacted)
}

func TestAnalyzeCommentOracleFailure(t *testing.T) {
	svc := newTestService(t, &stubOracle{err: errors.New("connection refused")})

	res, err := svc.AnalyzeComment(context.Background(), "some comment")
	assert.Nil(t, res)

	var oerr *scoring.OracleError
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, "baseline", oerr.Stage)
}

func TestScoreCommentDelegates(t *testing.T) {
	svc := newTestService(t, &stubOracle{prob: 0.95})

	res, err := svc.ScoreComment(context.Background(), "you are all going to regret this deeply")
	require.NoError(t, err)
	assert.Equal(t, risk.High, res.Tier)
}

func TestScoreBatchPreservesOrder(t *testing.T) {
	svc := newTestService(t, &stubOracle{prob: 0.02})

	texts := []string{"first comment", "second comment", "third comment"}
	results := svc.ScoreBatch(context.Background(), texts)

	require.Len(t, results, len(texts))
	for i, r := range results {
		assert.Equal(t, i, r.Index)
		require.NoError(t, r.Err)
		assert.Equal(t, risk.VeryLow, r.Result.Tier)
	}
}

func TestRedactPII(t *testing.T) {
	svc := newTestService(t, &stubOracle{prob: 0.02})

	redacted, hits := svc.RedactPII("card 4111 1111 1111 1111 on file")
	require.Len(t, hits, 1)
	assert.Equal(t, pii.KindCard, hits[0].Kind)
	assert.Equal(t, "card **** **** **** 1111 on file", redacted)
}

func TestCapabilityFlags(t *testing.T) {
	svc := newTestService(t, &stubOracle{prob: 0.02})

	// No phone validator and no secondary stage wired above.
	assert.False(t, svc.PhoneValidationAvailable())
	assert.False(t, svc.SecondaryAvailable())
}
