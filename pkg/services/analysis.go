// Package services wires the scoring cascade and PII pipeline into the
// analysis operations exposed by the API server and CLI.
package services

import (
	"context"

	"github.com/modguard/modguard/pkg/pii"
	"github.com/modguard/modguard/pkg/risk"
	"github.com/modguard/modguard/pkg/scoring"
)

// AnalysisService provides comment analysis functionality: risk scoring,
// PII detection, and redaction. The two flows share only the original input
// string.
type AnalysisService struct {
	scorer         *scoring.CascadeScorer
	detector       *pii.Detector
	maxConcurrency int
}

// NewAnalysisService creates a new analysis service.
func NewAnalysisService(scorer *scoring.CascadeScorer, detector *pii.Detector, maxConcurrency int) *AnalysisService {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &AnalysisService{
		scorer:         scorer,
		detector:       detector,
		maxConcurrency: maxConcurrency,
	}
}

// AnalysisResult is the combined outcome for one comment.
type AnalysisResult struct {
	Probability float64   `json:"probability"`
	Tier        risk.Tier `json:"tier"`
	Escalated   bool      `json:"escalated"`
	PIIHits     []pii.Hit `json:"pii_hits"`
	Redacted    string    `json:"redacted"`
}

// ScoreComment runs the decision cascade only.
func (s *AnalysisService) ScoreComment(ctx context.Context, text string) (*scoring.Result, error) {
	return s.scorer.Score(ctx, text)
}

// ScoreBatch scores a batch of comments across the configured worker pool.
func (s *AnalysisService) ScoreBatch(ctx context.Context, texts []string) []scoring.BatchResult {
	return s.scorer.ScoreBatch(ctx, texts, s.maxConcurrency)
}

// RedactPII detects and redacts PII, returning the rewritten text and the
// accepted hits.
func (s *AnalysisService) RedactPII(text string) (string, []pii.Hit) {
	hits := s.detector.Detect(text)
	return pii.Redact(text, hits), hits
}

// AnalyzeComment runs both flows on one comment. PII detection operates on
// the raw text so redaction preserves the original formatting.
func (s *AnalysisService) AnalyzeComment(ctx context.Context, text string) (*AnalysisResult, error) {
	scoreRes, err := s.scorer.Score(ctx, text)
	if err != nil {
		return nil, err
	}
	hits := s.detector.Detect(text)
	return &AnalysisResult{
		Probability: scoreRes.Probability,
		Tier:        scoreRes.Tier,
		Escalated:   scoreRes.Escalated,
		PIIHits:     hits,
		Redacted:    pii.Redact(text, hits),
	}, nil
}

// PhoneValidationAvailable reports whether PHONE detection is active.
func (s *AnalysisService) PhoneValidationAvailable() bool {
	return s.detector.PhoneValidationAvailable()
}

// SecondaryAvailable reports whether the escalation stage is configured.
func (s *AnalysisService) SecondaryAvailable() bool {
	return s.scorer.SecondaryAvailable()
}
