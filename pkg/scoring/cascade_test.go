package scoring

import (
	"context"
	"errors"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/modguard/modguard/pkg/risk"
)

func TestScoring(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Scoring Suite")
}

// MockOracle returns a fixed probability or error and records invocations.
type MockOracle struct {
	probability float64
	err         error
	calls       int
	lastInput   string
}

func (m *MockOracle) Predict(ctx context.Context, normalizedText string) (float64, error) {
	m.calls++
	m.lastInput = normalizedText
	return m.probability, m.err
}

// MockCalibrator applies a fixed offset, capped at 1.
type MockCalibrator struct{ offset float64 }

func (m MockCalibrator) Calibrate(raw float64) float64 {
	out := raw + m.offset
	if out > 1 {
		out = 1
	}
	return out
}

var _ = Describe("cascade scoring", func() {
	var (
		baseline  *MockOracle
		secondary *MockOracle
		policy    risk.Policy
	)

	BeforeEach(func() {
		baseline = &MockOracle{}
		secondary = &MockOracle{}
		policy, _ = risk.NewPolicy(0.85, 0.60, 0.30)
	})

	Describe("empty input", func() {
		It("short-circuits without invoking any classifier", func() {
			scorer := NewCascadeScorer(baseline, policy)

			for _, input := range []string{"", "   ", "\t\n  "} {
				result, err := scorer.Score(context.Background(), input)
				Expect(err).NotTo(HaveOccurred())
				Expect(result.Probability).To(Equal(0.0))
				Expect(result.Tier).To(Equal(risk.VeryLow))
				Expect(result.Escalated).To(BeFalse())
			}
			Expect(baseline.calls).To(Equal(0))
		})
	})

	Describe("baseline-only scoring", func() {
		It("maps the baseline probability through the tier policy", func() {
			baseline.probability = 0.05
			scorer := NewCascadeScorer(baseline, policy)

			result, err := scorer.Score(context.Background(), "Have a nice day!")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Probability).To(Equal(0.05))
			Expect(result.Tier).To(Equal(risk.VeryLow))
			Expect(result.Escalated).To(BeFalse())
		})

		It("feeds the oracle normalized text, not raw text", func() {
			baseline.probability = 0.05
			scorer := NewCascadeScorer(baseline, policy)

			_, err := scorer.Score(context.Background(), "HEY  There")
			Expect(err).NotTo(HaveOccurred())
			Expect(baseline.lastInput).To(Equal("hey there"))
		})

		It("never escalates without a secondary oracle even in the gray zone", func() {
			baseline.probability = 0.30
			scorer := NewCascadeScorer(baseline, policy)

			result, err := scorer.Score(context.Background(), "some comment")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Escalated).To(BeFalse())
			Expect(result.Probability).To(Equal(0.30))
		})
	})

	Describe("escalation gate", func() {
		It("escalates at exactly the inclusive low bound", func() {
			baseline.probability = 0.10
			secondary.probability = 0.50
			scorer := NewCascadeScorer(baseline, policy, WithSecondary(secondary, MockCalibrator{}))

			result, err := scorer.Score(context.Background(), "borderline comment")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Escalated).To(BeTrue())
			Expect(secondary.calls).To(Equal(1))
			Expect(result.Probability).To(Equal(0.50))
		})

		It("does not escalate at exactly the exclusive high bound", func() {
			baseline.probability = 0.60
			scorer := NewCascadeScorer(baseline, policy, WithSecondary(secondary, MockCalibrator{}))

			result, err := scorer.Score(context.Background(), "borderline comment")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Escalated).To(BeFalse())
			Expect(secondary.calls).To(Equal(0))
			Expect(result.Tier).To(Equal(risk.Medium))
		})

		It("does not escalate below the gray zone", func() {
			baseline.probability = 0.09
			scorer := NewCascadeScorer(baseline, policy, WithSecondary(secondary, MockCalibrator{}))

			result, err := scorer.Score(context.Background(), "calm comment")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Escalated).To(BeFalse())
			Expect(secondary.calls).To(Equal(0))
		})

		It("passes the secondary raw probability through the calibrator", func() {
			baseline.probability = 0.40
			secondary.probability = 0.55
			scorer := NewCascadeScorer(baseline, policy, WithSecondary(secondary, MockCalibrator{offset: 0.10}))

			result, err := scorer.Score(context.Background(), "ambiguous comment")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Escalated).To(BeTrue())
			Expect(result.Probability).To(BeNumerically("~", 0.65, 1e-9))
			Expect(result.Tier).To(Equal(risk.Medium))
		})

		It("defaults a nil calibrator to identity", func() {
			baseline.probability = 0.40
			secondary.probability = 0.55
			scorer := NewCascadeScorer(baseline, policy, WithSecondary(secondary, nil))

			result, err := scorer.Score(context.Background(), "ambiguous comment")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Escalated).To(BeTrue())
			Expect(result.Probability).To(Equal(0.55))
		})

		It("honors custom gray zone bounds", func() {
			baseline.probability = 0.70
			secondary.probability = 0.20
			scorer := NewCascadeScorer(baseline, policy,
				WithSecondary(secondary, MockCalibrator{}),
				WithGrayZone(0.65, 0.80))

			result, err := scorer.Score(context.Background(), "comment")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Escalated).To(BeTrue())
			Expect(result.Probability).To(Equal(0.20))
		})
	})

	Describe("oracle failures", func() {
		It("propagates baseline failures without defaulting", func() {
			baseline.err = errors.New("model unavailable")
			scorer := NewCascadeScorer(baseline, policy)

			result, err := scorer.Score(context.Background(), "a comment")
			Expect(result).To(BeNil())

			var oracleErr *OracleError
			Expect(errors.As(err, &oracleErr)).To(BeTrue())
			Expect(oracleErr.Stage).To(Equal("baseline"))
		})

		It("propagates secondary failures", func() {
			baseline.probability = 0.30
			secondary.err = errors.New("device lost")
			scorer := NewCascadeScorer(baseline, policy, WithSecondary(secondary, MockCalibrator{}))

			_, err := scorer.Score(context.Background(), "a comment")
			var oracleErr *OracleError
			Expect(errors.As(err, &oracleErr)).To(BeTrue())
			Expect(oracleErr.Stage).To(Equal("secondary"))
		})

		It("rejects out-of-range baseline probabilities", func() {
			baseline.probability = 1.7
			scorer := NewCascadeScorer(baseline, policy)

			_, err := scorer.Score(context.Background(), "a comment")
			var oracleErr *OracleError
			Expect(errors.As(err, &oracleErr)).To(BeTrue())
			Expect(oracleErr.Stage).To(Equal("baseline"))
		})
	})

	Describe("override integration", func() {
		It("forces OVERRIDE_TOXIC on blocklisted raw text regardless of model score", func() {
			baseline.probability = 0.02
			scorer := NewCascadeScorer(baseline, policy)

			result, err := scorer.Score(context.Background(), "i wish he dies on the field naked")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Tier).To(Equal(risk.OverrideToxic))
			Expect(result.Probability).To(Equal(0.99))
		})

		It("forces OVERRIDE_SAFE on meta-discussion despite profanity", func() {
			baseline.probability = 0.95
			scorer := NewCascadeScorer(baseline, policy)

			result, err := scorer.Score(context.Background(),
				"school advised pupils not to use words like bitch,fuck")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Tier).To(Equal(risk.OverrideSafe))
			Expect(result.Probability).To(Equal(0.01))
		})

		It("applies the general safelist only to MEDIUM/HIGH model tiers", func() {
			baseline.probability = 0.05 // VERY_LOW, safelist not consulted
			scorer := NewCascadeScorer(baseline, policy)

			result, err := scorer.Score(context.Background(), "you killed my plant")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Tier).To(Equal(risk.VeryLow))
			Expect(result.Probability).To(Equal(0.05))

			baseline.probability = 0.70 // MEDIUM, safelist downgrades
			result, err = scorer.Score(context.Background(), "you killed my plant")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Tier).To(Equal(risk.OverrideSafe))
			Expect(result.Probability).To(Equal(0.01))
		})
	})
})
