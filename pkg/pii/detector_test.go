package pii

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePhoneValidator accepts candidates with an explicit leading + and at
// least 10 digits, canonicalizing to +<digits>.
type fakePhoneValidator struct{}

func (fakePhoneValidator) ParseAndValidate(candidate string) (string, bool) {
	if !strings.HasPrefix(strings.TrimSpace(candidate), "+") {
		return "", false
	}
	digits := nonDigitRe.ReplaceAllString(candidate, "")
	if len(digits) < 10 {
		return "", false
	}
	return "+" + digits, true
}

func TestDetectEmail(t *testing.T) {
	d := NewDetector()

	hits := d.Detect("contact me at john.doe@example.com please")
	require.Len(t, hits, 1)
	assert.Equal(t, KindEmail, hits[0].Kind)
	assert.Equal(t, "john.doe@example.com", hits[0].Value)
	assert.Equal(t, "john.doe@example.com", "contact me at john.doe@example.com please"[hits[0].Start:hits[0].End])
}

func TestDetectCard(t *testing.T) {
	d := NewDetector()

	hits := d.Detect("my card is 4111 1111 1111 1111 thanks")
	require.Len(t, hits, 1)
	assert.Equal(t, KindCard, hits[0].Kind)
	assert.Equal(t, "4111111111111111", hits[0].Value)
}

func TestCardFailingLuhnRejected(t *testing.T) {
	d := NewDetector()

	hits := d.Detect("my card is 4111 1111 1111 1112 thanks")
	assert.Empty(t, hits)
}

func TestGuardedSpansSuppressHits(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		name string
		text string
	}{
		{"card inside fenced code", "see ```4111111111111111``` for the fixture"},
		{"card inside inline code", "use `4111111111111111` as the test value"},
		{"email inside url", "docs at https://example.com/u/john.doe@example.com/profile"},
		{"digits after id hint", "your order id: 4111111111111111"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, d.Detect(tt.text))
		})
	}
}

func TestPhoneRequiresCapability(t *testing.T) {
	text := "call me on +1 415 555 2671 today"

	// Without the capability, PHONE detection is skipped entirely.
	d := NewDetector()
	assert.False(t, d.PhoneValidationAvailable())
	for _, h := range d.Detect(text) {
		assert.NotEqual(t, KindPhone, h.Kind)
	}

	// With it, the candidate is validated and canonicalized.
	d = NewDetector(WithPhoneValidator(fakePhoneValidator{}))
	assert.True(t, d.PhoneValidationAvailable())
	hits := d.Detect(text)
	require.Len(t, hits, 1)
	assert.Equal(t, KindPhone, hits[0].Kind)
	assert.Equal(t, "+14155552671", hits[0].Value)
}

func TestMultipleKindsCoexist(t *testing.T) {
	d := NewDetector(WithPhoneValidator(fakePhoneValidator{}))

	text := "email a@b.org, card 4111-1111-1111-1111, cheers"
	hits := d.Detect(text)
	require.Len(t, hits, 2)

	kinds := map[Kind]bool{}
	for _, h := range hits {
		kinds[h.Kind] = true
	}
	assert.True(t, kinds[KindEmail])
	assert.True(t, kinds[KindCard])
}

func TestOverlapIsHalfOpen(t *testing.T) {
	guarded := []span{{10, 20}}

	assert.False(t, overlaps(0, 10, guarded), "touching at guard start is not overlap")
	assert.False(t, overlaps(20, 30, guarded), "touching at guard end is not overlap")
	assert.True(t, overlaps(9, 11, guarded))
	assert.True(t, overlaps(19, 21, guarded))
	assert.True(t, overlaps(12, 15, guarded), "containment is overlap")
}

func TestLongTextNoFalsePositives(t *testing.T) {
	d := NewDetector()
	text := strings.Repeat("perfectly ordinary words ", 100)
	assert.Empty(t, d.Detect(text))
}
