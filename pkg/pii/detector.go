// Package pii finds and redacts personally identifiable information in raw
// comment text. Detection runs on the original text, never the normalized
// form, so redacted output preserves the user's casing and formatting.
package pii

import (
	"regexp"

	"github.com/modguard/modguard/pkg/observability/metrics"
)

// Kind identifies the PII category of a hit.
type Kind string

const (
	KindEmail Kind = "EMAIL"
	KindPhone Kind = "PHONE"
	KindCard  Kind = "CARD"
)

// Hit is one accepted PII detection. Start/End are half-open byte offsets
// into the raw text; Value is the canonical form (validated E.164 for
// phones, stripped digits for cards, the matched text for emails).
type Hit struct {
	Kind  Kind   `json:"kind"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Value string `json:"value"`
}

type span struct {
	start, end int
}

// overlaps reports half-open interval intersection with any guarded span.
func overlaps(start, end int, guarded []span) bool {
	for _, g := range guarded {
		if !(end <= g.start || start >= g.end) {
			return true
		}
	}
	return false
}

var (
	emailRe = regexp.MustCompile(`\b[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[A-Za-z]{2,}\b`)
	cardRe  = regexp.MustCompile(`\b(?:\d[ -]*?){13,19}\b`)

	// Guard patterns. Matches inside these regions are never PII: numbers
	// in URLs, anything in fenced or inline code, and label-prefixed
	// identifiers like "order #A123".
	urlRe    = regexp.MustCompile(`(?i)\b(?:https?://|www\.)\S+`)
	codeRe   = regexp.MustCompile("(?s)```.*?```|`[^`]*?`")
	idHintRe = regexp.MustCompile(`(?i)\b(order|ticket|issue|id|ref)\b.{0,10}[:#]?\s*[A-Z0-9\-]{3,}`)

	phoneCandidateRe = regexp.MustCompile(`\+?[0-9()\-.\s]{7,}`)
	nonDigitRe       = regexp.MustCompile(`\D`)
)

// PhoneValidator is the optional region-aware phone-number capability.
// Implementations report the canonical E.164 form of grammar-valid numbers.
type PhoneValidator interface {
	ParseAndValidate(candidate string) (e164 string, ok bool)
}

// Detector finds email, phone, and card-like spans with false-positive
// guards. It is stateless apart from its capability wiring and safe for
// concurrent use.
type Detector struct {
	phone PhoneValidator
}

// Option configures a Detector.
type Option func(*Detector)

// WithPhoneValidator enables PHONE detection. Without it the PHONE kind is
// skipped entirely; the capability is an explicit flag, not a silent
// failure.
func WithPhoneValidator(v PhoneValidator) Option {
	return func(d *Detector) { d.phone = v }
}

// NewDetector returns a detector with the given capability options.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// PhoneValidationAvailable reports whether the phone capability is wired.
func (d *Detector) PhoneValidationAvailable() bool {
	return d.phone != nil
}

// Detect returns all accepted PII hits in text. Guarded regions are
// computed once per call and suppress candidates of every kind.
func (d *Detector) Detect(text string) []Hit {
	var guarded []span
	for _, re := range []*regexp.Regexp{urlRe, codeRe, idHintRe} {
		for _, m := range re.FindAllStringIndex(text, -1) {
			guarded = append(guarded, span{m[0], m[1]})
		}
	}

	var hits []Hit

	for _, m := range emailRe.FindAllStringIndex(text, -1) {
		if overlaps(m[0], m[1], guarded) {
			continue
		}
		hits = append(hits, Hit{Kind: KindEmail, Start: m[0], End: m[1], Value: text[m[0]:m[1]]})
	}

	if d.phone != nil {
		for _, m := range phoneCandidateRe.FindAllStringIndex(text, -1) {
			if overlaps(m[0], m[1], guarded) {
				continue
			}
			if e164, ok := d.phone.ParseAndValidate(text[m[0]:m[1]]); ok {
				hits = append(hits, Hit{Kind: KindPhone, Start: m[0], End: m[1], Value: e164})
			}
		}
	}

	for _, m := range cardRe.FindAllStringIndex(text, -1) {
		if overlaps(m[0], m[1], guarded) {
			continue
		}
		digits := nonDigitRe.ReplaceAllString(text[m[0]:m[1]], "")
		if luhnValid(digits) {
			hits = append(hits, Hit{Kind: KindCard, Start: m[0], End: m[1], Value: digits})
		}
	}

	for _, h := range hits {
		metrics.RecordPIIHit(string(h.Kind))
	}
	return hits
}
