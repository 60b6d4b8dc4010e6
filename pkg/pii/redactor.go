package pii

import (
	"sort"
	"strings"
)

// Redact rewrites the detected spans into masked forms, copying all
// non-matched text verbatim. Overlapping hits violate the detector's
// contract; the later one (by start offset, then kind name) is dropped so
// output stays reproducible. Zero hits returns the input unchanged.
func Redact(text string, hits []Hit) string {
	if len(hits) == 0 {
		return text
	}

	ordered := make([]Hit, len(hits))
	copy(ordered, hits)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Start != ordered[j].Start {
			return ordered[i].Start < ordered[j].Start
		}
		return ordered[i].Kind < ordered[j].Kind
	})

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, h := range ordered {
		if h.Start < last {
			// Overlaps the previously applied hit; drop it.
			continue
		}
		b.WriteString(text[last:h.Start])
		b.WriteString(mask(h))
		last = h.End
	}
	b.WriteString(text[last:])
	return b.String()
}

func mask(h Hit) string {
	switch h.Kind {
	case KindEmail:
		local, domain, _ := strings.Cut(h.Value, "@")
		if len(local) > 2 {
			local = local[:2]
		}
		return local + "***@" + domain
	case KindPhone:
		digits := nonDigitRe.ReplaceAllString(h.Value, "")
		if len(digits) <= 4 {
			return "+******"
		}
		return "+" + strings.Repeat("*", len(digits)-4) + digits[len(digits)-2:]
	case KindCard:
		return "**** **** **** " + h.Value[len(h.Value)-4:]
	default:
		return strings.Repeat("*", h.End-h.Start)
	}
}
