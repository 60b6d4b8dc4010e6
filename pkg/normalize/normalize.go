// Package normalize canonicalizes raw comment text before classification.
//
// The output is consumed only by the scoring pipeline and is never shown to
// a user; PII detection deliberately runs on the raw input instead so that
// redaction preserves original formatting.
package normalize

import (
	"strings"
	"unicode/utf8"

	"github.com/kyokomi/emoji/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// leetMap is the fixed single-character substitution table applied once,
// non-recursively, to defeat trivial character swaps.
var leetMap = map[rune]rune{
	'0': 'o', '1': 'i', '3': 'e', '4': 'a', '5': 's', '7': 't',
	'$': 's', '@': 'a', '!': 'i',
}

// zeroWidth lists invisible formatting characters stripped before
// lowercasing. These are adversarial tools to break pattern matches.
var zeroWidth = map[rune]bool{
	'\u200b': true, // zero-width space
	'\u200c': true, // zero-width non-joiner
	'\u200d': true, // zero-width joiner
	'\ufeff': true, // BOM
}

// emojiAliases maps each emoji glyph to its textual alias (e.g. ":thumbsup:"),
// built once by inverting the emoji library's alias table. maxEmojiLen is the
// longest glyph in bytes, bounding the lookahead during replacement.
var (
	emojiAliases map[string]string
	maxEmojiLen  int
)

func init() {
	emojiAliases = make(map[string]string, len(emoji.CodeMap()))
	for alias, glyph := range emoji.CodeMap() {
		// Prefer the shortest alias when several name the same glyph.
		if prev, ok := emojiAliases[glyph]; ok && len(prev) <= len(alias) {
			continue
		}
		emojiAliases[glyph] = alias
		if len(glyph) > maxEmojiLen {
			maxEmojiLen = len(glyph)
		}
	}
}

// Normalize canonicalizes text for classification. It is total over any
// string input. Pipeline order matters: NFKC must precede lowercasing so
// compatibility characters collapse first, and the leet map must precede
// the character whitelist so mapped symbols survive it. Elongation collapse
// runs before the leet map, so a run the leet map recreates (e.g. "555s"
// -> "sss") is kept; reapplying Normalize would shorten it further.
func Normalize(s string) string {
	s = fixMojibake(s)
	s = norm.NFKC.String(s)
	s = stripZeroWidth(s)
	s = strings.ToLower(s)
	s = collapseRuns(s)
	s = replaceEmoji(s)
	s = applyLeet(s)
	s = whitelistChars(s)
	return strings.Join(strings.Fields(s), " ")
}

// fixMojibake makes a best-effort repair of encoding corruption. Invalid
// UTF-8 bytes are replaced, then the classic double-decode case (UTF-8 bytes
// read as Windows-1252, e.g. "Ã©" for "é") is undone when re-encoding the
// runes as Windows-1252 yields valid multi-byte UTF-8.
func fixMojibake(s string) string {
	s = strings.ToValidUTF8(s, "�")

	hasHighRune := false
	for _, r := range s {
		if r > 0x7f {
			hasHighRune = true
			break
		}
	}
	if !hasHighRune {
		return s
	}

	encoded, err := charmap.Windows1252.NewEncoder().String(s)
	if err != nil || encoded == s {
		return s
	}
	if utf8.ValidString(encoded) {
		return encoded
	}
	return s
}

func stripZeroWidth(s string) string {
	return strings.Map(func(r rune) rune {
		if zeroWidth[r] {
			return -1
		}
		return r
	}, s)
}

// collapseRuns shortens any run of 3 or more identical runes to exactly 2.
func collapseRuns(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var prev rune = -1
	runLen := 0
	for _, r := range s {
		if r == prev {
			runLen++
		} else {
			prev = r
			runLen = 1
		}
		if runLen <= 2 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// replaceEmoji substitutes each emoji glyph with its space-padded alias
// token so word-boundary patterns can match it downstream.
func replaceEmoji(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		matched := false
		limit := maxEmojiLen
		if rest := len(s) - i; rest < limit {
			limit = rest
		}
		// Longest match first so glyphs with variation selectors or
		// skin-tone modifiers are not split into their base emoji.
		for l := limit; l > 0; l-- {
			if alias, ok := emojiAliases[s[i:i+l]]; ok {
				b.WriteByte(' ')
				b.WriteString(alias)
				b.WriteByte(' ')
				i += l
				matched = true
				break
			}
		}
		if !matched {
			_, size := utf8.DecodeRuneInString(s[i:])
			b.WriteString(s[i : i+size])
			i += size
		}
	}
	return b.String()
}

func applyLeet(s string) string {
	return strings.Map(func(r rune) rune {
		if mapped, ok := leetMap[r]; ok {
			return mapped
		}
		return r
	}, s)
}

// whitelistChars replaces every character outside the classifier alphabet
// with a space.
func whitelistChars(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f':
			return r
		}
		switch r {
		case ':', ',', '_', '-', '.', '!', '?', '@', '#', '$', '%':
			return r
		}
		return ' '
	}, s)
}
