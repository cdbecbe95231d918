// Package names holds the pure string transforms applied to guest-supplied
// text before it is compared or stored. Normalized forms are lookup keys only
// and are never rendered back to guests.
package names

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultMaxTextLength caps free-text fields when callers do not supply a limit.
const DefaultMaxTextLength = 500

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize converts a raw name into its canonical comparison key: trimmed,
// lowercased, diacritics stripped ("José" and "jose" compare equal), internal
// whitespace collapsed, and every rune outside ASCII letters, space, hyphen,
// and apostrophe removed. An empty result means no valid name was supplied.
func Normalize(raw string) string {
	decomposed, _, err := transform.String(stripMarks, raw)
	if err != nil {
		decomposed = raw
	}

	lowered := strings.ToLower(decomposed)

	var b strings.Builder
	b.Grow(len(lowered))
	lastSpace := true
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z', r == '-', r == '\'':
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}

	return strings.TrimRight(b.String(), " ")
}

// Capitalize renders a stored name for display: each space- or hyphen-separated
// segment is title-cased, and both sides of an apostrophe are capitalized so
// "o'brien" renders as "O'Brien". It operates on the stored name, not the
// normalized key.
func Capitalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(raw))
	capitalizeNext := true
	for _, r := range raw {
		switch {
		case r == ' ' || r == '-' || r == '\'':
			b.WriteRune(r)
			capitalizeNext = true
		case capitalizeNext:
			b.WriteRune(unicode.ToUpper(r))
			capitalizeNext = false
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}

	return b.String()
}

// SanitizeText trims guest-supplied free text, strips C0/C1 control characters,
// and silently truncates to maxLength runes (DefaultMaxTextLength when
// maxLength <= 0). The empty string signals absent input; truncation is a
// defensive cap, not a user-facing validation rule.
func SanitizeText(raw string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultMaxTextLength
	}

	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}

	cleaned := strings.TrimSpace(b.String())
	if cleaned == "" {
		return ""
	}

	runesOut := []rune(cleaned)
	if len(runesOut) > maxLength {
		cleaned = strings.TrimSpace(string(runesOut[:maxLength]))
	}

	return cleaned
}
