// Package sanitize normalizes generated names to characters legal in file names.
package sanitize

import (
	"strings"
	"unicode"
)

// forbidden are characters rejected by at least one of the filesystems the
// vault may live on (NTFS being the strictest).
const forbidden = `\/:*?"<>|`

// Stem removes characters illegal in file names from a generated stem and
// trims surrounding whitespace and trailing dots. An input that sanitizes
// down to nothing stays empty so the meaningfulness check can catch it;
// it is never replaced with a placeholder.
func Stem(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	for _, r := range raw {
		if strings.ContainsRune(forbidden, r) {
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}

	s := strings.TrimSpace(b.String())
	s = strings.TrimRight(s, ".")
	return strings.TrimSpace(s)
}

// Delimiter restricts a duplicate-number delimiter to characters legal in
// file names. Invalid input is filtered, never rejected; the remainder may
// be empty.
func Delimiter(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	for _, r := range raw {
		if strings.ContainsRune(forbidden, r) {
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}
