package template

import (
	"strconv"
	"strings"
	"time"
)

// dateTokens maps moment-style format tokens to Go reference layouts.
// Ordered longest first so "YYYY" wins over "YY".
var dateTokens = []struct {
	token  string
	layout string
}{
	{"YYYY", "2006"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"HH", "15"},
	{"mm", "04"},
	{"ss", "05"},
	{"H", ""},
	{"M", "1"},
	{"D", "2"},
	{"m", "4"},
	{"s", "5"},
}

// FormatDate formats t per a moment-style token format ("YYYY-MM-DD",
// "YYMMDDHHmmss", ...). Characters that are not part of a known token pass
// through literally.
func FormatDate(t time.Time, format string) string {
	var b strings.Builder
	b.Grow(len(format) + 8)

	for i := 0; i < len(format); {
		matched := false
		for _, dt := range dateTokens {
			if strings.HasPrefix(format[i:], dt.token) {
				b.WriteString(formatToken(t, dt.token, dt.layout))
				i += len(dt.token)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(format[i])
			i++
		}
	}

	return b.String()
}

func formatToken(t time.Time, token, layout string) string {
	// Go has no single-digit 24-hour layout, so "H" is built by hand.
	if token == "H" {
		return strconv.Itoa(t.Hour())
	}
	return t.Format(layout)
}
