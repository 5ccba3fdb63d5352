package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStem(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain name untouched", "meeting notes", "meeting notes"},
		{"forbidden characters removed", `a/b\c:d*e?f"g<h>i|j`, "abcdefghij"},
		{"control characters removed", "foo\x00bar\tbaz", "foobarbaz"},
		{"surrounding whitespace trimmed", "  padded  ", "padded"},
		{"trailing dots trimmed", "name...", "name"},
		{"whitespace before trailing dots", "name . ", "name"},
		{"only forbidden characters yields empty", `\/:*?"<>|`, ""},
		{"empty stays empty", "", ""},
		{"unicode preserved", "café-äöå", "café-äöå"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Stem(tt.in))
		})
	}
}

func TestStemIdempotent(t *testing.T) {
	inputs := []string{"meeting notes", `we/ird:name`, "  spaced  ", "dots..."}
	for _, in := range inputs {
		once := Stem(in)
		assert.Equal(t, once, Stem(once), "sanitizing a sanitized stem must be a no-op: %q", in)
	}
}

func TestDelimiter(t *testing.T) {
	assert.Equal(t, "-", Delimiter("-"))
	assert.Equal(t, "_", Delimiter("_"))
	assert.Equal(t, " ", Delimiter(" "))
	assert.Equal(t, "", Delimiter(`/`))
	assert.Equal(t, "-", Delimiter(`-/`))
	assert.Equal(t, "", Delimiter("\x1b"))
}
