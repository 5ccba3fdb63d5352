// Package policy decides final attachment names and output image formats.
package policy

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/innovinitylabs/obsidian-paste-image-rename/pkg/types"
)

// NumberedPattern builds the matching rule for already-numbered siblings of
// a candidate name. A sibling matches when stripping the delimiter and a run
// of digits, as a prefix or a suffix per atStart, leaves exactly the literal
// stem and extension. Stem, extension and delimiter are escaped, so this is
// a literal match, not a wildcard match.
func NumberedPattern(stem, ext, delimiter string, atStart bool) *regexp.Regexp {
	qs := regexp.QuoteMeta(stem)
	qe := regexp.QuoteMeta(ext)
	qd := regexp.QuoteMeta(delimiter)

	if atStart {
		return regexp.MustCompile(`^(\d+)` + qd + qs + `\.` + qe + `$`)
	}
	return regexp.MustCompile(`^` + qs + qd + `(\d+)\.` + qe + `$`)
}

// Resolve decides whether a candidate name needs a numeric disambiguator
// against the given sibling listing and returns the final name.
//
// The next number is always one past the highest number observed among
// numbered siblings; gaps are never reused, so concurrently in-flight
// renames targeting a gap cannot collide with the result. Siblings numbered
// under a different convention do not match the rule and are invisible to
// the scan; that is intentional.
func Resolve(candidate types.CandidateName, siblings []string, policy types.DuplicatePolicy) types.ResolvedName {
	stem, ext := candidate.Stem, candidate.Extension
	candidateName := candidate.String()
	rule := NumberedPattern(stem, ext, policy.Delimiter, policy.AtStart)

	exists := false
	highest := 0
	numbered := false

	for _, name := range siblings {
		if name == candidateName {
			exists = true
		}
		if m := rule.FindStringSubmatch(name); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				if !numbered || n > highest {
					highest = n
				}
				numbered = true
			}
		}
	}

	if !exists && !policy.Always {
		return types.ResolvedName{Name: candidateName, Stem: stem, Extension: ext}
	}

	next := 1
	if numbered {
		next = highest + 1
	}

	var newStem string
	if policy.AtStart {
		newStem = strconv.Itoa(next) + policy.Delimiter + stem
	} else {
		newStem = stem + policy.Delimiter + strconv.Itoa(next)
	}

	return types.ResolvedName{
		Name:      newStem + "." + ext,
		Stem:      newStem,
		Extension: ext,
	}
}

// SplitName splits a file name at the last dot. The extension is everything
// after the final dot; a name without a dot has an empty extension.
func SplitName(name string) (stem, ext string) {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return name, ""
	}
	return name[:i], name[i+1:]
}
