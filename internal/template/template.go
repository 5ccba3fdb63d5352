// Package template expands name patterns against per-note context variables.
package template

import (
	"regexp"
	"strings"
	"time"
)

// Context holds the variable values a pattern is rendered against.
// Variables without a value render as the empty string.
type Context struct {
	// FileName is the active note's base name without extension.
	FileName string
	// DirName is the name of the note's parent directory.
	DirName string
	// ImageNameKey is the value of the configured frontmatter key.
	ImageNameKey string
	// FirstHeading is the first level-1 heading of the note.
	FirstHeading string
}

var datePattern = regexp.MustCompile(`\{\{DATE:([^{}]*)\}\}`)

// Renderer expands a name pattern into a literal stem. Rendering is pure:
// the same pattern, context and clock reading always produce the same stem.
type Renderer struct {
	now func() time.Time
}

// New creates a renderer. A nil clock means time.Now.
func New(now func() time.Time) *Renderer {
	if now == nil {
		now = time.Now
	}
	return &Renderer{now: now}
}

// Render replaces every known variable token in pattern with its value from
// ctx, and every {{DATE:<format>}} token with the current time formatted per
// the token-based date format. Unknown tokens are left in place.
func (r *Renderer) Render(pattern string, ctx Context) string {
	s := pattern
	s = strings.ReplaceAll(s, "{{fileName}}", ctx.FileName)
	s = strings.ReplaceAll(s, "{{dirName}}", ctx.DirName)
	s = strings.ReplaceAll(s, "{{imageNameKey}}", ctx.ImageNameKey)
	s = strings.ReplaceAll(s, "{{firstHeading}}", ctx.FirstHeading)

	s = datePattern.ReplaceAllStringFunc(s, func(m string) string {
		format := datePattern.FindStringSubmatch(m)[1]
		return FormatDate(r.now(), format)
	})

	return s
}
