// Package namegen turns the configured name pattern and the active note's
// context into a candidate attachment name.
package namegen

import (
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/gosimple/slug"

	"github.com/innovinitylabs/obsidian-paste-image-rename/internal/config"
	"github.com/innovinitylabs/obsidian-paste-image-rename/internal/note"
	"github.com/innovinitylabs/obsidian-paste-image-rename/internal/sanitize"
	"github.com/innovinitylabs/obsidian-paste-image-rename/internal/template"
	"github.com/innovinitylabs/obsidian-paste-image-rename/pkg/types"
)

// NoteContext describes the active note a rename is happening in.
type NoteContext struct {
	// Path is the vault-relative path of the note.
	Path string
	// Content is the note body, used for frontmatter and headings.
	Content string
}

// Generator produces candidate names. Collision resolution is deliberately
// not done here: siblings may change between generation and the rename
// commit (the operator may edit the proposal first), so it is deferred to
// commit time.
type Generator struct {
	now func() time.Time
}

// New creates a generator. A nil clock means time.Now.
func New(now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{now: now}
}

// Generate renders the configured pattern for an attachment with the given
// extension pasted into the given note.
func (g *Generator) Generate(extension string, nc NoteContext, settings *config.Settings) types.GeneratedName {
	return g.GenerateAt(extension, nc, settings, g.now())
}

// GenerateAt is Generate with an explicit clock reading, used when the date
// source is the attachment's EXIF capture time rather than the wall clock.
func (g *Generator) GenerateAt(extension string, nc NoteContext, settings *config.Settings, at time.Time) types.GeneratedName {
	ctx := buildContext(nc, settings.ImageNameKey)

	renderer := template.New(func() time.Time { return at })
	stem := renderer.Render(settings.ImageNamePattern, ctx)
	stem = sanitize.Stem(stem)

	delimiter := sanitize.Delimiter(settings.DupNumberDelimiter)
	isMeaningful := meaningful(stem, delimiter)

	if settings.SlugifyStem && isMeaningful {
		stem = slug.Make(stem)
	}

	candidate := types.CandidateName{Stem: stem, Extension: extension}
	return types.GeneratedName{
		Stem:         stem,
		NewName:      candidate.String(),
		IsMeaningful: isMeaningful,
	}
}

// buildContext assembles the render variables from the active note: its
// base name, parent directory name, first level-1 heading, and the value of
// the configured frontmatter key. Missing values are empty strings;
// malformed frontmatter counts as absent.
func buildContext(nc NoteContext, imageNameKey string) template.Context {
	base := path.Base(nc.Path)
	fileName := strings.TrimSuffix(base, path.Ext(base))

	dirName := ""
	if d := path.Dir(nc.Path); d != "." && d != "/" {
		dirName = path.Base(d)
	}

	keyValue := ""
	if fields, err := note.ParseFrontmatter(nc.Content); err == nil {
		keyValue = note.FrontmatterValue(fields, imageNameKey)
	}

	return template.Context{
		FileName:     fileName,
		DirName:      dirName,
		ImageNameKey: keyValue,
		FirstHeading: note.FirstHeading(nc.Content),
	}
}

// meaningful reports whether the stem contains at least one character other
// than whitespace and the duplicate-number delimiter. A pattern like
// {{imageNameKey}} with no key set renders an empty or delimiter-only stem;
// such names must never be auto-applied.
func meaningful(stem, delimiter string) bool {
	s := stem
	if delimiter != "" {
		s = strings.ReplaceAll(s, delimiter, "")
	}
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return true
		}
	}
	return false
}
