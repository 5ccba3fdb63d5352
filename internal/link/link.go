// Package link renders and rewrites attachment references in note bodies.
package link

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Render returns the literal reference text embedding an attachment from a
// note. Markdown-style references percent-encode spaces; wiki embeds keep
// the path verbatim.
func Render(path string, wiki bool) string {
	return renderLabeled(path, "", wiki)
}

// renderLabeled is Render with an alias (wiki) or alt text (markdown)
// carried over from the reference being rewritten.
func renderLabeled(path, label string, wiki bool) string {
	if wiki {
		if label != "" {
			return "![[" + path + "|" + label + "]]"
		}
		return "![[" + path + "]]"
	}
	return "![" + label + "](" + encodeSpaces(path) + ")"
}

// strategy is one way a reference to a path may be spelled inside a note.
// Strategies are tried in order until one finds a match, tolerating encoding
// mismatches between how the note spells the path and how the vault does.
type strategy struct {
	name      string
	transform func(string) string
}

var strategies = []strategy{
	{"exact", func(s string) string { return s }},
	{"percent-decoded", decodePercent},
	{"percent-encoded", encodeSpaces},
}

// ReplaceTarget rewrites every embed of oldTarget in content to embed
// newTarget instead, re-rendered in the requested style. Destinations are
// matched against oldTarget under each strategy in turn; aliases and alt
// text carry over to the rewritten embed. It reports whether any embed was
// rewritten; content is returned unchanged when none referenced oldTarget.
func ReplaceTarget(content, oldTarget, newTarget string, wiki bool) (string, bool) {
	replaced := false

	content = wikiEmbed.ReplaceAllStringFunc(content, func(m string) string {
		sub := wikiEmbed.FindStringSubmatch(m)
		if !spellsTarget(sub[1], oldTarget) {
			return m
		}
		replaced = true
		return renderLabeled(newTarget, sub[2], wiki)
	})

	content = mdImage.ReplaceAllStringFunc(content, func(m string) string {
		sub := mdImage.FindStringSubmatch(m)
		if !spellsTarget(sub[2], oldTarget) {
			return m
		}
		replaced = true
		return renderLabeled(newTarget, sub[1], wiki)
	})

	return content, replaced
}

// spellsTarget reports whether a destination as written in a note refers to
// target under any spelling strategy.
func spellsTarget(spelled, target string) bool {
	spelled = strings.TrimSpace(spelled)
	for _, st := range strategies {
		if spelled == st.transform(target) {
			return true
		}
	}
	return false
}

func decodePercent(s string) string {
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}

func encodeSpaces(s string) string {
	return strings.ReplaceAll(s, " ", "%20")
}

// wikiEmbed matches ![[target]] and ![[target|alias]] embeds.
var wikiEmbed = regexp.MustCompile(`!\[\[([^\]|]+)(?:\|([^\]]*))?\]\]`)

// mdImage matches ![alt](destination) images. Goldmark stays the extractor
// of record in Targets; rewriting needs the literal span, which the parser
// does not preserve.
var mdImage = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)

// Targets extracts the attachment reference targets of a note in document
// order: wiki embeds plus markdown image destinations. Targets are returned
// as written (no percent-decoding) with duplicates removed.
func Targets(content string) []string {
	var targets []string
	seen := make(map[string]bool)

	add := func(t string) {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			return
		}
		seen[t] = true
		targets = append(targets, t)
	}

	for _, m := range wikiEmbed.FindAllStringSubmatch(content, -1) {
		add(m[1])
	}

	md := goldmark.New()
	source := []byte(content)
	doc := md.Parser().Parse(text.NewReader(source))

	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if img, ok := n.(*ast.Image); ok {
			add(string(img.Destination))
		}
		return ast.WalkContinue, nil
	})

	return targets
}
