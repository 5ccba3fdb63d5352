// Package note parses markdown notes: YAML frontmatter and headings.
package note

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// Heading is a parsed markdown heading.
type Heading struct {
	Level int
	Text  string
}

// frontmatterBounds returns the closing delimiter line index of a leading
// frontmatter block, or -1 when there is none. Frontmatter is only detected
// when the very first line is '---'.
func frontmatterBounds(lines []string) int {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return -1
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return i
		}
	}
	return -1
}

// ParseFrontmatter parses the YAML frontmatter of a note. It returns nil
// (and no error) when the note has no frontmatter block.
func ParseFrontmatter(content string) (map[string]interface{}, error) {
	lines := strings.Split(content, "\n")

	end := frontmatterBounds(lines)
	if end < 0 {
		return nil, nil
	}

	var fields map[string]interface{}
	raw := strings.Join(lines[1:end], "\n")
	if err := yaml.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter as YAML: %w", err)
	}

	if fields == nil {
		fields = map[string]interface{}{}
	}
	return fields, nil
}

// FrontmatterValue returns the scalar value of a frontmatter key as a
// string, or "" when the mapping or the key is absent.
func FrontmatterValue(fields map[string]interface{}, key string) string {
	if fields == nil || key == "" {
		return ""
	}
	v, ok := fields[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Headings extracts the headings of a note in document order. A leading
// frontmatter block is skipped so its lines cannot masquerade as headings.
func Headings(content string) []Heading {
	body := content
	lines := strings.Split(content, "\n")
	if end := frontmatterBounds(lines); end >= 0 {
		body = strings.Join(lines[end+1:], "\n")
	}

	md := goldmark.New()
	source := []byte(body)
	doc := md.Parser().Parse(text.NewReader(source))

	var headings []Heading
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		var b strings.Builder
		for child := heading.FirstChild(); child != nil; child = child.NextSibling() {
			if textNode, ok := child.(*ast.Text); ok {
				b.Write(textNode.Segment.Value(source))
			}
		}

		headingText := strings.TrimSpace(b.String())
		if headingText == "" {
			return ast.WalkContinue, nil
		}

		headings = append(headings, Heading{Level: heading.Level, Text: headingText})
		return ast.WalkContinue, nil
	})

	return headings
}

// FirstHeading returns the text of the first level-1 heading of a note, or
// "" when the note has none.
func FirstHeading(content string) string {
	for _, h := range Headings(content) {
		if h.Level == 1 {
			return h.Text
		}
	}
	return ""
}
