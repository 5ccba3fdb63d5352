package link

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	assert.Equal(t, "![[pic 1.png]]", Render("pic 1.png", true))
	assert.Equal(t, "![](pic%201.png)", Render("pic 1.png", false))
	assert.Equal(t, "![](plain.png)", Render("plain.png", false))
}

func TestReplaceTargetExact(t *testing.T) {
	content := "before ![[old.png]] after"

	got, ok := ReplaceTarget(content, "old.png", "new.png", true)
	require.True(t, ok)
	assert.Equal(t, "before ![[new.png]] after", got)
}

func TestReplaceTargetPercentDecoded(t *testing.T) {
	// The vault path has %20 but the note spells the space literally.
	content := "![[shot 1.png]]"

	got, ok := ReplaceTarget(content, "shot%201.png", "shot-2.png", true)
	require.True(t, ok)
	assert.Equal(t, "![[shot-2.png]]", got)
}

func TestReplaceTargetPercentEncoded(t *testing.T) {
	// The vault path has a literal space but the note percent-encodes it.
	content := "![](shot%201.png)"

	got, ok := ReplaceTarget(content, "shot 1.png", "shot 2.png", false)
	require.True(t, ok)
	assert.Equal(t, "![](shot%202.png)", got)
}

func TestReplaceTargetMixedSpellings(t *testing.T) {
	// Both embeds reference the same file under different spellings; every
	// one is rewritten, not just the first spelling found.
	content := "![[a b.png]] and ![](a%20b.png)"

	got, ok := ReplaceTarget(content, "a b.png", "c d.png", true)
	require.True(t, ok)
	assert.Equal(t, "![[c d.png]] and ![[c d.png]]", got)
}

func TestReplaceTargetRewritesIntoConfiguredStyle(t *testing.T) {
	got, ok := ReplaceTarget("![](photo.png)", "photo.png", "photo.jpg", true)
	require.True(t, ok)
	assert.Equal(t, "![[photo.jpg]]", got)

	got, ok = ReplaceTarget("![[pic 1.png]]", "pic 1.png", "pic 2.png", false)
	require.True(t, ok)
	assert.Equal(t, "![](pic%202.png)", got)
}

func TestReplaceTargetKeepsAliasAndAltText(t *testing.T) {
	got, ok := ReplaceTarget("![[old.png|cover]]", "old.png", "new.png", true)
	require.True(t, ok)
	assert.Equal(t, "![[new.png|cover]]", got)

	got, ok = ReplaceTarget("![caption](old.png)", "old.png", "new.png", false)
	require.True(t, ok)
	assert.Equal(t, "![caption](new.png)", got)

	// Crossing styles, the alias becomes the alt text and vice versa.
	got, ok = ReplaceTarget("![[old.png|cover]]", "old.png", "new.png", false)
	require.True(t, ok)
	assert.Equal(t, "![cover](new.png)", got)
}

func TestReplaceTargetNoMatch(t *testing.T) {
	content := "nothing to see, not even ![[other.png]]"

	got, ok := ReplaceTarget(content, "old.png", "new.png", true)
	assert.False(t, ok)
	assert.Equal(t, content, got)
}

func TestReplaceTargetAllOccurrences(t *testing.T) {
	content := "![[x.png]] text ![[x.png]]"

	got, ok := ReplaceTarget(content, "x.png", "y.png", true)
	require.True(t, ok)
	assert.Equal(t, "![[y.png]] text ![[y.png]]", got)
}

func TestTargets(t *testing.T) {
	content := `# Note

![[first.png]]
some text ![[sub/second 2.jpg|alias]]

![caption](third.webp)
![](first.png)

[not an image](doc.md)
`

	got := Targets(content)
	assert.Equal(t, []string{"first.png", "sub/second 2.jpg", "third.webp"}, got)
}

func TestTargetsEmpty(t *testing.T) {
	assert.Empty(t, Targets("plain text only"))
}
